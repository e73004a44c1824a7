// Package cache manages the shared Redis connection. Redis carries the
// notification pub/sub bridge and rate-limit counters; entity reads
// always go to the database.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects to Redis at addr. On failure the client stays nil
// and the application runs without live fan-out across instances.
func InitRedis(addr string) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without pub/sub)", err)
		Client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// GetClient returns the shared client, nil when Redis is unavailable.
func GetClient() *redis.Client {
	return Client
}
