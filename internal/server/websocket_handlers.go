package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"moim/internal/observability"
)

// NotificationSocket upgrades the connection and streams notification
// frames for the authenticated user. A short backlog of recent rows is
// replayed before live delivery starts.
func (s *Server) NotificationSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.WebSocketConnectionsTotal.Inc()
		defer observability.WebSocketConnectionsTotal.Dec()

		userIDVal := conn.Locals("userID")
		userID, ok := userIDVal.(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		user, err := s.userRepo.GetByID(context.Background(), userID)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unknown user"}`))
			_ = conn.Close()
			return
		}

		observability.GlobalLogger.Info("websocket connected",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("nickname", user.Nickname))

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			observability.GlobalLogger.Warn("websocket register rejected",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		// Replay recent unseen activity so a reconnecting client does not
		// start from a blank slate.
		recent, err := s.notificationSvc.Recent(context.Background(), userID, 20)
		if err != nil {
			observability.GlobalLogger.Warn("notification backlog load failed",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()))
		} else {
			for _, n := range recent {
				data, err := json.Marshal(n)
				if err != nil {
					continue
				}
				client.TrySend(data)
			}
		}

		go client.WritePump()
		client.ReadPump()
	})
}
