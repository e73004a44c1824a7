// Package service implements the domain operations on top of the repositories.
package service

import (
	"context"
	"time"

	"moim/internal/models"
	"moim/internal/repository"
)

// Badge labels for study posts inside an active recruitment window.
const (
	BadgeOpen     = "모집중"
	BadgeComplete = "완료"
)

// Badge derives the recruitment label for a study post. Outside the
// [recruitStart, recruitEnd] window no badge is shown. Inside it, the
// post is complete once the approved applicant count reaches max_member,
// otherwise still open. Pure function of its inputs.
func Badge(now, recruitStart, recruitEnd time.Time, maxMember int, approved int64) string {
	if now.Before(recruitStart) || now.After(recruitEnd) {
		return ""
	}
	if approved >= int64(maxMember) {
		return BadgeComplete
	}
	return BadgeOpen
}

// FeedService builds the cursor-paginated, filterable post listing.
type FeedService struct {
	postRepo       repository.PostRepository
	studyRepo      repository.StudyRepository
	attachmentRepo repository.AttachmentRepository
	now            func() time.Time
}

// NewFeedService creates a new FeedService.
func NewFeedService(
	postRepo repository.PostRepository,
	studyRepo repository.StudyRepository,
	attachmentRepo repository.AttachmentRepository,
) *FeedService {
	return &FeedService{
		postRepo:       postRepo,
		studyRepo:      studyRepo,
		attachmentRepo: attachmentRepo,
		now:            time.Now,
	}
}

// ListFeedInput carries the feed query parameters. Category empty or
// "all" selects every board. Badge, when set, post-filters study posts
// by their derived label.
type ListFeedInput struct {
	Category      string
	Query         string
	Scope         string
	Cursor        uint
	Limit         int
	AuthorID      uint
	From          *time.Time
	To            *time.Time
	Badge         string
	CurrentUserID uint
}

// FeedPage is one page of the listing. NextCursor is the id of the last
// item the underlying query returned, or nil on the final page.
type FeedPage struct {
	Count      int            `json:"count"`
	NextCursor *uint          `json:"next_cursor"`
	Items      []*models.Post `json:"items"`
}

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// ListFeed returns one cursor page, enriched per category: study posts
// get the derived badge, free/share posts an attachment-presence flag.
// Enrichment runs as id-batch lookups after the page query because the
// extension tables differ per category.
func (s *FeedService) ListFeed(ctx context.Context, in ListFeedInput) (*FeedPage, error) {
	var category models.Category
	switch in.Category {
	case "", "all":
		category = ""
	default:
		category = models.Category(in.Category)
		if !models.ValidCategory(category) {
			return nil, models.NewValidationError("Invalid category")
		}
	}

	var scope repository.SearchScope
	switch in.Scope {
	case "", string(repository.ScopeAll):
		scope = repository.ScopeAll
	case string(repository.ScopeTitle):
		scope = repository.ScopeTitle
	case string(repository.ScopeContent):
		scope = repository.ScopeContent
	default:
		return nil, models.NewValidationError("Invalid search scope")
	}

	if in.Badge != "" && in.Badge != BadgeOpen && in.Badge != BadgeComplete {
		return nil, models.NewValidationError("Invalid badge filter")
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	posts, err := s.postRepo.ListFeed(ctx, repository.FeedQuery{
		Category: category,
		Query:    in.Query,
		Scope:    scope,
		Cursor:   in.Cursor,
		Limit:    limit,
		AuthorID: in.AuthorID,
		From:     in.From,
		To:       in.To,
	})
	if err != nil {
		return nil, err
	}

	var nextCursor *uint
	if len(posts) == limit && limit > 0 {
		last := posts[len(posts)-1].ID
		nextCursor = &last
	}

	if err := s.enrich(ctx, posts, in.CurrentUserID); err != nil {
		return nil, err
	}

	items := posts
	if in.Badge != "" {
		// Badge is derived and time-dependent, so the filter runs on the
		// enriched page instead of being pushed into the query.
		filtered := make([]*models.Post, 0, len(items))
		for _, p := range items {
			if p.Category == models.CategoryStudy && p.Badge == in.Badge {
				filtered = append(filtered, p)
			}
		}
		items = filtered
	}

	return &FeedPage{
		Count:      len(items),
		NextCursor: nextCursor,
		Items:      items,
	}, nil
}

func (s *FeedService) enrich(ctx context.Context, posts []*models.Post, currentUserID uint) error {
	if len(posts) == 0 {
		return nil
	}

	var studyIDs, attachableIDs, allIDs []uint
	for _, p := range posts {
		allIDs = append(allIDs, p.ID)
		switch p.Category {
		case models.CategoryStudy:
			studyIDs = append(studyIDs, p.ID)
		case models.CategoryFree, models.CategoryShare:
			attachableIDs = append(attachableIDs, p.ID)
		}
	}

	if len(studyIDs) > 0 {
		recs, err := s.studyRepo.GetRecruitmentsByPosts(ctx, studyIDs)
		if err != nil {
			return err
		}
		approved, err := s.studyRepo.ApprovedCounts(ctx, studyIDs)
		if err != nil {
			return err
		}
		now := s.now()
		for _, p := range posts {
			rec, ok := recs[p.ID]
			if !ok {
				continue
			}
			p.Recruitment = rec
			p.Badge = Badge(now, rec.RecruitStart, rec.RecruitEnd, rec.MaxMember, approved[p.ID])
		}
	}

	if len(attachableIDs) > 0 {
		present, err := s.attachmentRepo.PostIDsWithAttachments(ctx, attachableIDs)
		if err != nil {
			return err
		}
		for _, p := range posts {
			if present[p.ID] {
				p.HasAttachments = true
			}
		}
	}

	if currentUserID != 0 {
		likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, currentUserID, allIDs)
		if err != nil {
			return err
		}
		liked := make(map[uint]bool, len(likedIDs))
		for _, id := range likedIDs {
			liked[id] = true
		}
		for _, p := range posts {
			p.Liked = liked[p.ID]
		}
	}

	return nil
}
