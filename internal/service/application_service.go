package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/observability"
	"moim/internal/repository"
)

// ApplicationService runs the study-application state machine:
// pending is the only non-terminal state, approved and rejected are
// terminal, and only the post owner decides.
type ApplicationService struct {
	studyRepo     repository.StudyRepository
	postRepo      repository.PostRepository
	notifications *NotificationService
	// allowReapply lets a rejected applicant apply again, resetting the
	// row to pending. Off by default.
	allowReapply bool
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(
	studyRepo repository.StudyRepository,
	postRepo repository.PostRepository,
	notifications *NotificationService,
	allowReapply bool,
) *ApplicationService {
	return &ApplicationService{
		studyRepo:     studyRepo,
		postRepo:      postRepo,
		notifications: notifications,
		allowReapply:  allowReapply,
	}
}

// Apply submits a membership request for a study post. Applications are
// never gated by max_member; only the badge reflects fullness. A prior
// application blocks re-application unless it was rejected and the
// reapply policy is enabled.
func (s *ApplicationService) Apply(ctx context.Context, postID, userID uint) (*models.StudyApplication, error) {
	post, err := s.postRepo.GetActiveByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	if post.Category != models.CategoryStudy {
		return nil, models.NewValidationError("Applications are only accepted for study posts")
	}
	if post.UserID == userID {
		return nil, models.NewValidationError("You cannot apply to your own study")
	}

	existing, err := s.studyRepo.GetApplicationByPostAndUser(ctx, postID, userID)
	switch {
	case err == nil:
		if s.allowReapply && existing.Status == models.ApplicationRejected {
			existing.Status = models.ApplicationPending
			if err := s.studyRepo.UpdateApplication(ctx, existing); err != nil {
				return nil, models.NewInternalError(err)
			}
			s.notifyOwner(ctx, post, existing, "다시 신청했습니다")
			return existing, nil
		}
		return nil, models.NewConflictError("You have already applied to this study")
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return nil, models.NewInternalError(err)
	}

	app := &models.StudyApplication{
		PostID: postID,
		UserID: userID,
		Status: models.ApplicationPending,
	}
	if err := s.studyRepo.CreateApplication(ctx, app); err != nil {
		// The unique constraint resolves a double-submit race.
		return nil, models.NewConflictError("You have already applied to this study")
	}

	s.notifyOwner(ctx, post, app, "신청했습니다")

	observability.NewRepoLogger("study_applications").LogMutation(ctx, "apply", map[string]interface{}{
		"post_id":        postID,
		"user_id":        userID,
		"application_id": app.ID,
	})
	return app, nil
}

// Approve transitions an application to approved. Owner-only. Repeating
// the same decision is a no-op and emits no duplicate notification.
func (s *ApplicationService) Approve(ctx context.Context, applicationID, actorID uint) (*models.StudyApplication, error) {
	return s.decide(ctx, applicationID, actorID, models.ApplicationApproved)
}

// Reject transitions an application to rejected. Owner-only.
func (s *ApplicationService) Reject(ctx context.Context, applicationID, actorID uint) (*models.StudyApplication, error) {
	return s.decide(ctx, applicationID, actorID, models.ApplicationRejected)
}

func (s *ApplicationService) decide(
	ctx context.Context,
	applicationID, actorID uint,
	target models.ApplicationStatus,
) (*models.StudyApplication, error) {
	app, err := s.studyRepo.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Application", applicationID)
		}
		return nil, models.NewInternalError(err)
	}

	post, err := s.postRepo.GetByID(ctx, app.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", app.PostID)
		}
		return nil, models.NewInternalError(err)
	}
	if post.UserID != actorID {
		return nil, models.NewUnauthorizedError("Only the study owner can decide applications")
	}

	if app.Status == target {
		return app, nil
	}

	app.Status = target
	if err := s.studyRepo.UpdateApplication(ctx, app); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.notifyApplicant(ctx, post, app)

	observability.NewRepoLogger("study_applications").LogMutation(ctx, "decide", map[string]interface{}{
		"application_id": app.ID,
		"post_id":        app.PostID,
		"status":         string(target),
	})
	return app, nil
}

// ListByPost returns all applications for a study post. Owner-only.
func (s *ApplicationService) ListByPost(ctx context.Context, postID, actorID uint) ([]*models.StudyApplication, error) {
	post, err := s.postRepo.GetActiveByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	if post.UserID != actorID {
		return nil, models.NewUnauthorizedError("Only the study owner can list applications")
	}
	list, err := s.studyRepo.ListApplicationsByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

// ListMine returns the caller's applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, userID uint) ([]*models.StudyApplication, error) {
	list, err := s.studyRepo.ListApplicationsByUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

func (s *ApplicationService) notifyOwner(ctx context.Context, post *models.Post, app *models.StudyApplication, verb string) {
	if s.notifications == nil {
		return
	}
	actor := app.UserID
	pid := post.ID
	aid := app.ID
	n := &models.Notification{
		UserID:        post.UserID,
		ActorID:       &actor,
		PostID:        &pid,
		ApplicationID: &aid,
		Type:          models.NotificationApplication,
		Message:       fmt.Sprintf("'%s' 스터디에 %s", truncateRunes(post.Title, 50), verb),
	}
	if _, err := s.notifications.Notify(ctx, n); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "application notification failed", "error", err)
	}
}

func (s *ApplicationService) notifyApplicant(ctx context.Context, post *models.Post, app *models.StudyApplication) {
	if s.notifications == nil {
		return
	}
	outcome := "승인되었습니다"
	if app.Status == models.ApplicationRejected {
		outcome = "거절되었습니다"
	}
	actor := post.UserID
	pid := post.ID
	aid := app.ID
	n := &models.Notification{
		UserID:        app.UserID,
		ActorID:       &actor,
		PostID:        &pid,
		ApplicationID: &aid,
		Type:          models.NotificationApplication,
		Message:       fmt.Sprintf("'%s' 스터디 신청이 %s", truncateRunes(post.Title, 50), outcome),
	}
	if _, err := s.notifications.Notify(ctx, n); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "application notification failed", "error", err)
	}
}
