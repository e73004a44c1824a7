package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"moim/internal/ai"
	"moim/internal/models"
	"moim/internal/observability"
	"moim/internal/repository"
)

const (
	minGoalLen    = 5
	minSummaryLen = 50
	maxDraftInput = 20000
)

// SummaryStyles accepted by Summarize.
var summaryStyles = map[string]bool{"concise": true, "detailed": true, "bullets": true}

// AIService turns user prompts into persisted drafts via the generative
// model. The upstream is slow and occasionally returns junk; every
// generation path has a local template fallback so the caller always
// gets a usable draft.
type AIService struct {
	client    *ai.Client
	draftRepo repository.AIDraftRepository
}

// NewAIService creates a new AIService.
func NewAIService(client *ai.Client, draftRepo repository.AIDraftRepository) *AIService {
	return &AIService{client: client, draftRepo: draftRepo}
}

// StudyPlanWeek is one weekly section of a generated plan.
type StudyPlanWeek struct {
	Week    int      `json:"week"`
	Topic   string   `json:"topic"`
	Details []string `json:"details"`
}

// StudyPlan is the structured result of a plan generation.
type StudyPlan struct {
	Goal     string          `json:"goal"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Weeks    []StudyPlanWeek `json:"weeks"`
	Fallback bool            `json:"fallback"`
	DraftID  uint            `json:"draft_id"`
}

// GenerateStudyPlan produces a weekly study plan for a goal over a date
// range. Model output that fails to parse as the expected structure is
// replaced by the template fallback instead of surfacing an error.
func (s *AIService) GenerateStudyPlan(ctx context.Context, userID uint, goal string, start, end time.Time) (*StudyPlan, error) {
	goal = strings.TrimSpace(goal)
	if len([]rune(goal)) < minGoalLen {
		return nil, models.NewValidationError(fmt.Sprintf("Goal must be at least %d characters", minGoalLen))
	}
	if len(goal) > maxDraftInput {
		return nil, models.NewValidationError("Goal is too long")
	}
	if start.After(end) {
		return nil, models.NewValidationError("Study start must not be after study end")
	}

	weeks := int(end.Sub(start).Hours()/(24*7)) + 1
	if weeks > 52 {
		return nil, models.NewValidationError("Study period must be at most a year")
	}

	prompt := fmt.Sprintf(
		`Create a weekly study plan as JSON {"weeks":[{"week":1,"topic":"...","details":["..."]}]}. Goal: %s. Period: %s to %s (%d weeks). Respond with JSON only.`,
		goal, start.Format("2006-01-02"), end.Format("2006-01-02"), weeks,
	)

	planWeeks, fallback := s.generatePlanWeeks(ctx, prompt, goal, weeks)

	result := "generated"
	if fallback {
		result = "fallback"
	}
	observability.AIDraftRequests.WithLabelValues(string(models.DraftStudyPlan), result).Inc()

	response, err := json.Marshal(struct {
		Weeks []StudyPlanWeek `json:"weeks"`
	}{planWeeks})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	draft := &models.AIDraft{
		UserID:   userID,
		Kind:     models.DraftStudyPlan,
		Prompt:   prompt,
		Response: string(response),
		Fallback: fallback,
	}
	if err := s.draftRepo.Create(ctx, draft); err != nil {
		return nil, models.NewInternalError(err)
	}

	return &StudyPlan{
		Goal:     goal,
		Start:    start.Format("2006-01-02"),
		End:      end.Format("2006-01-02"),
		Weeks:    planWeeks,
		Fallback: fallback,
		DraftID:  draft.ID,
	}, nil
}

func (s *AIService) generatePlanWeeks(ctx context.Context, prompt, goal string, weeks int) ([]StudyPlanWeek, bool) {
	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "study plan generation failed, using fallback", "error", err)
		return fallbackPlan(goal, weeks), true
	}

	parsed, err := parsePlanWeeks(text, weeks)
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "study plan output unparsable, using fallback", "error", err)
		return fallbackPlan(goal, weeks), true
	}
	return parsed, false
}

// parsePlanWeeks extracts the weekly sections from model output. Models
// wrap JSON in prose often enough that the parser first cuts the text
// down to the outermost braces.
func parsePlanWeeks(text string, expected int) ([]StudyPlanWeek, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in model output")
	}

	var out struct {
		Weeks []StudyPlanWeek `json:"weeks"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(out.Weeks) == 0 {
		return nil, errors.New("plan has no weeks")
	}

	for i := range out.Weeks {
		if out.Weeks[i].Week == 0 {
			out.Weeks[i].Week = i + 1
		}
		if strings.TrimSpace(out.Weeks[i].Topic) == "" {
			return nil, fmt.Errorf("week %d has no topic", i+1)
		}
	}
	if len(out.Weeks) > expected {
		out.Weeks = out.Weeks[:expected]
	}
	return out.Weeks, nil
}

// fallbackPlan is the local template generator: evenly split the goal
// across the period. Deliberately simple.
func fallbackPlan(goal string, weeks int) []StudyPlanWeek {
	if weeks < 1 {
		weeks = 1
	}
	out := make([]StudyPlanWeek, 0, weeks)
	for i := 1; i <= weeks; i++ {
		topic := fmt.Sprintf("%s - %d주차 학습", goal, i)
		details := []string{"핵심 개념 정리", "연습 문제 풀이"}
		switch {
		case i == 1:
			details = []string{"학습 범위 파악", "기초 개념 정리"}
		case i == weeks:
			details = []string{"전체 복습", "모의 점검"}
		}
		out = append(out, StudyPlanWeek{Week: i, Topic: topic, Details: details})
	}
	return out
}

// Summary is the result of a text summarization.
type Summary struct {
	Style    string `json:"style"`
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	DraftID  uint   `json:"draft_id"`
}

// Summarize condenses text in the requested style. On upstream failure
// the fallback is a plain truncation of the input.
func (s *AIService) Summarize(ctx context.Context, userID uint, text, style string) (*Summary, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minSummaryLen {
		return nil, models.NewValidationError(fmt.Sprintf("Text must be at least %d characters to summarize", minSummaryLen))
	}
	if len(text) > maxDraftInput {
		return nil, models.NewValidationError("Text is too long")
	}
	if style == "" {
		style = "concise"
	}
	if !summaryStyles[style] {
		return nil, models.NewValidationError("Unsupported summary style")
	}

	prompt := fmt.Sprintf("Summarize the following text in %s style, in the language of the text:\n\n%s", style, text)

	summary, err := s.client.Generate(ctx, prompt)
	fallback := false
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			observability.GlobalLogger.WarnContext(ctx, "summary generation failed, using fallback", "error", err)
		}
		summary = truncateRunes(text, 200)
		fallback = true
	}

	result := "generated"
	if fallback {
		result = "fallback"
	}
	observability.AIDraftRequests.WithLabelValues(string(models.DraftSummary), result).Inc()

	draft := &models.AIDraft{
		UserID:   userID,
		Kind:     models.DraftSummary,
		Prompt:   prompt,
		Response: summary,
		Fallback: fallback,
	}
	if err := s.draftRepo.Create(ctx, draft); err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Summary{Style: style, Text: summary, Fallback: fallback, DraftID: draft.ID}, nil
}

// ListDrafts returns the caller's drafts, newest first.
func (s *AIService) ListDrafts(ctx context.Context, userID uint, limit, offset int) ([]*models.AIDraft, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.draftRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

// GetDraft returns one draft. Owner-only.
func (s *AIService) GetDraft(ctx context.Context, userID, id uint) (*models.AIDraft, error) {
	draft, err := s.draftRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Draft", id)
		}
		return nil, models.NewInternalError(err)
	}
	if draft.UserID != userID {
		return nil, models.NewUnauthorizedError("Only the owner can view this draft")
	}
	return draft, nil
}

// DeleteDraft removes one draft. Owner-only.
func (s *AIService) DeleteDraft(ctx context.Context, userID, id uint) error {
	draft, err := s.draftRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Draft", id)
		}
		return models.NewInternalError(err)
	}
	if draft.UserID != userID {
		return models.NewUnauthorizedError("Only the owner can delete this draft")
	}
	if err := s.draftRepo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
