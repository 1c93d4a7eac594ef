package matching

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/korobprog/supermock-app-sub000/internal/models"
	"github.com/korobprog/supermock-app-sub000/internal/repositories"
	"github.com/korobprog/supermock-app-sub000/internal/scoring"
)

const (
	// RequestTTL is how long a queued request stays actionable.
	RequestTTL = 48 * time.Hour

	previewInterviewers = 5
	previewSlots        = 3

	// Interviewers with at least this much experience count as level-matched.
	seniorityYears = 3

	defaultListLimit = 20
)

var validFormats = map[string]bool{
	models.FormatCoding:       true,
	models.FormatSystemDesign: true,
	models.FormatBehavioral:   true,
	models.FormatMixed:        true,
}

// Engine owns the match request lifecycle: creation, preview ranking, atomic
// scheduling against availability slots, and completion.
type Engine struct {
	db       *gorm.DB
	profiles *repositories.ProfileRepository
	slots    *repositories.AvailabilityRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewEngine(db *gorm.DB, profiles *repositories.ProfileRepository, slots *repositories.AvailabilityRepository, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		db:       db,
		profiles: profiles,
		slots:    slots,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateRequestInput carries the candidate's ask.
type CreateRequestInput struct {
	CandidateID        string            `json:"candidateId"`
	TargetRole         string            `json:"targetRole"`
	FocusAreas         models.StringList `json:"focusAreas"`
	PreferredLanguages models.StringList `json:"preferredLanguages"`
	SessionFormat      string            `json:"sessionFormat"`
	Notes              string            `json:"notes"`
}

// CreateMatchRequest queues a new request expiring 48h from now.
func (e *Engine) CreateMatchRequest(in CreateRequestInput) (*models.MatchRequest, error) {
	if in.TargetRole == "" {
		return nil, fmt.Errorf("%w: targetRole is required", repositories.ErrValidation)
	}
	if !validFormats[in.SessionFormat] {
		return nil, fmt.Errorf("%w: unknown sessionFormat %q", repositories.ErrValidation, in.SessionFormat)
	}
	if _, err := e.profiles.CandidateByID(in.CandidateID); err != nil {
		return nil, err
	}

	now := e.now()
	req := &models.MatchRequest{
		ID:                 uuid.New().String(),
		CandidateID:        in.CandidateID,
		TargetRole:         in.TargetRole,
		FocusAreas:         in.FocusAreas,
		PreferredLanguages: in.PreferredLanguages,
		SessionFormat:      in.SessionFormat,
		Notes:              in.Notes,
		Status:             models.RequestQueued,
		ExpiresAt:          now.Add(RequestTTL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := e.db.Create(req).Error; err != nil {
		return nil, err
	}
	e.logger.Info("match request queued",
		zap.String("requestId", req.ID),
		zap.String("candidateId", req.CandidateID))
	return req, nil
}

// RequestByID loads a request. A queued request past its expiry is reported
// (and persisted) as EXPIRED; the expiry sweep itself is an external concern.
func (e *Engine) RequestByID(id string) (*models.MatchRequest, error) {
	var req models.MatchRequest
	err := e.db.First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: request %s", repositories.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if req.Status == models.RequestQueued && e.now().After(req.ExpiresAt) {
		req.Status = models.RequestExpired
		req.UpdatedAt = e.now()
		if err := e.db.Save(&req).Error; err != nil {
			return nil, err
		}
	}
	return &req, nil
}

// MatchPreview is one ranked interviewer suggestion with their next openings.
type MatchPreview struct {
	Interviewer   models.InterviewerProfile `json:"interviewer"`
	Score         scoring.Result            `json:"score"`
	UpcomingSlots []models.AvailabilitySlot `json:"upcomingSlots"`
}

// GetMatchPreviews ranks up to five interviewers (by rating) for a request,
// scoring each against the candidate's signals. Read-only.
func (e *Engine) GetMatchPreviews(requestID string) ([]MatchPreview, error) {
	req, err := e.RequestByID(requestID)
	if err != nil {
		return nil, err
	}
	candidate, err := e.profiles.CandidateByID(req.CandidateID)
	if err != nil {
		return nil, err
	}

	interviewers, err := e.profiles.TopInterviewers(previewInterviewers)
	if err != nil {
		return nil, err
	}

	now := e.now()
	previews := make([]MatchPreview, 0, len(interviewers))
	for _, iv := range interviewers {
		signals := buildSignals(req, candidate, &iv)
		upcoming, err := e.slots.Upcoming(iv.ID, now, previewSlots)
		if err != nil {
			return nil, err
		}
		previews = append(previews, MatchPreview{
			Interviewer:   iv,
			Score:         scoring.Score(signals),
			UpcomingSlots: upcoming,
		})
	}
	return previews, nil
}

func buildSignals(req *models.MatchRequest, candidate *models.CandidateProfile, iv *models.InterviewerProfile) scoring.Signals {
	return scoring.Signals{
		ProfessionMatched: containsFold(iv.Specializations, req.TargetRole),
		TechStackOverlap:  overlapRatio(iv.Specializations, req.FocusAreas),
		LanguageMatched:   intersects(iv.Languages, req.PreferredLanguages),
		LevelMatched:      iv.ExperienceYears >= seniorityYears,
		TimezoneMatched:   candidate.Timezone != "" && strings.EqualFold(candidate.Timezone, iv.Timezone),
	}
}

func containsFold(list models.StringList, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func intersects(a, b models.StringList) bool {
	for _, v := range b {
		if containsFold(a, v) {
			return true
		}
	}
	return false
}

// overlapRatio is |specializations ∩ focusAreas| / |focusAreas|, 0 when the
// request names no focus areas.
func overlapRatio(specializations, focusAreas models.StringList) float64 {
	if len(focusAreas) == 0 {
		return 0
	}
	matched := 0
	for _, area := range focusAreas {
		if containsFold(specializations, area) {
			matched++
		}
	}
	return float64(matched) / float64(len(focusAreas))
}

// ScheduleMatch books a slot for a request. The match upsert, the request
// status change and the slot deletion commit as one transaction; the slot
// delete doubles as the compare-and-swap that makes concurrent attempts for
// the same slot produce exactly one winner.
func (e *Engine) ScheduleMatch(requestID, slotID, roomURL string) (*models.MatchRequest, error) {
	now := e.now()
	var req models.MatchRequest

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var slot models.AvailabilitySlot
		if err := tx.First(&slot, "id = ?", slotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: slot %s", repositories.ErrNotFound, slotID)
			}
			return err
		}

		// The losing racer sees zero rows affected here and the whole
		// transaction rolls back.
		res := tx.Delete(&models.AvailabilitySlot{}, "id = ?", slotID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: slot %s already consumed", repositories.ErrNotFound, slotID)
		}

		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %s", repositories.ErrNotFound, requestID)
			}
			return err
		}
		if req.Status == models.RequestCompleted {
			return fmt.Errorf("%w: request %s already completed", repositories.ErrConflict, requestID)
		}
		if req.Status == models.RequestExpired || (req.Status == models.RequestQueued && now.After(req.ExpiresAt)) {
			return fmt.Errorf("%w: request %s expired", repositories.ErrNotFound, requestID)
		}

		var match models.InterviewMatch
		err := tx.First(&match, "request_id = ?", requestID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			match = models.InterviewMatch{
				ID:            uuid.New().String(),
				RequestID:     requestID,
				InterviewerID: slot.InterviewerID,
				ScheduledAt:   slot.StartAt,
				RoomURL:       roomURL,
				Status:        models.MatchScheduled,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Create(&match).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// Rescheduling updates the one match row in place.
			match.InterviewerID = slot.InterviewerID
			match.ScheduledAt = slot.StartAt
			match.Status = models.MatchScheduled
			match.CompletedAt = nil
			match.UpdatedAt = now
			if roomURL != "" {
				match.RoomURL = roomURL
			}
			if err := tx.Save(&match).Error; err != nil {
				return err
			}
		}

		req.Status = models.RequestScheduled
		req.MatchedAt = &now
		req.UpdatedAt = now
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("match scheduled",
		zap.String("requestId", requestID),
		zap.String("slotId", slotID))
	return &req, nil
}

// CompleteInput carries the wrap-up feedback for a finished interview.
type CompleteInput struct {
	EffectivenessScore float64            `json:"effectivenessScore"`
	InterviewerNotes   string             `json:"interviewerNotes"`
	CandidateNotes     string             `json:"candidateNotes"`
	Strengths          models.StringList  `json:"strengths"`
	Improvements       models.StringList  `json:"improvements"`
	Rating             *int               `json:"rating"`
	AIHighlights       models.MetadataMap `json:"aiHighlights"`
}

// CompleteMatch closes out a match and its request and upserts the summary.
// When no rating is supplied it is derived from the effectiveness score.
func (e *Engine) CompleteMatch(matchID string, in CompleteInput) (*models.MatchRequest, error) {
	now := e.now()
	var req models.MatchRequest

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var match models.InterviewMatch
		if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: match %s", repositories.ErrNotFound, matchID)
			}
			return err
		}

		match.Status = models.MatchCompleted
		match.CompletedAt = &now
		match.EffectivenessScore = in.EffectivenessScore
		match.UpdatedAt = now
		if err := tx.Save(&match).Error; err != nil {
			return err
		}

		if err := tx.First(&req, "id = ?", match.RequestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %s", repositories.ErrNotFound, match.RequestID)
			}
			return err
		}
		req.Status = models.RequestCompleted
		req.UpdatedAt = now
		if err := tx.Save(&req).Error; err != nil {
			return err
		}

		rating := defaultRating(in.EffectivenessScore)
		if in.Rating != nil {
			rating = *in.Rating
		}

		var summary models.InterviewSummary
		err := tx.First(&summary, "match_id = ?", match.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			summary = models.InterviewSummary{
				ID:               uuid.New().String(),
				MatchID:          match.ID,
				InterviewerNotes: in.InterviewerNotes,
				CandidateNotes:   in.CandidateNotes,
				Strengths:        in.Strengths,
				Improvements:     in.Improvements,
				Rating:           rating,
				AIHighlights:     in.AIHighlights,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			return tx.Create(&summary).Error
		case err != nil:
			return err
		default:
			summary.InterviewerNotes = in.InterviewerNotes
			summary.CandidateNotes = in.CandidateNotes
			summary.Strengths = in.Strengths
			summary.Improvements = in.Improvements
			summary.Rating = rating
			summary.AIHighlights = in.AIHighlights
			summary.UpdatedAt = now
			return tx.Save(&summary).Error
		}
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("match completed", zap.String("matchId", matchID))
	return &req, nil
}

func defaultRating(effectivenessScore float64) int {
	r := int(math.Round(effectivenessScore / 20))
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}
	return r
}

// ListRecentSessions returns matches newest-first, completed ones by their
// completion time.
func (e *Engine) ListRecentSessions(limit int) ([]models.InterviewMatch, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	matches := []models.InterviewMatch{}
	err := e.db.Preload("Summary").
		Order("COALESCE(completed_at, scheduled_at) DESC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}

// GetInterviewerSessions returns one interviewer's matches newest-first.
func (e *Engine) GetInterviewerSessions(interviewerID string, limit int) ([]models.InterviewMatch, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	matches := []models.InterviewMatch{}
	err := e.db.Preload("Summary").
		Where("interviewer_id = ?", interviewerID).
		Order("COALESCE(completed_at, scheduled_at) DESC").
		Limit(limit).
		Find(&matches).Error
	return matches, err
}
