package realtime

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/korobprog/supermock-app-sub000/internal/models"
	"github.com/korobprog/supermock-app-sub000/internal/repositories"
)

var validRoles = map[string]bool{
	models.RoleCandidate:   true,
	models.RoleInterviewer: true,
	models.RoleObserver:    true,
}

var validStatuses = map[string]bool{
	models.SessionScheduled: true,
	models.SessionActive:    true,
	models.SessionEnded:     true,
}

// Engine drives the realtime session lifecycle and participant presence, and
// broadcasts every state transition through the bus.
type Engine struct {
	sessions *repositories.SessionRepository
	bus      *Bus
	logger   *zap.Logger
	now      func() time.Time
}

func NewEngine(sessions *repositories.SessionRepository, bus *Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sessions: sessions,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateSessionInput starts a room for a host.
type CreateSessionInput struct {
	HostID   string             `json:"hostId"`
	MatchID  string             `json:"matchId"`
	Metadata models.MetadataMap `json:"metadata"`
}

// CreateSession persists a new SCHEDULED session and emits a created event.
func (e *Engine) CreateSession(in CreateSessionInput) (*models.RealtimeSession, error) {
	if in.HostID == "" {
		return nil, fmt.Errorf("%w: hostId is required", repositories.ErrValidation)
	}

	now := e.now()
	s := &models.RealtimeSession{
		ID:        uuid.New().String(),
		MatchID:   in.MatchID,
		HostID:    in.HostID,
		Status:    models.SessionScheduled,
		StartedAt: now,
		Metadata:  in.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.sessions.Create(s); err != nil {
		return nil, err
	}

	e.bus.Publish(SessionEvent{Action: ActionCreated, Session: *s})
	e.logger.Info("realtime session created",
		zap.String("sessionId", s.ID),
		zap.String("hostId", s.HostID))
	return s, nil
}

// JoinInput attaches a participant to a session.
type JoinInput struct {
	UserID       string             `json:"userId"`
	Role         string             `json:"role"`
	ConnectionID string             `json:"connectionId"`
	Metadata     models.MetadataMap `json:"metadata"`
}

// Join inserts a participant; a SCHEDULED session becomes ACTIVE in the same
// transaction. Emits a participant_joined event.
func (e *Engine) Join(sessionID string, in JoinInput) (*models.SessionParticipant, error) {
	role := in.Role
	if role == "" {
		role = models.RoleObserver
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("%w: unknown role %q", repositories.ErrValidation, in.Role)
	}

	now := e.now()
	p := &models.SessionParticipant{
		ID:           uuid.New().String(),
		UserID:       in.UserID,
		Role:         role,
		JoinedAt:     now,
		LastSeenAt:   now,
		ConnectionID: in.ConnectionID,
		Metadata:     in.Metadata,
	}
	if err := e.sessions.Join(sessionID, p); err != nil {
		return nil, err
	}

	if err := e.publishState(ActionParticipantJoined, sessionID, p); err != nil {
		return nil, err
	}
	e.logger.Info("participant joined",
		zap.String("sessionId", sessionID),
		zap.String("participantId", p.ID))
	return p, nil
}

// HeartbeatInput is a liveness ping for a session and optionally one
// participant.
type HeartbeatInput struct {
	ParticipantID string     `json:"participantId"`
	Timestamp     *time.Time `json:"timestamp"`
}

// Heartbeat records the liveness timestamp. Last write wins; no fencing of
// out-of-order timestamps.
func (e *Engine) Heartbeat(sessionID string, in HeartbeatInput) (*models.RealtimeSession, error) {
	ts := e.now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	if err := e.sessions.Heartbeat(sessionID, in.ParticipantID, ts); err != nil {
		return nil, err
	}

	s, err := e.sessions.ByID(sessionID)
	if err != nil {
		return nil, err
	}
	var participant *models.SessionParticipant
	if in.ParticipantID != "" {
		participant = findParticipant(s, in.ParticipantID)
	}
	e.bus.Publish(SessionEvent{Action: ActionHeartbeat, Session: *s, Participant: participant})
	return s, nil
}

// Leave stamps leftAt on the participant, keeping the row. Leaving an
// already-left participant is a no-op success that emits nothing.
func (e *Engine) Leave(sessionID, participantID string) (bool, error) {
	p, alreadyLeft, err := e.sessions.Leave(sessionID, participantID, e.now())
	if err != nil {
		return false, err
	}
	if alreadyLeft {
		return true, nil
	}

	if err := e.publishState(ActionParticipantLeft, sessionID, p); err != nil {
		return false, err
	}
	e.logger.Info("participant left",
		zap.String("sessionId", sessionID),
		zap.String("participantId", participantID))
	return true, nil
}

// UpdateStatusInput changes a session's lifecycle status.
type UpdateStatusInput struct {
	Status   string             `json:"status"`
	Metadata models.MetadataMap `json:"metadata"`
}

// UpdateStatus transitions the session; ENDED stamps endedAt. Emits a
// status_updated event.
func (e *Engine) UpdateStatus(sessionID string, in UpdateStatusInput) (*models.RealtimeSession, error) {
	if !validStatuses[in.Status] {
		return nil, fmt.Errorf("%w: unknown status %q", repositories.ErrValidation, in.Status)
	}
	if err := e.sessions.UpdateStatus(sessionID, in.Status, in.Metadata, e.now()); err != nil {
		return nil, err
	}

	s, err := e.sessions.ByID(sessionID)
	if err != nil {
		return nil, err
	}
	e.bus.Publish(SessionEvent{Action: ActionStatusUpdated, Session: *s})
	e.logger.Info("session status updated",
		zap.String("sessionId", sessionID),
		zap.String("status", in.Status))
	return s, nil
}

// ByID returns one session with its participants.
func (e *Engine) ByID(sessionID string) (*models.RealtimeSession, error) {
	return e.sessions.ByID(sessionID)
}

// List returns sessions matching the filter, newest first.
func (e *Engine) List(f repositories.SessionFilter) ([]models.RealtimeSession, error) {
	return e.sessions.List(f)
}

// Snapshot returns every session with participants preloaded.
func (e *Engine) Snapshot() ([]models.RealtimeSession, error) {
	return e.sessions.All()
}

func (e *Engine) ActiveCount() (int64, error) {
	return e.sessions.ActiveCount()
}

func (e *Engine) CompletedCount() (int64, error) {
	return e.sessions.EndedCount()
}

// Remove hard-deletes the session and its participant rows.
func (e *Engine) Remove(sessionID string) (bool, error) {
	return e.sessions.Remove(sessionID)
}

// Restore replays one restored event per non-terminal persisted session so
// in-process subscribers regain state after a restart. Returns the number of
// sessions replayed.
func (e *Engine) Restore() (int, error) {
	sessions, err := e.sessions.NonTerminal()
	if err != nil {
		return 0, err
	}
	for _, s := range sessions {
		e.bus.Publish(SessionEvent{Action: ActionRestored, Session: s})
	}
	e.logger.Info("realtime sessions restored", zap.Int("count", len(sessions)))
	return len(sessions), nil
}

func (e *Engine) publishState(action, sessionID string, p *models.SessionParticipant) error {
	s, err := e.sessions.ByID(sessionID)
	if err != nil {
		return err
	}
	e.bus.Publish(SessionEvent{Action: action, Session: *s, Participant: p})
	return nil
}

func findParticipant(s *models.RealtimeSession, id string) *models.SessionParticipant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}
