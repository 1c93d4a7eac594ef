package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/korobprog/supermock-app-sub000/internal/models"

	"gorm.io/gorm"
)

// SessionFilter narrows ListSessions results. Zero-value fields are ignored.
type SessionFilter struct {
	Status  string
	HostID  string
	MatchID string
	Limit   int
}

// SessionRepository persists realtime sessions and their participants.
// Participant rows are never deleted on leave; leftAt is stamped instead.
type SessionRepository struct {
	DB *gorm.DB
}

func (r *SessionRepository) Create(s *models.RealtimeSession) error {
	return r.DB.Create(s).Error
}

// ByID loads one session with all its participants, ordered by join time.
func (r *SessionRepository) ByID(id string) (*models.RealtimeSession, error) {
	var s models.RealtimeSession
	err := r.DB.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at ASC")
	}).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) List(f SessionFilter) ([]models.RealtimeSession, error) {
	sessions := []models.RealtimeSession{}
	q := r.DB.Order("created_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.HostID != "" {
		q = q.Where("host_id = ?", f.HostID)
	}
	if f.MatchID != "" {
		q = q.Where("match_id = ?", f.MatchID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Find(&sessions).Error
	return sessions, err
}

// All returns every session with participants preloaded.
func (r *SessionRepository) All() ([]models.RealtimeSession, error) {
	sessions := []models.RealtimeSession{}
	err := r.DB.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at ASC")
	}).Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

// NonTerminal returns sessions that have not ended, participants included.
// Restart recovery replays one broadcast per returned session.
func (r *SessionRepository) NonTerminal() ([]models.RealtimeSession, error) {
	sessions := []models.RealtimeSession{}
	err := r.DB.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at ASC")
	}).Where("status <> ?", models.SessionEnded).
		Order("created_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) ActiveCount() (int64, error) {
	var n int64
	err := r.DB.Model(&models.RealtimeSession{}).Where("status = ?", models.SessionActive).Count(&n).Error
	return n, err
}

func (r *SessionRepository) EndedCount() (int64, error) {
	var n int64
	err := r.DB.Model(&models.RealtimeSession{}).Where("status = ?", models.SessionEnded).Count(&n).Error
	return n, err
}

// Join inserts a participant and, when the session is still SCHEDULED, flips
// it to ACTIVE inside the same transaction.
func (r *SessionRepository) Join(sessionID string, p *models.SessionParticipant) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var s models.RealtimeSession
		if err := tx.First(&s, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
			}
			return err
		}

		p.SessionID = sessionID
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		if s.Status == models.SessionScheduled {
			updates := map[string]any{"status": models.SessionActive, "updated_at": p.JoinedAt}
			if err := tx.Model(&s).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Heartbeat stamps the session's lastHeartbeat and, when participantID is
// non-empty, that participant's lastSeenAt. leftAt is never touched.
func (r *SessionRepository) Heartbeat(sessionID, participantID string, ts time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RealtimeSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]any{"last_heartbeat": ts, "updated_at": ts})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}

		if participantID == "" {
			return nil
		}
		result = tx.Model(&models.SessionParticipant{}).
			Where("id = ? AND session_id = ?", participantID, sessionID).
			Update("last_seen_at", ts)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: participant %s", ErrNotFound, participantID)
		}
		return nil
	})
}

// Leave stamps leftAt on the participant row, keeping it as an audit trail.
// alreadyLeft reports that leftAt was set before this call.
func (r *SessionRepository) Leave(sessionID, participantID string, ts time.Time) (p *models.SessionParticipant, alreadyLeft bool, err error) {
	err = r.DB.Transaction(func(tx *gorm.DB) error {
		var part models.SessionParticipant
		if err := tx.First(&part, "id = ? AND session_id = ?", participantID, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: participant %s", ErrNotFound, participantID)
			}
			return err
		}
		if part.LeftAt != nil {
			p = &part
			alreadyLeft = true
			return nil
		}
		if err := tx.Model(&part).Update("left_at", ts).Error; err != nil {
			return err
		}
		part.LeftAt = &ts
		p = &part
		return nil
	})
	return p, alreadyLeft, err
}

// UpdateStatus sets the session status; ENDED also stamps endedAt. A non-nil
// metadata replaces the stored map.
func (r *SessionRepository) UpdateStatus(sessionID, status string, metadata models.MetadataMap, ts time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var s models.RealtimeSession
		if err := tx.First(&s, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
			}
			return err
		}
		s.Status = status
		s.UpdatedAt = ts
		if status == models.SessionEnded {
			s.EndedAt = &ts
		}
		if metadata != nil {
			s.Metadata = metadata
		}
		return tx.Save(&s).Error
	})
}

// Remove hard-deletes a session and every participant row attached to it.
func (r *SessionRepository) Remove(sessionID string) (bool, error) {
	removed := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SessionParticipant{}, "session_id = ?", sessionID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.RealtimeSession{}, "id = ?", sessionID)
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected > 0
		return nil
	})
	return removed, err
}
