package repositories

import (
	"fmt"
	"time"

	"github.com/korobprog/supermock-app-sub000/internal/models"

	"gorm.io/gorm"
)

// AvailabilityRepository manages per-interviewer time slots. Invariant: no
// two slots for the same interviewer overlap.
type AvailabilityRepository struct {
	DB *gorm.DB
}

// ListByInterviewer returns an interviewer's slots ordered by start time.
func (r *AvailabilityRepository) ListByInterviewer(interviewerID string) ([]models.AvailabilitySlot, error) {
	slots := []models.AvailabilitySlot{}
	err := r.DB.Where("interviewer_id = ?", interviewerID).
		Order("start_at ASC").
		Find(&slots).Error
	return slots, err
}

// Upcoming returns up to limit slots starting at or after the given instant.
func (r *AvailabilityRepository) Upcoming(interviewerID string, after time.Time, limit int) ([]models.AvailabilitySlot, error) {
	slots := []models.AvailabilitySlot{}
	err := r.DB.Where("interviewer_id = ? AND start_at >= ?", interviewerID, after).
		Order("start_at ASC").
		Limit(limit).
		Find(&slots).Error
	return slots, err
}

// Create inserts a slot after validating the interval and checking for
// overlap against the interviewer's existing slots. The overlap check and the
// insert run in one transaction so concurrent creates cannot both pass it.
func (r *AvailabilityRepository) Create(slot *models.AvailabilitySlot) error {
	if !slot.EndAt.After(slot.StartAt) {
		return fmt.Errorf("%w: slot end must be after start", ErrValidation)
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		err := tx.Model(&models.AvailabilitySlot{}).
			Where("interviewer_id = ? AND start_at < ? AND end_at > ?",
				slot.InterviewerID, slot.EndAt, slot.StartAt).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return fmt.Errorf("%w: slot overlaps an existing one", ErrConflict)
		}
		return tx.Create(slot).Error
	})
}

// Delete removes a slot. Returns false when no slot with that id exists.
func (r *AvailabilityRepository) Delete(slotID string) (bool, error) {
	result := r.DB.Delete(&models.AvailabilitySlot{}, "id = ?", slotID)
	return result.RowsAffected > 0, result.Error
}
