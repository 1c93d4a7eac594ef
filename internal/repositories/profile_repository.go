package repositories

import (
	"errors"
	"fmt"

	"github.com/korobprog/supermock-app-sub000/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository reads the candidate and interviewer rosters synced from
// the external profile service.
type ProfileRepository struct {
	DB *gorm.DB
}

func (r *ProfileRepository) CreateCandidate(c *models.CandidateProfile) error {
	return r.DB.Create(c).Error
}

func (r *ProfileRepository) CandidateByID(id string) (*models.CandidateProfile, error) {
	var c models.CandidateProfile
	err := r.DB.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ProfileRepository) CreateInterviewer(p *models.InterviewerProfile) error {
	return r.DB.Create(p).Error
}

func (r *ProfileRepository) InterviewerByID(id string) (*models.InterviewerProfile, error) {
	var p models.InterviewerProfile
	err := r.DB.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: interviewer %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TopInterviewers returns up to limit interviewers ordered by rating descending.
func (r *ProfileRepository) TopInterviewers(limit int) ([]models.InterviewerProfile, error) {
	profiles := []models.InterviewerProfile{}
	err := r.DB.Order("rating DESC").Limit(limit).Find(&profiles).Error
	return profiles, err
}
