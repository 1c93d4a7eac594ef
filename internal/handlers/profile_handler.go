package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/korobprog/supermock-app-sub000/internal/models"
	"github.com/korobprog/supermock-app-sub000/internal/repositories"
	"github.com/korobprog/supermock-app-sub000/internal/utils"
)

// ProfileHandler is the sync glue for rosters owned by the external profile
// service.
type ProfileHandler struct {
	Profiles *repositories.ProfileRepository
}

func (h *ProfileHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var c models.CandidateProfile
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := h.Profiles.CreateCandidate(&c); err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

func (h *ProfileHandler) CreateInterviewer(w http.ResponseWriter, r *http.Request) {
	var p models.InterviewerProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := h.Profiles.CreateInterviewer(&p); err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

func (h *ProfileHandler) GetInterviewer(w http.ResponseWriter, r *http.Request) {
	p, err := h.Profiles.InterviewerByID(chi.URLParam(r, "interviewerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}
