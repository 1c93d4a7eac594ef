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

// AvailabilityHandler exposes interviewer slot CRUD.
type AvailabilityHandler struct {
	Slots *repositories.AvailabilityRepository
}

// List returns an interviewer's slots ordered by start time.
func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	interviewerID := chi.URLParam(r, "interviewerId")
	if interviewerID == "" {
		utils.JSONError(w, http.StatusBadRequest, "interviewerId is required")
		return
	}

	slots, err := h.Slots.ListByInterviewer(interviewerID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, slots)
}

type createSlotReq struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	IsRecurring bool      `json:"isRecurring"`
}

// Create inserts a new slot, rejecting overlaps with 409.
func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	interviewerID := chi.URLParam(r, "interviewerId")
	if interviewerID == "" {
		utils.JSONError(w, http.StatusBadRequest, "interviewerId is required")
		return
	}

	var req createSlotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slot := &models.AvailabilitySlot{
		ID:            uuid.New().String(),
		InterviewerID: interviewerID,
		StartAt:       req.Start,
		EndAt:         req.End,
		IsRecurring:   req.IsRecurring,
		CreatedAt:     time.Now(),
	}
	if err := h.Slots.Create(slot); err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, slot)
}

// Delete removes a slot; 404 when it does not exist.
func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "slotId")

	deleted, err := h.Slots.Delete(slotID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		utils.JSONError(w, http.StatusNotFound, "slot not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
