package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/korobprog/supermock-app-sub000/internal/matching"
	"github.com/korobprog/supermock-app-sub000/internal/utils"
)

// MatchingHandler exposes the matching engine operations.
type MatchingHandler struct {
	Engine *matching.Engine
}

func (h *MatchingHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in matching.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Engine.CreateMatchRequest(in)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}

func (h *MatchingHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Engine.RequestByID(chi.URLParam(r, "requestId"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *MatchingHandler) GetPreviews(w http.ResponseWriter, r *http.Request) {
	previews, err := h.Engine.GetMatchPreviews(chi.URLParam(r, "requestId"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, previews)
}

type scheduleReq struct {
	AvailabilitySlotID string `json:"availabilitySlotId"`
	RoomURL            string `json:"roomUrl"`
}

func (h *MatchingHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var body scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.AvailabilitySlotID == "" {
		utils.JSONError(w, http.StatusBadRequest, "availabilitySlotId is required")
		return
	}

	req, err := h.Engine.ScheduleMatch(chi.URLParam(r, "requestId"), body.AvailabilitySlotID, body.RoomURL)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *MatchingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var in matching.CompleteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Engine.CompleteMatch(chi.URLParam(r, "matchId"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, req)
}

func (h *MatchingHandler) RecentSessions(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Engine.ListRecentSessions(limitParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, matches)
}

func (h *MatchingHandler) InterviewerSessions(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Engine.GetInterviewerSessions(chi.URLParam(r, "interviewerId"), limitParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, matches)
}

func limitParam(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
