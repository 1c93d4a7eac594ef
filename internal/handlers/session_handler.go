package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/korobprog/supermock-app-sub000/internal/fanout"
	"github.com/korobprog/supermock-app-sub000/internal/metrics"
	"github.com/korobprog/supermock-app-sub000/internal/realtime"
	"github.com/korobprog/supermock-app-sub000/internal/repositories"
	"github.com/korobprog/supermock-app-sub000/internal/utils"
)

// SessionHandler exposes the presence engine plus the fan-out WebSocket
// endpoint.
type SessionHandler struct {
	Engine    *realtime.Engine
	Hub       *fanout.Hub
	JWTSecret []byte

	upgrader websocket.Upgrader
}

func NewSessionHandler(engine *realtime.Engine, hub *fanout.Hub, secret []byte) *SessionHandler {
	return &SessionHandler{
		Engine:    engine,
		Hub:       hub,
		JWTSecret: secret,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in realtime.CreateSessionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.Engine.CreateSession(in)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, s)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Engine.ByID(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessions, err := h.Engine.List(repositories.SessionFilter{
		Status:  q.Get("status"),
		HostID:  q.Get("hostId"),
		MatchID: q.Get("matchId"),
		Limit:   limitParam(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Engine.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) Counts(w http.ResponseWriter, r *http.Request) {
	active, err := h.Engine.ActiveCount()
	if err != nil {
		writeError(w, err)
		return
	}
	completed, err := h.Engine.CompletedCount()
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int64{"active": active, "completed": completed})
}

func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var in realtime.JoinInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Engine.Join(chi.URLParam(r, "sessionId"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

func (h *SessionHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var in realtime.HeartbeatInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.Engine.Heartbeat(chi.URLParam(r, "sessionId"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}

type leaveReq struct {
	ParticipantID string `json:"participantId"`
}

func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var body leaveReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ParticipantID == "" {
		utils.JSONError(w, http.StatusBadRequest, "participantId is required")
		return
	}

	left, err := h.Engine.Leave(chi.URLParam(r, "sessionId"), body.ParticipantID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"left": left})
}

func (h *SessionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in realtime.UpdateStatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.Engine.UpdateStatus(chi.URLParam(r, "sessionId"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}

func (h *SessionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Engine.Remove(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !removed {
		utils.JSONError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"removed": true})
}

type tokenReq struct {
	UserID string `json:"userId"`
}

// IssueToken mints a room token for the fan-out WebSocket endpoint.
func (h *SessionHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if _, err := h.Engine.ByID(sessionID); err != nil {
		writeError(w, err)
		return
	}

	var body tokenReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := utils.GenerateRoomToken(sessionID, body.UserID, h.JWTSecret)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"token": token})
}

// Watch upgrades to WebSocket and streams the session's broadcast events
// until the client disconnects.
func (h *SessionHandler) Watch(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	token := r.URL.Query().Get("token")

	tokenSession, _, err := utils.ValidateRoomToken(token, h.JWTSecret)
	if err != nil || tokenSession != sessionID {
		utils.JSONError(w, http.StatusUnauthorized, "invalid room token")
		return
	}
	if _, err := h.Engine.ByID(sessionID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := fanout.NewClient(conn)
	h.Hub.Watch(sessionID, client)
	metrics.FanoutClientConnected()
	defer func() {
		h.Hub.Unwatch(sessionID, client)
		metrics.FanoutClientDisconnected()
		conn.Close()
	}()

	// Inbound frames are not interpreted; the read loop only detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
