package realtime

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/korobprog/supermock-app-sub000/internal/models"
	"github.com/korobprog/supermock-app-sub000/internal/repositories"
	"github.com/korobprog/supermock-app-sub000/internal/testhelpers"
)

type eventCapture struct {
	events []SessionEvent
}

func (c *eventCapture) record(ev SessionEvent) { c.events = append(c.events, ev) }

func (c *eventCapture) actions() []string {
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Action
	}
	return out
}

func newPresence(t *testing.T) (*Engine, *Bus, *eventCapture) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	bus := NewBus()
	capture := &eventCapture{}
	bus.Subscribe(capture.record)
	e := NewEngine(&repositories.SessionRepository{DB: db}, bus, zap.NewNop())
	return e, bus, capture
}

func TestCreateSession(t *testing.T) {
	e, _, capture := newPresence(t)

	s, err := e.CreateSession(CreateSessionInput{
		HostID:   "host-1",
		MatchID:  "match-1",
		Metadata: models.MetadataMap{"provider": "livekit"},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.Status != models.SessionScheduled {
		t.Fatalf("expected SCHEDULED, got %s", s.Status)
	}

	if len(capture.events) != 1 || capture.events[0].Action != ActionCreated {
		t.Fatalf("expected one created event, got %v", capture.actions())
	}
	if capture.events[0].Session.ID != s.ID {
		t.Fatalf("event carries wrong session")
	}

	t.Run("missing host", func(t *testing.T) {
		if _, err := e.CreateSession(CreateSessionInput{}); !errors.Is(err, repositories.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestJoinActivatesSession(t *testing.T) {
	e, _, capture := newPresence(t)
	s, _ := e.CreateSession(CreateSessionInput{HostID: "host-1"})

	p, err := e.Join(s.ID, JoinInput{UserID: "u1", Role: models.RoleCandidate})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if p.Role != models.RoleCandidate {
		t.Fatalf("role not stored")
	}

	got, _ := e.ByID(s.ID)
	if got.Status != models.SessionActive {
		t.Fatalf("first join did not activate: %s", got.Status)
	}

	// Second join: status unchanged, participant count becomes 2.
	if _, err := e.Join(s.ID, JoinInput{UserID: "u2", Role: models.RoleInterviewer}); err != nil {
		t.Fatalf("second Join: %v", err)
	}
	got, _ = e.ByID(s.ID)
	if got.Status != models.SessionActive {
		t.Fatalf("second join changed status: %s", got.Status)
	}
	if len(got.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(got.Participants))
	}

	want := []string{ActionCreated, ActionParticipantJoined, ActionParticipantJoined}
	if len(capture.events) != len(want) {
		t.Fatalf("expected %v, got %v", want, capture.actions())
	}
	joined := capture.events[1]
	if joined.Participant == nil || joined.Participant.ID != p.ID {
		t.Fatalf("joined event missing participant")
	}
	if joined.Session.Status != models.SessionActive {
		t.Fatalf("joined event carries stale status %s", joined.Session.Status)
	}

	t.Run("default role", func(t *testing.T) {
		p, err := e.Join(s.ID, JoinInput{})
		if err != nil {
			t.Fatalf("anonymous join: %v", err)
		}
		if p.Role != models.RoleObserver {
			t.Fatalf("expected OBSERVER default, got %s", p.Role)
		}
	})

	t.Run("bad role", func(t *testing.T) {
		if _, err := e.Join(s.ID, JoinInput{Role: "HECKLER"}); !errors.Is(err, repositories.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := e.Join("ghost", JoinInput{}); !errors.Is(err, repositories.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestHeartbeat(t *testing.T) {
	e, _, capture := newPresence(t)
	s, _ := e.CreateSession(CreateSessionInput{HostID: "host-1"})
	p, _ := e.Join(s.ID, JoinInput{UserID: "u1"})

	ts := time.Now().UTC().Add(time.Minute).Truncate(time.Second)
	got, err := e.Heartbeat(s.ID, HeartbeatInput{ParticipantID: p.ID, Timestamp: &ts})
	if err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if got.LastHeartbeat == nil || !got.LastHeartbeat.Equal(ts) {
		t.Fatalf("lastHeartbeat not stamped: %v", got.LastHeartbeat)
	}
	if !got.Participants[0].LastSeenAt.Equal(ts) {
		t.Fatalf("participant lastSeenAt not stamped")
	}

	last := capture.events[len(capture.events)-1]
	if last.Action != ActionHeartbeat {
		t.Fatalf("expected heartbeat event, got %s", last.Action)
	}
	if last.Participant == nil || last.Participant.ID != p.ID {
		t.Fatalf("heartbeat event missing participant")
	}

	t.Run("default timestamp", func(t *testing.T) {
		before := time.Now()
		got, err := e.Heartbeat(s.ID, HeartbeatInput{})
		if err != nil {
			t.Fatalf("Heartbeat: %v", err)
		}
		if got.LastHeartbeat.Before(before.Add(-time.Second)) {
			t.Fatalf("default timestamp not near now: %v", got.LastHeartbeat)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := e.Heartbeat("ghost", HeartbeatInput{}); !errors.Is(err, repositories.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestLeave(t *testing.T) {
	e, _, capture := newPresence(t)
	s, _ := e.CreateSession(CreateSessionInput{HostID: "host-1"})
	p, _ := e.Join(s.ID, JoinInput{UserID: "u1"})

	left, err := e.Leave(s.ID, p.ID)
	if err != nil || !left {
		t.Fatalf("Leave: %v %v", left, err)
	}

	got, _ := e.ByID(s.ID)
	if len(got.Participants) != 1 {
		t.Fatalf("participant row removed on leave")
	}
	if got.Participants[0].LeftAt == nil {
		t.Fatalf("leftAt not stamped")
	}

	last := capture.events[len(capture.events)-1]
	if last.Action != ActionParticipantLeft {
		t.Fatalf("expected participant_left event, got %s", last.Action)
	}

	t.Run("repeat leave is a silent success", func(t *testing.T) {
		eventsBefore := len(capture.events)
		left, err := e.Leave(s.ID, p.ID)
		if err != nil || !left {
			t.Fatalf("repeat Leave: %v %v", left, err)
		}
		if len(capture.events) != eventsBefore {
			t.Fatalf("repeat leave emitted an event")
		}
	})

	t.Run("unknown participant", func(t *testing.T) {
		left, err := e.Leave(s.ID, "ghost")
		if left || !errors.Is(err, repositories.ErrNotFound) {
			t.Fatalf("expected not-found leave, got %v %v", left, err)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	e, _, capture := newPresence(t)
	s, _ := e.CreateSession(CreateSessionInput{HostID: "host-1"})

	got, err := e.UpdateStatus(s.ID, UpdateStatusInput{Status: models.SessionEnded})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != models.SessionEnded || got.EndedAt == nil {
		t.Fatalf("ENDED transition incomplete: %+v", got)
	}

	last := capture.events[len(capture.events)-1]
	if last.Action != ActionStatusUpdated {
		t.Fatalf("expected status_updated event, got %s", last.Action)
	}

	t.Run("bad status", func(t *testing.T) {
		if _, err := e.UpdateStatus(s.ID, UpdateStatusInput{Status: "PAUSED"}); !errors.Is(err, repositories.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestRestore(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &repositories.SessionRepository{DB: db}

	// First process life: two live sessions, one ended.
	bus1 := NewBus()
	e1 := NewEngine(repo, bus1, zap.NewNop())
	a, _ := e1.CreateSession(CreateSessionInput{HostID: "host-1", Metadata: models.MetadataMap{"room": "a"}})
	if _, err := e1.Join(a.ID, JoinInput{UserID: "u1", Role: models.RoleCandidate}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	b, _ := e1.CreateSession(CreateSessionInput{HostID: "host-2"})
	ended, _ := e1.CreateSession(CreateSessionInput{HostID: "host-3"})
	if _, err := e1.UpdateStatus(ended.ID, UpdateStatusInput{Status: models.SessionEnded}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// Restarted process: fresh bus, fresh subscribers.
	bus2 := NewBus()
	capture := &eventCapture{}
	bus2.Subscribe(capture.record)
	e2 := NewEngine(repo, bus2, zap.NewNop())

	n, err := e2.Restore()
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 restored sessions, got %d", n)
	}

	restored := map[string]SessionEvent{}
	for _, ev := range capture.events {
		if ev.Action != ActionRestored {
			t.Fatalf("unexpected action %s", ev.Action)
		}
		restored[ev.Session.ID] = ev
	}
	if _, ok := restored[ended.ID]; ok {
		t.Fatalf("terminal session replayed")
	}

	evA, ok := restored[a.ID]
	if !ok {
		t.Fatalf("session %s not replayed", a.ID)
	}
	if evA.Session.Status != models.SessionActive {
		t.Fatalf("restored snapshot has wrong status: %s", evA.Session.Status)
	}
	if len(evA.Session.Participants) != 1 || evA.Session.Participants[0].UserID != "u1" {
		t.Fatalf("restored snapshot missing participants: %#v", evA.Session.Participants)
	}
	if evA.Session.Metadata["room"] != "a" {
		t.Fatalf("restored snapshot missing metadata")
	}
	if _, ok := restored[b.ID]; !ok {
		t.Fatalf("session %s not replayed", b.ID)
	}
}

func TestRemoveSession(t *testing.T) {
	e, _, _ := newPresence(t)
	s, _ := e.CreateSession(CreateSessionInput{HostID: "host-1"})
	if _, err := e.Join(s.ID, JoinInput{UserID: "u1"}); err != nil {
		t.Fatalf("Join: %v", err)
	}

	removed, err := e.Remove(s.ID)
	if err != nil || !removed {
		t.Fatalf("Remove: %v %v", removed, err)
	}
	if _, err := e.ByID(s.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("session still readable after remove")
	}
}

func TestCounts(t *testing.T) {
	e, _, _ := newPresence(t)
	a, _ := e.CreateSession(CreateSessionInput{HostID: "h1"})
	if _, err := e.Join(a.ID, JoinInput{}); err != nil {
		t.Fatalf("Join: %v", err)
	}
	b, _ := e.CreateSession(CreateSessionInput{HostID: "h2"})
	if _, err := e.UpdateStatus(b.ID, UpdateStatusInput{Status: models.SessionEnded}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	e.CreateSession(CreateSessionInput{HostID: "h3"})

	active, _ := e.ActiveCount()
	completed, _ := e.CompletedCount()
	if active != 1 || completed != 1 {
		t.Fatalf("counts wrong: active=%d completed=%d", active, completed)
	}

	snapshot, err := e.Snapshot()
	if err != nil || len(snapshot) != 3 {
		t.Fatalf("snapshot: %d (%v)", len(snapshot), err)
	}
}
