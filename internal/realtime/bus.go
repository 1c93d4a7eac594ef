package realtime

import (
	"sync"
	"time"

	"github.com/korobprog/supermock-app-sub000/internal/models"
)

// Broadcast actions.
const (
	ActionCreated           = "created"
	ActionParticipantJoined = "participant_joined"
	ActionParticipantLeft   = "participant_left"
	ActionHeartbeat         = "heartbeat"
	ActionStatusUpdated     = "status_updated"
	ActionRestored          = "restored"
)

// SessionEvent is one state-change broadcast. Every subscriber receives its
// own deep copy: mutating the snapshot inside a handler is never visible to
// other subscribers, to later events, or to the stored entity.
type SessionEvent struct {
	Action      string                     `json:"action"`
	Session     models.RealtimeSession     `json:"session"`
	Participant *models.SessionParticipant `json:"participant,omitempty"`
}

// Bus is the process-wide publish/subscribe channel for session events.
// Dispatch is synchronous: Publish returns after every handler has run.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]func(SessionEvent)
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(SessionEvent))}
}

// Subscribe registers a handler and returns its subscription id.
func (b *Bus) Subscribe(fn func(SessionEvent)) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs[b.next] = fn
	return b.next
}

// Unsubscribe removes a handler. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// SubscriberCount reports how many handlers are registered.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish hands an independently-owned clone of the event to each subscriber
// in turn. It never blocks beyond the handlers' own execution.
func (b *Bus) Publish(ev SessionEvent) {
	b.mu.RLock()
	handlers := make([]func(SessionEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(cloneEvent(ev))
	}
}

func cloneEvent(ev SessionEvent) SessionEvent {
	out := SessionEvent{
		Action:  ev.Action,
		Session: cloneSession(ev.Session),
	}
	if ev.Participant != nil {
		p := cloneParticipant(*ev.Participant)
		out.Participant = &p
	}
	return out
}

func cloneSession(s models.RealtimeSession) models.RealtimeSession {
	out := s
	out.EndedAt = cloneTime(s.EndedAt)
	out.LastHeartbeat = cloneTime(s.LastHeartbeat)
	out.Metadata = s.Metadata.Clone()
	if s.Participants != nil {
		out.Participants = make([]models.SessionParticipant, len(s.Participants))
		for i, p := range s.Participants {
			out.Participants[i] = cloneParticipant(p)
		}
	}
	return out
}

func cloneParticipant(p models.SessionParticipant) models.SessionParticipant {
	out := p
	out.LeftAt = cloneTime(p.LeftAt)
	out.Metadata = p.Metadata.Clone()
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
