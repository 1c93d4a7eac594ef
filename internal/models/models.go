package models

import (
	"time"
)

// Match request lifecycle states.
const (
	RequestQueued    = "QUEUED"
	RequestScheduled = "SCHEDULED"
	RequestCompleted = "COMPLETED"
	RequestExpired   = "EXPIRED"
)

// Session formats a candidate can ask for.
const (
	FormatCoding       = "CODING"
	FormatSystemDesign = "SYSTEM_DESIGN"
	FormatBehavioral   = "BEHAVIORAL"
	FormatMixed        = "MIXED"
)

// Interview match states.
const (
	MatchScheduled = "SCHEDULED"
	MatchCompleted = "COMPLETED"
)

// Realtime session states.
const (
	SessionScheduled = "SCHEDULED"
	SessionActive    = "ACTIVE"
	SessionEnded     = "ENDED"
)

// Participant roles inside a realtime session.
const (
	RoleCandidate   = "CANDIDATE"
	RoleInterviewer = "INTERVIEWER"
	RoleObserver    = "OBSERVER"
)

// StringList is a set/list of strings persisted as a JSON column.
type StringList []string

// MetadataMap is an opaque key/value payload persisted as a JSON column.
// The core stores and echoes it back without interpreting it.
type MetadataMap map[string]any

// Clone returns an independent copy of the map.
func (m MetadataMap) Clone() MetadataMap {
	if m == nil {
		return nil
	}
	out := make(MetadataMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy of the list.
func (l StringList) Clone() StringList {
	if l == nil {
		return nil
	}
	out := make(StringList, len(l))
	copy(out, l)
	return out
}

// CandidateProfile mirrors the identity supplied by the external profile
// service. The matching engine only reads it by id.
type CandidateProfile struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	DisplayName string    `json:"displayName"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InterviewerProfile is read-mostly reference data used for ranking.
type InterviewerProfile struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	DisplayName     string     `json:"displayName"`
	Timezone        string     `json:"timezone"`
	ExperienceYears int        `json:"experienceYears"`
	Languages       StringList `gorm:"serializer:json" json:"languages"`
	Specializations StringList `gorm:"serializer:json" json:"specializations"`
	Rating          float64    `gorm:"index" json:"rating"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// AvailabilitySlot is a bounded interval during which an interviewer can be
// booked. Slots for one interviewer never overlap; a slot is deleted the
// moment a scheduling call consumes it.
type AvailabilitySlot struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	InterviewerID string    `gorm:"index;not null" json:"interviewerId"`
	StartAt       time.Time `gorm:"index" json:"start"`
	EndAt         time.Time `json:"end"`
	IsRecurring   bool      `json:"isRecurring"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MatchRequest is one candidate's ask. Mutated only by the matching engine.
type MatchRequest struct {
	ID                 string     `gorm:"primaryKey" json:"id"`
	CandidateID        string     `gorm:"index;not null" json:"candidateId"`
	TargetRole         string     `json:"targetRole"`
	FocusAreas         StringList `gorm:"serializer:json" json:"focusAreas"`
	PreferredLanguages StringList `gorm:"serializer:json" json:"preferredLanguages"`
	SessionFormat      string     `json:"sessionFormat"`
	Notes              string     `json:"notes,omitempty"`
	Status             string     `gorm:"index" json:"status"`
	MatchedAt          *time.Time `json:"matchedAt,omitempty"`
	ExpiresAt          time.Time  `json:"expiresAt"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// InterviewMatch is the 1:1 scheduling result for a request. Rescheduling and
// completion update the row in place; it is never duplicated per request.
type InterviewMatch struct {
	ID                 string            `gorm:"primaryKey" json:"id"`
	RequestID          string            `gorm:"uniqueIndex;not null" json:"requestId"`
	InterviewerID      string            `gorm:"index;not null" json:"interviewerId"`
	ScheduledAt        time.Time         `json:"scheduledAt"`
	RoomURL            string            `json:"roomUrl,omitempty"`
	Status             string            `gorm:"index" json:"status"`
	EffectivenessScore float64           `json:"effectivenessScore"`
	CompletedAt        *time.Time        `json:"completedAt,omitempty"`
	Summary            *InterviewSummary `gorm:"foreignKey:MatchID" json:"summary,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// InterviewSummary holds completion feedback, attached 1:1 to a match.
type InterviewSummary struct {
	ID               string      `gorm:"primaryKey" json:"id"`
	MatchID          string      `gorm:"uniqueIndex;not null" json:"matchId"`
	InterviewerNotes string      `json:"interviewerNotes"`
	CandidateNotes   string      `json:"candidateNotes,omitempty"`
	Strengths        StringList  `gorm:"serializer:json" json:"strengths"`
	Improvements     StringList  `gorm:"serializer:json" json:"improvements"`
	Rating           int         `json:"rating"`
	AIHighlights     MetadataMap `gorm:"serializer:json" json:"aiHighlights,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// RealtimeSession is a live video room's presence record.
type RealtimeSession struct {
	ID            string               `gorm:"primaryKey" json:"id"`
	MatchID       string               `gorm:"index" json:"matchId,omitempty"`
	HostID        string               `gorm:"index;not null" json:"hostId"`
	Status        string               `gorm:"index" json:"status"`
	StartedAt     time.Time            `json:"startedAt"`
	EndedAt       *time.Time           `json:"endedAt,omitempty"`
	LastHeartbeat *time.Time           `json:"lastHeartbeat,omitempty"`
	Metadata      MetadataMap          `gorm:"serializer:json" json:"metadata,omitempty"`
	Participants  []SessionParticipant `gorm:"foreignKey:SessionID" json:"participants,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// SessionParticipant is one attendee of a realtime session. Rows are kept
// after leave (leftAt is set instead) as an audit trail of who attended.
type SessionParticipant struct {
	ID           string      `gorm:"primaryKey" json:"id"`
	SessionID    string      `gorm:"index;not null" json:"sessionId"`
	UserID       string      `json:"userId,omitempty"`
	Role         string      `json:"role"`
	JoinedAt     time.Time   `json:"joinedAt"`
	LastSeenAt   time.Time   `json:"lastSeenAt"`
	LeftAt       *time.Time  `json:"leftAt,omitempty"`
	ConnectionID string      `json:"connectionId,omitempty"`
	Metadata     MetadataMap `gorm:"serializer:json" json:"metadata,omitempty"`
}
