package queues

import (
	"context"
	"time"
)

type Action string

const (
	ActionText       Action = "text"
	ActionClaim      Action = "claim"
	ActionFill       Action = "fill"
	ActionCreate     Action = "create"
	ActionAddUser    Action = "adduser"
	ActionRemoveUser Action = "removeuser"
	ActionReset      Action = "reset"
)

// RosterRequest is one inbound transport event: chat text from a participant
// or an explicit admin action.
type RosterRequest struct {
	RequestID           string `json:"requestId"`
	Action              Action `json:"action"`
	ParticipantID       string `json:"participantId,omitempty"`
	RawText             string `json:"rawText,omitempty"`
	Slot                string `json:"slot,omitempty"`
	TargetParticipantID string `json:"targetParticipantId,omitempty"`
	Location            string `json:"location,omitempty"`
	Tier                int    `json:"tier,omitempty"`
	Title               string `json:"title,omitempty"`
	ThreadID            string `json:"threadId,omitempty"`
}

// Validate reports the first missing field for the request action.
func (r *RosterRequest) Validate() error {
	switch r.Action {
	case ActionText:
		if r.ParticipantID == "" {
			return errMissing("participantId")
		}
	case ActionClaim, ActionCreate:
		if r.ParticipantID == "" {
			return errMissing("participantId")
		}
		if r.Slot == "" {
			return errMissing("slot")
		}
	case ActionFill:
		if r.ParticipantID == "" {
			return errMissing("participantId")
		}
	case ActionAddUser:
		if r.TargetParticipantID == "" {
			return errMissing("targetParticipantId")
		}
		if r.Slot == "" {
			return errMissing("slot")
		}
	case ActionRemoveUser:
		if r.Slot == "" {
			return errMissing("slot")
		}
	case ActionReset:
	default:
		return &InvalidRequestError{Reason: "unknown action " + string(r.Action)}
	}
	return nil
}

type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return "invalid roster request: " + e.Reason }

func errMissing(field string) error {
	return &InvalidRequestError{Reason: "missing " + field}
}

type SlotView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Emoji    string `json:"emoji,omitempty"`
	Occupant string `json:"occupant,omitempty"`
}

// RosterSnapshot is the wire form of the full roster state.
type RosterSnapshot struct {
	Active    bool       `json:"active"`
	Location  string     `json:"location"`
	Tier      int        `json:"tier"`
	Title     string     `json:"title,omitempty"`
	Slots     []SlotView `json:"slots"`
	Fill      []string   `json:"fill"`
	Filled    int        `json:"filled"`
	Queued    int        `json:"queued"`
	Total     int        `json:"total"`
	Version   uint64     `json:"version"`
	ThreadID  string     `json:"threadId,omitempty"`
	ChannelID string     `json:"channelId,omitempty"`
	MessageID string     `json:"messageId,omitempty"`
}

// Claimed is occupied slots plus queued fillers.
func (s RosterSnapshot) Claimed() int { return s.Filled + s.Queued }

type Promotion struct {
	ParticipantID string    `json:"participantId"`
	Slot          string    `json:"slot"`
	At            time.Time `json:"at"`
}

// RosterChanged is emitted after every handled request.
type RosterChanged struct {
	EnvelopeVersion string         `json:"envelopeVersion"`
	Type            string         `json:"type"`
	EventID         string         `json:"eventId"`
	RequestID       string         `json:"requestId,omitempty"`
	Action          Action         `json:"action"`
	Outcome         string         `json:"outcome"`
	Changed         bool           `json:"changed"`
	Slot            string         `json:"slot,omitempty"`
	ParticipantID   string         `json:"participantId,omitempty"`
	Holder          string         `json:"holder,omitempty"`
	Reserved        int            `json:"reserved,omitempty"`
	Position        int            `json:"position,omitempty"`
	ErrorMessage    *string        `json:"errorMessage,omitempty"`
	Promotions      []Promotion    `json:"promotions,omitempty"`
	Roster          RosterSnapshot `json:"roster"`
	OccurredAt      time.Time      `json:"occurredAt"`
}

const (
	EnvelopeVersion   = "1.0"
	TypeRosterChanged = "roster-changed"
)

type Subscriber interface {
	Start(ctx context.Context, handler func(context.Context, *RosterRequest) error) error
}

type Publisher interface {
	PublishRosterChanged(ctx context.Context, ev *RosterChanged) error
}
