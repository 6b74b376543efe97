package allocator

import "time"

// SlotID names one position of a roster template (tank, heal, ...).
type SlotID string

// ParticipantID is the opaque identity supplied by the transport.
type ParticipantID string

const (
	DefaultLocation = "Brecilien"
	DefaultTier     = 7
	MinTier         = 1
	MaxTier         = 12
)

// Metadata is descriptive only; allocation never looks at it.
type Metadata struct {
	Location string
	Tier     int
	Title    string
}

func defaultMetadata() Metadata {
	return Metadata{Location: DefaultLocation, Tier: DefaultTier}
}

// RenderTarget points at the board message the render adapter keeps up to date.
type RenderTarget struct {
	ThreadID  string
	ChannelID string
	MessageID string
}

type Op string

const (
	OpCreate       Op = "create"
	OpClaim        Op = "claim"
	OpJoinFill     Op = "fill"
	OpAdminAssign  Op = "adduser"
	OpAdminRelease Op = "removeuser"
	OpReset        Op = "reset"
	OpText         Op = "text"
)

type Outcome string

const (
	OutcomeCreated  Outcome = "Created"
	OutcomeAssigned Outcome = "Assigned"
	OutcomeQueued   Outcome = "Queued"
	OutcomeReleased Outcome = "Released"
	OutcomeReset    Outcome = "Reset"

	OutcomeAlreadyHeld   Outcome = "AlreadyHeld"
	OutcomeAlreadyQueued Outcome = "AlreadyQueued"
	OutcomeNoMatch       Outcome = "NoMatch"

	OutcomeSlotTaken        Outcome = "SlotTaken"
	OutcomeNoCapacity       Outcome = "NoCapacity"
	OutcomeNotActive        Outcome = "NotActive"
	OutcomeAlreadyActive    Outcome = "AlreadyActive"
	OutcomeSlotAlreadyEmpty Outcome = "SlotAlreadyEmpty"
	OutcomeUnknownSlot      Outcome = "UnknownSlot"
	OutcomeInvalidTier      Outcome = "InvalidTier"
	OutcomeInvalidRequest   Outcome = "InvalidRequest"
)

// Failed reports whether the outcome rejected the operation.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeSlotTaken, OutcomeNoCapacity, OutcomeNotActive, OutcomeAlreadyActive,
		OutcomeSlotAlreadyEmpty, OutcomeUnknownSlot, OutcomeInvalidTier, OutcomeInvalidRequest:
		return true
	}
	return false
}

// Informational reports whether the outcome is an acknowledged no-op.
func (o Outcome) Informational() bool {
	return o == OutcomeAlreadyHeld || o == OutcomeAlreadyQueued || o == OutcomeNoMatch
}

// Promotion records one fill queue member moved into a vacant slot.
type Promotion struct {
	Participant ParticipantID
	Slot        SlotID
	At          time.Time
}

// Result describes what one engine operation did. Snapshot is taken inside
// the critical section, after auto-promotion.
type Result struct {
	Op          Op
	Outcome     Outcome
	Slot        SlotID
	Participant ParticipantID
	// Holder is set for SlotTaken.
	Holder ParticipantID
	// Reserved is set for NoCapacity.
	Reserved int
	// Position is the 1-based fill queue position for Queued.
	Position   int
	Changed    bool
	Promotions []Promotion
	Snapshot   Snapshot
	Duration   time.Duration
}
