package allocator

import (
	"errors"
	"fmt"
)

var (
	ErrNotActive        = errors.New("no active roster")
	ErrAlreadyActive    = errors.New("a roster is already active")
	ErrSlotAlreadyEmpty = errors.New("slot is already empty")
	ErrUnknownSlot      = errors.New("unknown slot")
	ErrInvalidTier      = fmt.Errorf("tier must be between %d and %d", MinTier, MaxTier)
	ErrEmptyParticipant = errors.New("participant id is required")

	ErrSlotTaken  = errors.New("slot is already taken")
	ErrNoCapacity = errors.New("no slots available")
)

// SlotTakenError is returned when a slot is held by another participant.
type SlotTakenError struct {
	Slot   SlotID
	Holder ParticipantID
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("slot %s is already taken by %s", e.Slot, e.Holder)
}

func (e *SlotTakenError) Is(target error) bool { return target == ErrSlotTaken }

// NoCapacityError is returned when the remaining capacity is reserved by
// fill queue members.
type NoCapacityError struct {
	Reserved int
	Filled   int
	Total    int
}

func (e *NoCapacityError) Error() string {
	return fmt.Sprintf("no slots available: %d reserved for fill (%d/%d)", e.Reserved, e.Filled+e.Reserved, e.Total)
}

func (e *NoCapacityError) Is(target error) bool { return target == ErrNoCapacity }

// OutcomeFor maps an engine error onto the outcome reported to transports.
func OutcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSlotTaken):
		return OutcomeSlotTaken
	case errors.Is(err, ErrNoCapacity):
		return OutcomeNoCapacity
	case errors.Is(err, ErrNotActive):
		return OutcomeNotActive
	case errors.Is(err, ErrAlreadyActive):
		return OutcomeAlreadyActive
	case errors.Is(err, ErrSlotAlreadyEmpty):
		return OutcomeSlotAlreadyEmpty
	case errors.Is(err, ErrUnknownSlot):
		return OutcomeUnknownSlot
	case errors.Is(err, ErrInvalidTier):
		return OutcomeInvalidTier
	}
	return OutcomeInvalidRequest
}
