package allocator

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Engine owns the roster state. Every public method is one critical section
// covering resolve, mutate, auto-promote and snapshot; callers do their I/O
// with the returned Result after the lock is released.
type Engine struct {
	mu       sync.Mutex
	schema   Schema
	resolver *Resolver
	state    *State
	now      func() time.Time
}

type Option func(*Engine)

// WithClock overrides time.Now, used for promotion and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(schema Schema, opts ...Option) *Engine {
	e := &Engine{
		schema:   schema,
		resolver: NewResolver(schema),
		state:    newState(schema),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Schema() Schema { return e.schema }

func (e *Engine) Resolver() *Resolver { return e.resolver }

func (e *Engine) apply(op Op, fn func(res *Result) error) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	res := Result{Op: op}
	err := fn(&res)
	if err != nil {
		res.Outcome = OutcomeFor(err)
		res.Changed = false
		var taken *SlotTakenError
		if errors.As(err, &taken) {
			res.Holder = taken.Holder
		}
		var full *NoCapacityError
		if errors.As(err, &full) {
			res.Reserved = full.Reserved
		}
	}
	if res.Changed {
		res.Promotions = e.state.promote(e.now())
		e.state.version++
	}
	res.Snapshot = e.state.snapshot()
	res.Duration = time.Since(start)
	return res, err
}

// Create opens a roster seeded with participant in slot seed.
func (e *Engine) Create(seed SlotID, participant ParticipantID, meta Metadata, target RenderTarget) (Result, error) {
	return e.apply(OpCreate, func(res *Result) error {
		res.Slot, res.Participant = seed, participant
		s := e.state
		if s.active {
			return ErrAlreadyActive
		}
		if err := e.checkSlot(seed); err != nil {
			return err
		}
		if participant == "" {
			return ErrEmptyParticipant
		}
		meta, err := normalizeMetadata(meta)
		if err != nil {
			return err
		}
		s.active = true
		s.meta = meta
		s.target = target
		s.createdAt = e.now()
		s.occupants[seed] = participant
		res.Outcome = OutcomeCreated
		res.Changed = true
		return nil
	})
}

// ClaimSlot assigns slot to participant, moving them out of any other slot or
// the fill queue.
func (e *Engine) ClaimSlot(slot SlotID, participant ParticipantID) (Result, error) {
	return e.apply(OpClaim, func(res *Result) error {
		return e.claim(res, slot, participant)
	})
}

// JoinFill puts participant at the tail of the fill queue, releasing any slot
// they hold.
func (e *Engine) JoinFill(participant ParticipantID) (Result, error) {
	return e.apply(OpJoinFill, func(res *Result) error {
		return e.joinFill(res, participant)
	})
}

// HandleText resolves chat text and applies the claim or fill intent in the
// same critical section. Text that resolves to nothing is a NoMatch no-op.
func (e *Engine) HandleText(participant ParticipantID, text string) (Result, error) {
	return e.apply(OpText, func(res *Result) error {
		r := e.resolver.Resolve(text)
		switch r.Kind {
		case ResolvedSlot:
			res.Op = OpClaim
			return e.claim(res, r.Slot, participant)
		case JoinFill:
			res.Op = OpJoinFill
			return e.joinFill(res, participant)
		}
		res.Participant = participant
		res.Outcome = OutcomeNoMatch
		return nil
	})
}

// AdminAssign places participant in a vacant slot regardless of the fill
// queue reservation. The participant leaves any other slot or queue entry.
func (e *Engine) AdminAssign(slot SlotID, participant ParticipantID) (Result, error) {
	return e.apply(OpAdminAssign, func(res *Result) error {
		res.Slot, res.Participant = slot, participant
		s := e.state
		if !s.active {
			return ErrNotActive
		}
		if err := e.checkSlot(slot); err != nil {
			return err
		}
		if participant == "" {
			return ErrEmptyParticipant
		}
		if holder := s.occupants[slot]; holder != "" {
			return &SlotTakenError{Slot: slot, Holder: holder}
		}
		s.vacate(participant)
		s.fill.Remove(participant)
		s.occupants[slot] = participant
		res.Outcome = OutcomeAssigned
		res.Changed = true
		return nil
	})
}

// AdminRelease clears slot. Result.Participant is the previous occupant.
func (e *Engine) AdminRelease(slot SlotID) (Result, error) {
	return e.apply(OpAdminRelease, func(res *Result) error {
		res.Slot = slot
		s := e.state
		if !s.active {
			return ErrNotActive
		}
		if err := e.checkSlot(slot); err != nil {
			return err
		}
		holder := s.occupants[slot]
		if holder == "" {
			return ErrSlotAlreadyEmpty
		}
		s.occupants[slot] = ""
		res.Participant = holder
		res.Outcome = OutcomeReleased
		res.Changed = true
		return nil
	})
}

// Reset returns to the inactive template. It always succeeds.
func (e *Engine) Reset() Result {
	res, _ := e.apply(OpReset, func(res *Result) error {
		wasActive := e.state.active
		e.state.reset()
		res.Outcome = OutcomeReset
		// the queue is empty after reset, so promotion has nothing to do
		res.Changed = wasActive
		return nil
	})
	return res
}

// SetBoardMessage records where the board was posted. It is render metadata
// only and never affects allocation.
func (e *Engine) SetBoardMessage(channelID, messageID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.active {
		return ErrNotActive
	}
	e.state.target.ChannelID = channelID
	e.state.target.MessageID = messageID
	return nil
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.snapshot()
}

func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.active
}

// InThread reports whether channelID is the thread of the active roster.
func (e *Engine) InThread(channelID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.active && channelID != "" && e.state.target.ThreadID == channelID
}

func (e *Engine) claim(res *Result, slot SlotID, participant ParticipantID) error {
	res.Slot, res.Participant = slot, participant
	s := e.state
	if !s.active {
		return ErrNotActive
	}
	if err := e.checkSlot(slot); err != nil {
		return err
	}
	if participant == "" {
		return ErrEmptyParticipant
	}
	holder := s.occupants[slot]
	if holder == participant {
		res.Outcome = OutcomeAlreadyHeld
		return nil
	}
	if holder != "" {
		return &SlotTakenError{Slot: slot, Holder: holder}
	}
	filled, reserved, total := s.filled(), s.fill.Len(), e.schema.Len()
	if total-filled-reserved <= 0 {
		return &NoCapacityError{Reserved: reserved, Filled: filled, Total: total}
	}
	s.vacate(participant)
	s.fill.Remove(participant)
	s.occupants[slot] = participant
	res.Outcome = OutcomeAssigned
	res.Changed = true
	return nil
}

func (e *Engine) joinFill(res *Result, participant ParticipantID) error {
	res.Participant = participant
	s := e.state
	if !s.active {
		return ErrNotActive
	}
	if participant == "" {
		return ErrEmptyParticipant
	}
	if pos, queued := s.fill.Position(participant); queued {
		res.Position = pos
		res.Outcome = OutcomeAlreadyQueued
		return nil
	}
	if freed := s.vacate(participant); len(freed) > 0 {
		res.Slot = freed[0]
	}
	res.Position, _ = s.fill.Enqueue(participant, e.now())
	res.Outcome = OutcomeQueued
	res.Changed = true
	return nil
}

func (e *Engine) checkSlot(slot SlotID) error {
	if !e.schema.Has(slot) {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	return nil
}

func normalizeMetadata(m Metadata) (Metadata, error) {
	m.Location = strings.TrimSpace(m.Location)
	if m.Location == "" {
		m.Location = DefaultLocation
	}
	if m.Tier == 0 {
		m.Tier = DefaultTier
	}
	if m.Tier < MinTier || m.Tier > MaxTier {
		return m, fmt.Errorf("%w: got %d", ErrInvalidTier, m.Tier)
	}
	m.Title = strings.TrimSpace(m.Title)
	return m, nil
}
