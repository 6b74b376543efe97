package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roster-bot/metrics"
	"roster-bot/queues"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sink is a named destination for RosterChanged events.
type Sink struct {
	Name      string
	Publisher queues.Publisher
}

// Controller wires transport requests to the engine and fans the committed
// result out to every sink once the engine lock is released.
type Controller struct {
	engine *Engine
	sinks  []Sink
}

func NewController(engine *Engine, sinks ...Sink) *Controller {
	return &Controller{engine: engine, sinks: sinks}
}

// AddSink registers another destination. Not safe once Handle is in use.
func (c *Controller) AddSink(s Sink) {
	c.sinks = append(c.sinks, s)
}

func (c *Controller) Engine() *Engine { return c.engine }

// Handled is what a transport needs to answer the caller.
type Handled struct {
	Result Result
	// Err is the engine or validation error; nil for success and no-ops.
	Err error
	// NotifyErr is a soft failure: the mutation is committed but at least one
	// sink could not be updated.
	NotifyErr error
}

// Handle applies req and publishes the outcome. Engine failures are returned
// in Handled, never retried, and never roll anything back.
func (c *Controller) Handle(ctx context.Context, req *queues.RosterRequest) *Handled {
	log.Debug().Str("requestId", req.RequestID).Str("action", string(req.Action)).Str("participant", req.ParticipantID).Msg("controller: handling roster request")

	if err := req.Validate(); err != nil {
		log.Warn().Err(err).Str("requestId", req.RequestID).Msg("controller: rejecting invalid request")
		metrics.OperationsTotal.WithLabelValues(string(req.Action), string(OutcomeInvalidRequest)).Inc()
		return &Handled{
			Result: Result{Op: Op(req.Action), Outcome: OutcomeInvalidRequest, Snapshot: c.engine.Snapshot()},
			Err:    err,
		}
	}

	res, err := c.apply(req)
	c.observe(res)
	h := &Handled{Result: res, Err: err}

	if err != nil {
		log.Info().Err(err).Str("requestId", req.RequestID).Str("op", string(res.Op)).Str("outcome", string(res.Outcome)).Msg("controller: roster operation rejected")
	} else if res.Outcome != OutcomeNoMatch {
		log.Info().Str("requestId", req.RequestID).Str("op", string(res.Op)).Str("outcome", string(res.Outcome)).
			Str("slot", string(res.Slot)).Str("participant", string(res.Participant)).
			Int("filled", res.Snapshot.Filled).Int("queued", res.Snapshot.Queued).Msg("controller: roster operation applied")
	}
	for _, p := range res.Promotions {
		log.Info().Str("participant", string(p.Participant)).Str("slot", string(p.Slot)).Msg("controller: promoted from fill")
	}

	// unmatched chat text is not a roster event
	if res.Outcome == OutcomeNoMatch {
		return h
	}
	h.NotifyErr = c.publish(ctx, c.envelope(req, res, err))
	return h
}

func (c *Controller) apply(req *queues.RosterRequest) (Result, error) {
	p := ParticipantID(req.ParticipantID)
	slot := SlotID(req.Slot)
	switch req.Action {
	case queues.ActionText:
		return c.engine.HandleText(p, req.RawText)
	case queues.ActionClaim:
		return c.engine.ClaimSlot(slot, p)
	case queues.ActionFill:
		return c.engine.JoinFill(p)
	case queues.ActionCreate:
		meta := Metadata{Location: req.Location, Tier: req.Tier, Title: req.Title}
		target := RenderTarget{ThreadID: req.ThreadID, ChannelID: req.ThreadID}
		return c.engine.Create(slot, p, meta, target)
	case queues.ActionAddUser:
		return c.engine.AdminAssign(slot, ParticipantID(req.TargetParticipantID))
	case queues.ActionRemoveUser:
		return c.engine.AdminRelease(slot)
	case queues.ActionReset:
		return c.engine.Reset(), nil
	}
	return Result{Op: Op(req.Action), Outcome: OutcomeInvalidRequest, Snapshot: c.engine.Snapshot()},
		&queues.InvalidRequestError{Reason: "unknown action " + string(req.Action)}
}

func (c *Controller) observe(res Result) {
	metrics.OperationsTotal.WithLabelValues(string(res.Op), string(res.Outcome)).Inc()
	metrics.OperationDuration.Observe(res.Duration.Seconds())
	if n := len(res.Promotions); n > 0 {
		metrics.PromotionsTotal.Add(float64(n))
	}
	metrics.SlotsFilled.Set(float64(res.Snapshot.Filled))
	metrics.FillQueueLength.Set(float64(res.Snapshot.Queued))
}

// publish delivers ev to every sink. A failing sink does not stop the others.
func (c *Controller) publish(ctx context.Context, ev *queues.RosterChanged) error {
	var errs []error
	for _, s := range c.sinks {
		if err := s.Publisher.PublishRosterChanged(ctx, ev); err != nil {
			metrics.NotifyFailures.WithLabelValues(s.Name).Inc()
			log.Error().Err(err).Str("sink", s.Name).Str("eventId", ev.EventID).Str("outcome", ev.Outcome).Msg("controller: failed to publish roster change")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Controller) envelope(req *queues.RosterRequest, res Result, err error) *queues.RosterChanged {
	ev := &queues.RosterChanged{
		EnvelopeVersion: queues.EnvelopeVersion,
		Type:            queues.TypeRosterChanged,
		EventID:         uuid.NewString(),
		RequestID:       req.RequestID,
		Action:          req.Action,
		Outcome:         string(res.Outcome),
		Changed:         res.Changed,
		Slot:            string(res.Slot),
		ParticipantID:   string(res.Participant),
		Holder:          string(res.Holder),
		Reserved:        res.Reserved,
		Position:        res.Position,
		Roster:          WireSnapshot(res.Snapshot),
		OccurredAt:      time.Now().UTC(),
	}
	if err != nil {
		msg := err.Error()
		ev.ErrorMessage = &msg
	}
	for _, p := range res.Promotions {
		ev.Promotions = append(ev.Promotions, queues.Promotion{ParticipantID: string(p.Participant), Slot: string(p.Slot), At: p.At})
	}
	return ev
}

// WireSnapshot converts a Snapshot into its transport form.
func WireSnapshot(s Snapshot) queues.RosterSnapshot {
	out := queues.RosterSnapshot{
		Active:    s.Active,
		Location:  s.Metadata.Location,
		Tier:      s.Metadata.Tier,
		Title:     s.Metadata.Title,
		Slots:     make([]queues.SlotView, 0, len(s.Slots)),
		Fill:      make([]string, 0, len(s.Fill)),
		Filled:    s.Filled,
		Queued:    s.Queued,
		Total:     s.Total,
		Version:   s.Version,
		ThreadID:  s.Target.ThreadID,
		ChannelID: s.Target.ChannelID,
		MessageID: s.Target.MessageID,
	}
	for _, v := range s.Slots {
		out.Slots = append(out.Slots, queues.SlotView{ID: string(v.ID), Label: v.Label, Emoji: v.Emoji, Occupant: string(v.Occupant)})
	}
	for _, p := range s.Fill {
		out.Fill = append(out.Fill, string(p))
	}
	return out
}
