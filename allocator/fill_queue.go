package allocator

import "time"

// FillEntry is one participant waiting for any slot.
type FillEntry struct {
	Participant ParticipantID
	JoinedAt    time.Time
	Position    int
}

// FillQueue is the FIFO waitlist of a roster. It has no lock of its own: the
// engine owning it serializes every access.
type FillQueue struct {
	entries []*FillEntry
}

func NewFillQueue() *FillQueue {
	return &FillQueue{}
}

// Enqueue appends p and returns its 1-based position. Duplicates are not
// re-added; their current position is returned with ok=false.
func (q *FillQueue) Enqueue(p ParticipantID, at time.Time) (pos int, ok bool) {
	if pos, found := q.Position(p); found {
		return pos, false
	}
	entry := &FillEntry{Participant: p, JoinedAt: at, Position: len(q.entries) + 1}
	q.entries = append(q.entries, entry)
	return entry.Position, true
}

// Dequeue pops the oldest entry, or nil when empty.
func (q *FillQueue) Dequeue() *FillEntry {
	if len(q.entries) == 0 {
		return nil
	}
	entry := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]
	q.renumber()
	return entry
}

func (q *FillQueue) Position(p ParticipantID) (int, bool) {
	for _, e := range q.entries {
		if e.Participant == p {
			return e.Position, true
		}
	}
	return 0, false
}

func (q *FillQueue) Contains(p ParticipantID) bool {
	_, ok := q.Position(p)
	return ok
}

// Remove drops p from the queue, reporting whether it was present.
func (q *FillQueue) Remove(p ParticipantID) bool {
	for i, e := range q.entries {
		if e.Participant == p {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			q.renumber()
			return true
		}
	}
	return false
}

func (q *FillQueue) Len() int { return len(q.entries) }

func (q *FillQueue) Clear() { q.entries = nil }

// Participants returns queue members oldest first.
func (q *FillQueue) Participants() []ParticipantID {
	out := make([]ParticipantID, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.Participant
	}
	return out
}

func (q *FillQueue) renumber() {
	for i, e := range q.entries {
		e.Position = i + 1
	}
}
