package allocator

import "time"

// State is the mutable record of one roster lifecycle. Only Engine touches it.
type State struct {
	schema    Schema
	active    bool
	meta      Metadata
	occupants map[SlotID]ParticipantID
	fill      *FillQueue
	target    RenderTarget
	createdAt time.Time
	// version increases on every committed change, across resets too.
	version uint64
}

func newState(schema Schema) *State {
	s := &State{schema: schema, fill: NewFillQueue()}
	s.reset()
	return s
}

// reset returns the state to the inactive template.
func (s *State) reset() {
	s.active = false
	s.meta = defaultMetadata()
	s.occupants = make(map[SlotID]ParticipantID, s.schema.Len())
	for _, id := range s.schema.IDs() {
		s.occupants[id] = ""
	}
	s.fill.Clear()
	s.target = RenderTarget{}
	s.createdAt = time.Time{}
}

func (s *State) filled() int {
	n := 0
	for _, p := range s.occupants {
		if p != "" {
			n++
		}
	}
	return n
}

// vacate clears every slot held by p and returns the slots it freed.
func (s *State) vacate(p ParticipantID) []SlotID {
	var freed []SlotID
	for _, id := range s.schema.IDs() {
		if s.occupants[id] == p {
			s.occupants[id] = ""
			freed = append(freed, id)
		}
	}
	return freed
}

// promote drains the fill queue into vacant slots, lowest schema index first,
// oldest queue member first.
func (s *State) promote(now time.Time) []Promotion {
	var promoted []Promotion
	for s.fill.Len() > 0 {
		slot, ok := s.firstVacant()
		if !ok {
			break
		}
		entry := s.fill.Dequeue()
		s.occupants[slot] = entry.Participant
		promoted = append(promoted, Promotion{Participant: entry.Participant, Slot: slot, At: now})
	}
	return promoted
}

func (s *State) firstVacant() (SlotID, bool) {
	for _, id := range s.schema.IDs() {
		if s.occupants[id] == "" {
			return id, true
		}
	}
	return "", false
}

// SlotView is one rendered row of a Snapshot.
type SlotView struct {
	ID       SlotID
	Label    string
	Emoji    string
	Occupant ParticipantID
}

// Snapshot is a read-only copy of a State.
type Snapshot struct {
	Active    bool
	Metadata  Metadata
	Slots     []SlotView
	Fill      []ParticipantID
	Target    RenderTarget
	CreatedAt time.Time
	Version   uint64
	Filled    int
	Queued    int
	Total     int
}

// Claimed is the count shown to users: occupied slots plus queued fillers.
func (s Snapshot) Claimed() int { return s.Filled + s.Queued }

// Occupant returns who holds slot id.
func (s Snapshot) Occupant(id SlotID) ParticipantID {
	for _, v := range s.Slots {
		if v.ID == id {
			return v.Occupant
		}
	}
	return ""
}

// SlotOf returns the slot held by p, if any.
func (s Snapshot) SlotOf(p ParticipantID) (SlotID, bool) {
	for _, v := range s.Slots {
		if v.Occupant == p && p != "" {
			return v.ID, true
		}
	}
	return "", false
}

func (s *State) snapshot() Snapshot {
	snap := Snapshot{
		Active:    s.active,
		Metadata:  s.meta,
		Slots:     make([]SlotView, 0, s.schema.Len()),
		Fill:      s.fill.Participants(),
		Target:    s.target,
		CreatedAt: s.createdAt,
		Version:   s.version,
		Queued:    s.fill.Len(),
		Total:     s.schema.Len(),
	}
	for _, d := range s.schema.slots {
		p := s.occupants[d.ID]
		if p != "" {
			snap.Filled++
		}
		snap.Slots = append(snap.Slots, SlotView{ID: d.ID, Label: d.Label, Emoji: d.Emoji, Occupant: p})
	}
	return snap
}
