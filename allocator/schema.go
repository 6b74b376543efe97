package allocator

import (
	"fmt"
	"strings"
)

// SlotDef is one entry of a roster template.
type SlotDef struct {
	ID       SlotID
	Label    string
	Emoji    string
	Synonyms []string
}

// Schema is the ordered, immutable slot list of a roster template. Order is
// the auto-promotion priority.
type Schema struct {
	slots []SlotDef
	index map[SlotID]int
}

const fillKeyword = "fill"

// NewSchema validates defs and builds a Schema. Duplicate ids and synonyms
// shared between slots are configuration defects.
func NewSchema(defs []SlotDef) (Schema, error) {
	if len(defs) == 0 {
		return Schema{}, fmt.Errorf("schema: no slots defined")
	}
	s := Schema{
		slots: make([]SlotDef, 0, len(defs)),
		index: make(map[SlotID]int, len(defs)),
	}
	owner := make(map[string]SlotID)
	for _, d := range defs {
		id := SlotID(strings.TrimSpace(string(d.ID)))
		if id == "" {
			return Schema{}, fmt.Errorf("schema: empty slot id")
		}
		if _, dup := s.index[id]; dup {
			return Schema{}, fmt.Errorf("schema: duplicate slot id %q", id)
		}
		syns := make([]string, 0, len(d.Synonyms))
		for _, raw := range d.Synonyms {
			syn := normalize(raw)
			if syn == "" {
				continue
			}
			if syn == fillKeyword {
				return Schema{}, fmt.Errorf("schema: slot %q uses reserved synonym %q", id, fillKeyword)
			}
			if prev, taken := owner[syn]; taken && prev != id {
				return Schema{}, fmt.Errorf("schema: synonym %q claimed by %q and %q", syn, prev, id)
			}
			owner[syn] = id
			syns = append(syns, syn)
		}
		if len(syns) == 0 {
			return Schema{}, fmt.Errorf("schema: slot %q has no synonyms", id)
		}
		s.index[id] = len(s.slots)
		s.slots = append(s.slots, SlotDef{ID: id, Label: d.Label, Emoji: d.Emoji, Synonyms: syns})
	}
	return s, nil
}

// MustSchema is NewSchema for static tables.
func MustSchema(defs []SlotDef) Schema {
	s, err := NewSchema(defs)
	if err != nil {
		panic(err)
	}
	return s
}

const (
	emojiTank   = "<:OFFTANK:1388541334637379695>"
	emojiHealer = "<:HEALER:1388541939317473350>"
	emojiDebuff = "<:DEBUFF:1388542342788677834>"
	emojiDPS    = "<:DPS:1388541739815669792>"
)

// DefaultSchema is the seven slot FFROA template.
func DefaultSchema() Schema {
	return MustSchema([]SlotDef{
		{ID: "tank", Label: "TANK", Emoji: emojiTank, Synonyms: []string{"tank", "t"}},
		{ID: "heal", Label: "HEALER", Emoji: emojiHealer, Synonyms: []string{"heal", "healer", "h"}},
		{ID: "shadowcaller", Label: "SHADOWCALLER", Emoji: emojiDebuff, Synonyms: []string{"shadowcaller", "sc", "shadow"}},
		{ID: "blazing", Label: "BLAZING", Emoji: emojiDPS, Synonyms: []string{"blazing", "blaze", "b"}},
		{ID: "mp", Label: "MIST PIERCER", Emoji: emojiDPS, Synonyms: []string{"mp", "mist piercer", "mistpiercer"}},
		{ID: "mp2", Label: "MIST PIERCER", Emoji: emojiDPS, Synonyms: []string{"mp2", "mist piercer 2", "mistpiercer 2", "mistpiercer2", "mist piercer2"}},
		{ID: "flex", Label: "MP / LC / ARCTIC / PERMA", Emoji: emojiDPS, Synonyms: []string{"flex", "f", "perma", "arctic", "lc"}},
	})
}

func (s Schema) Len() int { return len(s.slots) }

// Slots returns the slot definitions in priority order.
func (s Schema) Slots() []SlotDef {
	out := make([]SlotDef, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s Schema) IDs() []SlotID {
	ids := make([]SlotID, len(s.slots))
	for i, d := range s.slots {
		ids[i] = d.ID
	}
	return ids
}

func (s Schema) Has(id SlotID) bool {
	_, ok := s.index[id]
	return ok
}

// Lookup returns the definition of id.
func (s Schema) Lookup(id SlotID) (SlotDef, bool) {
	i, ok := s.index[id]
	if !ok {
		return SlotDef{}, false
	}
	return s.slots[i], true
}
