package allocator

import "strings"

type ResolutionKind int

const (
	NoMatch ResolutionKind = iota
	ResolvedSlot
	JoinFill
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolvedSlot:
		return "slot"
	case JoinFill:
		return "fill"
	}
	return "no-match"
}

type Resolution struct {
	Kind ResolutionKind
	Slot SlotID
}

// Resolver maps "x <synonym>" chat text onto a slot or the fill intent.
// Matching is a single exact lookup after normalization.
type Resolver struct {
	table map[string]SlotID
}

const claimMarker = "x"

func NewResolver(schema Schema) *Resolver {
	r := &Resolver{table: make(map[string]SlotID)}
	for _, d := range schema.slots {
		for _, syn := range d.Synonyms {
			key := claimMarker + " " + syn
			// first slot in schema order keeps an ambiguous key
			if _, exists := r.table[key]; !exists {
				r.table[key] = d.ID
			}
		}
	}
	return r
}

func (r *Resolver) Resolve(text string) Resolution {
	key := normalize(text)
	if key == claimMarker+" "+fillKeyword {
		return Resolution{Kind: JoinFill}
	}
	if id, ok := r.table[key]; ok {
		return Resolution{Kind: ResolvedSlot, Slot: id}
	}
	return Resolution{Kind: NoMatch}
}

// normalize lowercases, trims and collapses runs of whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
