package allocator

import "testing"

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(DefaultSchema())
	tests := []struct {
		text     string
		wantKind ResolutionKind
		wantSlot SlotID
	}{
		{"x tank", ResolvedSlot, "tank"},
		{"X T", ResolvedSlot, "tank"},
		{"  x   healer  ", ResolvedSlot, "heal"},
		{"x h", ResolvedSlot, "heal"},
		{"x sc", ResolvedSlot, "shadowcaller"},
		{"x shadow", ResolvedSlot, "shadowcaller"},
		{"x blaze", ResolvedSlot, "blazing"},
		{"x mist piercer", ResolvedSlot, "mp"},
		{"x mistpiercer", ResolvedSlot, "mp"},
		{"x mp2", ResolvedSlot, "mp2"},
		{"x mist  piercer 2", ResolvedSlot, "mp2"},
		{"x mistpiercer2", ResolvedSlot, "mp2"},
		{"x lc", ResolvedSlot, "flex"},
		{"x Arctic", ResolvedSlot, "flex"},
		{"x fill", JoinFill, ""},
		{"X FILL ", JoinFill, ""},
		{"x", NoMatch, ""},
		{"tank", NoMatch, ""},
		{"x tank please", NoMatch, ""},
		{"xtank", NoMatch, ""},
		{"x fills", NoMatch, ""},
		{"", NoMatch, ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := r.Resolve(tt.text)
			if got.Kind != tt.wantKind || got.Slot != tt.wantSlot {
				t.Errorf("Resolve(%q) = %s/%q, want %s/%q", tt.text, got.Kind, got.Slot, tt.wantKind, tt.wantSlot)
			}
		})
	}
}

func TestResolver_Deterministic(t *testing.T) {
	r := NewResolver(DefaultSchema())
	first := r.Resolve("x perma")
	for i := 0; i < 100; i++ {
		if got := r.Resolve("x perma"); got != first {
			t.Fatalf("Resolve changed between calls: %#v vs %#v", got, first)
		}
	}
}

func TestResolver_AmbiguousKeyGoesToFirstSlot(t *testing.T) {
	// NewSchema rejects shared synonyms, so build the schema by hand
	s := Schema{slots: []SlotDef{
		{ID: "first", Synonyms: []string{"dps"}},
		{ID: "second", Synonyms: []string{"dps"}},
	}}
	r := NewResolver(s)
	if got := r.Resolve("x dps"); got.Slot != "first" {
		t.Errorf("Resolve(x dps) = %q, want first", got.Slot)
	}
}
