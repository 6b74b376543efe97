package allocator

import (
	"strings"
	"testing"
)

func TestNewSchema(t *testing.T) {
	tests := []struct {
		name    string
		defs    []SlotDef
		wantErr string
	}{
		{name: "valid", defs: []SlotDef{{ID: "a", Synonyms: []string{"a"}}, {ID: "b", Synonyms: []string{"B ", "bee"}}}},
		{name: "empty", defs: nil, wantErr: "no slots"},
		{name: "empty id", defs: []SlotDef{{ID: " ", Synonyms: []string{"a"}}}, wantErr: "empty slot id"},
		{name: "duplicate id", defs: []SlotDef{{ID: "a", Synonyms: []string{"a"}}, {ID: "a", Synonyms: []string{"x"}}}, wantErr: "duplicate slot id"},
		{name: "reserved fill", defs: []SlotDef{{ID: "a", Synonyms: []string{"FILL"}}}, wantErr: "reserved synonym"},
		{name: "shared synonym", defs: []SlotDef{{ID: "a", Synonyms: []string{"dps"}}, {ID: "b", Synonyms: []string{" DPS"}}}, wantErr: "synonym \"dps\""},
		{name: "no synonyms", defs: []SlotDef{{ID: "a", Synonyms: []string{"  "}}}, wantErr: "no synonyms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.defs)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("NewSchema() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewSchema() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()
	want := []SlotID{"tank", "heal", "shadowcaller", "blazing", "mp", "mp2", "flex"}
	got := s.IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	def, ok := s.Lookup("mp2")
	if !ok || def.Label != "MIST PIERCER" {
		t.Errorf("Lookup(mp2) = %#v, %v", def, ok)
	}
	if s.Has("bard") {
		t.Error("Has(bard) = true")
	}
}

func TestSchema_SlotsIsACopy(t *testing.T) {
	s := DefaultSchema()
	slots := s.Slots()
	slots[0].ID = "mutated"
	if s.IDs()[0] != "tank" {
		t.Errorf("schema mutated through Slots(): %v", s.IDs())
	}
}
