package settings

import (
	"context"
	"testing"
)

func TestValidatePrefix(t *testing.T) {
	tests := []struct {
		prefix  string
		wantErr bool
	}{
		{"!", false},
		{"?", false},
		{"rb!", false},
		{"€€€", false},
		{"", true},
		{"long", true},
		{"a b", true},
		{" !", true},
		{"\t", true},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			err := ValidatePrefix(tt.prefix)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrefix(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			}
		})
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("")
	if got, _ := m.Prefix(ctx); got != DefaultPrefix {
		t.Errorf("Prefix() = %q, want %q", got, DefaultPrefix)
	}
	if err := m.SetPrefix(ctx, "four"); err != ErrInvalidPrefix {
		t.Errorf("SetPrefix(four) error = %v, want ErrInvalidPrefix", err)
	}
	if err := m.SetPrefix(ctx, "?"); err != nil {
		t.Fatalf("SetPrefix(?) error = %v", err)
	}
	if got, _ := m.Prefix(ctx); got != "?" {
		t.Errorf("Prefix() = %q, want ?", got)
	}

	custom := NewMemory("$")
	if got, _ := custom.Prefix(ctx); got != "$" {
		t.Errorf("Prefix() with fallback = %q, want $", got)
	}
}
