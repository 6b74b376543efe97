package settings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultPrefix   = "!"
	MaxPrefixLength = 3
)

var ErrInvalidPrefix = errors.New("prefix must be 1-3 characters without spaces")

// Store holds the bot settings that admins may change at runtime.
type Store interface {
	Prefix(ctx context.Context) (string, error)
	SetPrefix(ctx context.Context, prefix string) error
}

func ValidatePrefix(p string) error {
	if p == "" || utf8.RuneCountInString(p) > MaxPrefixLength {
		return ErrInvalidPrefix
	}
	if strings.IndexFunc(p, unicode.IsSpace) >= 0 {
		return ErrInvalidPrefix
	}
	return nil
}

// Memory keeps settings for the life of the process.
type Memory struct {
	mu       sync.RWMutex
	fallback string
	prefix   string
}

// NewMemory returns a store answering fallback until a prefix is set. An empty
// fallback means DefaultPrefix.
func NewMemory(fallback string) *Memory {
	if fallback == "" {
		fallback = DefaultPrefix
	}
	return &Memory{fallback: fallback}
}

func (m *Memory) Prefix(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.prefix == "" {
		return m.fallback, nil
	}
	return m.prefix, nil
}

func (m *Memory) SetPrefix(_ context.Context, prefix string) error {
	if err := ValidatePrefix(prefix); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefix = prefix
	return nil
}
