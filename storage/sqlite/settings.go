package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roster-bot/settings"
)

var _ settings.Store = (*Store)(nil)

const keyPrefix = "prefix"

func (s *Store) Prefix(ctx context.Context) (string, error) {
	var v string
	err := s.sqlDB.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", keyPrefix).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		if s.defaultPrefix == "" {
			return settings.DefaultPrefix, nil
		}
		return s.defaultPrefix, nil
	}
	if err != nil {
		return "", fmt.Errorf("read prefix: %w", err)
	}
	return v, nil
}

func (s *Store) SetPrefix(ctx context.Context, prefix string) error {
	if err := settings.ValidatePrefix(prefix); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, keyPrefix, prefix, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write prefix: %w", err)
	}
	return nil
}
