// Package session persists the logged-in user record.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/store"
)

// Manager reads and writes the session record. The password is never stored.
type Manager struct {
	store store.Store
}

// NewManager creates a manager over s.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// Load returns the stored session. ok is false when nobody is logged in or
// the record is unusable.
func (m *Manager) Load(ctx context.Context) (sess models.Session, ok bool, err error) {
	err = store.GetJSON(ctx, m.store, store.KeyUser, &sess)
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	if !sess.Success || sess.User.ID == "" {
		return models.Session{}, false, nil
	}
	return sess, true, nil
}

// Save stores sess as the current session.
func (m *Manager) Save(ctx context.Context, sess models.Session) error {
	if err := store.SetJSON(ctx, m.store, store.KeyUser, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the session record and the legacy per-user procedure cache.
func (m *Manager) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{store.KeyUser, store.KeyLegacyUserProcedures} {
		if err := m.store.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
