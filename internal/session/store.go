// Package session keeps the authenticated identity on the local device and
// carries it through the process explicitly.
package session

import (
	"context"
	"fmt"

	"go-stockyng/internal/model"
)

const Namespace = "UserPrefs"

// Field keys inside Namespace.
const (
	KeyUserID   = "userId"
	KeyName     = "userName"
	KeyEmail    = "userEmail"
	KeyUsername = "userUsername"
	KeyRole     = "userRole"
	KeyImageURL = "userImageUrl"
)

// Store persists one Session in a KV namespace.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Save replaces every stored field with the values from s.
func (st *Store) Save(ctx context.Context, s model.Session) error {
	err := st.kv.Put(ctx, Namespace, map[string]string{
		KeyUserID:   s.UserID,
		KeyName:     s.Name,
		KeyEmail:    s.Email,
		KeyUsername: s.Username,
		KeyRole:     s.Role,
		KeyImageURL: s.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored session, or nil when any required field is missing.
func (st *Store) Load(ctx context.Context) (*model.Session, error) {
	fields, err := st.kv.Get(ctx, Namespace)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s := model.Session{
		UserID:   fields[KeyUserID],
		Name:     fields[KeyName],
		Email:    fields[KeyEmail],
		Username: fields[KeyUsername],
		Role:     fields[KeyRole],
		ImageURL: fields[KeyImageURL],
	}
	if !s.Complete() {
		return nil, nil
	}
	return &s, nil
}

func (st *Store) Clear(ctx context.Context) error {
	if err := st.kv.Clear(ctx, Namespace); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
