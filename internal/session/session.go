package session

import (
	"context"
	"sync"

	"go-stockyng/internal/model"
)

// Session owns the current identity for one client process. It is created
// at startup, refreshed on login or profile edit, and torn down on logout.
type Session struct {
	store *Store

	mu      sync.RWMutex
	current *model.Session
}

func New(store *Store) *Session {
	return &Session{store: store}
}

// Init loads whatever the store holds. An incomplete record leaves the
// session signed out.
func (s *Session) Init(ctx context.Context) error {
	loaded, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// Refresh persists u and makes it current.
func (s *Session) Refresh(ctx context.Context, u model.Session) error {
	if err := s.store.Save(ctx, u); err != nil {
		return err
	}
	s.mu.Lock()
	if u.Complete() {
		s.current = &u
	} else {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

// Teardown clears the stored identity.
func (s *Session) Teardown(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return s.store.Clear(ctx)
}

// Current returns a copy of the identity, or nil when signed out.
func (s *Session) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Require returns the identity or model.ErrUnauthenticated.
func (s *Session) Require() (model.Session, error) {
	cur := s.Current()
	if cur == nil || !cur.Complete() {
		return model.Session{}, model.ErrUnauthenticated
	}
	return *cur, nil
}

type ctxKey struct{}

func NewContext(ctx context.Context, s model.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the identity carried by ctx if it is complete.
func FromContext(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(model.Session)
	if !ok || !s.Complete() {
		return model.Session{}, false
	}
	return s, true
}
