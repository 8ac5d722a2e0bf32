package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"go-stockyng/internal/backend"
	"go-stockyng/internal/model"
	"go-stockyng/internal/repository"
	"go-stockyng/internal/session"
	"go-stockyng/pkg/hasher"
)

var errOffline = errors.New("offline")

// flakyStore fails every read and write while down is set.
type flakyStore struct {
	*backend.MemoryStore
	down bool
}

func (s *flakyStore) List(ctx context.Context, c string) ([]backend.Node, error) {
	if s.down {
		return nil, errOffline
	}
	return s.MemoryStore.List(ctx, c)
}

func (s *flakyStore) Query(ctx context.Context, c, child, value string) ([]backend.Node, error) {
	if s.down {
		return nil, errOffline
	}
	return s.MemoryStore.Query(ctx, c, child, value)
}

func (s *flakyStore) Set(ctx context.Context, c, key string, data []byte) error {
	if s.down {
		return errOffline
	}
	return s.MemoryStore.Set(ctx, c, key, data)
}

type failingImages struct{}

func (failingImages) Put(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("bucket unreachable")
}

type fixture struct {
	store    *flakyStore
	users    repository.UserRepository
	products repository.ProductRepository
	session  *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &flakyStore{MemoryStore: backend.NewMemoryStore(nil)}
	return &fixture{
		store:    store,
		users:    repository.NewUserRepo(store),
		products: repository.NewProductRepo(store),
		session:  session.New(session.NewStore(session.NewMemoryKV())),
	}
}

func (f *fixture) seedUser(t *testing.T, u model.User, password string) model.User {
	t.Helper()
	require.NoError(t, u.SetPassword(hasher.SHA256{}, password))
	require.NoError(t, f.users.Create(context.Background(), &u))
	return u
}

func (f *fixture) auth() AuthService {
	return NewAuthService(f.users, hasher.SHA256{}, f.session, zerolog.Nop())
}
