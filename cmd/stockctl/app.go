package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"go-stockyng/internal/bootstrap"
	"go-stockyng/internal/config"
	"go-stockyng/internal/model"
	"go-stockyng/internal/objectstore"
	"go-stockyng/internal/repository"
	"go-stockyng/internal/service"
	"go-stockyng/internal/session"
	"go-stockyng/pkg/hasher"
)

// app is the wired client: services over the configured backend plus the
// durable local session.
type app struct {
	out     io.Writer
	session *session.Session

	auth      service.AuthService
	inventory service.InventoryService
	users     service.UserService
}

func newApp(out io.Writer, repos *repositories, images objectstore.Store, h hasher.CredentialHasher, sess *session.Session, log zerolog.Logger) *app {
	return &app{
		out:       out,
		session:   sess,
		auth:      service.NewAuthService(repos.users, h, sess, log),
		inventory: service.NewInventoryService(repos.products, images, log),
		users:     service.NewUserService(repos.users, h, images, sess, log),
	}
}

type repositories struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

// open wires everything from cfg. The returned func releases the backend and
// the session database.
func open(ctx context.Context, cfg *config.Config, out io.Writer, log zerolog.Logger) (*app, func(), error) {
	be, err := bootstrap.OpenBackend(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	images, err := bootstrap.OpenImages(ctx, cfg, log)
	if err != nil {
		be.Close()
		return nil, nil, err
	}
	h, err := hasher.New(cfg.Hasher)
	if err != nil {
		be.Close()
		return nil, nil, err
	}

	kv, err := session.OpenSQLite(ctx, cfg.SessionDB)
	if err != nil {
		be.Close()
		return nil, nil, err
	}
	sess := session.New(session.NewStore(kv))
	if err := sess.Init(ctx); err != nil {
		_ = kv.Close()
		be.Close()
		return nil, nil, fmt.Errorf("load session: %w", err)
	}

	repos := &repositories{
		users:    repository.NewUserRepo(be.Store),
		products: repository.NewProductRepo(be.Store),
	}
	cleanup := func() {
		_ = kv.Close()
		be.Close()
	}
	return newApp(out, repos, images, h, sess, log), cleanup, nil
}

// authorize returns the signed-in identity if it holds priv.
func (a *app) authorize(priv string) (model.Session, error) {
	s, err := a.session.Require()
	if err != nil {
		return model.Session{}, err
	}
	if priv != "" && !s.HasPrivilege(priv) {
		return model.Session{}, fmt.Errorf("%w: requires %s", model.ErrForbidden, priv)
	}
	return s, nil
}
