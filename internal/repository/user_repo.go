package repository

import (
	"context"

	"go-stockyng/internal/backend"
	"go-stockyng/internal/collection"
	"go-stockyng/internal/model"
)

type UserRepository interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Patch(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Live(ctx context.Context) (*collection.Subscription[model.User], error)
}

type userRepo struct {
	users *collection.Collection[model.User, *model.User]
}

func NewUserRepo(store backend.Store) UserRepository {
	return &userRepo{users: collection.New[model.User](store, model.CollectionUsers)}
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	return r.users.Once(ctx)
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := r.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) ([]model.User, error) {
	return r.users.Where(ctx, "username", username)
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	created, err := r.users.Create(ctx, *user)
	if err != nil {
		return err
	}
	*user = created
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.users.Replace(ctx, user.ID, *user)
}

func (r *userRepo) Patch(ctx context.Context, id string, fields map[string]any) error {
	return r.users.Patch(ctx, id, fields)
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.users.Delete(ctx, id)
}

func (r *userRepo) Live(ctx context.Context) (*collection.Subscription[model.User], error) {
	return r.users.Live(ctx)
}
