package repository

import (
	"context"

	"go-stockyng/internal/backend"
	"go-stockyng/internal/collection"
	"go-stockyng/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	Delete(ctx context.Context, id string) error
	Live(ctx context.Context) (*collection.Subscription[model.Product], error)
}

type productRepo struct {
	products *collection.Collection[model.Product, *model.Product]
}

func NewProductRepo(store backend.Store) ProductRepository {
	return &productRepo{products: collection.New[model.Product](store, model.CollectionProducts)}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	created, err := r.products.Create(ctx, *product)
	if err != nil {
		return err
	}
	*product = created
	return nil
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	return r.products.Once(ctx)
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	p, err := r.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.products.Replace(ctx, product.ID, *product)
}

func (r *productRepo) UpdateImage(ctx context.Context, id, imageURL string) error {
	return r.products.Patch(ctx, id, map[string]any{"imageUrl": imageURL})
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	return r.products.Delete(ctx, id)
}

func (r *productRepo) Live(ctx context.Context) (*collection.Subscription[model.Product], error) {
	return r.products.Live(ctx)
}
