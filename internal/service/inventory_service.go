package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"go-stockyng/internal/collection"
	"go-stockyng/internal/model"
	"go-stockyng/internal/objectstore"
	"go-stockyng/internal/repository"
	"go-stockyng/internal/search"
	"go-stockyng/pkg/validator"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, req *ProductRequest, img *Image) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, req *ProductEditRequest, img *Image) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	LiveProducts(ctx context.Context) (*collection.Subscription[model.Product], error)
}

// ProductRequest is the add-product form. Every field is required.
type ProductRequest struct {
	Name          string `json:"name" form:"name" validate:"notblank"`
	Quantity      string `json:"inventory" form:"inventory" validate:"notblank,decimal"`
	PurchasePrice string `json:"purchasePrice" form:"purchasePrice" validate:"notblank,decimal"`
	SalePrice     string `json:"salePrice" form:"salePrice" validate:"notblank,decimal"`
}

// ProductEditRequest is the edit-product form. Blank fields keep their
// stored value.
type ProductEditRequest struct {
	Name          string `json:"name" form:"name"`
	Quantity      string `json:"inventory" form:"inventory" validate:"omitempty,decimal"`
	PurchasePrice string `json:"purchasePrice" form:"purchasePrice" validate:"omitempty,decimal"`
	SalePrice     string `json:"salePrice" form:"salePrice" validate:"omitempty,decimal"`
}

type inventoryService struct {
	productRepo repository.ProductRepository
	images      objectstore.Store
	logger      zerolog.Logger
	now         func() time.Time
}

func NewInventoryService(productRepo repository.ProductRepository, images objectstore.Store, logger zerolog.Logger) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		images:      images,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateProduct stores the product, then uploads img if given. A failed
// upload leaves the product stored without a picture and returns it along
// with model.ErrImageUploadFailed.
func (s *inventoryService) CreateProduct(ctx context.Context, req *ProductRequest, img *Image) (*model.Product, error) {
	trim(&req.Name, &req.Quantity, &req.PurchasePrice, &req.SalePrice)
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:          req.Name,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Msg("create product")
		return nil, err
	}
	s.logger.Info().Str("product_id", product.ID).Msg("product created")

	if img == nil {
		return product, nil
	}
	url, err := upload(ctx, s.images, objectstore.ProductImagePath(product.ID), img)
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", product.ID).Msg("product image")
		return product, err
	}
	if err := s.productRepo.UpdateImage(ctx, product.ID, url); err != nil {
		return product, err
	}
	product.ImageURL = url
	return product, nil
}

// UpdateProduct applies model.BlankKeepsPrevious to the stored record and
// writes the merged whole back. lastEditedDate is stamped with today's date.
func (s *inventoryService) UpdateProduct(ctx context.Context, id string, req *ProductEditRequest, img *Image) (*model.Product, error) {
	trim(&req.Name, &req.Quantity, &req.PurchasePrice, &req.SalePrice)
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	stored, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	edit := model.ProductEdit{
		Name:          req.Name,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
	}

	var imgErr error
	if img != nil {
		url, err := upload(ctx, s.images, objectstore.ProductImagePath(id), img)
		if err != nil {
			s.logger.Warn().Err(err).Str("product_id", id).Msg("product image")
			imgErr = err
		} else {
			edit.ImageURL = url
		}
	}

	merged := model.BlankKeepsPrevious(*stored, edit, s.now())
	if err := s.productRepo.Update(ctx, &merged); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("update product")
		return nil, err
	}
	return &merged, imgErr
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("delete product")
		return err
	}
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// SearchProducts matches on name only.
func (s *inventoryService) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return search.Filter(products, query, ProductSearchFields), nil
}

func (s *inventoryService) LiveProducts(ctx context.Context) (*collection.Subscription[model.Product], error) {
	return s.productRepo.Live(ctx)
}

// ProductSearchFields selects the text a product query matches against.
func ProductSearchFields(p model.Product) []string { return []string{p.Name} }

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
