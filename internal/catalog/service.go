package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bandejao/cantina-backend/pkg/db"
	"github.com/bandejao/cantina-backend/pkg/db/models"
	pkgerrors "github.com/bandejao/cantina-backend/pkg/errors"
)

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	SaveImage(data []byte) (string, error)
}

// Service exposes the catalog operations used by the controllers.
type Service interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryDTO, error)
	DeactivateCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, includeUnavailable bool) ([]ProductDTO, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, includeUnavailable bool) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	SetProductAvailability(ctx context.Context, id uuid.UUID, available bool) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AttachProductImage(ctx context.Context, id uuid.UUID, data []byte) (*ProductDTO, error)
}

type service struct {
	repo   *Repository
	images ImageStore
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo *Repository, images ImageStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, images: images}, nil
}

func (s *service) ListCategories(ctx context.Context, includeInactive bool) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categoriesFromModels(categories), nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return categoryFromModel(category), nil
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryDTO, error) {
	category := &models.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return categoryFromModel(category), nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryDTO, error) {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.SaveCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return categoryFromModel(category), nil
}

// DeactivateCategory soft-deletes; products keep their category reference.
func (s *service) DeactivateCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.findCategory(ctx, id)
	if err != nil {
		return err
	}
	category.IsActive = false
	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate category")
	}
	return nil
}

func (s *service) ListProducts(ctx context.Context, includeUnavailable bool) ([]ProductDTO, error) {
	products, err := s.repo.ListProducts(ctx, includeUnavailable)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return productsFromModels(products), nil
}

func (s *service) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, includeUnavailable bool) ([]ProductDTO, error) {
	if _, err := s.findCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	products, err := s.repo.ListProductsByCategory(ctx, categoryID, includeUnavailable)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products by category")
	}
	return productsFromModels(products), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return productFromModel(product), nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if _, err := s.findCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		IsAvailable: true,
		CategoryID:  req.CategoryID,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return productFromModel(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		product.Price = req.Price.Round(2)
	}
	if req.CategoryID != nil {
		if _, err := s.findCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return productFromModel(product), nil
}

func (s *service) SetProductAvailability(ctx context.Context, id uuid.UUID, available bool) (*ProductDTO, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.IsAvailable = available
	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set availability")
	}
	return productFromModel(product), nil
}

// DeleteProduct soft-deletes so historical order items keep their reference.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := s.SetProductAvailability(ctx, id, false)
	return err
}

func (s *service) AttachProductImage(ctx context.Context, id uuid.UUID, data []byte) (*ProductDTO, error) {
	if s.images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "image storage unavailable")
	}
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.SaveImage(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store image")
	}
	product.ImageURL = &url
	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach image")
	}
	return productFromModel(product), nil
}

func (s *service) findCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func (s *service) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
