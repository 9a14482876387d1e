package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskhub/internal/cache"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

const (
	supplierCacheTTL     = 5 * time.Minute
	supplierListCacheKey = "suppliers:all"
)

// SupplierInput carries supplier fields. On update nil fields are left unchanged.
type SupplierInput struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	ContactPerson *string
	TaxID         *string
	IsActive      *bool
}

// SupplierService manages suppliers.
type SupplierService interface {
	List(ctx context.Context) ([]model.Supplier, error)
	Get(ctx context.Context, id uint) (*model.Supplier, error)
	Create(ctx context.Context, in SupplierInput) (*model.Supplier, error)
	Update(ctx context.Context, id uint, in SupplierInput) (*model.Supplier, error)
	Delete(ctx context.Context, id uint) error
}

type supplierService struct {
	repo  repository.SupplierRepository
	cache *cache.Client
}

// NewSupplierService builds a SupplierService with repository and cache.
func NewSupplierService(repo repository.SupplierRepository, cache *cache.Client) SupplierService {
	return &supplierService{repo: repo, cache: cache}
}

func (s *supplierService) cacheKey(id uint) string {
	return fmt.Sprintf("supplier:%d", id)
}

func (s *supplierService) List(ctx context.Context) ([]model.Supplier, error) {
	if data, _ := s.cache.Get(ctx, supplierListCacheKey); data != nil {
		var cached []model.Supplier
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}

	if payload, err := json.Marshal(suppliers); err == nil {
		_ = s.cache.Set(ctx, supplierListCacheKey, payload, supplierCacheTTL)
	}
	return suppliers, nil
}

func (s *supplierService) Get(ctx context.Context, id uint) (*model.Supplier, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Supplier
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(supplier); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, supplierCacheTTL)
	}
	return supplier, nil
}

func (s *supplierService) Create(ctx context.Context, in SupplierInput) (*model.Supplier, error) {
	supplier := &model.Supplier{IsActive: true}
	applySupplierInput(supplier, in)

	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	s.invalidate(ctx, supplier.ID)
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, id uint, in SupplierInput) (*model.Supplier, error) {
	verr := apperrors.NewValidationError()
	if in.Name != nil && *in.Name == "" {
		verr.Add("name", requiredMessage("name"))
	}
	if in.Email != nil && *in.Email == "" {
		verr.Add("email", requiredMessage("email"))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	applySupplierInput(supplier, in)

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	s.invalidate(ctx, id)
	return supplier, nil
}

// Delete removes a supplier that has no invoices.
func (s *supplierService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountInvoices(ctx, id)
	if err != nil {
		return fmt.Errorf("count supplier invoices: %w", err)
	}
	if n > 0 {
		return apperrors.ErrSupplierInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *supplierService) find(ctx context.Context, id uint) (*model.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find supplier: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) invalidate(ctx context.Context, id uint) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	_ = s.cache.Delete(ctx, supplierListCacheKey)
}

func applySupplierInput(supplier *model.Supplier, in SupplierInput) {
	if in.Name != nil {
		supplier.Name = *in.Name
	}
	if in.Email != nil {
		supplier.Email = *in.Email
	}
	if in.Phone != nil {
		supplier.Phone = *in.Phone
	}
	if in.Address != nil {
		supplier.Address = *in.Address
	}
	if in.ContactPerson != nil {
		supplier.ContactPerson = *in.ContactPerson
	}
	if in.TaxID != nil {
		supplier.TaxID = *in.TaxID
	}
	if in.IsActive != nil {
		supplier.IsActive = *in.IsActive
	}
}
