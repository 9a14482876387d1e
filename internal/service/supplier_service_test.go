package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskhub/internal/cache"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
)

func newTestCache(t *testing.T) *cache.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSupplierService_GetIsCached(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	repo.On("FindByID", ctx, uint(1)).Return(&model.Supplier{ID: 1, Name: "Acme", IsActive: true}, nil).Once()

	svc := NewSupplierService(repo, newTestCache(t))

	for i := 0; i < 3; i++ {
		supplier, err := svc.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Acme", supplier.Name)
	}
	repo.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestSupplierService_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	repo.On("FindByID", ctx, uint(1)).Return(&model.Supplier{ID: 1, Name: "Acme", Email: "a@example.com", IsActive: true}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	repo.On("List", ctx).Return([]model.Supplier{{ID: 1, Name: "Acme"}}, nil)

	svc := NewSupplierService(repo, newTestCache(t))
	_, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)

	name := "Acme Corp"
	inactive := false
	updated, err := svc.Update(ctx, 1, SupplierInput{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "a@example.com", updated.Email)
	assert.False(t, updated.IsActive)

	_, err = svc.List(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestSupplierService_CreateDefaultsActive(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	repo.On("Create", ctx, mock.MatchedBy(func(s *model.Supplier) bool { return s.IsActive })).Return(nil)

	name, email := "Initech", "info@initech.example"
	supplier, err := NewSupplierService(repo, nil).Create(ctx, SupplierInput{Name: &name, Email: &email})

	require.NoError(t, err)
	assert.True(t, supplier.IsActive)
	repo.AssertExpectations(t)
}

func TestSupplierService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		found    *model.Supplier
		findErr  error
		invoices int64
		wantErr  error
	}{
		{"no invoices", &model.Supplier{ID: 1}, nil, 0, nil},
		{"has invoices", &model.Supplier{ID: 1}, nil, 2, apperrors.ErrSupplierInUse},
		{"missing", nil, gorm.ErrRecordNotFound, 0, apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSupplierRepository)
			repo.On("FindByID", ctx, uint(1)).Return(tt.found, tt.findErr)
			repo.On("CountInvoices", ctx, uint(1)).Return(tt.invoices, nil)
			repo.On("Delete", ctx, uint(1)).Return(nil)

			err := NewSupplierService(repo, nil).Delete(ctx, 1)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
			repo.AssertCalled(t, "Delete", ctx, uint(1))
		})
	}
}
