package repository

import (
	"context"

	"gorm.io/gorm"

	"taskhub/internal/model"
)

// UploadRepository defines upload persistence operations.
type UploadRepository interface {
	Create(ctx context.Context, upload *model.Upload) error
	FindByID(ctx context.Context, id uint) (*model.Upload, error)
	List(ctx context.Context, ownerID *uint) ([]model.Upload, error)
	SetExtractedText(ctx context.Context, id uint, text *string) error
	Delete(ctx context.Context, id uint) error
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a new upload repository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	return r.db.WithContext(ctx).Omit("User").Create(upload).Error
}

func (r *uploadRepository) FindByID(ctx context.Context, id uint) (*model.Upload, error) {
	var upload model.Upload
	if err := r.db.WithContext(ctx).First(&upload, id).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) List(ctx context.Context, ownerID *uint) ([]model.Upload, error) {
	query := r.db.WithContext(ctx).Model(&model.Upload{})
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	uploads := make([]model.Upload, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&uploads).Error; err != nil {
		return nil, err
	}
	return uploads, nil
}

func (r *uploadRepository) SetExtractedText(ctx context.Context, id uint, text *string) error {
	return r.db.WithContext(ctx).
		Model(&model.Upload{ID: id}).
		Update("extracted_text", text).Error
}

func (r *uploadRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Upload{}, id).Error
}
