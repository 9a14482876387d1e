package repository

import (
	"context"

	"gorm.io/gorm"

	"taskhub/internal/model"
)

// UserRepository is the credential store behind registration, login and /me.
// Lookups return gorm.ErrRecordNotFound for unknown users; a second account
// with the same email fails with gorm.ErrDuplicatedKey.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(conn *gorm.DB) UserRepository {
	return &userRepository{db: conn}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return r.findOne(ctx, r.db.Where("id = ?", id))
}

// FindByEmail backs login and the duplicate check at registration.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, r.db.Where("email = ?", email))
}

func (r *userRepository) findOne(ctx context.Context, query *gorm.DB) (*model.User, error) {
	var user model.User
	if err := query.WithContext(ctx).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
