package store

import (
	"context"

	"github.com/diewo77/dealflow/internal/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r gormUsers) FindByID(ctx context.Context, id uint) (models.User, error) {
	return first[models.User](ctx, r.db, id)
}

func (r gormUsers) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return u, translate(err)
}

func (r gormUsers) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("username").Find(&users).Error
	return users, translate(err)
}

func (r gormUsers) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
