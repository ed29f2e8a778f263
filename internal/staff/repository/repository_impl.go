package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mingchang/meatshop/internal/staff/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.StaffUser) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.StaffUser, error) {
	var user domain.StaffUser
	err := db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) TouchLogin(ctx context.Context, db *gorm.DB, id int64, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.StaffUser{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *repo) UpdatePasswordHash(ctx context.Context, db *gorm.DB, id int64, hash string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.StaffUser{}).
		Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": at}).Error
}
