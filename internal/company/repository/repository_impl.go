package repository

import (
	"context"
	"errors"

	"github.com/mingchang/meatshop/internal/company/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB) (*domain.CompanyInfo, error) {
	var info domain.CompanyInfo
	err := db.WithContext(ctx).
		Where("id = ?", domain.SingletonID).
		Take(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, info *domain.CompanyInfo) error {
	info.ID = domain.SingletonID
	return db.WithContext(ctx).Create(info).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, info *domain.CompanyInfo) error {
	return db.WithContext(ctx).
		Model(&domain.CompanyInfo{}).
		Where("id = ?", domain.SingletonID).
		Select("*").
		Omit("id", "created_at").
		Updates(info).Error
}
