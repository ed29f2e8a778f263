package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/mingchang/meatshop/internal/category/domain"
	"github.com/mingchang/meatshop/internal/clock"
	"github.com/mingchang/meatshop/internal/providers/storage"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/db"
	"github.com/mingchang/meatshop/pkg/format"
	"github.com/mingchang/meatshop/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxNameLength = 100

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Storage storage.Provider `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	storage storage.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("category.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		storage: p.Storage,
	}
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListActive(ctx, s.db)
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*domain.Category, error) {
	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		return nil, domain.ErrNotFound
	}
	item, err := s.repo.FindBySlug(ctx, s.db, slugValue)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Query:    strings.TrimSpace(req.Query),
		IsActive: req.IsActive,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	counts, err := s.repo.CountProducts(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i], counts[items[i].ID]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountProducts(ctx, s.db, []int64{item.ID})
	if err != nil {
		return nil, err
	}
	resp := toResponse(item, counts[item.ID])
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	name := req.Name.Trimmed()
	if err := validateName(name); err != nil {
		return nil, err
	}

	slugValue := strings.TrimSpace(req.Slug)
	if slugValue == "" {
		slugValue = defaultSlug(name)
	}
	if !validation.ValidCategorySlug(slugValue) || len(slugValue) > maxNameLength {
		return nil, domain.ErrInvalidSlug
	}

	displayOrder := 0
	if req.DisplayOrder != nil {
		displayOrder = *req.DisplayOrder
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now()
	item := &domain.Category{
		ID:           s.genID.Generate().Int64(),
		Name:         name,
		Slug:         slugValue,
		Description:  req.Description.Trimmed(),
		DisplayOrder: displayOrder,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}

	s.log.Info("category created", zap.Int64("category_id", item.ID), zap.String("slug", item.Slug))
	resp := toResponse(item, 0)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := req.Name.Trimmed()
		if err := validateName(name); err != nil {
			return nil, err
		}
		item.Name = name
	}
	if req.Slug != nil {
		slugValue := strings.TrimSpace(*req.Slug)
		if slugValue == "" {
			slugValue = defaultSlug(item.Name)
		}
		if !validation.ValidCategorySlug(slugValue) || len(slugValue) > maxNameLength {
			return nil, domain.ErrInvalidSlug
		}
		item.Slug = slugValue
	}
	if req.Description != nil {
		item.Description = req.Description.Trimmed()
	}
	if req.DisplayOrder != nil {
		item.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}

	counts, err := s.repo.CountProducts(ctx, s.db, []int64{item.ID})
	if err != nil {
		return nil, err
	}
	resp := toResponse(item, counts[item.ID])
	return &resp, nil
}

// Delete removes the category, its products and their images. Stored image
// files are removed after the commit on a best-effort basis.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var keys []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys, err = s.repo.ImageKeys(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		affected, err := s.repo.DeleteCascade(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("category deleted",
		zap.Int64("category_id", item.ID),
		zap.Int("image_files", len(keys)),
	)

	if s.storage != nil && len(keys) > 0 {
		if err := storage.DeleteAll(ctx, s.storage, keys...); err != nil {
			s.log.Warn("failed to remove image files", zap.Int64("category_id", item.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Category, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func validateName(name bilingual.Text) error {
	if name.IsZero() {
		return domain.ErrInvalidName
	}
	if len([]rune(name.ZH)) > maxNameLength || len([]rune(name.EN)) > maxNameLength {
		return domain.ErrInvalidName
	}
	return nil
}

func defaultSlug(name bilingual.Text) string {
	if name.EN != "" {
		return slug.Make(name.EN)
	}
	return slug.Make(name.ZH)
}

func toResponse(c *domain.Category, productCount int64) domain.Response {
	return domain.Response{
		ID:           strconv.FormatInt(c.ID, 10),
		Name:         c.Name,
		DisplayName:  c.Name.Display(),
		Slug:         c.Slug,
		Description:  c.Description,
		DisplayOrder: c.DisplayOrder,
		IsActive:     c.IsActive,
		ProductCount: productCount,
		ProductLabel: format.Plural(productCount, "product"),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
