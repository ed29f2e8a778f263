package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	categorydomain "github.com/mingchang/meatshop/internal/category/domain"
	"github.com/mingchang/meatshop/internal/clock"
	"github.com/mingchang/meatshop/internal/product/domain"
	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/internal/providers/storage"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/db"
	"github.com/mingchang/meatshop/pkg/db/pagination"
	"github.com/mingchang/meatshop/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxNameLength = 200
	maxUnitLength = 50
	defaultUnit   = "kg"
)

var maxPrice = decimal.RequireFromString("99999999.99")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CategoryRepo categorydomain.Repository
	ImageRepo    imagedomain.Repository
	ImageSvc     imagedomain.Service
	Storage      storage.Provider `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	categoryRepo categorydomain.Repository
	imageRepo    imagedomain.Repository
	imageSvc     imagedomain.Service
	storage      storage.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("product.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		categoryRepo: p.CategoryRepo,
		imageRepo:    p.ImageRepo,
		imageSvc:     p.ImageSvc,
		storage:      p.Storage,
	}
}

// ListCatalog returns one page of available products. An unknown category
// slug or a page outside the result set is reported as an error so the caller
// can answer 404.
func (s *Service) ListCatalog(ctx context.Context, q domain.CatalogQuery) (*domain.CatalogPage, error) {
	filter := domain.CatalogFilter{
		Query: strings.TrimSpace(q.Query),
		Sort:  strings.TrimSpace(q.Sort),
	}

	if categorySlug := strings.TrimSpace(q.CategorySlug); categorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, s.db, categorySlug)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, categorydomain.ErrNotFound
		}
		filter.CategoryID = category.ID
	}

	total, err := s.repo.CountCatalog(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Resolve(q.Page, pagination.PageSize, total)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListCatalog(ctx, s.db, filter, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}
	if err := s.attachSummary(ctx, items); err != nil {
		return nil, err
	}

	return &domain.CatalogPage{Items: items, Page: page}, nil
}

func (s *Service) GetDetail(ctx context.Context, productSlug string) (*domain.Detail, error) {
	productSlug = strings.TrimSpace(productSlug)
	if productSlug == "" {
		return nil, domain.ErrNotFound
	}
	item, err := s.repo.FindBySlug(ctx, s.db, productSlug, true)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	images, err := s.imageRepo.ListByProduct(ctx, s.db, item.ID)
	if err != nil {
		return nil, err
	}
	item.Images = images
	for i := range images {
		if images[i].IsPrimary {
			item.PrimaryImage = &images[i]
			break
		}
	}
	category, err := s.categoryRepo.FindByID(ctx, s.db, item.CategoryID)
	if err != nil {
		return nil, err
	}
	item.Category = category

	related, err := s.repo.Related(ctx, s.db, item.CategoryID, item.ID, domain.RelatedLimit)
	if err != nil {
		return nil, err
	}
	if err := s.attachSummary(ctx, related); err != nil {
		return nil, err
	}

	return &domain.Detail{Product: *item, Related: related}, nil
}

func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	items, err := s.repo.Featured(ctx, s.db, domain.FeaturedLimit)
	if err != nil {
		return nil, err
	}
	if err := s.attachSummary(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) GetBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	productSlug = strings.TrimSpace(productSlug)
	if productSlug == "" {
		return nil, domain.ErrNotFound
	}
	item, err := s.repo.FindBySlug(ctx, s.db, productSlug, false)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListFilter{
		Query:       strings.TrimSpace(req.Query),
		IsFeatured:  req.IsFeatured,
		IsAvailable: req.IsAvailable,
	}
	if raw := strings.TrimSpace(req.CategoryID); raw != "" {
		id, err := parseID(raw, domain.ErrInvalidCategory)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = id
	}
	if raw := strings.TrimSpace(req.StockStatus); raw != "" {
		status := domain.StockStatus(raw)
		if !status.Valid() {
			return nil, domain.ErrInvalidStockStatus
		}
		filter.StockStatus = status
	}

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Resolve(req.Page, pagination.AdminSize(req.PageSize), total)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, s.db, filter, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}

	resp, err := s.toResponses(ctx, items)
	if err != nil {
		return nil, err
	}
	return &domain.ListResponse{Items: resp, Page: page}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toSingleResponse(ctx, item)
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	name := req.Name.Trimmed()
	if !name.Complete() || tooLong(name, maxNameLength) {
		return nil, domain.ErrInvalidName
	}
	description := req.Description.Trimmed()
	if !description.Complete() {
		return nil, domain.ErrInvalidDescription
	}
	slugValue := strings.TrimSpace(req.Slug)
	if slugValue == "" {
		slugValue = slug.Make(name.EN)
	}
	if !validation.ValidProductSlug(slugValue) || len(slugValue) > maxNameLength {
		return nil, domain.ErrInvalidSlug
	}
	if err := validatePrice(req.Price); err != nil {
		return nil, err
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = defaultUnit
	}
	if len([]rune(unit)) > maxUnitLength {
		return nil, domain.ErrInvalidUnit
	}
	if req.WeightGrams != nil && *req.WeightGrams <= 0 {
		return nil, domain.ErrInvalidWeight
	}
	stock := domain.StockInStock
	if req.StockStatus != "" {
		stock = domain.StockStatus(req.StockStatus)
		if !stock.Valid() {
			return nil, domain.ErrInvalidStockStatus
		}
	}

	now := s.clock.Now()
	item := &domain.Product{
		ID:              s.genID.Generate().Int64(),
		CategoryID:      categoryID,
		Name:            name,
		Slug:            slugValue,
		Description:     description,
		Price:           req.Price.Round(2),
		Unit:            unit,
		WeightGrams:     req.WeightGrams,
		Origin:          req.Origin.Trimmed(),
		NutritionalInfo: req.NutritionalInfo.Trimmed(),
		IsFeatured:      boolOr(req.IsFeatured, false),
		IsAvailable:     boolOr(req.IsAvailable, true),
		StockStatus:     stock,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}

	s.log.Info("product created", zap.Int64("product_id", item.ID), zap.String("slug", item.Slug))
	return s.toSingleResponse(ctx, item)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		item.CategoryID = categoryID
	}
	if req.Name != nil {
		name := req.Name.Trimmed()
		if !name.Complete() || tooLong(name, maxNameLength) {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Slug != nil {
		slugValue := strings.TrimSpace(*req.Slug)
		if slugValue == "" {
			slugValue = slug.Make(item.Name.EN)
		}
		if !validation.ValidProductSlug(slugValue) {
			return nil, domain.ErrInvalidSlug
		}
		item.Slug = slugValue
	}
	if req.Description != nil {
		description := req.Description.Trimmed()
		if !description.Complete() {
			return nil, domain.ErrInvalidDescription
		}
		item.Description = description
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return nil, err
		}
		item.Price = req.Price.Round(2)
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			unit = defaultUnit
		}
		item.Unit = unit
	}
	if req.WeightGrams != nil {
		if *req.WeightGrams == 0 {
			item.WeightGrams = nil
		} else {
			weight := *req.WeightGrams
			item.WeightGrams = &weight
		}
	}
	if req.Origin != nil {
		item.Origin = req.Origin.Trimmed()
	}
	if req.NutritionalInfo != nil {
		item.NutritionalInfo = req.NutritionalInfo.Trimmed()
	}
	if req.IsFeatured != nil {
		item.IsFeatured = *req.IsFeatured
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.StockStatus != nil {
		stock := domain.StockStatus(strings.TrimSpace(*req.StockStatus))
		if !stock.Valid() {
			return nil, domain.ErrInvalidStockStatus
		}
		item.StockStatus = stock
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugConflict
		}
		return nil, err
	}
	return s.toSingleResponse(ctx, item)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	var keys []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images, err := s.imageRepo.ListByProduct(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		for _, img := range images {
			keys = append(keys, img.Keys()...)
		}
		affected, err := s.repo.Delete(ctx, tx, item.ID)
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

	s.log.Info("product deleted", zap.Int64("product_id", item.ID), zap.Int("image_files", len(keys)))
	if s.storage != nil && len(keys) > 0 {
		if err := storage.DeleteAll(ctx, s.storage, keys...); err != nil {
			s.log.Warn("failed to remove image files", zap.Int64("product_id", item.ID), zap.Error(err))
		}
	}
	return nil
}

// attachSummary loads category and primary image for a page of products.
func (s *Service) attachSummary(ctx context.Context, items []domain.Product) error {
	if len(items) == 0 {
		return nil
	}
	productIDs := make([]int64, 0, len(items))
	categoryIDs := make([]int64, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ID)
		categoryIDs = append(categoryIDs, item.CategoryID)
	}

	primaries, err := s.imageRepo.PrimaryByProducts(ctx, s.db, productIDs)
	if err != nil {
		return err
	}
	categories, err := s.categoriesByID(ctx, categoryIDs)
	if err != nil {
		return err
	}

	for i := range items {
		if img, ok := primaries[items[i].ID]; ok {
			img := img
			items[i].PrimaryImage = &img
		}
		if c, ok := categories[items[i].CategoryID]; ok {
			c := c
			items[i].Category = &c
		}
	}
	return nil
}

func (s *Service) categoriesByID(ctx context.Context, ids []int64) (map[int64]categorydomain.Category, error) {
	out := make(map[int64]categorydomain.Category, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		c, err := s.categoryRepo.FindByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out[id] = *c
		}
	}
	return out, nil
}

func (s *Service) resolveCategory(ctx context.Context, raw string) (int64, error) {
	id, err := parseID(raw, domain.ErrInvalidCategory)
	if err != nil {
		return 0, err
	}
	c, err := s.categoryRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, domain.ErrInvalidCategory
	}
	return id, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) toSingleResponse(ctx context.Context, item *domain.Product) (*domain.Response, error) {
	resp, err := s.toResponses(ctx, []domain.Product{*item})
	if err != nil {
		return nil, err
	}
	return &resp[0], nil
}

func (s *Service) toResponses(ctx context.Context, items []domain.Product) ([]domain.Response, error) {
	if err := s.attachSummary(ctx, items); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	stats, err := s.imageRepo.Stats(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Response, 0, len(items))
	for i := range items {
		item := &items[i]
		st := stats[item.ID]
		resp := domain.Response{
			ID:                 strconv.FormatInt(item.ID, 10),
			CategoryID:         strconv.FormatInt(item.CategoryID, 10),
			Name:               item.Name,
			DisplayName:        item.Name.Display(),
			Slug:               item.Slug,
			Description:        item.Description,
			Price:              item.Price,
			FormattedPrice:     item.FormattedPrice(),
			Unit:               item.Unit,
			WeightGrams:        item.WeightGrams,
			WeightDisplay:      item.WeightDisplay(),
			Origin:             item.Origin,
			NutritionalInfo:    item.NutritionalInfo,
			IsFeatured:         item.IsFeatured,
			IsAvailable:        item.IsAvailable,
			StockStatus:        item.StockStatus,
			StockStatusDisplay: item.StockStatus.Label(),
			ImageCount:         st.Count,
			ImageCountDisplay:  imageCountDisplay(st),
			CreatedAt:          item.CreatedAt,
			UpdatedAt:          item.UpdatedAt,
		}
		if item.Category != nil {
			resp.CategoryName = item.Category.Name.Display()
		}
		if item.PrimaryImage != nil {
			urls := s.imageSvc.URLs(*item.PrimaryImage)
			resp.PrimaryImage = &urls
		}
		out = append(out, resp)
	}
	return out, nil
}

func imageCountDisplay(st imagedomain.Stats) string {
	suffix := "(no primary)"
	if st.HasPrimary {
		suffix = "(✓ primary)"
	}
	return fmt.Sprintf("%d image(s) %s", st.Count, suffix)
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() || price.GreaterThan(maxPrice) {
		return domain.ErrInvalidPrice
	}
	if !price.Equal(price.Round(2)) {
		return domain.ErrInvalidPrice
	}
	return nil
}

func tooLong(t bilingual.Text, n int) bool {
	return len([]rune(t.ZH)) > n || len([]rune(t.EN)) > n
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func parseID(raw string, invalid error) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id.Int64() <= 0 {
		return 0, invalid
	}
	return id.Int64(), nil
}
