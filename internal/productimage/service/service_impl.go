package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mingchang/meatshop/internal/clock"
	"github.com/mingchang/meatshop/internal/observability/metrics"
	"github.com/mingchang/meatshop/internal/productimage/domain"
	"github.com/mingchang/meatshop/internal/productimage/variant"
	"github.com/mingchang/meatshop/internal/providers/storage"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jpegContentType = "image/jpeg"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Storage storage.Provider
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	storage storage.Provider
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("productimage.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		storage: p.Storage,
		metrics: p.Metrics,
	}
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Response, error) {
	id, err := parseID(productID, domain.ErrInvalidProduct)
	if err != nil {
		return nil, err
	}
	ref, err := s.repo.FindProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, domain.ErrProductNotFound
	}

	items, err := s.repo.ListByProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(item)
	return &resp, nil
}

// Upload renders the image variants, stores them, then records the image.
// When the image is primary every sibling is demoted in the same transaction,
// under a lock on the product row.
func (s *Service) Upload(ctx context.Context, req domain.UploadRequest) (*domain.Response, error) {
	productID, err := parseID(req.ProductID, domain.ErrInvalidProduct)
	if err != nil {
		return nil, err
	}
	if req.DisplayOrder < 0 {
		return nil, domain.ErrInvalidOrder
	}
	altText := req.AltText.Trimmed()
	if !validAltText(altText) {
		return nil, domain.ErrInvalidAltText
	}
	if len(req.Data) == 0 {
		return nil, domain.ErrInvalidImage
	}

	ref, err := s.repo.FindProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, domain.ErrProductNotFound
	}

	set, err := variant.Process(req.Data, variant.OriginalQuality)
	if err != nil {
		if errors.Is(err, variant.ErrUnsupported) || errors.Is(err, variant.ErrTooLarge) {
			return nil, domain.ErrInvalidImage
		}
		return nil, err
	}

	now := s.clock.Now()
	image := &domain.ProductImage{
		ID:           s.genID.Generate().Int64(),
		ProductID:    productID,
		AltText:      altText,
		DisplayOrder: req.DisplayOrder,
		IsPrimary:    req.IsPrimary,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	base, err := s.basePath(ctx, ref.Slug, req.DisplayOrder, image.ID)
	if err != nil {
		return nil, err
	}
	image.ImagePath = base + ".jpg"
	image.ThumbnailPath = base + "_" + variant.Thumbnail.Name + ".jpg"
	image.MediumPath = base + "_" + variant.Medium.Name + ".jpg"
	image.LargePath = base + "_" + variant.Large.Name + ".jpg"

	uploads := map[string][]byte{
		image.ImagePath:     set.Original,
		image.ThumbnailPath: set.Variants[variant.Thumbnail.Name],
		image.MediumPath:    set.Variants[variant.Medium.Name],
		image.LargePath:     set.Variants[variant.Large.Name],
	}
	for key, data := range uploads {
		if _, err := s.storage.Put(ctx, key, data, jpegContentType); err != nil {
			s.discard(ctx, image.Keys())
			return nil, fmt.Errorf("store %s: %w", key, err)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.repo.LockProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrProductNotFound
		}
		if image.IsPrimary {
			if err := s.repo.DemoteOthers(ctx, tx, productID, image.ID); err != nil {
				return err
			}
		}
		return s.repo.Insert(ctx, tx, image)
	})
	if err != nil {
		s.discard(ctx, image.Keys())
		return nil, err
	}

	s.metrics.RecordImageVariants(ctx, "product", len(set.Variants))
	s.log.Info("product image uploaded",
		zap.Int64("product_id", productID),
		zap.Int64("image_id", image.ID),
		zap.Bool("is_primary", image.IsPrimary),
		zap.Int("width", set.Width),
		zap.Int("height", set.Height),
	)

	resp := s.toResponse(image)
	return &resp, nil
}

// Update applies the request to the image row as read under the product
// lock. Siblings are only demoted when the request promotes the image.
func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	var altText bilingual.Text
	if req.AltText != nil {
		altText = req.AltText.Trimmed()
		if !validAltText(altText) {
			return nil, domain.ErrInvalidAltText
		}
	}
	if req.DisplayOrder != nil && *req.DisplayOrder < 0 {
		return nil, domain.ErrInvalidOrder
	}

	current, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var item *domain.ProductImage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.repo.LockProduct(ctx, tx, current.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrProductNotFound
		}
		item, err = s.repo.FindByID(ctx, tx, current.ID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if req.AltText != nil {
			item.AltText = altText
		}
		if req.DisplayOrder != nil {
			item.DisplayOrder = *req.DisplayOrder
		}
		if req.IsPrimary != nil {
			item.IsPrimary = *req.IsPrimary
			if item.IsPrimary {
				if err := s.repo.DemoteOthers(ctx, tx, item.ProductID, item.ID); err != nil {
					return err
				}
			}
		}
		item.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	affected, err := s.repo.Delete(ctx, s.db, item.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.discard(ctx, item.Keys())
	s.log.Info("product image deleted", zap.Int64("image_id", item.ID), zap.Int64("product_id", item.ProductID))
	return nil
}

func (s *Service) URLs(image domain.ProductImage) domain.URLs {
	return domain.URLs{
		Image:     s.storage.URL(image.ImagePath),
		Thumbnail: s.storage.URL(image.ThumbnailPath),
		Medium:    s.storage.URL(image.MediumPath),
		Large:     s.storage.URL(image.LargePath),
	}
}

// basePath returns "products/<slug>/<slug>_<order>", suffixed with the image
// ID when another image already owns that name.
func (s *Service) basePath(ctx context.Context, productSlug string, order int, imageID int64) (string, error) {
	base := fmt.Sprintf("products/%s/%s_%d", productSlug, productSlug, order)
	taken, err := s.repo.PathTaken(ctx, s.db, base+".jpg")
	if err != nil {
		return "", err
	}
	if taken {
		base = fmt.Sprintf("%s_%s", base, strconv.FormatInt(imageID, 36))
	}
	return base, nil
}

func (s *Service) discard(ctx context.Context, keys []string) {
	if err := storage.DeleteAll(context.WithoutCancel(ctx), s.storage, keys...); err != nil {
		s.log.Warn("failed to remove image files", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *Service) find(ctx context.Context, id string) (*domain.ProductImage, error) {
	imageID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, imageID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) toResponse(image *domain.ProductImage) domain.Response {
	return domain.Response{
		ID:           strconv.FormatInt(image.ID, 10),
		ProductID:    strconv.FormatInt(image.ProductID, 10),
		AltText:      image.AltText,
		DisplayOrder: image.DisplayOrder,
		IsPrimary:    image.IsPrimary,
		Paths: domain.URLs{
			Image:     image.ImagePath,
			Thumbnail: image.ThumbnailPath,
			Medium:    image.MediumPath,
			Large:     image.LargePath,
		},
		URLs:      s.URLs(*image),
		CreatedAt: image.CreatedAt,
		UpdatedAt: image.UpdatedAt,
	}
}

func parseID(raw string, invalid error) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id.Int64() <= 0 {
		return 0, invalid
	}
	return id.Int64(), nil
}

func validAltText(t bilingual.Text) bool {
	return len([]rune(t.ZH)) <= domain.MaxAltTextLength && len([]rune(t.EN)) <= domain.MaxAltTextLength
}
