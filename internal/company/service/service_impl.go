package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mingchang/meatshop/internal/clock"
	"github.com/mingchang/meatshop/internal/company/domain"
	"github.com/mingchang/meatshop/internal/observability/metrics"
	"github.com/mingchang/meatshop/internal/productimage/variant"
	"github.com/mingchang/meatshop/internal/providers/storage"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/db"
	"github.com/mingchang/meatshop/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxNameLength = 200

var (
	latitudeLimit  = decimal.NewFromInt(90)
	longitudeLimit = decimal.NewFromInt(180)
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Storage storage.Provider
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	storage storage.Provider
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("company.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		storage: p.Storage,
		metrics: p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context) (*domain.CompanyInfo, error) {
	return s.repo.Get(ctx, s.db)
}

func (s *Service) GetResponse(ctx context.Context) (*domain.Response, error) {
	info, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, domain.ErrNotFound
	}
	resp := s.toResponse(info)
	return &resp, nil
}

// Create stores the company row. A second row is never created; the caller
// gets ErrCompanyInfoExists and is expected to edit the existing one.
func (s *Service) Create(ctx context.Context, req domain.Request) (*domain.Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCompanyInfoExists
	}

	now := s.clock.Now()
	info := &domain.CompanyInfo{CreatedAt: now}
	apply(info, req)
	info.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, info); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCompanyInfoExists
		}
		return nil, err
	}

	s.log.Info("company info created", zap.String("email", info.Email))
	resp := s.toResponse(info)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.Request) (*domain.Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	info, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, domain.ErrNotFound
	}

	apply(info, req)
	info.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, info); err != nil {
		return nil, err
	}

	resp := s.toResponse(info)
	return &resp, nil
}

// UploadHero re-encodes the uploaded picture and stores it as the hero image
// under company/hero_<name>.jpg. The previous file is removed afterwards.
func (s *Service) UploadHero(ctx context.Context, filename string, data []byte) (*domain.Response, error) {
	info, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, domain.ErrNotFound
	}
	if len(data) == 0 {
		return nil, domain.ErrInvalidImage
	}

	encoded, err := variant.Reencode(data, variant.HeroQuality)
	if err != nil {
		if errors.Is(err, variant.ErrUnsupported) || errors.Is(err, variant.ErrTooLarge) {
			return nil, domain.ErrInvalidImage
		}
		return nil, err
	}

	key := heroKey(filename)
	if _, err := s.storage.Put(ctx, key, encoded, "image/jpeg"); err != nil {
		return nil, err
	}

	previous := info.HeroImagePath
	info.HeroImagePath = key
	info.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, info); err != nil {
		return nil, err
	}

	if previous != "" && previous != key {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.log.Warn("failed to remove previous hero image", zap.String("key", previous), zap.Error(err))
		}
	}
	s.metrics.RecordImageVariants(ctx, "hero", 1)

	resp := s.toResponse(info)
	return &resp, nil
}

func (s *Service) HeroURL(info *domain.CompanyInfo) string {
	if info == nil || info.HeroImagePath == "" {
		return ""
	}
	return s.storage.URL(info.HeroImagePath)
}

func (s *Service) toResponse(info *domain.CompanyInfo) domain.Response {
	return domain.Response{
		Name:          info.Name,
		DisplayName:   info.Name.Display(),
		About:         info.About,
		Address:       info.Address,
		BusinessHours: info.BusinessHours,
		Phone:         info.Phone,
		Email:         info.Email,
		Latitude:      info.Latitude,
		Longitude:     info.Longitude,
		LineID:        info.LineID,
		WhatsApp:      info.WhatsApp,
		FacebookURL:   info.FacebookURL,
		InstagramURL:  info.InstagramURL,
		HeroImagePath: info.HeroImagePath,
		HeroImageURL:  s.HeroURL(info),
		CreatedAt:     info.CreatedAt,
		UpdatedAt:     info.UpdatedAt,
	}
}

func validateRequest(req domain.Request) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	checks := []struct {
		text bilingual.Text
		err  error
	}{
		{req.Name, domain.ErrInvalidName},
		{req.About, domain.ErrInvalidAbout},
		{req.Address, domain.ErrInvalidAddress},
		{req.BusinessHours, domain.ErrInvalidHours},
	}
	for _, c := range checks {
		if !c.text.Trimmed().Complete() {
			return c.err
		}
	}
	if len([]rune(req.Name.ZH)) > maxNameLength || len([]rune(req.Name.EN)) > maxNameLength {
		return domain.ErrInvalidName
	}

	if req.Latitude != nil && req.Latitude.Abs().GreaterThan(latitudeLimit) {
		return domain.ErrInvalidLatitude
	}
	if req.Longitude != nil && req.Longitude.Abs().GreaterThan(longitudeLimit) {
		return domain.ErrInvalidLongitude
	}
	return nil
}

func apply(info *domain.CompanyInfo, req domain.Request) {
	info.Name = req.Name.Trimmed()
	info.About = req.About.Trimmed()
	info.Address = req.Address.Trimmed()
	info.BusinessHours = req.BusinessHours.Trimmed()
	info.Phone = strings.TrimSpace(req.Phone)
	info.Email = strings.TrimSpace(req.Email)
	info.Latitude = roundCoordinate(req.Latitude)
	info.Longitude = roundCoordinate(req.Longitude)
	info.LineID = strings.TrimSpace(req.LineID)
	info.WhatsApp = strings.TrimSpace(req.WhatsApp)
	info.FacebookURL = strings.TrimSpace(req.FacebookURL)
	info.InstagramURL = strings.TrimSpace(req.InstagramURL)
}

func roundCoordinate(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	r := v.Round(7)
	return &r
}

func heroKey(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := slug.Make(base)
	if name == "" {
		name = "image"
	}
	return "company/hero_" + name + ".jpg"
}
