package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mingchang/meatshop/internal/clock"
	"github.com/mingchang/meatshop/internal/company/domain"
	"github.com/mingchang/meatshop/internal/company/repository"
	"github.com/mingchang/meatshop/internal/company/service"
	"github.com/mingchang/meatshop/internal/migration"
	"github.com/mingchang/meatshop/internal/providers/storage"
	"github.com/mingchang/meatshop/pkg/bilingual"
	"github.com/mingchang/meatshop/pkg/db/dbtest"
	"github.com/mingchang/meatshop/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, string) {
	t.Helper()

	conn := dbtest.Open(t)
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	root := t.TempDir()
	store, err := storage.NewLocal(root, "/media/")
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	return service.New(service.Params{
		DB:      conn,
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)),
		Repo:    repository.Provide(),
		Storage: store,
	}), root
}

func validRequest() domain.Request {
	lat := decimal.RequireFromString("25.03301234")
	lng := decimal.RequireFromString("121.5654")
	return domain.Request{
		Name:          bilingual.New("明昌肉舖", "Ming Chang Meats"),
		About:         bilingual.New("三代經營", "Three generations of butchers."),
		Address:       bilingual.New("台北市信義區", "Xinyi District, Taipei"),
		BusinessHours: bilingual.New("週一至週六 8:00-18:00", "Mon-Sat 8:00-18:00"),
		Phone:         "02-2345-6789",
		Email:         "shop@example.com",
		Latitude:      &lat,
		Longitude:     &lng,
	}
}

func TestCreateIsSingleton(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, info)

	resp, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	require.Equal(t, "25.0330123", resp.Latitude.String())

	_, err = svc.Create(ctx, validRequest())
	if !errors.Is(err, domain.ErrCompanyInfoExists) {
		t.Fatalf("expected ErrCompanyInfoExists, got %v", err)
	}

	info, err = svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.SingletonID, info.ID)
}

func TestUpdateRequiresExistingRow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, validRequest()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Phone = "04-1111-2222"
	req.Latitude = nil
	resp, err := svc.Update(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "04-1111-2222", resp.Phone)
	require.Nil(t, resp.Latitude)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := validRequest()
	req.About = bilingual.New("只有中文", "")
	if _, err := svc.Create(ctx, req); !errors.Is(err, domain.ErrInvalidAbout) {
		t.Fatalf("expected ErrInvalidAbout, got %v", err)
	}

	req = validRequest()
	bad := decimal.NewFromInt(91)
	req.Latitude = &bad
	if _, err := svc.Create(ctx, req); !errors.Is(err, domain.ErrInvalidLatitude) {
		t.Fatalf("expected ErrInvalidLatitude, got %v", err)
	}

	req = validRequest()
	req.Email = "not-an-email"
	_, err := svc.Create(ctx, req)
	verrs, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	require.True(t, verrs.Has("email"))
}

func TestUploadHeroReplacesPreviousFile(t *testing.T) {
	svc, root := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 20))))

	first, err := svc.UploadHero(ctx, "Shop Front.png", buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "company/hero_shop-front.jpg", first.HeroImagePath)
	require.Equal(t, "/media/company/hero_shop-front.jpg", first.HeroImageURL)

	second, err := svc.UploadHero(ctx, "counter.png", buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "company/hero_counter.jpg", second.HeroImagePath)

	if _, err := os.Stat(filepath.Join(root, "company", "hero_shop-front.jpg")); !os.IsNotExist(err) {
		t.Fatalf("expected previous hero removed, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "company", "hero_counter.jpg")); err != nil {
		t.Fatalf("expected new hero on disk: %v", err)
	}

	if _, err := svc.UploadHero(ctx, "x.txt", []byte("plain text")); !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}
