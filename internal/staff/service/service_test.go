package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mingchang/meatshop/internal/clock"
	"github.com/mingchang/meatshop/internal/migration"
	"github.com/mingchang/meatshop/internal/staff/domain"
	"github.com/mingchang/meatshop/internal/staff/repository"
	"github.com/mingchang/meatshop/pkg/db/dbtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn := dbtest.Open(t)
	if err := migration.AutoMigrate(conn); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	}), conn
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "amy", "correct-horse", domain.RoleStaff)
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "amy", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, domain.RoleStaff, user.Role)
	require.NotNil(t, user.LastLoginAt)
	require.Equal(t, "staff:amy", user.Subject())

	if _, err := svc.Authenticate(ctx, "amy", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "correct-horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRejectsInactiveUser(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "old-timer", "correct-horse", domain.RoleManager)
	require.NoError(t, err)
	require.NoError(t, conn.Model(&domain.StaffUser{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	if _, err := svc.Authenticate(ctx, "old-timer", "correct-horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		username, password, role string
		want                     error
	}{
		{"", "long-enough", domain.RoleStaff, domain.ErrInvalidUsername},
		{"has:colon", "long-enough", domain.RoleStaff, domain.ErrInvalidUsername},
		{"amy", "short", domain.RoleStaff, domain.ErrInvalidPassword},
		{"amy", "long-enough", "owner", domain.ErrInvalidRole},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.username, tc.password, tc.role); !errors.Is(err, tc.want) {
			t.Fatalf("Create(%q) expected %v, got %v", tc.username, tc.want, err)
		}
	}

	_, err := svc.Create(ctx, "amy", "long-enough", domain.RoleStaff)
	require.NoError(t, err)
	if _, err := svc.Create(ctx, "amy", "long-enough", domain.RoleStaff); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}
