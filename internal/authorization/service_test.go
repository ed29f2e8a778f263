package authorization

import (
	"context"
	"errors"
	"testing"

	"github.com/mingchang/meatshop/pkg/db/dbtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (Service, *ServiceImpl) {
	t.Helper()

	enforcer, err := NewEnforcer(dbtest.Open(t))
	if err != nil {
		t.Fatalf("failed to build enforcer: %v", err)
	}
	svc := NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
	return svc, svc.(*ServiceImpl)
}

func TestStaffPermissions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	allowed := [][2]string{
		{ObjectCategory, ActionView},
		{ObjectProduct, ActionView},
		{ObjectInquiry, ActionUpdate},
		{ObjectProductImage, ActionCreate},
	}
	for _, p := range allowed {
		if err := svc.Authorize(ctx, "staff:amy", "staff", p[0], p[1]); err != nil {
			t.Fatalf("expected staff to %s %s, got %v", p[1], p[0], err)
		}
	}

	denied := [][2]string{
		{ObjectCategory, ActionDelete},
		{ObjectProduct, ActionCreate},
		{ObjectCompany, ActionUpdate},
	}
	for _, p := range denied {
		if err := svc.Authorize(ctx, "staff:amy", "staff", p[0], p[1]); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected staff to be denied %s %s, got %v", p[1], p[0], err)
		}
	}
}

func TestManagerInheritsStaff(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, "staff:boss", "manager", ObjectCategory, ActionDelete))
	require.NoError(t, svc.Authorize(ctx, "staff:boss", "manager", ObjectInquiry, ActionUpdate))
	require.NoError(t, svc.Authorize(ctx, "staff:boss", "manager", ObjectCompany, ActionCreate))
}

func TestRoleChangeReplacesGrouping(t *testing.T) {
	svc, impl := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, "staff:kai", "manager", ObjectProduct, ActionDelete))

	err := svc.Authorize(ctx, "staff:kai", "staff", ObjectProduct, ActionDelete)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected demoted user to be denied, got %v", err)
	}

	rules, err := impl.enforcer.GetFilteredGroupingPolicy(0, "staff:kai")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"staff:kai", "role:staff"}}, rules)
}

func TestAuthorizeRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Authorize(ctx, "", "staff", ObjectProduct, ActionView); !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
	if err := svc.Authorize(ctx, "staff:x", "owner", ObjectProduct, ActionView); !errors.Is(err, ErrInvalidActor) {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
	if err := svc.Authorize(ctx, "staff:x", "staff", "", ActionView); !errors.Is(err, ErrInvalidObject) {
		t.Fatalf("expected ErrInvalidObject, got %v", err)
	}
	if err := svc.Authorize(ctx, "staff:x", "staff", ObjectProduct, " "); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	conn := dbtest.Open(t)
	_, err := NewEnforcer(conn)
	require.NoError(t, err)
	second, err := NewEnforcer(conn)
	require.NoError(t, err)

	policies, err := second.GetPolicy()
	require.NoError(t, err)
	require.Len(t, policies, 8)
}
