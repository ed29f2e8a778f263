package seed_test

import (
	"testing"

	"github.com/mingchang/meatshop/internal/config"
	"github.com/mingchang/meatshop/internal/migration"
	"github.com/mingchang/meatshop/internal/seed"
	staffdomain "github.com/mingchang/meatshop/internal/staff/domain"
	"github.com/mingchang/meatshop/internal/staff/password"
	"github.com/mingchang/meatshop/pkg/db/dbtest"
	"github.com/stretchr/testify/require"
)

func TestEnsureBootstrapAdmin(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, migration.AutoMigrate(conn))

	cfg := config.BootstrapConfig{AdminUsername: "admin", AdminPassword: "s3cret-pass"}
	created, err := seed.EnsureBootstrapAdmin(conn, cfg)
	require.NoError(t, err)
	require.True(t, created)

	created, err = seed.EnsureBootstrapAdmin(conn, config.BootstrapConfig{AdminUsername: "admin", AdminPassword: "other"})
	require.NoError(t, err)
	require.False(t, created)

	var user staffdomain.StaffUser
	require.NoError(t, conn.Where("username = ?", "admin").Take(&user).Error)
	require.Equal(t, staffdomain.RoleManager, user.Role)
	require.True(t, password.Verify("s3cret-pass", user.PasswordHash))
}

func TestEnsureBootstrapAdminSkipsWithoutCredentials(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, migration.AutoMigrate(conn))

	created, err := seed.EnsureBootstrapAdmin(conn, config.BootstrapConfig{AdminUsername: "admin"})
	require.NoError(t, err)
	require.False(t, created)
}
