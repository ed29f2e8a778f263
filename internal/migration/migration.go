package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	categorydomain "github.com/mingchang/meatshop/internal/category/domain"
	companydomain "github.com/mingchang/meatshop/internal/company/domain"
	inquirydomain "github.com/mingchang/meatshop/internal/inquiry/domain"
	productdomain "github.com/mingchang/meatshop/internal/product/domain"
	imagedomain "github.com/mingchang/meatshop/internal/productimage/domain"
	staffdomain "github.com/mingchang/meatshop/internal/staff/domain"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

const sqlitePrimaryImageIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_product_images_primary
	ON product_images (product_id) WHERE is_primary`

// Models lists every table the application owns, parents first.
func Models() []any {
	return []any{
		&categorydomain.Category{},
		&productdomain.Product{},
		&imagedomain.ProductImage{},
		&companydomain.CompanyInfo{},
		&inquirydomain.ContactInquiry{},
		&staffdomain.StaffUser{},
	}
}

// Apply brings the schema up to date for the connected dialect. Postgres uses
// the versioned SQL files; sqlite and mysql are migrated from the models.
func Apply(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	switch conn.Dialector.Name() {
	case "postgres":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	case "sqlite", "mysql":
		return AutoMigrate(conn)
	default:
		return fmt.Errorf("unsupported migration dialect %q", conn.Dialector.Name())
	}
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}

// AutoMigrate creates the schema from the models. Used for sqlite and mysql,
// and by package tests.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	// mysql has no partial indexes; the primary image rule relies on the
	// service transaction there.
	if conn.Dialector.Name() == "sqlite" {
		if err := conn.Exec(sqlitePrimaryImageIndex).Error; err != nil {
			return fmt.Errorf("create primary image index: %w", err)
		}
	}
	return nil
}
