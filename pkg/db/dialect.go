package db

import (
	"fmt"
	"strings"

	"github.com/mingchang/meatshop/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// Dialect picks a dialector from DATABASE_URL when set, otherwise from the
// discrete DATABASE_* settings.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		return dialectFromURL(dsn)
	}

	switch Type(cfg) {
	case TypeMySQL:
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)), nil
	case TypePostgres:
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
			cfg.DBSSLMode,
		)), nil
	case TypeSQLite:
		name := cfg.DBName
		if name == "" {
			name = "meatshop"
		}
		return sqlite.Open(name + ".db?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.DBType)
	}
}

// Type reports the normalized database type, inferring it from DATABASE_URL.
func Type(cfg config.Config) string {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		switch {
		case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
			return TypePostgres
		case strings.HasPrefix(dsn, "mysql://"):
			return TypeMySQL
		case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"):
			return TypeSQLite
		}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
	case "postgresql", "pg", TypePostgres:
		return TypePostgres
	case "mariadb", TypeMySQL:
		return TypeMySQL
	case "sqlite3", TypeSQLite:
		return TypeSQLite
	default:
		return strings.ToLower(strings.TrimSpace(cfg.DBType))
	}
}

func dialectFromURL(dsn string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(dsn, "mysql://"):
		return mysql.Open(strings.TrimPrefix(dsn, "mysql://")), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	case strings.HasPrefix(dsn, "file:"):
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme")
	}
}
