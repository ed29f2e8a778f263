package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mingchang/meatshop/internal/config"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm", fmt.Errorf("wrap: %w", gorm.ErrDuplicatedKey), true},
		{"pgconn", &pgconn.PgError{Code: "23505", ConstraintName: "ux_categories_slug"}, true},
		{"pgconn other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", errors.New("UNIQUE constraint failed: categories.slug"), true},
		{"mysql", errors.New("Error 1062: Duplicate entry"), true},
		{"other", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestConstraintName(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_product_images_primary"})
	assert.Equal(t, "ux_product_images_primary", ConstraintName(err))
	assert.Empty(t, ConstraintName(errors.New("x")))
}

func TestType(t *testing.T) {
	assert.Equal(t, TypePostgres, Type(config.Config{DatabaseURL: "postgres://u@h/db"}))
	assert.Equal(t, TypeSQLite, Type(config.Config{DBType: "sqlite3"}))
	assert.Equal(t, TypeMySQL, Type(config.Config{DBType: "mariadb"}))

	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)
}
