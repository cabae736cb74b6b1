// Package catalog stores the operator's reference data: companies,
// buses, routes and employees.
package catalog

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
)

// Open connects GORM to the record store.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	return db, nil
}

// Page is one page of a listing with the exact total
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func newPage[T any](items []T, total int64, page, size int) *Page[T] {
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: page, PageSize: size, TotalPages: pages}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	return page, size
}

// offset saturates at maxOffset so a huge page reads past the end
// instead of wrapping.
func offset(page, size int) int {
	if page-1 > maxOffset/size {
		return maxOffset
	}
	return (page - 1) * size
}

const maxOffset = math.MaxInt32

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.ErrNotFound
	}
	return err
}

func affected(result *gorm.DB, op string) error {
	if result.Error != nil {
		return fmt.Errorf("failed to %s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
