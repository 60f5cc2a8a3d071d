package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/repositories"
)

// SharedHelpers contains common query building used by every repository
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// allowedSortColumns is the whitelist of ORDER BY columns accepted from callers
var allowedSortColumns = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"issued_date": true,
	"name":        true,
	"title":       true,
	"status":      true,
	"score":       true,
	"percentage":  true,
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// wrapNotFound converts gorm's not-found error into repositories.ErrNotFound
func wrapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// inTransaction reports whether db is bound to an open transaction.
// Reads there must see uncommitted writes, so they bypass the cache.
func inTransaction(db *gorm.DB) bool {
	_, ok := db.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}
