package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront/pkg/metrics"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db      *gorm.DB
	entity  string
	metrics *metrics.StoreMetrics
}

// NewBase constructs a Base repository for entity backed by the provided GORM
// connection. metrics may be nil.
func NewBase(db *gorm.DB, entity string, m *metrics.StoreMetrics) Base {
	return Base{db: db, entity: entity, metrics: m}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithDB returns a copy bound to another connection, usually a transaction.
func (b Base) WithDB(db *gorm.DB) Base {
	b.db = db
	return b
}

// Observe records the outcome of op. A nil error with found=false counts as
// not_found.
func (b Base) Observe(op string, start time.Time, found bool, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case !found:
		outcome = metrics.OutcomeNotFound
	}
	b.metrics.Observe(b.entity, op, outcome, start)
}

// FirstOrNil runs First on q and maps a missing row to (nil, nil).
func FirstOrNil[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
