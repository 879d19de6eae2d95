package offercodes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront/internal/repo"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

const offerCodeUniqueConstraint = "ux_offer_codes_offer_code"

// Dao is the data-access contract for offer codes. A missing row is reported
// as a nil result, never as an error.
type Dao interface {
	ReadOfferCodeByID(ctx context.Context, id int64) (*models.OfferCode, error)
	ReadOfferCodesByIDs(ctx context.Context, ids []int64) ([]models.OfferCode, error)
	ReadOfferCodeByCode(ctx context.Context, code string) (*models.OfferCode, error)
	ReadAllOfferCodesByCode(ctx context.Context, code string) ([]models.OfferCode, error)
	Save(ctx context.Context, code *models.OfferCode) (*models.OfferCode, error)
	Delete(ctx context.Context, code *models.OfferCode) error
	Create() *models.OfferCode
	OfferCodeIsUsed(ctx context.Context, code *models.OfferCode) (bool, error)
}

// Repository is the GORM implementation of Dao.
type Repository struct {
	repo.Base
	usage UsagePolicy
}

var _ Dao = (*Repository)(nil)

// NewRepository builds the offer code repository. A nil usage policy falls
// back to the redeemed policy over the same connection.
func NewRepository(conn *gorm.DB, usage UsagePolicy, m *metrics.StoreMetrics) *Repository {
	if usage == nil {
		usage = NewRedeemedPolicy(NewAuditRepository(conn, m))
	}
	return &Repository{Base: repo.NewBase(conn, "offer_code", m), usage: usage}
}

// WithTx returns a repository bound to tx sharing the same usage policy.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithDB(tx), usage: r.usage}
}

// Create returns a new unpersisted offer code.
func (r *Repository) Create() *models.OfferCode {
	return &models.OfferCode{}
}

func (r *Repository) ReadOfferCodeByID(ctx context.Context, id int64) (out *models.OfferCode, err error) {
	if id <= 0 {
		return nil, nil
	}
	defer func(start time.Time) { r.Observe("read_by_id", start, out != nil, err) }(time.Now())

	return repo.FirstOrNil[models.OfferCode](r.DB(ctx).Where("id = ?", id))
}

// ReadOfferCodesByIDs returns the codes matching ids ordered by id. Unknown ids
// are skipped.
func (r *Repository) ReadOfferCodesByIDs(ctx context.Context, ids []int64) (out []models.OfferCode, err error) {
	ids = lo.Uniq(lo.Filter(ids, func(id int64, _ int) bool { return id > 0 }))
	if len(ids) == 0 {
		return []models.OfferCode{}, nil
	}
	defer func(start time.Time) { r.Observe("read_by_ids", start, len(out) > 0, err) }(time.Now())

	rows := []models.OfferCode{}
	if err := r.DB(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadOfferCodeByCode matches code case-insensitively among unarchived codes.
// When several offers share the code the oldest row wins.
func (r *Repository) ReadOfferCodeByCode(ctx context.Context, code string) (out *models.OfferCode, err error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	defer func(start time.Time) { r.Observe("read_by_code", start, out != nil, err) }(time.Now())

	return repo.FirstOrNil[models.OfferCode](r.byCode(ctx, code).Preload("Offer").Order("id ASC"))
}

// ReadAllOfferCodesByCode returns every unarchived code matching code.
func (r *Repository) ReadAllOfferCodesByCode(ctx context.Context, code string) (out []models.OfferCode, err error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return []models.OfferCode{}, nil
	}
	defer func(start time.Time) { r.Observe("read_all_by_code", start, len(out) > 0, err) }(time.Now())

	rows := []models.OfferCode{}
	if err := r.byCode(ctx, code).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) byCode(ctx context.Context, code string) *gorm.DB {
	return r.DB(ctx).Where("LOWER(code) = LOWER(?) AND archived = ?", code, false)
}

// Save inserts code when it has no identity and updates it otherwise. The
// owning offer is never written through the code.
func (r *Repository) Save(ctx context.Context, code *models.OfferCode) (out *models.OfferCode, err error) {
	if code == nil {
		return nil, errors.New("offer code is required")
	}
	defer func(start time.Time) { r.Observe("save", start, true, err) }(time.Now())

	if code.Offer != nil && code.OfferID == 0 {
		code.OfferID = code.Offer.ID
	}
	if err := r.DB(ctx).Omit(clause.Associations).Save(code).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "offer code already exists for this offer").
				WithDetails(map[string]any{"constraint": offerCodeUniqueConstraint, "code": code.Code})
		}
		return nil, err
	}
	return code, nil
}

// Delete removes code by identity. Deleting an unpersisted or already deleted
// code is a no-op.
func (r *Repository) Delete(ctx context.Context, code *models.OfferCode) (err error) {
	if code == nil || code.ID == 0 {
		return nil
	}
	defer func(start time.Time) { r.Observe("delete", start, true, err) }(time.Now())

	return r.DB(ctx).Delete(&models.OfferCode{}, code.ID).Error
}

// OfferCodeIsUsed delegates to the configured usage policy.
func (r *Repository) OfferCodeIsUsed(ctx context.Context, code *models.OfferCode) (bool, error) {
	if code == nil {
		return false, nil
	}
	return r.usage.IsUsed(ctx, code)
}
