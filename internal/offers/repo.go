package offers

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront/internal/repo"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

const activeWindow = "archived = ? AND start_date <= ? AND (end_date IS NULL OR end_date > ?)"

// Repository exposes offer persistence operations.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB, m *metrics.StoreMetrics) *Repository {
	return &Repository{Base: repo.NewBase(conn, "offer", m)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithDB(tx)}
}

// Create returns a new unpersisted offer with column defaults applied.
func (r *Repository) Create() *models.Offer {
	return models.NewOffer()
}

// FindByID loads the offer with everything it owns. A missing offer yields nil.
func (r *Repository) FindByID(ctx context.Context, id int64) (out *models.Offer, err error) {
	if id <= 0 {
		return nil, nil
	}
	defer func(start time.Time) { r.Observe("find_by_id", start, out != nil, err) }(time.Now())

	return findByID(r.DB(ctx), id)
}

func findByID(q *gorm.DB, id int64) (*models.Offer, error) {
	return repo.FirstOrNil[models.Offer](withChildren(q).Where("id = ?", id))
}

func withChildren(q *gorm.DB) *gorm.DB {
	return q.
		Preload("QualifyingItemCriteriaXrefs", orderByID).
		Preload("TargetItemCriteriaXrefs", orderByID).
		Preload("MatchRuleXrefs", orderByID).
		Preload("PriceData", orderByID).
		Preload("OfferCodes", orderByID)
}

func orderByID(q *gorm.DB) *gorm.DB {
	return q.Order("id ASC")
}

// Save writes the offer and replaces its criteria links, match rules, and
// price tiers in one transaction. Codes attached to a new offer are inserted
// with it; an existing offer's codes are left to the offer code endpoints.
func (r *Repository) Save(ctx context.Context, offer *models.Offer) (out *models.Offer, err error) {
	if offer == nil {
		return nil, errors.New("offer is required")
	}
	defer func(start time.Time) { r.Observe("save", start, true, err) }(time.Now())

	err = r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		write := tx.Omit(clause.Associations)
		isNew := offer.ID == 0
		if isNew {
			if err := write.Create(offer).Error; err != nil {
				return err
			}
		} else if err := write.Save(offer).Error; err != nil {
			return err
		}
		if err := replaceChildren(tx, offer); err != nil {
			return err
		}
		if isNew {
			if err := insertCodes(tx, offer); err != nil {
				return err
			}
		}
		reloaded, err := findByID(tx, offer.ID)
		if err != nil {
			return err
		}
		out = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func insertCodes(tx *gorm.DB, offer *models.Offer) error {
	for i := range offer.OfferCodes {
		code := &offer.OfferCodes[i]
		code.ID = 0
		code.OfferID = offer.ID
		if err := tx.Omit(clause.Associations).Create(code).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "offer code already exists for this offer").
					WithDetails(map[string]any{"code": code.Code})
			}
			return err
		}
	}
	return nil
}

func replaceChildren(tx *gorm.DB, offer *models.Offer) error {
	owned := []any{
		&models.OfferQualifyingCriteriaXref{},
		&models.OfferTargetCriteriaXref{},
		&models.OfferRuleXref{},
		&models.OfferPriceData{},
	}
	for _, model := range owned {
		if err := tx.Where("offer_id = ?", offer.ID).Delete(model).Error; err != nil {
			return err
		}
	}

	for i := range offer.QualifyingItemCriteriaXrefs {
		offer.QualifyingItemCriteriaXrefs[i].ID = 0
		offer.QualifyingItemCriteriaXrefs[i].OfferID = offer.ID
	}
	for i := range offer.TargetItemCriteriaXrefs {
		offer.TargetItemCriteriaXrefs[i].ID = 0
		offer.TargetItemCriteriaXrefs[i].OfferID = offer.ID
	}
	for i := range offer.MatchRuleXrefs {
		offer.MatchRuleXrefs[i].ID = 0
		offer.MatchRuleXrefs[i].OfferID = offer.ID
	}
	for i := range offer.PriceData {
		offer.PriceData[i].ID = 0
		offer.PriceData[i].OfferID = offer.ID
	}

	if len(offer.QualifyingItemCriteriaXrefs) > 0 {
		if err := tx.Create(&offer.QualifyingItemCriteriaXrefs).Error; err != nil {
			return err
		}
	}
	if len(offer.TargetItemCriteriaXrefs) > 0 {
		if err := tx.Create(&offer.TargetItemCriteriaXrefs).Error; err != nil {
			return err
		}
	}
	if len(offer.MatchRuleXrefs) > 0 {
		if err := tx.Create(&offer.MatchRuleXrefs).Error; err != nil {
			return err
		}
	}
	if len(offer.PriceData) > 0 {
		if err := tx.Create(&offer.PriceData).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the offer together with its codes, links, tiers, and
// redemption history. Deleting a missing offer is a no-op.
func (r *Repository) Delete(ctx context.Context, id int64) (err error) {
	if id <= 0 {
		return nil
	}
	defer func(start time.Time) { r.Observe("delete", start, true, err) }(time.Now())

	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := []any{
			&models.OfferAudit{},
			&models.OfferCode{},
			&models.OfferQualifyingCriteriaXref{},
			&models.OfferTargetCriteriaXref{},
			&models.OfferRuleXref{},
			&models.OfferPriceData{},
		}
		for _, model := range dependents {
			if err := tx.Where("offer_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Offer{}, id).Error
	})
}

type listQuery struct {
	limit  int
	cursor *pagination.Cursor
	active *bool
	now    time.Time
}

// List returns offers newest first using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) (rows []models.Offer, err error) {
	defer func(start time.Time) { r.Observe("list", start, true, err) }(time.Now())

	q := r.DB(ctx).Model(&models.Offer{})
	if opts.active != nil {
		if *opts.active {
			q = q.Where(activeWindow, false, opts.now, opts.now)
		} else {
			q = q.Where("NOT ("+activeWindow+")", false, opts.now, opts.now)
		}
	}
	if opts.cursor != nil {
		q = q.Where("id < ?", opts.cursor.ID)
	}

	rows = []models.Offer{}
	if err := q.Order("id DESC").Limit(opts.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindAutomaticallyAdded returns the active offers applied without a code,
// lowest priority first.
func (r *Repository) FindAutomaticallyAdded(ctx context.Context, now time.Time) (rows []models.Offer, err error) {
	defer func(start time.Time) { r.Observe("find_automatic", start, true, err) }(time.Now())

	rows = []models.Offer{}
	err = withChildren(r.DB(ctx)).
		Where("automatically_added = ?", true).
		Where(activeWindow, false, now, now).
		Order("priority ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
