package offercodes

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront/internal/repo"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// AuditRepository persists offer redemptions.
type AuditRepository struct {
	repo.Base
}

func NewAuditRepository(conn *gorm.DB, m *metrics.StoreMetrics) *AuditRepository {
	return &AuditRepository{Base: repo.NewBase(conn, "offer_audit", m)}
}

func (r *AuditRepository) WithTx(tx *gorm.DB) *AuditRepository {
	return &AuditRepository{Base: r.Base.WithDB(tx)}
}

// Record inserts a redemption. A zero RedeemedDate is stamped with the current time.
func (r *AuditRepository) Record(ctx context.Context, audit *models.OfferAudit) (err error) {
	if audit == nil {
		return errors.New("offer audit is required")
	}
	defer func(start time.Time) { r.Observe("record", start, true, err) }(time.Now())

	if audit.RedeemedDate.IsZero() {
		audit.RedeemedDate = time.Now()
	}
	audit.RedeemedDate = audit.RedeemedDate.UTC()
	return r.DB(ctx).Create(audit).Error
}

// CountByOfferCode counts every redemption of the code.
func (r *AuditRepository) CountByOfferCode(ctx context.Context, offerCodeID int64) (int64, error) {
	return r.CountByOfferCodeSince(ctx, offerCodeID, time.Time{})
}

// CountByOfferCodeSince counts redemptions of the code at or after since. A
// zero since counts all of them.
func (r *AuditRepository) CountByOfferCodeSince(ctx context.Context, offerCodeID int64, since time.Time) (count int64, err error) {
	defer func(start time.Time) { r.Observe("count_by_code", start, true, err) }(time.Now())

	q := r.DB(ctx).Model(&models.OfferAudit{}).Where("offer_code_id = ?", offerCodeID)
	if !since.IsZero() {
		q = q.Where("redeemed_date >= ?", since.UTC())
	}
	err = q.Count(&count).Error
	return count, err
}

// CountBySubject counts redemptions of offerID by a customer or an account,
// depending on strategy, at or after since.
func (r *AuditRepository) CountBySubject(ctx context.Context, offerID int64, strategy enums.CustomerMaxUsesStrategyType, subjectID int64, since time.Time) (count int64, err error) {
	defer func(start time.Time) { r.Observe("count_by_subject", start, true, err) }(time.Now())

	column := "customer_id"
	if strategy == enums.CustomerMaxUsesStrategyAccount {
		column = "account_id"
	}
	q := r.DB(ctx).Model(&models.OfferAudit{}).Where("offer_id = ?", offerID).Where(column+" = ?", subjectID)
	if !since.IsZero() {
		q = q.Where("redeemed_date >= ?", since.UTC())
	}
	err = q.Count(&count).Error
	return count, err
}
