package addresses

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront/internal/repo"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// Repository exposes address persistence operations. Phones are owned by the
// address that references them.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB, m *metrics.StoreMetrics) *Repository {
	return &Repository{Base: repo.NewBase(conn, "address", m)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithDB(tx)}
}

// Create returns a new unpersisted, active address.
func (r *Repository) Create() *models.Address {
	return models.NewAddress()
}

func (r *Repository) FindByID(ctx context.Context, id int64) (out *models.Address, err error) {
	if id <= 0 {
		return nil, nil
	}
	defer func(start time.Time) { r.Observe("find_by_id", start, out != nil, err) }(time.Now())

	return findByID(r.DB(ctx), id)
}

func findByID(q *gorm.DB, id int64) (*models.Address, error) {
	return repo.FirstOrNil[models.Address](q.
		Preload("PhonePrimary").
		Preload("PhoneSecondary").
		Preload("PhoneFax").
		Preload("IsoCountry").
		Where("id = ?", id))
}

// Save writes the address and its phones in one transaction. Phones dropped
// from the address are deleted.
func (r *Repository) Save(ctx context.Context, address *models.Address) (out *models.Address, err error) {
	if address == nil {
		return nil, errors.New("address is required")
	}
	defer func(start time.Time) { r.Observe("save", start, true, err) }(time.Now())

	err = r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var previous []int64
		if address.ID != 0 {
			existing, err := findByID(tx, address.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				previous = phoneIDs(existing)
			}
		}

		slots := []struct {
			phone *models.Phone
			id    **int64
		}{
			{address.PhonePrimary, &address.PhonePrimaryID},
			{address.PhoneSecondary, &address.PhoneSecondaryID},
			{address.PhoneFax, &address.PhoneFaxID},
		}
		for _, slot := range slots {
			if slot.phone == nil {
				*slot.id = nil
				continue
			}
			if err := tx.Save(slot.phone).Error; err != nil {
				return err
			}
			id := slot.phone.ID
			*slot.id = &id
		}

		write := tx.Omit(clause.Associations)
		if address.ID == 0 {
			if err := write.Create(address).Error; err != nil {
				return err
			}
		} else if err := write.Save(address).Error; err != nil {
			return err
		}

		if orphans, _ := lo.Difference(previous, phoneIDs(address)); len(orphans) > 0 {
			if err := tx.Delete(&models.Phone{}, orphans).Error; err != nil {
				return err
			}
		}

		reloaded, err := findByID(tx, address.ID)
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

// Delete removes the address and its phones. Deleting a missing address is a no-op.
func (r *Repository) Delete(ctx context.Context, id int64) (err error) {
	if id <= 0 {
		return nil
	}
	defer func(start time.Time) { r.Observe("delete", start, true, err) }(time.Now())

	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByID(tx, id)
		if err != nil || existing == nil {
			return err
		}
		if err := tx.Delete(&models.Address{}, id).Error; err != nil {
			return err
		}
		if ids := phoneIDs(existing); len(ids) > 0 {
			return tx.Delete(&models.Phone{}, ids).Error
		}
		return nil
	})
}

func phoneIDs(a *models.Address) []int64 {
	var ids []int64
	for _, id := range []*int64{a.PhonePrimaryID, a.PhoneSecondaryID, a.PhoneFaxID} {
		if id != nil && *id != 0 {
			ids = append(ids, *id)
		}
	}
	return lo.Uniq(ids)
}
