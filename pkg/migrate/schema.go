package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/isocountry"
)

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&models.Offer{},
		&models.OfferQualifyingCriteriaXref{},
		&models.OfferTargetCriteriaXref{},
		&models.OfferRuleXref{},
		&models.OfferPriceData{},
		&models.OfferCode{},
		&models.OfferAudit{},
		&models.ISOCountry{},
		&models.Phone{},
		&models.Address{},
	}
}

// expressionIndexes are the indexes gorm tags cannot describe. They mirror
// the goose migrations so sqlite enforces the same constraints as Postgres.
var expressionIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS ux_offer_codes_offer_code ON offer_codes (offer_id, lower(code))",
	"CREATE INDEX IF NOT EXISTS idx_offer_codes_lower_code ON offer_codes (lower(code))",
}

// AutoMigrate builds the schema from the models. It backs sqlite runs and
// repository tests; Postgres uses the goose migrations.
func AutoMigrate(ctx context.Context, conn *gorm.DB) error {
	tx := conn.WithContext(ctx)
	if err := tx.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range expressionIndexes {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("auto migrate index: %w", err)
		}
	}
	return nil
}

// SeedISOCountries inserts the ISO 3166-1 reference rows that are missing.
func SeedISOCountries(ctx context.Context, conn *gorm.DB) (int64, error) {
	all := isocountry.All()
	rows := make([]models.ISOCountry, 0, len(all))
	for _, c := range all {
		rows = append(rows, models.ISOCountryFromReference(c))
	}

	res := conn.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "alpha2"}}, DoNothing: true}).
		CreateInBatches(rows, 100)
	if res.Error != nil {
		return 0, fmt.Errorf("seed iso countries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
