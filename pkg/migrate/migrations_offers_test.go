package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOffersMigrationContainsSchemas(t *testing.T) {
	assertContains(t, readMigration(t, "create_offers_table"), []string{
		"CREATE TABLE IF NOT EXISTS offers",
		"offer_value NUMERIC(19,5) NOT NULL",
		"max_uses_per_customer BIGINT",
		"max_uses_per_order INT NOT NULL DEFAULT 0",
		"CHECK (adjustment_type IN ('ORDER_DISCOUNT', 'FUTURE_CREDIT'))",
		"CREATE TABLE IF NOT EXISTS offer_qualifying_criteria_xrefs",
		"CREATE TABLE IF NOT EXISTS offer_target_criteria_xrefs",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_offer_rule_xrefs_offer_key",
		"CREATE TABLE IF NOT EXISTS offer_price_data",
		"DROP TABLE IF EXISTS offers",
	})
}

func TestOfferCodesMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_offer_codes_table"), []string{
		"CREATE TABLE IF NOT EXISTS offer_codes",
		"FOREIGN KEY (offer_id) REFERENCES offers(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_offer_codes_offer_code ON offer_codes (offer_id, lower(code))",
		"CREATE INDEX IF NOT EXISTS idx_offer_codes_lower_code",
		"DROP TABLE IF EXISTS offer_codes",
	})
}

func TestOfferAuditsMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_offer_audits_table"), []string{
		"CREATE TABLE IF NOT EXISTS offer_audits",
		"FOREIGN KEY (offer_code_id) REFERENCES offer_codes(id) ON DELETE SET NULL",
		"idx_offer_audits_offer_code_redeemed",
	})
}

func TestAddressesMigrationContainsSchemas(t *testing.T) {
	assertContains(t, readMigration(t, "create_addresses_table"), []string{
		"CREATE TABLE IF NOT EXISTS iso_countries",
		"CREATE TABLE IF NOT EXISTS phones",
		"CREATE TABLE IF NOT EXISTS addresses",
		"FOREIGN KEY (iso_country_alpha2) REFERENCES iso_countries(alpha2)",
		"FOREIGN KEY (phone_fax_id) REFERENCES phones(id) ON DELETE SET NULL",
		"DROP TABLE IF EXISTS iso_countries",
	})
}

func TestOfferTenantMigration(t *testing.T) {
	assertContains(t, readMigration(t, "add_offer_tenant"), []string{
		"ALTER TABLE offers ADD COLUMN IF NOT EXISTS tenant_id TEXT",
		"CREATE INDEX IF NOT EXISTS idx_offers_tenant_id ON offers (tenant_id)",
		"ALTER TABLE offers DROP COLUMN IF EXISTS tenant_id",
	})
}
