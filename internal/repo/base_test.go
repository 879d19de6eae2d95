package repo

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/internal/repo/repotest"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

func TestNewBaseStoresConnection(t *testing.T) {
	db := repotest.NewDB(t)
	base := NewBase(db, "offer", nil)

	assert.Same(t, db, base.db)
	assert.Same(t, db, base.DB(nil))
}

func TestBaseDB_BindsContext(t *testing.T) {
	base := NewBase(repotest.NewDB(t), "offer", nil)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)
}

func TestFirstOrNil(t *testing.T) {
	db := repotest.NewDB(t)

	missing, err := FirstOrNil[models.OfferCode](db.Where("id = ?", 404))
	require.NoError(t, err)
	assert.Nil(t, missing)

	country, err := FirstOrNil[models.ISOCountry](db.Where("alpha2 = ?", "MX"))
	require.NoError(t, err)
	require.NotNil(t, country)
	assert.Equal(t, "MEX", country.Alpha3)
}

func TestObserveRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStoreMetrics(reg)
	base := NewBase(nil, "offer_code", m)

	base.Observe("read_by_id", time.Now(), true, nil)
	base.Observe("read_by_id", time.Now(), false, nil)
	base.Observe("read_by_id", time.Now(), false, assert.AnError)

	count, err := testutil.GatherAndCount(reg, "storefront_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
