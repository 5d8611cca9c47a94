package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/service"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/testutil"
)

func TestTotalsService(t *testing.T) {
	ctx := context.Background()

	t.Run("get computes on first access", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTotalsService(t, db)
		testutil.NewAccount().WithBalances(1000, 100).Build(t, db)
		testutil.NewAccount().WithBalances(250.5, 20.25).Build(t, db)

		totals, err := svc.Get(ctx)

		require.NoError(t, err)
		assert.InDelta(t, 120.25, totals.TotalUnits, 1e-12)
		assert.InDelta(t, 1250.5, totals.TotalInvestment, 1e-12)
		testutil.AssertRowCount(t, db, "totals", 1)
	})

	t.Run("zero accounts give zero totals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTotalsService(t, db)

		totals, err := svc.Recompute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0.0, totals.TotalUnits)
		assert.Equal(t, 0.0, totals.TotalInvestment)
	})

	t.Run("recompute is idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTotalsService(t, db)
		testutil.NewAccount().WithBalances(1000, 100).Build(t, db)

		first, err := svc.Recompute(ctx)
		require.NoError(t, err)
		second, err := svc.Recompute(ctx)
		require.NoError(t, err)

		assert.Equal(t, first.TotalUnits, second.TotalUnits)
		assert.Equal(t, first.TotalInvestment, second.TotalInvestment)
		testutil.AssertRowCount(t, db, "totals", 1)
	})

	t.Run("get returns the cache until the next recompute", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTotalsService(t, db)
		testutil.NewAccount().WithBalances(1000, 100).Build(t, db)
		_, err := svc.Recompute(ctx)
		require.NoError(t, err)

		testutil.NewAccount().WithBalances(500, 50).Build(t, db)
		cached, err := svc.Get(ctx)
		require.NoError(t, err)
		fresh, err := svc.Recompute(ctx)
		require.NoError(t, err)

		assert.Equal(t, 100.0, cached.TotalUnits)
		assert.Equal(t, 150.0, fresh.TotalUnits)
	})
}

func TestFundService_Overview(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svcs := testutil.NewTestServices(t, db)
	account := testutil.CreateAccount(t, db)

	_, err := svcs.Account.Invest(ctx, account.UserID, investOf(1000))
	require.NoError(t, err)

	overview, err := svcs.Fund.Overview(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1000.0, overview.CurrentValue.Value)
	assert.Equal(t, service.DefaultNAV, overview.NAV.Value)
	assert.Equal(t, 100.0, overview.Totals.TotalUnits)
	assert.Equal(t, 1000.0, overview.Totals.TotalInvestment)
}

func TestFundService_OverviewOfAnEmptyFund(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fund := testutil.NewTestFundService(t, db)

	overview, err := fund.Overview(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0.0, overview.CurrentValue.Value)
	assert.True(t, overview.NAV.IsDefault)
	assert.Equal(t, 0.0, overview.Totals.TotalUnits)
}
