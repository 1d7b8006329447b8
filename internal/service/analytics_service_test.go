package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendOnEmptyStore(t *testing.T) {
	env := newTestEnv(t)

	points, err := env.analytics.Trend(env.ctx, 7, MetricRevenue)
	require.NoError(t, err)
	require.Len(t, points, 7)

	for i, point := range points {
		assert.True(t, point.Value.IsZero(), "point %d value", i)
		assert.Equal(t, 0, point.Width, "point %d width", i)
		if i > 0 {
			assert.Equal(t, 24.0, point.Date.Sub(points[i-1].Date).Hours(),
				"days must be consecutive")
		}
	}
}

func TestTrendZeroFillsMissingDays(t *testing.T) {
	env := newTestEnv(t)
	env.checkout(t, "9000000001", nil)

	points, err := env.analytics.Trend(env.ctx, 7, MetricRevenue)
	require.NoError(t, err)
	require.Len(t, points, 7)

	// All revenue sits on the last point (today); earlier days stay zero.
	last := points[6]
	assert.Equal(t, "200.00", last.Value.StringFixed(2))
	assert.Equal(t, 100, last.Width)
	for _, point := range points[:6] {
		assert.True(t, point.Value.IsZero())
		assert.Equal(t, 0, point.Width)
	}
}

func TestTrendOrderCountMetric(t *testing.T) {
	env := newTestEnv(t)
	env.checkout(t, "9000000001", nil)
	env.checkout(t, "9000000002", nil)

	points, err := env.analytics.Trend(env.ctx, 7, MetricOrders)
	require.NoError(t, err)
	assert.Equal(t, "2", points[6].Value.String())
	assert.Equal(t, 100, points[6].Width)
}

func TestSnapshotOnEmptyStore(t *testing.T) {
	env := newTestEnv(t)

	snapshot, err := env.analytics.Snapshot(env.ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, snapshot.TotalOrders)
	assert.True(t, snapshot.TotalRevenue.IsZero())
	assert.True(t, snapshot.AvgOrderValue.IsZero())
	assert.Equal(t, 0, snapshot.OnTimeRate)
	assert.Equal(t, 0, snapshot.RepeatRate)
	assert.Equal(t, 12, snapshot.MenuItemCount)
}

func TestSnapshotKPIs(t *testing.T) {
	env := newTestEnv(t)
	env.checkout(t, "9000000001", nil)
	env.checkout(t, "9000000001", nil)
	other := env.checkout(t, "9000000002", nil)

	for _, status := range []string{"Preparing", "Out for delivery", "Completed"} {
		_, err := env.orders.Transition(env.ctx, adminActor, other.ID, status, "")
		require.NoError(t, err)
	}

	snapshot, err := env.analytics.Snapshot(env.ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, snapshot.TotalOrders)
	assert.Equal(t, "600.00", snapshot.TotalRevenue.StringFixed(2))
	assert.Equal(t, 3, snapshot.OrdersToday)
	assert.Equal(t, "600.00", snapshot.RevenueToday.StringFixed(2))
	assert.Equal(t, 1, snapshot.CompletedCount)
	assert.Equal(t, 2, snapshot.PendingCount)
	assert.Equal(t, 2, snapshot.UniqueCustomers)
	assert.Equal(t, 1, snapshot.RepeatCustomers)
	assert.Equal(t, "200.00", snapshot.AvgOrderValue.StringFixed(2))
	assert.Equal(t, 33, snapshot.OnTimeRate)
	assert.Equal(t, 50, snapshot.RepeatRate)
}

func TestCategoryMix(t *testing.T) {
	env := newTestEnv(t)

	mix, err := env.analytics.CategoryMix(env.ctx)
	require.NoError(t, err)
	require.Len(t, mix, 4)

	// Launch catalog: 4 Combo, 4 Thali, 2 Classic, 2 Plate.
	assert.Equal(t, "Combo", mix[0].Category)
	assert.Equal(t, 4, mix[0].Count)
	assert.Equal(t, 33, mix[0].Percent)
	assert.Equal(t, "Thali", mix[1].Category)

	total := 0
	for _, share := range mix {
		total += share.Count
	}
	assert.Equal(t, 12, total)
}
