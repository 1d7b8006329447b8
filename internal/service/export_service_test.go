package service

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersCSV(t *testing.T) {
	env := newTestEnv(t)
	env.checkout(t, "9000000002", nil)
	env.checkout(t, "9000000001", nil)

	var buf bytes.Buffer
	require.NoError(t, env.exports.OrdersCSV(env.ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"id", "order_reference", "customer_name", "phone", "delivery_area",
		"items", "total_amount", "status", "payment_method", "payment_status",
		"source_channel", "legal_notes", "notes", "customer_id",
		"created_at", "updated_at",
	}, records[0])

	assert.Equal(t, "9000000001", records[1][3], "rows must be most recent first")
	assert.Equal(t, "200.00", records[1][6])
	assert.Equal(t, "New", records[1][7])
}

func TestAuditCSV(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)
	_, err := env.orders.Accept(env.ctx, adminActor, order.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.exports.AuditCSV(env.ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"id", "actor_type", "actor_id", "action", "entity_type", "entity_id",
		"details", "created_at",
	}, records[0])
	assert.Equal(t, "update", records[1][3])
	assert.Equal(t, "create", records[2][3])
}

func TestOrdersCSVEmptyStore(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	require.NoError(t, env.exports.OrdersCSV(env.ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}
