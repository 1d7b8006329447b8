package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
)

func TestPriceCart(t *testing.T) {
	env := newTestEnv(t)

	cart := models.NewCart([]models.CartLine{{ItemID: 5, Quantity: 2}})
	priced, err := env.cart.Price(env.ctx, cart)
	require.NoError(t, err)

	require.Len(t, priced.Lines, 1)
	assert.Equal(t, int64(5), priced.Lines[0].ItemID)
	assert.Equal(t, "2 PC LITTI + CHOKHA", priced.Lines[0].Name)
	assert.Equal(t, 2, priced.Lines[0].Quantity)
	assert.True(t, priced.Lines[0].LineTotal.Equal(decimal.NewFromInt(180)),
		"line total %s", priced.Lines[0].LineTotal)
	assert.True(t, priced.Subtotal.Equal(decimal.NewFromInt(180)),
		"subtotal %s", priced.Subtotal)

	fee := env.cart.DeliveryFee(priced.Subtotal)
	assert.True(t, fee.Equal(decimal.NewFromInt(20)))
}

func TestPriceCartDropsUnknownItems(t *testing.T) {
	env := newTestEnv(t)

	cart := models.NewCart([]models.CartLine{
		{ItemID: 9999, Quantity: 3},
		{ItemID: 5, Quantity: 1},
	})
	priced, err := env.cart.Price(env.ctx, cart)
	require.NoError(t, err)

	require.Len(t, priced.Lines, 1)
	assert.Equal(t, int64(5), priced.Lines[0].ItemID)
	assert.True(t, priced.Subtotal.Equal(decimal.NewFromInt(90)))
}

func TestPriceCartPreservesLineOrder(t *testing.T) {
	env := newTestEnv(t)

	cart := models.NewCart([]models.CartLine{
		{ItemID: 9, Quantity: 1},
		{ItemID: 1, Quantity: 1},
		{ItemID: 5, Quantity: 1},
	})
	priced, err := env.cart.Price(env.ctx, cart)
	require.NoError(t, err)

	require.Len(t, priced.Lines, 3)
	assert.Equal(t, int64(9), priced.Lines[0].ItemID)
	assert.Equal(t, int64(1), priced.Lines[1].ItemID)
	assert.Equal(t, int64(5), priced.Lines[2].ItemID)
}

func TestDeliveryFeeZeroForEmptySubtotal(t *testing.T) {
	env := newTestEnv(t)
	assert.True(t, env.cart.DeliveryFee(decimal.Zero).IsZero())
}

func TestPricedCartSummary(t *testing.T) {
	priced := &PricedCart{Lines: []PricedLine{
		{Name: "2 PC LITTI + CHOKHA", Quantity: 2},
		{Name: "CHICKEN THALI", Quantity: 1},
	}}
	assert.Equal(t, "2 PC LITTI + CHOKHA x2, CHICKEN THALI x1", priced.Summary())
}
