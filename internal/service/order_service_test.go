package service

import (
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/apperr"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
)

func TestCheckoutTotalIncludesDeliveryFee(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	// 90 x 2 + 20 delivery fee.
	assert.Equal(t, "200.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, "2 PC LITTI + CHOKHA x2", order.ItemsSummary)
	assert.Equal(t, models.StatusNew, order.Status)
	assert.Equal(t, "Website-Cart", order.SourceChannel)
	assert.Equal(t, "Cash", order.PaymentMethod)
	assert.Equal(t, "Pending", order.PaymentStatus)
	assert.NotZero(t, order.ID)
}

func TestCheckoutWritesExactlyOneSeedEvent(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusNew, events[0].Status)
	assert.Equal(t, "Cart checkout", events[0].Note)
	assert.Equal(t, models.ActorCustomer, events[0].ActorType)

	entries := env.auditEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditCreate, entries[0].Action)
	assert.Equal(t, "order", entries[0].EntityType)
	assert.Equal(t, order.ID, entries[0].EntityID)
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	cart := models.NewCart([]models.CartLine{{ItemID: 5, Quantity: 1}})
	actor := models.Actor{Type: models.ActorCustomer}

	_, err := env.orders.Checkout(env.ctx, actor, CheckoutInput{
		Phone: "9000000001", DeliveryArea: "Boring Road",
	}, cart)
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)

	_, err = env.orders.Checkout(env.ctx, actor, CheckoutInput{
		Name: "Ravi", Phone: "9000000001", DeliveryArea: "Boring Road",
	}, models.NewCart(nil))
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "items", validation.Field)
}

func TestSubmitRequestHasZeroTotal(t *testing.T) {
	env := newTestEnv(t)
	order, err := env.orders.SubmitRequest(env.ctx, models.Actor{Type: models.ActorCustomer}, RequestInput{
		Name:         "Ravi Kumar",
		Phone:        "9000000002",
		DeliveryArea: "Kankarbagh",
		Items:        "4 litti, 1 thali",
	})
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.IsZero())
	assert.Equal(t, "Website", order.SourceChannel)
	assert.Equal(t, "Cash", order.PaymentMethod)

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Order requested", events[0].Note)
}

func TestReferenceFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{6}$`)
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := GenerateReference(now)
		assert.Regexp(t, pattern, ref)
		assert.Contains(t, ref, "ORD-20260314-")
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestTransitionAppendsEventAndAudit(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	updated, err := env.orders.Accept(env.ctx, adminActor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(order.CreatedAt))

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, true)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.StatusPreparing, events[0].Status)
	assert.Equal(t, "Accepted by admin", events[0].Note)
	assert.Equal(t, models.ActorAdmin, events[0].ActorType)

	entries := env.auditEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditUpdate, entries[0].Action)
	assert.Equal(t, "Status changed from New to Preparing", entries[0].Details)
}

func TestTransitionDefaultNote(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	_, err := env.orders.Transition(env.ctx, adminActor, order.ID, "Preparing", "")
	require.NoError(t, err)

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Status changed from New", events[0].Note)
}

func TestTransitionGuards(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	_, err := env.orders.Transition(env.ctx, adminActor, order.ID, "New", "")
	var noChange *apperr.NoChangeError
	require.ErrorAs(t, err, &noChange)

	_, err = env.orders.Transition(env.ctx, adminActor, order.ID, "Completed", "")
	var invalid *apperr.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "New", invalid.From)

	_, err = env.orders.Transition(env.ctx, adminActor, order.ID, "", "")
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = env.orders.Transition(env.ctx, adminActor, order.ID, "Delivered", "")
	require.ErrorAs(t, err, &validation)

	_, err = env.orders.Transition(env.ctx, adminActor, 99999, "Preparing", "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTerminalOrdersRejectTransitions(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	for _, status := range []string{"Preparing", "Out for delivery", "Completed"} {
		_, err := env.orders.Transition(env.ctx, adminActor, order.ID, status, "")
		require.NoError(t, err, status)
	}

	var invalid *apperr.InvalidTransitionError
	for _, status := range []string{"New", "Preparing", "Cancelled"} {
		_, err := env.orders.Transition(env.ctx, adminActor, order.ID, status, "")
		require.ErrorAs(t, err, &invalid, status)
	}
}

func TestRejectCancelsOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	updated, err := env.orders.Reject(env.ctx, adminActor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Rejected by admin", events[0].Note)
}

func TestAdminCreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	order, err := env.orders.AdminCreate(env.ctx, adminActor, AdminOrderInput{
		CustomerName: "Walk-in",
		Phone:        "9000000003",
		DeliveryArea: "Counter",
		Items:        "2 thali",
		TotalAmount:  decimal.NewFromInt(238),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusNew, order.Status)
	assert.Equal(t, "Cash", order.PaymentMethod)
	assert.Equal(t, "Unpaid", order.PaymentStatus)
	assert.Equal(t, "Admin", order.SourceChannel)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{6}$`, order.Reference)

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Order created", events[0].Note)
}

func TestAdminCreateRejectsDuplicateReference(t *testing.T) {
	env := newTestEnv(t)
	existing := env.checkout(t, "9000000001", nil)

	_, err := env.orders.AdminCreate(env.ctx, adminActor, AdminOrderInput{
		CustomerName: "Walk-in",
		Phone:        "9000000003",
		DeliveryArea: "Counter",
		Items:        "2 thali",
		TotalAmount:  decimal.NewFromInt(238),
		Reference:    existing.Reference,
	})
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict,
		"an operator-chosen reference must never be silently replaced")
	assert.Contains(t, conflict.Key, existing.Reference)

	// Nothing was created alongside the existing order.
	details, listErr := env.orders.ListAll(env.ctx)
	require.NoError(t, listErr)
	assert.Len(t, details, 1)
}

func TestAdminEditStatusChangeIsLogged(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	edited, err := env.orders.AdminEdit(env.ctx, adminActor, order.ID, AdminOrderInput{
		CustomerName: "Ravi Kumar",
		Phone:        "9000000001",
		DeliveryArea: "Boring Road",
		Items:        order.ItemsSummary,
		TotalAmount:  order.TotalAmount,
		Status:       "Preparing",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, edited.Status)

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, true)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Status changed from New", events[0].Note)

	entries := env.auditEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "Order details updated", entries[0].Details)
}

func TestAdminEditWithoutStatusChangeAppendsNoEvent(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	_, err := env.orders.AdminEdit(env.ctx, adminActor, order.ID, AdminOrderInput{
		CustomerName: "Ravi K.",
		Phone:        "9000000001",
		DeliveryArea: "Patliputra Colony",
		Items:        order.ItemsSummary,
		TotalAmount:  order.TotalAmount,
	})
	require.NoError(t, err)

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, false)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	entries := env.auditEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "Order details updated", entries[0].Details)
}

func TestAdminEditRejectsIllegalStatusJump(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	_, err := env.orders.AdminEdit(env.ctx, adminActor, order.ID, AdminOrderInput{
		CustomerName: "Ravi Kumar",
		Phone:        "9000000001",
		DeliveryArea: "Boring Road",
		Items:        order.ItemsSummary,
		TotalAmount:  order.TotalAmount,
		Status:       "Completed",
	})
	var invalid *apperr.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestDeleteOrphansEvents(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	events, err := env.eventRepo.ListForOrder(env.ctx, order.ID, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	seedEventID := events[0].ID

	require.NoError(t, env.orders.Delete(env.ctx, adminActor, order.ID))

	_, err = env.orderRepo.GetByID(env.ctx, order.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	orphan, err := env.eventRepo.GetByID(env.ctx, seedEventID)
	require.NoError(t, err, "events must survive order deletion")
	assert.Equal(t, order.ID, orphan.OrderID)

	entries := env.auditEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditDelete, entries[0].Action)
	assert.Equal(t, "Order deleted", entries[0].Details)
}

func TestClearAll(t *testing.T) {
	env := newTestEnv(t)
	env.checkout(t, "9000000001", nil)
	env.checkout(t, "9000000002", nil)

	count, err := env.orders.ClearAll(env.ctx, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	details, err := env.orders.ListAll(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, details)

	entries := env.auditEntries(t)
	require.NotEmpty(t, entries)
	assert.Equal(t, "orders", entries[0].EntityType)
	assert.Equal(t, "Cleared 2 orders", entries[0].Details)
}

func TestTrack(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", nil)

	detail, err := env.orders.Track(env.ctx, order.Reference, "9000000001")
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.Order.ID)
	require.Len(t, detail.Events, 1)

	// Numeric id works in place of the reference.
	detail, err = env.orders.Track(env.ctx, strconv.FormatInt(order.ID, 10), "9000000001")
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.Order.ID)

	_, err = env.orders.Track(env.ctx, order.Reference, "1234567890")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.orders.Track(env.ctx, "", "9000000001")
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestGetAccessControl(t *testing.T) {
	env := newTestEnv(t)
	order := env.checkout(t, "9000000001", ptrID(42))

	_, err := env.orders.Get(env.ctx, models.Actor{Type: models.ActorCustomer, ID: ptrID(7)}, order.ID)
	var forbidden *apperr.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	_, err = env.orders.Get(env.ctx, models.Actor{Type: models.ActorCustomer}, order.ID)
	require.ErrorAs(t, err, &forbidden)

	detail, err := env.orders.Get(env.ctx, models.Actor{Type: models.ActorCustomer, ID: ptrID(42)}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.Order.ID)

	_, err = env.orders.Get(env.ctx, adminActor, order.ID)
	require.NoError(t, err)
}

func TestListAllBatchesEvents(t *testing.T) {
	env := newTestEnv(t)
	first := env.checkout(t, "9000000001", nil)
	second := env.checkout(t, "9000000002", nil)
	_, err := env.orders.Accept(env.ctx, adminActor, second.ID)
	require.NoError(t, err)

	details, err := env.orders.ListAll(env.ctx)
	require.NoError(t, err)
	require.Len(t, details, 2)

	byID := make(map[int64]*OrderDetail, len(details))
	for _, d := range details {
		byID[d.Order.ID] = d
	}
	assert.Len(t, byID[first.ID].Events, 1)
	assert.Len(t, byID[second.ID].Events, 2)
}

func TestListForCustomer(t *testing.T) {
	env := newTestEnv(t)
	env.checkout(t, "9000000001", ptrID(42))
	env.checkout(t, "9000000002", ptrID(7))

	details, err := env.orders.ListForCustomer(env.ctx, 42)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "9000000001", details[0].Order.Phone)
}

func TestCheckoutManyOrdersUniqueReferences(t *testing.T) {
	env := newTestEnv(t)
	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		order := env.checkout(t, fmt.Sprintf("90000001%02d", i), nil)
		assert.False(t, seen[order.Reference])
		seen[order.Reference] = true
	}
}
