package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/repositories"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/database"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

var adminActor = models.Actor{Type: models.ActorAdmin, ID: ptrID(1)}

func ptrID(id int64) *int64 { return &id }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.LevelError,
		Format: "text",
		Output: "stderr",
	})
}

type testEnv struct {
	ctx       context.Context
	db        *database.DB
	menuRepo  *repositories.MenuRepository
	orderRepo *repositories.OrderRepository
	eventRepo *repositories.EventRepository
	auditRepo *repositories.AuditRepository
	cart      *CartService
	orders    *OrderService
	analytics *AnalyticsService
	exports   *ExportService
}

// newTestEnv opens an in-memory database with the launch menu seeded and
// wires the full service stack against it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testLogger()

	db, err := database.NewConnection(database.Config{
		Path:         ":memory:",
		BusyTimeout:  time.Second,
		MaxOpenConns: 1,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		ctx:       context.Background(),
		db:        db,
		menuRepo:  repositories.NewMenuRepository(log, db),
		orderRepo: repositories.NewOrderRepository(log, db),
		eventRepo: repositories.NewEventRepository(log, db),
		auditRepo: repositories.NewAuditRepository(log, db),
	}
	env.cart = NewCartService(log, env.menuRepo)
	env.orders = NewOrderService(log, env.orderRepo, env.eventRepo, env.cart)
	env.analytics = NewAnalyticsService(log, env.orderRepo, env.menuRepo)
	env.exports = NewExportService(log, env.orderRepo, env.auditRepo)
	return env
}

// checkout creates an order through the cart path. Menu item 5 is the
// 90-unit classic litti from the launch catalog.
func (env *testEnv) checkout(t *testing.T, phone string, customerID *int64) *models.Order {
	t.Helper()
	cart := models.NewCart([]models.CartLine{{ItemID: 5, Quantity: 2}})
	actor := models.Actor{Type: models.ActorCustomer, ID: customerID}
	order, err := env.orders.Checkout(env.ctx, actor, CheckoutInput{
		Name:         "Ravi Kumar",
		Phone:        phone,
		DeliveryArea: "Boring Road",
		CustomerID:   customerID,
	}, cart)
	require.NoError(t, err)
	return order
}

func (env *testEnv) auditEntries(t *testing.T) []*models.AuditLogEntry {
	t.Helper()
	entries, err := env.auditRepo.ExportAll(env.ctx)
	require.NoError(t, err)
	return entries
}
