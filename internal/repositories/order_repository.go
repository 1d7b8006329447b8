package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/apperr"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/database"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// ErrDuplicateReference is returned by Create when the generated order
// reference collides with an existing row. The caller regenerates once and
// retries before surfacing a conflict.
var ErrDuplicateReference = errors.New("order reference already exists")

// OrderRepositoryInterface owns the orders table and every multi-row write
// that touches it. Order mutations, their ledger events, and their audit
// entries always commit in a single transaction.
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order, seedNote string, actor models.Actor) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetByReferenceAndPhone(ctx context.Context, reference, phone string) (*models.Order, error)
	ListAll(ctx context.Context) ([]*models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus, note string, actor models.Actor, auditDetails string) error
	Replace(ctx context.Context, order *models.Order, statusChanged bool, eventNote string, actor models.Actor) error
	Delete(ctx context.Context, orderID int64, actor models.Actor) error
	DeleteAll(ctx context.Context, actor models.Actor) (int, error)
}

type OrderRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewOrderRepository(log *logger.Logger, db *database.DB) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: log.WithComponent("order_repository"),
	}
}

const orderColumns = `id, order_reference, customer_name, phone, delivery_area, items,
	total_amount, status, payment_method, payment_status, source_channel,
	legal_notes, notes, customer_id, created_at, updated_at`

// wrapStorageErr converts a busy/locked failure that survived the retry into
// the transient taxonomy error; other errors pass through.
func wrapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if database.IsBusy(err) {
		return &apperr.TransientError{Err: err}
	}
	return err
}

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID, &order.Reference, &order.CustomerName, &order.Phone,
		&order.DeliveryArea, &order.ItemsSummary, &order.TotalAmount,
		&order.Status, &order.PaymentMethod, &order.PaymentStatus,
		&order.SourceChannel, &order.LegalNotes, &order.Notes,
		&order.CustomerID, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts the order row, its seed ledger event, and its creation audit
// entry as one atomic unit. A partially applied create is a correctness bug,
// so any failure rolls back all three writes.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, seedNote string, actor models.Actor) error {
	now := time.Now().UTC()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO orders (
				order_reference, customer_name, phone, delivery_area, items,
				total_amount, status, payment_method, payment_status,
				source_channel, legal_notes, notes, customer_id, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.Reference, order.CustomerName, order.Phone, order.DeliveryArea,
			order.ItemsSummary, order.TotalAmount, string(order.Status),
			order.PaymentMethod, order.PaymentStatus, order.SourceChannel,
			order.LegalNotes, order.Notes, order.CustomerID, now, now,
		)
		if err != nil {
			if isUniqueViolation(err, "orders.order_reference") {
				return ErrDuplicateReference
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		order.ID = id

		if err := appendEventTx(ctx, tx, id, order.Status, seedNote, actor, now); err != nil {
			return err
		}
		return appendAuditTx(ctx, tx, actor, models.AuditCreate, "order", id,
			"order_reference="+order.Reference, now)
	})
	if err != nil {
		return wrapStorageErr(err)
	}

	order.CreatedAt = now
	order.UpdatedAt = now
	r.logger.Info("Order created", "order_id", order.ID, "reference", order.Reference)
	return nil
}

// GetByID retrieves a single order.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "order", ID: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// GetByReferenceAndPhone is the public tracking lookup. The reference matches
// either the human-facing reference or the numeric id, and the phone must
// match the one on the order.
func (r *OrderRepository) GetByReferenceAndPhone(ctx context.Context, reference, phone string) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE (order_reference = ? OR CAST(id AS TEXT) = ?) AND phone = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		reference, reference, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "order", ID: reference}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// ListAll returns every order, most recent first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]*models.Order, error) {
	return r.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC")
}

// ListByCustomer returns one customer's orders, most recent first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*models.Order, error) {
	return r.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE customer_id = ? ORDER BY created_at DESC, id DESC",
		customerID)
}

// UpdateStatus writes the new status, bumps updated_at, and appends the
// ledger event plus the audit entry in one transaction.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus, note string, actor models.Actor, auditDetails string) error {
	now := time.Now().UTC()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
			string(newStatus), now, orderID)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &apperr.NotFoundError{Entity: "order", ID: strconv.FormatInt(orderID, 10)}
		}

		if err := appendEventTx(ctx, tx, orderID, newStatus, note, actor, now); err != nil {
			return err
		}
		return appendAuditTx(ctx, tx, actor, models.AuditUpdate, "order", orderID, auditDetails, now)
	})
	if err != nil {
		return wrapStorageErr(err)
	}
	r.logger.Info("Order status updated", "order_id", orderID, "status", string(newStatus))
	return nil
}

// Replace overwrites the full mutable field set of an order. When the status
// changed, the caller passes statusChanged=true and the transition is logged
// as a ledger event; unrelated edits only produce the audit entry.
func (r *OrderRepository) Replace(ctx context.Context, order *models.Order, statusChanged bool, eventNote string, actor models.Actor) error {
	now := time.Now().UTC()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE orders SET
				customer_name = ?, phone = ?, delivery_area = ?, items = ?,
				total_amount = ?, status = ?, order_reference = ?,
				payment_method = ?, payment_status = ?, source_channel = ?,
				legal_notes = ?, notes = ?, updated_at = ?
			WHERE id = ?`,
			order.CustomerName, order.Phone, order.DeliveryArea, order.ItemsSummary,
			order.TotalAmount, string(order.Status), order.Reference,
			order.PaymentMethod, order.PaymentStatus, order.SourceChannel,
			order.LegalNotes, order.Notes, now, order.ID,
		)
		if err != nil {
			if isUniqueViolation(err, "orders.order_reference") {
				return &apperr.ConflictError{Entity: "order", Key: "reference " + order.Reference}
			}
			return fmt.Errorf("failed to update order: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &apperr.NotFoundError{Entity: "order", ID: strconv.FormatInt(order.ID, 10)}
		}

		if statusChanged {
			if err := appendEventTx(ctx, tx, order.ID, order.Status, eventNote, actor, now); err != nil {
				return err
			}
		}
		return appendAuditTx(ctx, tx, actor, models.AuditUpdate, "order", order.ID,
			"Order details updated", now)
	})
	if err != nil {
		return wrapStorageErr(err)
	}

	order.UpdatedAt = now
	r.logger.Info("Order updated", "order_id", order.ID, "status_changed", statusChanged)
	return nil
}

// Delete removes the order row and records the deletion. The order's ledger
// events are deliberately left in place as orphaned history.
func (r *OrderRepository) Delete(ctx context.Context, orderID int64, actor models.Actor) error {
	now := time.Now().UTC()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", orderID)
		if err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &apperr.NotFoundError{Entity: "order", ID: strconv.FormatInt(orderID, 10)}
		}
		return appendAuditTx(ctx, tx, actor, models.AuditDelete, "order", orderID,
			"Order deleted", now)
	})
	if err != nil {
		return wrapStorageErr(err)
	}
	r.logger.Info("Order deleted", "order_id", orderID)
	return nil
}

// DeleteAll clears every order and records a single bulk audit entry with the
// removed count. Event history stays behind.
func (r *OrderRepository) DeleteAll(ctx context.Context, actor models.Actor) (int, error) {
	now := time.Now().UTC()
	var count int
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
			return fmt.Errorf("failed to count orders: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM orders"); err != nil {
			return fmt.Errorf("failed to clear orders: %w", err)
		}
		return appendAuditTx(ctx, tx, actor, models.AuditDelete, "orders", 0,
			fmt.Sprintf("Cleared %d orders", count), now)
	})
	if err != nil {
		return 0, wrapStorageErr(err)
	}
	r.logger.Info("All orders cleared", "count", count)
	return count, nil
}

var _ OrderRepositoryInterface = (*OrderRepository)(nil)
