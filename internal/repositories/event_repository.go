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

// EventRepositoryInterface is the append-only per-order status ledger.
// Entries are never updated or deleted; deleting an order leaves its events
// behind as orphaned history.
type EventRepositoryInterface interface {
	ListForOrder(ctx context.Context, orderID int64, newestFirst bool) ([]*models.OrderEvent, error)
	ListForOrders(ctx context.Context, orderIDs []int64) (map[int64][]*models.OrderEvent, error)
	GetByID(ctx context.Context, id int64) (*models.OrderEvent, error)
}

type EventRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewEventRepository(log *logger.Logger, db *database.DB) *EventRepository {
	return &EventRepository{
		db:     db,
		logger: log.WithComponent("event_repository"),
	}
}

const eventColumns = "id, order_id, status, note, actor_type, actor_id, created_at"

// appendEventTx writes one ledger entry inside the caller's transaction, so
// order mutation and history commit or fail together.
func appendEventTx(ctx context.Context, tx *sql.Tx, orderID int64, status models.OrderStatus, note string, actor models.Actor, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_events (order_id, status, note, actor_type, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		orderID, string(status), note, string(actor.Type), actor.ID, at,
	)
	if err != nil {
		return fmt.Errorf("failed to append order event: %w", err)
	}
	return nil
}

func scanEvent(row interface{ Scan(...any) error }) (*models.OrderEvent, error) {
	var event models.OrderEvent
	err := row.Scan(
		&event.ID, &event.OrderID, &event.Status, &event.Note,
		&event.ActorType, &event.ActorID, &event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListForOrder returns an order's history. newestFirst is the display order;
// ascending order replays causal history.
func (r *EventRepository) ListForOrder(ctx context.Context, orderID int64, newestFirst bool) ([]*models.OrderEvent, error) {
	direction := "ASC"
	if newestFirst {
		direction = "DESC"
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM order_events WHERE order_id = ? ORDER BY created_at "+direction+", id "+direction,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order events: %w", err)
	}
	defer rows.Close()

	var events []*models.OrderEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ListForOrders batches history for a set of orders in a single query,
// newest first within each order.
func (r *EventRepository) ListForOrders(ctx context.Context, orderIDs []int64) (map[int64][]*models.OrderEvent, error) {
	byOrder := make(map[int64][]*models.OrderEvent, len(orderIDs))
	if len(orderIDs) == 0 {
		return byOrder, nil
	}

	placeholders := strings.Repeat("?,", len(orderIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM order_events WHERE order_id IN ("+placeholders+") ORDER BY created_at DESC, id DESC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to batch order events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		byOrder[event.OrderID] = append(byOrder[event.OrderID], event)
	}
	return byOrder, rows.Err()
}

// GetByID fetches a single ledger entry.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.OrderEvent, error) {
	event, err := scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM order_events WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "order event", ID: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order event: %w", err)
	}
	return event, nil
}

var _ EventRepositoryInterface = (*EventRepository)(nil)
