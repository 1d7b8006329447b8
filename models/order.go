package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	StatusNew            OrderStatus = "New"
	StatusPreparing      OrderStatus = "Preparing"
	StatusOutForDelivery OrderStatus = "Out for delivery"
	StatusCompleted      OrderStatus = "Completed"
	StatusCancelled      OrderStatus = "Cancelled"
)

// statusTransitions is the allowed transition table. Terminal states
// (Completed, Cancelled) have no outgoing edges.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusNew:            {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusCompleted},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

// ParseOrderStatus validates a raw status string against the enum.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch OrderStatus(raw) {
	case StatusNew, StatusPreparing, StatusOutForDelivery, StatusCompleted, StatusCancelled:
		return OrderStatus(raw), true
	}
	return "", false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the move s -> next is in the transition table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ActorType identifies the party attributed to a mutation.
type ActorType string

const (
	ActorCustomer ActorType = "customer"
	ActorAdmin    ActorType = "admin"
	ActorSystem   ActorType = "system"
)

// Actor is the attribution carried on every ledger write. ID is nil for
// anonymous customers.
type Actor struct {
	Type ActorType `json:"actor_type"`
	ID   *int64    `json:"actor_id"`
}

// Order is the core persisted entity. ItemsSummary is a human-readable
// snapshot taken at creation time and is not re-derivable from the catalog.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	Reference     string          `json:"order_reference" db:"order_reference"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	Phone         string          `json:"phone" db:"phone"`
	DeliveryArea  string          `json:"delivery_area" db:"delivery_area"`
	ItemsSummary  string          `json:"items" db:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	PaymentStatus string          `json:"payment_status" db:"payment_status"`
	SourceChannel string          `json:"source_channel" db:"source_channel"`
	LegalNotes    string          `json:"legal_notes" db:"legal_notes"`
	Notes         string          `json:"notes" db:"notes"`
	CustomerID    *int64          `json:"customer_id" db:"customer_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderEvent is one append-only ledger entry in an order's status history.
// Events carry the status the order moved to; the order row never points back
// at its events.
type OrderEvent struct {
	ID        int64       `json:"id" db:"id"`
	OrderID   int64       `json:"order_id" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	Note      string      `json:"note" db:"note"`
	ActorType ActorType   `json:"actor_type" db:"actor_type"`
	ActorID   *int64      `json:"actor_id" db:"actor_id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
