package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/apperr"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/repositories"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// CheckoutInput is the validated form of the cart checkout path.
type CheckoutInput struct {
	Name         string
	Phone        string
	DeliveryArea string
	Notes        string
	CustomerID   *int64
}

// RequestInput is the manual "order request" path: free-text items, no cart,
// no priced total.
type RequestInput struct {
	Name         string
	Phone        string
	DeliveryArea string
	Items        string
	Notes        string
	CustomerID   *int64
}

// AdminOrderInput is the full field set an operator can key in directly.
type AdminOrderInput struct {
	CustomerName  string
	Phone         string
	DeliveryArea  string
	Items         string
	TotalAmount   decimal.Decimal
	Status        string
	Reference     string
	PaymentMethod string
	PaymentStatus string
	SourceChannel string
	LegalNotes    string
	Notes         string
}

// OrderDetail pairs an order with its event history, newest first.
type OrderDetail struct {
	Order  *models.Order        `json:"order"`
	Events []*models.OrderEvent `json:"events"`
}

type OrderServiceInterface interface {
	Checkout(ctx context.Context, actor models.Actor, input CheckoutInput, cart *models.Cart) (*models.Order, error)
	SubmitRequest(ctx context.Context, actor models.Actor, input RequestInput) (*models.Order, error)
	AdminCreate(ctx context.Context, actor models.Actor, input AdminOrderInput) (*models.Order, error)
	Transition(ctx context.Context, actor models.Actor, orderID int64, rawStatus, note string) (*models.Order, error)
	Accept(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
	Reject(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
	AdminEdit(ctx context.Context, actor models.Actor, orderID int64, input AdminOrderInput) (*models.Order, error)
	Delete(ctx context.Context, actor models.Actor, orderID int64) error
	ClearAll(ctx context.Context, actor models.Actor) (int, error)
	Get(ctx context.Context, actor models.Actor, orderID int64) (*OrderDetail, error)
	Track(ctx context.Context, reference, phone string) (*OrderDetail, error)
	ListAll(ctx context.Context) ([]*OrderDetail, error)
	ListForCustomer(ctx context.Context, customerID int64) ([]*OrderDetail, error)
}

type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	eventRepo repositories.EventRepositoryInterface
	cart      CartServiceInterface
	logger    *logger.Logger
}

func NewOrderService(log *logger.Logger, orderRepo repositories.OrderRepositoryInterface, eventRepo repositories.EventRepositoryInterface, cart CartServiceInterface) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		cart:      cart,
		logger:    log.WithComponent("order_service"),
	}
}

// GenerateReference builds a human-readable order reference:
// ORD-YYYYMMDD-XXXXXX, where XXXXXX is 6 uppercase hex characters from a
// cryptographically random source. Uniqueness is enforced at insert time, not
// here.
func GenerateReference(now time.Time) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken; nothing
		// sensible can continue from there.
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return fmt.Sprintf("ORD-%s-%X", now.Format("20060102"), buf)
}

// createWithRetry inserts the order. A reference this service generated is
// regenerated once on collision; a caller-supplied reference that collides is
// a conflict, never silently replaced. A second collision surfaces as a
// conflict too.
func (s *OrderService) createWithRetry(ctx context.Context, order *models.Order, seedNote string, actor models.Actor, referenceGenerated bool) error {
	err := s.orderRepo.Create(ctx, order, seedNote, actor)
	if errors.Is(err, repositories.ErrDuplicateReference) {
		if !referenceGenerated {
			return &apperr.ConflictError{Entity: "order", Key: "reference " + order.Reference}
		}
		s.logger.Warn("Order reference collision, regenerating", "reference", order.Reference)
		order.Reference = GenerateReference(time.Now())
		err = s.orderRepo.Create(ctx, order, seedNote, actor)
		if errors.Is(err, repositories.ErrDuplicateReference) {
			return &apperr.ConflictError{Entity: "order", Key: "reference " + order.Reference}
		}
	}
	return err
}

func requireFields(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return apperr.MissingField(f[0])
		}
	}
	return nil
}

// Checkout prices the cart and creates the order atomically with its seed
// event and audit entry. The caller clears the cart after success.
func (s *OrderService) Checkout(ctx context.Context, actor models.Actor, input CheckoutInput, cart *models.Cart) (*models.Order, error) {
	if err := requireFields(
		[2]string{"name", input.Name},
		[2]string{"phone", input.Phone},
		[2]string{"delivery_area", input.DeliveryArea},
	); err != nil {
		return nil, err
	}

	priced, err := s.cart.Price(ctx, cart)
	if err != nil {
		return nil, err
	}
	if priced.IsEmpty() {
		return nil, apperr.MissingField("items")
	}

	fee := s.cart.DeliveryFee(priced.Subtotal)
	order := &models.Order{
		Reference:     GenerateReference(time.Now()),
		CustomerName:  strings.TrimSpace(input.Name),
		Phone:         strings.TrimSpace(input.Phone),
		DeliveryArea:  strings.TrimSpace(input.DeliveryArea),
		ItemsSummary:  priced.Summary(),
		TotalAmount:   priced.Subtotal.Add(fee).Round(2),
		Status:        models.StatusNew,
		PaymentMethod: "Cash",
		PaymentStatus: "Pending",
		SourceChannel: "Website-Cart",
		Notes:         strings.TrimSpace(input.Notes),
		CustomerID:    input.CustomerID,
	}

	if err := s.createWithRetry(ctx, order, "Cart checkout", actor, true); err != nil {
		return nil, err
	}
	s.logger.Info("Checkout completed", "order_id", order.ID, "reference", order.Reference, "total", order.TotalAmount.String())
	return order, nil
}

// SubmitRequest creates an order from the manual free-text path. No cart is
// involved and the total stays zero until an operator prices it.
func (s *OrderService) SubmitRequest(ctx context.Context, actor models.Actor, input RequestInput) (*models.Order, error) {
	if err := requireFields(
		[2]string{"name", input.Name},
		[2]string{"phone", input.Phone},
		[2]string{"delivery_area", input.DeliveryArea},
		[2]string{"items", input.Items},
	); err != nil {
		return nil, err
	}

	order := &models.Order{
		Reference:     GenerateReference(time.Now()),
		CustomerName:  strings.TrimSpace(input.Name),
		Phone:         strings.TrimSpace(input.Phone),
		DeliveryArea:  strings.TrimSpace(input.DeliveryArea),
		ItemsSummary:  strings.TrimSpace(input.Items),
		TotalAmount:   decimal.Zero,
		Status:        models.StatusNew,
		PaymentMethod: "Cash",
		PaymentStatus: "Pending",
		SourceChannel: "Website",
		Notes:         strings.TrimSpace(input.Notes),
		CustomerID:    input.CustomerID,
	}

	if err := s.createWithRetry(ctx, order, "Order requested", actor, true); err != nil {
		return nil, err
	}
	s.logger.Info("Order request submitted", "order_id", order.ID, "reference", order.Reference)
	return order, nil
}

// AdminCreate lets an operator key in a full order. A blank reference is
// generated; a blank status defaults to New.
func (s *OrderService) AdminCreate(ctx context.Context, actor models.Actor, input AdminOrderInput) (*models.Order, error) {
	if err := requireFields(
		[2]string{"customer_name", input.CustomerName},
		[2]string{"phone", input.Phone},
		[2]string{"delivery_area", input.DeliveryArea},
		[2]string{"items", input.Items},
	); err != nil {
		return nil, err
	}

	status := models.StatusNew
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, ok := models.ParseOrderStatus(raw)
		if !ok {
			return nil, &apperr.ValidationError{Field: "status", Reason: "unknown status " + raw}
		}
		status = parsed
	}

	reference := strings.TrimSpace(input.Reference)
	referenceGenerated := reference == ""
	if referenceGenerated {
		reference = GenerateReference(time.Now())
	}

	order := &models.Order{
		Reference:     reference,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		Phone:         strings.TrimSpace(input.Phone),
		DeliveryArea:  strings.TrimSpace(input.DeliveryArea),
		ItemsSummary:  strings.TrimSpace(input.Items),
		TotalAmount:   input.TotalAmount,
		Status:        status,
		PaymentMethod: defaultString(input.PaymentMethod, "Cash"),
		PaymentStatus: defaultString(input.PaymentStatus, "Unpaid"),
		SourceChannel: defaultString(input.SourceChannel, "Admin"),
		LegalNotes:    strings.TrimSpace(input.LegalNotes),
		Notes:         strings.TrimSpace(input.Notes),
	}

	if err := s.createWithRetry(ctx, order, "Order created", actor, referenceGenerated); err != nil {
		return nil, err
	}
	s.logger.Info("Order created by operator", "order_id", order.ID, "reference", order.Reference)
	return order, nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

// Transition moves an order along the status graph. No-op moves and moves the
// graph forbids are rejected; every accepted move appends one event and one
// audit entry and bumps updated_at.
func (s *OrderService) Transition(ctx context.Context, actor models.Actor, orderID int64, rawStatus, note string) (*models.Order, error) {
	rawStatus = strings.TrimSpace(rawStatus)
	if rawStatus == "" {
		return nil, apperr.MissingField("status")
	}
	newStatus, ok := models.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, &apperr.ValidationError{Field: "status", Reason: "unknown status " + rawStatus}
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == newStatus {
		return nil, &apperr.NoChangeError{Status: string(newStatus)}
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, &apperr.InvalidTransitionError{From: string(order.Status), To: string(newStatus)}
	}

	if strings.TrimSpace(note) == "" {
		note = fmt.Sprintf("Status changed from %s", order.Status)
	}
	auditDetails := fmt.Sprintf("Status changed from %s to %s", order.Status, newStatus)
	if err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus, note, actor, auditDetails); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, orderID)
}

// Accept moves a fresh order into preparation.
func (s *OrderService) Accept(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	return s.Transition(ctx, actor, orderID, string(models.StatusPreparing), "Accepted by admin")
}

// Reject cancels a fresh order.
func (s *OrderService) Reject(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	return s.Transition(ctx, actor, orderID, string(models.StatusCancelled), "Rejected by admin")
}

// AdminEdit replaces an order's mutable fields. A status change is detected
// by diff, checked against the transition graph, and logged as an event;
// edits that leave the status alone only produce the audit entry.
func (s *OrderService) AdminEdit(ctx context.Context, actor models.Actor, orderID int64, input AdminOrderInput) (*models.Order, error) {
	if err := requireFields(
		[2]string{"customer_name", input.CustomerName},
		[2]string{"phone", input.Phone},
		[2]string{"delivery_area", input.DeliveryArea},
		[2]string{"items", input.Items},
	); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	newStatus := order.Status
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, ok := models.ParseOrderStatus(raw)
		if !ok {
			return nil, &apperr.ValidationError{Field: "status", Reason: "unknown status " + raw}
		}
		newStatus = parsed
	}
	statusChanged := newStatus != order.Status
	if statusChanged && !order.Status.CanTransitionTo(newStatus) {
		return nil, &apperr.InvalidTransitionError{From: string(order.Status), To: string(newStatus)}
	}
	eventNote := fmt.Sprintf("Status changed from %s", order.Status)

	if reference := strings.TrimSpace(input.Reference); reference != "" {
		order.Reference = reference
	}
	order.CustomerName = strings.TrimSpace(input.CustomerName)
	order.Phone = strings.TrimSpace(input.Phone)
	order.DeliveryArea = strings.TrimSpace(input.DeliveryArea)
	order.ItemsSummary = strings.TrimSpace(input.Items)
	order.TotalAmount = input.TotalAmount
	order.Status = newStatus
	order.PaymentMethod = defaultString(input.PaymentMethod, order.PaymentMethod)
	order.PaymentStatus = defaultString(input.PaymentStatus, order.PaymentStatus)
	order.SourceChannel = defaultString(input.SourceChannel, order.SourceChannel)
	order.LegalNotes = strings.TrimSpace(input.LegalNotes)
	order.Notes = strings.TrimSpace(input.Notes)

	if err := s.orderRepo.Replace(ctx, order, statusChanged, eventNote, actor); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes one order; its event history stays behind.
func (s *OrderService) Delete(ctx context.Context, actor models.Actor, orderID int64) error {
	return s.orderRepo.Delete(ctx, orderID, actor)
}

// ClearAll wipes every order and returns the removed count.
func (s *OrderService) ClearAll(ctx context.Context, actor models.Actor) (int, error) {
	return s.orderRepo.DeleteAll(ctx, actor)
}

// Get returns an order with its history. Only privileged actors and the
// owning customer may read it.
func (s *OrderService) Get(ctx context.Context, actor models.Actor, orderID int64) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canReadOrder(actor, order) {
		return nil, &apperr.ForbiddenError{Reason: "order belongs to another customer"}
	}
	events, err := s.eventRepo.ListForOrder(ctx, order.ID, true)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: order, Events: events}, nil
}

func canReadOrder(actor models.Actor, order *models.Order) bool {
	switch actor.Type {
	case models.ActorAdmin, models.ActorSystem:
		return true
	case models.ActorCustomer:
		return actor.ID != nil && order.CustomerID != nil && *actor.ID == *order.CustomerID
	}
	return false
}

// Track is the public lookup: reference (or numeric id) plus the phone on
// the order.
func (s *OrderService) Track(ctx context.Context, reference, phone string) (*OrderDetail, error) {
	reference = strings.TrimSpace(reference)
	phone = strings.TrimSpace(phone)
	if reference == "" {
		return nil, apperr.MissingField("reference")
	}
	if phone == "" {
		return nil, apperr.MissingField("phone")
	}

	order, err := s.orderRepo.GetByReferenceAndPhone(ctx, reference, phone)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListForOrder(ctx, order.ID, true)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: order, Events: events}, nil
}

func (s *OrderService) attachEvents(ctx context.Context, orders []*models.Order) ([]*OrderDetail, error) {
	ids := make([]int64, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	byOrder, err := s.eventRepo.ListForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]*OrderDetail, len(orders))
	for i, order := range orders {
		details[i] = &OrderDetail{Order: order, Events: byOrder[order.ID]}
	}
	return details, nil
}

// ListAll returns every order with history, most recent first.
func (s *OrderService) ListAll(ctx context.Context) ([]*OrderDetail, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachEvents(ctx, orders)
}

// ListForCustomer returns one customer's orders with history.
func (s *OrderService) ListForCustomer(ctx context.Context, customerID int64) ([]*OrderDetail, error) {
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.attachEvents(ctx, orders)
}

var _ OrderServiceInterface = (*OrderService)(nil)
