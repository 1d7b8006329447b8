package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/service"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

type OrderHandler struct {
	orderService service.OrderServiceInterface
	logger       *logger.Logger
}

func NewOrderHandler(orderService service.OrderServiceInterface, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       log.WithComponent("order_handler"),
	}
}

func (h *OrderHandler) parseRequestBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func orderIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

type cartLinePayload struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type checkoutRequest struct {
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	DeliveryArea string            `json:"delivery_area"`
	Notes        string            `json:"notes"`
	Cart         []cartLinePayload `json:"cart"`
}

// Checkout handles POST /api/orders/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid checkout body", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]models.CartLine, len(req.Cart))
	for i, line := range req.Cart {
		lines[i] = models.CartLine{ItemID: line.ItemID, Quantity: line.Quantity}
	}
	actor := actorFromRequest(r)

	order, err := h.orderService.Checkout(r.Context(), actor, service.CheckoutInput{
		Name:         req.Name,
		Phone:        req.Phone,
		DeliveryArea: req.DeliveryArea,
		Notes:        req.Notes,
		CustomerID:   actor.ID,
	}, models.NewCart(lines))
	if err != nil {
		h.logger.Warn("Checkout failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, order)
}

type orderRequestPayload struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	DeliveryArea string `json:"delivery_area"`
	Items        string `json:"items"`
	Notes        string `json:"notes"`
}

// SubmitRequest handles POST /api/orders/request.
func (h *OrderHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req orderRequestPayload
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid order request body", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	actor := actorFromRequest(r)

	order, err := h.orderService.SubmitRequest(r.Context(), actor, service.RequestInput{
		Name:         req.Name,
		Phone:        req.Phone,
		DeliveryArea: req.DeliveryArea,
		Items:        req.Items,
		Notes:        req.Notes,
		CustomerID:   actor.ID,
	})
	if err != nil {
		h.logger.Warn("Order request failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, order)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateStatus handles POST /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDFromURL(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req statusUpdateRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid status update body", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.Transition(r.Context(), actorFromRequest(r), orderID, req.Status, req.Note)
	if err != nil {
		h.logger.Warn("Status update failed", "order_id", orderID, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"order_id":   order.ID,
		"new_status": order.Status,
	})
}

// ListOrders handles GET /api/orders. Privileged only.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(actorFromRequest(r)) {
		writeErrorResponse(w, http.StatusForbidden, "admin access required")
		return
	}
	details, err := h.orderService.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, details)
}

// GetOrder handles GET /api/orders/{id}. Access is enforced by the service:
// privileged actors or the owning customer.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDFromURL(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid order id")
		return
	}
	detail, err := h.orderService.Get(r.Context(), actorFromRequest(r), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, detail)
}

// Track handles GET /api/track?reference=...&phone=... without any session.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orderService.Track(r.Context(),
		r.URL.Query().Get("reference"), r.URL.Query().Get("phone"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, detail)
}

// ListCustomerOrders handles GET /api/customer/orders for the calling
// customer.
func (h *OrderHandler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if actor.Type != models.ActorCustomer || actor.ID == nil {
		writeErrorResponse(w, http.StatusForbidden, "customer session required")
		return
	}
	details, err := h.orderService.ListForCustomer(r.Context(), *actor.ID)
	if err != nil {
		h.logger.Error("Failed to list customer orders", "customer_id", *actor.ID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, details)
}

type adminOrderRequest struct {
	CustomerName  string          `json:"customer_name"`
	Phone         string          `json:"phone"`
	DeliveryArea  string          `json:"delivery_area"`
	Items         string          `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	SourceChannel string          `json:"source_channel"`
	LegalNotes    string          `json:"legal_notes"`
	Notes         string          `json:"notes"`
}

func (req *adminOrderRequest) toInput() service.AdminOrderInput {
	return service.AdminOrderInput{
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		DeliveryArea:  req.DeliveryArea,
		Items:         req.Items,
		TotalAmount:   req.TotalAmount,
		Status:        req.Status,
		Reference:     req.Reference,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		SourceChannel: req.SourceChannel,
		LegalNotes:    req.LegalNotes,
		Notes:         req.Notes,
	}
}

func (h *OrderHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor := actorFromRequest(r)
	if actor.Type != models.ActorAdmin {
		writeErrorResponse(w, http.StatusForbidden, "admin access required")
		return actor, false
	}
	return actor, true
}

// AdminCreate handles POST /api/admin/orders.
func (h *OrderHandler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req adminOrderRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid admin create body", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.orderService.AdminCreate(r.Context(), actor, req.toInput())
	if err != nil {
		h.logger.Warn("Admin order create failed", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, order)
}

// AdminEdit handles PUT /api/admin/orders/{id}.
func (h *OrderHandler) AdminEdit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	orderID, err := orderIDFromURL(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req adminOrderRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid admin edit body", "order_id", orderID, "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.orderService.AdminEdit(r.Context(), actor, orderID, req.toInput())
	if err != nil {
		h.logger.Warn("Admin order edit failed", "order_id", orderID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, order)
}

// Accept handles POST /api/admin/orders/{id}/accept.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, h.orderService.Accept)
}

// Reject handles POST /api/admin/orders/{id}/reject.
func (h *OrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, h.orderService.Reject)
}

func (h *OrderHandler) adminTransition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	orderID, err := orderIDFromURL(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := op(r.Context(), actor, orderID)
	if err != nil {
		h.logger.Warn("Admin transition failed", "order_id", orderID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"order_id":   order.ID,
		"new_status": order.Status,
	})
}

// AdminDelete handles DELETE /api/admin/orders/{id}.
func (h *OrderHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	orderID, err := orderIDFromURL(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid order id")
		return
	}
	if err := h.orderService.Delete(r.Context(), actor, orderID); err != nil {
		h.logger.Warn("Admin order delete failed", "order_id", orderID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ok", "order_id": orderID})
}

// ClearAll handles POST /api/admin/orders/clear.
func (h *OrderHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	count, err := h.orderService.ClearAll(r.Context(), actor)
	if err != nil {
		h.logger.Error("Failed to clear orders", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ok", "cleared": count})
}
