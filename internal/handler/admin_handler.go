package handler

import (
	"net/http"
	"strconv"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/service"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// AdminHandler serves the operator dashboard and data exports.
type AdminHandler struct {
	analyticsService service.AnalyticsServiceInterface
	exportService    service.ExportServiceInterface
	logger           *logger.Logger
}

func NewAdminHandler(analyticsService service.AnalyticsServiceInterface, exportService service.ExportServiceInterface, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		analyticsService: analyticsService,
		exportService:    exportService,
		logger:           log.WithComponent("admin_handler"),
	}
}

const (
	defaultTrendDays = 7
	maxTrendDays     = 365
)

// Dashboard handles GET /api/admin/dashboard: KPI snapshot, trend series, and
// catalog category mix in one response.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !isPrivileged(actorFromRequest(r)) {
		writeErrorResponse(w, http.StatusForbidden, "admin access required")
		return
	}

	days := defaultTrendDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= maxTrendDays {
			days = parsed
		}
	}

	snapshot, err := h.analyticsService.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute dashboard snapshot", "error", err)
		writeServiceError(w, err)
		return
	}
	revenueTrend, err := h.analyticsService.Trend(r.Context(), days, service.MetricRevenue)
	if err != nil {
		h.logger.Error("Failed to compute revenue trend", "error", err)
		writeServiceError(w, err)
		return
	}
	orderTrend, err := h.analyticsService.Trend(r.Context(), days, service.MetricOrders)
	if err != nil {
		h.logger.Error("Failed to compute order trend", "error", err)
		writeServiceError(w, err)
		return
	}
	categoryMix, err := h.analyticsService.CategoryMix(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute category mix", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"kpis":          snapshot,
		"revenue_trend": revenueTrend,
		"order_trend":   orderTrend,
		"category_mix":  categoryMix,
	})
}

func (h *AdminHandler) serveCSV(w http.ResponseWriter, r *http.Request, filename string, export func(http.ResponseWriter) error) {
	if !isPrivileged(actorFromRequest(r)) {
		writeErrorResponse(w, http.StatusForbidden, "admin access required")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export(w); err != nil {
		// Headers may already be on the wire; log and abort the body.
		h.logger.Error("CSV export failed", "filename", filename, "error", err)
	}
}

// ExportOrders handles GET /api/admin/orders/export.csv.
func (h *AdminHandler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, "orders.csv", func(w http.ResponseWriter) error {
		return h.exportService.OrdersCSV(r.Context(), w)
	})
}

// ExportAudit handles GET /api/admin/audit/export.csv.
func (h *AdminHandler) ExportAudit(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, "audit_logs.csv", func(w http.ResponseWriter) error {
		return h.exportService.AuditCSV(r.Context(), w)
	})
}
