package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/repositories"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

const exportTimeFormat = "2006-01-02 15:04:05"

type ExportServiceInterface interface {
	OrdersCSV(ctx context.Context, w io.Writer) error
	AuditCSV(ctx context.Context, w io.Writer) error
}

type ExportService struct {
	orderRepo repositories.OrderRepositoryInterface
	auditRepo repositories.AuditRepositoryInterface
	logger    *logger.Logger
}

func NewExportService(log *logger.Logger, orderRepo repositories.OrderRepositoryInterface, auditRepo repositories.AuditRepositoryInterface) *ExportService {
	return &ExportService{
		orderRepo: orderRepo,
		auditRepo: auditRepo,
		logger:    log.WithComponent("export_service"),
	}
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// OrdersCSV streams every order as CSV, most recent first.
func (s *ExportService) OrdersCSV(ctx context.Context, w io.Writer) error {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{
		"id", "order_reference", "customer_name", "phone", "delivery_area",
		"items", "total_amount", "status", "payment_method", "payment_status",
		"source_channel", "legal_notes", "notes", "customer_id",
		"created_at", "updated_at",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write orders header: %w", err)
	}

	for _, order := range orders {
		row := []string{
			strconv.FormatInt(order.ID, 10),
			order.Reference,
			order.CustomerName,
			order.Phone,
			order.DeliveryArea,
			order.ItemsSummary,
			order.TotalAmount.StringFixed(2),
			string(order.Status),
			order.PaymentMethod,
			order.PaymentStatus,
			order.SourceChannel,
			order.LegalNotes,
			order.Notes,
			optionalID(order.CustomerID),
			order.CreatedAt.Format(exportTimeFormat),
			order.UpdatedAt.Format(exportTimeFormat),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write order row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush orders export: %w", err)
	}
	s.logger.Info("Orders exported", "count", len(orders))
	return nil
}

// AuditCSV streams the full audit history as CSV, most recent first.
func (s *ExportService) AuditCSV(ctx context.Context, w io.Writer) error {
	entries, err := s.auditRepo.ExportAll(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{
		"id", "actor_type", "actor_id", "action", "entity_type", "entity_id",
		"details", "created_at",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write audit header: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			strconv.FormatInt(entry.ID, 10),
			string(entry.ActorType),
			optionalID(entry.ActorID),
			string(entry.Action),
			entry.EntityType,
			strconv.FormatInt(entry.EntityID, 10),
			entry.Details,
			entry.CreatedAt.Format(exportTimeFormat),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write audit row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush audit export: %w", err)
	}
	s.logger.Info("Audit log exported", "count", len(entries))
	return nil
}

var _ ExportServiceInterface = (*ExportService)(nil)
