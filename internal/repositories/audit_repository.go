package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/database"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// AuditRepositoryInterface is the system-wide, append-only ledger of
// privileged actions. No update or delete is exposed, by construction.
type AuditRepositoryInterface interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
	ExportAll(ctx context.Context) ([]*models.AuditLogEntry, error)
}

type AuditRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewAuditRepository(log *logger.Logger, db *database.DB) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: log.WithComponent("audit_repository"),
	}
}

// appendAuditTx writes one audit entry inside the caller's transaction.
func appendAuditTx(ctx context.Context, tx *sql.Tx, actor models.Actor, action models.AuditAction, entityType string, entityID int64, details string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (actor_type, actor_id, action, entity_type, entity_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(actor.Type), actor.ID, string(action), entityType, entityID, details, at,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// Append writes a standalone audit entry outside any order transaction.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	now := time.Now().UTC()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return appendAuditTx(ctx, tx,
			models.Actor{Type: entry.ActorType, ID: entry.ActorID},
			entry.Action, entry.EntityType, entry.EntityID, entry.Details, now)
	})
	if err != nil {
		return wrapStorageErr(err)
	}
	entry.CreatedAt = now
	return nil
}

// ExportAll returns the full audit history, most recent first.
func (r *AuditRepository) ExportAll(ctx context.Context) ([]*models.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, actor_type, actor_id, action, entity_type, entity_id, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to export audit log: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		err := rows.Scan(
			&entry.ID, &entry.ActorType, &entry.ActorID, &entry.Action,
			&entry.EntityType, &entry.EntityID, &entry.Details, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

var _ AuditRepositoryInterface = (*AuditRepository)(nil)
