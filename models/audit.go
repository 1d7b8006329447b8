package models

import "time"

// AuditAction is the kind of privileged mutation being recorded.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditLogEntry is one row of the system-wide, append-only audit ledger.
// Entries are never updated or removed, and survive deletion of the entity
// they describe.
type AuditLogEntry struct {
	ID         int64       `json:"id" db:"id"`
	ActorType  ActorType   `json:"actor_type" db:"actor_type"`
	ActorID    *int64      `json:"actor_id" db:"actor_id"`
	Action     AuditAction `json:"action" db:"action"`
	EntityType string      `json:"entity_type" db:"entity_type"`
	EntityID   int64       `json:"entity_id" db:"entity_id"`
	Details    string      `json:"details" db:"details"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}
