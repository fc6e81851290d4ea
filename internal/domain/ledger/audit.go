package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/shared"
)

// AuditRecord is one immutable line of the audit trail. Records are written
// by the audit recorder when domain events fire and are never updated.
type AuditRecord struct {
	ID            uuid.UUID `json:"id"`
	CompanyID     uuid.UUID `json:"company_id"`
	EventType     string    `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	Detail        string    `json:"detail"` // JSON payload of the source event
	OccurredAt    time.Time `json:"occurred_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the table name for GORM
func (AuditRecord) TableName() string {
	return "audit_records"
}

// NewAuditRecord builds an audit record from a domain event payload
func NewAuditRecord(event shared.DomainEvent, detail string) *AuditRecord {
	now := time.Now()
	return &AuditRecord{
		ID:            uuid.New(),
		CompanyID:     event.CompanyID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		Detail:        detail,
		OccurredAt:    event.OccurredAt(),
		CreatedAt:     now,
	}
}

// AuditRecordFilter defines filtering options for audit trail queries
type AuditRecordFilter struct {
	shared.Filter
	EventType   *string
	AggregateID *uuid.UUID
	FromDate    *time.Time
	ToDate      *time.Time
}

// AuditRecordRepository defines the persistence interface of the audit trail
type AuditRecordRepository interface {
	// Save persists an audit record
	Save(ctx context.Context, record *AuditRecord) error

	// FindAll finds audit records for a company with filtering, newest first
	FindAll(ctx context.Context, companyID uuid.UUID, filter AuditRecordFilter) ([]AuditRecord, error)

	// Count counts audit records for a company with filtering
	Count(ctx context.Context, companyID uuid.UUID, filter AuditRecordFilter) (int64, error)
}
