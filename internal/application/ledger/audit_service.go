package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
)

// AuditService provides read access to the audit trail
type AuditService struct {
	auditRepo ledger.AuditRecordRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo ledger.AuditRecordRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// AuditRecordResponse represents one audit trail line in API responses
type AuditRecordResponse struct {
	ID            uuid.UUID `json:"id"`
	EventType     string    `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	Detail        string    `json:"detail"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// AuditListFilter defines filtering options for audit trail queries
type AuditListFilter struct {
	EventType   string     `form:"event_type"`
	AggregateID *uuid.UUID `form:"aggregate_id"`
	FromDate    *time.Time `form:"from_date"`
	ToDate      *time.Time `form:"to_date"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// ListRecords lists audit records newest first
func (s *AuditService) ListRecords(ctx context.Context, companyID uuid.UUID, filter AuditListFilter) ([]AuditRecordResponse, int64, error) {
	domainFilter := ledger.AuditRecordFilter{
		AggregateID: filter.AggregateID,
		FromDate:    filter.FromDate,
		ToDate:      filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.EventType != "" {
		domainFilter.EventType = &filter.EventType
	}

	records, err := s.auditRepo.FindAll(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.auditRepo.Count(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AuditRecordResponse, len(records))
	for i, r := range records {
		responses[i] = AuditRecordResponse{
			ID:            r.ID,
			EventType:     r.EventType,
			AggregateType: r.AggregateType,
			AggregateID:   r.AggregateID,
			Detail:        r.Detail,
			OccurredAt:    r.OccurredAt,
		}
	}
	return responses, total, nil
}
