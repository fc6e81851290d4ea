package ledger

import (
	"context"
	"encoding/json"

	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditRecorder persists an audit record for every bookkeeping event. It is
// deliberately non-fatal: a failed audit write is logged and swallowed so
// the originating operation is never rolled back by its audit trail.
type AuditRecorder struct {
	auditRepo ledger.AuditRecordRepository
	logger    *zap.Logger
}

// NewAuditRecorder creates a new AuditRecorder
func NewAuditRecorder(auditRepo ledger.AuditRecordRepository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditRecorder) EventTypes() []string {
	return []string{
		ledger.EventTypeAccountCreated,
		ledger.EventTypeAccountDeactivated,
		ledger.EventTypeEntryCreated,
		ledger.EventTypeEntryPosted,
		ledger.EventTypeEntryUnposted,
		ledger.EventTypeEntryReversed,
		ledger.EventTypePeriodClosed,
		ledger.EventTypePeriodReopened,
		ledger.EventTypeYearClosed,
	}
}

// Handle writes one audit record for the event
func (h *AuditRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	detail, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to serialize event for audit trail",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err),
		)
		return nil
	}

	record := ledger.NewAuditRecord(event, string(detail))
	if err := h.auditRepo.Save(ctx, record); err != nil {
		h.logger.Error("failed to persist audit record",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.String("company_id", event.CompanyID().String()),
			zap.Error(err),
		)
		return nil
	}

	h.logger.Debug("audit record written",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	return nil
}

var _ shared.EventHandler = (*AuditRecorder)(nil)
