package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event describes one back-office action for the audit trail.
type Event struct {
	ID       uuid.UUID              `json:"id"`
	Actor    int64                  `json:"actor"`
	Action   string                 `json:"action"`
	Entity   string                 `json:"entity"`
	EntityID int64                  `json:"entity_id,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
	LoggedAt time.Time              `json:"logged_at"`
}

// Sink receives audit events. Implementations are fire-and-forget from the
// service's point of view: a Log failure is reported to the caller but the
// caller never lets it affect the operation being audited.
type Sink interface {
	Log(ctx context.Context, event Event) error
	Close() error
}

// NopSink drops all events. Used when no audit transport is configured.
type NopSink struct{}

func (NopSink) Log(ctx context.Context, event Event) error {
	return nil
}

func (NopSink) Close() error {
	return nil
}
