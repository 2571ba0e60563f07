package ports

import (
	"context"

	"github.com/sip-kpbj/api/internal/core/domain"
)

// EventService processes a single audit event.
type EventService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}

// EventSink accepts audit events without blocking the caller.
type EventSink interface {
	Enqueue(event domain.AuthEvent)
}
