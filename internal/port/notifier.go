package port

import (
	"context"

	"palika/internal/domain"
)

// Notifier delivers fire-and-forget events to the notification
// collaborator. Callers log and swallow errors; delivery failure never
// rolls back the originating operation.
type Notifier interface {
	Publish(ctx context.Context, event domain.Event) error
}
