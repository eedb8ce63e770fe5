package noop

import (
	"context"

	"go.uber.org/zap"

	"palika/internal/domain"
	"palika/internal/port"
)

type noopNotifier struct {
	log *zap.Logger
}

// NewNoopNotifier creates a Notifier that only logs events. It is the
// default when no broker or mail provider is configured.
func NewNoopNotifier(log *zap.Logger) port.Notifier {
	return &noopNotifier{log: log}
}

func (n *noopNotifier) Publish(_ context.Context, event domain.Event) error {
	n.log.Info("event",
		zap.String("kind", string(event.Kind)),
		zap.String("connection_id", event.ConnectionID.String()),
		zap.Any("data", event.Data))
	return nil
}
