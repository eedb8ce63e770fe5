// Package notify assembles the notifier stack from configuration.
package notify

import (
	"context"
	"errors"
	"io"

	"palika/internal/domain"
	"palika/internal/port"
)

type composite struct {
	targets []port.Notifier
}

// NewComposite fans each event out to every target. All targets are
// attempted even when earlier ones fail; the errors are joined.
func NewComposite(targets ...port.Notifier) port.Notifier {
	return &composite{targets: targets}
}

func (c *composite) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, t := range c.targets {
		if err := t.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every target that holds a connection.
func (c *composite) Close() error {
	var errs []error
	for _, t := range c.targets {
		if closer, ok := t.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
