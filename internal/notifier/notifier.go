package notifier

import "context"

// Notifier delivers alert messages to an external channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
	Name() string
}

// Noop is used when no notification channel is configured.
type Noop struct{}

func (Noop) Send(context.Context, string) error { return nil }

func (Noop) Name() string { return "noop" }
