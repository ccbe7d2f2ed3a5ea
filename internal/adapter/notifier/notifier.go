package notifier

import "context"

// Sender is the single-call SMS contract. Failures are reported to the
// caller; implementations never retry.
type Sender interface {
	Send(ctx context.Context, destination, message string) error
}
