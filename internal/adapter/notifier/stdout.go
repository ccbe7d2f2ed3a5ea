package notifier

import (
	"context"
	"fmt"
)

// StdoutSender is an implementation of Sender that prints to standard
// output, used in local development instead of the real gateway.
type StdoutSender struct{}

// NewStdoutSender creates a new StdoutSender.
func NewStdoutSender() *StdoutSender {
	return &StdoutSender{}
}

// Send prints the message to stdout.
func (s *StdoutSender) Send(ctx context.Context, destination, message string) error {
	fmt.Printf("--- SMS ---\nTo: %s\n%s\n-----------\n", destination, message)
	return nil
}
