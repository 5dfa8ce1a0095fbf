package notifier

import (
	"context"
	"fmt"
)

// UnconfiguredSMS stands in when no SMS gateway is wired. Every send
// fails and surfaces as a per-recipient delivery error, which keeps the
// partial-failure semantics intact instead of silently dropping sends.
type UnconfiguredSMS struct{}

func (UnconfiguredSMS) Send(_ context.Context, phone, _ string) error {
	return fmt.Errorf("sms gateway not configured, cannot notify %s", phone)
}
