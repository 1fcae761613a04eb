package checkout

import (
	"context"
	"time"

	"storefront/internal/models"
)

// DefaultPollInterval matches the storefront's 3 second settlement poll.
const DefaultPollInterval = 3 * time.Second

// PollSettlement polls the status checker until the PIX payment settles, the
// payment window lapses, or ctx is cancelled (component teardown). The window
// is anchored on the order's server-side creation time. The poll is a UX
// convenience; the webhook remains the system of record.
func (m *Machine) PollSettlement(ctx context.Context, interval time.Duration) error {
	if m.state == StateSettled {
		return nil
	}
	if m.state != StateAwaitingPayment || m.step != StepConfirmation {
		return ErrNotAwaiting
	}
	if m.Method != models.PaymentMethodPix {
		return ErrWrongMethodForPay
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	deadline := m.Deadline()

	check := func() (bool, error) {
		status, err := m.checker.ConfirmPayment(ctx, m.orderID)
		if err != nil {
			// transient poll failures are not terminal, keep waiting
			return false, nil
		}
		if status == models.OrderStatusPaid {
			m.state = StateSettled
			return true, nil
		}
		return false, nil
	}

	if done, err := check(); done || err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done, err := check(); done || err != nil {
				return err
			}
			if !m.now().Before(deadline) {
				m.state = StateExpired
				return ErrWindowExpired
			}
		}
	}
}
