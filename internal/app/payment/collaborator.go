package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnavailable reports that no payment gateway can be reached in this process.
// Retrying does not help until the process is restarted with a working gateway.
var ErrUnavailable = errors.New("payment: gateway unavailable")

// FailureError is a payment the gateway declined or could not complete.
type FailureError struct {
	Reason string
}

func (e *FailureError) Error() string {
	return "payment: failed: " + e.Reason
}

// Charge describes what the user is asked to pay.
type Charge struct {

	// Amount is in the smallest currency unit, e.g. 100 paise for 1 INR.
	Amount int64 `json:"amount"`

	Currency    string `json:"currency"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultCharge is one hour of access for 1 INR.
var DefaultCharge = Charge{
	Amount:      100,
	Currency:    "INR",
	Name:        "Anonymous Chat",
	Description: "1 Hour Access",
}

// Receipt identifies a completed payment.
type Receipt struct {
	ID string `json:"id"`
}

// Collaborator charges the user.
// Submit returns ErrUnavailable when no gateway is present and a *FailureError when the
// payment did not go through.
type Collaborator interface {
	Submit(ctx context.Context, charge Charge) (Receipt, error)
}

// Notice returns the user-facing text for a Submit error.
func Notice(err error) string {
	var failure *FailureError

	switch {
	case errors.Is(err, ErrUnavailable):
		return "Payment system is not available. Please try again later."
	case errors.As(err, &failure):
		return fmt.Sprintf("Payment failed: %s", failure.Reason)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Payment timed out. Please try again."
	default:
		return "Payment could not be completed. Please try again."
	}
}

// Simulated completes every payment after Delay, standing in for a real gateway.
type Simulated struct {
	Delay time.Duration

	// Decide, when set, can decline a charge by returning an error.
	Decide func(Charge) error
}

// Submit implements Collaborator.
func (s Simulated) Submit(ctx context.Context, charge Charge) (Receipt, error) {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case <-timer.C:
	}

	if charge.Amount <= 0 {
		return Receipt{}, &FailureError{Reason: "invalid amount"}
	}

	if s.Decide != nil {
		if err := s.Decide(charge); err != nil {
			return Receipt{}, err
		}
	}

	return Receipt{ID: "sim_" + uuid.NewString()}, nil
}

// Disabled is the collaborator of a process without any gateway.
type Disabled struct{}

// Submit implements Collaborator.
func (Disabled) Submit(context.Context, Charge) (Receipt, error) {
	return Receipt{}, ErrUnavailable
}
