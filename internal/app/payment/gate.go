/*
Package payment implements the payment gate that unlocks paid chat access.

Gate is the modal's state machine:

	Closed -> Idle -> Processing -> Succeeded -> Closed
	            ^          |
	            +- failure +

Submitting is only possible from Idle and cancelling only from Idle, so a payment that may
still complete is never abandoned. The charge itself is delegated to a Collaborator.
*/
package payment

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition rejects an action the gate's current phase does not allow.
var ErrInvalidTransition = errors.New("payment: action not allowed in current phase")

// Phase is the state of the gate.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseIdle
	PhaseProcessing
	PhaseSucceeded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseProcessing:
		return "processing"
	case PhaseSucceeded:
		return "succeeded"
	default:
		return "closed"
	}
}

// MarshalText renders the phase name in JSON snapshots.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Gate is the payment modal's state. It is not safe for concurrent use.
type Gate struct {
	phase   Phase
	notice  string
	receipt string
}

// Phase returns the current phase.
func (g *Gate) Phase() Phase {
	return g.phase
}

// IsOpen reports whether the modal is visible.
func (g *Gate) IsOpen() bool {
	return g.phase != PhaseClosed
}

// Notice returns the message of the last failed attempt, if any.
func (g *Gate) Notice() string {
	return g.notice
}

// Receipt returns the receipt id of the successful payment while in Succeeded.
func (g *Gate) Receipt() string {
	return g.receipt
}

// Open shows the modal. Opening an open gate changes nothing.
func (g *Gate) Open() {
	if g.phase != PhaseClosed {
		return
	}

	g.phase = PhaseIdle
	g.notice = ""
}

// Submit starts a payment attempt.
func (g *Gate) Submit() error {
	if g.phase != PhaseIdle {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, g.phase)
	}

	g.phase = PhaseProcessing
	g.notice = ""
	return nil
}

// Succeed records the collaborator's success.
func (g *Gate) Succeed(receiptID string) error {
	if g.phase != PhaseProcessing {
		return fmt.Errorf("%w: succeed from %s", ErrInvalidTransition, g.phase)
	}

	g.phase = PhaseSucceeded
	g.receipt = receiptID
	return nil
}

// Fail records a failed or unavailable collaborator and makes the gate retryable.
func (g *Gate) Fail(notice string) error {
	if g.phase != PhaseProcessing {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, g.phase)
	}

	g.phase = PhaseIdle
	g.notice = notice
	return nil
}

// Dismiss closes the gate after the success message has been shown.
func (g *Gate) Dismiss() error {
	if g.phase != PhaseSucceeded {
		return fmt.Errorf("%w: dismiss from %s", ErrInvalidTransition, g.phase)
	}

	g.reset()
	return nil
}

// Cancel closes the gate without paying.
func (g *Gate) Cancel() error {
	if g.phase != PhaseIdle {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, g.phase)
	}

	g.reset()
	return nil
}

func (g *Gate) reset() {
	g.phase = PhaseClosed
	g.notice = ""
	g.receipt = ""
}
