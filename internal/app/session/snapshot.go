package session

import (
	"anonchat/internal/app/access"
	"anonchat/internal/app/feed"
	"anonchat/internal/app/identity"
	"anonchat/internal/app/payment"
)

// Snapshot is a consistent copy of the widget state taken between two loop updates.
type Snapshot struct {
	User     identity.Identity `json:"user"`
	Access   AccessView        `json:"access"`
	Payment  PaymentView       `json:"payment"`
	Messages []feed.Entry      `json:"messages"`
}

// AccessView is the countdown as shown to the user.
type AccessView struct {
	State            access.State `json:"state"`
	RemainingSeconds int          `json:"remainingSeconds"`

	// Display is the "m:ss" rendering of RemainingSeconds.
	Display string `json:"display"`
}

// PaymentView is the payment modal as shown to the user.
type PaymentView struct {
	State       payment.Phase `json:"state"`
	Open        bool          `json:"open"`
	Price       int64         `json:"price"`
	Currency    string        `json:"currency"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Notice      string        `json:"notice,omitempty"`
	ReceiptID   string        `json:"receiptId,omitempty"`
}

// Snapshot returns the state published after the last loop update.
func (s *Session) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

// publish stores a fresh snapshot. Only New and the Run loop call it.
func (s *Session) publish() {
	status := s.timer.Status()

	snap := &Snapshot{
		User: s.user,
		Access: AccessView{
			State:            status.State,
			RemainingSeconds: status.Remaining,
			Display:          status.Display(),
		},
		Payment: PaymentView{
			State:       s.gate.Phase(),
			Open:        s.gate.IsOpen(),
			Price:       s.opts.Charge.Amount,
			Currency:    s.opts.Charge.Currency,
			Name:        s.opts.Charge.Name,
			Description: s.opts.Charge.Description,
			Notice:      s.gate.Notice(),
			ReceiptID:   s.gate.Receipt(),
		},
		Messages: s.view.Entries(),
	}

	s.snapshot.Store(snap)
}
