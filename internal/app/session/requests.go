package session

import (
	"context"

	"anonchat/internal/app/feed"
)

// Send validates text and adds it to the feed at once. The write to the shared store
// happens in the background; a failed write marks the message failed and the next poll
// removes it.
func (s *Session) Send(ctx context.Context, text string) (feed.Message, error) {
	reply := make(chan sendReply, 1)

	out, err := request(ctx, s, sendRequest{text: text, reply: reply}, reply)
	if err != nil {
		return feed.Message{}, err
	}

	return out.msg, out.err
}

// Refresh polls the feed now instead of waiting for the next interval.
func (s *Session) Refresh(ctx context.Context) error {
	reply := make(chan struct{}, 1)
	_, err := request(ctx, s, refreshRequest{reply: reply}, reply)
	return err
}

// OpenPayment shows the payment modal, whatever the access state.
func (s *Session) OpenPayment(ctx context.Context) error {
	reply := make(chan struct{}, 1)
	_, err := request(ctx, s, openRequest{reply: reply}, reply)
	return err
}

// SubmitPayment starts a payment. It returns once the attempt has started; the outcome
// shows up in later snapshots.
func (s *Session) SubmitPayment(ctx context.Context) error {
	reply := make(chan error, 1)

	out, err := request(ctx, s, submitRequest{reply: reply}, reply)
	if err != nil {
		return err
	}

	return out
}

// CancelPayment closes the payment modal. It fails while a payment is processing.
func (s *Session) CancelPayment(ctx context.Context) error {
	reply := make(chan error, 1)

	out, err := request(ctx, s, cancelRequest{reply: reply}, reply)
	if err != nil {
		return err
	}

	return out
}
