package session

import (
	"context"
	"errors"
	"time"

	"anonchat/internal/app/access"
	"anonchat/internal/app/feed"
	"anonchat/internal/app/payment"
)

// event is a state change applied on the Run loop.
type event interface {
	apply(s *Session)
}

type initialized struct {
	status access.Status
}

func (e initialized) apply(s *Session) {
	// A payment that completed first already set and saved the grant.
	if s.timer.State() != access.StateUnknown {
		s.logger.Debug().Msg("Ignoring access status loaded after a payment")
		return
	}

	s.timer.Apply(e.status)
	s.tick.Reset(s.opts.TickInterval)

	s.logger.Info().
		Stringer("state", s.timer.State()).
		Int("remaining", s.timer.Remaining()).
		Bool("failed_open", e.status.FailedOpen).
		Msg("Access initialized")

	if e.status.Missing {
		s.saveGrant(s.opts.FreeAccess, "free")
	}

	if s.timer.State() == access.StateExpired {
		s.gate.Open()
	}
}

func (s *Session) startInitialize() {
	s.spawn(func(ctx context.Context) event {
		ctx, cancel := s.storageContext(ctx)
		defer cancel()

		return initialized{status: s.grants.Initialize(ctx)}
	})
}

func (s *Session) onTick() {
	if s.timer.Tick() {
		s.logger.Info().Msg("Access expired, opening payment gate")
		s.gate.Open()
	}
}

type polled struct {
	messages []feed.Message
	err      error
}

func (e polled) apply(s *Session) {
	s.pollRunning = false

	// A refresh asked while this fetch ran may predate data the fetch missed.
	if s.pollQueued {
		s.pollQueued = false
		defer s.startPoll()
	}

	if e.err != nil {
		s.logger.Warn().Err(e.err).Msg("Failed to poll messages")
		return
	}

	s.view.Replace(e.messages)
}

// startPoll fetches the feed unless a fetch is still running.
func (s *Session) startPoll() {
	if s.pollRunning {
		return
	}
	s.pollRunning = true

	s.spawn(func(ctx context.Context) event {
		ctx, cancel := s.storageContext(ctx)
		defer cancel()

		messages, err := s.repo.Fetch(ctx)
		return polled{messages: messages, err: err}
	})
}

type sendRequest struct {
	text  string
	reply chan sendReply
}

type sendReply struct {
	msg feed.Message
	err error
}

func (e sendRequest) apply(s *Session) {
	msg, err := feed.NewMessage(s.user, e.text, s.timer.Active(), s.opts.Now())
	if err != nil {
		e.reply <- sendReply{err: err}
		return
	}

	s.view.Add(msg)
	s.publish()
	e.reply <- sendReply{msg: msg}

	s.spawn(func(ctx context.Context) event {
		ctx, cancel := s.storageContext(ctx)
		defer cancel()

		return sent{id: msg.ID, err: s.repo.Save(ctx, msg)}
	})
}

type sent struct {
	id  string
	err error
}

func (e sent) apply(s *Session) {
	if e.err != nil {
		s.logger.Error().Err(e.err).Str("message_id", e.id).Msg("Failed to store message")
		s.view.MarkFailed(e.id)
		return
	}

	s.view.MarkStored(e.id)
}

type refreshRequest struct {
	reply chan struct{}
}

func (e refreshRequest) apply(s *Session) {
	if s.pollRunning {
		s.pollQueued = true
	} else {
		s.startPoll()
	}
	e.reply <- struct{}{}
}

type openRequest struct {
	reply chan struct{}
}

func (e openRequest) apply(s *Session) {
	s.gate.Open()
	s.publish()
	e.reply <- struct{}{}
}

type cancelRequest struct {
	reply chan error
}

func (e cancelRequest) apply(s *Session) {
	err := s.gate.Cancel()
	s.publish()
	e.reply <- err
}

type submitRequest struct {
	reply chan error
}

func (e submitRequest) apply(s *Session) {
	if err := s.gate.Submit(); err != nil {
		e.reply <- err
		return
	}
	s.publish()
	e.reply <- nil

	charge := s.opts.Charge
	s.logger.Info().Int64("amount", charge.Amount).Str("currency", charge.Currency).Msg("Payment submitted")

	s.spawn(func(ctx context.Context) event {
		ctx, cancel := context.WithTimeout(ctx, s.opts.PaymentTimeout)
		defer cancel()

		receipt, err := s.collaborator.Submit(ctx, charge)
		return paid{receipt: receipt, err: err}
	})
}

type paid struct {
	receipt payment.Receipt
	err     error
}

func (e paid) apply(s *Session) {
	if e.err != nil {
		if errors.Is(e.err, payment.ErrUnavailable) {
			s.logger.Warn().Msg("Payment gateway unavailable")
		} else {
			s.logger.Warn().Err(e.err).Msg("Payment failed")
		}

		if err := s.gate.Fail(payment.Notice(e.err)); err != nil {
			s.logger.Error().Err(err).Msg("Payment outcome arrived in unexpected phase")
		}
		return
	}

	if err := s.gate.Succeed(e.receipt.ID); err != nil {
		s.logger.Error().Err(err).Msg("Payment outcome arrived in unexpected phase")
		return
	}

	// The user has paid, so access is granted for this process even if saving fails.
	s.timer.Grant(s.opts.PaidAccess)
	s.tick.Reset(s.opts.TickInterval)
	s.saveGrant(s.opts.PaidAccess, "paid")

	s.logger.Info().Str("receipt_id", e.receipt.ID).Int("remaining", s.timer.Remaining()).Msg("Payment succeeded, access granted")

	s.armDismiss()
}

// saveGrant persists a grant of d. Grant writes run one at a time in the order the loop
// issues them, so the grant applied last is also the one left in storage.
func (s *Session) saveGrant(d time.Duration, kind string) {
	prev := s.grantWrite
	done := make(chan struct{})
	s.grantWrite = done

	s.spawn(func(ctx context.Context) event {
		defer close(done)

		if prev != nil {
			select {
			case <-prev:
			case <-ctx.Done():
				return grantSaved{kind: kind, err: ctx.Err()}
			}
		}

		ctx, cancel := s.storageContext(ctx)
		defer cancel()

		return grantSaved{kind: kind, err: s.grants.Save(ctx, d)}
	})
}

type grantSaved struct {
	kind string
	err  error
}

func (e grantSaved) apply(s *Session) {
	if e.err != nil {
		s.logger.Error().Err(e.err).Str("grant", e.kind).Msg("Failed to persist access grant, continuing without it")
		return
	}

	s.logger.Debug().Str("grant", e.kind).Msg("Access grant saved")
}

func (s *Session) armDismiss() {
	if s.dismiss != nil {
		s.dismiss.Stop()
	}
	s.dismiss = time.NewTimer(s.opts.SuccessDisplay)
}

func (s *Session) onDismiss() {
	if err := s.gate.Dismiss(); err != nil {
		s.logger.Debug().Err(err).Msg("Ignoring stale success display timer")
	}
}
