/*
Package session runs the chat widget of one device.

A Session owns the access timer, the message feed view and the payment gate, and changes
them only from its Run loop. The loop serializes three periodic sources (the one-second
countdown, the feed poll and the payment success display) with the requests coming from
the API, so no two of them ever interleave inside one update.

Storage and payment calls never run on the loop. They run in worker goroutines that post
their outcome back as an event; once the session stops, late outcomes are dropped.
Readers get a consistent copy of the state from Snapshot without touching the loop.
*/
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"anonchat/internal/app/access"
	"anonchat/internal/app/feed"
	"anonchat/internal/app/identity"
	"anonchat/internal/app/payment"
	"anonchat/internal/app/storage"
	"anonchat/internal/pkg/logx"
)

const eventBuffer = 64

// ErrStopped is returned by requests made after the session stopped.
var ErrStopped = errors.New("session: stopped")

// Options tunes a Session. Zero fields take the defaults of DefaultOptions.
type Options struct {
	// TickInterval is the length of one countdown second.
	TickInterval time.Duration

	// PollInterval is the time between two feed polls.
	PollInterval time.Duration

	// FreeAccess is granted to an identity without a stored grant.
	FreeAccess time.Duration

	// PaidAccess is granted by a successful payment.
	PaidAccess time.Duration

	// SuccessDisplay is how long the payment success state stays visible.
	SuccessDisplay time.Duration

	// StorageTimeout bounds one storage call made by a worker.
	StorageTimeout time.Duration

	// PaymentTimeout bounds one collaborator call.
	PaymentTimeout time.Duration

	// FetchWindow is the number of newest message keys read per poll.
	FetchWindow int

	Charge payment.Charge

	// Now replaces time.Now.
	Now func() time.Time
}

// DefaultOptions returns the production timings.
func DefaultOptions() Options {
	return Options{
		TickInterval:   time.Second,
		PollInterval:   3 * time.Second,
		FreeAccess:     access.DefaultFreeAccess,
		PaidAccess:     time.Hour,
		SuccessDisplay: 2 * time.Second,
		StorageTimeout: 5 * time.Second,
		PaymentTimeout: 2 * time.Minute,
		FetchWindow:    feed.DefaultFetchWindow,
		Charge:         payment.DefaultCharge,
		Now:            time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.TickInterval <= 0 {
		o.TickInterval = d.TickInterval
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.FreeAccess <= 0 {
		o.FreeAccess = d.FreeAccess
	}
	if o.PaidAccess <= 0 {
		o.PaidAccess = d.PaidAccess
	}
	if o.SuccessDisplay <= 0 {
		o.SuccessDisplay = d.SuccessDisplay
	}
	if o.StorageTimeout <= 0 {
		o.StorageTimeout = d.StorageTimeout
	}
	if o.PaymentTimeout <= 0 {
		o.PaymentTimeout = d.PaymentTimeout
	}
	if o.FetchWindow == 0 {
		o.FetchWindow = d.FetchWindow
	}
	if o.Charge == (payment.Charge{}) {
		o.Charge = d.Charge
	}
	if o.Now == nil {
		o.Now = d.Now
	}

	return o
}

// Stores are the two stores a session works with.
type Stores struct {
	// Local holds the identity and its access grant.
	Local storage.Store

	// Shared holds the messages of every device.
	Shared storage.Store
}

// Session is the widget state of one identity.
type Session struct {
	user         identity.Identity
	grants       *access.Grants
	repo         *feed.Repository
	collaborator payment.Collaborator
	opts         Options

	// events carries every state change request to the loop.
	events chan event

	stop     chan struct{}
	stopOnce sync.Once

	// exited is closed when the loop stops taking events; done when Run has returned.
	exited  chan struct{}
	done    chan struct{}
	started atomic.Bool

	// workers counts the goroutines started by spawn.
	workers sync.WaitGroup

	snapshot atomic.Pointer[Snapshot]
	logger   zerolog.Logger

	// The fields below belong to the Run loop.
	ctx         context.Context
	timer       access.Timer
	view        *feed.View
	gate        payment.Gate
	pollRunning bool
	pollQueued  bool
	tick        *time.Ticker
	dismiss     *time.Timer

	// grantWrite is closed when the last grant write issued by the loop has finished.
	grantWrite chan struct{}
}

// New creates a session for user. Call Run to start it.
func New(user identity.Identity, stores Stores, collaborator payment.Collaborator, opts Options) *Session {
	opts = opts.withDefaults()

	s := &Session{
		user: user,
		grants: access.NewGrants(stores.Local, user.UserID,
			access.WithClock(opts.Now),
			access.WithFreeAccess(opts.FreeAccess),
		),
		repo:         feed.NewRepository(stores.Shared, opts.FetchWindow),
		collaborator: collaborator,
		opts:         opts,
		events:       make(chan event, eventBuffer),
		stop:         make(chan struct{}),
		exited:       make(chan struct{}),
		done:         make(chan struct{}),
		view:         feed.NewView(user.UserID),
		logger:       logx.Component("session").With().Str("user_id", user.UserID).Logger(),
	}

	s.publish()
	return s
}

// Identity returns the identity the session chats under.
func (s *Session) Identity() identity.Identity {
	return s.user
}

// Stop ends Run. It is safe to call more than once and from any goroutine.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run processes events until ctx is done or Stop is called. It returns after every timer
// is stopped and every worker has finished. Run may be called only once.
func (s *Session) Run(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("Run called on a session that already ran")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.ctx = ctx

	s.tick = time.NewTicker(s.opts.TickInterval)
	poll := time.NewTicker(s.opts.PollInterval)

	defer func() {
		s.tick.Stop()
		poll.Stop()
		if s.dismiss != nil {
			s.dismiss.Stop()
		}

		cancel()
		close(s.exited)
		s.workers.Wait()

		s.logger.Info().Msg("Session stopped")
		close(s.done)
	}()

	s.logger.Info().Msg("Session started")

	s.startInitialize()
	s.startPoll()

	for {
		var dismissC <-chan time.Time
		if s.dismiss != nil {
			dismissC = s.dismiss.C
		}

		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-s.tick.C:
			s.onTick()
		case <-poll.C:
			s.startPoll()
		case <-dismissC:
			s.dismiss = nil
			s.onDismiss()
		case ev := <-s.events:
			// Requests publish before replying so callers see their own change.
			ev.apply(s)
		}

		s.publish()
	}
}

// spawn runs fn on a worker goroutine and posts its event back to the loop.
func (s *Session) spawn(fn func(ctx context.Context) event) {
	ctx := s.ctx

	s.workers.Add(1)
	go func() {
		defer s.workers.Done()

		if ev := fn(ctx); ev != nil {
			s.post(ev)
		}
	}()
}

// post delivers ev to the loop, or drops it once the loop has exited.
func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.exited:
	}
}

// request posts ev and waits for the loop to answer on reply.
func request[T any](ctx context.Context, s *Session, ev event, reply chan T) (T, error) {
	var zero T

	select {
	case s.events <- ev:
	case <-s.exited:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case out := <-reply:
		return out, nil
	case <-s.exited:
		// The loop may have answered just before exiting.
		select {
		case out := <-reply:
			return out, nil
		default:
			return zero, ErrStopped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (s *Session) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StorageTimeout)
}
