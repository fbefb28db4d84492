// Package tracker resolves an acknowledged STK push into an outcome by
// polling the donation status endpoint. Mobile-money confirmation is
// asynchronous and there is no push channel back to the client, so a
// short fixed interval with a hard attempt ceiling is the mechanism.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/amolo254/pamoja/internal/client/api"
	"go.uber.org/zap"
)

// Polling parameters. 40 polls at 3s give the payment provider about
// two minutes to resolve before the attempt is left for later.
const (
	PollInterval    = 3 * time.Second
	MaxPollAttempts = 40
)

// State is the donation attempt state as the client sees it.
type State int

const (
	// StateInitiating covers the window before the server acknowledges the push.
	StateInitiating State = iota
	// StatePending means the push was acknowledged and settlement is awaited.
	StatePending
	// StateSucceeded is terminal: the payer confirmed.
	StateSucceeded
	// StateFailed is terminal: the payer declined or the push failed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitiating:
		return "initiating"
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transition.
func (s State) Terminal() bool { return s == StateSucceeded || s == StateFailed }

// StatusPoller is the slice of the API client the tracker needs.
type StatusPoller interface {
	DonationStatus(ctx context.Context, id string) (api.DonationStatus, error)
}

// Snapshot is a point-in-time view of the attempt.
type Snapshot struct {
	State    State
	Attempts int
	Receipt  string // set only once State=StateSucceeded
}

// Tracker polls one donation until a terminal state, the attempt budget
// runs out, or Stop is called. Polls are strictly sequential: the next
// interval starts when the previous poll completes.
type Tracker struct {
	poller      StatusPoller
	donationID  string
	interval    time.Duration
	maxAttempts int
	log         *zap.Logger
	onChange    func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	attempts int
	receipt  string

	stopOnce sync.Once
	done     chan struct{}
}

// Option adjusts tracker construction.
type Option func(*Tracker)

// WithInterval overrides the poll interval (tests).
func WithInterval(d time.Duration) Option { return func(t *Tracker) { t.interval = d } }

// WithMaxAttempts overrides the attempt ceiling (tests).
func WithMaxAttempts(n int) Option { return func(t *Tracker) { t.maxAttempts = n } }

// WithOnChange registers a callback fired after every state or counter change.
func WithOnChange(fn func(Snapshot)) Option { return func(t *Tracker) { t.onChange = fn } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(t *Tracker) { t.log = l } }

// Start begins polling a donation the server has acknowledged (state
// Pending). The returned handle must be stopped when the owning view
// goes away; Stop is also safe after a terminal state.
func Start(poller StatusPoller, donationID string, opts ...Option) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		poller:      poller,
		donationID:  donationID,
		interval:    PollInterval,
		maxAttempts: MaxPollAttempts,
		log:         zap.NewNop(),
		ctx:         ctx,
		cancel:      cancel,
		state:       StatePending,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.run()
	return t
}

// Stop cancels polling: the timer is cleared and no further status
// requests are issued. Idempotent.
func (t *Tracker) Stop() {
	t.stopOnce.Do(t.cancel)
}

// Done is closed when the polling goroutine has exited.
func (t *Tracker) Done() <-chan struct{} { return t.done }

// Snapshot returns the current attempt view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{State: t.state, Attempts: t.attempts, Receipt: t.receipt}
}

func (t *Tracker) run() {
	defer close(t.done)
	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-timer.C:
		}

		res, err := t.poller.DonationStatus(t.ctx, t.donationID)
		if err != nil {
			// ambiguous outcome: leave the attempt pending rather than
			// declare failure the server never reported
			t.log.Warn("status poll failed, polling stopped",
				zap.String("donation_id", t.donationID), zap.Error(err))
			return
		}

		snap, terminal := t.apply(res)
		if terminal {
			return
		}
		if snap.Attempts >= t.maxAttempts {
			t.log.Warn("poll budget exhausted, donation left pending",
				zap.String("donation_id", t.donationID), zap.Int("attempts", snap.Attempts))
			return
		}
		timer.Reset(t.interval)
	}
}

// apply folds one poll result into the attempt. State moves forward
// only: a response landing after a terminal transition is ignored.
func (t *Tracker) apply(res api.DonationStatus) (Snapshot, bool) {
	t.mu.Lock()
	if t.state.Terminal() {
		snap := Snapshot{State: t.state, Attempts: t.attempts, Receipt: t.receipt}
		t.mu.Unlock()
		return snap, true
	}

	var terminal bool
	switch res.Status {
	case "SUCCEEDED":
		t.state = StateSucceeded
		t.receipt = res.MpesaReceiptNumber
		terminal = true
	case "FAILED":
		t.state = StateFailed
		terminal = true
	default: // PENDING
		t.attempts++
	}
	snap := Snapshot{State: t.state, Attempts: t.attempts, Receipt: t.receipt}
	t.mu.Unlock()

	if t.onChange != nil {
		t.onChange(snap)
	}
	return snap, terminal
}
