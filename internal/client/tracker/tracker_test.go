package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amolo254/pamoja/internal/client/api"
)

// fakePoller scripts the status endpoint: each call consumes the next
// response, the last one repeating forever.
type fakePoller struct {
	mu        sync.Mutex
	responses []api.DonationStatus
	err       error
	calls     int
}

func (f *fakePoller) DonationStatus(_ context.Context, _ string) (api.DonationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return api.DonationStatus{}, f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakePoller) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitDone(t *testing.T, tr *Tracker) {
	t.Helper()
	select {
	case <-tr.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("tracker did not finish")
	}
}

func TestTracker_SuccessCapturesReceipt(t *testing.T) {
	t.Parallel()

	p := &fakePoller{responses: []api.DonationStatus{
		{Status: "PENDING"},
		{Status: "PENDING"},
		{Status: "SUCCEEDED", MpesaReceiptNumber: "QJD4K8L2MN"},
	}}

	var snaps []Snapshot
	var mu sync.Mutex
	tr := Start(p, "d1",
		WithInterval(time.Millisecond),
		WithOnChange(func(s Snapshot) {
			mu.Lock()
			snaps = append(snaps, s)
			mu.Unlock()
		}),
	)
	waitDone(t, tr)

	snap := tr.Snapshot()
	if snap.State != StateSucceeded {
		t.Fatalf("state = %v", snap.State)
	}
	if snap.Receipt != "QJD4K8L2MN" {
		t.Fatalf("receipt = %q", snap.Receipt)
	}
	if snap.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2 pending polls", snap.Attempts)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(snaps) == 0 || snaps[len(snaps)-1].State != StateSucceeded {
		t.Fatalf("onChange did not report the terminal transition: %+v", snaps)
	}
	// state only moves forward
	last := StateInitiating
	for _, s := range snaps {
		if s.State < last {
			t.Fatalf("state went backwards: %+v", snaps)
		}
		last = s.State
	}
}

func TestTracker_Failure(t *testing.T) {
	t.Parallel()

	p := &fakePoller{responses: []api.DonationStatus{
		{Status: "PENDING"},
		{Status: "FAILED"},
	}}
	tr := Start(p, "d1", WithInterval(time.Millisecond))
	waitDone(t, tr)

	snap := tr.Snapshot()
	if snap.State != StateFailed {
		t.Fatalf("state = %v", snap.State)
	}
	if snap.Receipt != "" {
		t.Fatalf("failed donation must carry no receipt")
	}
}

func TestTracker_AttemptBudget(t *testing.T) {
	t.Parallel()

	p := &fakePoller{responses: []api.DonationStatus{{Status: "PENDING"}}}
	tr := Start(p, "d1", WithInterval(time.Millisecond), WithMaxAttempts(5))
	waitDone(t, tr)

	snap := tr.Snapshot()
	if snap.State != StatePending {
		t.Fatalf("budget exhaustion must leave the attempt pending, got %v", snap.State)
	}
	if snap.Attempts != 5 {
		t.Fatalf("attempts = %d, want exactly the budget", snap.Attempts)
	}
	if p.callCount() != 5 {
		t.Fatalf("polls = %d, want exactly the budget", p.callCount())
	}
}

func TestTracker_PollErrorStopsSilently(t *testing.T) {
	t.Parallel()

	p := &fakePoller{err: errors.New("network down")}
	tr := Start(p, "d1", WithInterval(time.Millisecond))
	waitDone(t, tr)

	snap := tr.Snapshot()
	if snap.State != StatePending {
		t.Fatalf("poll error must not fabricate an outcome, got %v", snap.State)
	}
	if p.callCount() != 1 {
		t.Fatalf("polling continued after error: %d calls", p.callCount())
	}
}

func TestTracker_StopCancelsPolling(t *testing.T) {
	t.Parallel()

	p := &fakePoller{responses: []api.DonationStatus{{Status: "PENDING"}}}
	tr := Start(p, "d1", WithInterval(10*time.Millisecond))

	// let at least one poll land, then stop
	for p.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	tr.Stop()
	waitDone(t, tr)

	calls := p.callCount()
	time.Sleep(50 * time.Millisecond)
	if p.callCount() != calls {
		t.Fatalf("polls issued after Stop")
	}
	if tr.Snapshot().State != StatePending {
		t.Fatalf("Stop must not change state, got %v", tr.Snapshot().State)
	}

	// Stop is idempotent
	tr.Stop()
}

func TestTracker_LateResultAfterTerminalIgnored(t *testing.T) {
	t.Parallel()

	tr := Start(&fakePoller{responses: []api.DonationStatus{
		{Status: "SUCCEEDED", MpesaReceiptNumber: "R1"},
	}}, "d1", WithInterval(time.Millisecond))
	waitDone(t, tr)

	// a response landing after the terminal transition changes nothing
	snap, terminal := tr.apply(api.DonationStatus{Status: "FAILED"})
	if !terminal {
		t.Fatalf("apply after terminal must report terminal")
	}
	if snap.State != StateSucceeded || snap.Receipt != "R1" {
		t.Fatalf("terminal state overwritten: %+v", snap)
	}
}

func TestState_Strings(t *testing.T) {
	t.Parallel()

	if StateInitiating.Terminal() || StatePending.Terminal() {
		t.Fatalf("non-terminal states report terminal")
	}
	if !StateSucceeded.Terminal() || !StateFailed.Terminal() {
		t.Fatalf("terminal states report non-terminal")
	}
	for _, s := range []State{StateInitiating, StatePending, StateSucceeded, StateFailed} {
		if s.String() == "unknown" || s.String() == "" {
			t.Fatalf("missing string for %d", int(s))
		}
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	if PollInterval != 3*time.Second {
		t.Fatalf("PollInterval = %v", PollInterval)
	}
	if MaxPollAttempts != 40 {
		t.Fatalf("MaxPollAttempts = %d", MaxPollAttempts)
	}
}
