package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoWithoutRetriesCallsOnce(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), Policy{}, func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	var waits []time.Duration
	err := Do(context.Background(), Policy{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		OnRetry:      func(_ error, d time.Duration) { waits = append(waits, d) },
	}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(waits) != 2 || waits[0] != time.Millisecond || waits[1] != 2*time.Millisecond {
		t.Fatalf("waits = %v, want [1ms 2ms]", waits)
	}
}

func TestDoStopsAfterMaxRetries(t *testing.T) {
	calls := 0
	last := errors.New("still failing")
	err := Do(context.Background(), Policy{MaxRetries: 2, InitialDelay: time.Millisecond}, func(context.Context) error {
		calls++
		return last
	})
	if !errors.Is(err, last) {
		t.Fatalf("err = %v, want %v", err, last)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoPermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	bad := errors.New("bad input")
	err := Do(context.Background(), Policy{MaxRetries: 5, InitialDelay: time.Millisecond}, func(context.Context) error {
		calls++
		return Permanent(bad)
	})
	if !errors.Is(err, bad) {
		t.Fatalf("err = %v, want %v", err, bad)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, Policy{MaxRetries: 3, InitialDelay: time.Millisecond}, func(context.Context) error {
		calls++
		return errors.New("unreachable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}
