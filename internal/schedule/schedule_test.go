package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type everyInterval struct {
	d time.Duration
}

func (e everyInterval) Next(t time.Time) time.Time { return t.Add(e.d) }

type never struct{}

func (never) Next(time.Time) time.Time { return time.Time{} }

func TestParse(t *testing.T) {
	if _, err := Parse("0 9 * * 1-5"); err != nil {
		t.Fatalf("Parse valid spec: %v", err)
	}
	for _, spec := range []string{"", "every day", "0 9 * *", "*/5 * * * * *"} {
		if _, err := Parse(spec); err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
}

func TestStartInvalidSpec(t *testing.T) {
	err := Start(context.Background(), "nope", time.UTC, func(context.Context) {
		t.Error("job should not run")
	})
	if err == nil {
		t.Fatal("expected invalid spec error")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Start(ctx, "0 0 1 1 *", time.UTC, func(context.Context) {
		t.Error("job should not run")
	})
	if err != context.Canceled {
		t.Fatalf("Start returned %v, want context.Canceled", err)
	}
}

func TestRunInvokesJobRepeatedly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		run(ctx, everyInterval{d: 5 * time.Millisecond}, time.UTC, func(context.Context) {
			if calls.Add(1) == 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	if calls.Load() != 3 {
		t.Fatalf("job ran %d times, want 3", calls.Load())
	}
}

func TestRunStopsWithoutActivations(t *testing.T) {
	run(context.Background(), never{}, time.UTC, func(context.Context) {
		t.Error("job should not run")
	})
}
