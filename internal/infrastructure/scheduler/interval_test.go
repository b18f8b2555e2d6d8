package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsAndStops(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(10 * time.Millisecond)
	if err := s.Start(context.Background(), func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := s.Start(context.Background(), func(time.Time) { t.Errorf("second start must not run") }); err != nil {
		t.Fatalf("second Start error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", runs.Load())
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("job ran after Stop")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop error: %v", err)
	}
}

func TestIntervalSchedulerDefaults(t *testing.T) {
	t.Parallel()

	if s := NewIntervalScheduler(0); s.interval != 24*time.Hour {
		t.Fatalf("interval = %v", s.interval)
	}
	if err := NewIntervalScheduler(time.Hour).Start(context.Background(), nil); err != nil {
		t.Fatalf("nil job should be ignored: %v", err)
	}
}
