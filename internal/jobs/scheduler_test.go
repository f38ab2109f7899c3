package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunNow(t *testing.T) {
	s := NewScheduler(time.Minute, discard())

	ran := make(chan struct{})
	err := s.Register("analysis", "0 6 * * *", func(ctx context.Context) error {
		close(ran)
		return nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := s.RunNow("analysis"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestRunNowUnknownJob(t *testing.T) {
	s := NewScheduler(time.Minute, discard())

	if err := s.RunNow("reaper"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestListJobsSorted(t *testing.T) {
	s := NewScheduler(time.Minute, discard())

	noop := func(ctx context.Context) error { return nil }
	for _, name := range []string{"pricing-sync", "analysis", "cleanup"} {
		if err := s.Register(name, "0 6 * * *", noop); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	jobs := s.ListJobs()
	want := []string{"analysis", "cleanup", "pricing-sync"}
	if len(jobs) != len(want) {
		t.Fatalf("got %d jobs, want %d", len(jobs), len(want))
	}
	for i, name := range want {
		if jobs[i].Name != name {
			t.Errorf("jobs[%d] = %q, want %q", i, jobs[i].Name, name)
		}
	}
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(time.Minute, discard())

	err := s.Register("analysis", "not a schedule", func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}
