package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRealClock_Sleep(t *testing.T) {
	var c realClock

	start := time.Now()
	if err := c.Sleep(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("sleep returned early")
	}
}

func TestRealClock_SleepCancelled(t *testing.T) {
	var c realClock
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
