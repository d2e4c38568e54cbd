package client

import (
	"math/rand"
	"testing"
	"time"

	"github.com/assetlink/assetlink/internal/testutil/testlog"
)

func TestBackoffFirstAttemptUsesInitialDelay(t *testing.T) {
	testlog.Start(t)

	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2.0}
	if got := NextBackoffDelay(cfg, 1, nil); got != cfg.InitialDelay {
		t.Fatalf("attempt 1: got %v want %v", got, cfg.InitialDelay)
	}
}

func TestBackoffGrowsAndClamps(t *testing.T) {
	testlog.Start(t)

	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     500 * time.Millisecond,
	}
	if got := NextBackoffDelay(cfg, 2, nil); got != 200*time.Millisecond {
		t.Fatalf("attempt 2: got %v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != 400*time.Millisecond {
		t.Fatalf("attempt 3: got %v", got)
	}
	if got := NextBackoffDelay(cfg, 10, nil); got != cfg.MaxDelay {
		t.Fatalf("attempt 10 not clamped: got %v", got)
	}
}

func TestBackoffJitterStaysInRange(t *testing.T) {
	testlog.Start(t)

	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     time.Second,
		Jitter:       true,
	}
	rng := rand.New(rand.NewSource(7))
	for attempt := 2; attempt <= 5; attempt++ {
		base := NextBackoffDelay(BackoffConfig{
			InitialDelay: cfg.InitialDelay,
			Multiplier:   cfg.Multiplier,
			MaxDelay:     cfg.MaxDelay,
		}, attempt, nil)
		got := NextBackoffDelay(cfg, attempt, rng)
		if got < base/2 || got > base+base/2 {
			t.Fatalf("attempt %d: jittered %v outside [%v, %v]", attempt, got, base/2, base+base/2)
		}
	}
}

func TestBackoffZeroInitialDelay(t *testing.T) {
	testlog.Start(t)

	if got := NextBackoffDelay(BackoffConfig{Multiplier: 2.0}, 3, nil); got != 0 {
		t.Fatalf("zero initial delay should stay zero, got %v", got)
	}
}
