package services

import (
	"testing"
	"time"
)

func TestLoginThrottleBurst(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	th := NewLoginThrottle(60, 3)
	th.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !th.Allow("a@uni.edu") {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	if th.Allow(" A@UNI.edu") {
		t.Fatal("fourth attempt within the burst window should be denied")
	}
	if !th.Allow("b@uni.edu") {
		t.Fatal("other emails have their own bucket")
	}

	// 60/min refills one token per second
	now = now.Add(time.Second)
	if !th.Allow("a@uni.edu") {
		t.Fatal("expected a token after refill")
	}
}

func TestLoginThrottleSweep(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	th := NewLoginThrottle(5, 5)
	th.now = func() time.Time { return now }

	th.Allow("old@uni.edu")
	now = now.Add(9 * time.Minute)
	th.Allow("new@uni.edu")

	now = now.Add(2 * time.Minute)
	if removed := th.Sweep(); removed != 1 {
		t.Fatalf("expected 1 entry swept, got %d", removed)
	}
	if _, ok := th.entries["new@uni.edu"]; !ok {
		t.Error("recent entry was swept")
	}
}
