package idempotency

import (
	"testing"
	"time"
)

func TestStoreDeduplicatesInFlight(t *testing.T) {
	store := New[uint64](30*time.Second, 64)
	key := "k1"

	first := store.Begin(key)
	if first.Outcome != Owner {
		t.Fatalf("expected Owner, got %v", first.Outcome)
	}

	second := store.Begin(key)
	if second.Outcome != Wait {
		t.Fatalf("expected Wait, got %v", second.Outcome)
	}

	store.Complete(key, 42, nil)

	got := <-second.Chan
	if got.Err != nil || got.Value != 42 {
		t.Fatalf("expected (42, nil), got (%v, %v)", got.Value, got.Err)
	}

	third := store.Begin(key)
	if third.Outcome != Done || third.Value != 42 {
		t.Fatalf("expected Done(42), got %v(%v)", third.Outcome, third.Value)
	}
}

func TestStoreAllowsRetryAfterFailure(t *testing.T) {
	store := New[uint64](30*time.Second, 64)
	key := "k2"

	first := store.Begin(key)
	if first.Outcome != Owner {
		t.Fatalf("expected Owner, got %v", first.Outcome)
	}
	store.Complete(key, 0, errFake{})

	second := store.Begin(key)
	if second.Outcome != Owner {
		t.Fatalf("expected a fresh Owner after a failed attempt, got %v", second.Outcome)
	}
}

type errFake struct{}

func (errFake) Error() string { return "fake" }
