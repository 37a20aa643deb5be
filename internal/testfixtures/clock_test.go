package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(90 * time.Minute)
	if !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockSetWallClock(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	clock := NewClock(time.Time{})

	if err := clock.SetWallClock("2026-03-02", "09:30", tokyo); err != nil {
		t.Fatalf("SetWallClock returned error: %v", err)
	}
	want := time.Date(2026, time.March, 2, 0, 30, 0, 0, time.UTC)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := clock.SetWallClock("2026-03-02", "9.30", tokyo); err == nil {
		t.Fatalf("expected error for malformed clock")
	}
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClock(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected %v from NowFunc, got %v", clock.Now(), got)
	}

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected updated time %v, got %v", clock.Now(), got)
	}
}
