package timeutil

import (
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	d := time.Date(2026, 3, 7, 23, 59, 0, 0, time.Local)
	if got := DateOf(d); got != "2026-03-07" {
		t.Fatalf("expected 2026-03-07, got %s", got)
	}
}

func TestOverlapFullyInside(t *testing.T) {
	base := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	start := base.Add(10 * time.Minute)
	end := base.Add(20 * time.Minute)
	got := OverlapSeconds(start, end, base, base.Add(time.Hour))
	if got != 600 {
		t.Fatalf("expected 600, got %d", got)
	}
}

func TestOverlapDisjoint(t *testing.T) {
	base := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	start := base.Add(2 * time.Hour)
	end := base.Add(3 * time.Hour)
	if got := OverlapSeconds(start, end, base, base.Add(time.Hour)); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestOverlapClampedToWindow(t *testing.T) {
	base := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	start := base.Add(-time.Hour)
	end := base.Add(2 * time.Hour)
	if got := OverlapSeconds(start, end, base, base.Add(time.Hour)); got != 3600 {
		t.Fatalf("expected 3600, got %d", got)
	}
}

// A session spanning several hour windows must split exactly: the sum of
// per-window overlaps equals the session duration.
func TestOverlapConservation(t *testing.T) {
	start := time.Date(2026, 3, 7, 9, 42, 13, 0, time.UTC)
	end := start.Add(3*time.Hour + 17*time.Minute + 5*time.Second)
	want := int(end.Sub(start) / time.Second)

	sum := 0
	for w := HourStart(start); w.Before(end); w = w.Add(time.Hour) {
		sum += OverlapSeconds(start, end, w, w.Add(time.Hour))
	}
	if sum != want {
		t.Fatalf("overlap sum %d != duration %d", sum, want)
	}
}

func TestOverlapZeroLengthSession(t *testing.T) {
	at := time.Date(2026, 3, 7, 10, 30, 0, 0, time.UTC)
	if got := OverlapSeconds(at, at, HourStart(at), HourStart(at).Add(time.Hour)); got != 0 {
		t.Fatalf("expected 0 for empty interval, got %d", got)
	}
}

func TestHourStart(t *testing.T) {
	at := time.Date(2026, 3, 7, 10, 30, 45, 999, time.UTC)
	want := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	if got := HourStart(at); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
