package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCounter struct {
	count int
	err   error
	since time.Time
}

func (f *fakeCounter) CountSentSince(_ context.Context, since time.Time) (int, error) {
	f.since = since
	return f.count, f.err
}

func TestGrant(t *testing.T) {
	cases := []struct {
		budget, used, n, want int
	}{
		{10, 9, 5, 1},
		{10, 10, 5, 0},
		{10, 12, 5, 0},
		{100, 0, 5, 5},
		{100, 0, 250, 100},
		{0, 0, 5, 0},
	}
	for _, c := range cases {
		if got := Grant(c.budget, c.used, c.n); got != c.want {
			t.Fatalf("Grant(%d,%d,%d) = %d, want %d", c.budget, c.used, c.n, got, c.want)
		}
	}
}

func TestStoreLimiter_Reserve(t *testing.T) {
	counter := &fakeCounter{count: 9}
	l := NewStoreLimiter(counter, 10, time.Hour)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	granted, err := l.Reserve(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if granted != 1 {
		t.Fatalf("expected grant of 1, got %d", granted)
	}
	if !counter.since.Equal(fixed.Add(-time.Hour)) {
		t.Fatalf("expected trailing-hour cutoff, got %v", counter.since)
	}
}

func TestStoreLimiter_ZeroRequest(t *testing.T) {
	counter := &fakeCounter{count: 0}
	l := NewStoreLimiter(counter, 10, time.Hour)

	granted, err := l.Reserve(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if granted != 0 {
		t.Fatalf("expected 0 grant, got %d", granted)
	}
}

func TestStoreLimiter_CounterError(t *testing.T) {
	boom := errors.New("db down")
	l := NewStoreLimiter(&fakeCounter{err: boom}, 10, time.Hour)

	if _, err := l.Reserve(context.Background(), 3); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped counter error, got %v", err)
	}
}

func TestRedisLimiter_BucketKeys(t *testing.T) {
	l := NewRedisLimiter(nil, 100, time.Hour)
	l.now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }

	cur, prev := l.bucketKeys()
	if cur == prev {
		t.Fatalf("current and previous buckets must differ: %s", cur)
	}

	l.now = func() time.Time { return time.Date(2026, 3, 1, 12, 59, 59, 0, time.UTC) }
	cur2, _ := l.bucketKeys()
	if cur != cur2 {
		t.Fatalf("same hour must map to same bucket: %s vs %s", cur, cur2)
	}

	l.now = func() time.Time { return time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC) }
	cur3, prev3 := l.bucketKeys()
	if cur3 == cur {
		t.Fatalf("next hour must roll the bucket")
	}
	if prev3 != cur {
		t.Fatalf("previous bucket must be the old current bucket: %s vs %s", prev3, cur)
	}
}
