package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKey_Normalization(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query, override string
		want            string
	}{
		{"What is the status?", "", "what is the status?"},
		{"  what   IS the\tstatus? ", "", "what is the status?"},
		{"query", "short", "query\x00short"},
	}
	for _, tc := range cases {
		if got := Key(tc.query, tc.override); got != tc.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tc.query, tc.override, got, tc.want)
		}
	}

	if Key("query", "short") == Key("query", "full") {
		t.Error("different overrides must not share a key")
	}
}

func TestCache_PutGet(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute, true)
	c.Put("k", "v")

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("got %q, %v; want %q, true", got, ok, "v")
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("missing key reported present")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	c := New[int](5*time.Minute, true, WithClock[int](func() time.Time { return now }))

	c.Put("k", 42)

	now = now.Add(5 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry at exactly TTL age should still be fresh")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry reported fresh")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", c.Len())
	}
}

func TestCache_Disabled(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute, false)
	c.Put("k", "v")

	if _, ok := c.Get("k"); ok {
		t.Error("disabled cache returned a hit")
	}
	if c.Len() != 0 {
		t.Errorf("disabled cache stored an entry, len = %d", c.Len())
	}
}

func TestCache_GetOrCompute(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute, true)

	var calls atomic.Int32
	compute := func() (string, error) {
		calls.Add(1)
		return "answer", nil
	}

	got, hit, err := c.GetOrCompute("k", compute)
	if err != nil || got != "answer" || hit {
		t.Fatalf("first call: %q, hit=%v, err=%v", got, hit, err)
	}

	got, hit, err = c.GetOrCompute("k", compute)
	if err != nil || got != "answer" || !hit {
		t.Fatalf("second call: %q, hit=%v, err=%v", got, hit, err)
	}
	if calls.Load() != 1 {
		t.Errorf("compute ran %d times, want 1", calls.Load())
	}
}

func TestCache_GetOrComputeError(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute, true)
	wantErr := errors.New("boom")

	_, hit, err := c.GetOrCompute("k", func() (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if hit {
		t.Error("failed compute reported as hit")
	}
	if c.Len() != 0 {
		t.Error("failed compute left an entry behind")
	}
}

func TestCache_GetOrComputeConcurrent(t *testing.T) {
	t.Parallel()

	c := New[int](time.Minute, true)

	var calls atomic.Int32
	var hits atomic.Int32

	const workers = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, hit, err := c.GetOrCompute("shared", func() (int, error) {
				calls.Add(1)
				time.Sleep(5 * time.Millisecond)
				return 7, nil
			})
			if err != nil {
				t.Errorf("compute: %v", err)
			}
			if hit {
				hits.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("compute ran %d times, want 1", calls.Load())
	}
	// Exactly one caller owns the miss so stats record once per resolution.
	if hits.Load() != workers-1 {
		t.Errorf("%d hits, want %d", hits.Load(), workers-1)
	}
}

func TestCache_GetOrComputeDisabledStillCollapses(t *testing.T) {
	t.Parallel()

	c := New[int](time.Minute, false)

	var calls atomic.Int32
	got, hit, err := c.GetOrCompute("k", func() (int, error) {
		calls.Add(1)
		return 9, nil
	})
	if err != nil || got != 9 || hit {
		t.Fatalf("got %d, hit=%v, err=%v", got, hit, err)
	}

	// A second call recomputes because nothing was stored.
	_, hit, _ = c.GetOrCompute("k", func() (int, error) {
		calls.Add(1)
		return 9, nil
	})
	if hit || calls.Load() != 2 {
		t.Errorf("hit=%v, calls=%d; want false, 2", hit, calls.Load())
	}
}

func TestCache_InvalidateAndClear(t *testing.T) {
	t.Parallel()

	c := New[string](time.Minute, true)
	c.Put("a", "1")
	c.Put("b", "2")

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("invalidated entry still present")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("unrelated entry lost on invalidate")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after clear = %d", c.Len())
	}
}
