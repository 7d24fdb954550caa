package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetExpiresAfterTTL(t *testing.T) {
	now := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	c := New[int](time.Second)
	c.now = func() time.Time { return now }

	c.Set("k", 7)
	if v, ok := c.Get("k"); !ok || v != 7 {
		t.Fatalf("expected 7, got %v ok=%v", v, ok)
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestGetOrLoadSharesConcurrentLoads(t *testing.T) {
	c := New[string](time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad("stats", func() (string, error) {
				calls.Add(1)
				<-release
				return "fresh", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() < 1 || calls.Load() > int32(len(results)) {
		t.Fatalf("unexpected load count %d", calls.Load())
	}
	for _, r := range results {
		if r != "fresh" {
			t.Fatalf("expected every caller to see the loaded value, got %q", r)
		}
	}

	// now cached
	v, err := c.GetOrLoad("stats", func() (string, error) { return "", errors.New("should not load") })
	if err != nil || v != "fresh" {
		t.Fatalf("expected cached value, got %q err=%v", v, err)
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := New[int](time.Minute)

	_, err := c.GetOrLoad("k", func() (int, error) { return 0, errors.New("store down") })
	if err == nil {
		t.Fatalf("expected error")
	}

	v, err := c.GetOrLoad("k", func() (int, error) { return 3, nil })
	if err != nil || v != 3 {
		t.Fatalf("expected reload after error, got %d err=%v", v, err)
	}
}
