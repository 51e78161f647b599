package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New[string](time.Second)
	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New[string](time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("key1", "value1")
	now = now.Add(2 * time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestSetWithTTL(t *testing.T) {
	c := New[int](time.Hour)
	c.SetWithTTL("short", 1, 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Fatalf("expected per-entry ttl to apply")
	}
}

func TestClear(t *testing.T) {
	c := New[string](time.Second)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Clear()
	for _, key := range []string{"a", "b"} {
		if _, ok := c.Get(key); ok {
			t.Fatalf("expected %s to be cleared", key)
		}
	}
}
