package cache

import (
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("key", "value")

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("Get() miss for freshly set key")
	}
	if got != "value" {
		t.Errorf("Get() = %v, want value", got)
	}
}

func TestCache_MissingKey(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	if _, ok := c.Get("absent"); ok {
		t.Error("Get() hit for a key that was never set")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.SetWithTTL("short", "value", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("Get() hit for an expired key")
	}
}

func TestCache_Delete(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("key", "value")
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("Get() hit after Delete()")
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Stop()

	c.Set("key", "old")
	c.Set("key", "new")

	got, _ := c.Get("key")
	if got != "new" {
		t.Errorf("Get() = %v, want new", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestCache_SweepRemovesExpired(t *testing.T) {
	c := NewCache(20 * time.Millisecond)
	defer c.Stop()

	c.Set("key", "value")
	time.Sleep(60 * time.Millisecond)

	if c.Size() != 0 {
		t.Errorf("Size() = %d after sweep window, want 0", c.Size())
	}
}

func TestCache_StopIsIdempotent(t *testing.T) {
	c := NewCache(time.Minute)
	c.Stop()
	c.Stop()
}
