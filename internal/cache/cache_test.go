package cache

import (
	"testing"
	"time"
)

func TestDocumentKey_ContentAddressed(t *testing.T) {
	a := DocumentKey([]byte("C1 | Title: t | Tier: 2 | Status: ACTIVE"))
	b := DocumentKey([]byte("C1 | Title: t | Tier: 2 | Status: ACTIVE"))
	c := DocumentKey([]byte("C1 | Title: t | Tier: 3 | Status: ACTIVE"))

	if a != b {
		t.Error("Same content must produce the same key")
	}
	if a == c {
		t.Error("Edited content must produce a different key")
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("Expected hit with v, got %q %v", val, found)
	}

	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expired entry must miss")
	}

	if err := c.Set("k2", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if val, found := c.Get("k2"); !found || string(val) != "v2" {
		t.Errorf("Expected hit with v2, got %q %v", val, found)
	}
}
