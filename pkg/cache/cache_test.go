package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

// contractBackends lists the backends that must satisfy the full cache
// contract. Redis is covered by the same contract in integration
// environments; it needs a live server so it is not constructed here.
func contractBackends(t *testing.T) map[string]Cache {
	t.Helper()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("file cache: %v", err)
	}
	return map[string]Cache{
		"memory": NewMemoryCache(),
		"file":   fc,
	}
}

func TestCacheContract(t *testing.T) {
	ctx := context.Background()

	for name, c := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()

			// Miss on unknown key.
			if _, ok, err := c.Get(ctx, "unknown"); err != nil || ok {
				t.Errorf("unknown key: ok=%v err=%v, want miss", ok, err)
			}

			// Round trip.
			want := []byte("layout payload")
			if err := c.Set(ctx, "k1", want, time.Hour); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, ok, err := c.Get(ctx, "k1")
			if err != nil || !ok {
				t.Fatalf("get after set: ok=%v err=%v", ok, err)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("got %q, want %q", got, want)
			}

			// Overwrite.
			if err := c.Set(ctx, "k1", []byte("v2"), time.Hour); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _, _ = c.Get(ctx, "k1")
			if string(got) != "v2" {
				t.Errorf("overwrite lost: %q", got)
			}

			// Delete, including a missing key.
			if err := c.Delete(ctx, "k1"); err != nil {
				t.Errorf("delete: %v", err)
			}
			if _, ok, _ := c.Get(ctx, "k1"); ok {
				t.Error("deleted key should miss")
			}
			if err := c.Delete(ctx, "never-set"); err != nil {
				t.Errorf("deleting a missing key should not error: %v", err)
			}
		})
	}
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()

	for name, c := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()

			if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
				t.Fatalf("set: %v", err)
			}
			time.Sleep(20 * time.Millisecond)
			if _, ok, _ := c.Get(ctx, "short"); ok {
				t.Error("expired entry should miss")
			}

			// Zero TTL never expires.
			if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
				t.Fatalf("set: %v", err)
			}
			if _, ok, _ := c.Get(ctx, "forever"); !ok {
				t.Error("zero-TTL entry should not expire")
			}
		})
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("null cache should never hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("delete: %v", err)
	}
}
