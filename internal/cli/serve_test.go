package cli

import (
	"context"
	"testing"

	"github.com/foldline/storypress/pkg/cache"
)

func TestNewServeCache(t *testing.T) {
	ctx := context.Background()

	mem, err := newServeCache(ctx, "memory", "")
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	defer mem.Close()
	if err := mem.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if data, hit, _ := mem.Get(ctx, "k"); !hit || string(data) != "v" {
		t.Error("memory backend should round-trip entries")
	}

	none, err := newServeCache(ctx, "none", "")
	if err != nil {
		t.Fatalf("none backend: %v", err)
	}
	defer none.Close()
	_ = none.Set(ctx, "k", []byte("v"), 0)
	if _, hit, _ := none.Get(ctx, "k"); hit {
		t.Error("none backend should never hit")
	}

	if _, err := newServeCache(ctx, "carrier-pigeon", ""); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestNewServeKeyer(t *testing.T) {
	plain := newServeKeyer("")
	scoped := newServeKeyer("staging")
	other := newServeKeyer("prod")

	opts := cache.LayoutKeyOpts{Template: "hero_spread"}
	if scoped.LayoutKey("b1", 1, opts) == plain.LayoutKey("b1", 1, opts) {
		t.Error("scoped keys should differ from unscoped")
	}
	if scoped.LayoutKey("b1", 1, opts) == other.LayoutKey("b1", 1, opts) {
		t.Error("different scopes should not collide")
	}
}
