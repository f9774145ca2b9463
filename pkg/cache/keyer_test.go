package cache

import "testing"

func TestLayoutKeyDistinctness(t *testing.T) {
	k := NewDefaultKeyer()
	base := LayoutKeyOpts{Template: "hero_spread", Narration: "Once.", IllustrationURL: "u1"}

	baseKey := k.LayoutKey("b1", 1, base)
	variants := []string{
		k.LayoutKey("b2", 1, base),
		k.LayoutKey("b1", 2, base),
		k.LayoutKey("b1", 1, LayoutKeyOpts{Template: "story_left", Narration: "Once.", IllustrationURL: "u1"}),
		k.LayoutKey("b1", 1, LayoutKeyOpts{Template: "hero_spread", Narration: "Twice.", IllustrationURL: "u1"}),
		k.LayoutKey("b1", 1, LayoutKeyOpts{Template: "hero_spread", Narration: "Once.", IllustrationURL: "u2"}),
	}

	for i, v := range variants {
		if v == baseKey {
			t.Errorf("variant %d should produce a distinct key", i)
		}
	}

	if k.LayoutKey("b1", 1, base) != baseKey {
		t.Error("identical inputs should produce identical keys")
	}
}

func TestKeyNamespaces(t *testing.T) {
	k := NewDefaultKeyer()
	layout := k.LayoutKey("b1", 1, LayoutKeyOpts{})
	maskK := k.MaskKey("b1", MaskKeyOpts{Kind: "scene", PageNumber: 1})
	spreadK := k.SpreadKey("hash", SpreadKeyOpts{})
	artifact := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "json"})

	keys := map[string]bool{layout: true, maskK: true, spreadK: true, artifact: true}
	if len(keys) != 4 {
		t.Error("entry kinds should never share keys")
	}
}

func TestMaskKeyOptions(t *testing.T) {
	k := NewDefaultKeyer()
	a := k.MaskKey("b1", MaskKeyOpts{Kind: "scene", Position: "left", PageNumber: 3})
	b := k.MaskKey("b1", MaskKeyOpts{Kind: "scene", Position: "right", PageNumber: 3})
	c := k.MaskKey("b1", MaskKeyOpts{Kind: "scene", Position: "left", PageNumber: 4})
	if a == b || a == c {
		t.Error("mask keys should vary with position and page")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant-a")
	other := NewScopedKeyer(inner, "tenant-b")

	opts := LayoutKeyOpts{Template: "hero_spread"}
	if scoped.LayoutKey("b1", 1, opts) == inner.LayoutKey("b1", 1, opts) {
		t.Error("scoped key should differ from unscoped")
	}
	if scoped.LayoutKey("b1", 1, opts) == other.LayoutKey("b1", 1, opts) {
		t.Error("different scopes should not collide")
	}
}

func TestHashStable(t *testing.T) {
	a := Hash([]byte("payload"))
	b := Hash([]byte("payload"))
	if a != b {
		t.Error("Hash should be deterministic")
	}
	if a == Hash([]byte("other")) {
		t.Error("different payloads should hash differently")
	}
}
