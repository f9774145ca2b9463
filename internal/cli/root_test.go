package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/foldline/storypress/pkg/layout"
)

func TestRootCommand(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	root := c.RootCommand()

	if root.Use != "storypress" {
		t.Errorf("root use = %q", root.Use)
	}

	want := []string{"compose", "spreads", "masks", "sanitize", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"json"}},
		{"json", []string{"json"}},
		{"json,png", []string{"json", "png"}},
	}

	for _, tt := range tests {
		got := parseFormats(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := newCache(true)
	defer c.Close()

	if _, hit, _ := c.Get(context.Background(), "k"); hit {
		t.Error("disabled cache should never hit")
	}
}

func TestSanitizeFileRoundTrip(t *testing.T) {
	l := layout.NewEngine("cli-test", 1).GenerateLayout(
		"hero_spread", "Milo woke early.", "https://img.example/1.png")
	l.Decorations = []json.RawMessage{json.RawMessage(`"sparkle_7"`)}

	path := filepath.Join(t.TempDir(), "page_1.json")
	if err := layout.WriteLayoutFile(l, path); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	// Report-only leaves the file untouched.
	if err := sanitizeFile(path, false); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	before, _ := os.ReadFile(path)
	if !bytes.Contains(before, []byte("sparkle_7")) {
		t.Fatal("dry run should not rewrite the file")
	}

	if err := sanitizeFile(path, true); err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	after, _ := os.ReadFile(path)
	if bytes.Contains(after, []byte("sparkle_7")) {
		t.Error("decorations should be stripped in place")
	}

	cleaned, err := layout.ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(cleaned.Elements) != 2 {
		t.Errorf("sanitized layout has %d elements, want 2", len(cleaned.Elements))
	}
}
