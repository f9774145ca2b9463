package layout

import (
	"slices"
	"testing"
)

func TestCatalogContents(t *testing.T) {
	want := []string{"closing_vignette", "hero_spread", "landscape_page", "story_left", "story_right"}
	got := TemplateNames()
	if !slices.Equal(got, want) {
		t.Errorf("TemplateNames() = %v, want %v", got, want)
	}
}

func TestHasTemplate(t *testing.T) {
	if !HasTemplate(DefaultTemplateName) {
		t.Errorf("catalog should contain the default template %q", DefaultTemplateName)
	}
	if HasTemplate("nonexistent") {
		t.Error("HasTemplate should reject unknown names")
	}
}

func TestResolveTemplate(t *testing.T) {
	hero := ResolveTemplate("hero_spread")
	if hero.Name != "hero_spread" {
		t.Errorf("Name = %q, want hero_spread", hero.Name)
	}
	if hero.Canvas.WidthPx != 3600 || hero.Canvas.HeightPx != 2400 {
		t.Errorf("hero canvas = %dx%d, want 3600x2400", hero.Canvas.WidthPx, hero.Canvas.HeightPx)
	}
	if len(hero.ImageSlots) == 0 || len(hero.TextFrames) == 0 {
		t.Fatal("hero_spread should have an image slot and a text frame")
	}
	if hero.ImageSlots[0].ZIndex >= hero.TextFrames[0].ZIndex {
		t.Error("text should stack above the illustration")
	}
}

func TestResolveTemplateFallback(t *testing.T) {
	got := ResolveTemplate("not_in_catalog")
	if got.Name != DefaultTemplateName {
		t.Errorf("unknown names should fall back to %q, got %q", DefaultTemplateName, got.Name)
	}
}

func TestLandscapeTemplateMatchesSceneMaskCanvas(t *testing.T) {
	// The scene mask generator assumes this canvas; keep them locked together.
	tpl := ResolveTemplate("landscape_page")
	if tpl.Canvas.WidthPx != 1536 || tpl.Canvas.HeightPx != 1024 {
		t.Errorf("landscape canvas = %dx%d, want 1536x1024", tpl.Canvas.WidthPx, tpl.Canvas.HeightPx)
	}
}
