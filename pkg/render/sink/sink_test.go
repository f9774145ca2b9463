package sink

import (
	"bytes"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/foldline/storypress/pkg/layout"
)

func testLayout(t *testing.T) layout.PageLayout {
	t.Helper()
	return layout.NewEngine("sink-test", 1).GenerateLayout(
		"landscape_page", "Milo set off at dawn.", "https://img.example/1.png")
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testLayout(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["elements"]; !ok {
		t.Error("layout JSON should carry elements")
	}
}

func TestRenderPNGDimensions(t *testing.T) {
	data, err := RenderPNG(testLayout(t), WithScale(0.25))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 384 || b.Dy() != 256 {
		t.Errorf("preview size = %dx%d, want 384x256 (1536x1024 at 0.25)", b.Dx(), b.Dy())
	}
}

func TestRenderPNGDeterministic(t *testing.T) {
	l := testLayout(t)
	a, err := RenderPNG(l, WithScale(0.25))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := RenderPNG(l, WithScale(0.25))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical layouts should render identical previews")
	}
}

func TestRenderPNGWithGuides(t *testing.T) {
	l := testLayout(t)
	plain, err := RenderPNG(l, WithScale(0.5))
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	guided, err := RenderPNG(l, WithScale(0.5), WithGuides())
	if err != nil {
		t.Fatalf("guided: %v", err)
	}
	if bytes.Equal(plain, guided) {
		t.Error("guides should change the rendered preview")
	}
}

func TestRenderPNGRejectsTinyScale(t *testing.T) {
	l := testLayout(t)
	l.Canvas.WidthPx = 1
	l.Canvas.HeightPx = 1
	if _, err := RenderPNG(l, WithScale(0.25)); err == nil {
		t.Error("sub-pixel preview should fail")
	}
}

func TestRenderSpreadsJSON(t *testing.T) {
	data, err := RenderPageSpreadsJSON(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !json.Valid(data) {
		t.Error("spreads output should be valid JSON")
	}
}
