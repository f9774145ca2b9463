package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foldline/storypress/pkg/pipeline"
	"github.com/foldline/storypress/pkg/store"
)

const testStoryJSON = `{
	"book_id": "b1",
	"title": "Milo and the Moon",
	"pages": [
		{"page_number": 1, "narration": "Milo woke early.", "scene_type": "opening", "layout_template": "hero_spread"},
		{"page_number": 2, "narration": "He packed his bag.", "scene_type": "action", "layout_template": "story_left"}
	]
}`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(store.NewMemoryStore(nil), pipeline.NewRunner(nil, nil, nil), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func saveStory(t *testing.T, ts *httptest.Server, bookID string) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/books/"+bookID+"/story", "application/json",
		strings.NewReader(testStoryJSON))
	if err != nil {
		t.Fatalf("save story: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save story status = %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
}

func TestStoryRoundTrip(t *testing.T) {
	ts := testServer(t)
	saveStory(t, ts, "b1")

	resp, err := http.Get(ts.URL + "/api/books/b1/story")
	if err != nil {
		t.Fatalf("get story: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get story status = %d", resp.StatusCode)
	}

	var got struct {
		Title string `json:"title"`
		Pages []any  `json:"pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "Milo and the Moon" || len(got.Pages) != 2 {
		t.Errorf("story changed across round trip: %+v", got)
	}
}

func TestLayoutsEndpoint(t *testing.T) {
	ts := testServer(t)
	saveStory(t, ts, "b1")

	resp, err := http.Get(ts.URL + "/api/books/b1/layouts")
	if err != nil {
		t.Fatalf("get layouts: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("layouts status = %d", resp.StatusCode)
	}

	var got struct {
		Layouts   map[string]json.RawMessage `json:"layouts"`
		StoryHash string                     `json:"story_hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Layouts) != 2 {
		t.Errorf("want 2 layouts, got %d", len(got.Layouts))
	}
	if got.StoryHash == "" {
		t.Error("response should carry the story hash")
	}
}

func TestPageLayoutNotFound(t *testing.T) {
	ts := testServer(t)
	saveStory(t, ts, "b1")

	resp, err := http.Get(ts.URL + "/api/books/b1/layouts/9")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing page status = %d, want 404", resp.StatusCode)
	}
}

func TestUnknownBook(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/books/ghost/layouts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown book status = %d, want 404", resp.StatusCode)
	}
}

func TestInvalidPageParam(t *testing.T) {
	ts := testServer(t)
	saveStory(t, ts, "b1")

	resp, err := http.Get(ts.URL + "/api/books/b1/layouts/zero")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad page param status = %d, want 400", resp.StatusCode)
	}
}

func TestSpreadsEndpoint(t *testing.T) {
	ts := testServer(t)
	saveStory(t, ts, "b1")

	resp, err := http.Get(ts.URL + "/api/books/b1/spreads?paired=true")
	if err != nil {
		t.Fatalf("get spreads: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("spreads status = %d", resp.StatusCode)
	}

	var spreads []struct {
		SpreadNumber       int    `json:"spread_number"`
		CharacterPlacement string `json:"character_placement"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&spreads); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(spreads) != 1 {
		t.Fatalf("2 pages should pair into 1 spread, got %d", len(spreads))
	}
	if spreads[0].CharacterPlacement != "center" {
		t.Errorf("opening scene should center the spread, got %q", spreads[0].CharacterPlacement)
	}
}

func TestCharacterMaskEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/masks/character.png?level=strict")
	if err != nil {
		t.Fatalf("get mask: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mask status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("response is not a PNG")
	}
}

func TestCharacterMaskResized(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/masks/character.png?size=512")
	if err != nil {
		t.Fatalf("get mask: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resized mask status = %d", resp.StatusCode)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 512 || b.Dy() != 512 {
		t.Errorf("resized mask is %dx%d, want 512x512", b.Dx(), b.Dy())
	}

	for _, q := range []string{"size=0", "size=-4", "size=banana"} {
		resp, err := http.Get(ts.URL + "/api/masks/character.png?" + q)
		if err != nil {
			t.Fatalf("get mask: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestCharacterMaskFromAction(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/masks/character.png?action=running+across+the+field")
	if err != nil {
		t.Fatalf("get mask: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("action-derived mask status = %d", resp.StatusCode)
	}
}

func TestCharacterMaskInvalidLevel(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/masks/character.png?level=everything")
	if err != nil {
		t.Fatalf("get mask: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid level status = %d, want 400", resp.StatusCode)
	}
}

func TestSceneMaskEndpoint(t *testing.T) {
	ts := testServer(t)
	saveStory(t, ts, "b1")

	resp, err := http.Get(ts.URL + "/api/books/b1/pages/1/mask.png")
	if err != nil {
		t.Fatalf("get mask: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scene mask status = %d", resp.StatusCode)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	ts := testServer(t)
	saveStory(t, ts, "b1")

	resp, err := http.Get(ts.URL + "/api/books/b1/pages/1/preview.png?scale=0.1")
	if err != nil {
		t.Fatalf("get preview: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview status = %d", resp.StatusCode)
	}

	badScale, err := http.Get(ts.URL + "/api/books/b1/pages/1/preview.png?scale=99")
	if err != nil {
		t.Fatalf("get preview: %v", err)
	}
	defer badScale.Body.Close()
	if badScale.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized scale status = %d, want 400", badScale.StatusCode)
	}
}

func TestSanitizeEndpoint(t *testing.T) {
	ts := testServer(t)
	saveStory(t, ts, "b1")

	resp, err := http.Post(ts.URL+"/api/books/b1/layouts/sanitize", "application/json", nil)
	if err != nil {
		t.Fatalf("post sanitize: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("sanitize status = %d", resp.StatusCode)
	}
}
