package book

import "testing"

func storyOf(pages ...Page) *Story {
	return &Story{BookID: "b1", Title: "Milo and the Moon", Pages: pages}
}

func TestStoryValidate(t *testing.T) {
	tests := []struct {
		name    string
		pages   []Page
		wantErr bool
	}{
		{"contiguous", []Page{{PageNumber: 1}, {PageNumber: 2}, {PageNumber: 3}}, false},
		{"empty", nil, false},
		{"zero-indexed", []Page{{PageNumber: 0}, {PageNumber: 1}}, true},
		{"gap", []Page{{PageNumber: 1}, {PageNumber: 3}}, true},
		{"duplicate", []Page{{PageNumber: 1}, {PageNumber: 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storyOf(tt.pages...).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnmarshalStorySortsAndValidates(t *testing.T) {
	data := []byte(`{"book_id":"b1","pages":[
		{"page_number":2,"narration":"Second."},
		{"page_number":1,"narration":"First."}
	]}`)
	s, err := UnmarshalStory(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Pages[0].PageNumber != 1 {
		t.Error("pages should be sorted on unmarshal")
	}

	bad := []byte(`{"book_id":"b1","pages":[{"page_number":5}]}`)
	if _, err := UnmarshalStory(bad); err == nil {
		t.Error("non-contiguous story should fail to unmarshal")
	}
}

func TestPageByNumber(t *testing.T) {
	s := storyOf(Page{PageNumber: 1}, Page{PageNumber: 2, Narration: "Two."})
	if p := s.PageByNumber(2); p == nil || p.Narration != "Two." {
		t.Error("PageByNumber(2) should find page two")
	}
	if s.PageByNumber(9) != nil {
		t.Error("missing page should be nil")
	}
}

func TestIllustrationsLookup(t *testing.T) {
	ills := Illustrations{
		{PageNumber: 1, URL: "https://img.example/1.png"},
		{PageNumber: 4, URL: "https://img.example/4.png"},
	}

	if got := ills.URLForPage(4); got != "https://img.example/4.png" {
		t.Errorf("URLForPage(4) = %q", got)
	}
	if got := ills.URLForPage(2); got != "" {
		t.Errorf("miss should yield empty URL, got %q", got)
	}
	if ills.ForPage(2) != nil {
		t.Error("miss should yield nil illustration, not an error")
	}
}

func TestHasCharacters(t *testing.T) {
	with := Page{Characters: []CharacterID{"milo"}}
	without := Page{}
	if !with.HasCharacters() || without.HasCharacters() {
		t.Error("HasCharacters mismatch")
	}
}

func TestClassifyAction(t *testing.T) {
	tests := []struct {
		action string
		want   ActionClass
	}{
		{"sleeping under a tree", ActionStill},
		{"Sitting quietly by the window", ActionStill},
		{"a portrait by candlelight", ActionStill},
		{"running through the meadow", ActionMoving},
		{"CLIMBING the old oak", ActionMoving},
		{"dancing in the rain", ActionMoving},
		{"gazing at the stars", ActionNeutral},
		{"", ActionNeutral},
	}

	for _, tt := range tests {
		if got := ClassifyAction(tt.action); got != tt.want {
			t.Errorf("ClassifyAction(%q) = %v, want %v", tt.action, got, tt.want)
		}
	}
}
