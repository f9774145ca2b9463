package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNewAndIs(t *testing.T) {
	err := New(ErrCodeInvalidPage, "page %d out of range", 42)
	if !Is(err, ErrCodeInvalidPage) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(nil, ErrCodeInvalidPage) {
		t.Error("nil error matches nothing")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeStore, cause, "load book %s", "b1")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should survive errors.Is unwrapping")
	}
	if GetCode(err) != ErrCodeStore {
		t.Errorf("GetCode = %s, want %s", GetCode(err), ErrCodeStore)
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeBookNotFound, "book b1 not found")
	outer := fmt.Errorf("handling request: %w", inner)
	if !Is(outer, ErrCodeBookNotFound) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}
}

func TestGetCodeFallback(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("plain errors have no code, got %s", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := Wrap(ErrCodeStore, stderrors.New("dial tcp: timeout"), "load book b1")
	msg := UserMessage(err)
	if msg == "" {
		t.Fatal("user message should not be empty")
	}
}

func TestValidateBookID(t *testing.T) {
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "b1", false},
		{"uuid", "0b8f6f52-6c2e-4d7e-9f35-02d5b6d5a111", false},
		{"empty", "", true},
		{"too long", string(long), true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"control", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBookID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBookID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePageNumber(t *testing.T) {
	if err := ValidatePageNumber(1); err != nil {
		t.Errorf("page 1 should be valid: %v", err)
	}
	for _, n := range []int{0, -1} {
		if err := ValidatePageNumber(n); !Is(err, ErrCodeInvalidPage) {
			t.Errorf("page %d should fail with %s", n, ErrCodeInvalidPage)
		}
	}
}

func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name    string
		tpl     string
		wantErr bool
	}{
		{"empty is allowed", "", false}, // empty resolves to the catalog default
		{"simple", "hero_spread", false},
		{"whitespace", "hero spread", true},
		{"newline", "hero\nspread", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateName(tt.tpl)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTemplateName(%q) error = %v, wantErr %v", tt.tpl, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMaskSize(t *testing.T) {
	if err := ValidateMaskSize(1024, 1024); err != nil {
		t.Errorf("1024x1024 should be valid: %v", err)
	}
	if err := ValidateMaskSize(0, 1024); !Is(err, ErrCodeInvalidMaskSize) {
		t.Error("zero width should fail")
	}
	if err := ValidateMaskSize(1<<15, 1024); !Is(err, ErrCodeInvalidMaskSize) {
		t.Error("oversized mask should fail")
	}
}
