package layout

import (
	"github.com/charmbracelet/log"

	"github.com/foldline/storypress/pkg/errors"
)

// SanitizePageLayout migrates a persisted layout to the current schema.
//
// Older releases wrote decorative elements and per-element opacity; both are
// deprecated. Sanitization:
//   - strips the root-level decorations field
//   - drops every decoration element except the text plaque, which is
//     reclassified as a text element
//   - strips deprecated per-element opacity and decorations fields
//
// The input is not mutated; a sanitized copy is returned. Sanitizing an
// already-clean layout is a no-op (the operation is idempotent).
//
// A nil layout is the one fatal case: there is nothing to migrate, and the
// caller must not proceed with that item.
func SanitizePageLayout(l *PageLayout) (PageLayout, error) {
	if l == nil {
		return PageLayout{}, errors.New(errors.ErrCodeInvalidInput, "cannot sanitize nil layout")
	}

	out := *l
	out.Decorations = nil
	out.Elements = make([]Element, 0, len(l.Elements))

	for _, el := range l.Elements {
		if el.IsDecoration() {
			if el.ID != TextPlaqueID {
				continue
			}
			el.Type = ElementText
		}
		el.Opacity = 0
		el.Decorations = nil
		out.Elements = append(out.Elements, el)
	}

	return out, nil
}

// SanitizeBookLayouts sanitizes every page layout of a book, best-effort.
//
// One corrupt page must not block migration of the rest of the book, so a
// per-page failure is logged and that page is skipped rather than propagated.
// The returned map contains only the pages that sanitized cleanly.
func SanitizeBookLayouts(layouts map[int]*PageLayout, logger *log.Logger) map[int]PageLayout {
	if logger == nil {
		logger = log.Default()
	}

	out := make(map[int]PageLayout, len(layouts))
	for page, l := range layouts {
		clean, err := SanitizePageLayout(l)
		if err != nil {
			logger.Warn("skipping unsanitizable page layout", "page", page, "err", err)
			continue
		}
		out[page] = clean
	}
	return out
}
