package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foldline/storypress/pkg/book"
	sperrors "github.com/foldline/storypress/pkg/errors"
	"github.com/foldline/storypress/pkg/mask"
	"github.com/foldline/storypress/pkg/pipeline"
)

// maxBodyBytes caps request bodies; stories are small JSON documents.
const maxBodyBytes = 4 << 20

// handleSaveStory stores the story from the request body.
func (s *Server) handleSaveStory(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	if err := sperrors.ValidateBookID(bookID); err != nil {
		s.writeError(w, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, sperrors.Wrap(sperrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	story, err := book.UnmarshalStory(data)
	if err != nil {
		s.writeError(w, sperrors.Wrap(sperrors.ErrCodeInvalidStory, err, "parse story"))
		return
	}
	story.BookID = bookID

	if err := s.store.SaveStory(r.Context(), story); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"book_id": bookID, "pages": len(story.Pages)})
}

// handleGetStory returns the stored story.
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	story, err := s.loadStory(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

// handleSaveIllustrations replaces the book's illustration manifest.
func (s *Server) handleSaveIllustrations(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	if err := sperrors.ValidateBookID(bookID); err != nil {
		s.writeError(w, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, sperrors.Wrap(sperrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	var ills book.Illustrations
	if err := json.Unmarshal(data, &ills); err != nil {
		s.writeError(w, sperrors.Wrap(sperrors.ErrCodeInvalidInput, err, "parse illustrations"))
		return
	}

	if err := s.store.SaveIllustrations(r.Context(), bookID, ills); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"book_id": bookID, "illustrations": len(ills)})
}

// handleLayouts runs the pipeline and returns every page layout.
func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	result, err := s.execute(r, pipeline.Options{
		Formats: []string{pipeline.FormatJSON},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"layouts":    result.Layouts,
		"collisions": result.Collisions,
		"story_hash": result.StoryHash,
	})
}

// handlePageLayout returns one page's layout.
func (s *Server) handlePageLayout(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.execute(r, pipeline.Options{
		Formats: []string{pipeline.FormatJSON},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	l, ok := result.Layouts[page]
	if !ok {
		s.writeError(w, sperrors.New(sperrors.ErrCodePageNotFound, "page %d not in story", page))
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleSpreads returns the spread model. ?paired=true selects the
// open-book model.
func (s *Server) handleSpreads(w http.ResponseWriter, r *http.Request) {
	result, err := s.execute(r, pipeline.Options{
		Paired:  r.URL.Query().Get("paired") == "true",
		Formats: []string{pipeline.FormatJSON},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := pipeline.MarshalResultSpreads(result)
	if err != nil {
		s.writeError(w, sperrors.Wrap(sperrors.ErrCodeInternal, err, "serialize spreads"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handlePreviewPNG renders one page's preview image.
func (s *Server) handlePreviewPNG(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Formats:    []string{pipeline.FormatPNG},
		ShowGuides: r.URL.Query().Get("guides") == "true",
	}
	if v := r.URL.Query().Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 || scale > 2 {
			s.writeError(w, sperrors.New(sperrors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts.PreviewScale = scale
	}

	result, err := s.execute(r, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rendered, ok := result.Artifacts[page]
	if !ok {
		s.writeError(w, sperrors.New(sperrors.ErrCodePageNotFound, "page %d not in story", page))
		return
	}
	writePNG(w, rendered[pipeline.FormatPNG])
}

// handleSceneMask returns one page's scene inpainting mask.
func (s *Server) handleSceneMask(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.execute(r, pipeline.Options{
		SceneMasks: true,
		Formats:    []string{pipeline.FormatJSON},
		Paired:     r.URL.Query().Get("paired") == "true",
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, ok := result.SceneMasks[page]
	if !ok {
		s.writeError(w, sperrors.New(sperrors.ErrCodePageNotFound, "page %d not in story", page))
		return
	}
	writePNG(w, data)
}

// handleCharacterMask returns a character preservation mask. The preserve
// level comes from ?level= or is derived from ?action=.
func (s *Server) handleCharacterMask(w http.ResponseWriter, r *http.Request) {
	level := mask.PreserveLevel(r.URL.Query().Get("level"))
	if action := r.URL.Query().Get("action"); action != "" {
		level = mask.PreserveLevelForAction(action)
	}
	if level == "" {
		level = mask.PreserveModerate
	}
	switch level {
	case mask.PreserveStrict, mask.PreserveModerate, mask.PreserveLoose:
	default:
		s.writeError(w, sperrors.New(sperrors.ErrCodeInvalidInput, "invalid preserve level %q", level))
		return
	}

	m := mask.CharacterMask(level)
	if v := r.URL.Query().Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, sperrors.New(sperrors.ErrCodeInvalidMaskSize, "invalid mask size %q", v))
			return
		}
		if m, err = m.Resize(size, size); err != nil {
			s.writeError(w, err)
			return
		}
	}

	data, err := m.PNG()
	if err != nil {
		s.writeError(w, sperrors.Wrap(sperrors.ErrCodeInternal, err, "encode character mask"))
		return
	}
	writePNG(w, data)
}

// handleBackgroundMask returns the background removal mask.
func (s *Server) handleBackgroundMask(w http.ResponseWriter, r *http.Request) {
	data, err := mask.BackgroundRemovalMask().PNG()
	if err != nil {
		s.writeError(w, sperrors.Wrap(sperrors.ErrCodeInternal, err, "encode background mask"))
		return
	}
	writePNG(w, data)
}

// handleSanitize re-sanitizes the book's stored layouts and saves them back.
// Loading already applies the sanitizer gate, so this persists the cleaned
// form for books written by older releases.
func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	if err := sperrors.ValidateBookID(bookID); err != nil {
		s.writeError(w, err)
		return
	}

	layouts, err := s.store.LoadLayouts(r.Context(), bookID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.SaveLayouts(r.Context(), bookID, layouts); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"book_id": bookID, "sanitized": len(layouts)})
}

// execute fills in the book-scoped inputs and runs the pipeline.
func (s *Server) execute(r *http.Request, opts pipeline.Options) (*pipeline.Result, error) {
	bookID := chi.URLParam(r, "bookID")
	story, err := s.loadStory(r)
	if err != nil {
		return nil, err
	}
	ills, err := s.store.LoadIllustrations(r.Context(), bookID)
	if err != nil {
		return nil, err
	}

	opts.BookID = bookID
	opts.Story = story
	opts.Illustrations = ills
	opts.Logger = s.logger
	return s.runner.Execute(r.Context(), opts)
}

// loadStory fetches the request's book from the store.
func (s *Server) loadStory(r *http.Request) (*book.Story, error) {
	bookID := chi.URLParam(r, "bookID")
	if err := sperrors.ValidateBookID(bookID); err != nil {
		return nil, err
	}
	story, err := s.store.LoadStory(r.Context(), bookID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, sperrors.New(sperrors.ErrCodeBookNotFound, "book %s not found", bookID)
	}
	return story, nil
}

// pageParam parses and validates the {page} URL parameter.
func pageParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "page")
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, sperrors.New(sperrors.ErrCodeInvalidPage, "invalid page number %q", raw)
	}
	if err := sperrors.ValidatePageNumber(page); err != nil {
		return 0, err
	}
	return page, nil
}

