// Package sink renders laid-out pages into output artifacts.
//
// The JSON sink is the export contract for the downstream print pipeline;
// the PNG sink rasterizes a proofing preview of a page layout.
package sink

import (
	"encoding/json"

	"github.com/foldline/storypress/pkg/layout"
	"github.com/foldline/storypress/pkg/spread"
)

// RenderJSON serializes one page layout for the export pipeline.
func RenderJSON(l layout.PageLayout) ([]byte, error) {
	return layout.MarshalLayout(l)
}

// RenderSpreadsJSON serializes a book's spreads for the preview viewer.
func RenderSpreadsJSON(spreads []spread.Spread) ([]byte, error) {
	return json.MarshalIndent(spreads, "", "  ")
}

// RenderPageSpreadsJSON serializes the simplified landscape model.
func RenderPageSpreadsJSON(spreads []spread.PageSpread) ([]byte, error) {
	return json.MarshalIndent(spreads, "", "  ")
}
