package layout

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
)

// DefaultTemplateName is the catalog fallback for unknown template names.
const DefaultTemplateName = "hero_spread"

//go:embed templates.toml
var templatesTOML []byte

var (
	catalogOnce sync.Once
	catalog     map[string]LayoutTemplate
	catalogErr  error
)

// loadCatalog parses the embedded catalog once.
// The TOML is authored alongside this package, so a parse failure is a
// programming error surfaced on first use rather than at import time.
func loadCatalog() {
	var raw map[string]LayoutTemplate
	if err := toml.Unmarshal(templatesTOML, &raw); err != nil {
		catalogErr = fmt.Errorf("parse template catalog: %w", err)
		return
	}
	for name, t := range raw {
		t.Name = name
		raw[name] = t
	}
	if _, ok := raw[DefaultTemplateName]; !ok {
		catalogErr = fmt.Errorf("template catalog missing default %q", DefaultTemplateName)
		return
	}
	catalog = raw
}

// ResolveTemplate returns the named template, falling back to the default
// for unknown names. It never fails for a bad name: an unknown template is a
// degrade-don't-fail case, the page still gets laid out.
func ResolveTemplate(name string) LayoutTemplate {
	catalogOnce.Do(loadCatalog)
	if catalogErr != nil {
		// Embedded catalog is broken; nothing sensible to lay out with.
		panic(catalogErr)
	}
	if t, ok := catalog[name]; ok {
		return t
	}
	return catalog[DefaultTemplateName]
}

// TemplateNames returns all catalog entry names, sorted.
func TemplateNames() []string {
	catalogOnce.Do(loadCatalog)
	if catalogErr != nil {
		panic(catalogErr)
	}
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasTemplate reports whether a template name exists in the catalog.
func HasTemplate(name string) bool {
	catalogOnce.Do(loadCatalog)
	if catalogErr != nil {
		panic(catalogErr)
	}
	_, ok := catalog[name]
	return ok
}
