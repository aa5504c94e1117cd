package rpp

import (
	"os"
	"strings"

	"reabatch/internal/textutil"
)

// Catalog resolves preset references used by rules. A reference is either
// a path to an existing file or the name of a known preset.
type Catalog struct {
	presets []Preset
}

// NewCatalog combines preset sources. Earlier sources win name lookups.
func NewCatalog(sources ...[]Preset) *Catalog {
	c := &Catalog{}
	for _, src := range sources {
		c.presets = append(c.presets, src...)
	}
	return c
}

// Presets returns every known preset in source order.
func (c *Catalog) Presets() []Preset {
	return append([]Preset(nil), c.presets...)
}

// Resolve maps ref to a preset file path. Existing file paths are returned
// unchanged. Names match case-insensitively against display names, then
// against sanitized tokens.
func (c *Catalog) Resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return ref, true
	}
	folded := textutil.Fold(ref)
	for _, p := range c.presets {
		if textutil.Fold(p.Name) == folded {
			return p.Path, true
		}
	}
	token := textutil.SanitizePresetName(ref)
	for _, p := range c.presets {
		if textutil.SanitizePresetName(p.Name) == token {
			return p.Path, true
		}
	}
	return "", false
}

// ForKeyword returns the preset whose name equals keyword, ignoring case.
// Rules without an explicit preset use it.
func (c *Catalog) ForKeyword(keyword string) (string, bool) {
	keyword = textutil.FoldKeyword(keyword)
	if keyword == "" {
		return "", false
	}
	for _, p := range c.presets {
		if textutil.FoldKeyword(p.Name) == keyword {
			return p.Path, true
		}
	}
	return "", false
}
