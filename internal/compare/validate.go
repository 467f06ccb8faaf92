package compare

import (
	"strings"
	"unicode/utf8"
)

var validTypes = map[string]bool{
	TypeAdded:    true,
	TypeRemoved:  true,
	TypeModified: true,
}

// Aliases models tend to use instead of the three canonical types.
var typeAliases = map[string]string{
	"addition":     TypeAdded,
	"insert":       TypeAdded,
	"inserted":     TypeAdded,
	"new":          TypeAdded,
	"deleted":      TypeRemoved,
	"deletion":     TypeRemoved,
	"delete":       TypeRemoved,
	"changed":      TypeModified,
	"change":       TypeModified,
	"modification": TypeModified,
	"updated":      TypeModified,
}

const (
	maxDescriptionLen = 2000
	maxQuoteLen       = 4000
)

// ValidateDifference normalizes a difference in place. Returns false if the
// difference should be dropped.
func ValidateDifference(d *Difference) bool {
	if d == nil {
		return false
	}
	t := strings.ToLower(strings.TrimSpace(d.Type))
	if alias, ok := typeAliases[t]; ok {
		t = alias
	}
	if !validTypes[t] {
		return false
	}
	d.Type = t

	d.Description = clip(strings.TrimSpace(d.Description), maxDescriptionLen)
	d.Section = strings.TrimSpace(d.Section)
	d.NewFileText = clip(d.NewFileText, maxQuoteLen)
	d.OldFileText = clip(d.OldFileText, maxQuoteLen)
	d.Content = clip(d.Content, maxQuoteLen)

	if d.Description == "" && d.Content == "" && d.NewFileText == "" && d.OldFileText == "" {
		return false
	}
	if d.Position != nil && *d.Position < 0 {
		d.Position = nil
	}
	return true
}

// Sanitize drops invalid differences and trims the summary. It returns the
// number of differences removed.
func Sanitize(r *Result) int {
	if r == nil {
		return 0
	}
	kept := r.Differences[:0]
	for i := range r.Differences {
		d := r.Differences[i]
		if ValidateDifference(&d) {
			kept = append(kept, d)
		}
	}
	dropped := len(r.Differences) - len(kept)
	r.Differences = kept
	if r.Differences == nil {
		r.Differences = []Difference{}
	}
	r.Summary = strings.TrimSpace(r.Summary)
	return dropped
}

// clip cuts s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
