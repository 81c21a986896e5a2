// Package match implements the deterministic turbo strategy: a roster name is
// present when it appears verbatim in the submitted text.
package match

import (
	"strings"

	"rollcall/internal/logging"
	"rollcall/internal/names"
)

// Turbo checks each target name against the raw text and its normalized
// form. The raw form keeps exact matches for names with characters the
// class strips; the normalized form recovers names broken up by digits,
// punctuation, whitespace or emoji.
type Turbo struct {
	class names.CharClass
}

// NewTurbo creates a matcher normalizing with class.
func NewTurbo(class names.CharClass) *Turbo {
	if class == "" {
		class = names.DefaultClass
	}
	return &Turbo{class: class}
}

// Match returns the target names found in rawText.
func (t *Turbo) Match(target []string, rawText string) names.Set {
	found := make(names.Set)
	if rawText == "" {
		return found
	}

	clean := t.class.Normalize(rawText)
	for _, name := range target {
		if name == "" {
			continue
		}
		if strings.Contains(rawText, name) || strings.Contains(clean, name) {
			found.Add(name)
		}
	}

	logging.MatchDebug("turbo matched %d/%d names (text=%d runes, normalized=%d bytes)",
		found.Len(), len(target), len([]rune(rawText)), len(clean))
	return found
}
