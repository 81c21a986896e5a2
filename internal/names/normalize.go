package names

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinNameRunes is the shortest cleaned candidate accepted as a name.
const MinNameRunes = 2

// CharClass names the set of characters permitted inside a personal name.
type CharClass string

const (
	// ClassHan permits the basic CJK unified ideographs U+4E00..U+9FA5.
	ClassHan CharClass = "han"
	// ClassHanExt permits every rune in the Unicode Han script.
	ClassHanExt CharClass = "han-ext"
	// ClassLatin permits the basic Han range plus ASCII letters.
	ClassLatin CharClass = "latin"
)

// DefaultClass is used when no class is configured.
const DefaultClass = ClassHan

// ValidClasses lists the supported character classes.
var ValidClasses = []CharClass{ClassHan, ClassHanExt, ClassLatin}

// ParseCharClass resolves a configured class name. Empty selects DefaultClass.
func ParseCharClass(s string) (CharClass, error) {
	if s == "" {
		return DefaultClass, nil
	}
	for _, c := range ValidClasses {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown character class %q (valid: %v)", s, ValidClasses)
}

// Permits reports whether r may appear in a name.
func (c CharClass) Permits(r rune) bool {
	switch c {
	case ClassHanExt:
		return unicode.Is(unicode.Han, r)
	case ClassLatin:
		return isBasicHan(r) || (r < utf8.RuneSelf && ('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'))
	default:
		return isBasicHan(r)
	}
}

func isBasicHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}

// Normalize folds compatibility forms (full-width letters, CJK compatibility
// ideographs) to their canonical characters and deletes every rune the class
// does not permit. Permitted neighbours collapse together.
func (c CharClass) Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded := norm.NFKC.String(text)
	return strings.Map(func(r rune) rune {
		if c.Permits(r) {
			return r
		}
		return -1
	}, folded)
}

// CleanName normalizes a raw candidate and reports whether enough permitted
// characters survived for it to count as a name.
func (c CharClass) CleanName(raw string) (string, bool) {
	clean := c.Normalize(raw)
	if utf8.RuneCountInString(clean) < MinNameRunes {
		return "", false
	}
	return clean, true
}

// Normalize applies DefaultClass.
func Normalize(text string) string {
	return DefaultClass.Normalize(text)
}

// CleanName applies DefaultClass.
func CleanName(raw string) (string, bool) {
	return DefaultClass.CleanName(raw)
}
