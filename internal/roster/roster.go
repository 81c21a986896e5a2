// Package roster holds the two-group roster and its durable store.
//
// A roster has a primary and a secondary group. Both keep entry order, and a
// name in primary never appears in secondary: primary wins every conflict.
package roster

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRoster is returned when saving a roster that breaks the
// primary/secondary invariant or holds an empty name.
var ErrInvalidRoster = errors.New("invalid roster")

// Roster is the authoritative membership list.
type Roster struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
}

// Scope selects the target population of a run.
type Scope string

const (
	ScopePrimary Scope = "primary"
	ScopeAll     Scope = "all"
)

// ParseScope resolves a scope flag. Empty selects ScopePrimary.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopePrimary:
		return ScopePrimary, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", fmt.Errorf("unknown scope %q (valid: primary, all)", s)
}

// Empty returns a roster with two empty groups.
func Empty() Roster {
	return Roster{Primary: []string{}, Secondary: []string{}}
}

// Build derives a roster from raw lines: each line is trimmed, empty lines
// are dropped, duplicates keep their first position, and secondary loses any
// name already in primary.
func Build(rawPrimary, rawSecondary []string) Roster {
	primary := cleanLines(rawPrimary)
	inPrimary := make(map[string]struct{}, len(primary))
	for _, name := range primary {
		inPrimary[name] = struct{}{}
	}

	secondary := make([]string, 0, len(rawSecondary))
	for _, name := range cleanLines(rawSecondary) {
		if _, ok := inPrimary[name]; !ok {
			secondary = append(secondary, name)
		}
	}
	return Roster{Primary: primary, Secondary: secondary}
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// SplitLines splits a pasted block on \n or \r\n.
func SplitLines(block string) []string {
	if block == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
}

// Target returns the names a run reconciles against: primary, or primary
// followed by secondary.
func (r Roster) Target(scope Scope) []string {
	if scope == ScopeAll {
		out := make([]string, 0, len(r.Primary)+len(r.Secondary))
		out = append(out, r.Primary...)
		return append(out, r.Secondary...)
	}
	return append([]string(nil), r.Primary...)
}

// Counts returns the group sizes and their total.
func (r Roster) Counts() (primary, secondary, total int) {
	return len(r.Primary), len(r.Secondary), len(r.Primary) + len(r.Secondary)
}

// IsEmpty reports whether both groups are empty.
func (r Roster) IsEmpty() bool {
	return len(r.Primary) == 0 && len(r.Secondary) == 0
}

// Validate checks the cross-group uniqueness invariant.
func (r Roster) Validate() error {
	inPrimary := make(map[string]struct{}, len(r.Primary))
	for _, name := range r.Primary {
		if strings.TrimSpace(name) != name || name == "" {
			return fmt.Errorf("%w: untrimmed or empty name %q", ErrInvalidRoster, name)
		}
		inPrimary[name] = struct{}{}
	}
	for _, name := range r.Secondary {
		if strings.TrimSpace(name) != name || name == "" {
			return fmt.Errorf("%w: untrimmed or empty name %q", ErrInvalidRoster, name)
		}
		if _, ok := inPrimary[name]; ok {
			return fmt.Errorf("%w: %q is in both groups", ErrInvalidRoster, name)
		}
	}
	return nil
}

// Equal reports whether both groups hold the same names in the same order.
func (r Roster) Equal(other Roster) bool {
	return equalSlices(r.Primary, other.Primary) && equalSlices(r.Secondary, other.Secondary)
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (r Roster) clone() Roster {
	return Roster{
		Primary:   append([]string{}, r.Primary...),
		Secondary: append([]string{}, r.Secondary...),
	}
}
