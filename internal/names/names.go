// Package names holds the name set shared by both matching strategies and the
// text normalizer that strips noise characters from submitted text.
package names

import "sort"

// Set is an unordered collection of names compared by exact string value.
type Set map[string]struct{}

// NewSet builds a set from the given names.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts a name.
func (s Set) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the names in code-point order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members of target that are also in s.
func (s Set) Intersect(target []string) Set {
	out := make(Set)
	for _, name := range target {
		if s.Has(name) {
			out.Add(name)
		}
	}
	return out
}
