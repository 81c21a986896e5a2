// Package report computes attendance metrics for one reconciliation run.
package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"rollcall/internal/logging"
	"rollcall/internal/names"
)

// Report is the result of reconciling a target list against candidates.
type Report struct {
	Total        int      `json:"total"`
	PresentCount int      `json:"present_count"`
	MissingCount int      `json:"missing_count"`
	Percent      float64  `json:"percent"`
	Present      []string `json:"present"`
	Missing      []string `json:"missing"`
}

// PercentString formats Percent with one decimal, e.g. "60.0%".
func (r Report) PercentString() string {
	return fmt.Sprintf("%.1f%%", r.Percent)
}

// Notice renders the reminder for missing members: prefix followed by each
// missing name behind mention, space separated. Empty when nobody is missing.
func (r Report) Notice(prefix, mention string) string {
	if len(r.Missing) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	for i, name := range r.Missing {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(mention)
		sb.WriteString(name)
	}
	return sb.String()
}

// Builder builds reports with a fixed name ordering.
type Builder struct {
	mu       sync.Mutex // collate.Collator is not safe for concurrent use
	collator *collate.Collator
}

// NewBuilder returns a Builder. An empty locale orders names by code point;
// otherwise names are collated for the BCP 47 locale with a code-point
// tiebreak.
func NewBuilder(locale string) (*Builder, error) {
	b := &Builder{}
	if locale == "" {
		return b, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid sort locale %q: %w", locale, err)
	}
	b.collator = collate.New(tag)
	return b, nil
}

// Build computes the report. Candidates outside target are discarded and
// duplicate target entries count once.
func (b *Builder) Build(target []string, candidates names.Set) Report {
	all := names.NewSet(target...)
	present := candidates.Intersect(target)

	missing := make([]string, 0, all.Len()-present.Len())
	for name := range all {
		if !present.Has(name) {
			missing = append(missing, name)
		}
	}

	r := Report{
		Total:        all.Len(),
		PresentCount: present.Len(),
		MissingCount: len(missing),
		Present:      b.sorted(present.Sorted()),
		Missing:      b.sorted(missing),
	}
	if r.Total > 0 {
		r.Percent = float64(r.PresentCount) / float64(r.Total) * 100
	}

	logging.ReportDebug("report: total=%d present=%d missing=%d", r.Total, r.PresentCount, r.MissingCount)
	return r
}

func (b *Builder) sorted(list []string) []string {
	if b.collator == nil {
		sort.Strings(list)
		return list
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(list, func(i, j int) bool {
		if c := b.collator.CompareString(list[i], list[j]); c != 0 {
			return c < 0
		}
		return list[i] < list[j]
	})
	return list
}

// Build uses code-point ordering.
func Build(target []string, candidates names.Set) Report {
	var b Builder
	return b.Build(target, candidates)
}
