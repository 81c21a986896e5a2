package extract

import (
	"context"
	"strings"

	"rollcall/internal/logging"
)

// ModelList is the set of selectors offered to the user.
type ModelList struct {
	Names   []Selector
	Default int
}

// DefaultSelector returns the entry at Default, or empty for an empty list.
func (l ModelList) DefaultSelector() Selector {
	if l.Default < 0 || l.Default >= len(l.Names) {
		return ""
	}
	return l.Names[l.Default]
}

// Models lists local models, then the cloud selector when a credential is
// configured. With no reachable local backend the list is the cloud
// selector alone.
func (e *Extractor) Models(ctx context.Context) ModelList {
	var list ModelList

	if e.opts.Local != nil && e.opts.LocalEnabled {
		models, err := e.opts.Local.ListModels(ctx)
		if err != nil {
			logging.ExtractDebug("local model listing failed: %v", err)
		}
		for _, m := range models {
			list.Names = append(list.Names, Selector(m))
		}
	}

	if len(list.Names) == 0 {
		return ModelList{Names: []Selector{CloudSelector}}
	}

	if e.opts.Prefer != "" {
		for i, m := range list.Names {
			if strings.Contains(string(m), e.opts.Prefer) {
				list.Default = i
				break
			}
		}
	}
	if e.opts.Cloud != nil {
		list.Names = append(list.Names, CloudSelector)
	}
	return list
}
