package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rollcall/internal/logging"
)

// fileRecord is the on-disk shape. group_a/group_b are read for files
// written before the groups were renamed; they are never written.
type fileRecord struct {
	Primary   *[]string `json:"primary,omitempty"`
	Secondary *[]string `json:"secondary,omitempty"`
	GroupA    *[]string `json:"group_a,omitempty"`
	GroupB    *[]string `json:"group_b,omitempty"`
}

// Store persists a roster to a JSON file and owns the in-memory copy.
// It is safe for concurrent use.
type Store struct {
	path string

	mu      sync.RWMutex
	current Roster
}

// Open creates a store for path and loads whatever is there.
func Open(path string) *Store {
	s := &Store{path: path}
	s.current = s.Load()
	return s
}

// Path returns the roster file location.
func (s *Store) Path() string {
	return s.path
}

// Current returns a copy of the in-memory roster.
func (s *Store) Current() Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Load reads the roster file. A missing or unreadable file, or one that does
// not parse, yields an empty roster; the problem is logged, not returned.
func (s *Store) Load() Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.RosterDebug("no roster at %s, starting empty", s.path)
		} else {
			logging.RosterWarn("failed to read roster %s: %v", s.path, err)
		}
		return Empty()
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		logging.RosterWarn("failed to parse roster %s: %v", s.path, err)
		return Empty()
	}

	primary, secondary := deref(rec.Primary), deref(rec.Secondary)
	if rec.Primary == nil && rec.Secondary == nil {
		primary, secondary = deref(rec.GroupA), deref(rec.GroupB)
	}

	r := Build(primary, secondary)
	if len(r.Primary) != len(primary) || len(r.Secondary) != len(secondary) {
		logging.RosterWarn("roster %s needed cleaning on load", s.path)
	}
	p, sec, _ := r.Counts()
	logging.Roster("loaded roster: primary=%d secondary=%d", p, sec)
	return r
}

func deref(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}

// Replace re-derives both groups from raw lines, persists the result and
// returns it.
func (s *Store) Replace(rawPrimary, rawSecondary []string) (Roster, error) {
	r := Build(rawPrimary, rawSecondary)
	if err := s.Save(r); err != nil {
		return Roster{}, err
	}
	p, sec, _ := r.Counts()
	logging.Roster("replaced roster: primary=%d secondary=%d", p, sec)
	return r.clone(), nil
}

// ReplaceText is Replace for pasted blocks with one name per line.
func (s *Store) ReplaceText(primaryBlock, secondaryBlock string) (Roster, error) {
	return s.Replace(SplitLines(primaryBlock), SplitLines(secondaryBlock))
}

// Save writes r to a temporary file beside the target and renames it into
// place, so a reader sees either the old file or the new one.
func (s *Store) Save(r Roster) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r = r.clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		logging.RosterError("failed to save roster %s: %v", s.path, err)
		return err
	}

	s.current = r
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create roster directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
