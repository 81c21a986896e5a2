package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rollcall/internal/names"
)

// ErrUnparseable is returned when model output holds no JSON string array.
var ErrUnparseable = errors.New("model output is not a JSON string array")

// ParseNames pulls the JSON array out of model output and cleans each entry.
// Code fences are stripped and everything outside the first '[' and the last
// ']' is ignored. Entries that clean to fewer than two runes are dropped.
func ParseNames(content string, class names.CharClass) (names.Set, error) {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return names.NewSet(), ErrUnparseable
	}

	var raw []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return names.NewSet(), fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	out := names.NewSet()
	for _, r := range raw {
		if name, ok := class.CleanName(r); ok {
			out.Add(name)
		}
	}
	return out, nil
}
