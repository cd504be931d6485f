package prospects

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadListFile reads a prospect list from a JSON file. Used by the CLI to run the
// pipeline without a database.
func LoadListFile(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prospect list file %s: %w", path, err)
	}

	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse prospect list JSON: %w", err)
	}

	if list.ID == "" {
		return nil, fmt.Errorf("prospect list file %s is missing an id", path)
	}
	if len(list.Prospects) == 0 {
		return nil, fmt.Errorf("prospect list %s contains no prospects", list.ID)
	}
	for i, p := range list.Prospects {
		if p.ID == "" || p.Email == "" {
			return nil, fmt.Errorf("prospect at index %d is missing id or email", i)
		}
	}

	return &list, nil
}
