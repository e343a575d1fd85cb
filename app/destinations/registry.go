package destinations

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry loads the destination page list. There is deliberately no caching:
// each distribution run calls Load again, so rotated access tokens take
// effect on the next cycle without a restart.
type Registry struct {
	path string
}

func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// Load reads and validates the configured destinations. A missing file, a
// non-list document, or any entry with a missing field fails the whole load;
// a partially valid configuration is never partially accepted.
func (r *Registry) Load() ([]Destination, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read destinations config %s: %w", r.path, err)
	}

	var pages []Destination
	if err := yaml.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("failed to parse destinations config %s: %w", r.path, err)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no destinations configured in %s", r.path)
	}

	seen := make(map[string]bool, len(pages))
	for i, page := range pages {
		requiredFields := map[string]string{
			"page_id":      page.ID,
			"access_token": page.AccessToken,
			"page_name":    page.Name,
		}
		for fieldName, fieldValue := range requiredFields {
			if fieldValue == "" {
				return nil, fmt.Errorf("destination at index %d is missing required field '%s'", i, fieldName)
			}
		}

		if seen[page.ID] {
			return nil, fmt.Errorf("duplicate destination page_id '%s' at index %d", page.ID, i)
		}
		seen[page.ID] = true
	}

	return pages, nil
}
