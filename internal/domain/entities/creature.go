package entities

import (
	"errors"
	"sort"
)

// CatalogEntry maps a dex number to the key its detail documents are stored under.
type CatalogEntry struct {
	DexNumber    int64  `json:"dex_number"`
	ReferenceKey string `json:"reference_key"`
}

// CreatureRecord is one catalog entry normalized for materialization.
// Description and EvolvesFrom are empty when the source has none.
type CreatureRecord struct {
	Name        string   `json:"name"`
	DexNumber   int64    `json:"dex_number"`
	Description string   `json:"description,omitempty"`
	Height      int64    `json:"height"`
	Weight      int64    `json:"weight"`
	EvolvesFrom string   `json:"evolves_from,omitempty"`
	Categories  []string `json:"categories"`
}

// HasAncestor reports whether the record declares a predecessor.
func (r *CreatureRecord) HasAncestor() bool {
	return r.EvolvesFrom != ""
}

// Validate checks the fields every record must carry.
func (r *CreatureRecord) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	for _, c := range r.Categories {
		if c == "" {
			return errors.New("category name is empty")
		}
	}
	return nil
}

// CategorySet collapses duplicate category names and returns them sorted.
func CategorySet(names ...string) []string {
	seen := make(map[string]struct{}, len(names))
	set := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		set = append(set, n)
	}
	sort.Strings(set)
	return set
}
