package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// ParseIndex decodes and validates the index document.
func ParseIndex(r io.Reader) (*IndexDocument, error) {
	var doc struct {
		Entries *[]IndexEntry `json:"pokemon_entries"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing index JSON: %w", err)
	}
	if doc.Entries == nil {
		return nil, missing("index", "pokemon_entries")
	}

	for i, e := range *doc.Entries {
		if e.EntryNumber == "" {
			return nil, missing(fmt.Sprintf("index entry %d", i+1), "entry_number")
		}
		if e.Species.URL == "" {
			return nil, missing(fmt.Sprintf("index entry %d", i+1), "pokemon_species.url")
		}
	}

	return &IndexDocument{Entries: *doc.Entries}, nil
}

// ParseSpecies decodes and validates a species document.
func ParseSpecies(r io.Reader) (*SpeciesDocument, error) {
	var doc SpeciesDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing species JSON: %w", err)
	}
	if doc.Name == "" {
		return nil, missing("species", "name")
	}
	if doc.EvolvesFromSpecies != nil && doc.EvolvesFromSpecies.Name == "" {
		return nil, missing("species", "evolves_from_species.name")
	}
	return &doc, nil
}

// ParseDetails decodes and validates a details document.
func ParseDetails(r io.Reader) (*DetailsDocument, error) {
	var doc DetailsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing details JSON: %w", err)
	}
	if doc.Height == "" {
		return nil, missing("details", "height")
	}
	if doc.Weight == "" {
		return nil, missing("details", "weight")
	}
	for i, slot := range doc.Types {
		if slot.Type.Name == "" {
			return nil, missing("details", fmt.Sprintf("types[%d].type.name", i))
		}
	}
	return &doc, nil
}
