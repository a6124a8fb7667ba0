// Package parsers decodes the catalog's JSON documents into typed structures.
package parsers

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is wrapped when a document lacks a required field.
var ErrMissingField = errors.New("missing required field")

// IndexDocumentName is the name of the top-level catalog listing.
const IndexDocumentName = "pokemon.json"

// SpeciesDocumentName returns the species document name for a reference key.
func SpeciesDocumentName(ref string) string {
	return "pokemon-" + ref + ".json"
}

// DetailsDocumentName returns the details document name for a reference key.
func DetailsDocumentName(ref string) string {
	return "pokemon-details-" + ref + ".json"
}

// NamedResource is a name/url pair as used throughout the catalog.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// IndexDocument is the top-level catalog listing.
type IndexDocument struct {
	Entries []IndexEntry `json:"pokemon_entries"`
}

// IndexEntry is one listing in the index document.
type IndexEntry struct {
	EntryNumber json.Number   `json:"entry_number"`
	Species     NamedResource `json:"pokemon_species"`
}

// SpeciesDocument holds the per-entry species data.
type SpeciesDocument struct {
	Name               string         `json:"name"`
	FlavorTextEntries  []FlavorText   `json:"flavor_text_entries"`
	EvolvesFromSpecies *NamedResource `json:"evolves_from_species"`
}

// FlavorText is a localized description.
type FlavorText struct {
	FlavorText string        `json:"flavor_text"`
	Language   NamedResource `json:"language"`
}

// DetailsDocument holds the per-entry physical data and types.
type DetailsDocument struct {
	Height json.Number `json:"height"`
	Weight json.Number `json:"weight"`
	Types  []TypeSlot  `json:"types"`
}

// TypeSlot is one entry of the details document's types list.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

func missing(doc, field string) error {
	return fmt.Errorf("%s: %w: %s", doc, ErrMissingField, field)
}
