package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/ports"
	"github.com/ersonp/dexgraph/internal/infrastructure/parsers"
)

var (
	// ErrMissingRecord marks an entry whose species or details document is
	// absent. The loader skips such entries.
	ErrMissingRecord = errors.New("missing record")

	// ErrInvalidRecord marks a document that is present but lacks required fields.
	ErrInvalidRecord = errors.New("invalid record")
)

// DefaultLanguage is the flavor text language used for descriptions.
const DefaultLanguage = "en"

// RecordExtractor loads an entry's two documents and normalizes them.
type RecordExtractor struct {
	source   ports.CatalogSource
	language string
}

// NewRecordExtractor creates a new RecordExtractor. An empty language means DefaultLanguage.
func NewRecordExtractor(source ports.CatalogSource, language string) *RecordExtractor {
	if language == "" {
		language = DefaultLanguage
	}
	return &RecordExtractor{source: source, language: language}
}

// Extract builds the record for one catalog entry.
func (e *RecordExtractor) Extract(ctx context.Context, entry entities.CatalogEntry) (*entities.CreatureRecord, error) {
	speciesName := parsers.SpeciesDocumentName(entry.ReferenceKey)
	var species *parsers.SpeciesDocument
	err := e.read(ctx, speciesName, func(r io.Reader) (err error) {
		species, err = parsers.ParseSpecies(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	detailsName := parsers.DetailsDocumentName(entry.ReferenceKey)
	var details *parsers.DetailsDocument
	err = e.read(ctx, detailsName, func(r io.Reader) (err error) {
		details, err = parsers.ParseDetails(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	height, err := details.Height.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: height %q: %w", ErrInvalidRecord, detailsName, details.Height, err)
	}
	weight, err := details.Weight.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: weight %q: %w", ErrInvalidRecord, detailsName, details.Weight, err)
	}

	record := &entities.CreatureRecord{
		Name:        entities.NormalizeName(species.Name),
		DexNumber:   entry.DexNumber,
		Description: Description(species, e.language),
		Height:      height,
		Weight:      weight,
		Categories:  categoryNames(details),
	}
	if species.EvolvesFromSpecies != nil {
		record.EvolvesFrom = entities.NormalizeName(species.EvolvesFromSpecies.Name)
	}

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, speciesName, err)
	}
	return record, nil
}

// read opens a document and hands it to parse, classifying failures.
func (e *RecordExtractor) read(ctx context.Context, name string, parse func(io.Reader) error) error {
	r, err := e.source.Open(ctx, name)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %w", ErrMissingRecord, err)
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer r.Close()

	if err := parse(r); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRecord, name, err)
	}
	return nil
}

// Description returns the first flavor text in the given language, or "" if none.
func Description(species *parsers.SpeciesDocument, language string) string {
	for _, ft := range species.FlavorTextEntries {
		if ft.Language.Name == language {
			return ft.FlavorText
		}
	}
	return ""
}

func categoryNames(details *parsers.DetailsDocument) []string {
	names := make([]string, 0, len(details.Types))
	for _, slot := range details.Types {
		names = append(names, slot.Type.Name)
	}
	return entities.CategorySet(names...)
}
