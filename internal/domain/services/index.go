package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/ports"
	"github.com/ersonp/dexgraph/internal/infrastructure/parsers"
)

// ErrIndex marks a failure to build the catalog index. It aborts the load.
var ErrIndex = errors.New("building catalog index")

// referenceSegment is the position of the reference key in a species URL,
// e.g. https://pokeapi.co/api/v2/pokemon-species/1/ has key "1".
const referenceSegment = 6

// CatalogIndex maps dex numbers to reference keys in first-occurrence order.
type CatalogIndex struct {
	entries  []entities.CatalogEntry
	position map[int64]int
}

// NewCatalogIndex creates an empty index.
func NewCatalogIndex() *CatalogIndex {
	return &CatalogIndex{position: make(map[int64]int)}
}

// Put records an entry. A repeated dex number keeps its position and takes the new key.
func (i *CatalogIndex) Put(entry entities.CatalogEntry) {
	if pos, ok := i.position[entry.DexNumber]; ok {
		i.entries[pos].ReferenceKey = entry.ReferenceKey
		return
	}
	i.position[entry.DexNumber] = len(i.entries)
	i.entries = append(i.entries, entry)
}

// Lookup returns the reference key for a dex number.
func (i *CatalogIndex) Lookup(dexNumber int64) (string, bool) {
	pos, ok := i.position[dexNumber]
	if !ok {
		return "", false
	}
	return i.entries[pos].ReferenceKey, true
}

// Entries returns a copy of the entries in iteration order.
func (i *CatalogIndex) Entries() []entities.CatalogEntry {
	out := make([]entities.CatalogEntry, len(i.entries))
	copy(out, i.entries)
	return out
}

// Len returns the number of distinct dex numbers.
func (i *CatalogIndex) Len() int {
	return len(i.entries)
}

// CatalogIndexBuilder reads the top-level index document.
type CatalogIndexBuilder struct {
	source ports.CatalogSource
}

// NewCatalogIndexBuilder creates a new CatalogIndexBuilder.
func NewCatalogIndexBuilder(source ports.CatalogSource) *CatalogIndexBuilder {
	return &CatalogIndexBuilder{source: source}
}

// Build reads and parses the index document. Any failure wraps ErrIndex and
// no partial index is returned.
func (b *CatalogIndexBuilder) Build(ctx context.Context) (*CatalogIndex, error) {
	r, err := b.source.Open(ctx, parsers.IndexDocumentName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}
	defer r.Close()

	doc, err := parsers.ParseIndex(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndex, err)
	}

	index := NewCatalogIndex()
	for n, e := range doc.Entries {
		dex, err := e.EntryNumber.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: invalid entry_number %q: %w", ErrIndex, n+1, e.EntryNumber, err)
		}
		ref, err := ReferenceKey(e.Species.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrIndex, n+1, err)
		}
		index.Put(entities.CatalogEntry{DexNumber: dex, ReferenceKey: ref})
	}
	return index, nil
}

// ReferenceKey extracts the lower-cased reference key from a species URL.
func ReferenceKey(url string) (string, error) {
	parts := strings.Split(url, "/")
	if len(parts) <= referenceSegment || parts[referenceSegment] == "" {
		return "", fmt.Errorf("species url %q has no reference segment", url)
	}
	return strings.ToLower(parts[referenceSegment]), nil
}
