package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/mocks"
	"github.com/ersonp/dexgraph/internal/infrastructure/parsers"
)

// species describes one fixture entry.
type species struct {
	dex         int
	ref         string
	name        string
	evolvesFrom string
	flavor      [][2]string // language, text
	height      int
	weight      int
	types       []string
}

// catalog writes the index and per-entry documents into a mock source.
// Entries with skipDetails set get no details document.
func catalog(t *testing.T, entries []species, skipDetails ...string) *mocks.CatalogSource {
	t.Helper()
	src := mocks.NewCatalogSource()

	index := map[string]any{"pokemon_entries": []any{}}
	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, map[string]any{
			"entry_number": e.dex,
			"pokemon_species": map[string]any{
				"name": e.name,
				"url":  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon-species/%s/", e.ref),
			},
		})

		flavor := make([]any, 0, len(e.flavor))
		for _, f := range e.flavor {
			flavor = append(flavor, map[string]any{
				"flavor_text": f[1],
				"language":    map[string]any{"name": f[0]},
			})
		}
		sp := map[string]any{"name": e.name, "flavor_text_entries": flavor}
		if e.evolvesFrom != "" {
			sp["evolves_from_species"] = map[string]any{"name": e.evolvesFrom}
		}
		src.Documents[parsers.SpeciesDocumentName(e.ref)] = mustJSON(t, sp)

		if contains(skipDetails, e.ref) {
			continue
		}
		types := make([]any, 0, len(e.types))
		for i, name := range e.types {
			types = append(types, map[string]any{"slot": i + 1, "type": map[string]any{"name": name}})
		}
		src.Documents[parsers.DetailsDocumentName(e.ref)] = mustJSON(t, map[string]any{
			"height": e.height,
			"weight": e.weight,
			"types":  types,
		})
	}
	index["pokemon_entries"] = list
	src.Documents[parsers.IndexDocumentName] = mustJSON(t, index)

	return src
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var (
	bulbasaur = species{
		dex: 1, ref: "1", name: "bulbasaur",
		flavor: [][2]string{{"ja", "ふしぎなタネ"}, {"en", "A strange seed was planted on its back at birth."}},
		height: 7, weight: 69, types: []string{"poison", "grass"},
	}
	ivysaur = species{
		dex: 2, ref: "2", name: "ivysaur", evolvesFrom: "bulbasaur",
		flavor: [][2]string{{"en", "When the bulb on its back grows large, it appears to lose the ability to stand."}},
		height: 10, weight: 130, types: []string{"grass", "poison"},
	}
	charmander = species{
		dex: 4, ref: "4", name: "charmander",
		flavor: [][2]string{{"fr", "La flamme de sa queue symbolise sa vitalité."}},
		height: 6, weight: 85, types: []string{"fire"},
	}
)

// nameOwners returns the entities of kind named name in the mock store.
func nameOwners(t *testing.T, store *mocks.GraphStore, kind entities.EntityKind, name string) []*entities.Entity {
	t.Helper()
	return store.NamedEntities(kind, name)
}

// recorder is a LoadObserver that records events.
type recorder struct {
	loaded   []LoadSummary
	skipped  []entities.CatalogEntry
	finished *LoadReport
	err      error
}

func (r *recorder) EntryLoaded(_ context.Context, s LoadSummary) error {
	r.loaded = append(r.loaded, s)
	return r.err
}

func (r *recorder) EntrySkipped(_ context.Context, e entities.CatalogEntry, _ error) {
	r.skipped = append(r.skipped, e)
}

func (r *recorder) LoadFinished(_ context.Context, report *LoadReport) {
	r.finished = report
}
