package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentNames(t *testing.T) {
	assert.Equal(t, "pokemon-1.json", SpeciesDocumentName("1"))
	assert.Equal(t, "pokemon-details-1.json", DetailsDocumentName("1"))
}

func TestParseIndex_ValidInput(t *testing.T) {
	input := `{"pokemon_entries": [
		{"entry_number": 1, "pokemon_species": {"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon-species/1/"}},
		{"entry_number": "2", "pokemon_species": {"name": "ivysaur", "url": "https://pokeapi.co/api/v2/pokemon-species/2/"}}
	]}`

	doc, err := ParseIndex(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Entries, 2)

	n, err := doc.Entries[0].EntryNumber.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = doc.Entries[1].EntryNumber.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "ivysaur", doc.Entries[1].Species.Name)
}

func TestParseIndex_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{name: "not json", input: "not json"},
		{name: "no entries list", input: `{"count": 3}`, field: "pokemon_entries"},
		{name: "entry without number", input: `{"pokemon_entries": [{"pokemon_species": {"url": "x"}}]}`, field: "entry_number"},
		{name: "entry without url", input: `{"pokemon_entries": [{"entry_number": 4, "pokemon_species": {"name": "charmander"}}]}`, field: "pokemon_species.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIndex(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.field != "" {
				assert.ErrorIs(t, err, ErrMissingField)
				assert.Contains(t, err.Error(), tt.field)
			}
		})
	}
}

func TestParseIndex_EmptyList(t *testing.T) {
	doc, err := ParseIndex(strings.NewReader(`{"pokemon_entries": []}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Entries)
}

func TestParseSpecies(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		input := `{
			"name": "Ivysaur",
			"evolves_from_species": {"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon-species/1/"},
			"flavor_text_entries": [
				{"flavor_text": "Quand son bourgeon", "language": {"name": "fr"}},
				{"flavor_text": "When the bulb on its back grows large", "language": {"name": "en"}}
			]
		}`
		doc, err := ParseSpecies(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, "Ivysaur", doc.Name)
		require.NotNil(t, doc.EvolvesFromSpecies)
		assert.Equal(t, "bulbasaur", doc.EvolvesFromSpecies.Name)
		require.Len(t, doc.FlavorTextEntries, 2)
		assert.Equal(t, "en", doc.FlavorTextEntries[1].Language.Name)
	})

	t.Run("null predecessor", func(t *testing.T) {
		doc, err := ParseSpecies(strings.NewReader(`{"name": "bulbasaur", "evolves_from_species": null, "flavor_text_entries": []}`))
		require.NoError(t, err)
		assert.Nil(t, doc.EvolvesFromSpecies)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := ParseSpecies(strings.NewReader(`{"flavor_text_entries": []}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("predecessor without name", func(t *testing.T) {
		_, err := ParseSpecies(strings.NewReader(`{"name": "ivysaur", "evolves_from_species": {"url": "x"}}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingField)
	})
}

func TestParseDetails(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		input := `{"height": 7, "weight": 69, "types": [
			{"slot": 2, "type": {"name": "poison"}},
			{"slot": 1, "type": {"name": "grass"}}
		]}`
		doc, err := ParseDetails(strings.NewReader(input))
		require.NoError(t, err)
		h, err := doc.Height.Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(7), h)
		w, err := doc.Weight.Int64()
		require.NoError(t, err)
		assert.Equal(t, int64(69), w)
		require.Len(t, doc.Types, 2)
		assert.Equal(t, "poison", doc.Types[0].Type.Name)
	})

	tests := []struct {
		name  string
		input string
	}{
		{name: "missing height", input: `{"weight": 69, "types": []}`},
		{name: "missing weight", input: `{"height": 7, "types": []}`},
		{name: "type without name", input: `{"height": 7, "weight": 69, "types": [{"slot": 1, "type": {}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDetails(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseDetails(strings.NewReader(`{"height": }`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMissingField)
	})
}
