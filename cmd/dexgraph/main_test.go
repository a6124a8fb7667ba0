package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/services"
	"github.com/ersonp/dexgraph/internal/infrastructure/config"
)

var testCatalog = map[string]string{
	"pokemon.json": `{"pokemon_entries": [
		{"entry_number": 2, "pokemon_species": {"name": "ivysaur", "url": "https://pokeapi.co/api/v2/pokemon-species/2/"}},
		{"entry_number": 1, "pokemon_species": {"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon-species/1/"}},
		{"entry_number": 3, "pokemon_species": {"name": "venusaur", "url": "https://pokeapi.co/api/v2/pokemon-species/3/"}}
	]}`,
	"pokemon-1.json": `{"name": "bulbasaur", "flavor_text_entries": [
		{"flavor_text": "A strange seed was planted on its back at birth.", "language": {"name": "en"}}
	]}`,
	"pokemon-details-1.json": `{"height": 7, "weight": 69, "types": [{"slot": 1, "type": {"name": "grass"}}]}`,
	"pokemon-2.json": `{"name": "ivysaur", "evolves_from_species": {"name": "bulbasaur"}, "flavor_text_entries": []}`,
	"pokemon-details-2.json": `{"height": 10, "weight": 130, "types": [{"slot": 1, "type": {"name": "grass"}}]}`,
}

// setupProject creates a project directory with the catalog under data/ and
// makes it the working directory.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	for name, content := range testCatalog {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	globalLogMode = "prod"
	t.Cleanup(func() { globalLogMode = "" })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitCmd(t *testing.T) {
	dir := setupProject(t)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Provisioned")
	assert.True(t, config.Exists(dir))
	assert.FileExists(t, config.SQLitePath(dir))

	_, err = execute(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestLoadAndReadCmds(t *testing.T) {
	setupProject(t)

	out, err := execute(t, "load", "--dir", "data")
	require.NoError(t, err)
	assert.Contains(t, out, "Creating [ivysaur]")
	assert.Contains(t, out, "Missing record for entry [3]")
	assert.Contains(t, out, "Loaded:         2")
	assert.Contains(t, out, "Placeholders:   1 created, 1 upgraded")

	out, err = execute(t, "show", "bulbasaur")
	require.NoError(t, err)
	assert.Contains(t, out, "bulbasaur (#1)")
	assert.Contains(t, out, "Evolves into: ivysaur")

	out, err = execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Placeholders:          0")

	out, err = execute(t, "creatures")
	require.NoError(t, err)
	assert.Contains(t, out, "Creatures (2 total)")
}

func TestLoadCmd_DryRunAndMetrics(t *testing.T) {
	dir := setupProject(t)
	metricsFile := filepath.Join(dir, "load.prom")

	out, err := execute(t, "load", "--dir", "data", "--dry-run", "--quiet", "--metrics-file", metricsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run, nothing was written.")
	assert.NotContains(t, out, "Would create")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dexgraph_entries_total")
}

func TestLoadCmd_InvalidFlags(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "load", "--dir", "data", "--policy", "merge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placeholder_policy")

	_, err = execute(t, "load", "--limit", "-1")
	require.Error(t, err)
}

func TestShowCmd_NotFound(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "show", "mew")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creature not found")
}

func TestSearchCmd_Disabled(t *testing.T) {
	setupProject(t)

	_, err := execute(t, "search", "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description search is disabled")
}

func TestEntryPrinter(t *testing.T) {
	var out bytes.Buffer
	p := &entryPrinter{out: &out}

	err := p.EntryLoaded(context.Background(), services.LoadSummary{
		Record: &entities.CreatureRecord{
			Name:        "ivysaur",
			DexNumber:   2,
			EvolvesFrom: "bulbasaur",
			Height:      10,
			Weight:      130,
			Categories:  []string{"grass", "poison"},
		},
	})
	require.NoError(t, err)
	p.EntrySkipped(context.Background(), entities.CatalogEntry{DexNumber: 7}, errors.New("missing"))

	assert.Equal(t, `Would create [ivysaur]
    Dex Number    [2]
    Evolves From  [bulbasaur]
    Description   []
    Height        [10]
    Weight        [130]
    Categories:
        -> [grass]
        -> [poison]
Missing record for entry [7]
`, out.String())
}
