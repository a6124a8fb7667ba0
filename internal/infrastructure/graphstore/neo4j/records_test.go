package neo4j

import (
	"testing"
	"time"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/dexgraph/internal/domain/entities"
)

func record(keys []string, values ...any) *neo4jdriver.Record {
	return &neo4jdriver.Record{Keys: keys, Values: values}
}

func TestFormatTime_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.FixedZone("CET", 3600))

	rec := record([]string{"created_at"}, formatTime(now))
	got, err := timeValue(rec, "created_at")

	require.NoError(t, err)
	assert.True(t, now.Equal(got))
}

func TestTimeValue_Missing(t *testing.T) {
	got, err := timeValue(record([]string{"created_at"}, nil), "created_at")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = timeValue(record([]string{"created_at"}, "yesterday"), "created_at")
	require.Error(t, err)
}

func TestStringValue(t *testing.T) {
	rec := record([]string{"name", "n"}, "pikachu", int64(3))

	s, err := stringValue(rec, "name")
	require.NoError(t, err)
	assert.Equal(t, "pikachu", s)

	_, err = stringValue(rec, "n")
	require.Error(t, err)

	_, err = stringValue(rec, "missing")
	require.Error(t, err)
}

func TestIntValue(t *testing.T) {
	rec := record([]string{"n", "name"}, int64(42), "x")

	n, err := intValue(rec, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = intValue(rec, "name")
	require.Error(t, err)
}

func TestEntityFromRecord(t *testing.T) {
	rec := record([]string{"id", "type", "created_at"}, "e1", "creature", "2024-03-01T12:00:00Z")

	e, err := entityFromRecord(rec)

	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, entities.EntityCreature, e.Type)
	assert.Equal(t, 2024, e.CreatedAt.Year())
}

func TestAttributeFromRecord(t *testing.T) {
	rec := record([]string{"id", "type", "value", "created_at"}, "a1", "height", "7", "2024-03-01T12:00:00Z")

	a, err := attributeFromRecord(rec)

	require.NoError(t, err)
	assert.Equal(t, entities.AttributeHeight, a.Type)
	n, err := a.Long()
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestSchemaTypeFromRecord(t *testing.T) {
	rec := record([]string{"name", "kind", "created_at"}, "evolves-from", "relation", nil)

	st, err := schemaTypeFromRecord(rec)

	require.NoError(t, err)
	assert.Equal(t, entities.KindRelation, st.Kind)
}

func TestRelationshipsFromRecords(t *testing.T) {
	keys := []string{"id", "type", "created_at", "role", "entity_id"}
	recs := []*neo4jdriver.Record{
		record(keys, "r1", "evolves-from", "2024-03-01T12:00:00Z", "ancestor", "bulbasaur"),
		record(keys, "r1", "evolves-from", "2024-03-01T12:00:00Z", "descendant", "ivysaur"),
		record(keys, "r2", "has-category", "2024-03-01T12:00:01Z", "bearer", "ivysaur"),
		record(keys, "r2", "has-category", "2024-03-01T12:00:01Z", "categorized-type", "grass"),
	}

	rels, err := relationshipsFromRecords(recs)

	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "r1", rels[0].ID)
	assert.Len(t, rels[0].Players, 2)

	ancestor, ok := rels[0].Player(entities.RoleAncestor)
	require.True(t, ok)
	assert.Equal(t, "bulbasaur", ancestor)

	category, ok := rels[1].Player(entities.RoleCategorizedType)
	require.True(t, ok)
	assert.Equal(t, "grass", category)
}

func TestPlayerParams(t *testing.T) {
	params := playerParams([]entities.RolePlayer{
		{Role: entities.RoleBearer, EntityID: "e1"},
	})

	assert.Equal(t, []map[string]any{{"role": "bearer", "entity_id": "e1"}}, params)
}

func TestSchemaParams(t *testing.T) {
	params := schemaParams(entities.DefaultSchema)

	require.Len(t, params, len(entities.DefaultSchema))
	for _, p := range params {
		assert.NotEmpty(t, p["name"])
		assert.Contains(t, []string{"entity", "attribute", "role", "relation"}, p["kind"])
	}
}
