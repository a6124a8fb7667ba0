package neo4j

import (
	"fmt"
	"time"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ersonp/dexgraph/internal/domain/entities"
)

// Timestamps are stored as RFC 3339 strings.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func stringValue(rec *neo4jdriver.Record, key string) (string, error) {
	v, ok := rec.Get(key)
	if !ok {
		return "", fmt.Errorf("record has no %q column", key)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("column %q: expected string, got %T", key, v)
	}
}

func intValue(rec *neo4jdriver.Record, key string) (int64, error) {
	v, ok := rec.Get(key)
	if !ok {
		return 0, fmt.Errorf("record has no %q column", key)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("column %q: expected integer, got %T", key, v)
	}
	return n, nil
}

func timeValue(rec *neo4jdriver.Record, key string) (time.Time, error) {
	s, err := stringValue(rec, key)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %q: %w", key, err)
	}
	return t, nil
}

// scan reads string columns in order.
func scan(rec *neo4jdriver.Record, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	for i, k := range keys {
		s, err := stringValue(rec, k)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func schemaTypeFromRecord(rec *neo4jdriver.Record) (*entities.SchemaType, error) {
	cols, err := scan(rec, "name", "kind")
	if err != nil {
		return nil, err
	}
	created, err := timeValue(rec, "created_at")
	if err != nil {
		return nil, err
	}
	return &entities.SchemaType{
		Name:      cols[0],
		Kind:      entities.ConceptKind(cols[1]),
		CreatedAt: created,
	}, nil
}

func entityFromRecord(rec *neo4jdriver.Record) (*entities.Entity, error) {
	cols, err := scan(rec, "id", "type")
	if err != nil {
		return nil, err
	}
	created, err := timeValue(rec, "created_at")
	if err != nil {
		return nil, err
	}
	return &entities.Entity{
		ID:        cols[0],
		Type:      entities.EntityKind(cols[1]),
		CreatedAt: created,
	}, nil
}

func attributeFromRecord(rec *neo4jdriver.Record) (*entities.Attribute, error) {
	cols, err := scan(rec, "id", "type", "value")
	if err != nil {
		return nil, err
	}
	created, err := timeValue(rec, "created_at")
	if err != nil {
		return nil, err
	}
	return &entities.Attribute{
		ID:        cols[0],
		Type:      entities.AttributeType(cols[1]),
		Value:     cols[2],
		CreatedAt: created,
	}, nil
}

func entitiesFromRecords(recs []*neo4jdriver.Record) ([]*entities.Entity, error) {
	out := make([]*entities.Entity, 0, len(recs))
	for _, rec := range recs {
		e, err := entityFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// relationshipsFromRecords folds one row per role binding into relationships,
// keeping row order.
func relationshipsFromRecords(recs []*neo4jdriver.Record) ([]entities.Relationship, error) {
	out := make([]entities.Relationship, 0, len(recs))
	index := make(map[string]int, len(recs))
	for _, rec := range recs {
		cols, err := scan(rec, "id", "type", "role", "entity_id")
		if err != nil {
			return nil, err
		}
		i, ok := index[cols[0]]
		if !ok {
			created, err := timeValue(rec, "created_at")
			if err != nil {
				return nil, err
			}
			i = len(out)
			index[cols[0]] = i
			out = append(out, entities.Relationship{
				ID:        cols[0],
				Type:      entities.RelationType(cols[1]),
				CreatedAt: created,
			})
		}
		out[i].Players = append(out[i].Players, entities.RolePlayer{
			Role:     entities.Role(cols[2]),
			EntityID: cols[3],
		})
	}
	return out, nil
}

// playerParams converts role bindings to Cypher parameters.
func playerParams(players []entities.RolePlayer) []map[string]any {
	out := make([]map[string]any, 0, len(players))
	for _, p := range players {
		out = append(out, map[string]any{
			"role":      string(p.Role),
			"entity_id": p.EntityID,
		})
	}
	return out
}

// schemaParams converts schema types to Cypher parameters.
func schemaParams(types []entities.SchemaType) []map[string]any {
	out := make([]map[string]any, 0, len(types))
	for _, t := range types {
		out = append(out, map[string]any{
			"name": t.Name,
			"kind": string(t.Kind),
		})
	}
	return out
}
