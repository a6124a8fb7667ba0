package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/infrastructure/logging"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Store implements ports.GraphStore on Neo4j.
//
// Entities are (:Entity {id, type, seq}) nodes, attribute values are
// (:Attribute {id, type, value}) nodes unique on (type, value) and owned via
// [:HAS], and relationships are reified (:Relationship {id, type, seq}) nodes
// that entities join through [:PLAYS {role}]. seq comes from a (:Sequence)
// counter node and gives creation order.
type Store struct {
	client *Client
	log    *logging.Logger
}

// NewStore creates a new Store.
func NewStore(client *Client, log *logging.Logger) *Store {
	return &Store{client: client, log: log.With("store", "neo4j")}
}

// Close closes the driver.
func (s *Store) Close() error {
	return s.client.Close(context.Background())
}

// check validates the records of a write inside its transaction. A non-nil
// error rolls the transaction back.
type check func(recs []*neo4jdriver.Record) error

func (s *Store) run(ctx context.Context, mode neo4jdriver.AccessMode, cypher string, params map[string]any, validate check) ([]*neo4jdriver.Record, error) {
	session := s.client.Driver.NewSession(ctx, neo4jdriver.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	work := func(tx neo4jdriver.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		recs, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if validate != nil {
			if err := validate(recs); err != nil {
				return nil, err
			}
		}
		return recs, nil
	}

	var out any
	var err error
	if mode == neo4jdriver.AccessModeRead {
		out, err = session.ExecuteRead(ctx, work)
	} else {
		out, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return nil, err
	}
	return out.([]*neo4jdriver.Record), nil
}

func (s *Store) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4jdriver.Record, error) {
	return s.run(ctx, neo4jdriver.AccessModeRead, cypher, params, nil)
}

func (s *Store) write(ctx context.Context, cypher string, params map[string]any, validate check) ([]*neo4jdriver.Record, error) {
	return s.run(ctx, neo4jdriver.AccessModeWrite, cypher, params, validate)
}

// one requires exactly one row.
func one(what string) check {
	return func(recs []*neo4jdriver.Record) error {
		if len(recs) != 1 {
			return fmt.Errorf("%s: expected one row, got %d", what, len(recs))
		}
		return nil
	}
}

// EnsureSchema creates constraints and seeds the default vocabulary.
func (s *Store) EnsureSchema(ctx context.Context) error {
	constraints := []string{
		`CREATE CONSTRAINT dexgraph_schema_type_name IF NOT EXISTS FOR (t:SchemaType) REQUIRE t.name IS UNIQUE`,
		`CREATE CONSTRAINT dexgraph_entity_id IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE`,
		`CREATE CONSTRAINT dexgraph_attribute_id IF NOT EXISTS FOR (a:Attribute) REQUIRE a.id IS UNIQUE`,
		`CREATE CONSTRAINT dexgraph_attribute_value IF NOT EXISTS FOR (a:Attribute) REQUIRE (a.type, a.value) IS UNIQUE`,
		`CREATE CONSTRAINT dexgraph_relationship_id IF NOT EXISTS FOR (r:Relationship) REQUIRE r.id IS UNIQUE`,
	}

	session := s.client.Driver.NewSession(ctx, neo4jdriver.SessionConfig{
		AccessMode:   neo4jdriver.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
	for _, q := range constraints {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			s.log.Warn("neo4j constraint creation failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
	session.Close(ctx)

	_, err := s.write(ctx, `
UNWIND $types AS t
MERGE (s:SchemaType {name: t.name})
ON CREATE SET s.kind = t.kind, s.created_at = $now
RETURN s.name AS name, s.kind AS kind, t.kind AS want
`, map[string]any{
		"types": schemaParams(entities.DefaultSchema),
		"now":   formatTime(timeNow()),
	}, func(recs []*neo4jdriver.Record) error {
		for _, rec := range recs {
			cols, err := scan(rec, "name", "kind", "want")
			if err != nil {
				return err
			}
			if cols[1] != cols[2] {
				return fmt.Errorf("schema type %q is a %s, not a %s", cols[0], cols[1], cols[2])
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding schema: %w", err)
	}
	return nil
}

// FindRelationType finds a provisioned relation type.
func (s *Store) FindRelationType(ctx context.Context, relType entities.RelationType) (*entities.SchemaType, error) {
	recs, err := s.read(ctx, `
MATCH (t:SchemaType {name: $name, kind: $kind})
RETURN t.name AS name, t.kind AS kind, t.created_at AS created_at
`, map[string]any{"name": string(relType), "kind": string(entities.KindRelation)})
	if err != nil {
		return nil, fmt.Errorf("finding relation type: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return schemaTypeFromRecord(recs[0])
}

// PutRoleType finds a role type by name or creates it.
func (s *Store) PutRoleType(ctx context.Context, role entities.Role) (*entities.SchemaType, error) {
	recs, err := s.write(ctx, `
MERGE (t:SchemaType {name: $name})
ON CREATE SET t.kind = $kind, t.created_at = $now
RETURN t.name AS name, t.kind AS kind, t.created_at AS created_at
`, map[string]any{
		"name": string(role),
		"kind": string(entities.KindRole),
		"now":  formatTime(timeNow()),
	}, one("putting role type"))
	if err != nil {
		return nil, fmt.Errorf("putting role type: %w", err)
	}

	st, err := schemaTypeFromRecord(recs[0])
	if err != nil {
		return nil, err
	}
	if st.Kind != entities.KindRole {
		return nil, fmt.Errorf("schema type %q is a %s, not a %s", role, st.Kind, entities.KindRole)
	}
	return st, nil
}

// AddEntity creates a new entity of the given type.
func (s *Store) AddEntity(ctx context.Context, kind entities.EntityKind) (*entities.Entity, error) {
	entity := &entities.Entity{
		ID:        uuid.New().String(),
		Type:      kind,
		CreatedAt: timeNow(),
	}
	_, err := s.write(ctx, `
MATCH (:SchemaType {name: $type, kind: $kind})
MERGE (c:Sequence {name: 'entity'})
ON CREATE SET c.value = 0
SET c.value = c.value + 1
CREATE (e:Entity {id: $id, type: $type, seq: c.value, created_at: $created_at})
RETURN e.id AS id
`, map[string]any{
		"id":         entity.ID,
		"type":       string(kind),
		"kind":       string(entities.KindEntity),
		"created_at": formatTime(entity.CreatedAt),
	}, one(fmt.Sprintf("entity type %q", kind)))
	if err != nil {
		return nil, fmt.Errorf("adding entity: %w", err)
	}
	return entity, nil
}

// FindEntityByID finds an entity by its ID.
func (s *Store) FindEntityByID(ctx context.Context, id string) (*entities.Entity, error) {
	recs, err := s.read(ctx, `
MATCH (e:Entity {id: $id})
RETURN e.id AS id, e.type AS type, e.created_at AS created_at
`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("finding entity: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return entityFromRecord(recs[0])
}

// ListEntities lists entities of a type in creation order.
func (s *Store) ListEntities(ctx context.Context, kind entities.EntityKind) ([]*entities.Entity, error) {
	recs, err := s.read(ctx, `
MATCH (e:Entity {type: $type})
RETURN e.id AS id, e.type AS type, e.created_at AS created_at
ORDER BY e.seq
`, map[string]any{"type": string(kind)})
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	return entitiesFromRecords(recs)
}

// CountEntities returns the number of entities of a type.
func (s *Store) CountEntities(ctx context.Context, kind entities.EntityKind) (int, error) {
	return s.count(ctx, `MATCH (e:Entity {type: $type}) RETURN count(e) AS n`, string(kind))
}

// FindAttribute finds the shared value node for an attribute type and value.
func (s *Store) FindAttribute(ctx context.Context, attrType entities.AttributeType, value string) (*entities.Attribute, error) {
	recs, err := s.read(ctx, `
MATCH (a:Attribute {type: $type, value: $value})
RETURN a.id AS id, a.type AS type, a.value AS value, a.created_at AS created_at
`, map[string]any{"type": string(attrType), "value": value})
	if err != nil {
		return nil, fmt.Errorf("finding attribute: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return attributeFromRecord(recs[0])
}

// PutAttribute finds the value node or creates it.
func (s *Store) PutAttribute(ctx context.Context, attrType entities.AttributeType, value string) (*entities.Attribute, error) {
	recs, err := s.write(ctx, `
MERGE (a:Attribute {type: $type, value: $value})
ON CREATE SET a.id = $id, a.created_at = $created_at
RETURN a.id AS id, a.type AS type, a.value AS value, a.created_at AS created_at
`, map[string]any{
		"type":       string(attrType),
		"value":      value,
		"id":         uuid.New().String(),
		"created_at": formatTime(timeNow()),
	}, one("putting attribute"))
	if err != nil {
		return nil, fmt.Errorf("putting attribute: %w", err)
	}
	return attributeFromRecord(recs[0])
}

// AttachAttribute records that an entity owns an attribute.
func (s *Store) AttachAttribute(ctx context.Context, entityID, attributeID string) error {
	_, err := s.write(ctx, `
MATCH (e:Entity {id: $entity_id})
MATCH (a:Attribute {id: $attribute_id})
MERGE (e)-[:HAS]->(a)
RETURN e.id AS id
`, map[string]any{
		"entity_id":    entityID,
		"attribute_id": attributeID,
	}, one("entity or attribute not found"))
	if err != nil {
		return fmt.Errorf("attaching attribute: %w", err)
	}
	return nil
}

// AttributesOf returns every attribute owned by an entity.
func (s *Store) AttributesOf(ctx context.Context, entityID string) ([]entities.Attribute, error) {
	recs, err := s.read(ctx, `
MATCH (:Entity {id: $id})-[:HAS]->(a:Attribute)
RETURN a.id AS id, a.type AS type, a.value AS value, a.created_at AS created_at
ORDER BY a.type, a.value
`, map[string]any{"id": entityID})
	if err != nil {
		return nil, fmt.Errorf("querying attributes: %w", err)
	}

	attrs := make([]entities.Attribute, 0, len(recs))
	for _, rec := range recs {
		a, err := attributeFromRecord(rec)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, *a)
	}
	return attrs, nil
}

// OwnersOf returns the entities of a type owning an attribute, in creation order.
func (s *Store) OwnersOf(ctx context.Context, attributeID string, kind entities.EntityKind) ([]*entities.Entity, error) {
	recs, err := s.read(ctx, `
MATCH (e:Entity {type: $type})-[:HAS]->(:Attribute {id: $id})
RETURN e.id AS id, e.type AS type, e.created_at AS created_at
ORDER BY e.seq
`, map[string]any{"id": attributeID, "type": string(kind)})
	if err != nil {
		return nil, fmt.Errorf("querying owners: %w", err)
	}
	return entitiesFromRecords(recs)
}

// AddRelationship creates a relationship node and binds every player in one
// transaction. A missing player rolls the whole instance back.
func (s *Store) AddRelationship(ctx context.Context, relType entities.RelationType, players []entities.RolePlayer) (*entities.Relationship, error) {
	if len(players) == 0 {
		return nil, errors.New("relationship requires at least one role player")
	}

	rel := &entities.Relationship{
		ID:        uuid.New().String(),
		Type:      relType,
		Players:   append([]entities.RolePlayer(nil), players...),
		CreatedAt: timeNow(),
	}

	_, err := s.write(ctx, `
MATCH (:SchemaType {name: $type, kind: $kind})
MERGE (c:Sequence {name: 'relationship'})
ON CREATE SET c.value = 0
SET c.value = c.value + 1
CREATE (r:Relationship {id: $id, type: $type, seq: c.value, created_at: $created_at})
WITH r
UNWIND $players AS p
MATCH (e:Entity {id: p.entity_id})
CREATE (e)-[:PLAYS {role: p.role}]->(r)
RETURN count(*) AS bound
`, map[string]any{
		"id":         rel.ID,
		"type":       string(relType),
		"kind":       string(entities.KindRelation),
		"created_at": formatTime(rel.CreatedAt),
		"players":    playerParams(players),
	}, func(recs []*neo4jdriver.Record) error {
		if len(recs) != 1 {
			return fmt.Errorf("relation type %q: expected one row, got %d", relType, len(recs))
		}
		bound, err := intValue(recs[0], "bound")
		if err != nil {
			return err
		}
		if int(bound) != len(players) {
			return fmt.Errorf("bound %d of %d role players", bound, len(players))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding relationship: %w", err)
	}
	return rel, nil
}

// FindRelationshipsByType finds all relationships of a given type.
func (s *Store) FindRelationshipsByType(ctx context.Context, relType entities.RelationType) ([]entities.Relationship, error) {
	recs, err := s.read(ctx, `
MATCH (r:Relationship {type: $type})<-[p:PLAYS]-(e:Entity)
RETURN r.id AS id, r.type AS type, r.created_at AS created_at, p.role AS role, e.id AS entity_id
ORDER BY r.seq, p.role
`, map[string]any{"type": string(relType)})
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	return relationshipsFromRecords(recs)
}

// FindRelationshipsByPlayer finds all relationships an entity plays a role in.
func (s *Store) FindRelationshipsByPlayer(ctx context.Context, entityID string) ([]entities.Relationship, error) {
	recs, err := s.read(ctx, `
MATCH (:Entity {id: $id})-[:PLAYS]->(r:Relationship)
WITH DISTINCT r
MATCH (r)<-[p:PLAYS]-(e:Entity)
RETURN r.id AS id, r.type AS type, r.created_at AS created_at, p.role AS role, e.id AS entity_id
ORDER BY r.seq, p.role
`, map[string]any{"id": entityID})
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	return relationshipsFromRecords(recs)
}

// CountRelationships returns the number of relationships of a type.
func (s *Store) CountRelationships(ctx context.Context, relType entities.RelationType) (int, error) {
	return s.count(ctx, `MATCH (r:Relationship {type: $type}) RETURN count(r) AS n`, string(relType))
}

func (s *Store) count(ctx context.Context, cypher, typeName string) (int, error) {
	recs, err := s.read(ctx, cypher, map[string]any{"type": typeName})
	if err != nil {
		return 0, fmt.Errorf("counting: %w", err)
	}
	if len(recs) == 0 {
		return 0, nil
	}
	n, err := intValue(recs[0], "n")
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
