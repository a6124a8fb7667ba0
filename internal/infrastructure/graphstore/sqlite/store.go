// Package sqlite provides a SQLite implementation of the GraphStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Store implements ports.GraphStore using SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens a SQLite graph store.
func NewStore(cfg config.SQLiteConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := cfg.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	return NewStoreFromDB(db, cfg.Path), nil
}

// NewStoreFromDB wraps an open database handle.
func NewStoreFromDB(db *sql.DB, path string) *Store {
	return &Store{db: db, path: path}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema creates the database schema and seeds the default vocabulary.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Schema vocabulary (entity, attribute, role and relation types)
	CREATE TABLE IF NOT EXISTS schema_types (
		name TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Entities carry only identity and type
	CREATE TABLE IF NOT EXISTS entities (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL REFERENCES schema_types(name),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);

	-- Attribute values, shared by value equality
	CREATE TABLE IF NOT EXISTS attributes (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL REFERENCES schema_types(name),
		value TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(type, value)
	);

	-- Ownership edges between entities and attribute values
	CREATE TABLE IF NOT EXISTS entity_attributes (
		entity_id TEXT NOT NULL REFERENCES entities(id),
		attribute_id TEXT NOT NULL REFERENCES attributes(id),
		PRIMARY KEY(entity_id, attribute_id)
	);
	CREATE INDEX IF NOT EXISTS idx_entity_attributes_attribute ON entity_attributes(attribute_id);

	-- Relationship instances and their role bindings
	CREATE TABLE IF NOT EXISTS relationships (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL REFERENCES schema_types(name),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type);

	CREATE TABLE IF NOT EXISTS role_players (
		relationship_id TEXT NOT NULL REFERENCES relationships(id),
		role TEXT NOT NULL REFERENCES schema_types(name),
		entity_id TEXT NOT NULL REFERENCES entities(id),
		PRIMARY KEY(relationship_id, role, entity_id)
	);
	CREATE INDEX IF NOT EXISTS idx_role_players_entity ON role_players(entity_id);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for _, st := range entities.DefaultSchema {
		if _, err := s.putSchemaType(ctx, st.Name, st.Kind); err != nil {
			return fmt.Errorf("seeding schema type %s: %w", st.Name, err)
		}
	}
	return nil
}

// putSchemaType inserts a schema type if missing and returns the stored row.
func (s *Store) putSchemaType(ctx context.Context, name string, kind entities.ConceptKind) (*entities.SchemaType, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_types (name, kind, created_at) VALUES (?, ?, ?)`,
		name, string(kind), timeNow(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting schema type: %w", err)
	}

	st, err := s.findSchemaType(ctx, name)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("schema type %q vanished after insert", name)
	}
	if st.Kind != kind {
		return nil, fmt.Errorf("schema type %q is a %s, not a %s", name, st.Kind, kind)
	}
	return st, nil
}

// findSchemaType finds a schema type by name.
func (s *Store) findSchemaType(ctx context.Context, name string) (*entities.SchemaType, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, kind, created_at FROM schema_types WHERE name = ?`, name)

	var st entities.SchemaType
	var kind string
	err := row.Scan(&st.Name, &kind, &st.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning schema type: %w", err)
	}
	st.Kind = entities.ConceptKind(kind)
	return &st, nil
}

// FindRelationType finds a provisioned relation type.
func (s *Store) FindRelationType(ctx context.Context, relType entities.RelationType) (*entities.SchemaType, error) {
	st, err := s.findSchemaType(ctx, string(relType))
	if err != nil {
		return nil, err
	}
	if st == nil || st.Kind != entities.KindRelation {
		return nil, nil
	}
	return st, nil
}

// PutRoleType finds a role type by name or creates it.
func (s *Store) PutRoleType(ctx context.Context, role entities.Role) (*entities.SchemaType, error) {
	return s.putSchemaType(ctx, string(role), entities.KindRole)
}

// AddEntity creates a new entity of the given type.
func (s *Store) AddEntity(ctx context.Context, kind entities.EntityKind) (*entities.Entity, error) {
	entity := &entities.Entity{
		ID:        generateUUID(),
		Type:      kind,
		CreatedAt: timeNow(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (id, type, created_at) VALUES (?, ?, ?)`,
		entity.ID, string(entity.Type), entity.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding entity: %w", err)
	}
	return entity, nil
}

// FindEntityByID finds an entity by its ID.
func (s *Store) FindEntityByID(ctx context.Context, id string) (*entities.Entity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, type, created_at FROM entities WHERE id = ?`, id)

	entity, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	return entity, nil
}

// ListEntities lists entities of a type in creation order.
func (s *Store) ListEntities(ctx context.Context, kind entities.EntityKind) ([]*entities.Entity, error) {
	query := `
		SELECT id, type, created_at
		FROM entities
		WHERE type = ?
		ORDER BY seq ASC
	`
	return s.queryEntities(ctx, query, string(kind))
}

// CountEntities returns the number of entities of a type.
func (s *Store) CountEntities(ctx context.Context, kind entities.EntityKind) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities WHERE type = ?`, string(kind)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return count, nil
}

// FindAttribute finds the shared value node for an attribute type and value.
func (s *Store) FindAttribute(ctx context.Context, attrType entities.AttributeType, value string) (*entities.Attribute, error) {
	query := `
		SELECT id, type, value, created_at
		FROM attributes
		WHERE type = ? AND value = ?
	`
	row := s.db.QueryRowContext(ctx, query, string(attrType), value)

	attr, err := scanAttribute(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning attribute: %w", err)
	}
	return attr, nil
}

// PutAttribute finds the value node or creates it.
// It uses INSERT OR IGNORE followed by SELECT, so value-equal puts share one row.
func (s *Store) PutAttribute(ctx context.Context, attrType entities.AttributeType, value string) (*entities.Attribute, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO attributes (id, type, value, created_at) VALUES (?, ?, ?, ?)`,
		generateUUID(), string(attrType), value, timeNow(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting attribute: %w", err)
	}

	attr, err := s.FindAttribute(ctx, attrType, value)
	if err != nil {
		return nil, err
	}
	if attr == nil {
		return nil, fmt.Errorf("attribute %s=%q vanished after insert", attrType, value)
	}
	return attr, nil
}

// AttachAttribute records that an entity owns an attribute.
func (s *Store) AttachAttribute(ctx context.Context, entityID, attributeID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO entity_attributes (entity_id, attribute_id) VALUES (?, ?)`,
		entityID, attributeID,
	)
	if err != nil {
		return fmt.Errorf("attaching attribute: %w", err)
	}
	return nil
}

// AttributesOf returns every attribute owned by an entity.
func (s *Store) AttributesOf(ctx context.Context, entityID string) ([]entities.Attribute, error) {
	query := `
		SELECT a.id, a.type, a.value, a.created_at
		FROM attributes a
		JOIN entity_attributes ea ON ea.attribute_id = a.id
		WHERE ea.entity_id = ?
		ORDER BY a.type ASC, a.value ASC
	`
	rows, err := s.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying attributes: %w", err)
	}
	defer rows.Close()

	attrs := make([]entities.Attribute, 0, len(entities.CreatureAttributes))
	for rows.Next() {
		attr, err := scanAttribute(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		attrs = append(attrs, *attr)
	}
	return attrs, rows.Err()
}

// OwnersOf returns the entities of a type owning an attribute, in creation order.
func (s *Store) OwnersOf(ctx context.Context, attributeID string, kind entities.EntityKind) ([]*entities.Entity, error) {
	query := `
		SELECT e.id, e.type, e.created_at
		FROM entities e
		JOIN entity_attributes ea ON ea.entity_id = e.id
		WHERE ea.attribute_id = ? AND e.type = ?
		ORDER BY e.seq ASC
	`
	return s.queryEntities(ctx, query, attributeID, string(kind))
}

// AddRelationship creates a relationship instance and its role bindings in one transaction.
func (s *Store) AddRelationship(ctx context.Context, relType entities.RelationType, players []entities.RolePlayer) (*entities.Relationship, error) {
	if len(players) == 0 {
		return nil, errors.New("relationship requires at least one role player")
	}

	rel := &entities.Relationship{
		ID:        generateUUID(),
		Type:      relType,
		Players:   append([]entities.RolePlayer(nil), players...),
		CreatedAt: timeNow(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO relationships (id, type, created_at) VALUES (?, ?, ?)`,
		rel.ID, string(rel.Type), rel.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding relationship: %w", err)
	}

	for _, p := range rel.Players {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO role_players (relationship_id, role, entity_id) VALUES (?, ?, ?)`,
			rel.ID, string(p.Role), p.EntityID,
		)
		if err != nil {
			return nil, fmt.Errorf("binding role %s: %w", p.Role, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing relationship: %w", err)
	}
	return rel, nil
}

// FindRelationshipsByType finds all relationships of a given type.
func (s *Store) FindRelationshipsByType(ctx context.Context, relType entities.RelationType) ([]entities.Relationship, error) {
	query := `
		SELECT r.id, r.type, r.created_at, rp.role, rp.entity_id
		FROM relationships r
		JOIN role_players rp ON rp.relationship_id = r.id
		WHERE r.type = ?
		ORDER BY r.seq ASC, rp.role ASC
	`
	return s.queryRelationships(ctx, query, string(relType))
}

// FindRelationshipsByPlayer finds all relationships an entity plays a role in.
func (s *Store) FindRelationshipsByPlayer(ctx context.Context, entityID string) ([]entities.Relationship, error) {
	query := `
		SELECT r.id, r.type, r.created_at, rp.role, rp.entity_id
		FROM relationships r
		JOIN role_players rp ON rp.relationship_id = r.id
		WHERE r.id IN (SELECT relationship_id FROM role_players WHERE entity_id = ?)
		ORDER BY r.seq ASC, rp.role ASC
	`
	return s.queryRelationships(ctx, query, entityID)
}

// CountRelationships returns the number of relationships of a type.
func (s *Store) CountRelationships(ctx context.Context, relType entities.RelationType) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships WHERE type = ?`, string(relType)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*entities.Entity, error) {
	var entity entities.Entity
	var kind string
	if err := row.Scan(&entity.ID, &kind, &entity.CreatedAt); err != nil {
		return nil, err
	}
	entity.Type = entities.EntityKind(kind)
	return &entity, nil
}

func scanAttribute(row rowScanner) (*entities.Attribute, error) {
	var attr entities.Attribute
	var attrType string
	if err := row.Scan(&attr.ID, &attrType, &attr.Value, &attr.CreatedAt); err != nil {
		return nil, err
	}
	attr.Type = entities.AttributeType(attrType)
	return &attr, nil
}

// queryEntities is a helper to execute entity queries.
func (s *Store) queryEntities(ctx context.Context, query string, args ...any) ([]*entities.Entity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Entity, 0, 16)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		result = append(result, entity)
	}
	return result, rows.Err()
}

// queryRelationships folds one row per role binding into relationships,
// keeping the order rows arrive in.
func (s *Store) queryRelationships(ctx context.Context, query string, args ...any) ([]entities.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	relationships := make([]entities.Relationship, 0, 16)
	index := make(map[string]int, 16)
	for rows.Next() {
		var id, relType, role, entityID string
		var createdAt time.Time
		if err := rows.Scan(&id, &relType, &createdAt, &role, &entityID); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}

		i, ok := index[id]
		if !ok {
			i = len(relationships)
			index[id] = i
			relationships = append(relationships, entities.Relationship{
				ID:        id,
				Type:      entities.RelationType(relType),
				CreatedAt: createdAt,
			})
		}
		relationships[i].Players = append(relationships[i].Players, entities.RolePlayer{
			Role:     entities.Role(role),
			EntityID: entityID,
		})
	}
	return relationships, rows.Err()
}
