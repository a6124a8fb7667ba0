package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ersonp/dexgraph/internal/domain/entities"
)

// GraphStore is an in-memory implementation of ports.GraphStore.
// Err fails every call; FailOn fails only the named method.
type GraphStore struct {
	Schema        map[string]entities.SchemaType
	Entities      []*entities.Entity
	Attributes    []*entities.Attribute
	Owned         map[string][]string // entity ID -> attribute IDs
	Relationships []entities.Relationship

	Err    error
	FailOn map[string]error

	nextID int
}

// NewGraphStore creates a new mock GraphStore with the default schema seeded.
func NewGraphStore() *GraphStore {
	m := &GraphStore{
		Schema: make(map[string]entities.SchemaType),
		Owned:  make(map[string][]string),
		FailOn: make(map[string]error),
	}
	for _, st := range entities.DefaultSchema {
		m.Schema[st.Name] = st
	}
	return m
}

func (m *GraphStore) fail(method string) error {
	if m.Err != nil {
		return m.Err
	}
	return m.FailOn[method]
}

func (m *GraphStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

// EnsureSchema returns the configured error.
func (m *GraphStore) EnsureSchema(_ context.Context) error {
	return m.fail("EnsureSchema")
}

// Close does nothing.
func (m *GraphStore) Close() error {
	return nil
}

// FindRelationType finds a relation type in the schema map.
func (m *GraphStore) FindRelationType(_ context.Context, relType entities.RelationType) (*entities.SchemaType, error) {
	if err := m.fail("FindRelationType"); err != nil {
		return nil, err
	}
	st, ok := m.Schema[string(relType)]
	if !ok || st.Kind != entities.KindRelation {
		return nil, nil
	}
	return &st, nil
}

// PutRoleType finds or adds a role type.
func (m *GraphStore) PutRoleType(_ context.Context, role entities.Role) (*entities.SchemaType, error) {
	if err := m.fail("PutRoleType"); err != nil {
		return nil, err
	}
	st, ok := m.Schema[string(role)]
	if !ok {
		st = entities.SchemaType{Name: string(role), Kind: entities.KindRole, CreatedAt: time.Now()}
		m.Schema[st.Name] = st
	}
	if st.Kind != entities.KindRole {
		return nil, fmt.Errorf("schema type %q is a %s", role, st.Kind)
	}
	return &st, nil
}

// AddEntity appends a new entity.
func (m *GraphStore) AddEntity(_ context.Context, kind entities.EntityKind) (*entities.Entity, error) {
	if err := m.fail("AddEntity"); err != nil {
		return nil, err
	}
	if st, ok := m.Schema[string(kind)]; !ok || st.Kind != entities.KindEntity {
		return nil, fmt.Errorf("unknown entity type %q", kind)
	}
	e := &entities.Entity{ID: m.id("entity"), Type: kind, CreatedAt: time.Now()}
	m.Entities = append(m.Entities, e)
	return e, nil
}

// FindEntityByID finds an entity by ID.
func (m *GraphStore) FindEntityByID(_ context.Context, id string) (*entities.Entity, error) {
	if err := m.fail("FindEntityByID"); err != nil {
		return nil, err
	}
	for _, e := range m.Entities {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

// ListEntities lists entities of a type in creation order.
func (m *GraphStore) ListEntities(_ context.Context, kind entities.EntityKind) ([]*entities.Entity, error) {
	if err := m.fail("ListEntities"); err != nil {
		return nil, err
	}
	return m.ofKind(kind), nil
}

// CountEntities counts entities of a type.
func (m *GraphStore) CountEntities(_ context.Context, kind entities.EntityKind) (int, error) {
	if err := m.fail("CountEntities"); err != nil {
		return 0, err
	}
	return len(m.ofKind(kind)), nil
}

// FindAttribute finds an attribute by type and value.
func (m *GraphStore) FindAttribute(_ context.Context, attrType entities.AttributeType, value string) (*entities.Attribute, error) {
	if err := m.fail("FindAttribute"); err != nil {
		return nil, err
	}
	return m.attribute(attrType, value), nil
}

// PutAttribute finds or adds an attribute.
func (m *GraphStore) PutAttribute(_ context.Context, attrType entities.AttributeType, value string) (*entities.Attribute, error) {
	if err := m.fail("PutAttribute"); err != nil {
		return nil, err
	}
	if a := m.attribute(attrType, value); a != nil {
		return a, nil
	}
	a := &entities.Attribute{ID: m.id("attr"), Type: attrType, Value: value, CreatedAt: time.Now()}
	m.Attributes = append(m.Attributes, a)
	return a, nil
}

// AttachAttribute records ownership, ignoring repeats.
func (m *GraphStore) AttachAttribute(_ context.Context, entityID, attributeID string) error {
	if err := m.fail("AttachAttribute"); err != nil {
		return err
	}
	if m.entity(entityID) == nil {
		return fmt.Errorf("unknown entity %q", entityID)
	}
	for _, id := range m.Owned[entityID] {
		if id == attributeID {
			return nil
		}
	}
	m.Owned[entityID] = append(m.Owned[entityID], attributeID)
	return nil
}

// AttributesOf returns an entity's attributes sorted by type.
func (m *GraphStore) AttributesOf(_ context.Context, entityID string) ([]entities.Attribute, error) {
	if err := m.fail("AttributesOf"); err != nil {
		return nil, err
	}
	result := make([]entities.Attribute, 0, len(m.Owned[entityID]))
	for _, id := range m.Owned[entityID] {
		for _, a := range m.Attributes {
			if a.ID == id {
				result = append(result, *a)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Type < result[j].Type
	})
	return result, nil
}

// OwnersOf returns owners of an attribute filtered by type, in creation order.
func (m *GraphStore) OwnersOf(_ context.Context, attributeID string, kind entities.EntityKind) ([]*entities.Entity, error) {
	if err := m.fail("OwnersOf"); err != nil {
		return nil, err
	}
	var result []*entities.Entity
	for _, e := range m.ofKind(kind) {
		for _, id := range m.Owned[e.ID] {
			if id == attributeID {
				result = append(result, e)
				break
			}
		}
	}
	return result, nil
}

// AddRelationship appends a relationship.
func (m *GraphStore) AddRelationship(_ context.Context, relType entities.RelationType, players []entities.RolePlayer) (*entities.Relationship, error) {
	if err := m.fail("AddRelationship"); err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, errors.New("relationship requires at least one role player")
	}
	for _, p := range players {
		if m.entity(p.EntityID) == nil {
			return nil, fmt.Errorf("unknown entity %q", p.EntityID)
		}
	}
	rel := entities.Relationship{
		ID:        m.id("rel"),
		Type:      relType,
		Players:   append([]entities.RolePlayer(nil), players...),
		CreatedAt: time.Now(),
	}
	m.Relationships = append(m.Relationships, rel)
	return &rel, nil
}

// FindRelationshipsByType returns relationships of a type.
func (m *GraphStore) FindRelationshipsByType(_ context.Context, relType entities.RelationType) ([]entities.Relationship, error) {
	if err := m.fail("FindRelationshipsByType"); err != nil {
		return nil, err
	}
	var result []entities.Relationship
	for _, r := range m.Relationships {
		if r.Type == relType {
			result = append(result, r)
		}
	}
	return result, nil
}

// FindRelationshipsByPlayer returns relationships an entity plays in.
func (m *GraphStore) FindRelationshipsByPlayer(_ context.Context, entityID string) ([]entities.Relationship, error) {
	if err := m.fail("FindRelationshipsByPlayer"); err != nil {
		return nil, err
	}
	var result []entities.Relationship
	for _, r := range m.Relationships {
		for _, p := range r.Players {
			if p.EntityID == entityID {
				result = append(result, r)
				break
			}
		}
	}
	return result, nil
}

// CountRelationships counts relationships of a type.
func (m *GraphStore) CountRelationships(ctx context.Context, relType entities.RelationType) (int, error) {
	rels, err := m.FindRelationshipsByType(ctx, relType)
	return len(rels), err
}

// NamedEntities returns the entities of a type owning the given name.
func (m *GraphStore) NamedEntities(kind entities.EntityKind, name string) []*entities.Entity {
	attr := m.attribute(entities.AttributeName, name)
	if attr == nil {
		return nil
	}
	owners, _ := m.OwnersOf(context.Background(), attr.ID, kind)
	return owners
}

func (m *GraphStore) ofKind(kind entities.EntityKind) []*entities.Entity {
	var result []*entities.Entity
	for _, e := range m.Entities {
		if e.Type == kind {
			result = append(result, e)
		}
	}
	return result
}

func (m *GraphStore) entity(id string) *entities.Entity {
	for _, e := range m.Entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (m *GraphStore) attribute(attrType entities.AttributeType, value string) *entities.Attribute {
	for _, a := range m.Attributes {
		if a.Type == attrType && a.Value == value {
			return a
		}
	}
	return nil
}
