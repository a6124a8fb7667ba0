package ports

import (
	"context"

	"github.com/ersonp/dexgraph/internal/domain/entities"
)

// GraphStore defines the typed graph operations the loader materializes into.
// Entities, attributes and relationships are created one at a time; the store
// owns atomicity and commit discipline.
type GraphStore interface {
	// EnsureSchema creates storage structures and seeds the default schema
	// vocabulary if they don't exist.
	EnsureSchema(ctx context.Context) error

	// Close releases the store connection.
	Close() error

	// Schema operations

	// FindRelationType finds a provisioned relation type. Returns nil if absent.
	FindRelationType(ctx context.Context, relType entities.RelationType) (*entities.SchemaType, error)

	// PutRoleType finds a role type by name or creates it.
	PutRoleType(ctx context.Context, role entities.Role) (*entities.SchemaType, error)

	// Entity operations

	// AddEntity creates a new entity of the given type.
	AddEntity(ctx context.Context, kind entities.EntityKind) (*entities.Entity, error)

	// FindEntityByID finds an entity by its ID. Returns nil if absent.
	FindEntityByID(ctx context.Context, id string) (*entities.Entity, error)

	// ListEntities lists entities of a type in creation order.
	ListEntities(ctx context.Context, kind entities.EntityKind) ([]*entities.Entity, error)

	// CountEntities returns the number of entities of a type.
	CountEntities(ctx context.Context, kind entities.EntityKind) (int, error)

	// Attribute operations

	// FindAttribute finds the shared value node for an attribute type and value.
	// Returns nil if absent.
	FindAttribute(ctx context.Context, attrType entities.AttributeType, value string) (*entities.Attribute, error)

	// PutAttribute finds the value node or creates it.
	PutAttribute(ctx context.Context, attrType entities.AttributeType, value string) (*entities.Attribute, error)

	// AttachAttribute records that an entity owns an attribute. Attaching the
	// same attribute twice is a no-op.
	AttachAttribute(ctx context.Context, entityID, attributeID string) error

	// AttributesOf returns every attribute owned by an entity.
	AttributesOf(ctx context.Context, entityID string) ([]entities.Attribute, error)

	// OwnersOf returns the entities of a type owning an attribute, in creation order.
	OwnersOf(ctx context.Context, attributeID string, kind entities.EntityKind) ([]*entities.Entity, error)

	// Relationship operations

	// AddRelationship creates a relationship instance binding each player to its role.
	// Every player entity must already exist.
	AddRelationship(ctx context.Context, relType entities.RelationType, players []entities.RolePlayer) (*entities.Relationship, error)

	// FindRelationshipsByType finds all relationships of a given type.
	FindRelationshipsByType(ctx context.Context, relType entities.RelationType) ([]entities.Relationship, error)

	// FindRelationshipsByPlayer finds all relationships an entity plays a role in.
	FindRelationshipsByPlayer(ctx context.Context, entityID string) ([]entities.Relationship, error)

	// CountRelationships returns the number of relationships of a type.
	CountRelationships(ctx context.Context, relType entities.RelationType) (int, error)
}
