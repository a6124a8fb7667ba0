package entities

import "time"

// ConceptKind classifies a schema type.
type ConceptKind string

const (
	KindEntity    ConceptKind = "entity"
	KindAttribute ConceptKind = "attribute"
	KindRole      ConceptKind = "role"
	KindRelation  ConceptKind = "relation"
)

// EntityKind names an entity type.
type EntityKind string

// AttributeType names an attribute type.
type AttributeType string

// Role names a role type.
type Role string

// RelationType names a relation type.
type RelationType string

// SchemaType is a named concept provisioned in the graph schema before any
// data is loaded.
type SchemaType struct {
	Name      string      `json:"name"`
	Kind      ConceptKind `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
}
