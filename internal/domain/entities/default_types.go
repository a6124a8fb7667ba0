package entities

// Entity types.
const (
	EntityCreature EntityKind = "creature"
	EntityCategory EntityKind = "category"
)

// Attribute types.
const (
	AttributeName        AttributeType = "name"
	AttributeDexNumber   AttributeType = "dex-number"
	AttributeDescription AttributeType = "description"
	AttributeHeight      AttributeType = "height"
	AttributeWeight      AttributeType = "weight"
)

// Role types.
const (
	RoleBearer          Role = "bearer"
	RoleCategorizedType Role = "categorized-type"
	RoleDescendant      Role = "descendant"
	RoleAncestor        Role = "ancestor"
)

// Relation types.
const (
	RelationHasCategory RelationType = "has-category"
	RelationEvolvesFrom RelationType = "evolves-from"
)

// DefaultSchema is the vocabulary seeded by EnsureSchema. The loader only
// ever reads it.
var DefaultSchema = []SchemaType{
	{Name: string(EntityCreature), Kind: KindEntity},
	{Name: string(EntityCategory), Kind: KindEntity},
	{Name: string(AttributeName), Kind: KindAttribute},
	{Name: string(AttributeDexNumber), Kind: KindAttribute},
	{Name: string(AttributeDescription), Kind: KindAttribute},
	{Name: string(AttributeHeight), Kind: KindAttribute},
	{Name: string(AttributeWeight), Kind: KindAttribute},
	{Name: string(RoleBearer), Kind: KindRole},
	{Name: string(RoleCategorizedType), Kind: KindRole},
	{Name: string(RoleDescendant), Kind: KindRole},
	{Name: string(RoleAncestor), Kind: KindRole},
	{Name: string(RelationHasCategory), Kind: KindRelation},
	{Name: string(RelationEvolvesFrom), Kind: KindRelation},
}

// CreatureAttributes lists the attribute types a fully loaded creature owns.
var CreatureAttributes = []AttributeType{
	AttributeName,
	AttributeDexNumber,
	AttributeDescription,
	AttributeHeight,
	AttributeWeight,
}
