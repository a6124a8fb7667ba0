package services

import (
	"context"
	"fmt"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/ports"
)

// PlaceholderPolicy decides what happens when a creature's own record arrives
// after a placeholder was created for it.
type PlaceholderPolicy string

const (
	// PlaceholderUpgrade reuses an existing creature with the same name and
	// attaches the full attribute set to it.
	PlaceholderUpgrade PlaceholderPolicy = "upgrade"
	// PlaceholderKeep always creates a new principal creature, leaving any
	// placeholder as it is.
	PlaceholderKeep PlaceholderPolicy = "keep"
)

// ParsePlaceholderPolicy validates a policy name. Empty means PlaceholderUpgrade.
func ParsePlaceholderPolicy(s string) (PlaceholderPolicy, error) {
	switch PlaceholderPolicy(s) {
	case "", PlaceholderUpgrade:
		return PlaceholderUpgrade, nil
	case PlaceholderKeep:
		return PlaceholderKeep, nil
	default:
		return "", fmt.Errorf("invalid placeholder policy %q (valid: %s, %s)", s, PlaceholderUpgrade, PlaceholderKeep)
	}
}

// MaterializeResult describes the graph mutations made for one record.
type MaterializeResult struct {
	Creature            *entities.Entity
	Ancestor            *entities.Entity
	Reused              bool // principal was an existing creature
	PlaceholderUpgraded bool // principal was a name-only placeholder
	PlaceholderCreated  bool // ancestor was created as a placeholder
	EntitiesCreated     int
	AttributesAttached  int
	RelationshipsAdded  int
}

// GraphMaterializer writes normalized records into a graph store.
// Relationship dedup is scoped to a run; call Reset between runs.
type GraphMaterializer struct {
	store  ports.GraphStore
	policy PlaceholderPolicy
	seen   map[string]struct{}
}

// NewGraphMaterializer creates a new GraphMaterializer.
func NewGraphMaterializer(store ports.GraphStore, policy PlaceholderPolicy) *GraphMaterializer {
	if policy == "" {
		policy = PlaceholderUpgrade
	}
	return &GraphMaterializer{
		store:  store,
		policy: policy,
		seen:   make(map[string]struct{}),
	}
}

// Policy returns the placeholder policy in effect.
func (m *GraphMaterializer) Policy() PlaceholderPolicy {
	return m.policy
}

// Reset forgets the relationships created so far.
func (m *GraphMaterializer) Reset() {
	m.seen = make(map[string]struct{})
}

// Materialize creates or reuses the creature, its attributes, its categories
// and its evolution edge. Store errors are returned as they occur and nothing
// is rolled back.
func (m *GraphMaterializer) Materialize(ctx context.Context, record *entities.CreatureRecord) (*MaterializeResult, error) {
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	result := &MaterializeResult{}

	creature, err := m.principal(ctx, record.Name, result)
	if err != nil {
		return nil, err
	}
	result.Creature = creature

	if err := m.attachAttributes(ctx, creature, record, result); err != nil {
		return nil, err
	}

	categories := make([]*entities.Entity, 0, len(record.Categories))
	for _, name := range record.Categories {
		category, err := m.category(ctx, name, result)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	for _, category := range categories {
		err := m.relate(ctx, entities.RelationHasCategory, []entities.RolePlayer{
			{Role: entities.RoleBearer, EntityID: creature.ID},
			{Role: entities.RoleCategorizedType, EntityID: category.ID},
		}, result)
		if err != nil {
			return nil, err
		}
	}

	if record.HasAncestor() {
		ancestor, err := m.ancestor(ctx, record.EvolvesFrom, result)
		if err != nil {
			return nil, err
		}
		result.Ancestor = ancestor

		err = m.relate(ctx, entities.RelationEvolvesFrom, []entities.RolePlayer{
			{Role: entities.RoleDescendant, EntityID: creature.ID},
			{Role: entities.RoleAncestor, EntityID: ancestor.ID},
		}, result)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// principal resolves the entity the record describes.
func (m *GraphMaterializer) principal(ctx context.Context, name string, result *MaterializeResult) (*entities.Entity, error) {
	if m.policy == PlaceholderUpgrade {
		existing, err := m.findNamed(ctx, entities.EntityCreature, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			attrs, err := m.store.AttributesOf(ctx, existing.ID)
			if err != nil {
				return nil, fmt.Errorf("reading attributes of %s: %w", name, err)
			}
			result.Reused = true
			result.PlaceholderUpgraded = isPlaceholder(attrs)
			return existing, nil
		}
	}

	creature, err := m.store.AddEntity(ctx, entities.EntityCreature)
	if err != nil {
		return nil, fmt.Errorf("creating creature %s: %w", name, err)
	}
	result.EntitiesCreated++
	return creature, nil
}

// attachAttributes attaches the record's attribute values. An empty
// description is not attached.
func (m *GraphMaterializer) attachAttributes(ctx context.Context, creature *entities.Entity, record *entities.CreatureRecord, result *MaterializeResult) error {
	values := []struct {
		attrType entities.AttributeType
		value    string
	}{
		{entities.AttributeName, record.Name},
		{entities.AttributeDexNumber, entities.LongValue(record.DexNumber)},
		{entities.AttributeDescription, record.Description},
		{entities.AttributeHeight, entities.LongValue(record.Height)},
		{entities.AttributeWeight, entities.LongValue(record.Weight)},
	}

	for _, v := range values {
		if v.value == "" {
			continue
		}
		if err := m.attach(ctx, creature, v.attrType, v.value); err != nil {
			return err
		}
		result.AttributesAttached++
	}
	return nil
}

// category looks up a category by name or creates it.
func (m *GraphMaterializer) category(ctx context.Context, name string, result *MaterializeResult) (*entities.Entity, error) {
	existing, err := m.findNamed(ctx, entities.EntityCategory, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	category, err := m.store.AddEntity(ctx, entities.EntityCategory)
	if err != nil {
		return nil, fmt.Errorf("creating category %s: %w", name, err)
	}
	result.EntitiesCreated++

	if err := m.attach(ctx, category, entities.AttributeName, name); err != nil {
		return nil, err
	}
	return category, nil
}

// ancestor looks up a creature by name or creates a name-only placeholder.
func (m *GraphMaterializer) ancestor(ctx context.Context, name string, result *MaterializeResult) (*entities.Entity, error) {
	existing, err := m.findNamed(ctx, entities.EntityCreature, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	placeholder, err := m.store.AddEntity(ctx, entities.EntityCreature)
	if err != nil {
		return nil, fmt.Errorf("creating placeholder %s: %w", name, err)
	}
	result.EntitiesCreated++
	result.PlaceholderCreated = true

	if err := m.attach(ctx, placeholder, entities.AttributeName, name); err != nil {
		return nil, err
	}
	return placeholder, nil
}

// findNamed returns the earliest entity of kind owning the name value, or nil.
func (m *GraphMaterializer) findNamed(ctx context.Context, kind entities.EntityKind, name string) (*entities.Entity, error) {
	attr, err := m.store.FindAttribute(ctx, entities.AttributeName, name)
	if err != nil {
		return nil, fmt.Errorf("looking up name %s: %w", name, err)
	}
	if attr == nil {
		return nil, nil
	}

	owners, err := m.store.OwnersOf(ctx, attr.ID, kind)
	if err != nil {
		return nil, fmt.Errorf("looking up %s owners of %s: %w", kind, name, err)
	}
	if len(owners) == 0 {
		return nil, nil
	}
	return owners[0], nil
}

// attach puts the value node and attaches it to the entity.
func (m *GraphMaterializer) attach(ctx context.Context, entity *entities.Entity, attrType entities.AttributeType, value string) error {
	attr, err := m.store.PutAttribute(ctx, attrType, value)
	if err != nil {
		return fmt.Errorf("putting %s attribute: %w", attrType, err)
	}
	if err := m.store.AttachAttribute(ctx, entity.ID, attr.ID); err != nil {
		return fmt.Errorf("attaching %s attribute: %w", attrType, err)
	}
	return nil
}

// relate creates a relationship unless an identical one was created this run.
func (m *GraphMaterializer) relate(ctx context.Context, relType entities.RelationType, players []entities.RolePlayer, result *MaterializeResult) error {
	key := entities.RelationshipKey(relType, players)
	if _, ok := m.seen[key]; ok {
		return nil
	}

	st, err := m.store.FindRelationType(ctx, relType)
	if err != nil {
		return fmt.Errorf("looking up relation type %s: %w", relType, err)
	}
	if st == nil {
		return fmt.Errorf("relation type %s is not provisioned", relType)
	}

	for _, p := range players {
		if _, err := m.store.PutRoleType(ctx, p.Role); err != nil {
			return fmt.Errorf("putting role type %s: %w", p.Role, err)
		}
	}

	if _, err := m.store.AddRelationship(ctx, relType, players); err != nil {
		return fmt.Errorf("creating %s relationship: %w", relType, err)
	}
	m.seen[key] = struct{}{}
	result.RelationshipsAdded++
	return nil
}

// isPlaceholder reports whether an attribute set carries nothing but a name.
func isPlaceholder(attrs []entities.Attribute) bool {
	for _, a := range attrs {
		if a.Type != entities.AttributeName {
			return false
		}
	}
	return true
}
