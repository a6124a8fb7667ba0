package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/domain/ports"
)

// CreatureView is a creature with its attributes and neighbours resolved to names.
type CreatureView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DexNumber   int64     `json:"dex_number,omitempty"`
	Description string    `json:"description,omitempty"`
	Height      int64     `json:"height,omitempty"`
	Weight      int64     `json:"weight,omitempty"`
	Placeholder bool      `json:"placeholder"`
	Categories  []string  `json:"categories"`
	Ancestors   []string  `json:"ancestors"`
	Descendants []string  `json:"descendants"`
	CreatedAt   time.Time `json:"created_at"`
}

// GraphStats counts what a load produced.
type GraphStats struct {
	Entities      map[entities.EntityKind]int   `json:"entities"`
	Relationships map[entities.RelationType]int `json:"relationships"`
	Placeholders  int                           `json:"placeholders"`
}

// CreatureService reads creatures back out of the graph.
type CreatureService struct {
	store ports.GraphStore
}

// NewCreatureService creates a new CreatureService.
func NewCreatureService(store ports.GraphStore) *CreatureService {
	return &CreatureService{store: store}
}

// Get returns the earliest creature with the given name, or nil if none.
func (s *CreatureService) Get(ctx context.Context, name string) (*CreatureView, error) {
	name = entities.NormalizeName(name)
	attr, err := s.store.FindAttribute(ctx, entities.AttributeName, name)
	if err != nil {
		return nil, fmt.Errorf("looking up name %s: %w", name, err)
	}
	if attr == nil {
		return nil, nil
	}

	owners, err := s.store.OwnersOf(ctx, attr.ID, entities.EntityCreature)
	if err != nil {
		return nil, fmt.Errorf("looking up creatures named %s: %w", name, err)
	}
	if len(owners) == 0 {
		return nil, nil
	}
	return s.view(ctx, owners[0])
}

// List returns every creature in creation order.
func (s *CreatureService) List(ctx context.Context) ([]*CreatureView, error) {
	creatures, err := s.store.ListEntities(ctx, entities.EntityCreature)
	if err != nil {
		return nil, fmt.Errorf("listing creatures: %w", err)
	}

	views := make([]*CreatureView, 0, len(creatures))
	for _, c := range creatures {
		v, err := s.view(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Stats counts entities and relationships by type.
func (s *CreatureService) Stats(ctx context.Context) (*GraphStats, error) {
	stats := &GraphStats{
		Entities:      make(map[entities.EntityKind]int),
		Relationships: make(map[entities.RelationType]int),
	}

	for _, kind := range []entities.EntityKind{entities.EntityCreature, entities.EntityCategory} {
		n, err := s.store.CountEntities(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("counting %s entities: %w", kind, err)
		}
		stats.Entities[kind] = n
	}

	for _, relType := range []entities.RelationType{entities.RelationHasCategory, entities.RelationEvolvesFrom} {
		n, err := s.store.CountRelationships(ctx, relType)
		if err != nil {
			return nil, fmt.Errorf("counting %s relationships: %w", relType, err)
		}
		stats.Relationships[relType] = n
	}

	creatures, err := s.store.ListEntities(ctx, entities.EntityCreature)
	if err != nil {
		return nil, fmt.Errorf("listing creatures: %w", err)
	}
	for _, c := range creatures {
		attrs, err := s.store.AttributesOf(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("reading attributes: %w", err)
		}
		if isPlaceholder(attrs) {
			stats.Placeholders++
		}
	}

	return stats, nil
}

func (s *CreatureService) view(ctx context.Context, creature *entities.Entity) (*CreatureView, error) {
	attrs, err := s.store.AttributesOf(ctx, creature.ID)
	if err != nil {
		return nil, fmt.Errorf("reading attributes: %w", err)
	}

	v := &CreatureView{
		ID:          creature.ID,
		Placeholder: isPlaceholder(attrs),
		Categories:  []string{},
		Ancestors:   []string{},
		Descendants: []string{},
		CreatedAt:   creature.CreatedAt,
	}
	for i := range attrs {
		a := &attrs[i]
		switch a.Type {
		case entities.AttributeName:
			v.Name = a.Value
		case entities.AttributeDescription:
			v.Description = a.Value
		case entities.AttributeDexNumber:
			v.DexNumber, err = a.Long()
		case entities.AttributeHeight:
			v.Height, err = a.Long()
		case entities.AttributeWeight:
			v.Weight, err = a.Long()
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s of %s: %w", a.Type, creature.ID, err)
		}
	}

	rels, err := s.store.FindRelationshipsByPlayer(ctx, creature.ID)
	if err != nil {
		return nil, fmt.Errorf("reading relationships: %w", err)
	}
	for i := range rels {
		rel := &rels[i]
		var role entities.Role
		var target *[]string
		switch rel.Type {
		case entities.RelationHasCategory:
			role, target = entities.RoleCategorizedType, &v.Categories
		case entities.RelationEvolvesFrom:
			if id, _ := rel.Player(entities.RoleDescendant); id == creature.ID {
				role, target = entities.RoleAncestor, &v.Ancestors
			} else {
				role, target = entities.RoleDescendant, &v.Descendants
			}
		default:
			continue
		}

		id, ok := rel.Player(role)
		if !ok {
			continue
		}
		name, err := s.nameOf(ctx, id)
		if err != nil {
			return nil, err
		}
		*target = append(*target, name)
	}

	return v, nil
}

func (s *CreatureService) nameOf(ctx context.Context, entityID string) (string, error) {
	attrs, err := s.store.AttributesOf(ctx, entityID)
	if err != nil {
		return "", fmt.Errorf("reading attributes: %w", err)
	}
	for _, a := range attrs {
		if a.Type == entities.AttributeName {
			return a.Value, nil
		}
	}
	return entityID, nil
}
