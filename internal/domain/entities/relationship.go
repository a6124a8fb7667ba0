package entities

import (
	"sort"
	"strings"
	"time"
)

// RolePlayer binds an entity to a named role inside a relationship.
type RolePlayer struct {
	Role     Role   `json:"role"`
	EntityID string `json:"entity_id"`
}

// Relationship is an n-ary relation instance. Each player occupies a role.
type Relationship struct {
	ID        string       `json:"id"`
	Type      RelationType `json:"type"`
	Players   []RolePlayer `json:"players"`
	CreatedAt time.Time    `json:"created_at"`
}

// Player returns the entity ID bound to the given role.
func (r *Relationship) Player(role Role) (string, bool) {
	for _, p := range r.Players {
		if p.Role == role {
			return p.EntityID, true
		}
	}
	return "", false
}

// RelationshipKey identifies a role-assignment tuple independent of the
// order players were bound in.
func RelationshipKey(relType RelationType, players []RolePlayer) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = string(p.Role) + "=" + p.EntityID
	}
	sort.Strings(parts)
	return string(relType) + "|" + strings.Join(parts, "|")
}
