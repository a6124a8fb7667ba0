package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entity is a typed node in the graph (a creature or a category). An entity
// carries no data of its own; everything it knows is attached as attributes.
type Entity struct {
	ID        string     `json:"id"`
	Type      EntityKind `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
}

// Attribute is a value node shared by every entity that owns the same value
// of the same attribute type.
type Attribute struct {
	ID        string        `json:"id"`
	Type      AttributeType `json:"type"`
	Value     string        `json:"value"`
	CreatedAt time.Time     `json:"created_at"`
}

// Long returns the attribute value as an integer.
func (a *Attribute) Long() (int64, error) {
	v, err := strconv.ParseInt(a.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s is not a long: %w", a.Type, err)
	}
	return v, nil
}

// LongValue formats an integer the way long attributes are stored.
func LongValue(v int64) string {
	return strconv.FormatInt(v, 10)
}

// NormalizeName converts a name to lowercase for case-insensitive matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
