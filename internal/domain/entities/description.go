package entities

// DescriptionDocument is a creature description prepared for the vector index.
type DescriptionDocument struct {
	CreatureID  string    `json:"creature_id"`
	Name        string    `json:"name"`
	DexNumber   int64     `json:"dex_number"`
	Description string    `json:"description"`
	Embedding   []float32 `json:"-"`
}

// DescriptionHit is a search result from the description index.
type DescriptionHit struct {
	Name        string  `json:"name"`
	DexNumber   int64   `json:"dex_number"`
	Description string  `json:"description"`
	Score       float32 `json:"score"`
}
