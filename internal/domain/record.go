package domain

// Record is an (id, document, metadata, embedding) tuple stored in a
// collection. Document, Metadata and Embedding are optional; Embedding is
// only populated by detail and query operations (list views never request
// it). Distance is meaningful only on query results: smaller means closer,
// and exact-id lookups report 0.
type Record struct {
	ID        string         `json:"id"`
	Document  string         `json:"document,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Distance  float64        `json:"distance"`
}
