package domain

// Collection is a named container of records. Name is unique within a
// tenant+database scope; ID is the opaque backend-assigned identifier the
// legacy protocol requires in place of the name for most operations.
type Collection struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Filter is an opaque, backend-defined filter expression over record
// metadata. It is passed through verbatim: this layer never parses,
// validates, or rewrites it.
type Filter map[string]any
