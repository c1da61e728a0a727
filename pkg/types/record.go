package types

// Record is a generic, JSON-shaped view of one entity. Nested objects are
// map[string]any (or Record), arrays are []any.
type Record = map[string]any

// Option is a distinct value of some field across a collection, with the
// number of times it was seen. Options populate filter and sort pickers.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value any    `json:"value"`
	Count int    `json:"count"`
}

// Group is one partition of a grouped projection.
type Group struct {
	Key   any      `json:"key"`
	Label string   `json:"label"`
	Count int      `json:"count"` // members across the whole filtered set
	Items []Record `json:"items"` // members on the current page
}

// Projection is the filtered, sorted, grouped, and paginated result of
// applying a view to a record collection.
type Projection struct {
	Items           []Record `json:"items"`
	Groups          []Group  `json:"groups,omitempty"`
	TotalCount      int      `json:"totalCount"`
	Page            int      `json:"page"`
	Limit           int      `json:"limit"`
	TotalPages      int      `json:"totalPages"`
	HasNextPage     bool     `json:"hasNextPage"`
	HasPreviousPage bool     `json:"hasPreviousPage"`
}
