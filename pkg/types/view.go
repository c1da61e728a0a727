package types

import (
	"context"
	"time"
)

// Layout selects how a view renders its records.
type Layout string

// View layouts.
const (
	LayoutCard   Layout = "CARD"
	LayoutTable  Layout = "TABLE"
	LayoutKanban Layout = "KANBAN"
)

var validLayouts = map[Layout]bool{
	LayoutCard:   true,
	LayoutTable:  true,
	LayoutKanban: true,
}

// Valid reports whether l is a recognized layout.
func (l Layout) Valid() bool {
	return validLayouts[l]
}

// SortOrder is the direction of one sort key.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Valid reports whether o is ASC or DESC.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// FilterOperator names the comparison a FilterCriterion performs.
type FilterOperator string

// Filter operators.
const (
	OpEq          FilterOperator = "eq"
	OpNeq         FilterOperator = "neq"
	OpContains    FilterOperator = "contains"
	OpNotContains FilterOperator = "not_contains"
	OpStartsWith  FilterOperator = "starts_with"
	OpGt          FilterOperator = "gt"
	OpGte         FilterOperator = "gte"
	OpLt          FilterOperator = "lt"
	OpLte         FilterOperator = "lte"
	OpIn          FilterOperator = "in"
	OpNotIn       FilterOperator = "not_in"
	OpIsEmpty     FilterOperator = "is_empty"
	OpIsNotEmpty  FilterOperator = "is_not_empty"
)

var validOperators = map[FilterOperator]bool{
	OpEq: true, OpNeq: true, OpContains: true, OpNotContains: true,
	OpStartsWith: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpIn: true, OpNotIn: true, OpIsEmpty: true, OpIsNotEmpty: true,
}

// Valid reports whether op is a recognized operator.
func (op FilterOperator) Valid() bool {
	return validOperators[op]
}

// Negated reports whether the operator holds when no element of an
// array-valued field matches its positive counterpart.
func (op FilterOperator) Negated() bool {
	return op == OpNeq || op == OpNotContains || op == OpNotIn
}

// FilterCriterion restricts a view to records whose field satisfies the
// operator. Values is used by the set operators (in, not_in); Value by the
// rest.
type FilterCriterion struct {
	Field    string         `json:"field" validate:"required,fieldpath"`
	Operator FilterOperator `json:"operator" validate:"required"`
	Value    any            `json:"value,omitempty"`
	Values   []any          `json:"values,omitempty"`
}

// SortCriterion is one key of a multi-key sort.
type SortCriterion struct {
	Field string    `json:"field" validate:"required,fieldpath"`
	Order SortOrder `json:"order" validate:"omitempty,oneof=ASC DESC"`
}

// ViewDescriptor is a persisted, named configuration describing how a record
// collection is filtered, sorted, grouped, and displayed.
type ViewDescriptor struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Source        Source            `json:"source"`
	Layout        Layout            `json:"layout"`
	Filters       []FilterCriterion `json:"filters"`
	SortBy        string            `json:"sortBy,omitempty"`
	SortOrder     SortOrder         `json:"sortOrder,omitempty"`
	Sorts         []SortCriterion   `json:"activeSorts"`
	GroupBy       string            `json:"groupBy,omitempty"`
	VisibleFields []string          `json:"visibleFields"`
	IsDefault     bool              `json:"isDefault"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// EffectiveSorts returns the sort keys the view applies: Sorts when present,
// otherwise the single SortBy/SortOrder pair, otherwise nothing.
func (v *ViewDescriptor) EffectiveSorts() []SortCriterion {
	if len(v.Sorts) > 0 {
		return v.Sorts
	}
	if v.SortBy == "" {
		return nil
	}
	order := v.SortOrder
	if order == "" {
		order = SortAsc
	}
	return []SortCriterion{{Field: v.SortBy, Order: order}}
}

// ViewPatch carries a partial update of a ViewDescriptor. Nil fields are left
// untouched. Slice fields replace the stored slice wholesale when non-nil,
// including when they point at an empty slice.
type ViewPatch struct {
	Name          *string            `json:"name,omitempty"`
	Layout        *Layout            `json:"layout,omitempty"`
	Filters       *[]FilterCriterion `json:"filters,omitempty"`
	SortBy        *string            `json:"sortBy,omitempty"`
	SortOrder     *SortOrder         `json:"sortOrder,omitempty"`
	Sorts         *[]SortCriterion   `json:"activeSorts,omitempty"`
	GroupBy       *string            `json:"groupBy,omitempty"`
	VisibleFields *[]string          `json:"visibleFields,omitempty"`
}

// Apply merges the patch into v.
func (p ViewPatch) Apply(v *ViewDescriptor) {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Layout != nil {
		v.Layout = *p.Layout
	}
	if p.Filters != nil {
		v.Filters = append([]FilterCriterion{}, (*p.Filters)...)
	}
	if p.SortBy != nil {
		v.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		v.SortOrder = *p.SortOrder
	}
	if p.Sorts != nil {
		v.Sorts = append([]SortCriterion{}, (*p.Sorts)...)
	}
	if p.GroupBy != nil {
		v.GroupBy = *p.GroupBy
	}
	if p.VisibleFields != nil {
		v.VisibleFields = append([]string{}, (*p.VisibleFields)...)
	}
}

// ViewStore persists view descriptors and maintains the single-default
// invariant: at most one descriptor is the default at any time.
type ViewStore interface {
	// Get returns the descriptor with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*ViewDescriptor, error)

	// GetDefault returns the default descriptor. When none exists, the first
	// built-in template flagged as default is persisted and returned.
	GetDefault(ctx context.Context) (*ViewDescriptor, error)

	// List returns all descriptors, oldest first. An empty source lists every
	// source.
	List(ctx context.Context, source Source) ([]*ViewDescriptor, error)

	// Create validates and persists a new descriptor and returns its id.
	Create(ctx context.Context, v *ViewDescriptor) (string, error)

	// Update merges the patch into the stored descriptor.
	Update(ctx context.Context, id string, patch ViewPatch) (*ViewDescriptor, error)

	// Delete removes a descriptor. Returns ErrInvalidOperation for the
	// current default.
	Delete(ctx context.Context, id string) error

	// SetDefault atomically moves the default flag to id.
	SetDefault(ctx context.Context, id string) error

	// SeedTemplates persists every built-in template when the store holds no
	// descriptors and returns how many were written.
	SeedTemplates(ctx context.Context) (int, error)
}
