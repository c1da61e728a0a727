package types

import (
	"context"
	"time"
)

// CustomerSegment is a group of customers a business serves.
type CustomerSegment struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Size            int64     `json:"size"`
	Characteristics []string  `json:"characteristics"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SegmentPatch is a partial update of a CustomerSegment.
type SegmentPatch struct {
	Name            *string   `json:"name,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Size            *int64    `json:"size,omitempty"`
	Characteristics *[]string `json:"characteristics,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
}

// Persona is an archetypal member of a customer segment.
type Persona struct {
	ID         string    `json:"id"`
	SegmentID  string    `json:"segmentId,omitempty"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	Occupation string    `json:"occupation"`
	Location   string    `json:"location"`
	Goals      []string  `json:"goals"`
	PainPoints []string  `json:"painPoints"`
	Channels   []string  `json:"channels"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PersonaPatch is a partial update of a Persona.
type PersonaPatch struct {
	SegmentID  *string   `json:"segmentId,omitempty"`
	Name       *string   `json:"name,omitempty"`
	Age        *int      `json:"age,omitempty"`
	Occupation *string   `json:"occupation,omitempty"`
	Location   *string   `json:"location,omitempty"`
	Goals      *[]string `json:"goals,omitempty"`
	PainPoints *[]string `json:"painPoints,omitempty"`
	Channels   *[]string `json:"channels,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
}

// ChildKind names one child collection of a value proposition canvas.
type ChildKind string

// Child collection kinds.
const (
	ChildCustomerJobs     ChildKind = "customerJobs"
	ChildCustomerPains    ChildKind = "customerPains"
	ChildGainCreators     ChildKind = "gainCreators"
	ChildPainRelievers    ChildKind = "painRelievers"
	ChildProductsServices ChildKind = "productsServices"
	ChildStatements       ChildKind = "statements"
)

// ChildKinds lists every child collection kind in persistence order.
var ChildKinds = []ChildKind{
	ChildCustomerJobs,
	ChildCustomerPains,
	ChildGainCreators,
	ChildPainRelievers,
	ChildProductsServices,
	ChildStatements,
}

// Ordered reports whether rows of this kind carry an explicit position.
// Statements are one-shot and unordered.
func (k ChildKind) Ordered() bool {
	return k != ChildStatements
}

// ChildRow is one entry of a value proposition child collection. Order is set
// by the store for ordered kinds and nil otherwise.
type ChildRow struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
	Detail  string `json:"detail,omitempty"`
	Order   *int   `json:"order,omitempty"`
}

// ValueProposition is a value proposition canvas with its owned child
// collections.
type ValueProposition struct {
	ID               string     `json:"id"`
	SegmentID        string     `json:"segmentId,omitempty"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Tags             []string   `json:"tags"`
	CustomerJobs     []ChildRow `json:"customerJobs"`
	CustomerPains    []ChildRow `json:"customerPains"`
	GainCreators     []ChildRow `json:"gainCreators"`
	PainRelievers    []ChildRow `json:"painRelievers"`
	ProductsServices []ChildRow `json:"productsServices"`
	Statements       []ChildRow `json:"statements"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Children returns a pointer to the collection of the given kind, or nil for
// an unknown kind.
func (vp *ValueProposition) Children(kind ChildKind) *[]ChildRow {
	switch kind {
	case ChildCustomerJobs:
		return &vp.CustomerJobs
	case ChildCustomerPains:
		return &vp.CustomerPains
	case ChildGainCreators:
		return &vp.GainCreators
	case ChildPainRelievers:
		return &vp.PainRelievers
	case ChildProductsServices:
		return &vp.ProductsServices
	case ChildStatements:
		return &vp.Statements
	}
	return nil
}

// ValuePropositionPatch is a partial update of a value proposition. A non-nil
// child collection, even an empty one, replaces every stored row of that kind;
// a nil collection leaves the stored rows untouched.
type ValuePropositionPatch struct {
	SegmentID        *string     `json:"segmentId,omitempty"`
	Name             *string     `json:"name,omitempty"`
	Description      *string     `json:"description,omitempty"`
	Tags             *[]string   `json:"tags,omitempty"`
	CustomerJobs     *[]ChildRow `json:"customerJobs,omitempty"`
	CustomerPains    *[]ChildRow `json:"customerPains,omitempty"`
	GainCreators     *[]ChildRow `json:"gainCreators,omitempty"`
	PainRelievers    *[]ChildRow `json:"painRelievers,omitempty"`
	ProductsServices *[]ChildRow `json:"productsServices,omitempty"`
	Statements       *[]ChildRow `json:"statements,omitempty"`
}

// Children returns the payload for the given kind; nil means absent.
func (p ValuePropositionPatch) Children(kind ChildKind) *[]ChildRow {
	switch kind {
	case ChildCustomerJobs:
		return p.CustomerJobs
	case ChildCustomerPains:
		return p.CustomerPains
	case ChildGainCreators:
		return p.GainCreators
	case ChildPainRelievers:
		return p.PainRelievers
	case ChildProductsServices:
		return p.ProductsServices
	case ChildStatements:
		return p.Statements
	}
	return nil
}

// BusinessModel is a business model canvas. Each block is a list of short
// entries.
type BusinessModel struct {
	ID                    string    `json:"id"`
	ValuePropositionID    string    `json:"valuePropositionId,omitempty"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	KeyPartners           []string  `json:"keyPartners"`
	KeyActivities         []string  `json:"keyActivities"`
	KeyResources          []string  `json:"keyResources"`
	CustomerRelationships []string  `json:"customerRelationships"`
	Channels              []string  `json:"channels"`
	CostStructure         []string  `json:"costStructure"`
	RevenueStreams        []string  `json:"revenueStreams"`
	Tags                  []string  `json:"tags"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// BusinessModelPatch is a partial update of a BusinessModel.
type BusinessModelPatch struct {
	ValuePropositionID    *string   `json:"valuePropositionId,omitempty"`
	Name                  *string   `json:"name,omitempty"`
	Description           *string   `json:"description,omitempty"`
	KeyPartners           *[]string `json:"keyPartners,omitempty"`
	KeyActivities         *[]string `json:"keyActivities,omitempty"`
	KeyResources          *[]string `json:"keyResources,omitempty"`
	CustomerRelationships *[]string `json:"customerRelationships,omitempty"`
	Channels              *[]string `json:"channels,omitempty"`
	CostStructure         *[]string `json:"costStructure,omitempty"`
	RevenueStreams        *[]string `json:"revenueStreams,omitempty"`
	Tags                  *[]string `json:"tags,omitempty"`
}

// SegmentStore persists customer segments.
type SegmentStore interface {
	Get(ctx context.Context, id string) (*CustomerSegment, error)
	List(ctx context.Context) ([]*CustomerSegment, error)
	Create(ctx context.Context, s *CustomerSegment) (string, error)
	Update(ctx context.Context, id string, patch SegmentPatch) (*CustomerSegment, error)
	Delete(ctx context.Context, id string) error
}

// PersonaStore persists personas.
type PersonaStore interface {
	Get(ctx context.Context, id string) (*Persona, error)
	List(ctx context.Context) ([]*Persona, error)
	Create(ctx context.Context, p *Persona) (string, error)
	Update(ctx context.Context, id string, patch PersonaPatch) (*Persona, error)
	Delete(ctx context.Context, id string) error
}

// ValuePropositionStore persists value propositions and their child
// collections. Update runs the parent update and every child replacement in
// one transaction.
type ValuePropositionStore interface {
	Get(ctx context.Context, id string) (*ValueProposition, error)
	List(ctx context.Context) ([]*ValueProposition, error)
	Create(ctx context.Context, vp *ValueProposition) (string, error)
	Update(ctx context.Context, id string, patch ValuePropositionPatch) (*ValueProposition, error)
	Delete(ctx context.Context, id string) error
}

// BusinessModelStore persists business models.
type BusinessModelStore interface {
	Get(ctx context.Context, id string) (*BusinessModel, error)
	List(ctx context.Context) ([]*BusinessModel, error)
	Create(ctx context.Context, bm *BusinessModel) (string, error)
	Update(ctx context.Context, id string, patch BusinessModelPatch) (*BusinessModel, error)
	Delete(ctx context.Context, id string) error
}
