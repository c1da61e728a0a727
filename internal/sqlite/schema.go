package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// Schema DDL. Statements are idempotent so Attach can run them against an
// existing database.
const (
	createViews = `CREATE TABLE IF NOT EXISTS views (
    view_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    source TEXT NOT NULL,
    layout TEXT NOT NULL,
    filters TEXT NOT NULL DEFAULT '[]',
    sort_by TEXT,
    sort_order TEXT,
    active_sorts TEXT NOT NULL DEFAULT '[]',
    group_by TEXT,
    visible_fields TEXT NOT NULL DEFAULT '[]',
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createSegments = `CREATE TABLE IF NOT EXISTS segments (
    segment_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    size INTEGER NOT NULL DEFAULT 0,
    characteristics TEXT,
    tags TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createPersonas = `CREATE TABLE IF NOT EXISTS personas (
    persona_id TEXT PRIMARY KEY,
    segment_id TEXT REFERENCES segments(segment_id) ON DELETE SET NULL,
    name TEXT NOT NULL,
    age INTEGER NOT NULL DEFAULT 0,
    occupation TEXT,
    location TEXT,
    goals TEXT,
    pain_points TEXT,
    channels TEXT,
    tags TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createValuePropositions = `CREATE TABLE IF NOT EXISTS value_propositions (
    value_proposition_id TEXT PRIMARY KEY,
    segment_id TEXT REFERENCES segments(segment_id) ON DELETE SET NULL,
    name TEXT NOT NULL,
    description TEXT,
    tags TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createBusinessModels = `CREATE TABLE IF NOT EXISTS business_models (
    business_model_id TEXT PRIMARY KEY,
    value_proposition_id TEXT REFERENCES value_propositions(value_proposition_id) ON DELETE SET NULL,
    name TEXT NOT NULL,
    description TEXT,
    key_partners TEXT,
    key_activities TEXT,
    key_resources TEXT,
    customer_relationships TEXT,
    channels TEXT,
    cost_structure TEXT,
    revenue_streams TEXT,
    tags TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	// orderedChildDDL is instantiated once per ordered child kind.
	orderedChildDDL = `CREATE TABLE IF NOT EXISTS %s (
    child_id TEXT PRIMARY KEY,
    value_proposition_id TEXT NOT NULL REFERENCES value_propositions(value_proposition_id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    detail TEXT,
    sort_order INTEGER NOT NULL
);`

	// unorderedChildDDL has no position column.
	unorderedChildDDL = `CREATE TABLE IF NOT EXISTS %s (
    child_id TEXT PRIMARY KEY,
    value_proposition_id TEXT NOT NULL REFERENCES value_propositions(value_proposition_id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    detail TEXT
);`

	childIndexDDL = `CREATE INDEX IF NOT EXISTS idx_%s_parent ON %s(value_proposition_id);`
)

// Index DDL. idxViewsSingleDefault makes a second default row a constraint
// violation no matter which code path writes it.
const (
	idxViewsSingleDefault = `CREATE UNIQUE INDEX IF NOT EXISTS idx_views_single_default ON views(is_default) WHERE is_default = 1;`
	idxViewsSource        = `CREATE INDEX IF NOT EXISTS idx_views_source ON views(source);`
	idxPersonasSegment    = `CREATE INDEX IF NOT EXISTS idx_personas_segment ON personas(segment_id);`
	idxVPSegment          = `CREATE INDEX IF NOT EXISTS idx_value_propositions_segment ON value_propositions(segment_id);`
	idxBMValueProposition = `CREATE INDEX IF NOT EXISTS idx_business_models_vp ON business_models(value_proposition_id);`
)

// childTables maps each child kind to its table.
var childTables = map[types.ChildKind]string{
	types.ChildCustomerJobs:     "customer_jobs",
	types.ChildCustomerPains:    "customer_pains",
	types.ChildGainCreators:     "gain_creators",
	types.ChildPainRelievers:    "pain_relievers",
	types.ChildProductsServices: "products_services",
	types.ChildStatements:       "value_proposition_statements",
}

// schemaDDL lists all CREATE TABLE statements in dependency order.
func schemaDDL() []string {
	ddl := []string{
		createViews,
		createSegments,
		createPersonas,
		createValuePropositions,
		createBusinessModels,
	}
	for _, kind := range types.ChildKinds {
		tmpl := orderedChildDDL
		if !kind.Ordered() {
			tmpl = unorderedChildDDL
		}
		ddl = append(ddl, fmt.Sprintf(tmpl, childTables[kind]))
	}
	return ddl
}

// indexDDL lists all CREATE INDEX statements.
func indexDDL() []string {
	ddl := []string{
		idxViewsSingleDefault,
		idxViewsSource,
		idxPersonasSegment,
		idxVPSegment,
		idxBMValueProposition,
	}
	for _, kind := range types.ChildKinds {
		t := childTables[kind]
		ddl = append(ddl, fmt.Sprintf(childIndexDDL, t, t))
	}
	return ddl
}

func applySchema(db *sql.DB) error {
	for _, stmt := range schemaDDL() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range indexDDL() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
