package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/canvasboard/internal/metrics"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

var _ types.ValuePropositionStore = (*valuePropositionsTable)(nil)

const valuePropositionColumns = `value_proposition_id, segment_id, name, description, tags, created_at, updated_at`

type valuePropositionsTable struct {
	backend *Backend
}

func (vt *valuePropositionsTable) Get(ctx context.Context, id string) (*types.ValueProposition, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}
	vp, err := loadValueProposition(ctx, db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting value proposition %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting value proposition %s: %w", id, err)
	}
	return vp, nil
}

// List returns every value proposition with its child collections.
func (vt *valuePropositionsTable) List(ctx context.Context) ([]*types.ValueProposition, error) {
	db, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}
	return listValuePropositions(ctx, db)
}

// Create persists a value proposition and any child rows it carries.
func (vt *valuePropositionsTable) Create(ctx context.Context, vp *types.ValueProposition) (string, error) {
	if vp == nil {
		return "", types.ErrInvalidData
	}
	if err := validateName("value proposition", vp.Name); err != nil {
		return "", err
	}
	for _, kind := range types.ChildKinds {
		if err := validateChildRows(kind, *vp.Children(kind)); err != nil {
			return "", err
		}
	}
	db, err := vt.backend.conn()
	if err != nil {
		return "", err
	}

	vp.ID = newUUID()
	now := time.Now().UTC()
	vp.CreatedAt, vp.UpdatedAt = now, now

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		if err := requireParent(ctx, tx, "segments", "segment_id", vp.SegmentID); err != nil {
			return err
		}
		if err := writeValueProposition(ctx, tx, vp, true); err != nil {
			return err
		}
		for _, kind := range types.ChildKinds {
			if err := replaceChildren(ctx, tx, vp.ID, kind, *vp.Children(kind)); err != nil {
				return err
			}
		}
		stored, err := loadValueProposition(ctx, tx, vp.ID)
		if err != nil {
			return err
		}
		*vp = *stored
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("creating value proposition: %w", err)
	}
	return vp.ID, nil
}

// Update applies patch to the value proposition in one transaction: the
// parent's scalar fields and, for every child kind present in the patch, a
// delete-then-insert of that collection. Kinds absent from the patch keep
// their rows. A missing parent yields an error matching both
// ErrInvalidOperation and ErrNotFound; any failure once the transaction has
// begun rolls back the whole unit and yields ErrTransactionFailure.
func (vt *valuePropositionsTable) Update(ctx context.Context, id string, patch types.ValuePropositionPatch) (*types.ValueProposition, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	vp, err := vt.update(ctx, id, patch)
	outcome := replaceOutcome(err)
	metrics.ReplaceTransactions.WithLabelValues(outcome).Inc()
	if err != nil {
		vt.backend.logger.Warn("value proposition update failed",
			"value_proposition_id", id, "outcome", outcome, "error", err)
		return nil, err
	}
	vt.backend.logger.Debug("value proposition updated",
		"value_proposition_id", id, "replaced", replacedKinds(patch))
	return vp, nil
}

func (vt *valuePropositionsTable) update(ctx context.Context, id string, patch types.ValuePropositionPatch) (*types.ValueProposition, error) {
	if patch.Name != nil {
		if err := validateName("value proposition", *patch.Name); err != nil {
			return nil, err
		}
	}
	for _, kind := range types.ChildKinds {
		if rows := patch.Children(kind); rows != nil {
			if err := validateChildRows(kind, *rows); err != nil {
				return nil, err
			}
		}
	}
	db, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: beginning update of value proposition %s: %w", types.ErrTransactionFailure, id, err)
	}
	defer tx.Rollback()

	vp, err := getValuePropositionRow(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: value proposition %s: %w", types.ErrInvalidOperation, id, types.ErrNotFound)
	}
	if err != nil {
		return nil, txFailure(id, err)
	}

	applyValuePropositionPatch(vp, patch)
	if patch.SegmentID != nil {
		if err := requireParent(ctx, tx, "segments", "segment_id", vp.SegmentID); err != nil {
			if errors.Is(err, types.ErrInvalidOperation) {
				return nil, err
			}
			return nil, txFailure(id, err)
		}
	}
	vp.UpdatedAt = time.Now().UTC()
	if err := writeValueProposition(ctx, tx, vp, false); err != nil {
		return nil, txFailure(id, err)
	}

	for _, kind := range types.ChildKinds {
		rows := patch.Children(kind)
		if rows == nil {
			continue
		}
		if err := replaceChildren(ctx, tx, id, kind, *rows); err != nil {
			return nil, txFailure(id, err)
		}
	}

	result, err := loadValueProposition(ctx, tx, id)
	if err != nil {
		return nil, txFailure(id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, txFailure(id, err)
	}
	return result, nil
}

// Delete removes a value proposition; its child rows go with it.
func (vt *valuePropositionsTable) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, vt.backend, "value_propositions", "value_proposition_id", id)
}

// replaceChildren deletes every row of kind owned by parentID and inserts
// rows in order. Ordered kinds get order = index. A row keeps its id only if
// parentID already owned it and no earlier row claimed it; every other row
// gets a fresh one.
func replaceChildren(ctx context.Context, tx *sql.Tx, parentID string, kind types.ChildKind, rows []types.ChildRow) error {
	table, ok := childTables[kind]
	if !ok {
		return fmt.Errorf("%w: unknown child kind %q", types.ErrValidation, kind)
	}
	owned, err := ownedChildIDs(ctx, tx, table, parentID)
	if err != nil {
		return fmt.Errorf("reading %s ids: %w", kind, err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE value_proposition_id = ?", table), parentID); err != nil {
		return fmt.Errorf("clearing %s: %w", kind, err)
	}

	var insert string
	if kind.Ordered() {
		insert = fmt.Sprintf(`INSERT INTO %s (child_id, value_proposition_id, content, detail, sort_order)
			VALUES (?, ?, ?, ?, ?)`, table)
	} else {
		insert = fmt.Sprintf(`INSERT INTO %s (child_id, value_proposition_id, content, detail)
			VALUES (?, ?, ?, ?)`, table)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", kind, err)
	}
	defer stmt.Close()

	used := make(map[string]bool, len(rows))
	for i, row := range rows {
		// Only ids this parent already owned survive, each at most once.
		childID := row.ID
		if !owned[childID] || used[childID] {
			childID = newUUID()
		}
		used[childID] = true
		args := []any{childID, parentID, row.Content, nullIfEmpty(row.Detail)}
		if kind.Ordered() {
			args = append(args, i)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting %s row %d: %w", kind, i, err)
		}
	}
	return nil
}

// ownedChildIDs returns the ids of the rows parentID holds in table.
func ownedChildIDs(ctx context.Context, tx *sql.Tx, table, parentID string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf("SELECT child_id FROM %s WHERE value_proposition_id = ?", table), parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

func txFailure(id string, err error) error {
	return fmt.Errorf("%w: updating value proposition %s: %w", types.ErrTransactionFailure, id, err)
}

func replaceOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCommitted
	case errors.Is(err, types.ErrTransactionFailure):
		return metrics.OutcomeRolledBack
	default:
		return metrics.OutcomeRejected
	}
}

func replacedKinds(patch types.ValuePropositionPatch) []string {
	var kinds []string
	for _, kind := range types.ChildKinds {
		if patch.Children(kind) != nil {
			kinds = append(kinds, string(kind))
		}
	}
	return kinds
}

func validateChildRows(kind types.ChildKind, rows []types.ChildRow) error {
	for i, row := range rows {
		if strings.TrimSpace(row.Content) == "" {
			return fmt.Errorf("%w: %s row %d has no content", types.ErrValidation, kind, i)
		}
	}
	return nil
}

func applyValuePropositionPatch(vp *types.ValueProposition, p types.ValuePropositionPatch) {
	if p.SegmentID != nil {
		vp.SegmentID = *p.SegmentID
	}
	if p.Name != nil {
		vp.Name = *p.Name
	}
	if p.Description != nil {
		vp.Description = *p.Description
	}
	if p.Tags != nil {
		vp.Tags = append([]string{}, (*p.Tags)...)
	}
}

// getValuePropositionRow reads the parent row only; child collections are
// left empty.
func getValuePropositionRow(ctx context.Context, q querier, id string) (*types.ValueProposition, error) {
	return scanValueProposition(q.QueryRowContext(ctx,
		"SELECT "+valuePropositionColumns+" FROM value_propositions WHERE value_proposition_id = ?", id))
}

// loadValueProposition reads the parent row and all child collections.
func loadValueProposition(ctx context.Context, q querier, id string) (*types.ValueProposition, error) {
	vp, err := getValuePropositionRow(ctx, q, id)
	if err != nil {
		return nil, err
	}
	children, err := loadChildren(ctx, q, id)
	if err != nil {
		return nil, err
	}
	attachChildren(vp, children[id])
	return vp, nil
}

func listValuePropositions(ctx context.Context, q querier) ([]*types.ValueProposition, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+valuePropositionColumns+" FROM value_propositions ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("listing value propositions: %w", err)
	}
	out := []*types.ValueProposition{}
	for rows.Next() {
		vp, err := scanValueProposition(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning value proposition: %w", err)
		}
		out = append(out, vp)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Close before the child queries; the pool has a single connection.
	rows.Close()

	children, err := loadChildren(ctx, q, "")
	if err != nil {
		return nil, err
	}
	for _, vp := range out {
		attachChildren(vp, children[vp.ID])
	}
	return out, nil
}

// loadChildren reads child rows grouped by parent and kind. An empty
// parentID loads the rows of every parent.
func loadChildren(ctx context.Context, q querier, parentID string) (map[string]map[types.ChildKind][]types.ChildRow, error) {
	out := make(map[string]map[types.ChildKind][]types.ChildRow)
	for _, kind := range types.ChildKinds {
		table := childTables[kind]
		order := "NULL"
		orderBy := "rowid"
		if kind.Ordered() {
			order = "sort_order"
			orderBy = "sort_order, rowid"
		}
		query := fmt.Sprintf("SELECT child_id, value_proposition_id, content, detail, %s FROM %s", order, table)
		var args []any
		if parentID != "" {
			query += " WHERE value_proposition_id = ?"
			args = append(args, parentID)
		}
		query += " ORDER BY value_proposition_id, " + orderBy

		if err := func() error {
			rows, err := q.QueryContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("loading %s: %w", kind, err)
			}
			defer rows.Close()
			for rows.Next() {
				var (
					row    types.ChildRow
					parent string
					detail sql.NullString
					pos    sql.NullInt64
				)
				if err := rows.Scan(&row.ID, &parent, &row.Content, &detail, &pos); err != nil {
					return fmt.Errorf("scanning %s: %w", kind, err)
				}
				row.Detail = detail.String
				if pos.Valid {
					n := int(pos.Int64)
					row.Order = &n
				}
				if out[parent] == nil {
					out[parent] = make(map[types.ChildKind][]types.ChildRow)
				}
				out[parent][kind] = append(out[parent][kind], row)
			}
			return rows.Err()
		}(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// attachChildren sets every collection on vp, using empty slices for kinds
// with no rows.
func attachChildren(vp *types.ValueProposition, byKind map[types.ChildKind][]types.ChildRow) {
	for _, kind := range types.ChildKinds {
		rows := byKind[kind]
		if rows == nil {
			rows = []types.ChildRow{}
		}
		*vp.Children(kind) = rows
	}
}

func scanValueProposition(sc scanner) (*types.ValueProposition, error) {
	var (
		vp                     types.ValueProposition
		segmentID, description sql.NullString
		tags                   sql.NullString
		createdAt, updatedAt   string
	)
	if err := sc.Scan(&vp.ID, &segmentID, &vp.Name, &description, &tags, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if vp.Tags, err = decodeList[string]("tags", tags); err != nil {
		return nil, err
	}
	if vp.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if vp.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	vp.SegmentID = segmentID.String
	vp.Description = description.String
	return &vp, nil
}

func writeValueProposition(ctx context.Context, q querier, vp *types.ValueProposition, insert bool) error {
	tags, err := encodeList(vp.Tags)
	if err != nil {
		return err
	}
	if insert {
		_, err = q.ExecContext(ctx, `INSERT INTO value_propositions (`+valuePropositionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			vp.ID, nullIfEmpty(vp.SegmentID), vp.Name, vp.Description, tags,
			formatTime(vp.CreatedAt), formatTime(vp.UpdatedAt))
	} else {
		_, err = q.ExecContext(ctx, `UPDATE value_propositions SET
			segment_id = ?, name = ?, description = ?, tags = ?, updated_at = ?
			WHERE value_proposition_id = ?`,
			nullIfEmpty(vp.SegmentID), vp.Name, vp.Description, tags, formatTime(vp.UpdatedAt), vp.ID)
	}
	if err != nil {
		return fmt.Errorf("writing value proposition: %w", err)
	}
	return nil
}
