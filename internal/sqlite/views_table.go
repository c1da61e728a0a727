package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/canvasboard/internal/metrics"
	"github.com/mesh-intelligence/canvasboard/internal/view"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

var _ types.ViewStore = (*viewsTable)(nil)

const viewColumns = `view_id, name, source, layout, filters, sort_by, sort_order,
    active_sorts, group_by, visible_fields, is_default, created_at, updated_at`

const defaultFlightKey = "views:default"

type viewsTable struct {
	backend *Backend
}

// Get returns the descriptor with the given id.
func (vt *viewsTable) Get(ctx context.Context, id string) (*types.ViewDescriptor, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}
	v, err := getView(ctx, db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting view %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting view %s: %w", id, err)
	}
	return v, nil
}

// GetDefault returns the default descriptor, materializing the built-in
// default when none exists. Concurrent first calls share one seeding
// transaction.
func (vt *viewsTable) GetDefault(ctx context.Context) (*types.ViewDescriptor, error) {
	db, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}
	v, err := getDefaultView(ctx, db)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting default view: %w", err)
	}

	res, err, _ := vt.backend.flight.Do(defaultFlightKey, func() (any, error) {
		return vt.materializeDefault(context.WithoutCancel(ctx), db)
	})
	if err != nil {
		return nil, err
	}
	return cloneView(res.(*types.ViewDescriptor)), nil
}

// materializeDefault re-checks for a default inside a transaction and
// persists the default template only if there is still none.
func (vt *viewsTable) materializeDefault(ctx context.Context, db *sql.DB) (*types.ViewDescriptor, error) {
	var (
		result *types.ViewDescriptor
		seeded bool
	)
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		existing, err := getDefaultView(ctx, tx)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		v := defaultTemplate()
		v.ID = newUUID()
		now := time.Now().UTC()
		v.CreatedAt, v.UpdatedAt = now, now
		if err := insertView(ctx, tx, v); err != nil {
			return err
		}
		result, seeded = v, true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: seeding default view: %w", types.ErrTransactionFailure, err)
	}
	if seeded {
		metrics.DefaultViewSwaps.WithLabelValues("seed").Inc()
		vt.backend.logger.Info("seeded default view", "view_id", result.ID, "name", result.Name)
	}
	return result, nil
}

// List returns descriptors oldest first, optionally restricted to a source.
func (vt *viewsTable) List(ctx context.Context, source types.Source) ([]*types.ViewDescriptor, error) {
	if source != "" && !source.Valid() {
		return nil, fmt.Errorf("%w: unknown source %q", types.ErrValidation, source)
	}
	db, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}

	query := "SELECT " + viewColumns + " FROM views"
	var args []any
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, string(source))
	}
	query += " ORDER BY created_at, rowid"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}
	defer rows.Close()

	views := []*types.ViewDescriptor{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning view: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// Create validates and persists v, assigning its id and timestamps. A
// descriptor created as the default takes the flag from the previous default
// in the same transaction.
func (vt *viewsTable) Create(ctx context.Context, v *types.ViewDescriptor) (string, error) {
	if v == nil {
		return "", types.ErrInvalidData
	}
	if v.Layout == "" {
		v.Layout = types.LayoutCard
	}
	if err := view.ValidateDescriptor(v); err != nil {
		return "", err
	}
	db, err := vt.backend.conn()
	if err != nil {
		return "", err
	}

	v.ID = newUUID()
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		if v.IsDefault {
			if err := clearDefault(ctx, tx, v.ID, now); err != nil {
				return err
			}
		}
		return insertView(ctx, tx, v)
	})
	if err != nil {
		if v.IsDefault {
			return "", fmt.Errorf("%w: creating default view: %w", types.ErrTransactionFailure, err)
		}
		return "", fmt.Errorf("creating view: %w", err)
	}
	if v.IsDefault {
		metrics.DefaultViewSwaps.WithLabelValues("create").Inc()
		vt.backend.logger.Info("default view changed", "view_id", v.ID)
	}
	return v.ID, nil
}

// Update merges patch into the stored descriptor and returns the result.
func (vt *viewsTable) Update(ctx context.Context, id string, patch types.ViewPatch) (*types.ViewDescriptor, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}

	var updated *types.ViewDescriptor
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		v, err := getView(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return err
		}
		patch.Apply(v)
		if err := view.ValidateDescriptor(v); err != nil {
			return err
		}
		v.UpdatedAt = time.Now().UTC()
		if err := updateView(ctx, tx, v); err != nil {
			return err
		}
		updated = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating view %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a descriptor. The current default cannot be deleted.
func (vt *viewsTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := vt.backend.conn()
	if err != nil {
		return err
	}

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		var isDefault bool
		err := tx.QueryRowContext(ctx, "SELECT is_default FROM views WHERE view_id = ?", id).Scan(&isDefault)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return err
		}
		if isDefault {
			return fmt.Errorf("%w: the default view cannot be deleted", types.ErrInvalidOperation)
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM views WHERE view_id = ?", id)
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting view %s: %w", id, err)
	}
	return nil
}

// SetDefault moves the default flag to id. Clearing the old default and
// setting the new one happen in one transaction.
func (vt *viewsTable) SetDefault(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := vt.backend.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning default swap: %w", types.ErrTransactionFailure, err)
	}
	defer tx.Rollback()

	ok, err := exists(ctx, tx, "views", "view_id", id)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrTransactionFailure, err)
	}
	if !ok {
		return fmt.Errorf("setting default view %s: %w", id, types.ErrNotFound)
	}

	now := time.Now().UTC()
	if err := clearDefault(ctx, tx, id, now); err != nil {
		return fmt.Errorf("%w: %w", types.ErrTransactionFailure, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE views SET is_default = 1, updated_at = ? WHERE view_id = ?",
		formatTime(now), id); err != nil {
		return fmt.Errorf("%w: setting default flag: %w", types.ErrTransactionFailure, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing default swap: %w", types.ErrTransactionFailure, err)
	}

	metrics.DefaultViewSwaps.WithLabelValues("set").Inc()
	vt.backend.logger.Info("default view changed", "view_id", id)
	return nil
}

// SeedTemplates writes every built-in template when no descriptor exists.
func (vt *viewsTable) SeedTemplates(ctx context.Context) (int, error) {
	db, err := vt.backend.conn()
	if err != nil {
		return 0, err
	}

	var seeded int
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM views").Scan(&count); err != nil {
			return fmt.Errorf("counting views: %w", err)
		}
		if count > 0 {
			return nil
		}
		now := time.Now().UTC()
		for i := range builtInViews {
			v := cloneView(&builtInViews[i])
			v.ID = newUUID()
			// Distinct timestamps keep List in template order.
			v.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
			v.UpdatedAt = v.CreatedAt
			if err := insertView(ctx, tx, v); err != nil {
				return fmt.Errorf("seeding view %q: %w", v.Name, err)
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seeding view templates: %w", err)
	}
	if seeded > 0 {
		vt.backend.logger.Info("seeded view templates", "count", seeded)
	}
	return seeded, nil
}

func clearDefault(ctx context.Context, q querier, exceptID string, now time.Time) error {
	_, err := q.ExecContext(ctx,
		"UPDATE views SET is_default = 0, updated_at = ? WHERE is_default = 1 AND view_id != ?",
		formatTime(now), exceptID)
	if err != nil {
		return fmt.Errorf("clearing default flag: %w", err)
	}
	return nil
}

func getView(ctx context.Context, q querier, id string) (*types.ViewDescriptor, error) {
	return scanView(q.QueryRowContext(ctx, "SELECT "+viewColumns+" FROM views WHERE view_id = ?", id))
}

func getDefaultView(ctx context.Context, q querier) (*types.ViewDescriptor, error) {
	return scanView(q.QueryRowContext(ctx, "SELECT "+viewColumns+" FROM views WHERE is_default = 1"))
}

func scanView(s scanner) (*types.ViewDescriptor, error) {
	var (
		v                          types.ViewDescriptor
		source, layout             string
		filters, sorts, visible    sql.NullString
		sortBy, sortOrder, groupBy sql.NullString
		isDefault                  bool
		createdAt, updatedAt       string
	)
	if err := s.Scan(&v.ID, &v.Name, &source, &layout, &filters, &sortBy, &sortOrder,
		&sorts, &groupBy, &visible, &isDefault, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if v.Filters, err = decodeList[types.FilterCriterion]("filters", filters); err != nil {
		return nil, err
	}
	if v.Sorts, err = decodeList[types.SortCriterion]("active_sorts", sorts); err != nil {
		return nil, err
	}
	if v.VisibleFields, err = decodeList[string]("visible_fields", visible); err != nil {
		return nil, err
	}
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if v.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	v.Source = types.Source(source)
	v.Layout = types.Layout(layout)
	v.SortBy = sortBy.String
	v.SortOrder = types.SortOrder(sortOrder.String)
	v.GroupBy = groupBy.String
	v.IsDefault = isDefault
	return &v, nil
}

// viewArgs returns the column values of v after view_id, in viewColumns
// order.
func viewArgs(v *types.ViewDescriptor) ([]any, error) {
	filters, err := encodeList(v.Filters)
	if err != nil {
		return nil, err
	}
	sorts, err := encodeList(v.Sorts)
	if err != nil {
		return nil, err
	}
	visible, err := encodeList(v.VisibleFields)
	if err != nil {
		return nil, err
	}
	return []any{
		v.Name, string(v.Source), string(v.Layout), filters,
		nullIfEmpty(v.SortBy), nullIfEmpty(string(v.SortOrder)), sorts,
		nullIfEmpty(v.GroupBy), visible, v.IsDefault,
		formatTime(v.CreatedAt), formatTime(v.UpdatedAt),
	}, nil
}

func insertView(ctx context.Context, q querier, v *types.ViewDescriptor) error {
	args, err := viewArgs(v)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT INTO views (`+viewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{v.ID}, args...)...)
	if err != nil {
		return fmt.Errorf("inserting view: %w", err)
	}
	return nil
}

func updateView(ctx context.Context, q querier, v *types.ViewDescriptor) error {
	args, err := viewArgs(v)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `UPDATE views SET
		name = ?, source = ?, layout = ?, filters = ?, sort_by = ?, sort_order = ?,
		active_sorts = ?, group_by = ?, visible_fields = ?, is_default = ?,
		created_at = ?, updated_at = ?
		WHERE view_id = ?`,
		append(args, v.ID)...)
	if err != nil {
		return fmt.Errorf("updating view: %w", err)
	}
	return nil
}
