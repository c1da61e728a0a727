package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

var _ types.SegmentStore = (*segmentsTable)(nil)

const segmentColumns = `segment_id, name, description, size, characteristics, tags, created_at, updated_at`

type segmentsTable struct {
	backend *Backend
}

func (st *segmentsTable) Get(ctx context.Context, id string) (*types.CustomerSegment, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := st.backend.conn()
	if err != nil {
		return nil, err
	}
	s, err := getSegment(ctx, db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting segment %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting segment %s: %w", id, err)
	}
	return s, nil
}

func (st *segmentsTable) List(ctx context.Context) ([]*types.CustomerSegment, error) {
	db, err := st.backend.conn()
	if err != nil {
		return nil, err
	}
	return listSegments(ctx, db)
}

func (st *segmentsTable) Create(ctx context.Context, s *types.CustomerSegment) (string, error) {
	if s == nil {
		return "", types.ErrInvalidData
	}
	if err := validateName("segment", s.Name); err != nil {
		return "", err
	}
	db, err := st.backend.conn()
	if err != nil {
		return "", err
	}

	s.ID = newUUID()
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	if err := writeSegment(ctx, db, s, true); err != nil {
		return "", fmt.Errorf("creating segment: %w", err)
	}
	return s.ID, nil
}

func (st *segmentsTable) Update(ctx context.Context, id string, patch types.SegmentPatch) (*types.CustomerSegment, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if patch.Name != nil {
		if err := validateName("segment", *patch.Name); err != nil {
			return nil, err
		}
	}
	db, err := st.backend.conn()
	if err != nil {
		return nil, err
	}

	var updated *types.CustomerSegment
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		s, err := getSegment(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return err
		}
		applySegmentPatch(s, patch)
		s.UpdatedAt = time.Now().UTC()
		if err := writeSegment(ctx, tx, s, false); err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating segment %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a segment. Personas and value propositions that pointed at
// it keep existing without a segment.
func (st *segmentsTable) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, st.backend, "segments", "segment_id", id)
}

func applySegmentPatch(s *types.CustomerSegment, p types.SegmentPatch) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Size != nil {
		s.Size = *p.Size
	}
	if p.Characteristics != nil {
		s.Characteristics = append([]string{}, (*p.Characteristics)...)
	}
	if p.Tags != nil {
		s.Tags = append([]string{}, (*p.Tags)...)
	}
}

func getSegment(ctx context.Context, q querier, id string) (*types.CustomerSegment, error) {
	return scanSegment(q.QueryRowContext(ctx, "SELECT "+segmentColumns+" FROM segments WHERE segment_id = ?", id))
}

func listSegments(ctx context.Context, q querier) ([]*types.CustomerSegment, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+segmentColumns+" FROM segments ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("listing segments: %w", err)
	}
	defer rows.Close()

	out := []*types.CustomerSegment{}
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSegment(sc scanner) (*types.CustomerSegment, error) {
	var (
		s                    types.CustomerSegment
		description          sql.NullString
		characteristics      sql.NullString
		tags                 sql.NullString
		createdAt, updatedAt string
	)
	if err := sc.Scan(&s.ID, &s.Name, &description, &s.Size, &characteristics, &tags, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if s.Characteristics, err = decodeList[string]("characteristics", characteristics); err != nil {
		return nil, err
	}
	if s.Tags, err = decodeList[string]("tags", tags); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	s.Description = description.String
	return &s, nil
}

func writeSegment(ctx context.Context, q querier, s *types.CustomerSegment, insert bool) error {
	lists, err := listColumns(s.Characteristics, s.Tags)
	if err != nil {
		return err
	}
	if insert {
		_, err = q.ExecContext(ctx, `INSERT INTO segments (`+segmentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.Description, s.Size, lists[0], lists[1],
			formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	} else {
		_, err = q.ExecContext(ctx, `UPDATE segments SET
			name = ?, description = ?, size = ?, characteristics = ?, tags = ?, updated_at = ?
			WHERE segment_id = ?`,
			s.Name, s.Description, s.Size, lists[0], lists[1], formatTime(s.UpdatedAt), s.ID)
	}
	if err != nil {
		return fmt.Errorf("writing segment: %w", err)
	}
	return nil
}

// deleteRow removes one row by primary key, returning ErrNotFound when the
// key matches nothing. Foreign keys handle cascades.
func deleteRow(ctx context.Context, b *Backend, table, idColumn, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := b.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, idColumn), id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", table, id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting %s %s: %w", table, id, types.ErrNotFound)
	}
	return nil
}

func validateName(entity, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", types.ErrValidation, entity)
	}
	return nil
}
