package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

var _ types.PersonaStore = (*personasTable)(nil)

const personaColumns = `persona_id, segment_id, name, age, occupation, location,
    goals, pain_points, channels, tags, created_at, updated_at`

type personasTable struct {
	backend *Backend
}

func (pt *personasTable) Get(ctx context.Context, id string) (*types.Persona, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}
	p, err := getPersona(ctx, db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting persona %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting persona %s: %w", id, err)
	}
	return p, nil
}

func (pt *personasTable) List(ctx context.Context) ([]*types.Persona, error) {
	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}
	return listPersonas(ctx, db)
}

// Create persists a persona. A SegmentID that does not exist is rejected
// with ErrInvalidOperation.
func (pt *personasTable) Create(ctx context.Context, p *types.Persona) (string, error) {
	if p == nil {
		return "", types.ErrInvalidData
	}
	if err := validatePersona(p); err != nil {
		return "", err
	}
	db, err := pt.backend.conn()
	if err != nil {
		return "", err
	}

	p.ID = newUUID()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		if err := requireParent(ctx, tx, "segments", "segment_id", p.SegmentID); err != nil {
			return err
		}
		return writePersona(ctx, tx, p, true)
	})
	if err != nil {
		return "", fmt.Errorf("creating persona: %w", err)
	}
	return p.ID, nil
}

func (pt *personasTable) Update(ctx context.Context, id string, patch types.PersonaPatch) (*types.Persona, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}

	var updated *types.Persona
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		p, err := getPersona(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return err
		}
		applyPersonaPatch(p, patch)
		if err := validatePersona(p); err != nil {
			return err
		}
		if patch.SegmentID != nil {
			if err := requireParent(ctx, tx, "segments", "segment_id", p.SegmentID); err != nil {
				return err
			}
		}
		p.UpdatedAt = time.Now().UTC()
		if err := writePersona(ctx, tx, p, false); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating persona %s: %w", id, err)
	}
	return updated, nil
}

func (pt *personasTable) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, pt.backend, "personas", "persona_id", id)
}

func validatePersona(p *types.Persona) error {
	if err := validateName("persona", p.Name); err != nil {
		return err
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: persona age must not be negative", types.ErrValidation)
	}
	return nil
}

func applyPersonaPatch(p *types.Persona, patch types.PersonaPatch) {
	if patch.SegmentID != nil {
		p.SegmentID = *patch.SegmentID
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Age != nil {
		p.Age = *patch.Age
	}
	if patch.Occupation != nil {
		p.Occupation = *patch.Occupation
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Goals != nil {
		p.Goals = append([]string{}, (*patch.Goals)...)
	}
	if patch.PainPoints != nil {
		p.PainPoints = append([]string{}, (*patch.PainPoints)...)
	}
	if patch.Channels != nil {
		p.Channels = append([]string{}, (*patch.Channels)...)
	}
	if patch.Tags != nil {
		p.Tags = append([]string{}, (*patch.Tags)...)
	}
}

func getPersona(ctx context.Context, q querier, id string) (*types.Persona, error) {
	return scanPersona(q.QueryRowContext(ctx, "SELECT "+personaColumns+" FROM personas WHERE persona_id = ?", id))
}

func listPersonas(ctx context.Context, q querier) ([]*types.Persona, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+personaColumns+" FROM personas ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("listing personas: %w", err)
	}
	defer rows.Close()

	out := []*types.Persona{}
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning persona: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPersona(sc scanner) (*types.Persona, error) {
	var (
		p                                 types.Persona
		segmentID, occupation, location   sql.NullString
		goals, painPoints, channels, tags sql.NullString
		createdAt, updatedAt              string
	)
	if err := sc.Scan(&p.ID, &segmentID, &p.Name, &p.Age, &occupation, &location,
		&goals, &painPoints, &channels, &tags, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Goals, err = decodeList[string]("goals", goals); err != nil {
		return nil, err
	}
	if p.PainPoints, err = decodeList[string]("pain_points", painPoints); err != nil {
		return nil, err
	}
	if p.Channels, err = decodeList[string]("channels", channels); err != nil {
		return nil, err
	}
	if p.Tags, err = decodeList[string]("tags", tags); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	p.SegmentID = segmentID.String
	p.Occupation = occupation.String
	p.Location = location.String
	return &p, nil
}

func writePersona(ctx context.Context, q querier, p *types.Persona, insert bool) error {
	lists, err := listColumns(p.Goals, p.PainPoints, p.Channels, p.Tags)
	if err != nil {
		return err
	}
	if insert {
		_, err = q.ExecContext(ctx, `INSERT INTO personas (`+personaColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, nullIfEmpty(p.SegmentID), p.Name, p.Age, p.Occupation, p.Location,
			lists[0], lists[1], lists[2], lists[3],
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	} else {
		_, err = q.ExecContext(ctx, `UPDATE personas SET
			segment_id = ?, name = ?, age = ?, occupation = ?, location = ?,
			goals = ?, pain_points = ?, channels = ?, tags = ?, updated_at = ?
			WHERE persona_id = ?`,
			nullIfEmpty(p.SegmentID), p.Name, p.Age, p.Occupation, p.Location,
			lists[0], lists[1], lists[2], lists[3], formatTime(p.UpdatedAt), p.ID)
	}
	if err != nil {
		return fmt.Errorf("writing persona: %w", err)
	}
	return nil
}
