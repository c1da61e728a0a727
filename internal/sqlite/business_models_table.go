package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

var _ types.BusinessModelStore = (*businessModelsTable)(nil)

const businessModelColumns = `business_model_id, value_proposition_id, name, description,
    key_partners, key_activities, key_resources, customer_relationships,
    channels, cost_structure, revenue_streams, tags, created_at, updated_at`

type businessModelsTable struct {
	backend *Backend
}

func (bt *businessModelsTable) Get(ctx context.Context, id string) (*types.BusinessModel, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := bt.backend.conn()
	if err != nil {
		return nil, err
	}
	bm, err := getBusinessModel(ctx, db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting business model %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting business model %s: %w", id, err)
	}
	return bm, nil
}

func (bt *businessModelsTable) List(ctx context.Context) ([]*types.BusinessModel, error) {
	db, err := bt.backend.conn()
	if err != nil {
		return nil, err
	}
	return listBusinessModels(ctx, db)
}

func (bt *businessModelsTable) Create(ctx context.Context, bm *types.BusinessModel) (string, error) {
	if bm == nil {
		return "", types.ErrInvalidData
	}
	if err := validateName("business model", bm.Name); err != nil {
		return "", err
	}
	db, err := bt.backend.conn()
	if err != nil {
		return "", err
	}

	bm.ID = newUUID()
	now := time.Now().UTC()
	bm.CreatedAt, bm.UpdatedAt = now, now
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		if err := requireParent(ctx, tx, "value_propositions", "value_proposition_id", bm.ValuePropositionID); err != nil {
			return err
		}
		return writeBusinessModel(ctx, tx, bm, true)
	})
	if err != nil {
		return "", fmt.Errorf("creating business model: %w", err)
	}
	return bm.ID, nil
}

func (bt *businessModelsTable) Update(ctx context.Context, id string, patch types.BusinessModelPatch) (*types.BusinessModel, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if patch.Name != nil {
		if err := validateName("business model", *patch.Name); err != nil {
			return nil, err
		}
	}
	db, err := bt.backend.conn()
	if err != nil {
		return nil, err
	}

	var updated *types.BusinessModel
	err = inTx(ctx, db, func(tx *sql.Tx) error {
		bm, err := getBusinessModel(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return err
		}
		applyBusinessModelPatch(bm, patch)
		if patch.ValuePropositionID != nil {
			if err := requireParent(ctx, tx, "value_propositions", "value_proposition_id", bm.ValuePropositionID); err != nil {
				return err
			}
		}
		bm.UpdatedAt = time.Now().UTC()
		if err := writeBusinessModel(ctx, tx, bm, false); err != nil {
			return err
		}
		updated = bm
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating business model %s: %w", id, err)
	}
	return updated, nil
}

func (bt *businessModelsTable) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, bt.backend, "business_models", "business_model_id", id)
}

func applyBusinessModelPatch(bm *types.BusinessModel, p types.BusinessModelPatch) {
	if p.ValuePropositionID != nil {
		bm.ValuePropositionID = *p.ValuePropositionID
	}
	if p.Name != nil {
		bm.Name = *p.Name
	}
	if p.Description != nil {
		bm.Description = *p.Description
	}
	lists := []struct {
		dst *[]string
		src *[]string
	}{
		{&bm.KeyPartners, p.KeyPartners},
		{&bm.KeyActivities, p.KeyActivities},
		{&bm.KeyResources, p.KeyResources},
		{&bm.CustomerRelationships, p.CustomerRelationships},
		{&bm.Channels, p.Channels},
		{&bm.CostStructure, p.CostStructure},
		{&bm.RevenueStreams, p.RevenueStreams},
		{&bm.Tags, p.Tags},
	}
	for _, l := range lists {
		if l.src != nil {
			*l.dst = append([]string{}, (*l.src)...)
		}
	}
}

func getBusinessModel(ctx context.Context, q querier, id string) (*types.BusinessModel, error) {
	return scanBusinessModel(q.QueryRowContext(ctx,
		"SELECT "+businessModelColumns+" FROM business_models WHERE business_model_id = ?", id))
}

func listBusinessModels(ctx context.Context, q querier) ([]*types.BusinessModel, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+businessModelColumns+" FROM business_models ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("listing business models: %w", err)
	}
	defer rows.Close()

	out := []*types.BusinessModel{}
	for rows.Next() {
		bm, err := scanBusinessModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning business model: %w", err)
		}
		out = append(out, bm)
	}
	return out, rows.Err()
}

func scanBusinessModel(sc scanner) (*types.BusinessModel, error) {
	var (
		bm                   types.BusinessModel
		vpID, description    sql.NullString
		blocks               [8]sql.NullString
		createdAt, updatedAt string
	)
	if err := sc.Scan(&bm.ID, &vpID, &bm.Name, &description,
		&blocks[0], &blocks[1], &blocks[2], &blocks[3],
		&blocks[4], &blocks[5], &blocks[6], &blocks[7],
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	targets := []struct {
		column string
		dst    *[]string
	}{
		{"key_partners", &bm.KeyPartners},
		{"key_activities", &bm.KeyActivities},
		{"key_resources", &bm.KeyResources},
		{"customer_relationships", &bm.CustomerRelationships},
		{"channels", &bm.Channels},
		{"cost_structure", &bm.CostStructure},
		{"revenue_streams", &bm.RevenueStreams},
		{"tags", &bm.Tags},
	}
	for i, t := range targets {
		list, err := decodeList[string](t.column, blocks[i])
		if err != nil {
			return nil, err
		}
		*t.dst = list
	}

	var err error
	if bm.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if bm.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	bm.ValuePropositionID = vpID.String
	bm.Description = description.String
	return &bm, nil
}

func writeBusinessModel(ctx context.Context, q querier, bm *types.BusinessModel, insert bool) error {
	lists, err := listColumns(bm.KeyPartners, bm.KeyActivities, bm.KeyResources,
		bm.CustomerRelationships, bm.Channels, bm.CostStructure, bm.RevenueStreams, bm.Tags)
	if err != nil {
		return err
	}
	if insert {
		args := append([]any{bm.ID, nullIfEmpty(bm.ValuePropositionID), bm.Name, bm.Description}, lists...)
		args = append(args, formatTime(bm.CreatedAt), formatTime(bm.UpdatedAt))
		_, err = q.ExecContext(ctx, `INSERT INTO business_models (`+businessModelColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	} else {
		args := append([]any{nullIfEmpty(bm.ValuePropositionID), bm.Name, bm.Description}, lists...)
		args = append(args, formatTime(bm.UpdatedAt), bm.ID)
		_, err = q.ExecContext(ctx, `UPDATE business_models SET
			value_proposition_id = ?, name = ?, description = ?,
			key_partners = ?, key_activities = ?, key_resources = ?, customer_relationships = ?,
			channels = ?, cost_structure = ?, revenue_streams = ?, tags = ?, updated_at = ?
			WHERE business_model_id = ?`, args...)
	}
	if err != nil {
		return fmt.Errorf("writing business model: %w", err)
	}
	return nil
}
