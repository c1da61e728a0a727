package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// Import loads a directory written by Export. The store must be empty.
// Loading is transactional: either every file loads or nothing does.
// Malformed lines and rows that violate constraints are skipped; unknown
// fields are ignored.
func (b *Backend) Import(ctx context.Context, dir string) error {
	db, err := b.conn()
	if err != nil {
		return err
	}

	tables := snapshotTables()
	files := make([][]json.RawMessage, len(tables))
	for i, st := range tables {
		records, err := readJSONL(filepath.Join(dir, st.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", st.file, err)
		}
		files[i] = records
	}

	return inTx(ctx, db, func(tx *sql.Tx) error {
		for _, st := range tables {
			var n int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+st.table).Scan(&n); err != nil {
				return fmt.Errorf("counting %s: %w", st.table, err)
			}
			if n > 0 {
				return fmt.Errorf("%w: import needs an empty store, %s has %d rows",
					types.ErrInvalidOperation, st.table, n)
			}
		}
		for i, st := range tables {
			if len(files[i]) == 0 {
				continue
			}
			loaded, err := insertRecords(ctx, tx, st.table, st.columns, files[i])
			if err != nil {
				return fmt.Errorf("loading %s into %s: %w", st.file, st.table, err)
			}
			b.logger.Debug("imported table", "table", st.table,
				"rows", loaded, "skipped", len(files[i])-loaded)
		}
		return nil
	})
}

// insertRecords inserts parsed JSONL records into a table and returns how
// many were inserted. Only the listed columns are read from each record.
func insertRecords(ctx context.Context, tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	var loaded int
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			switch v := obj[col].(type) {
			case map[string]any, []any:
				// List columns written by hand may hold raw JSON instead of text.
				b, err := json.Marshal(v)
				if err != nil {
					continue
				}
				args[i] = string(b)
			default:
				args[i] = v
			}
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			continue
		}
		loaded++
	}
	return loaded, nil
}
