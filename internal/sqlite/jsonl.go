package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// snapshotTable maps a JSONL file to its table and the columns it carries.
type snapshotTable struct {
	file    string
	table   string
	columns []string
}

// snapshotTables lists every table in load order: parents before the rows
// that reference them.
func snapshotTables() []snapshotTable {
	tables := []snapshotTable{
		{"views.jsonl", "views", splitColumns(viewColumns)},
		{"segments.jsonl", "segments", splitColumns(segmentColumns)},
		{"personas.jsonl", "personas", splitColumns(personaColumns)},
		{"value_propositions.jsonl", "value_propositions", splitColumns(valuePropositionColumns)},
	}
	for _, kind := range types.ChildKinds {
		cols := []string{"child_id", "value_proposition_id", "content", "detail"}
		if kind.Ordered() {
			cols = append(cols, "sort_order")
		}
		t := childTables[kind]
		tables = append(tables, snapshotTable{t + ".jsonl", t, cols})
	}
	return append(tables, snapshotTable{"business_models.jsonl", "business_models", splitColumns(businessModelColumns)})
}

func splitColumns(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Export writes one JSONL file per table into dir, each line a row keyed by
// column name. Rows are read in a single transaction so the files are
// mutually consistent.
func (b *Backend) Export(ctx context.Context, dir string) error {
	db, err := b.conn()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	for _, st := range snapshotTables() {
		records, err := dumpTable(ctx, tx, st)
		if err != nil {
			return err
		}
		if err := writeJSONL(filepath.Join(dir, st.file), records); err != nil {
			return fmt.Errorf("writing %s: %w", st.file, err)
		}
		b.logger.Debug("exported table", "table", st.table, "rows", len(records))
	}
	return nil
}

func dumpTable(ctx context.Context, q querier, st snapshotTable) ([]json.RawMessage, error) {
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(st.columns, ", "), st.table))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", st.table, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(st.columns))
		ptrs := make([]any, len(st.columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", st.table, err)
		}
		obj := make(map[string]any, len(st.columns))
		for i, col := range st.columns {
			if raw, ok := values[i].([]byte); ok {
				obj[col] = string(raw)
				continue
			}
			obj[col] = values[i]
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s row: %w", st.table, err)
		}
		records = append(records, data)
	}
	return records, rows.Err()
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped. A missing file reads as
// empty.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
