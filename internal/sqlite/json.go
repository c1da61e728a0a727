package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// encodeList serializes a list attribute for a TEXT column. A nil list is
// stored as "[]".
func encodeList[T any](list []T) (string, error) {
	if list == nil {
		return "[]", nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

// decodeList parses a JSON list column. NULL and empty text decode to an
// empty, non-nil slice; text that is not a JSON array of T is a validation
// error naming the column.
func decodeList[T any](column string, s sql.NullString) ([]T, error) {
	out := []T{}
	if !s.Valid || strings.TrimSpace(s.String) == "" || s.String == "null" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil, fmt.Errorf("%w: column %s holds malformed JSON: %v", types.ErrValidation, column, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// listColumns encodes several string lists in one call, keeping column
// order.
func listColumns(lists ...[]string) ([]any, error) {
	out := make([]any, len(lists))
	for i, l := range lists {
		s, err := encodeList(l)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// timeLayout is RFC 3339 with a fixed-width fraction so stored timestamps
// sort correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", types.ErrValidation, s)
	}
	return t, nil
}

// toRecord converts an entity into its JSON-shaped record by a JSON round
// trip, so field names match the API and numbers decode as float64.
func toRecord(v any) (types.Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	var r types.Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return r, nil
}
