package postgres

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"clientview/internal/document"
	"clientview/internal/store"
	"clientview/pkg/platform/sentinel"
)

// args accumulates positional query parameters.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// literal renders s as a single-quoted SQL string literal.
func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// where renders the collection predicate plus one condition per filter field.
// Fields are rendered in sorted order so identical filters produce identical SQL.
// Known collections and their key fields are inlined as literals so the planner
// can match the partial expression indexes declared in schema.
func where(a *args, collection string, filter document.Filter) (string, error) {
	keys := store.KeyFields(collection)

	var coll string
	if store.IsKnownCollection(collection) {
		coll = literal(collection)
	} else {
		coll = a.add(collection)
	}
	conds := []string{"collection = " + coll}

	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	for _, field := range fields {
		want := filter[field]
		var path string
		if slices.Contains(keys, field) {
			path = "doc -> " + literal(field)
		} else {
			path = "doc -> " + a.add(field) + "::text"
		}
		if want == nil {
			conds = append(conds, fmt.Sprintf("(%[1]s IS NULL OR jsonb_typeof(%[1]s) = 'null')", path))
			continue
		}
		if key, ok := document.Canonical(want); ok {
			conds = append(conds, fmt.Sprintf("clientview_key(%s) = %s", path, a.add(key)))
			continue
		}
		raw, err := json.Marshal(want)
		if err != nil {
			return "", fmt.Errorf("%w: field %q: %w", sentinel.ErrInvalidFilter, field, err)
		}
		conds = append(conds, fmt.Sprintf("%s = %s::jsonb", path, a.add(raw)))
	}
	return strings.Join(conds, " AND "), nil
}
