// Package document models loosely typed records and the canonical textual form
// of their domain keys. Every key comparison in the service goes through
// Canonical so that string, numeric and opaque-identifier representations of
// the same key compare equal.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Document is a schema-less record as stored in a collection.
type Document map[string]any

// ObjectIDField is the extended-JSON field that wraps an opaque identifier.
const ObjectIDField = "$oid"

// Canonical returns the textual form of a key value and whether it has one.
// Absent, null, array and non-identifier object values have no canonical form
// and therefore never match anything.
func Canonical(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "", false
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return Canonical(float64(val))
	case map[string]any:
		return objectID(val)
	case Document:
		return objectID(val)
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

func objectID(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	oid, ok := m[ObjectIDField].(string)
	return oid, ok
}

// Key returns the canonical form of field in d.
func (d Document) Key(field string) (string, bool) {
	if d == nil {
		return "", false
	}
	return Canonical(d[field])
}

// KeyEquals reports whether field in d canonically equals value.
func (d Document) KeyEquals(field, value string) bool {
	k, ok := d.Key(field)
	return ok && k == value
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(Document(val).Clone())
	case Document:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Decode parses a JSON object, keeping numbers in their textual form.
func Decode(raw []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return d, nil
}

// Normalize rewrites each listed key field that has a canonical form to that
// string, in place. Fields without a canonical form are left untouched.
func (d Document) Normalize(fields ...string) Document {
	for _, f := range fields {
		v, present := d[f]
		if !present {
			continue
		}
		if k, ok := Canonical(v); ok {
			d[f] = k
		}
	}
	return d
}
