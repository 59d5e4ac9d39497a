package document

import "reflect"

// Filter selects documents by top-level field equality. Values are compared in
// canonical form; a nil value matches documents where the field is absent or
// null. An empty filter matches every document.
type Filter map[string]any

// Matches reports whether d satisfies every condition in f.
func (f Filter) Matches(d Document) bool {
	for field, want := range f {
		got, present := d[field]
		if want == nil {
			if present && got != nil {
				return false
			}
			continue
		}
		if !present {
			return false
		}
		if wk, ok := Canonical(want); ok {
			gk, gok := Canonical(got)
			if !gok || gk != wk {
				return false
			}
			continue
		}
		// Structured values (arrays, objects) fall back to deep equality.
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Update is a field-level mutation applied by UpdateMany.
type Update struct {
	Set   Document
	Unset []string
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return len(u.Set) == 0 && len(u.Unset) == 0
}

// Apply mutates d and reports whether any field changed.
func (u Update) Apply(d Document) bool {
	changed := false
	for k, v := range u.Set {
		if old, ok := d[k]; !ok || !reflect.DeepEqual(old, v) {
			changed = true
		}
		d[k] = cloneValue(v)
	}
	for _, k := range u.Unset {
		if _, ok := d[k]; ok {
			delete(d, k)
			changed = true
		}
	}
	return changed
}
