// Package attrs reads values back out of slog-style attribute lists.
package attrs

import "log/slog"

// ExtractString returns the string stored under key in a list of alternating
// keys and values, as passed to slog. slog.Attr entries are matched by their
// key. Missing keys and non-string values yield "".
func ExtractString(list []any, key string) string {
	for i := 0; i < len(list); i++ {
		switch k := list[i].(type) {
		case slog.Attr:
			if k.Key == key && k.Value.Kind() == slog.KindString {
				return k.Value.String()
			}
		case string:
			if i+1 >= len(list) {
				return ""
			}
			if k == key {
				s, _ := list[i+1].(string)
				return s
			}
			i++
		}
	}
	return ""
}
