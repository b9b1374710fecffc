package repository

// Fields is a decoded JSON object as submitted by a form or an admin edit.
type Fields map[string]any

// present follows form semantics: null, "", false and 0 count as absent.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	default:
		return true
	}
}

// missing returns the keys of required that are absent from f, in order.
func (f Fields) missing(required []string) []string {
	var out []string
	for _, key := range required {
		if !present(f[key]) {
			out = append(out, key)
		}
	}
	return out
}

// str returns the string at key. ok is false when the key is present with a
// non-string value.
func (f Fields) str(key string) (s string, ok bool) {
	v, exists := f[key]
	if !exists || v == nil {
		return "", true
	}
	s, ok = v.(string)
	return s, ok
}

// truthy reports whether the value at key is present in the form sense.
func (f Fields) truthy(key string) bool {
	return present(f[key])
}
