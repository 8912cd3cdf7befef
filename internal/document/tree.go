package document

// Object returns parent[key] when it is an object.
func Object(parent map[string]any, key string) (map[string]any, bool) {
	if parent == nil {
		return nil, false
	}
	switch v := parent[key].(type) {
	case map[string]any:
		return v, true
	case Document:
		return v, true
	default:
		return nil, false
	}
}

// Path walks nested objects, returning false as soon as a step is missing.
func Path(root map[string]any, keys ...string) (map[string]any, bool) {
	cur := root
	for _, key := range keys {
		next, ok := Object(cur, key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// EnsureObject returns parent[key], replacing any non-object value with a
// new empty object.
func EnsureObject(parent map[string]any, key string) map[string]any {
	if obj, ok := Object(parent, key); ok {
		return obj
	}
	obj := map[string]any{}
	parent[key] = obj
	return obj
}

// String returns parent[key] when it is a string.
func String(parent map[string]any, key string) string {
	if parent == nil {
		return ""
	}
	s, _ := parent[key].(string)
	return s
}
