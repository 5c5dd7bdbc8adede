package refs

// Key is the field that marks a reference node.
const Key = "$ref"

// RefString returns the target of a reference node: a map holding a string
// "$ref" field.
func RefString(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	ref, ok := m[Key].(string)
	return ref, ok
}

// IsRef reports whether v is a reference node.
func IsRef(v any) bool {
	_, ok := RefString(v)
	return ok
}

// IsExtended reports whether v is a reference node with sibling fields.
func IsExtended(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, isRef := m[Key].(string)
	return isRef && len(m) > 1
}

// Merge returns the value of an extended reference: a new map holding the
// target's fields overlaid with the node's own fields, "$ref" excluded. The
// node's fields win on collision. A target that is not a map is returned
// unchanged when the node has no extra fields; otherwise the node's extra
// fields are returned on their own.
func Merge(node map[string]any, target any) any {
	extras := len(node) - 1
	if _, ok := node[Key]; !ok {
		extras = len(node)
	}
	t, isMap := target.(map[string]any)
	if !isMap {
		if extras == 0 {
			return target
		}
		out := make(map[string]any, extras)
		copyExtras(out, node)
		return out
	}
	out := make(map[string]any, len(t)+extras)
	for k, v := range t {
		out[k] = v
	}
	copyExtras(out, node)
	return out
}

func copyExtras(dst, node map[string]any) {
	for k, v := range node {
		if k != Key {
			dst[k] = v
		}
	}
}
