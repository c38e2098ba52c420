package store

import "encoding/json"

// deepMerge merges src into dst recursively: nested objects merge key by
// key, arrays concatenate, and scalars (or mismatched kinds) overwrite.
// dst is mutated and returned. Both maps must contain only JSON-decoded
// value kinds.
func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		switch typed := value.(type) {
		case map[string]any:
			if existing, ok := dst[key].(map[string]any); ok {
				dst[key] = deepMerge(existing, typed)
				continue
			}
			dst[key] = deepMerge(make(map[string]any, len(typed)), typed)
		case []any:
			if existing, ok := dst[key].([]any); ok {
				dst[key] = append(existing, typed...)
				continue
			}
			dst[key] = append([]any{}, typed...)
		default:
			dst[key] = value
		}
	}
	return dst
}

// normalizePatch round-trips a patch through JSON so every value carries a
// JSON-decoded kind. This lets callers build patches out of typed structs
// (e.g. playback sources) without breaking merge semantics.
func normalizePatch(patch map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	normalized := make(map[string]any, len(patch))
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}
