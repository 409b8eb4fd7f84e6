package config

// mergeMaps folds src into dst. Nested maps merge key by key; any other value
// in src replaces what dst holds. Maps taken from src are copied so later
// merges never write into a source's data.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		mv, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		if existing, ok := dst[k].(map[string]any); ok {
			mergeMaps(existing, mv)
			continue
		}
		dst[k] = deepCopy(mv)
	}
}
