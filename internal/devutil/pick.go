package devutil

import (
	"bytes"
	"encoding/json"
	"slices"
)

// toMap round-trips v through JSON so struct tags decide the key names.
// Numbers stay json.Number to keep large course ids exact.
func toMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// Pick returns only the requested JSON keys of v, plus the requested keys v
// does not have.
func Pick(v any, keys ...string) (picked map[string]any, missing []string) {
	m := toMap(v)
	picked = make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			picked[k] = val
		} else {
			missing = append(missing, k)
		}
	}
	return picked, missing
}

// Fields lists the JSON keys of v, sorted.
func Fields(v any) []string {
	m := toMap(v)
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
