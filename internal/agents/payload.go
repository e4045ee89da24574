package agents

import "strings"

// Payload maps arrive straight from JSON, so numbers are float64 and
// nested values are interface{}. These accessors absorb the type noise
// and turn missing or mistyped fields into zero values: agents degrade
// on bad input rather than fail.

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func strOr(m map[string]interface{}, key, fallback string) string {
	if s := str(m, key); s != "" {
		return s
	}
	return fallback
}

func num(m map[string]interface{}, key string) float64 {
	switch n := m[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func numOr(m map[string]interface{}, key string, fallback float64) float64 {
	switch n := m[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return fallback
}

func intVal(m map[string]interface{}, key string) int {
	return int(num(m, key))
}

func intOr(m map[string]interface{}, key string, fallback int) int {
	switch n := m[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return fallback
}

func boolVal(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func mapVal(m map[string]interface{}, key string) map[string]interface{} {
	v, _ := m[key].(map[string]interface{})
	return v
}

func strSlice(m map[string]interface{}, key string) []string {
	switch xs := m[key].(type) {
	case []string:
		return xs
	case []interface{}:
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mapSlice(m map[string]interface{}, key string) []map[string]interface{} {
	xs, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(xs))
	for _, x := range xs {
		if mm, ok := x.(map[string]interface{}); ok {
			out = append(out, mm)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// uniqueStrings de-duplicates while keeping first-seen order.
func uniqueStrings(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
