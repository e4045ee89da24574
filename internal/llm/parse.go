package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseJSON normalizes free-form LLM output into a map. It never fails:
// each stage is tried in order and the last one always produces a value.
//
//  1. The whole text parses as a JSON object.
//  2. A fenced ```json block contains an object.
//  3. The span from the first "{" to the last "}" parses as an object.
//  4. Fallback: {"raw_response": <text>}.
//
// The function is idempotent over its own output: re-parsing a
// serialized stage-4 result yields the same map at stage 1.
func ParseJSON(text string) map[string]interface{} {
	trimmed := strings.TrimSpace(text)

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil && out != nil {
		return out
	}

	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		out = nil
		if err := json.Unmarshal([]byte(m[1]), &out); err == nil && out != nil {
			return out
		}
	}

	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			out = nil
			if err := json.Unmarshal([]byte(trimmed[start:end+1]), &out); err == nil && out != nil {
				return out
			}
		}
	}

	return map[string]interface{}{"raw_response": text}
}
