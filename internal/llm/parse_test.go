package llm

import (
	"encoding/json"
	"testing"
)

func TestParseJSONDirect(t *testing.T) {
	got := ParseJSON(`{"is_safe": true, "score": 0.9}`)
	if got["is_safe"] != true {
		t.Errorf("ParseJSON()[is_safe] = %v, want true", got["is_safe"])
	}
	if got["score"] != 0.9 {
		t.Errorf("ParseJSON()[score] = %v, want 0.9", got["score"])
	}
}

func TestParseJSONFencedBlock(t *testing.T) {
	text := "Here is the analysis:\n```json\n{\"agent\": \"matching\", \"confidence\": 0.8}\n```\nHope that helps!"
	got := ParseJSON(text)
	if got["agent"] != "matching" {
		t.Errorf("ParseJSON()[agent] = %v, want matching", got["agent"])
	}
}

func TestParseJSONFencedWithoutLanguage(t *testing.T) {
	got := ParseJSON("```\n{\"ok\": true}\n```")
	if got["ok"] != true {
		t.Errorf("ParseJSON()[ok] = %v, want true", got["ok"])
	}
}

func TestParseJSONBraceSpan(t *testing.T) {
	text := `Sure! The routing decision is {"agent": "safety", "reasoning": "content check"} based on the action.`
	got := ParseJSON(text)
	if got["agent"] != "safety" {
		t.Errorf("ParseJSON()[agent] = %v, want safety", got["agent"])
	}
}

func TestParseJSONRawFallback(t *testing.T) {
	text := "I could not produce structured output, sorry."
	got := ParseJSON(text)
	if got["raw_response"] != text {
		t.Errorf("ParseJSON()[raw_response] = %v, want original text", got["raw_response"])
	}
	if len(got) != 1 {
		t.Errorf("fallback map has %d keys, want 1", len(got))
	}
}

func TestParseJSONArrayFallsThrough(t *testing.T) {
	// A top-level array is not an object and must not be returned as one.
	text := `[1, 2, 3]`
	got := ParseJSON(text)
	if got["raw_response"] != text {
		t.Errorf("ParseJSON() on array = %v, want raw_response fallback", got)
	}
}

func TestParseJSONIdempotent(t *testing.T) {
	first := ParseJSON("unstructured response")
	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second := ParseJSON(string(raw))
	if second["raw_response"] != first["raw_response"] {
		t.Errorf("re-parse = %v, want %v", second, first)
	}
}

func TestParseJSONNestedBraces(t *testing.T) {
	text := `prefix {"outer": {"inner": 1}} suffix`
	got := ParseJSON(text)
	outer, ok := got["outer"].(map[string]interface{})
	if !ok {
		t.Fatalf("ParseJSON()[outer] = %T, want map", got["outer"])
	}
	if outer["inner"] != float64(1) {
		t.Errorf("outer[inner] = %v, want 1", outer["inner"])
	}
}
