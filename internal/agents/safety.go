package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/milan-ai/milan-core/internal/llm"
)

// toxicityKeywords is the deterministic blocklist scanned before any
// LLM call. English terms plus romanized Nepali/Hindi slurs.
var toxicityKeywords = []string{
	"hate", "kill", "die", "stupid", "idiot", "loser", "ugly",
	"randi", "madarchod", "behenchod", "chutiya", "bhosdi",
}

var moneyWords = []string{
	"money", "cash", "payment", "bank", "transfer", "send", "pay", "dollar", "rupee", "rs.",
}

var loveBombingPhrases = []string{
	"i love you", "marry me", "soulmate", "destiny", "forever",
}

var contactPlatforms = []string{
	"@gmail.com", "@yahoo.com", "facebook.com", "instagram.com", "whatsapp",
}

var (
	bareDigitsPhone = regexp.MustCompile(`\b\d{10}\b`)
	nepalPhone      = regexp.MustCompile(`\+977\d{10}`)
)

// SafetyAgent moderates text content. The keyword scan always runs and
// always wins: an LLM verdict can only make a result stricter, never
// clear a keyword hit.
type SafetyAgent struct {
	client llm.Client
}

// NewSafetyAgent creates the safety and moderation agent.
func NewSafetyAgent(client llm.Client) *SafetyAgent {
	return &SafetyAgent{client: client}
}

func (a *SafetyAgent) Name() string    { return "safety" }
func (a *SafetyAgent) Version() string { return "1.0.0" }

func (a *SafetyAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "moderate_content":
		return a.moderateContent(ctx, payload)
	case "check_message":
		return a.checkMessage(ctx, payload)
	case "check_profile":
		return a.checkProfile(ctx, payload)
	case "analyze_image":
		return a.analyzeImage(payload), nil
	default:
		return unknownAction(action), nil
	}
}

func (a *SafetyAgent) moderateContent(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	content := str(payload, "content")
	contentType := strOr(payload, "content_type", "text")
	context_ := strOr(payload, "context", "general")

	keywordFlags := checkKeywords(strings.ToLower(content))

	var result map[string]interface{}
	if a.client.Configured() {
		user := fmt.Sprintf(`
Moderate this content:

Content: %q
Type: %s
Context: %s

Respond with JSON:
{
    "is_safe": true/false,
    "safety_score": 0.0-1.0,
    "flags": ["list", "of", "issues"],
    "severity": "low/medium/high/critical",
    "action": "allow/flag/block/escalate",
    "reason": "explanation",
    "categories": {
        "hate_speech": 0.0-1.0,
        "harassment": 0.0-1.0,
        "sexual_content": 0.0-1.0,
        "scam": 0.0-1.0,
        "personal_info": 0.0-1.0,
        "violence": 0.0-1.0
    }
}
`, content, contentType, context_)

		var err error
		result, err = completeJSON(ctx, a.client, safetyPrompt, user, 0.3)
		if err != nil {
			return nil, fmt.Errorf("moderate content: %w", err)
		}
	} else {
		// Degraded mode: keyword verdict only.
		result = map[string]interface{}{
			"is_safe":      len(keywordFlags) == 0,
			"safety_score": 1.0,
			"flags":        []interface{}{},
			"severity":     "low",
			"action":       "allow",
			"reason":       "keyword scan only, LLM moderation unavailable",
		}
		if len(keywordFlags) > 0 {
			result["severity"] = "medium"
			result["reason"] = "toxic keywords detected"
		}
	}

	// A keyword hit overrides whatever the LLM concluded.
	if len(keywordFlags) > 0 {
		result["keyword_flags"] = keywordFlags
		result["is_safe"] = false
		result["safety_score"] = minFloat(numOr(result, "safety_score", 1.0), 0.5)
	}

	score := numOr(result, "safety_score", 1.0)
	switch {
	case score < 0.3:
		result["action"] = "block"
	case score < 0.6:
		result["action"] = "flag"
	case str(result, "severity") == "critical":
		result["action"] = "escalate"
	}

	return result, nil
}

func (a *SafetyAgent) checkMessage(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	message := str(payload, "message")

	scamIndicators := detectScamPatterns(message)

	moderation, err := a.moderateContent(ctx, map[string]interface{}{
		"content":      message,
		"content_type": "text",
		"context":      "message",
	})
	if err != nil {
		return nil, err
	}

	flags := anySlice(moderation["flags"])
	result := map[string]interface{}{
		"is_safe":         boolOr(moderation, "is_safe", true),
		"safety_score":    numOr(moderation, "safety_score", 1.0),
		"flags":           flags,
		"scam_indicators": scamIndicators,
		"action":          strOr(moderation, "action", "allow"),
		"reason":          str(moderation, "reason"),
		"tokens_used":     moderation["tokens_used"],
	}

	// Scam patterns escalate unconditionally.
	if len(scamIndicators) > 0 {
		result["is_safe"] = false
		result["action"] = "escalate"
		result["flags"] = append(flags, "potential_scam")
	}

	return result, nil
}

func (a *SafetyAgent) checkProfile(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	profile := mapVal(payload, "profile")

	var checks []map[string]interface{}
	for _, field := range []string{"bio", "about_me", "looking_for"} {
		text := str(profile, field)
		if text == "" {
			continue
		}
		check, err := a.moderateContent(ctx, map[string]interface{}{
			"content":      text,
			"content_type": "text",
			"context":      "profile_" + field,
		})
		if err != nil {
			return nil, err
		}
		checks = append(checks, map[string]interface{}{"field": field, "result": check})
	}

	allSafe := true
	minScore := 1.0
	var allFlags []string
	for _, c := range checks {
		res := c["result"].(map[string]interface{})
		if !boolOr(res, "is_safe", true) {
			allSafe = false
		}
		if s := numOr(res, "safety_score", 1.0); s < minScore {
			minScore = s
		}
		for _, f := range anySlice(res["flags"]) {
			if s, ok := f.(string); ok {
				allFlags = append(allFlags, s)
			}
		}
	}

	action := "allow"
	switch {
	case minScore < 0.3:
		action = "block"
	case minScore < 0.6:
		action = "flag"
	}

	return map[string]interface{}{
		"is_safe":      allSafe,
		"safety_score": minScore,
		"flags":        uniqueStrings(allFlags),
		"field_checks": checks,
		"action":       action,
	}, nil
}

// analyzeImage is a placeholder until an image moderation backend is
// wired in. Images pass by default; the image_verification agent owns
// the deterministic quality checks.
func (a *SafetyAgent) analyzeImage(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"is_safe":        true,
		"nsfw_score":     0.0,
		"violence_score": 0.0,
		"flags":          []interface{}{},
		"action":         "allow",
	}
}

func checkKeywords(lower string) []string {
	var flags []string
	for _, kw := range toxicityKeywords {
		if strings.Contains(lower, kw) {
			flags = append(flags, "contains_"+kw)
		}
	}
	return flags
}

func detectScamPatterns(text string) []string {
	var indicators []string
	lower := strings.ToLower(text)

	if strings.Contains(lower, "http") || strings.Contains(lower, "www.") {
		indicators = append(indicators, "contains_external_link")
	}
	for _, w := range moneyWords {
		if strings.Contains(lower, w) {
			indicators = append(indicators, "potential_money_request")
			break
		}
	}
	for _, p := range contactPlatforms {
		if strings.Contains(text, p) {
			indicators = append(indicators, "contact_info_sharing")
			break
		}
	}
	if bareDigitsPhone.MatchString(text) || nepalPhone.MatchString(text) {
		indicators = append(indicators, "phone_number_sharing")
	}
	for _, p := range loveBombingPhrases {
		if strings.Contains(lower, p) {
			indicators = append(indicators, "rapid_relationship_escalation")
			break
		}
	}
	return indicators
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func boolOr(m map[string]interface{}, key string, fallback bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return fallback
}

func anySlice(v interface{}) []interface{} {
	switch xs := v.(type) {
	case []interface{}:
		return xs
	case []string:
		out := make([]interface{}, len(xs))
		for i, s := range xs {
			out[i] = s
		}
		return out
	}
	return nil
}
