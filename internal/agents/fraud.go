package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/milan-ai/milan-core/internal/llm"
)

// FraudAgent scores accounts and behavior for fraud risk. The scoring
// paths are deterministic; only analyze_behavior consults the LLM.
type FraudAgent struct {
	client llm.Client
}

// NewFraudAgent creates the fraud detection agent.
func NewFraudAgent(client llm.Client) *FraudAgent {
	return &FraudAgent{client: client}
}

func (a *FraudAgent) Name() string    { return "fraud_detection" }
func (a *FraudAgent) Version() string { return "1.0.0" }

func (a *FraudAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "check_fraud":
		return a.checkFraud(payload), nil
	case "analyze_behavior":
		return a.analyzeBehavior(ctx, payload)
	case "check_profile":
		return a.checkProfile(payload), nil
	case "verify_account":
		return a.verifyAccount(payload), nil
	default:
		return unknownAction(action), nil
	}
}

// checkFraud combines the three risk assessments into one weighted
// score: 40% profile, 40% behavior, 20% patterns.
func (a *FraudAgent) checkFraud(payload map[string]interface{}) map[string]interface{} {
	profile := mapVal(payload, "profile")
	behavior := mapVal(payload, "behavior_data")

	profileRisk := assessProfileRisk(profile)
	behaviorRisk := assessBehaviorRisk(behavior)
	patternRisk := detectSuspiciousPatterns(behavior)

	riskScore := 0.4*profileRisk.score + 0.4*behaviorRisk.score + 0.2*patternRisk.score

	action := "none"
	switch {
	case riskScore > 0.8:
		action = "suspend"
	case riskScore > 0.6:
		action = "review"
	case riskScore > 0.4:
		action = "warn"
	}

	allFlags := append(append(append([]string{}, profileRisk.flags...), behaviorRisk.flags...), patternRisk.flags...)

	return map[string]interface{}{
		"risk_score":         round2(riskScore),
		"is_suspicious":      riskScore > 0.5,
		"confidence":         round2(math.Max(profileRisk.confidence, behaviorRisk.confidence)),
		"red_flags":          uniqueStrings(allFlags),
		"recommended_action": action,
		"breakdown": map[string]interface{}{
			"profile_risk":  profileRisk.toMap(),
			"behavior_risk": behaviorRisk.toMap(),
			"pattern_risk":  patternRisk.toMap(),
		},
	}
}

func (a *FraudAgent) analyzeBehavior(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	behavior := mapVal(payload, "behavior_data")

	user := fmt.Sprintf(`
Analyze this user behavior data:

%s

Respond with JSON:
{
    "behavior_anomalies": ["list of anomalies"],
    "risk_indicators": ["risk signs"],
    "normal_patterns": ["normal behavior"],
    "risk_score": 0.0-1.0,
    "recommendation": "assessment"
}
`, jsonify(behavior))

	result, err := completeJSON(ctx, a.client, "Analyze user behavior for fraud indicators.", user, 0.5)
	if err != nil {
		return nil, fmt.Errorf("analyze behavior: %w", err)
	}
	return result, nil
}

// checkProfile scores fake-profile indicators without any LLM call.
func (a *FraudAgent) checkProfile(payload map[string]interface{}) map[string]interface{} {
	profile := mapVal(payload, "profile")

	var flags []string
	score := 0.0

	if meta := mapVal(profile, "photo_metadata"); meta != nil {
		if boolVal(meta, "is_stock_photo") {
			flags = append(flags, "potential_stock_photo")
			score += 0.3
		}
		if _, ok := meta["face_count"]; ok && intVal(meta, "face_count") == 0 {
			flags = append(flags, "no_face_detected")
			score += 0.2
		}
	}

	if num(profile, "profile_completion_score") < 30 {
		flags = append(flags, "incomplete_profile")
		score += 0.2
	}

	bio := str(profile, "bio")
	if len(bio) < 20 {
		flags = append(flags, "very_short_bio")
		score += 0.15
	}

	genericPhrases := []string{"i am a simple person", "i like to have fun", "looking for someone nice"}
	lowerBio := strings.ToLower(bio)
	for _, p := range genericPhrases {
		if strings.Contains(lowerBio, p) {
			flags = append(flags, "generic_bio")
			score += 0.1
			break
		}
	}

	if strings.Contains(bio, "http") || strings.Contains(bio, "www.") {
		flags = append(flags, "external_link_in_bio")
		score += 0.25
	}

	score = math.Min(score, 1.0)
	confidence := 0.5
	if len(flags) > 0 {
		confidence = 0.7
	}

	return map[string]interface{}{
		"score":          score,
		"flags":          flags,
		"confidence":     confidence,
		"is_likely_fake": score > 0.6,
	}
}

// verifyAccount averages five boolean verification checks.
func (a *FraudAgent) verifyAccount(payload map[string]interface{}) map[string]interface{} {
	data := mapVal(payload, "verification_data")

	checkNames := []string{
		"phone_verified", "email_verified", "photo_verified",
		"identity_verified", "social_connected",
	}
	checks := make(map[string]interface{}, len(checkNames))
	passed := 0
	var missing []string
	for _, name := range checkNames {
		ok := boolVal(data, name)
		checks[name] = ok
		if ok {
			passed++
		} else {
			missing = append(missing, name)
		}
	}

	score := float64(passed) / float64(len(checkNames))

	return map[string]interface{}{
		"verification_score":    round2(score),
		"checks":                checks,
		"is_verified":           score >= 0.6,
		"missing_verifications": missing,
	}
}

// ── Risk assessments ─────────────────────────────────────────

type riskAssessment struct {
	score      float64
	flags      []string
	confidence float64
}

func (r riskAssessment) toMap() map[string]interface{} {
	flags := r.flags
	if flags == nil {
		flags = []string{}
	}
	return map[string]interface{}{
		"score":      r.score,
		"flags":      flags,
		"confidence": r.confidence,
	}
}

func assessProfileRisk(profile map[string]interface{}) riskAssessment {
	var flags []string
	score := 0.0

	if num(profile, "account_age_days") < 1 && boolVal(profile, "is_premium") {
		flags = append(flags, "new_premium_account")
		score += 0.3
	}
	if num(profile, "accounts_from_same_ip") > 1 {
		flags = append(flags, "multiple_accounts_same_ip")
		score += 0.4
	}
	if num(profile, "photo_count") == 0 {
		flags = append(flags, "no_photos")
		score += 0.2
	}
	if str(profile, "ip_country") != str(profile, "profile_country") {
		flags = append(flags, "location_mismatch")
		score += 0.25
	}

	return riskAssessment{score: math.Min(score, 1.0), flags: flags, confidence: 0.75}
}

func assessBehaviorRisk(behavior map[string]interface{}) riskAssessment {
	var flags []string
	score := 0.0

	switch mph := num(behavior, "messages_per_hour"); {
	case mph > 50:
		flags = append(flags, "extremely_high_message_velocity")
		score += 0.4
	case mph > 20:
		flags = append(flags, "high_message_velocity")
		score += 0.2
	}

	if numOr(behavior, "swipe_right_ratio", 0.5) > 0.95 {
		flags = append(flags, "indiscriminate_swiping")
		score += 0.3
	}
	if num(behavior, "duplicate_message_ratio") > 0.5 {
		flags = append(flags, "copy_paste_messages")
		score += 0.35
	}
	if numOr(behavior, "avg_time_to_message_minutes", 1000) < 1 {
		flags = append(flags, "immediate_messaging")
		score += 0.2
	}
	if boolVal(behavior, "external_link_sharing") {
		flags = append(flags, "shares_external_links")
		score += 0.4
	}

	return riskAssessment{score: math.Min(score, 1.0), flags: flags, confidence: 0.8}
}

func detectSuspiciousPatterns(behavior map[string]interface{}) riskAssessment {
	var flags []string
	score := 0.0

	if num(behavior, "love_bombing_score") > 0.7 {
		flags = append(flags, "potential_love_bombing")
		score += 0.5
	}
	if num(behavior, "investment_mentions") > 0 {
		flags = append(flags, "investment_mentions")
		score += 0.4
	}
	if num(behavior, "crisis_mentions") > 2 {
		flags = append(flags, "repeated_crisis_stories")
		score += 0.35
	}
	if num(behavior, "off_platform_requests") > 0 {
		flags = append(flags, "requests_to_move_off_platform")
		score += 0.3
	}

	return riskAssessment{score: math.Min(score, 1.0), flags: flags, confidence: 0.7}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
