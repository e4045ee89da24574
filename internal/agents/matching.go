package agents

import (
	"context"
	"fmt"
	"sort"

	"github.com/milan-ai/milan-core/internal/llm"
	"github.com/milan-ai/milan-core/internal/scoring"
	"github.com/milan-ai/milan-core/pkg/models"
)

// matchAlgorithmVersion tags scored results so client caches can be
// invalidated when the scoring formula changes.
const matchAlgorithmVersion = "2.1.0"

// MatchingAgent finds and explains compatible matches. All numbers come
// from the deterministic scorer; the LLM only contributes narrative
// (explanations, analysis text) layered on top. Without a configured
// provider the numeric paths still work in full.
type MatchingAgent struct {
	client llm.Client
}

// NewMatchingAgent creates the matching agent.
func NewMatchingAgent(client llm.Client) *MatchingAgent {
	return &MatchingAgent{client: client}
}

func (a *MatchingAgent) Name() string    { return "matching" }
func (a *MatchingAgent) Version() string { return "1.0.0" }

func (a *MatchingAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "find_matches", "get_recommendations":
		return a.findMatches(ctx, payload)
	case "calculate_compatibility":
		return a.calculateCompatibility(ctx, payload)
	case "explain_match":
		return a.explainMatch(ctx, payload)
	case "rank_candidates":
		return a.rankCandidates(payload), nil
	default:
		return unknownAction(action), nil
	}
}

func (a *MatchingAgent) findMatches(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	userProfile := mapVal(payload, "user_profile")
	candidates := mapSlice(payload, "candidates")
	preferences := mapVal(payload, "preferences")
	limit := intOr(payload, "limit", 20)

	if len(candidates) == 0 {
		return map[string]interface{}{"matches": []interface{}{}, "total_candidates": 0}, nil
	}

	seeker := scoring.ProfileFromMap(userProfile)
	prefs := scoring.PreferencesFromMap(preferences)

	scored := make([]map[string]interface{}, 0, len(candidates))
	for _, candidate := range candidates {
		breakdown := scoring.Score(seeker, scoring.ProfileFromMap(candidate), prefs)
		scored = append(scored, map[string]interface{}{
			"candidate":           candidate,
			"compatibility_score": breakdown.OverallScore,
			"score_breakdown":     breakdown,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i]["compatibility_score"].(float64) > scored[j]["compatibility_score"].(float64)
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	for _, match := range scored {
		candidate := match["candidate"].(map[string]interface{})
		breakdown := match["score_breakdown"].(models.CompatibilityBreakdown)
		match["explanation"] = a.matchExplanation(ctx, userProfile, candidate, breakdown)
	}

	return map[string]interface{}{
		"matches":           scored,
		"total_candidates":  len(candidates),
		"algorithm_version": matchAlgorithmVersion,
	}, nil
}

func (a *MatchingAgent) calculateCompatibility(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	user1 := mapVal(payload, "user1")
	user2 := mapVal(payload, "user2")
	preferences := mapVal(payload, "preferences")

	breakdown := scoring.Score(
		scoring.ProfileFromMap(user1),
		scoring.ProfileFromMap(user2),
		scoring.PreferencesFromMap(preferences),
	)

	if !a.client.Configured() {
		// Degraded mode: the deterministic breakdown stands alone.
		return map[string]interface{}{
			"overall_score":   breakdown.OverallScore,
			"score_breakdown": breakdown,
		}, nil
	}

	user := fmt.Sprintf(`
User 1: %s
User 2: %s
Compatibility Score: %.2f

Provide detailed compatibility analysis.

Respond with JSON:
{
    "overall_score": 0-100,
    "strengths": ["areas", "of", "compatibility"],
    "challenges": ["potential", "challenges"],
    "conversation_starters": ["suggested", "topics"],
    "long_term_potential": "high/medium/low",
    "recommendation": "why they should connect"
}
`, jsonify(user1), jsonify(user2), breakdown.OverallScore)

	result, err := completeJSON(ctx, a.client, "Analyze compatibility between two dating profiles.", user, 0.7)
	if err != nil {
		return nil, fmt.Errorf("calculate compatibility: %w", err)
	}
	result["score_breakdown"] = breakdown
	return result, nil
}

func (a *MatchingAgent) explainMatch(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	user1 := mapVal(payload, "user1")
	user2 := mapVal(payload, "user2")

	user := fmt.Sprintf(`
Explain this match in detail:

User 1: %s, %d years old
- Bio: %s
- Interests: %s
- Looking for: %s

User 2: %s, %d years old
- Bio: %s
- Interests: %s
- Looking for: %s

Respond with JSON:
{
    "match_summary": "Brief summary",
    "key_similarities": ["list"],
    "complementary_traits": ["list"],
    "conversation_starters": ["suggested topics"],
    "relationship_potential": "assessment"
}
`,
		str(user1, "first_name"), intVal(user1, "age"),
		strOr(user1, "bio", "N/A"), jsonify(strSlice(user1, "interests")), strOr(user1, "looking_for", "N/A"),
		str(user2, "first_name"), intVal(user2, "age"),
		strOr(user2, "bio", "N/A"), jsonify(strSlice(user2, "interests")), strOr(user2, "looking_for", "N/A"),
	)

	result, err := completeJSON(ctx, a.client, "Explain why two users are a good match.", user, 0.7)
	if err != nil {
		return nil, fmt.Errorf("explain match: %w", err)
	}
	return result, nil
}

func (a *MatchingAgent) rankCandidates(payload map[string]interface{}) map[string]interface{} {
	candidates := mapSlice(payload, "candidates")
	userProfile := mapVal(payload, "user_profile")

	seeker := scoring.ProfileFromMap(userProfile)

	scored := make([]map[string]interface{}, 0, len(candidates))
	for _, candidate := range candidates {
		breakdown := scoring.Score(seeker, scoring.ProfileFromMap(candidate), scoring.Preferences{})
		scored = append(scored, map[string]interface{}{
			"candidate": candidate,
			"score":     breakdown.OverallScore,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i]["score"].(float64) > scored[j]["score"].(float64)
	})

	return map[string]interface{}{
		"ranked_candidates": scored,
		"total":             len(scored),
	}
}

// matchExplanation produces the one-liner shown on a match card. The
// LLM writes it when available; otherwise a deterministic sentence from
// shared interests stands in.
func (a *MatchingAgent) matchExplanation(ctx context.Context, user, candidate map[string]interface{}, breakdown models.CompatibilityBreakdown) string {
	common := commonInterests(strSlice(user, "interests"), strSlice(candidate, "interests"))

	if !a.client.Configured() {
		if len(common) > 0 {
			return fmt.Sprintf("You both enjoy %s.", joinNatural(common))
		}
		return fmt.Sprintf("Your profiles are %.0f%% compatible.", breakdown.OverallScore)
	}

	user_ := fmt.Sprintf(`
Generate a 1-2 sentence explanation for why these users might be a good match.
Keep it natural and appealing.

User 1 interests: %s
User 2 interests: %s
Compatibility: %.2f%%

Example: "You both love hiking and share similar values around family."
`, jsonify(strSlice(user, "interests")), jsonify(strSlice(candidate, "interests")), breakdown.OverallScore)

	text, err := completeText(ctx, a.client, "Generate a brief, appealing match explanation.", user_, 0.8, 100)
	if err != nil {
		if len(common) > 0 {
			return fmt.Sprintf("You both enjoy %s.", joinNatural(common))
		}
		return fmt.Sprintf("Your profiles are %.0f%% compatible.", breakdown.OverallScore)
	}
	return text
}

func commonInterests(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, x := range a {
		set[x] = struct{}{}
	}
	var out []string
	for _, x := range b {
		if _, ok := set[x]; ok {
			out = append(out, x)
		}
	}
	return out
}

func joinNatural(xs []string) string {
	switch len(xs) {
	case 0:
		return ""
	case 1:
		return xs[0]
	case 2:
		return xs[0] + " and " + xs[1]
	default:
		out := ""
		for i, x := range xs[:len(xs)-1] {
			if i > 0 {
				out += ", "
			}
			out += x
		}
		return out + ", and " + xs[len(xs)-1]
	}
}
