package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/milan-ai/milan-core/internal/embeddings"
	"github.com/milan-ai/milan-core/internal/llm"
)

// ProfileAgent analyzes and enhances user profiles: personality
// insights, interest extraction, improvement tips, and the embedding
// vectors the matching scorer consumes.
type ProfileAgent struct {
	client   llm.Client
	embedder embeddings.Provider
}

// NewProfileAgent creates the profile agent. embedder may be nil; the
// generate_embedding action then reports the missing provider.
func NewProfileAgent(client llm.Client, embedder embeddings.Provider) *ProfileAgent {
	return &ProfileAgent{client: client, embedder: embedder}
}

func (a *ProfileAgent) Name() string    { return "user_profile" }
func (a *ProfileAgent) Version() string { return "1.0.0" }

func (a *ProfileAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "analyze_profile":
		return a.analyzeProfile(ctx, payload)
	case "generate_embedding":
		return a.generateEmbedding(ctx, payload)
	case "extract_interests":
		return a.extractInterests(ctx, payload)
	case "suggest_improvements", "suggest_profile_improvements":
		return a.suggestImprovements(ctx, payload)
	default:
		return unknownAction(action), nil
	}
}

func (a *ProfileAgent) analyzeProfile(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	profile := mapVal(payload, "profile")
	profileText := buildProfileText(profile)

	user := fmt.Sprintf(`
Analyze this dating profile and provide insights:

%s

Respond with JSON:
{
    "personality_traits": {
        "openness": 0.0-1.0,
        "conscientiousness": 0.0-1.0,
        "extraversion": 0.0-1.0,
        "agreeableness": 0.0-1.0,
        "neuroticism": 0.0-1.0
    },
    "interests": ["list", "of", "interests"],
    "values": ["list", "of", "values"],
    "lifestyle_indicators": {
        "activity_level": "low/medium/high",
        "social_preference": "introvert/extrovert/ambivert",
        "relationship_readiness": "casual/serious/unsure"
    },
    "red_flags": ["any", "concerns"],
    "suggestions": ["improvement", "tips"],
    "profile_quality_score": 0-100,
    "embedding_text": "consolidated text for vector generation"
}
`, profileText)

	result, err := completeJSON(ctx, a.client, profilePrompt, user, 0.7)
	if err != nil {
		return nil, fmt.Errorf("analyze profile: %w", err)
	}
	return result, nil
}

func (a *ProfileAgent) generateEmbedding(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	text := str(payload, "text")

	vector, err := embeddings.EmbedOne(ctx, a.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}

	return map[string]interface{}{
		"embedding": vector,
		"dimension": len(vector),
	}, nil
}

func (a *ProfileAgent) extractInterests(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	bio := str(payload, "bio")
	aboutMe := str(payload, "about_me")
	existing := strSlice(payload, "existing_interests")

	user := fmt.Sprintf(`
Extract interests from this profile:

Bio: %s
About Me: %s
Existing Interests: %s

Respond with JSON:
{
    "interests": [
        {"name": "interest", "category": "hobbies/sports/music/travel/food/arts/tech/other", "confidence": 0.0-1.0}
    ],
    "new_interests": ["interests", "not", "in", "existing"],
    "categories": ["detected", "categories"]
}
`, bio, aboutMe, jsonify(existing))

	result, err := completeJSON(ctx, a.client, "Extract interests from dating profile text.", user, 0.5)
	if err != nil {
		return nil, fmt.Errorf("extract interests: %w", err)
	}
	return result, nil
}

func (a *ProfileAgent) suggestImprovements(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	profile := mapVal(payload, "profile")
	completionScore := num(payload, "completion_score")

	user := fmt.Sprintf(`
Current completion score: %.0f%%

Profile data: %s

Suggest specific improvements to increase profile quality and attract more matches.
Consider Nepalese cultural context.

Respond with JSON:
{
    "priority_improvements": ["most", "important", "changes"],
    "bio_suggestions": ["tips", "for", "better", "bio"],
    "photo_suggestions": ["photo", "tips"],
    "missing_fields": ["important", "empty", "fields"],
    "expected_impact": "How much these changes could improve match rate"
}
`, completionScore, jsonify(profile))

	result, err := completeJSON(ctx, a.client, "Suggest improvements for dating profile.", user, 0.7)
	if err != nil {
		return nil, fmt.Errorf("suggest improvements: %w", err)
	}
	return result, nil
}

// buildProfileText flattens the fields worth analyzing into one block.
func buildProfileText(profile map[string]interface{}) string {
	var parts []string
	if v := str(profile, "bio"); v != "" {
		parts = append(parts, "Bio: "+v)
	}
	if v := str(profile, "about_me"); v != "" {
		parts = append(parts, "About: "+v)
	}
	if v := str(profile, "looking_for"); v != "" {
		parts = append(parts, "Looking for: "+v)
	}
	if v := strSlice(profile, "interests"); len(v) > 0 {
		parts = append(parts, "Interests: "+strings.Join(v, ", "))
	}
	if v := str(profile, "occupation"); v != "" {
		parts = append(parts, "Occupation: "+v)
	}
	if v := str(profile, "education"); v != "" {
		parts = append(parts, "Education: "+v)
	}
	return strings.Join(parts, "\n")
}
