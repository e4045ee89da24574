package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/milan-ai/milan-core/internal/llm"
)

// ConversationAgent coaches users through chats: icebreakers, reply
// suggestions, conversation health analysis, and topic ideas. Every
// action is LLM-backed.
type ConversationAgent struct {
	client llm.Client
}

// NewConversationAgent creates the conversation coach agent.
func NewConversationAgent(client llm.Client) *ConversationAgent {
	return &ConversationAgent{client: client}
}

func (a *ConversationAgent) Name() string    { return "conversation" }
func (a *ConversationAgent) Version() string { return "1.0.0" }

func (a *ConversationAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "suggest_reply":
		return a.suggestReply(ctx, payload)
	case "generate_icebreaker":
		return a.generateIcebreaker(ctx, payload)
	case "analyze_conversation":
		return a.analyzeConversation(ctx, payload)
	case "get_topic_ideas", "get_conversation_tips":
		return a.getTopicIdeas(ctx, payload)
	default:
		return unknownAction(action), nil
	}
}

func (a *ConversationAgent) suggestReply(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	history := mapSlice(payload, "conversation_history")
	userProfile := mapVal(payload, "user_profile")
	matchProfile := mapVal(payload, "match_profile")
	tone := strOr(payload, "tone", "friendly")

	user := fmt.Sprintf(`
Suggest reply options for this conversation.

User: %s, interests: %s
Match: %s, interests: %s

Conversation:
%s

Tone: %s

Respond with JSON:
{
    "suggestions": [
        "Natural reply option 1",
        "Natural reply option 2",
        "Natural reply option 3"
    ],
    "tone_analysis": {
        "current_tone": "description",
        "suggested_tone": "description"
    },
    "engagement_tips": ["tip 1", "tip 2"]
}
`,
		str(userProfile, "first_name"), jsonify(strSlice(userProfile, "interests")),
		str(matchProfile, "first_name"), jsonify(strSlice(matchProfile, "interests")),
		formatConversation(history), tone)

	result, err := completeJSON(ctx, a.client, conversationPrompt, user, 0.8)
	if err != nil {
		return nil, fmt.Errorf("suggest reply: %w", err)
	}
	return result, nil
}

func (a *ConversationAgent) generateIcebreaker(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	userProfile := mapVal(payload, "user_profile")
	matchProfile := mapVal(payload, "match_profile")
	context_ := strOr(payload, "context", "first_contact")

	user := fmt.Sprintf(`
Generate icebreaker messages for a new match.

Context: %s

You (%s):
- Interests: %s
- Bio: %s

Match (%s):
- Interests: %s
- Bio: %s
- Looking for: %s

Generate natural, culturally appropriate icebreakers for Nepalese context.
Avoid overly personal questions. Be respectful and friendly.

Respond with JSON:
{
    "icebreakers": [
        {
            "message": "First icebreaker message",
            "approach": "why this works",
            "confidence": 0.0-1.0
        },
        {
            "message": "Second icebreaker message",
            "approach": "why this works",
            "confidence": 0.0-1.0
        },
        {
            "message": "Third icebreaker message",
            "approach": "why this works",
            "confidence": 0.0-1.0
        }
    ],
    "common_ground": ["shared interests or topics"],
    "recommended_approach": "which icebreaker to use and why"
}
`,
		context_,
		str(userProfile, "first_name"), jsonify(strSlice(userProfile, "interests")), strOr(userProfile, "bio", "N/A"),
		str(matchProfile, "first_name"), jsonify(strSlice(matchProfile, "interests")), strOr(matchProfile, "bio", "N/A"),
		strOr(matchProfile, "looking_for", "N/A"))

	result, err := completeJSON(ctx, a.client, conversationPrompt, user, 0.9)
	if err != nil {
		return nil, fmt.Errorf("generate icebreaker: %w", err)
	}
	return result, nil
}

func (a *ConversationAgent) analyzeConversation(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	history := mapSlice(payload, "conversation_history")

	// Too little signal to analyze.
	if len(history) < 3 {
		return map[string]interface{}{
			"analysis":      "Not enough messages for analysis",
			"message_count": len(history),
		}, nil
	}

	user := fmt.Sprintf(`
Analyze this conversation:

%s

Respond with JSON:
{
    "engagement_level": "high/medium/low",
    "conversation_health": "healthy/stagnant/declining",
    "balance_score": 0-100,
    "response_quality": "good/average/poor",
    "red_flags": ["any concerns"],
    "positive_signals": ["good signs"],
    "stagnation_risk": true/false,
    "recommendations": ["how to improve"],
    "next_step_suggestion": "what to do next"
}
`, formatConversation(history))

	result, err := completeJSON(ctx, a.client, "Analyze conversation health and engagement.", user, 0.6)
	if err != nil {
		return nil, fmt.Errorf("analyze conversation: %w", err)
	}
	return result, nil
}

func (a *ConversationAgent) getTopicIdeas(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	userInterests := strSlice(payload, "user_interests")
	matchInterests := strSlice(payload, "match_interests")
	usedTopics := strSlice(payload, "used_topics")

	user := fmt.Sprintf(`
Suggest conversation topics based on shared interests.

User interests: %s
Match interests: %s
Already discussed: %s

Consider Nepalese cultural context. Topics should be:
- Appropriate for early dating stages
- Engaging and open-ended
- Culturally sensitive

Respond with JSON:
{
    "topic_ideas": [
        {
            "topic": "Topic name",
            "opening_question": "How to start this topic",
            "follow_up_questions": ["q1", "q2"],
            "why_it_works": "explanation"
        }
    ],
    "categories": ["categories of topics"],
    "avoid_topics": ["topics to avoid"]
}
`, jsonify(userInterests), jsonify(matchInterests), jsonify(usedTopics))

	result, err := completeJSON(ctx, a.client, "Suggest conversation topics for dating app users.", user, 0.8)
	if err != nil {
		return nil, fmt.Errorf("get topic ideas: %w", err)
	}
	return result, nil
}

// formatConversation renders the last ten messages as "sender: text"
// lines for the prompt.
func formatConversation(messages []map[string]interface{}) string {
	if len(messages) > 10 {
		messages = messages[len(messages)-10:]
	}
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", strOr(msg, "sender_name", "User"), str(msg, "content")))
	}
	return strings.Join(lines, "\n")
}
