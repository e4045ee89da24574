package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFraudWeightsAndThresholds(t *testing.T) {
	agent := NewFraudAgent(&fakeLLM{})

	result, err := agent.Process(context.Background(), "check_fraud", map[string]interface{}{
		"profile": map[string]interface{}{
			"accounts_from_same_ip": float64(2), // +0.4
			"photo_count":           float64(0), // +0.2
		},
		"behavior_data": map[string]interface{}{
			"messages_per_hour":       float64(60),  // +0.4
			"duplicate_message_ratio": float64(0.6), // +0.35
		},
	})
	require.NoError(t, err)

	// 0.4*0.6 + 0.4*0.75 + 0.2*0 = 0.54
	assert.InDelta(t, 0.54, result["risk_score"].(float64), 0.001)
	assert.Equal(t, true, result["is_suspicious"])
	assert.Equal(t, "warn", result["recommended_action"])
	assert.InDelta(t, 0.8, result["confidence"].(float64), 0.001)
}

func TestCheckFraudSuspendAtHighRisk(t *testing.T) {
	agent := NewFraudAgent(&fakeLLM{})

	result, err := agent.Process(context.Background(), "check_fraud", map[string]interface{}{
		"profile": map[string]interface{}{
			"account_age_days":      float64(0),
			"is_premium":            true,
			"accounts_from_same_ip": float64(3),
			"photo_count":           float64(0),
			"ip_country":            "US",
			"profile_country":       "NP",
		},
		"behavior_data": map[string]interface{}{
			"messages_per_hour":       float64(80),
			"swipe_right_ratio":       float64(0.99),
			"duplicate_message_ratio": float64(0.8),
			"love_bombing_score":      float64(0.9),
			"investment_mentions":     float64(2),
		},
	})
	require.NoError(t, err)

	// Profile and behavior sub-scores exceed 1.0 raw and must cap there.
	assert.InDelta(t, 0.98, result["risk_score"].(float64), 0.001)
	assert.Equal(t, "suspend", result["recommended_action"])

	breakdown := result["breakdown"].(map[string]interface{})
	profileRisk := breakdown["profile_risk"].(map[string]interface{})
	assert.InDelta(t, 1.0, profileRisk["score"].(float64), 0.001)
}

func TestCheckFraudCleanAccount(t *testing.T) {
	agent := NewFraudAgent(&fakeLLM{})

	result, err := agent.Process(context.Background(), "check_fraud", map[string]interface{}{
		"profile": map[string]interface{}{
			"account_age_days": float64(90),
			"photo_count":      float64(4),
			"ip_country":       "NP",
			"profile_country":  "NP",
		},
		"behavior_data": map[string]interface{}{
			"messages_per_hour":           float64(3),
			"swipe_right_ratio":           float64(0.4),
			"avg_time_to_message_minutes": float64(45),
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result["risk_score"].(float64), 0.001)
	assert.Equal(t, false, result["is_suspicious"])
	assert.Equal(t, "none", result["recommended_action"])
	assert.Empty(t, result["red_flags"])
}

func TestVerifyAccountScore(t *testing.T) {
	agent := NewFraudAgent(&fakeLLM{})

	result, err := agent.Process(context.Background(), "verify_account", map[string]interface{}{
		"verification_data": map[string]interface{}{
			"phone_verified": true,
			"email_verified": true,
			"photo_verified": true,
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.6, result["verification_score"].(float64), 0.001)
	assert.Equal(t, true, result["is_verified"])
	assert.ElementsMatch(t, []string{"identity_verified", "social_connected"}, result["missing_verifications"])
}

func TestVerifyAccountBelowThreshold(t *testing.T) {
	agent := NewFraudAgent(&fakeLLM{})

	result, err := agent.Process(context.Background(), "verify_account", map[string]interface{}{
		"verification_data": map[string]interface{}{
			"phone_verified": true,
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, result["verification_score"].(float64), 0.001)
	assert.Equal(t, false, result["is_verified"])
}

func TestFraudCheckProfileIndicators(t *testing.T) {
	agent := NewFraudAgent(&fakeLLM{})

	result, err := agent.Process(context.Background(), "check_profile", map[string]interface{}{
		"profile": map[string]interface{}{
			"bio":                      "www.findme.example",
			"profile_completion_score": float64(10),
			"photo_metadata": map[string]interface{}{
				"is_stock_photo": true,
				"face_count":     float64(0),
			},
		},
	})
	require.NoError(t, err)

	// 0.3 + 0.2 + 0.2 (incomplete) + 0.15 (short bio) + 0.25 (link) = 1.1, capped.
	assert.InDelta(t, 1.0, result["score"].(float64), 0.001)
	assert.Equal(t, true, result["is_likely_fake"])
	assert.InDelta(t, 0.7, result["confidence"].(float64), 0.001)
	assert.Contains(t, result["flags"], "external_link_in_bio")
	assert.Contains(t, result["flags"], "potential_stock_photo")
}

func TestAnalyzeBehaviorUsesLLM(t *testing.T) {
	client := &fakeLLM{
		configured: true,
		response:   `{"behavior_anomalies": ["odd hours"], "risk_score": 0.2, "recommendation": "monitor"}`,
	}
	agent := NewFraudAgent(client)

	result, err := agent.Process(context.Background(), "analyze_behavior", map[string]interface{}{
		"behavior_data": map[string]interface{}{"messages_per_hour": float64(5)},
	})
	require.NoError(t, err)

	assert.Equal(t, "monitor", result["recommendation"])
	assert.Equal(t, 42, result["tokens_used"])
	assert.Equal(t, 1, client.calls)
}
