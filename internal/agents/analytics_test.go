package agents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackEvent(t *testing.T) {
	agent := NewAnalyticsAgent()
	agent.now = func() time.Time { return time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC) }

	result, err := agent.Process(context.Background(), "track_event", map[string]interface{}{
		"event_type": "swipe_right",
		"user_id":    "user_1",
		"metadata":   map[string]interface{}{"target": "user_2"},
	})
	require.NoError(t, err)

	assert.Equal(t, true, result["tracked"])
	assert.Equal(t, "swipe_right", result["event_type"])
	assert.Equal(t, "2025-02-01T12:00:00Z", result["timestamp"])
}

func TestGenerateReportUnknownType(t *testing.T) {
	agent := NewAnalyticsAgent()

	result, err := agent.Process(context.Background(), "generate_report", map[string]interface{}{
		"report_type": "astrology",
	})
	require.NoError(t, err)
	assert.Equal(t, "Unknown report type: astrology", result["error"])
}

func TestGenerateReportShapes(t *testing.T) {
	agent := NewAnalyticsAgent()

	for _, reportType := range []string{"user_growth", "match_performance", "revenue"} {
		result, err := agent.Process(context.Background(), "generate_report", map[string]interface{}{
			"report_type": reportType,
			"start_date":  "2024-01-01",
			"end_date":    "2024-01-31",
		})
		require.NoError(t, err)

		assert.Equal(t, reportType, result["report_type"])
		assert.Contains(t, result, "metrics")
		period := result["period"].(map[string]interface{})
		assert.Equal(t, "2024-01-01", period["start"])
	}
}

func TestAnalyzeFunnelDropoffs(t *testing.T) {
	agent := NewAnalyticsAgent()

	result, err := agent.Process(context.Background(), "analyze_funnel", map[string]interface{}{})
	require.NoError(t, err)

	dropoffs := result["dropoffs"].(map[string]interface{})
	assert.Equal(t, 0, dropoffs["signup"])
	assert.Equal(t, 300, dropoffs["profile_complete"])
	assert.Equal(t, 200, dropoffs["first_swipe"])
	assert.Equal(t, 300, dropoffs["first_match"])
	assert.Equal(t, 50, dropoffs["first_message"])
	assert.Equal(t, 130, dropoffs["premium_conversion"])
}

func TestMatchQualityMath(t *testing.T) {
	agent := NewAnalyticsAgent()

	result, err := agent.Process(context.Background(), "match_quality", map[string]interface{}{
		"matches": []interface{}{
			map[string]interface{}{"message_count": float64(12), "met_in_person": true, "compatibility_score": float64(80)},
			map[string]interface{}{"message_count": float64(3), "compatibility_score": float64(60)},
			map[string]interface{}{"message_count": float64(0), "compatibility_score": float64(40)},
			map[string]interface{}{"message_count": float64(7), "met_in_person": true, "compatibility_score": float64(70)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result["total_matches"])
	assert.InDelta(t, 0.75, result["conversation_rate"].(float64), 0.001)
	assert.InDelta(t, 0.5, result["meeting_rate"].(float64), 0.001)
	// (3*0.6 + 2*0.4) / 4
	assert.InDelta(t, 0.65, result["quality_score"].(float64), 0.001)
	assert.InDelta(t, 62.5, result["avg_compatibility_score"].(float64), 0.001)
}

func TestMatchQualityEmptyInput(t *testing.T) {
	agent := NewAnalyticsAgent()

	result, err := agent.Process(context.Background(), "match_quality", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "No matches provided", result["error"])
}
