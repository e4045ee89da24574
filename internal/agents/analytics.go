package agents

import (
	"context"
	"fmt"
	"time"
)

// AnalyticsAgent serves platform metrics and reports. Report bodies are
// representative fixtures until the warehouse queries land; the shapes
// are the contract the dashboard builds against. match_quality and the
// funnel drop-off math are real.
type AnalyticsAgent struct {
	now func() time.Time
}

// NewAnalyticsAgent creates the analytics agent.
func NewAnalyticsAgent() *AnalyticsAgent {
	return &AnalyticsAgent{now: time.Now}
}

func (a *AnalyticsAgent) Name() string    { return "analytics" }
func (a *AnalyticsAgent) Version() string { return "1.0.0" }

func (a *AnalyticsAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "track_event":
		return a.trackEvent(payload), nil
	case "generate_report":
		return a.generateReport(payload), nil
	case "analyze_funnel":
		return a.analyzeFunnel(payload), nil
	case "user_insights":
		return a.userInsights(payload), nil
	case "match_quality":
		return a.matchQuality(payload), nil
	default:
		return unknownAction(action), nil
	}
}

func (a *AnalyticsAgent) trackEvent(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"tracked":    true,
		"event_type": payload["event_type"],
		"user_id":    payload["user_id"],
		"timestamp":  a.now().UTC().Format(time.RFC3339),
		"metadata":   mapVal(payload, "metadata"),
	}
}

func (a *AnalyticsAgent) generateReport(payload map[string]interface{}) map[string]interface{} {
	reportType := str(payload, "report_type")
	period := map[string]interface{}{
		"start": payload["start_date"],
		"end":   payload["end_date"],
	}

	switch reportType {
	case "user_growth":
		return map[string]interface{}{
			"report_type": "user_growth",
			"period":      period,
			"metrics": map[string]interface{}{
				"new_signups":    150,
				"active_users":   1200,
				"retention_rate": 0.65,
				"churn_rate":     0.15,
			},
			"daily_breakdown": []interface{}{
				map[string]interface{}{"date": "2024-01-01", "signups": 10, "active": 100},
				map[string]interface{}{"date": "2024-01-02", "signups": 15, "active": 110},
			},
		}
	case "match_performance":
		return map[string]interface{}{
			"report_type": "match_performance",
			"period":      period,
			"metrics": map[string]interface{}{
				"total_matches":              500,
				"matches_with_conversation":  350,
				"conversation_rate":          0.70,
				"avg_messages_per_match":     15,
				"date_conversion_rate":       0.25,
			},
		}
	case "revenue":
		return map[string]interface{}{
			"report_type": "revenue",
			"period":      period,
			"metrics": map[string]interface{}{
				"total_revenue_npr": 150000,
				"mrr":               45000,
				"new_subscriptions": 50,
				"upgrades":          20,
				"cancellations":     10,
			},
			"by_plan": map[string]interface{}{
				"basic":   map[string]interface{}{"revenue": 25000, "subscribers": 50},
				"premium": map[string]interface{}{"revenue": 80000, "subscribers": 80},
				"elite":   map[string]interface{}{"revenue": 45000, "subscribers": 23},
			},
		}
	}
	return map[string]interface{}{"error": fmt.Sprintf("Unknown report type: %s", reportType)}
}

func (a *AnalyticsAgent) analyzeFunnel(payload map[string]interface{}) map[string]interface{} {
	steps := []string{
		"signup", "profile_complete", "first_swipe",
		"first_match", "first_message", "premium_conversion",
	}
	funnel := map[string]interface{}{
		"signup":             map[string]interface{}{"users": 1000, "conversion": 1.0},
		"profile_complete":   map[string]interface{}{"users": 700, "conversion": 0.70},
		"first_swipe":        map[string]interface{}{"users": 500, "conversion": 0.50},
		"first_match":        map[string]interface{}{"users": 200, "conversion": 0.20},
		"first_message":      map[string]interface{}{"users": 150, "conversion": 0.15},
		"premium_conversion": map[string]interface{}{"users": 20, "conversion": 0.02},
	}

	dropoffs := make(map[string]interface{}, len(steps))
	prev := 1000
	for _, step := range steps {
		users := intVal(funnel[step].(map[string]interface{}), "users")
		dropoffs[step] = prev - users
		prev = users
	}

	return map[string]interface{}{
		"funnel":      funnel,
		"dropoffs":    dropoffs,
		"bottlenecks": []string{"profile_complete", "first_match"},
		"recommendations": []string{
			"Improve profile completion flow",
			"Add onboarding tutorial for swiping",
			"Send match notifications more promptly",
		},
	}
}

func (a *AnalyticsAgent) userInsights(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"user_id":                     payload["user_id"],
		"engagement_level":            "high",
		"match_success_rate":          0.35,
		"response_rate":               0.72,
		"avg_conversation_length":     25,
		"peak_activity_hours":         []string{"19:00", "20:00", "21:00"},
		"top_interests":               []string{"travel", "music", "food"},
		"improvement_areas":           []string{"Add more photos", "Expand bio description"},
		"recommended_matches_per_day": 10,
	}
}

func (a *AnalyticsAgent) matchQuality(payload map[string]interface{}) map[string]interface{} {
	matches := mapSlice(payload, "matches")
	if len(matches) == 0 {
		return map[string]interface{}{"error": "No matches provided"}
	}

	total := len(matches)
	withConversation := 0
	withMeeting := 0
	var compatibilitySum float64
	for _, m := range matches {
		if num(m, "message_count") > 0 {
			withConversation++
		}
		if boolVal(m, "met_in_person") {
			withMeeting++
		}
		compatibilitySum += num(m, "compatibility_score")
	}

	n := float64(total)
	return map[string]interface{}{
		"total_matches":           total,
		"conversation_rate":       float64(withConversation) / n,
		"meeting_rate":            float64(withMeeting) / n,
		"quality_score":           (float64(withConversation)*0.6 + float64(withMeeting)*0.4) / n,
		"avg_compatibility_score": compatibilitySum / n,
	}
}
