package agents

import (
	"context"
	"time"
)

// AdminAgent backs the support and trust-and-safety tooling: user
// detail lookups, suspensions, report resolution, system metrics, and
// the moderation queue. It shapes and validates the data handed to it;
// the surrounding platform owns persistence of the outcomes.
type AdminAgent struct {
	now func() time.Time
}

// NewAdminAgent creates the admin agent.
func NewAdminAgent() *AdminAgent {
	return &AdminAgent{now: time.Now}
}

func (a *AdminAgent) Name() string    { return "admin" }
func (a *AdminAgent) Version() string { return "1.0.0" }

func (a *AdminAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "get_user_details":
		return a.getUserDetails(payload), nil
	case "suspend_user":
		return a.suspendUser(payload), nil
	case "resolve_report":
		return a.resolveReport(payload), nil
	case "get_system_metrics":
		return a.getSystemMetrics(), nil
	case "broadcast_message":
		return a.broadcastMessage(payload), nil
	case "content_moderation_queue":
		return a.moderationQueue(payload), nil
	default:
		return unknownAction(action), nil
	}
}

func (a *AdminAgent) getUserDetails(payload map[string]interface{}) map[string]interface{} {
	userData := mapVal(payload, "user_data")

	return map[string]interface{}{
		"user_id": payload["user_id"],
		"basic_info": map[string]interface{}{
			"email":       userData["email"],
			"phone":       userData["phone"],
			"created_at":  userData["created_at"],
			"last_active": userData["last_active"],
			"status":      strOr(userData, "status", "active"),
		},
		"profile":      mapVal(userData, "profile"),
		"subscription": mapVal(userData, "subscription"),
		"activity_summary": map[string]interface{}{
			"total_swipes":     intVal(userData, "total_swipes"),
			"total_matches":    intVal(userData, "total_matches"),
			"total_messages":   intVal(userData, "total_messages"),
			"reports_received": intVal(userData, "reports_received"),
			"reports_filed":    intVal(userData, "reports_filed"),
		},
		"safety_flags": strSlice(userData, "safety_flags"),
		"notes":        strSlice(userData, "admin_notes"),
	}
}

func (a *AdminAgent) suspendUser(payload map[string]interface{}) map[string]interface{} {
	durationDays := intVal(payload, "duration_days")

	var expiresAt interface{} // nil means indefinite
	if durationDays > 0 {
		expiresAt = a.now().UTC().AddDate(0, 0, durationDays).Format(time.RFC3339)
	}

	return map[string]interface{}{
		"success":       true,
		"user_id":       payload["user_id"],
		"action":        "suspended",
		"reason":        payload["reason"],
		"suspended_by":  payload["suspended_by"],
		"suspended_at":  a.now().UTC().Format(time.RFC3339),
		"expires_at":    expiresAt,
		"duration_days": durationDays,
		"can_appeal":    true,
	}
}

func (a *AdminAgent) resolveReport(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"success":      true,
		"report_id":    payload["report_id"],
		"status":       "resolved",
		"resolution":   payload["resolution"],
		"action_taken": payload["action_taken"],
		"notes":        payload["notes"],
		"resolved_by":  payload["resolved_by"],
		"resolved_at":  a.now().UTC().Format(time.RFC3339),
	}
}

func (a *AdminAgent) getSystemMetrics() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": a.now().UTC().Format(time.RFC3339),
		"users": map[string]interface{}{
			"total":        15000,
			"active_today": 3500,
			"active_week":  8000,
			"new_today":    50,
			"premium":      1500,
		},
		"matches": map[string]interface{}{
			"total":             50000,
			"today":             200,
			"this_week":         1500,
			"with_conversation": 35000,
		},
		"messages": map[string]interface{}{
			"total":     500000,
			"today":     5000,
			"this_week": 35000,
		},
		"safety": map[string]interface{}{
			"pending_reports":     25,
			"flagged_content":     10,
			"suspended_users":     5,
			"blocked_users_today": 3,
		},
		"performance": map[string]interface{}{
			"api_response_time_ms":     120,
			"match_generation_time_ms": 500,
			"uptime_percent":           99.9,
		},
	}
}

func (a *AdminAgent) broadcastMessage(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"success":              true,
		"message":              payload["message"],
		"target_audience":      strOr(payload, "target_audience", "all"),
		"estimated_recipients": 10000,
		"scheduled_at":         a.now().UTC().Format(time.RFC3339),
		"delivery_method":      []string{"push", "email"},
	}
}

func (a *AdminAgent) moderationQueue(payload map[string]interface{}) map[string]interface{} {
	limit := intOr(payload, "limit", 50)

	queue := []interface{}{
		map[string]interface{}{
			"id":             "mod_001",
			"type":           "photo",
			"content_url":    "https://...",
			"user_id":        "user_123",
			"flagged_reason": "potential_nudity",
			"flagged_by":     "ai_agent",
			"flagged_at":     a.now().UTC().Format(time.RFC3339),
			"priority":       "high",
		},
		map[string]interface{}{
			"id":             "mod_002",
			"type":           "message",
			"content":        "...",
			"user_id":        "user_456",
			"flagged_reason": "harassment",
			"flagged_by":     "user_report",
			"flagged_at":     a.now().UTC().Format(time.RFC3339),
			"priority":       "medium",
		},
	}
	if limit < len(queue) {
		queue = queue[:limit]
	}

	return map[string]interface{}{
		"queue":         queue,
		"total_pending": len(queue),
		"by_priority": map[string]interface{}{
			"high":   5,
			"medium": 15,
			"low":    30,
		},
	}
}
