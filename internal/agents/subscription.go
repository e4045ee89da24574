package agents

import (
	"context"
	"fmt"
	"math"
	"time"
)

// SubscriptionAgent handles billing: plan pricing, subscription status,
// upgrades with proration, and payment initiation against the Nepali
// payment rails (Khalti, eSewa, IME Pay, bank transfer). Payment calls
// are stubs that return the provider handoff shape; real gateway
// integration happens behind them.
type SubscriptionAgent struct {
	now func() time.Time
}

// NewSubscriptionAgent creates the subscription and billing agent.
func NewSubscriptionAgent() *SubscriptionAgent {
	return &SubscriptionAgent{now: time.Now}
}

func (a *SubscriptionAgent) Name() string    { return "subscription" }
func (a *SubscriptionAgent) Version() string { return "1.0.0" }

func (a *SubscriptionAgent) Process(ctx context.Context, action string, payload map[string]interface{}) (map[string]interface{}, error) {
	switch action {
	case "process_payment":
		return a.processPayment(payload), nil
	case "check_subscription":
		return a.checkSubscription(payload), nil
	case "upgrade_plan":
		return a.upgradePlan(payload), nil
	case "calculate_proration":
		return a.calculateProration(payload), nil
	case "handle_failed_payment":
		return a.handleFailedPayment(payload), nil
	default:
		return unknownAction(action), nil
	}
}

func (a *SubscriptionAgent) processPayment(payload map[string]interface{}) map[string]interface{} {
	planCode := str(payload, "plan_code")
	method := str(payload, "payment_method")
	period := strOr(payload, "period", "monthly")

	plan, ok := SubscriptionPlans[planCode]
	if !ok {
		return map[string]interface{}{"error": fmt.Sprintf("Invalid plan: %s", planCode)}
	}
	amount, ok := plan.PeriodPrice(period)
	if !ok {
		return map[string]interface{}{"error": fmt.Sprintf("Invalid period: %s", period)}
	}

	var result map[string]interface{}
	switch method {
	case "khalti":
		result = a.initiateGateway("KHL", amount, "https://khalti.com/pay", "Redirect to Khalti for payment")
	case "esewa":
		result = a.initiateGateway("ESW", amount, "https://esewa.com.np/pay", "Redirect to eSewa for payment")
	case "imepay":
		result = a.initiateGateway("IME", amount, "https://imepay.com.np/pay", "Redirect to IME Pay for payment")
	case "bank_transfer":
		result = a.initiateBankTransfer()
	default:
		return map[string]interface{}{"error": fmt.Sprintf("Unsupported payment method: %s", method)}
	}

	out := map[string]interface{}{
		"success":        boolOr(result, "success", false),
		"amount_npr":     amount,
		"payment_method": method,
		"transaction_id": result["transaction_id"],
		"status":         strOr(result, "status", "failed"),
		"message":        result["message"],
	}
	if url, ok := result["payment_url"]; ok {
		out["payment_url"] = url
	}
	if details, ok := result["bank_details"]; ok {
		out["bank_details"] = details
	}
	return out
}

func (a *SubscriptionAgent) initiateGateway(prefix string, amount float64, payURL, message string) map[string]interface{} {
	return map[string]interface{}{
		"success":        true,
		"status":         "initiated",
		"transaction_id": fmt.Sprintf("%s_%s", prefix, a.now().Format("20060102150405")),
		"payment_url":    fmt.Sprintf("%s?amount=%g", payURL, amount),
		"message":        message,
	}
}

func (a *SubscriptionAgent) initiateBankTransfer() map[string]interface{} {
	return map[string]interface{}{
		"success":        true,
		"status":         "pending",
		"transaction_id": fmt.Sprintf("BNK_%s", a.now().Format("20060102150405")),
		"message":        "Bank transfer initiated. Please complete transfer and upload receipt.",
		"bank_details": map[string]interface{}{
			"bank_name":      "Nepal Investment Bank",
			"account_name":   "Milan AI Pvt. Ltd.",
			"account_number": "XXXXXXXXXX",
			"branch":         "Kathmandu",
		},
	}
}

func (a *SubscriptionAgent) checkSubscription(payload map[string]interface{}) map[string]interface{} {
	subscription := mapVal(payload, "subscription")

	if len(subscription) == 0 {
		return map[string]interface{}{
			"has_active_subscription": false,
			"tier":                    "free",
			"features":                SubscriptionPlans["free"].Features,
		}
	}

	expiresAt := str(subscription, "expires_at")
	isActive := str(subscription, "status") == "active"

	isExpired := true
	daysRemaining := 0
	if expiresAt != "" {
		if t, err := time.Parse(time.RFC3339, expiresAt); err == nil {
			now := a.now()
			isExpired = t.Before(now)
			if !isExpired {
				daysRemaining = int(t.Sub(now).Hours() / 24)
			}
		}
	}

	planCode := strOr(subscription, "plan_code", "free")
	plan, ok := SubscriptionPlans[planCode]
	if !ok {
		plan = SubscriptionPlans["free"]
	}

	return map[string]interface{}{
		"has_active_subscription": isActive && !isExpired,
		"tier":                    planCode,
		"status":                  subscription["status"],
		"started_at":              subscription["started_at"],
		"expires_at":              expiresAt,
		"auto_renew":              boolVal(subscription, "auto_renew"),
		"features":                plan.Features,
		"days_remaining":          daysRemaining,
	}
}

func (a *SubscriptionAgent) upgradePlan(payload map[string]interface{}) map[string]interface{} {
	currentPlan := strOr(payload, "current_plan", "free")
	newPlan := str(payload, "new_plan")

	if _, ok := SubscriptionPlans[newPlan]; !ok {
		return map[string]interface{}{"error": fmt.Sprintf("Invalid plan: %s", newPlan)}
	}

	proration := a.calculateProration(payload)

	return map[string]interface{}{
		"can_upgrade":       true,
		"current_plan":      currentPlan,
		"new_plan":          newPlan,
		"proration_amount":  numOr(proration, "proration_amount", 0),
		"next_billing_date": proration["next_billing_date"],
		"features_gained":   compareFeatures(currentPlan, newPlan),
	}
}

// calculateProration charges the price difference for the remainder of
// the billing period. Upgrades owe the positive difference; downgrades
// produce a credit instead of a refund. A zero-price current plan has
// no remaining value, so the new plan bills in full from today.
func (a *SubscriptionAgent) calculateProration(payload map[string]interface{}) map[string]interface{} {
	currentPlan := strOr(payload, "current_plan", "free")
	newPlan := str(payload, "new_plan")
	daysUsed := num(payload, "days_used")
	daysInPeriod := numOr(payload, "days_in_period", 30)

	currentPrice := SubscriptionPlans[currentPlan].MonthlyPrice
	newPrice := SubscriptionPlans[newPlan].MonthlyPrice

	if currentPrice == 0 {
		return map[string]interface{}{
			"proration_amount":  newPrice,
			"credit_amount":     0.0,
			"next_billing_date": a.now().AddDate(0, 0, 30).Format(time.RFC3339),
		}
	}

	remainingDays := daysInPeriod - daysUsed
	remainingValue := currentPrice / daysInPeriod * remainingDays
	newCost := newPrice / daysInPeriod * remainingDays
	proration := newCost - remainingValue

	return map[string]interface{}{
		"proration_amount":  math.Max(0, round2(proration)),
		"credit_amount":     math.Max(0, round2(-proration)),
		"remaining_value":   round2(remainingValue),
		"next_billing_date": a.now().AddDate(0, 0, int(remainingDays)).Format(time.RFC3339),
	}
}

func (a *SubscriptionAgent) handleFailedPayment(payload map[string]interface{}) map[string]interface{} {
	failureReason := str(payload, "failure_reason")
	retryCount := intVal(payload, "retry_count")

	var actions []string
	if retryCount < 3 {
		actions = append(actions, "retry_payment")
	}
	if containsFold(failureReason, "insufficient") {
		actions = append(actions, "suggest_different_payment_method")
	}
	if retryCount >= 3 {
		actions = append(actions, "downgrade_to_free", "notify_user")
	}

	gracePeriod := 0
	if retryCount < 3 {
		gracePeriod = 3
	}

	return map[string]interface{}{
		"handled":           true,
		"actions":           actions,
		"retry_recommended": retryCount < 3,
		"grace_period_days": gracePeriod,
	}
}

func compareFeatures(currentPlan, newPlan string) map[string]interface{} {
	current := SubscriptionPlans[currentPlan].Features
	next := SubscriptionPlans[newPlan].Features

	gained := make(map[string]interface{})
	for key, value := range next {
		old, had := current[key]
		if !had || old != value {
			gained[key] = map[string]interface{}{"old": old, "new": value}
		}
	}
	return gained
}
