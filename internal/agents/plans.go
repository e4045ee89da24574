package agents

// Plan is one subscription tier. Prices are NPR per month; quarterly
// and yearly prices are derived with the standard discounts unless a
// plan overrides them.
type Plan struct {
	Code         string
	NameEN       string
	NameNE       string
	MonthlyPrice float64
	Features     map[string]interface{}
}

// unlimitedSwipes is the sentinel the mobile clients treat as "no cap".
const unlimitedSwipes = 999999

// SubscriptionPlans is the canonical tier table, keyed by plan code.
var SubscriptionPlans = map[string]Plan{
	"free": {
		Code:         "free",
		NameEN:       "Free",
		NameNE:       "निःशुल्क",
		MonthlyPrice: 0,
		Features: map[string]interface{}{
			"daily_swipes":       50,
			"superlikes_per_day": 0,
			"boosts_per_month":   0,
			"see_likes":          false,
			"advanced_filters":   false,
			"unlimited_likes":    false,
			"read_receipts":      false,
			"ai_assistant":       false,
			"incognito_mode":     false,
			"who_viewed":         false,
		},
	},
	"basic": {
		Code:         "basic",
		NameEN:       "Basic",
		NameNE:       "बेसिक",
		MonthlyPrice: 499,
		Features: map[string]interface{}{
			"daily_swipes":       100,
			"superlikes_per_day": 1,
			"boosts_per_month":   0,
			"see_likes":          true,
			"advanced_filters":   true,
			"unlimited_likes":    true,
			"read_receipts":      false,
			"ai_assistant":       false,
			"incognito_mode":     false,
			"who_viewed":         false,
		},
	},
	"premium": {
		Code:         "premium",
		NameEN:       "Premium",
		NameNE:       "प्रीमियम",
		MonthlyPrice: 999,
		Features: map[string]interface{}{
			"daily_swipes":       unlimitedSwipes,
			"superlikes_per_day": 5,
			"boosts_per_month":   2,
			"see_likes":          true,
			"advanced_filters":   true,
			"unlimited_likes":    true,
			"read_receipts":      true,
			"ai_assistant":       true,
			"incognito_mode":     false,
			"who_viewed":         true,
		},
	},
	"elite": {
		Code:         "elite",
		NameEN:       "Elite",
		NameNE:       "एलीट",
		MonthlyPrice: 1999,
		Features: map[string]interface{}{
			"daily_swipes":       unlimitedSwipes,
			"superlikes_per_day": 10,
			"boosts_per_month":   5,
			"see_likes":          true,
			"advanced_filters":   true,
			"unlimited_likes":    true,
			"read_receipts":      true,
			"ai_assistant":       true,
			"incognito_mode":     true,
			"who_viewed":         true,
			"priority_support":   true,
			"exclusive_matches":  true,
		},
	},
}

// PeriodPrice returns the charge for a plan over a billing period.
// Quarterly runs at 10% off three months, yearly at 25% off twelve.
func (p Plan) PeriodPrice(period string) (float64, bool) {
	switch period {
	case "monthly":
		return p.MonthlyPrice, true
	case "quarterly":
		return p.MonthlyPrice * 3 * 0.9, true
	case "yearly":
		return p.MonthlyPrice * 12 * 0.75, true
	}
	return 0, false
}
