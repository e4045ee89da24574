// Package scoring computes deterministic compatibility scores between
// dating profiles. No LLM calls and no randomness: the same pair of
// profiles always produces the same breakdown, which keeps match
// ordering stable and testable. LLM-generated narrative is layered on
// top by the matching agent, never mixed into these numbers.
package scoring

import (
	"math"

	"github.com/milan-ai/milan-core/pkg/models"
)

// Component weights. They sum to 1.0.
const (
	weightVector     = 0.40
	weightPreference = 0.30
	weightBehavioral = 0.20
	weightDiversity  = 0.10
)

// Profile is the slice of a user profile the scorer reads.
type Profile struct {
	Age       int
	City      string
	Province  string
	Religion  string
	Education string
	Smoking   string
	Drinking  string
	Diet      string
	Interests []string
	Embedding []float64
}

// Preferences is the seeker's stated partner criteria. Zero values for
// the age bounds fall back to 18..50.
type Preferences struct {
	AgeMin          int
	AgeMax          int
	Religions       []string
	EducationLevels []string
}

// Score computes the weighted compatibility of candidate b for seeker a.
// The score is directional: a's preferences are applied to b, not the
// other way around.
func Score(a, b Profile, prefs Preferences) models.CompatibilityBreakdown {
	vector := vectorSimilarity(a.Embedding, b.Embedding)
	preference := preferenceAlignment(a, b, prefs)
	behavioral := behavioralCompatibility(a, b)
	diversity := diversityBonus(a, b)

	overall := weightVector*vector +
		weightPreference*preference +
		weightBehavioral*behavioral +
		weightDiversity*diversity

	return models.CompatibilityBreakdown{
		OverallScore:    round2(overall * 100),
		VectorScore:     round2(vector * 100),
		PreferenceScore: round2(preference * 100),
		BehavioralScore: round2(behavioral * 100),
		DiversityScore:  round2(diversity * 100),
	}
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// in -1..1. Zero-norm or mismatched inputs return 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// vectorSimilarity remaps cosine similarity to 0..1. Missing,
// mismatched, or degenerate embeddings score a neutral 0.5 so that
// profiles without vectors are neither rewarded nor punished.
func vectorSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.5
	}
	var normA, normB float64
	for i := range a {
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.5
	}
	return (CosineSimilarity(a, b) + 1) / 2
}

func preferenceAlignment(a, b Profile, prefs Preferences) float64 {
	var scores []float64

	// Age window applies only when both ages are known.
	if a.Age > 0 && b.Age > 0 {
		ageMin, ageMax := prefs.AgeMin, prefs.AgeMax
		if ageMin == 0 {
			ageMin = 18
		}
		if ageMax == 0 {
			ageMax = 50
		}
		if b.Age >= ageMin && b.Age <= ageMax {
			scores = append(scores, 1.0)
		} else {
			scores = append(scores, 0.3)
		}
	}

	switch {
	case a.City == b.City:
		scores = append(scores, 1.0)
	case a.Province == b.Province:
		scores = append(scores, 0.7)
	default:
		scores = append(scores, 0.3)
	}

	if len(prefs.Religions) > 0 {
		if contains(prefs.Religions, b.Religion) {
			scores = append(scores, 1.0)
		} else {
			scores = append(scores, 0.2)
		}
	}

	if len(prefs.EducationLevels) > 0 {
		if contains(prefs.EducationLevels, b.Education) {
			scores = append(scores, 1.0)
		} else {
			scores = append(scores, 0.4)
		}
	}

	return mean(scores)
}

func behavioralCompatibility(a, b Profile) float64 {
	var scores []float64

	smokingA, smokingB := defaultStr(a.Smoking, "never"), defaultStr(b.Smoking, "never")
	switch {
	case smokingA == smokingB:
		scores = append(scores, 1.0)
	case smokingA == "never" && smokingB != "never":
		scores = append(scores, 0.3)
	default:
		scores = append(scores, 0.6)
	}

	if defaultStr(a.Drinking, "never") == defaultStr(b.Drinking, "never") {
		scores = append(scores, 1.0)
	} else {
		scores = append(scores, 0.7)
	}

	if a.Diet != "" && b.Diet != "" {
		switch {
		case a.Diet == b.Diet:
			scores = append(scores, 1.0)
		case (a.Diet == "vegetarian" || a.Diet == "jain") && b.Diet == "non_vegetarian":
			scores = append(scores, 0.3)
		default:
			scores = append(scores, 0.7)
		}
	}

	if len(a.Interests) > 0 && len(b.Interests) > 0 {
		overlap, union := interestOverlap(a.Interests, b.Interests)
		if union > 0 {
			scores = append(scores, float64(overlap)/float64(union))
		}
	}

	return mean(scores)
}

// diversityBonus rewards moderate interest overlap over total sameness,
// so recommendations do not collapse into a filter bubble.
func diversityBonus(a, b Profile) float64 {
	var scores []float64

	if len(a.Interests) > 0 && len(b.Interests) > 0 {
		overlap, _ := interestOverlap(a.Interests, b.Interests)
		switch {
		case overlap >= 1 && overlap <= 3:
			scores = append(scores, 1.0)
		case overlap == 0:
			scores = append(scores, 0.5)
		default:
			scores = append(scores, 0.7)
		}
	}

	if a.Education != b.Education {
		scores = append(scores, 0.8)
	}

	return mean(scores)
}

// ── Map decoding ─────────────────────────────────────────────

// ProfileFromMap decodes a JSON-shaped payload map into a Profile.
// Missing or mistyped fields become zero values.
func ProfileFromMap(m map[string]interface{}) Profile {
	return Profile{
		Age:       asInt(m["age"]),
		City:      asString(m["city"]),
		Province:  asString(m["province"]),
		Religion:  asString(m["religion"]),
		Education: asString(m["education"]),
		Smoking:   asString(m["smoking"]),
		Drinking:  asString(m["drinking"]),
		Diet:      asString(m["diet"]),
		Interests: asStringSlice(m["interests"]),
		Embedding: asFloatSlice(m["embedding"]),
	}
}

// PreferencesFromMap decodes a preferences payload map.
func PreferencesFromMap(m map[string]interface{}) Preferences {
	return Preferences{
		AgeMin:          asInt(m["age_min"]),
		AgeMax:          asInt(m["age_max"]),
		Religions:       asStringSlice(m["preferred_religions"]),
		EducationLevels: asStringSlice(m["preferred_education_levels"]),
	}
}

// ── Helpers ──────────────────────────────────────────────────

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.5
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func interestOverlap(a, b []string) (overlap, union int) {
	setA := make(map[string]struct{}, len(a))
	for _, x := range a {
		setA[x] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, x := range b {
		setB[x] = struct{}{}
	}
	for x := range setA {
		if _, ok := setB[x]; ok {
			overlap++
		}
	}
	union = len(setA) + len(setB) - overlap
	return overlap, union
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func asStringSlice(v interface{}) []string {
	switch xs := v.(type) {
	case []string:
		return xs
	case []interface{}:
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func asFloatSlice(v interface{}) []float64 {
	switch xs := v.(type) {
	case []float64:
		return xs
	case []interface{}:
		out := make([]float64, 0, len(xs))
		for _, x := range xs {
			if f, ok := x.(float64); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}
