package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"empty", nil, nil, 0},
		{"mismatched_length", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"zero_norm", []float64{0, 0}, []float64{1, 2}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CosineSimilarity(tc.a, tc.b), 1e-9)
		})
	}
}

func TestScorePerfectMatch(t *testing.T) {
	p := Profile{
		Age:       28,
		City:      "Kathmandu",
		Province:  "Bagmati",
		Education: "bachelors",
		Smoking:   "never",
		Drinking:  "socially",
		Diet:      "vegetarian",
		Interests: []string{"hiking", "music", "cooking"},
		Embedding: []float64{0.2, 0.4, 0.6},
	}

	got := Score(p, p, Preferences{})

	assert.InDelta(t, 100.0, got.OverallScore, 0.01)
	assert.InDelta(t, 100.0, got.VectorScore, 0.01)
	assert.InDelta(t, 100.0, got.PreferenceScore, 0.01)
	assert.InDelta(t, 100.0, got.BehavioralScore, 0.01)
	assert.InDelta(t, 100.0, got.DiversityScore, 0.01)
}

func TestScoreNeutralVectorWithoutEmbeddings(t *testing.T) {
	a := Profile{Age: 30, City: "Pokhara"}
	b := Profile{Age: 29, City: "Pokhara"}

	got := Score(a, b, Preferences{})
	assert.InDelta(t, 50.0, got.VectorScore, 0.01)
}

func TestScoreNeutralVectorOnMismatchedDimensions(t *testing.T) {
	a := Profile{Embedding: []float64{1, 0}}
	b := Profile{Embedding: []float64{1, 0, 0}}

	got := Score(a, b, Preferences{})
	assert.InDelta(t, 50.0, got.VectorScore, 0.01)
}

func TestScoreOppositeEmbeddings(t *testing.T) {
	a := Profile{Embedding: []float64{1, 0}}
	b := Profile{Embedding: []float64{-1, 0}}

	got := Score(a, b, Preferences{})
	assert.InDelta(t, 0.0, got.VectorScore, 0.01)
}

func TestScoreIsDirectional(t *testing.T) {
	// a's preferences exclude b's age; b has no preferences at all.
	a := Profile{Age: 27, City: "Kathmandu"}
	b := Profile{Age: 45, City: "Kathmandu"}
	prefs := Preferences{AgeMin: 25, AgeMax: 32}

	forward := Score(a, b, prefs)
	reverse := Score(b, a, prefs)

	// Forward: age out of window (0.3); reverse: a's 27 is in window (1.0).
	assert.Less(t, forward.PreferenceScore, reverse.PreferenceScore)
}

func TestScoreAgeWindowDefaults(t *testing.T) {
	a := Profile{Age: 30, City: "Kathmandu"}
	inWindow := Profile{Age: 35, City: "Kathmandu"}
	outWindow := Profile{Age: 55, City: "Kathmandu"}

	// Unset bounds default to 18..50.
	assert.InDelta(t, 100.0, Score(a, inWindow, Preferences{}).PreferenceScore, 0.01)
	assert.InDelta(t, 65.0, Score(a, outWindow, Preferences{}).PreferenceScore, 0.01)
}

func TestScoreLocationTiers(t *testing.T) {
	a := Profile{City: "Kathmandu", Province: "Bagmati"}

	sameCity := Score(a, Profile{City: "Kathmandu", Province: "Bagmati"}, Preferences{})
	sameProvince := Score(a, Profile{City: "Lalitpur", Province: "Bagmati"}, Preferences{})
	farAway := Score(a, Profile{City: "Biratnagar", Province: "Koshi"}, Preferences{})

	assert.InDelta(t, 100.0, sameCity.PreferenceScore, 0.01)
	assert.InDelta(t, 70.0, sameProvince.PreferenceScore, 0.01)
	assert.InDelta(t, 30.0, farAway.PreferenceScore, 0.01)
}

func TestScoreReligionPreference(t *testing.T) {
	a := Profile{City: "Kathmandu"}
	match := Profile{City: "Kathmandu", Religion: "hindu"}
	miss := Profile{City: "Kathmandu", Religion: "buddhist"}
	prefs := Preferences{Religions: []string{"hindu"}}

	// Location 1.0 + religion 1.0 vs location 1.0 + religion 0.2.
	assert.InDelta(t, 100.0, Score(a, match, prefs).PreferenceScore, 0.01)
	assert.InDelta(t, 60.0, Score(a, miss, prefs).PreferenceScore, 0.01)
}

func TestScoreSmokingAsymmetry(t *testing.T) {
	never := Profile{Smoking: "never"}
	daily := Profile{Smoking: "daily"}

	// Non-smoker scoring a smoker is penalized harder than the reverse.
	forward := behavioralCompatibility(never, daily)
	reverse := behavioralCompatibility(daily, never)
	assert.Less(t, forward, reverse)
}

func TestScoreInterestJaccard(t *testing.T) {
	a := Profile{Interests: []string{"hiking", "music", "food"}}
	b := Profile{Interests: []string{"hiking", "travel"}}

	// Smoking 1.0, drinking 1.0, jaccard 1/4.
	got := behavioralCompatibility(a, b)
	assert.InDelta(t, (1.0+1.0+0.25)/3, got, 1e-9)
}

func TestScoreDiversityBands(t *testing.T) {
	a := Profile{Interests: []string{"a", "b", "c", "d", "e"}}

	moderate := diversityBonus(a, Profile{Interests: []string{"a", "b", "x"}})
	none := diversityBonus(a, Profile{Interests: []string{"x", "y"}})
	high := diversityBonus(a, Profile{Interests: []string{"a", "b", "c", "d"}})

	assert.InDelta(t, 1.0, moderate, 1e-9)
	assert.InDelta(t, 0.5, none, 1e-9)
	assert.InDelta(t, 0.7, high, 1e-9)
}

func TestScoreDeterministic(t *testing.T) {
	a := Profile{
		Age: 26, City: "Kathmandu", Smoking: "never", Drinking: "socially",
		Interests: []string{"music", "art"}, Embedding: []float64{0.1, 0.9, 0.3},
	}
	b := Profile{
		Age: 29, City: "Lalitpur", Province: "Bagmati", Smoking: "socially",
		Interests: []string{"music", "hiking"}, Embedding: []float64{0.3, 0.7, 0.2},
	}
	prefs := Preferences{AgeMin: 24, AgeMax: 34}

	first := Score(a, b, prefs)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Score(a, b, prefs))
	}
}

func TestProfileFromMap(t *testing.T) {
	m := map[string]interface{}{
		"age":       float64(31),
		"city":      "Pokhara",
		"interests": []interface{}{"yoga", "travel"},
		"embedding": []interface{}{0.1, 0.2},
		"diet":      "vegetarian",
	}
	p := ProfileFromMap(m)

	require.Equal(t, 31, p.Age)
	require.Equal(t, "Pokhara", p.City)
	require.Equal(t, []string{"yoga", "travel"}, p.Interests)
	require.Equal(t, []float64{0.1, 0.2}, p.Embedding)
	require.Equal(t, "vegetarian", p.Diet)
}

func TestPreferencesFromMap(t *testing.T) {
	m := map[string]interface{}{
		"age_min":             float64(25),
		"age_max":             float64(35),
		"preferred_religions": []interface{}{"hindu", "buddhist"},
	}
	p := PreferencesFromMap(m)

	require.Equal(t, 25, p.AgeMin)
	require.Equal(t, 35, p.AgeMax)
	require.Equal(t, []string{"hindu", "buddhist"}, p.Religions)
}
