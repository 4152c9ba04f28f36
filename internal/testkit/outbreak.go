package testkit

import (
	"math"
	"math/rand"

	"epistack/domain/dataset"
)

// OutbreakConfig configures the food-poisoning outbreak generator
type OutbreakConfig struct {
	Rows int   `json:"rows"`
	Seed int64 `json:"seed"`

	// Attack rates by exposure to the contaminated dish
	AttackRateExposed   float64 `json:"attack_rate_exposed"`
	AttackRateUnexposed float64 `json:"attack_rate_unexposed"`
	MissingAgeRate      float64 `json:"missing_age_rate"`
}

// DefaultOutbreakConfig returns defaults resembling a wedding-party outbreak
func DefaultOutbreakConfig() OutbreakConfig {
	return OutbreakConfig{
		Rows:                400,
		Seed:                42,
		AttackRateExposed:   0.65,
		AttackRateUnexposed: 0.1,
		MissingAgeRate:      0.02,
	}
}

// OutbreakGenerator produces a deterministic outbreak investigation dataset
type OutbreakGenerator struct {
	config OutbreakConfig
	rng    *rand.Rand
}

// NewOutbreakGenerator creates a new outbreak generator
func NewOutbreakGenerator(config OutbreakConfig) *OutbreakGenerator {
	return &OutbreakGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Outbreak generates a dataset with the default configuration
func Outbreak() *dataset.Frame {
	return NewOutbreakGenerator(DefaultOutbreakConfig()).Generate()
}

// Generate builds the frame. Columns: id, sex, age, beefcurry, saltegg,
// eclair, water, case, nausea, vomiting, abdpain, diarrhea. Eclair is the
// contaminated dish.
func (g *OutbreakGenerator) Generate() *dataset.Frame {
	n := g.config.Rows
	id := make([]float64, n)
	sex := make([]string, n)
	age := make([]float64, n)
	exposures := map[string][]bool{}
	exposureRates := []struct {
		name string
		rate float64
	}{
		{"beefcurry", 0.85},
		{"saltegg", 0.9},
		{"eclair", 0.7},
		{"water", 0.95},
	}
	for _, e := range exposureRates {
		exposures[e.name] = make([]bool, n)
	}
	cases := make([]bool, n)
	symptoms := map[string][]bool{"nausea": make([]bool, n), "vomiting": make([]bool, n), "abdpain": make([]bool, n), "diarrhea": make([]bool, n)}

	for i := 0; i < n; i++ {
		id[i] = float64(i + 1)
		sex[i] = "male"
		if g.rng.Float64() < 0.55 {
			sex[i] = "female"
		}
		age[i] = math.Round(math.Max(1, math.Min(85, 28+16*g.rng.NormFloat64())))
		if g.rng.Float64() < g.config.MissingAgeRate {
			age[i] = math.NaN()
		}
		for _, e := range exposureRates {
			exposures[e.name][i] = g.rng.Float64() < e.rate
		}

		risk := g.config.AttackRateUnexposed
		if exposures["eclair"][i] {
			risk = g.config.AttackRateExposed
		}
		cases[i] = g.rng.Float64() < risk

		for _, s := range []struct {
			name           string
			ifCase, ifWell float64
		}{
			{"nausea", 0.7, 0.05},
			{"vomiting", 0.6, 0.03},
			{"abdpain", 0.8, 0.08},
			{"diarrhea", 0.75, 0.04},
		} {
			p := s.ifWell
			if cases[i] {
				p = s.ifCase
			}
			symptoms[s.name][i] = g.rng.Float64() < p
		}
	}

	cols := []*dataset.Column{
		dataset.Numeric("id", id),
		dataset.Categorical("sex", sex),
		dataset.Numeric("age", age).WithLabel("Age (years)"),
	}
	for _, e := range exposureRates {
		cols = append(cols, dataset.Boolean(e.name, exposures[e.name]))
	}
	cols = append(cols, dataset.Boolean("case", cases).WithLabel("Ill"))
	for _, s := range []string{"nausea", "vomiting", "abdpain", "diarrhea"} {
		cols = append(cols, dataset.Boolean(s, symptoms[s]))
	}
	return dataset.MustFrame(cols...)
}
