package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"epistack/domain/dataset"
)

// AttitudesConfig configures the Likert-scale survey generator
type AttitudesConfig struct {
	Rows  int   `json:"rows"`
	Items int   `json:"items"`
	Seed  int64 `json:"seed"`

	// ReversedItems are 1-based item numbers worded against the trait
	ReversedItems []int   `json:"reversed_items"`
	Noise         float64 `json:"noise"`
	MissingRate   float64 `json:"missing_rate"`
}

// DefaultAttitudesConfig returns a 7-item survey with items 3 and 6 reversed
func DefaultAttitudesConfig() AttitudesConfig {
	return AttitudesConfig{
		Rows:          140,
		Items:         7,
		Seed:          7,
		ReversedItems: []int{3, 6},
		Noise:         0.7,
		MissingRate:   0.01,
	}
}

// Attitudes generates a survey with the default configuration
func Attitudes() *dataset.Frame {
	return GenerateAttitudes(DefaultAttitudesConfig())
}

// ItemName is the column name of the 1-based survey item k
func ItemName(k int) string {
	return fmt.Sprintf("qa%d", k)
}

// GenerateAttitudes builds columns id, sex, dep and qa1..qaN. Items are
// integer responses 1..5 driven by one latent attitude.
func GenerateAttitudes(cfg AttitudesConfig) *dataset.Frame {
	rng := rand.New(rand.NewSource(cfg.Seed))
	reversed := make(map[int]bool, len(cfg.ReversedItems))
	for _, k := range cfg.ReversedItems {
		reversed[k] = true
	}

	n := cfg.Rows
	id := make([]float64, n)
	sex := make([]string, n)
	dep := make([]string, n)
	items := make([][]float64, cfg.Items)
	for k := range items {
		items[k] = make([]float64, n)
	}

	departments := []string{"A", "B", "C"}
	for i := 0; i < n; i++ {
		id[i] = float64(i + 1)
		sex[i] = "F"
		if rng.Float64() < 0.4 {
			sex[i] = "M"
		}
		dep[i] = departments[rng.Intn(len(departments))]

		trait := rng.NormFloat64()
		for k := range items {
			sign := 1.0
			if reversed[k+1] {
				sign = -1
			}
			v := math.Round(3 + sign*1.1*trait + cfg.Noise*rng.NormFloat64())
			items[k][i] = math.Max(1, math.Min(5, v))
			if rng.Float64() < cfg.MissingRate {
				items[k][i] = math.NaN()
			}
		}
	}

	cols := []*dataset.Column{
		dataset.Numeric("id", id),
		dataset.Categorical("sex", sex),
		dataset.Categorical("dep", dep).WithLabel("Department"),
	}
	for k := range items {
		cols = append(cols, dataset.Numeric(ItemName(k+1), items[k]).WithLabel(fmt.Sprintf("Attitude item %d", k+1)))
	}
	return dataset.MustFrame(cols...)
}
