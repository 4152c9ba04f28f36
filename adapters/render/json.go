package render

import (
	"encoding/json"
	"io"
	"math"

	"epistack/app"
	"epistack/domain/stats"
)

// resultDTO mirrors app.Result with NaN statistics encoded as null
type resultDTO struct {
	Grouped        bool            `json:"grouped"`
	GroupBy        string          `json:"group_by,omitempty"`
	Columns        []string        `json:"columns"`
	Rows           []app.Row       `json:"rows"`
	Warnings       []stats.Warning `json:"warnings,omitempty"`
	Tests          []testDTO       `json:"tests,omitempty"`
	Items          []app.ScaleItem `json:"items,omitempty"`
	ItemsReversed  []string        `json:"items_reversed,omitempty"`
	TotalScore     []*float64      `json:"total_score,omitempty"`
	AverageScore   []*float64      `json:"average_score,omitempty"`
	TotalMoments   *momentsDTO     `json:"total_moments,omitempty"`
	AverageMoments *momentsDTO     `json:"average_moments,omitempty"`
}

type testDTO struct {
	Variable     string         `json:"variable"`
	Decision     stats.Decision `json:"decision"`
	Label        string         `json:"label"`
	PValueText   string         `json:"p_value_text"`
	Statistic    *float64       `json:"statistic"`
	DF           *float64       `json:"df,omitempty"`
	DF2          *float64       `json:"df2,omitempty"`
	PValue       *float64       `json:"p_value"`
	Checked      bool           `json:"assumptions_checked"`
	NormalityP   *float64       `json:"normality_p,omitempty"`
	HomogeneityP *float64       `json:"homogeneity_p,omitempty"`
}

type momentsDTO struct {
	N    int      `json:"n"`
	Mean *float64 `json:"mean"`
	SD   *float64 `json:"sd"`
}

// JSON writes the structured result, indented
func JSON(w io.Writer, res *app.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toDTO(res))
}

func toDTO(res *app.Result) resultDTO {
	dto := resultDTO{
		Grouped:       res.Grouped,
		GroupBy:       res.GroupBy,
		Columns:       res.Columns,
		Rows:          res.Rows,
		Warnings:      res.Warnings,
		Items:         res.Items,
		ItemsReversed: res.ItemsReversed,
	}
	for _, t := range res.Tests {
		dto.Tests = append(dto.Tests, testDTO{
			Variable:     t.Variable,
			Decision:     t.Decision,
			Label:        t.Label,
			PValueText:   t.PValue,
			Statistic:    finite(t.Result.Statistic),
			DF:           positive(t.Result.DF),
			DF2:          positive(t.Result.DF2),
			PValue:       finite(t.Result.PValue),
			Checked:      t.Assumptions.Checked,
			NormalityP:   finite(t.Assumptions.NormalityP),
			HomogeneityP: finite(t.Assumptions.HomogeneityP),
		})
	}
	if !res.Grouped {
		dto.TotalScore = finiteSlice(res.TotalScore)
		dto.AverageScore = finiteSlice(res.AverageScore)
		dto.TotalMoments = moments(res.TotalMoments)
		dto.AverageMoments = moments(res.AverageMoments)
	}
	return dto
}

func moments(m app.ScoreMoments) *momentsDTO {
	if m.N == 0 {
		return nil
	}
	return &momentsDTO{N: m.N, Mean: finite(m.Mean), SD: finite(m.SD)}
}

func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func positive(x float64) *float64 {
	if x > 0 {
		return &x
	}
	return nil
}

func finiteSlice(xs []float64) []*float64 {
	if xs == nil {
		return nil
	}
	out := make([]*float64, len(xs))
	for i, x := range xs {
		out[i] = finite(x)
	}
	return out
}
