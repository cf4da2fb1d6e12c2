package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the defect table for the report header.
type Summary struct {
	Rows         int     `json:"rows"`
	TotalCount   int     `json:"total_count"`
	Progressing  int     `json:"progressing"`
	MeanWidthMM  float64 `json:"mean_width_mm"`
	MaxWidthMM   float64 `json:"max_width_mm"`
	TotalLengthM float64 `json:"total_length_m"`
}

// Summarize computes aggregate figures over the defect rows. Zero-width
// entries are excluded from the width statistics so crack-width averages are
// not diluted by defects measured only by length.
func Summarize(rows []DefectRow) Summary {
	s := Summary{Rows: len(rows)}

	var widths []float64
	for _, r := range rows {
		s.TotalCount += r.Count
		s.TotalLengthM += r.LengthM
		if r.Progress == "O" {
			s.Progressing++
		}
		if r.WidthMM > 0 {
			widths = append(widths, r.WidthMM)
		}
	}

	if len(widths) > 0 {
		s.MeanWidthMM = stat.Mean(widths, nil)
		s.MaxWidthMM = floats.Max(widths)
	}
	return s
}
