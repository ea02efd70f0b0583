// Package analysis summarizes outcome grids: how much of the view each body
// captures and how quickly.
package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kmoroz/gravbasin/internal/sim"
)

// BasinStats describes one body's basin over a rendered grid.
type BasinStats struct {
	Body      int     `json:"body"`
	Share     float64 `json:"share"`
	MeanSteps float64 `json:"mean_steps"`
	StdSteps  float64 `json:"std_steps"`
}

// Report aggregates a full outcome grid.
type Report struct {
	Pixels   int          `json:"pixels"`
	TimedOut float64      `json:"timed_out_share"`
	Basins   []BasinStats `json:"basins"`
}

// Basins computes per-body capture shares and step statistics. Outcomes
// naming a body outside [0, numBodies) are skipped.
func Basins(grid []sim.Outcome, numBodies int) Report {
	steps := make([][]float64, numBodies)
	misses := 0
	for _, o := range grid {
		if o.TimedOut() {
			misses++
			continue
		}
		if o.Body < 0 || o.Body >= numBodies {
			continue
		}
		steps[o.Body] = append(steps[o.Body], float64(o.Steps))
	}

	total := float64(len(grid))
	rep := Report{Pixels: len(grid), Basins: make([]BasinStats, numBodies)}
	if total == 0 {
		return rep
	}
	rep.TimedOut = float64(misses) / total
	for i, s := range steps {
		b := BasinStats{Body: i, Share: float64(len(s)) / total}
		if len(s) > 0 {
			b.MeanSteps = stat.Mean(s, nil)
			b.StdSteps = stat.StdDev(s, nil)
		}
		rep.Basins[i] = b
	}
	return rep
}

// Agreement is the fraction of pixels on which two grids classify the
// trajectory identically (same body, or both timed out). Step counts may
// differ; only the capture verdict is compared.
func Agreement(a, b []sim.Outcome) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	same := 0
	for i := range a {
		if a[i].Hit == b[i].Hit && (!a[i].Hit || a[i].Body == b[i].Body) {
			same++
		}
	}
	return float64(same) / float64(len(a))
}
