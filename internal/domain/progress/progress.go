// Package progress computes read-only summaries of competency evaluations and
// resource engagement.
package progress

import (
	"math"
	"sort"
	"time"
)

// Sample is the current level of one evaluated competency.
type Sample struct {
	Subject  string
	Level    int
	MaxLevel int
}

// Point is one level transition at a moment in time.
type Point struct {
	At       time.Time
	Level    int
	MaxLevel int
}

// MonthValue is the average progression of a calendar month, as a percentage.
type MonthValue struct {
	Month   string `json:"month"` // YYYY-MM
	Percent int    `json:"percent"`
}

// Overall returns the sum of levels over the sum of attainable levels, as a rounded
// percentage. No samples yields 0.
func Overall(samples []Sample) int {
	var sum, attainable int
	for _, s := range samples {
		sum += s.Level
		attainable += s.MaxLevel
	}
	return percent(float64(sum), float64(attainable))
}

// BySubject applies Overall to the samples of each subject.
func BySubject(samples []Sample) map[string]int {
	grouped := make(map[string][]Sample)
	for _, s := range samples {
		grouped[s.Subject] = append(grouped[s.Subject], s)
	}
	out := make(map[string]int, len(grouped))
	for subject, ss := range grouped {
		out[subject] = Overall(ss)
	}
	return out
}

// Monthly averages the scaled level of the points created in each month. Months without
// points are left out; the result is sorted by month.
func Monthly(points []Point) []MonthValue {
	type acc struct {
		total float64
		count int
	}
	months := make(map[string]*acc)
	for _, p := range points {
		if p.MaxLevel <= 0 {
			continue
		}
		key := p.At.Format("2006-01")
		a, ok := months[key]
		if !ok {
			a = &acc{}
			months[key] = a
		}
		a.total += float64(p.Level) * 100 / float64(p.MaxLevel)
		a.count++
	}

	out := make([]MonthValue, 0, len(months))
	for month, a := range months {
		out = append(out, MonthValue{Month: month, Percent: int(math.Round(a.total / float64(a.count)))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}
