package progress

import "sort"

// Engagement is the usage counters of a shared resource.
type Engagement struct {
	ResourceID int64
	Title      string
	Downloads  int
	Views      int
}

// Score weighs a download twice as much as a view.
func (e Engagement) Score() float64 {
	return float64(e.Downloads) + 0.5*float64(e.Views)
}

// RankByEngagement sorts by descending score. Equal scores keep their input order.
// The input slice is left untouched.
func RankByEngagement(items []Engagement) []Engagement {
	ranked := make([]Engagement, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score() > ranked[j].Score() })
	return ranked
}
