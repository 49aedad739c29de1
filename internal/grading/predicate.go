package grading

// PredicateBand maps scores at or above Min to Label.
type PredicateBand struct {
	Min   float64 `json:"min"`
	Label string  `json:"label"`
}

var bands = []PredicateBand{
	{Min: 90, Label: "A"},
	{Min: 80, Label: "B"},
	{Min: 70, Label: "C"},
	{Min: 0, Label: "D"},
}

// Bands returns a copy of the fixed predicate table, highest band first.
func Bands() []PredicateBand {
	out := make([]PredicateBand, len(bands))
	copy(out, bands)
	return out
}

// PredicateFor returns the label of the first band whose lower bound the
// score reaches. Scores below every bound get the lowest label.
func PredicateFor(score float64) string {
	for _, b := range bands {
		if score >= b.Min {
			return b.Label
		}
	}
	return bands[len(bands)-1].Label
}
