package grading

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Score component names as they appear in rejections and payloads.
const (
	FieldHarian = "harian"
	FieldUTS    = "uts"
	FieldUAS    = "uas"
)

const maxScore = 100

var (
	// ErrIncompleteScore is matched by every *IncompleteScoreError.
	ErrIncompleteScore = errors.New("incomplete score")
	// ErrScoreOutOfRange is matched by every *ScoreOutOfRangeError.
	ErrScoreOutOfRange = errors.New("score out of range")
)

// ScoreInput carries one student's component scores. A nil component has
// not been entered. A component of 0 is treated the same as nil.
type ScoreInput struct {
	Harian *float64 `json:"harian"`
	UTS    *float64 `json:"uts"`
	UAS    *float64 `json:"uas"`
}

// ScoreResult is the aggregated score and its predicate.
type ScoreResult struct {
	FinalScore float64 `json:"final_score"`
	Predicate  string  `json:"predicate"`
}

// IncompleteScoreError names every component that was missing or not
// strictly positive, in harian, uts, uas order.
type IncompleteScoreError struct {
	StudentID     string   `json:"student_id,omitempty"`
	MissingFields []string `json:"missing_fields"`
}

func (e *IncompleteScoreError) Error() string {
	if e.StudentID == "" {
		return "incomplete score: missing " + strings.Join(e.MissingFields, ", ")
	}
	return fmt.Sprintf("incomplete score for student %s: missing %s", e.StudentID, strings.Join(e.MissingFields, ", "))
}

func (e *IncompleteScoreError) Is(target error) bool {
	return target == ErrIncompleteScore
}

// ScoreOutOfRangeError reports a component above the maximum score.
type ScoreOutOfRangeError struct {
	StudentID string  `json:"student_id,omitempty"`
	Field     string  `json:"field"`
	Value     float64 `json:"value"`
}

func (e *ScoreOutOfRangeError) Error() string {
	return fmt.Sprintf("score %s is %g, must be within [0,%d]", e.Field, e.Value, maxScore)
}

func (e *ScoreOutOfRangeError) Is(target error) bool {
	return target == ErrScoreOutOfRange
}

// ComputeFinalScore aggregates the three components with the given weights.
//
//	final = (harian*w_harian + uts*w_uts + uas*w_uas) / 100, rounded to 2 decimals
//
// Weights are re-validated. Every missing or zero component is reported at
// once in an *IncompleteScoreError; nothing is partially scored.
func ComputeFinalScore(studentID string, in ScoreInput, w WeightConfig) (ScoreResult, error) {
	if err := w.Validate(); err != nil {
		return ScoreResult{}, err
	}

	components := []struct {
		name string
		v    *float64
	}{
		{FieldHarian, in.Harian},
		{FieldUTS, in.UTS},
		{FieldUAS, in.UAS},
	}

	var missing []string
	for _, c := range components {
		if c.v == nil || *c.v <= 0 || math.IsNaN(*c.v) {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return ScoreResult{}, &IncompleteScoreError{StudentID: studentID, MissingFields: missing}
	}
	for _, c := range components {
		if *c.v > maxScore {
			return ScoreResult{}, &ScoreOutOfRangeError{StudentID: studentID, Field: c.name, Value: *c.v}
		}
	}

	// weighted is the final score in hundredths.
	weighted := *in.Harian*w.Harian + *in.UTS*w.UTS + *in.UAS*w.UAS
	final := roundHundredths(weighted)

	return ScoreResult{
		FinalScore: final,
		Predicate:  PredicateFor(final),
	}, nil
}

// roundHundredths converts a value expressed in hundredths to a float
// rounded to two decimals, halves away from zero.
func roundHundredths(v float64) float64 {
	return math.Round(v) / 100
}
