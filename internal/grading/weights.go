package grading

import (
	"errors"
	"fmt"
	"math"
)

const sumTolerance = 1e-9

// ErrInvalidWeightConfig is matched by every *InvalidWeightConfigError.
var ErrInvalidWeightConfig = errors.New("invalid weight config")

// WeightConfig holds the percentage contribution of each score component.
// The three weights must each be within [0,100] and sum to exactly 100.
type WeightConfig struct {
	Harian float64 `json:"harian_weight" yaml:"harian"`
	UTS    float64 `json:"uts_weight" yaml:"uts"`
	UAS    float64 `json:"uas_weight" yaml:"uas"`
}

// DefaultWeights returns the distribution used until an administrator saves one.
func DefaultWeights() WeightConfig {
	return WeightConfig{Harian: 30, UTS: 30, UAS: 40}
}

// Sum returns the total of all weights.
func (w WeightConfig) Sum() float64 {
	return w.Harian + w.UTS + w.UAS
}

// InvalidWeightConfigError reports a configuration that cannot be used for
// aggregation. ActualSum is always set; Field is set when a single weight
// is outside [0,100].
type InvalidWeightConfigError struct {
	ActualSum float64 `json:"actual_sum"`
	Field     string  `json:"field,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

func (e *InvalidWeightConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("weight %s is %g, must be within [0,100]", e.Field, e.Value)
	}
	return fmt.Sprintf("weights sum to %g, must sum to 100", e.ActualSum)
}

func (e *InvalidWeightConfigError) Is(target error) bool {
	return target == ErrInvalidWeightConfig
}

// Validate checks that each weight is a finite value within [0,100] and
// that they sum to 100.
func (w WeightConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{FieldHarian, w.Harian},
		{FieldUTS, w.UTS},
		{FieldUAS, w.UAS},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 || f.v > 100 {
			return &InvalidWeightConfigError{ActualSum: w.Sum(), Field: f.name, Value: f.v}
		}
	}
	// sumTolerance only absorbs float representation error, e.g. 33.33+33.33+33.34.
	if math.Abs(w.Sum()-100) > sumTolerance {
		return &InvalidWeightConfigError{ActualSum: w.Sum()}
	}
	return nil
}

// ValidateWeightConfig is the check run when an administrator saves weights
// and again before every aggregation.
func ValidateWeightConfig(w WeightConfig) error {
	return w.Validate()
}
