package grading

import "errors"

// StudentScore pairs a student with the scores entered for them.
type StudentScore struct {
	StudentID string     `json:"student_id"`
	Scores    ScoreInput `json:"scores"`
}

// ScoredStudent is one successful entry of a batch.
type ScoredStudent struct {
	StudentID string      `json:"student_id"`
	Input     ScoreInput  `json:"input"`
	Result    ScoreResult `json:"result"`
}

// Rejection is one failed entry of a batch.
type Rejection struct {
	StudentID     string   `json:"student_id"`
	Reason        string   `json:"reason"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Field         string   `json:"field,omitempty"`
	Message       string   `json:"message"`
}

// Rejection reasons.
const (
	ReasonIncompleteScore = "incomplete_score"
	ReasonOutOfRange      = "score_out_of_range"
)

// BatchResult collects every outcome of ComputeBatch. Entries keep their
// input order within each list.
type BatchResult struct {
	Scored   []ScoredStudent `json:"scored"`
	Rejected []Rejection     `json:"rejected"`
}

// ComputeBatch scores every entry independently. A rejected student never
// stops the others. The weights are validated once up front; an invalid
// config fails the whole batch.
func ComputeBatch(entries []StudentScore, w WeightConfig) (BatchResult, error) {
	if err := w.Validate(); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{
		Scored:   make([]ScoredStudent, 0, len(entries)),
		Rejected: []Rejection{},
	}
	for _, e := range entries {
		sr, err := ComputeFinalScore(e.StudentID, e.Scores, w)
		if err != nil {
			res.Rejected = append(res.Rejected, RejectionFor(e.StudentID, err))
			continue
		}
		res.Scored = append(res.Scored, ScoredStudent{StudentID: e.StudentID, Input: e.Scores, Result: sr})
	}
	return res, nil
}

// RejectionFor converts a per-record error from ComputeFinalScore into a
// reportable Rejection.
func RejectionFor(studentID string, err error) Rejection {
	r := Rejection{StudentID: studentID, Message: err.Error()}

	var inc *IncompleteScoreError
	var oor *ScoreOutOfRangeError
	switch {
	case errors.As(err, &inc):
		r.Reason = ReasonIncompleteScore
		r.MissingFields = inc.MissingFields
	case errors.As(err, &oor):
		r.Reason = ReasonOutOfRange
		r.Field = oor.Field
	default:
		r.Reason = "error"
	}
	return r
}
