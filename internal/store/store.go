package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Rapor/internal/grading"
)

// WeightSettings is the persisted singleton weight configuration.
type WeightSettings struct {
	Weights   grading.WeightConfig `json:"weights"`
	UpdatedBy string               `json:"updated_by,omitempty"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Semester values.
const (
	SemesterGanjil = "ganjil"
	SemesterGenap  = "genap"
)

// Semesters lists every accepted semester value.
var Semesters = []string{SemesterGanjil, SemesterGenap}

func ValidSemester(s string) bool {
	for _, v := range Semesters {
		if s == v {
			return true
		}
	}
	return false
}

// Grade is one student's report-card entry for a subject in a class,
// semester and academic year. Saving a grade for the same key replaces it.
type Grade struct {
	ID           uuid.UUID `json:"id"`
	StudentID    string    `json:"student_id"`
	SubjectID    string    `json:"subject_id"`
	ClassID      string    `json:"class_id"`
	Semester     string    `json:"semester"`
	AcademicYear string    `json:"academic_year"`

	// Raw inputs
	Harian float64 `json:"harian"`
	UTS    float64 `json:"uts"`
	UAS    float64 `json:"uas"`

	// Weights in force when the grade was computed
	Weights grading.WeightConfig `json:"weights"`

	FinalScore float64 `json:"final_score"`
	Predicate  string  `json:"predicate"`

	TeacherID string    `json:"teacher_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GradeFilter struct {
	ClassID      string
	SubjectID    string
	Semester     string
	AcademicYear string
	StudentID    string
	Limit        int
	Offset       int
}

type Store interface {
	// GetWeightConfig returns nil, nil when no configuration has been saved.
	GetWeightConfig(ctx context.Context) (*WeightSettings, error)
	SaveWeightConfig(ctx context.Context, s *WeightSettings) error

	// SaveGrades upserts all grades atomically.
	SaveGrades(ctx context.Context, grades []*Grade) error
	ListGrades(ctx context.Context, filter GradeFilter) ([]*Grade, error)

	Close() error
}
