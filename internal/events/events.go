package events

import (
	"time"

	"github.com/MikeSquared-Agency/Rapor/internal/grading"
)

type WeightsUpdatedEvent struct {
	Weights   grading.WeightConfig `json:"weights"`
	UpdatedBy string               `json:"updated_by"`
	Timestamp time.Time            `json:"timestamp"`
}

type GradesSavedEvent struct {
	ClassID      string    `json:"class_id"`
	SubjectID    string    `json:"subject_id"`
	Semester     string    `json:"semester"`
	AcademicYear string    `json:"academic_year"`
	TeacherID    string    `json:"teacher_id"`
	Saved        int       `json:"saved"`
	Rejected     int       `json:"rejected"`
	Timestamp    time.Time `json:"timestamp"`
}
