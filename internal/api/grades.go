package api

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Rapor/internal/events"
	"github.com/MikeSquared-Agency/Rapor/internal/grading"
	"github.com/MikeSquared-Agency/Rapor/internal/metrics"
	"github.com/MikeSquared-Agency/Rapor/internal/store"
)

type GradesHandler struct {
	store    store.Store
	events   events.Client
	defaults grading.WeightConfig
	kkm      float64
	logger   *slog.Logger
}

func NewGradesHandler(s store.Store, e events.Client, defaults grading.WeightConfig, kkm float64, logger *slog.Logger) *GradesHandler {
	return &GradesHandler{store: s, events: e, defaults: defaults, kkm: kkm, logger: logger}
}

type ComputeRequest struct {
	StudentID string   `json:"student_id,omitempty"`
	Harian    *float64 `json:"harian"`
	UTS       *float64 `json:"uts"`
	UAS       *float64 `json:"uas"`
}

type ComputeResponse struct {
	grading.ScoreResult
	StudentID string               `json:"student_id,omitempty"`
	Weights   grading.WeightConfig `json:"weights"`
}

// Compute handles POST /api/v1/grades/compute. Nothing is persisted.
func (h *GradesHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws, _, err := activeWeights(r.Context(), h.store, h.defaults)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	in := grading.ScoreInput{Harian: req.Harian, UTS: req.UTS, UAS: req.UAS}
	res, err := grading.ComputeFinalScore(req.StudentID, in, ws.Weights)
	metrics.ObserveCompute(err)
	if err != nil {
		if errors.Is(err, grading.ErrInvalidWeightConfig) {
			h.logger.Error("active weight configuration is invalid", "error", err)
			writeError(w, http.StatusInternalServerError, "active weight configuration is invalid")
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, grading.RejectionFor(req.StudentID, err))
		return
	}

	writeJSON(w, http.StatusOK, ComputeResponse{ScoreResult: res, StudentID: req.StudentID, Weights: ws.Weights})
}

type BulkEntry struct {
	StudentID string   `json:"student_id" validate:"required"`
	Harian    *float64 `json:"harian"`
	UTS       *float64 `json:"uts"`
	UAS       *float64 `json:"uas"`
}

type BulkSaveRequest struct {
	ClassID      string      `json:"class_id" validate:"required"`
	SubjectID    string      `json:"subject_id" validate:"required"`
	Semester     string      `json:"semester" validate:"required,semester"`
	AcademicYear string      `json:"academic_year" validate:"required,academic_year"`
	Entries      []BulkEntry `json:"entries" validate:"required,min=1,dive"`
}

type SavedGrade struct {
	StudentID  string  `json:"student_id"`
	FinalScore float64 `json:"final_score"`
	Predicate  string  `json:"predicate"`
}

type BulkSaveResponse struct {
	Weights grading.WeightConfig `json:"weights"`
	Saved   []SavedGrade         `json:"saved"`
	Failed  []grading.Rejection  `json:"failed"`
}

// BulkSave handles POST /api/v1/grades/bulk. The active weights are read
// once for the whole class. Students with rejected scores are reported in
// failed and do not block the others from being saved.
func (h *GradesHandler) BulkSave(w http.ResponseWriter, r *http.Request) {
	var req BulkSaveRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	seen := make(map[string]bool, len(req.Entries))
	entries := make([]grading.StudentScore, 0, len(req.Entries))
	for _, e := range req.Entries {
		if seen[e.StudentID] {
			writeError(w, http.StatusBadRequest, "duplicate student_id "+e.StudentID)
			return
		}
		seen[e.StudentID] = true
		entries = append(entries, grading.StudentScore{
			StudentID: e.StudentID,
			Scores:    grading.ScoreInput{Harian: e.Harian, UTS: e.UTS, UAS: e.UAS},
		})
	}

	ws, _, err := activeWeights(r.Context(), h.store, h.defaults)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	batch, err := grading.ComputeBatch(entries, ws.Weights)
	if err != nil {
		h.logger.Error("active weight configuration is invalid", "error", err)
		writeError(w, http.StatusInternalServerError, "active weight configuration is invalid")
		return
	}
	metrics.ObserveBatch(batch)

	teacherID := r.Header.Get(userIDHeader)
	grades := make([]*store.Grade, 0, len(batch.Scored))
	saved := make([]SavedGrade, 0, len(batch.Scored))
	for _, s := range batch.Scored {
		grades = append(grades, &store.Grade{
			StudentID:    s.StudentID,
			SubjectID:    req.SubjectID,
			ClassID:      req.ClassID,
			Semester:     req.Semester,
			AcademicYear: req.AcademicYear,
			Harian:       *s.Input.Harian,
			UTS:          *s.Input.UTS,
			UAS:          *s.Input.UAS,
			Weights:      ws.Weights,
			FinalScore:   s.Result.FinalScore,
			Predicate:    s.Result.Predicate,
			TeacherID:    teacherID,
		})
		saved = append(saved, SavedGrade{
			StudentID:  s.StudentID,
			FinalScore: s.Result.FinalScore,
			Predicate:  s.Result.Predicate,
		})
	}

	if err := h.store.SaveGrades(r.Context(), grades); err != nil {
		h.logger.Error("failed to save grades", "class_id", req.ClassID, "subject_id", req.SubjectID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save grades")
		return
	}

	h.logger.Info("grades saved",
		"class_id", req.ClassID,
		"subject_id", req.SubjectID,
		"semester", req.Semester,
		"academic_year", req.AcademicYear,
		"saved", len(saved),
		"failed", len(batch.Rejected),
	)

	if h.events != nil {
		if err := h.events.Publish(events.SubjectGradesSaved(req.ClassID), events.GradesSavedEvent{
			ClassID:      req.ClassID,
			SubjectID:    req.SubjectID,
			Semester:     req.Semester,
			AcademicYear: req.AcademicYear,
			TeacherID:    teacherID,
			Saved:        len(saved),
			Rejected:     len(batch.Rejected),
			Timestamp:    time.Now().UTC(),
		}); err != nil {
			h.logger.Warn("failed to publish grades saved", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, BulkSaveResponse{
		Weights: ws.Weights,
		Saved:   saved,
		Failed:  batch.Rejected,
	})
}

type ReportEntry struct {
	*store.Grade
	Passed bool `json:"passed"`
}

type ReportSummary struct {
	Count        int            `json:"count"`
	Average      float64        `json:"average"`
	PassedCount  int            `json:"passed_count"`
	KKM          float64        `json:"kkm"`
	PredicateMix map[string]int `json:"predicate_mix"`
}

type ReportResponse struct {
	Grades  []ReportEntry `json:"grades"`
	Summary ReportSummary `json:"summary"`
}

// List handles GET /api/v1/grades
func (h *GradesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.GradeFilter{
		ClassID:      q.Get("class_id"),
		SubjectID:    q.Get("subject_id"),
		Semester:     q.Get("semester"),
		AcademicYear: q.Get("academic_year"),
		StudentID:    q.Get("student_id"),
	}
	if filter.ClassID == "" && filter.StudentID == "" {
		writeError(w, http.StatusBadRequest, "class_id or student_id required")
		return
	}

	grades, err := h.store.ListGrades(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ReportResponse{
		Grades:  make([]ReportEntry, 0, len(grades)),
		Summary: ReportSummary{KKM: h.kkm, PredicateMix: map[string]int{}},
	}
	var total float64
	for _, g := range grades {
		passed := g.FinalScore >= h.kkm
		resp.Grades = append(resp.Grades, ReportEntry{Grade: g, Passed: passed})
		total += g.FinalScore
		if passed {
			resp.Summary.PassedCount++
		}
		resp.Summary.PredicateMix[g.Predicate]++
	}
	resp.Summary.Count = len(grades)
	if len(grades) > 0 {
		resp.Summary.Average = math.Round(total/float64(len(grades))*100) / 100
	}

	writeJSON(w, http.StatusOK, resp)
}
