package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Rapor/internal/events"
	"github.com/MikeSquared-Agency/Rapor/internal/grading"
	"github.com/MikeSquared-Agency/Rapor/internal/store"
)

func TestCompute_ScoresWithActiveWeights(t *testing.T) {
	router, ms, _ := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/grades/compute", `{"student_id":"s-1","harian":80,"uts":75,"uas":90}`, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ComputeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 82.5, resp.FinalScore)
	assert.Equal(t, "B", resp.Predicate)
	assert.Equal(t, grading.DefaultWeights(), resp.Weights)
	assert.Zero(t, ms.saves, "compute must not persist")
}

func TestCompute_IncompleteScore(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/grades/compute", `{"student_id":"s-2","harian":0,"uts":80,"uas":85}`, false)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var rej grading.Rejection
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rej))
	assert.Equal(t, grading.ReasonIncompleteScore, rej.Reason)
	assert.Equal(t, []string{"harian"}, rej.MissingFields)
	assert.Equal(t, "s-2", rej.StudentID)
}

func TestCompute_OutOfRange(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/grades/compute", `{"harian":80,"uts":80,"uas":120}`, false)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var rej grading.Rejection
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rej))
	assert.Equal(t, grading.ReasonOutOfRange, rej.Reason)
	assert.Equal(t, "uas", rej.Field)
}

func TestCompute_MalformedBody(t *testing.T) {
	router, _, _ := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/grades/compute", `{"harian":"eighty"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

const bulkBody = `{
	"class_id": "7A",
	"subject_id": "fiqih",
	"semester": "ganjil",
	"academic_year": "2025/2026",
	"entries": [
		{"student_id": "s-1", "harian": 80, "uts": 75, "uas": 90},
		{"student_id": "s-2", "harian": 0, "uts": 80, "uas": 85},
		{"student_id": "s-3", "harian": 95, "uts": 90, "uas": 92},
		{"student_id": "s-4", "uts": 70}
	]
}`

func TestBulkSave_PartialSuccess(t *testing.T) {
	router, ms, me := setupTestRouter()

	w := doRequest(router, "POST", "/api/v1/grades/bulk", bulkBody, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BulkSaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	require.Len(t, resp.Saved, 2)
	assert.Equal(t, SavedGrade{StudentID: "s-1", FinalScore: 82.5, Predicate: "B"}, resp.Saved[0])
	assert.Equal(t, SavedGrade{StudentID: "s-3", FinalScore: 92.3, Predicate: "A"}, resp.Saved[1])

	require.Len(t, resp.Failed, 2)
	assert.Equal(t, "s-2", resp.Failed[0].StudentID)
	assert.Equal(t, []string{"harian"}, resp.Failed[0].MissingFields)
	assert.Equal(t, "s-4", resp.Failed[1].StudentID)
	assert.Equal(t, []string{"harian", "uas"}, resp.Failed[1].MissingFields)

	require.Len(t, ms.grades, 2)
	for _, g := range ms.grades {
		assert.Equal(t, "7A", g.ClassID)
		assert.Equal(t, "guru-1", g.TeacherID)
		assert.Equal(t, grading.DefaultWeights(), g.Weights)
	}

	require.Len(t, me.sent, 1)
	assert.Equal(t, events.SubjectGradesSaved("7A"), me.sent[0].subject)
	ev := me.sent[0].data.(events.GradesSavedEvent)
	assert.Equal(t, 2, ev.Saved)
	assert.Equal(t, 2, ev.Rejected)
}

func TestBulkSave_UsesSavedWeights(t *testing.T) {
	router, ms, _ := setupTestRouter()
	ms.weights = &store.WeightSettings{Weights: grading.WeightConfig{Harian: 0, UTS: 0, UAS: 100}}

	body := `{"class_id":"7A","subject_id":"fiqih","semester":"genap","academic_year":"2025/2026",
		"entries":[{"student_id":"s-1","harian":10,"uts":10,"uas":88}]}`
	w := doRequest(router, "POST", "/api/v1/grades/bulk", body, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BulkSaveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Saved, 1)
	assert.Equal(t, 88.0, resp.Saved[0].FinalScore)
	assert.Equal(t, "B", resp.Saved[0].Predicate)
}

func TestBulkSave_ResaveSupersedes(t *testing.T) {
	router, ms, _ := setupTestRouter()

	first := `{"class_id":"7A","subject_id":"fiqih","semester":"ganjil","academic_year":"2025/2026",
		"entries":[{"student_id":"s-1","harian":60,"uts":60,"uas":60}]}`
	second := `{"class_id":"7A","subject_id":"fiqih","semester":"ganjil","academic_year":"2025/2026",
		"entries":[{"student_id":"s-1","harian":90,"uts":90,"uas":90}]}`

	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/v1/grades/bulk", first, false).Code)
	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/v1/grades/bulk", second, false).Code)

	require.Len(t, ms.grades, 1)
	for _, g := range ms.grades {
		assert.Equal(t, 90.0, g.FinalScore)
		assert.Equal(t, "A", g.Predicate)
	}
}

func TestBulkSave_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing class", `{"subject_id":"f","semester":"ganjil","academic_year":"2025/2026","entries":[{"student_id":"a"}]}`, "class_id is required"},
		{"bad semester", `{"class_id":"7A","subject_id":"f","semester":"ketiga","academic_year":"2025/2026","entries":[{"student_id":"a"}]}`, "semester must be one of"},
		{"bad year", `{"class_id":"7A","subject_id":"f","semester":"ganjil","academic_year":"2025/2027","entries":[{"student_id":"a"}]}`, "academic_year must look like"},
		{"no entries", `{"class_id":"7A","subject_id":"f","semester":"ganjil","academic_year":"2025/2026","entries":[]}`, "entries must have at least"},
		{"entry without student", `{"class_id":"7A","subject_id":"f","semester":"ganjil","academic_year":"2025/2026","entries":[{"harian":80}]}`, "entries[0].student_id is required"},
		{"duplicate student", `{"class_id":"7A","subject_id":"f","semester":"ganjil","academic_year":"2025/2026","entries":[{"student_id":"a"},{"student_id":"a"}]}`, "duplicate student_id a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, ms, _ := setupTestRouter()
			w := doRequest(router, "POST", "/api/v1/grades/bulk", tt.body, false)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Zero(t, ms.saves)
		})
	}
}

func TestBulkSave_StoreFailure(t *testing.T) {
	ms := &MockStore{}
	ms.On("GetWeightConfig", mock.Anything).Return(nil, nil)
	ms.On("SaveGrades", mock.Anything, mock.Anything).Return(errors.New("db down"))
	router := setupMockRouter(ms)

	w := doRequest(router, "POST", "/api/v1/grades/bulk", bulkBody, false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	ms.AssertExpectations(t)
}

func TestBulkSave_InvalidStoredWeights(t *testing.T) {
	ms := &MockStore{}
	ms.On("GetWeightConfig", mock.Anything).Return(&store.WeightSettings{
		Weights: grading.WeightConfig{Harian: 30, UTS: 30, UAS: 39},
	}, nil)
	router := setupMockRouter(ms)

	w := doRequest(router, "POST", "/api/v1/grades/bulk", bulkBody, false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	ms.AssertNotCalled(t, "SaveGrades", mock.Anything, mock.Anything)
}

func TestListGrades_ReportWithKKM(t *testing.T) {
	router, _, _ := setupTestRouter()
	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/v1/grades/bulk", bulkBody, false).Code)

	w := doRequest(router, "GET", "/api/v1/grades?class_id=7A&subject_id=fiqih", "", false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ReportResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Grades, 2)
	assert.Equal(t, 2, resp.Summary.Count)
	assert.Equal(t, 2, resp.Summary.PassedCount)
	assert.Equal(t, 87.4, resp.Summary.Average)
	assert.Equal(t, 75.0, resp.Summary.KKM)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, resp.Summary.PredicateMix)
	for _, g := range resp.Grades {
		assert.True(t, g.Passed)
	}
}

func TestListGrades_BelowKKM(t *testing.T) {
	router, _, _ := setupTestRouter()
	body := `{"class_id":"7B","subject_id":"fiqih","semester":"ganjil","academic_year":"2025/2026",
		"entries":[{"student_id":"s-9","harian":70,"uts":70,"uas":70}]}`
	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/v1/grades/bulk", body, false).Code)

	w := doRequest(router, "GET", "/api/v1/grades?class_id=7B", "", false)
	var resp ReportResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Grades, 1)
	assert.False(t, resp.Grades[0].Passed)
	assert.Equal(t, "C", resp.Grades[0].Predicate)
	assert.Equal(t, 0, resp.Summary.PassedCount)
}

func TestListGrades_SummaryCoversWholeClass(t *testing.T) {
	router, ms, _ := setupTestRouter()
	var sb strings.Builder
	sb.WriteString(`{"class_id":"9C","subject_id":"fiqih","semester":"ganjil","academic_year":"2025/2026","entries":[`)
	for i := 0; i < 600; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"student_id":"s-%d","harian":80,"uts":80,"uas":80}`, i)
	}
	sb.WriteString("]}")
	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/v1/grades/bulk", sb.String(), false).Code)

	w := doRequest(router, "GET", "/api/v1/grades?class_id=9C&subject_id=fiqih", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ReportResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 600, resp.Summary.Count)
	assert.Equal(t, 600, resp.Summary.PassedCount)
	assert.Zero(t, ms.lastFilter.Limit)
	assert.Zero(t, ms.lastFilter.Offset)
}

func TestListGrades_RequiresScope(t *testing.T) {
	router, _, _ := setupTestRouter()
	w := doRequest(router, "GET", "/api/v1/grades", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
