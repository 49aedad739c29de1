package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatorRegistersCustomRules(t *testing.T) {
	require.NotPanics(t, func() { newValidator() })
}

func TestDecodeRequest_Semester(t *testing.T) {
	tests := []struct {
		semester string
		wantErr  string
	}{
		{"ganjil", ""},
		{"genap", ""},
		{"Genap", "semester must be one of [ganjil genap]"},
		{"ketiga", "semester must be one of [ganjil genap]"},
		{"", "semester is required"},
	}

	for _, tt := range tests {
		t.Run(tt.semester, func(t *testing.T) {
			body := `{"class_id":"7A","subject_id":"fiqih","semester":"` + tt.semester +
				`","academic_year":"2025/2026","entries":[{"student_id":"s-1"}]}`
			r := httptest.NewRequest("POST", "/api/v1/grades/bulk", strings.NewReader(body))

			var req BulkSaveRequest
			err := decodeRequest(r, &req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestDecodeRequest_AcademicYear(t *testing.T) {
	for year, ok := range map[string]bool{
		"2025/2026": true,
		"2025/2027": false,
		"2026/2025": false,
		"2025-2026": false,
		"25/26":     false,
	} {
		t.Run(year, func(t *testing.T) {
			body := `{"class_id":"7A","subject_id":"fiqih","semester":"ganjil","academic_year":"` + year +
				`","entries":[{"student_id":"s-1"}]}`
			r := httptest.NewRequest("POST", "/api/v1/grades/bulk", strings.NewReader(body))

			var req BulkSaveRequest
			err := decodeRequest(r, &req)
			if ok {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, "academic_year must look like 2025/2026")
			}
		})
	}
}
