// import_grades.go: standalone script to read a class score sheet (CSV) and submit it via the Rapor bulk grades API.
//
// Usage:
//
//	go run scripts/import_grades.go -csv nilai.csv -class 7A -subject fiqih -semester ganjil -year 2025/2026 -api http://localhost:8700 -user guru-1
//
// The CSV has a header row and the columns student_id,harian,uts,uas. Empty cells are sent as absent.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type entry struct {
	StudentID string   `json:"student_id"`
	Harian    *float64 `json:"harian,omitempty"`
	UTS       *float64 `json:"uts,omitempty"`
	UAS       *float64 `json:"uas,omitempty"`
}

type bulkRequest struct {
	ClassID      string  `json:"class_id"`
	SubjectID    string  `json:"subject_id"`
	Semester     string  `json:"semester"`
	AcademicYear string  `json:"academic_year"`
	Entries      []entry `json:"entries"`
}

type bulkResponse struct {
	Saved []struct {
		StudentID  string  `json:"student_id"`
		FinalScore float64 `json:"final_score"`
		Predicate  string  `json:"predicate"`
	} `json:"saved"`
	Failed []struct {
		StudentID     string   `json:"student_id"`
		Reason        string   `json:"reason"`
		MissingFields []string `json:"missing_fields"`
	} `json:"failed"`
}

func main() {
	csvPath := flag.String("csv", "nilai.csv", "path to score sheet")
	apiURL := flag.String("api", "http://localhost:8700", "Rapor API base URL")
	userID := flag.String("user", "system", "X-User-ID header value")
	classID := flag.String("class", "", "class id")
	subjectID := flag.String("subject", "", "subject id")
	semester := flag.String("semester", "ganjil", "semester (ganjil or genap)")
	year := flag.String("year", "", "academic year, e.g. 2025/2026")
	dryRun := flag.Bool("dry-run", false, "print entries without posting")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open %s: %v", *csvPath, err)
	}
	defer f.Close()

	entries, err := readEntries(f)
	if err != nil {
		log.Fatalf("read %s: %v", *csvPath, err)
	}
	log.Printf("parsed %d students from %s", len(entries), *csvPath)

	if *dryRun {
		for i, e := range entries {
			fmt.Printf("[%d] %s harian=%s uts=%s uas=%s\n", i+1, e.StudentID, show(e.Harian), show(e.UTS), show(e.UAS))
		}
		return
	}

	body, err := json.Marshal(bulkRequest{
		ClassID:      *classID,
		SubjectID:    *subjectID,
		Semester:     *semester,
		AcademicYear: *year,
		Entries:      entries,
	})
	if err != nil {
		log.Fatalf("encode request: %v", err)
	}
	req, err := http.NewRequest("POST", *apiURL+"/api/v1/grades/bulk", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", *userID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("post grades: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		log.Fatalf("post grades: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decode response: %v", err)
	}
	for _, f := range out.Failed {
		log.Printf("rejected %s: %s %v", f.StudentID, f.Reason, f.MissingFields)
	}
	log.Printf("done: %d saved, %d rejected", len(out.Saved), len(out.Failed))
}

func readEntries(r io.Reader) ([]entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("sheet has no student rows")
	}

	entries := make([]entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e := entry{StudentID: strings.TrimSpace(rec[0])}
		if e.StudentID == "" {
			return nil, fmt.Errorf("row %d: missing student_id", i+2)
		}
		for j, dst := range []**float64{&e.Harian, &e.UTS, &e.UAS} {
			cell := strings.TrimSpace(rec[j+1])
			if cell == "" {
				continue
			}
			// Sheets exported from spreadsheets often use a decimal comma.
			v, err := strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+2, j+2, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d column %d: %q is not a score", i+2, j+2, cell)
			}
			*dst = &v
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func show(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
