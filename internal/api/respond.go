package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MikeSquared-Agency/Rapor/internal/store"
)

var validate = newValidator()

var academicYearPattern = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("academic_year", validateAcademicYear); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("semester", func(fl validator.FieldLevel) bool {
		return store.ValidSemester(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// validateAcademicYear accepts "YYYY/YYYY" where the second year follows the first.
func validateAcademicYear(fl validator.FieldLevel) bool {
	m := academicYearPattern.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}

// decodeRequest decodes a JSON body into dst and validates it. The returned
// error is safe to show to the caller.
func decodeRequest(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationMessage(verrs)
		}
		return err
	}
	return nil
}

func validationMessage(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "semester":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %v", field, store.Semesters))
		case "academic_year":
			msgs = append(msgs, field+" must look like 2025/2026")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
