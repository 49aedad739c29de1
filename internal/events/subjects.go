package events

const (
	SubjectWeightsUpdated = "rapor.settings.weights.updated"

	StreamName     = "RAPOR_EVENTS"
	StreamSubjects = "rapor.>"
	StreamMaxAge   = "2160h" // 90 days
)

func SubjectGradesSaved(classID string) string { return "rapor.grades." + classID + ".saved" }
