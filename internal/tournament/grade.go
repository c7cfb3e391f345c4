package tournament

import "strings"

// gradeKeywords map name fragments to the grade of tournaments stored
// without one. They are checked in order against the lowercased name.
var gradeKeywords = []struct {
	fragment string
	grade    string
}{
	{"junior", "Junior"},
	{"u19", "Junior"},
	{"u17", "Junior"},
	{"commonwealth", "Grade 1"},
	{"olympic games", "Grade 1"},
	{"bwf world championships", "Grade 1"},
	{"bwf sudirman cup finals", "Grade 1"},
	{"bwf thomas & uber cup", "Grade 1"},
	{"badminton asia championships", "1000"},
	{"badminton asia mixed team championship", "1000"},
	{"bwf world tour finals", "Grade 2: Level 1"},
	{"asian games", "1000"},
}

// InferGrade derives a grade from a tournament name. It reports false when
// no rule matches.
func InferGrade(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	for _, k := range gradeKeywords {
		if strings.Contains(n, k.fragment) {
			return k.grade, true
		}
	}
	return "", false
}

// DetailGrade is the grade reported for a tournament: the stored grade when
// present, then a grade inferred from the name, then fallback.
func DetailGrade(grade, name, fallback string) string {
	if strings.TrimSpace(grade) == "" {
		if inferred, ok := InferGrade(name); ok {
			return inferred
		}
	}
	return NormalizeGrade(grade, fallback)
}
