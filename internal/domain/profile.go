package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Grade is the student's current high-school year (1-3).
type Grade int

// GradeOptions are the selectable grade labels.
var GradeOptions = []string{"고1", "고2", "고3"}

// ParseGrade accepts "고2" style labels or bare digits.
func ParseGrade(s string) (Grade, error) {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "고"))
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 3 {
		return 0, Wrap(ErrInvalidGrade, fmt.Errorf("%q", s))
	}
	return Grade(n), nil
}

// Label renders the grade as "고N".
func (g Grade) Label() string {
	return fmt.Sprintf("고%d", int(g))
}

// Profile is what the student enters on the home screen.
type Profile struct {
	Name   string `json:"name"`
	School string `json:"school"`
	Job    string `json:"job"`
	Grade  Grade  `json:"grade"`
}

// Validate checks the required profile fields.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.School) == "" {
		return ErrMissingProfileField
	}
	if strings.TrimSpace(p.Job) == "" {
		return ErrMissingJob
	}
	if p.Grade < 1 || p.Grade > 3 {
		return ErrInvalidGrade
	}
	return nil
}
