package domain

import (
	"fmt"
	"strings"
)

// Table is a header plus string rows, as read from one domain dataset.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of a header column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i, true
		}
	}
	return -1, false
}

// RequireColumns resolves every named column or fails with ErrMissingColumn.
func (t *Table) RequireColumns(names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	var missing []string
	for _, name := range names {
		i, ok := t.ColumnIndex(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		return nil, Wrap(ErrMissingColumn, fmt.Errorf("table %q: %s", t.Name, strings.Join(missing, ", ")))
	}
	return idx, nil
}

// Cell returns the trimmed value at row/column, or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// Dataset groups the three source tables the corpus is synthesized from.
type Dataset struct {
	Occupations *Table
	Curricula   *Table
	Admissions  *Table
}

// Column names of the source tables.
const (
	ColOccupationName   = "직업명"
	ColOccupationField  = "영역"
	ColOccupationMajors = "추천학과"
	ColMajor            = "학과"
	ColGrade            = "학년"
	ColSemester         = "학기"
	ColCommonCourses    = "공통과목"
	ColBasicCourses     = "기본선택과목"
	ColGeneralCourses   = "일반선택과목"
	ColCareerCourses    = "진로선택과목"
	ColConvergeCourses  = "융합과목"
	ColComment          = "코멘트"
	ColUniversity       = "대학명"
	ColAdmissionTrack   = "전형명"
	ColHeadcount        = "인원"
	ColCompetitionRatio = "경쟁률"
	ColCutoff50         = "50% 컷"
	ColCutoff70         = "70% 컷"
)

// NonePlaceholder stands in for a blank category value in synthesized text.
const NonePlaceholder = "없음"
