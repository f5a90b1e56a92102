package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
)

// Synthesize converts the three tables into TextUnits: occupations first,
// then curricula, then admissions. IDs and positions are assigned in that
// order and are stable for identical input.
func Synthesize(ds *domain.Dataset) ([]domain.TextUnit, error) {
	occupations, err := SynthesizeOccupations(ds.Occupations)
	if err != nil {
		return nil, err
	}
	curricula, err := SynthesizeCurricula(ds.Curricula)
	if err != nil {
		return nil, err
	}
	admissions, err := SynthesizeAdmissions(ds.Admissions)
	if err != nil {
		return nil, err
	}

	units := make([]domain.TextUnit, 0, len(occupations)+len(curricula)+len(admissions))
	units = append(units, occupations...)
	units = append(units, curricula...)
	units = append(units, admissions...)
	for i := range units {
		units[i].Position = i
	}
	return units, nil
}

// SynthesizeOccupations yields one unit per occupation row.
func SynthesizeOccupations(t *domain.Table) ([]domain.TextUnit, error) {
	cols, err := t.RequireColumns(domain.ColOccupationName, domain.ColOccupationField, domain.ColOccupationMajors)
	if err != nil {
		return nil, err
	}

	units := make([]domain.TextUnit, 0, len(t.Rows))
	for i := range t.Rows {
		name := orNone(t.Cell(i, cols[domain.ColOccupationName]))
		text := fmt.Sprintf("%s은(는) %s 분야에 속하는 직업이며, 취업을 위해 추천하는 학과는 %s입니다.",
			name,
			orNone(t.Cell(i, cols[domain.ColOccupationField])),
			orNone(t.Cell(i, cols[domain.ColOccupationMajors])),
		)
		units = append(units, newUnit(domain.UnitKindOccupation, len(units), name, text))
	}
	return units, nil
}

type curriculumRow struct {
	grade    int
	semester int
	row      int
}

// SynthesizeCurricula yields one unit per distinct major, its rows ordered
// by (grade, semester).
func SynthesizeCurricula(t *domain.Table) ([]domain.TextUnit, error) {
	cols, err := t.RequireColumns(
		domain.ColMajor, domain.ColGrade, domain.ColSemester,
		domain.ColCommonCourses, domain.ColBasicCourses, domain.ColGeneralCourses,
		domain.ColCareerCourses, domain.ColConvergeCourses,
	)
	if err != nil {
		return nil, err
	}

	var majors []string
	rowsByMajor := make(map[string][]curriculumRow)
	for i := range t.Rows {
		major := t.Cell(i, cols[domain.ColMajor])
		grade, err := parseOrdinal(t.Cell(i, cols[domain.ColGrade]))
		if err != nil {
			return nil, domain.Wrap(domain.ErrInvalidRow, fmt.Errorf("%s row %d: %s: %w", t.Name, i+1, domain.ColGrade, err))
		}
		semester, err := parseOrdinal(t.Cell(i, cols[domain.ColSemester]))
		if err != nil {
			return nil, domain.Wrap(domain.ErrInvalidRow, fmt.Errorf("%s row %d: %s: %w", t.Name, i+1, domain.ColSemester, err))
		}
		if _, seen := rowsByMajor[major]; !seen {
			majors = append(majors, major)
		}
		rowsByMajor[major] = append(rowsByMajor[major], curriculumRow{grade: grade, semester: semester, row: i})
	}

	units := make([]domain.TextUnit, 0, len(majors))
	for _, major := range majors {
		rows := rowsByMajor[major]
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].grade != rows[b].grade {
				return rows[a].grade < rows[b].grade
			}
			return rows[a].semester < rows[b].semester
		})

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s에 입학하기 위해 고등학교 재학 중 다음과 같은 과목을 이수해야 합니다.", orNone(major))
		for _, r := range rows {
			fmt.Fprintf(&sb, "%d학년 %d학기: 공통과목 %s, 기본선택 %s, 일반선택 %s, 진로선택 %s, 융합선택 %s. ",
				r.grade, r.semester,
				orNone(t.Cell(r.row, cols[domain.ColCommonCourses])),
				orNone(t.Cell(r.row, cols[domain.ColBasicCourses])),
				orNone(t.Cell(r.row, cols[domain.ColGeneralCourses])),
				orNone(t.Cell(r.row, cols[domain.ColCareerCourses])),
				orNone(t.Cell(r.row, cols[domain.ColConvergeCourses])),
			)
		}
		units = append(units, newUnit(domain.UnitKindCurriculum, len(units), major, sb.String()))
	}
	return units, nil
}

// SynthesizeAdmissions yields one unit per distinct major, majors in
// ascending order and rows in source order.
func SynthesizeAdmissions(t *domain.Table) ([]domain.TextUnit, error) {
	cols, err := t.RequireColumns(
		domain.ColUniversity, domain.ColMajor, domain.ColAdmissionTrack, domain.ColHeadcount,
		domain.ColCompetitionRatio, domain.ColCutoff50, domain.ColCutoff70,
	)
	if err != nil {
		return nil, err
	}

	parts := make(map[string][]string)
	for i := range t.Rows {
		major := t.Cell(i, cols[domain.ColMajor])
		parts[major] = append(parts[major], fmt.Sprintf(
			"%s %s는 %s으로 %s명을 선발했고, 경쟁률은 %s입니다. 50%%컷은 %s, 70%%컷은 %s입니다.",
			orNone(t.Cell(i, cols[domain.ColUniversity])),
			orNone(major),
			orNone(t.Cell(i, cols[domain.ColAdmissionTrack])),
			orNone(t.Cell(i, cols[domain.ColHeadcount])),
			orNone(t.Cell(i, cols[domain.ColCompetitionRatio])),
			orNone(t.Cell(i, cols[domain.ColCutoff50])),
			orNone(t.Cell(i, cols[domain.ColCutoff70])),
		))
	}

	majors := make([]string, 0, len(parts))
	for m := range parts {
		majors = append(majors, m)
	}
	sort.Strings(majors)

	units := make([]domain.TextUnit, 0, len(majors))
	for _, major := range majors {
		text := orNone(major) + "의 입결정보는 다음과 같습니다. " + strings.Join(parts[major], " ")
		units = append(units, newUnit(domain.UnitKindAdmission, len(units), major, text))
	}
	return units, nil
}

// MajorComments returns the first non-blank comment per curriculum major.
// Tables without a comment column yield an empty map.
func MajorComments(t *domain.Table) map[string]string {
	comments := make(map[string]string)
	if t == nil {
		return comments
	}
	majorCol, ok := t.ColumnIndex(domain.ColMajor)
	if !ok {
		return comments
	}
	commentCol, ok := t.ColumnIndex(domain.ColComment)
	if !ok {
		return comments
	}
	for i := range t.Rows {
		major := t.Cell(i, majorCol)
		if _, done := comments[major]; done {
			continue
		}
		if c := t.Cell(i, commentCol); c != "" {
			comments[major] = c
		}
	}
	return comments
}

func newUnit(kind domain.UnitKind, n int, subject, text string) domain.TextUnit {
	return domain.TextUnit{
		ID:      fmt.Sprintf("%s-%04d", kind, n+1),
		Kind:    kind,
		Subject: subject,
		Text:    text,
	}
}

func orNone(v string) string {
	if v == "" {
		return domain.NonePlaceholder
	}
	return v
}

// parseOrdinal reads grade and semester cells, which spreadsheet exports
// often write as "1.0".
func parseOrdinal(v string) (int, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", v)
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not a whole number: %q", v)
	}
	return int(f), nil
}
