package service

import (
	"strings"
	"testing"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var curriculumHeader = []string{"학과", "학년", "학기", "공통과목", "기본선택과목", "일반선택과목", "진로선택과목", "융합과목", "코멘트"}

var admissionHeader = []string{"대학명", "학과", "전형명", "인원", "경쟁률", "50% 컷", "70% 컷"}

func occupationTable() *domain.Table {
	return &domain.Table{
		Name:   "occupations",
		Header: []string{"직업명", "영역", "추천학과"},
		Rows: [][]string{
			{"소프트웨어 개발자", "IT", "컴퓨터공학과, 소프트웨어학과"},
			{"사회복지사", "", "사회복지학과"},
		},
	}
}

func curriculumTable() *domain.Table {
	return &domain.Table{
		Name:   "curricula",
		Header: curriculumHeader,
		Rows: [][]string{
			{"컴퓨터공학과", "2", "1", "", "수학Ⅰ", "정보", "인공지능 기초", "", "코딩을 좋아하는 학생에게 추천"},
			{"사회복지학과", "1", "1", "통합사회", "", "", "", "", ""},
			{"컴퓨터공학과", "1.0", "2.0", "공통수학2", "", "", "", "", "두 번째 코멘트"},
			{"컴퓨터공학과", "1", "1", "공통수학1", "", "", "", "과학탐구실험", ""},
		},
	}
}

func admissionTable() *domain.Table {
	return &domain.Table{
		Name:   "admissions",
		Header: admissionHeader,
		Rows: [][]string{
			{"서울대", "컴퓨터공학부", "지역균형", "10", "5.2", "1.3", "1.5"},
			{"고려대", "경영학과", "학업우수", "20", "12.1", "1.6", ""},
			{"연세대", "컴퓨터공학부", "활동우수", "15", "8.0", "1.8", "2.1"},
		},
	}
}

func TestSynthesizeOccupations(t *testing.T) {
	units, err := SynthesizeOccupations(occupationTable())

	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "소프트웨어 개발자은(는) IT 분야에 속하는 직업이며, 취업을 위해 추천하는 학과는 컴퓨터공학과, 소프트웨어학과입니다.", units[0].Text)
	assert.Equal(t, "occupation-0001", units[0].ID)
	assert.Equal(t, "소프트웨어 개발자", units[0].Subject)
	assert.Contains(t, units[1].Text, "없음 분야에 속하는")
}

func TestSynthesizeOccupations_MissingColumn(t *testing.T) {
	table := occupationTable()
	table.Header = []string{"직업명", "영역", "학과"}

	units, err := SynthesizeOccupations(table)

	assert.Nil(t, units)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestSynthesizeCurricula(t *testing.T) {
	units, err := SynthesizeCurricula(curriculumTable())

	require.NoError(t, err)
	require.Len(t, units, 2)

	cs := units[0]
	assert.Equal(t, "컴퓨터공학과", cs.Subject)
	assert.Equal(t, domain.UnitKindCurriculum, cs.Kind)
	assert.Equal(t,
		"컴퓨터공학과에 입학하기 위해 고등학교 재학 중 다음과 같은 과목을 이수해야 합니다."+
			"1학년 1학기: 공통과목 공통수학1, 기본선택 없음, 일반선택 없음, 진로선택 없음, 융합선택 과학탐구실험. "+
			"1학년 2학기: 공통과목 공통수학2, 기본선택 없음, 일반선택 없음, 진로선택 없음, 융합선택 없음. "+
			"2학년 1학기: 공통과목 없음, 기본선택 수학Ⅰ, 일반선택 정보, 진로선택 인공지능 기초, 융합선택 없음. ",
		cs.Text)

	assert.Equal(t, "사회복지학과", units[1].Subject)
	assert.Equal(t, "curriculum-0002", units[1].ID)
}

func TestSynthesizeCurricula_MissingValueUsesPlaceholder(t *testing.T) {
	units, err := SynthesizeCurricula(curriculumTable())
	require.NoError(t, err)

	assert.Contains(t, units[1].Text, "공통과목 통합사회, 기본선택 없음, 일반선택 없음, 진로선택 없음, 융합선택 없음. ")
	assert.NotContains(t, units[1].Text, "기본선택 ,")
}

func TestSynthesizeCurricula_InvalidGrade(t *testing.T) {
	table := curriculumTable()
	table.Rows[1][1] = "first"

	_, err := SynthesizeCurricula(table)

	assert.ErrorIs(t, err, domain.ErrInvalidRow)
	assert.Contains(t, err.Error(), "row 2")
}

func TestSynthesizeCurricula_CommentColumnOptional(t *testing.T) {
	table := curriculumTable()
	table.Header = curriculumHeader[:8]

	units, err := SynthesizeCurricula(table)

	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestSynthesizeAdmissions(t *testing.T) {
	units, err := SynthesizeAdmissions(admissionTable())

	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "경영학과", units[0].Subject)
	assert.Equal(t, "경영학과의 입결정보는 다음과 같습니다. 고려대 경영학과는 학업우수으로 20명을 선발했고, 경쟁률은 12.1입니다. 50%컷은 1.6, 70%컷은 없음입니다.", units[0].Text)

	assert.Equal(t, "컴퓨터공학부", units[1].Subject)
	assert.Equal(t,
		"컴퓨터공학부의 입결정보는 다음과 같습니다. "+
			"서울대 컴퓨터공학부는 지역균형으로 10명을 선발했고, 경쟁률은 5.2입니다. 50%컷은 1.3, 70%컷은 1.5입니다. "+
			"연세대 컴퓨터공학부는 활동우수으로 15명을 선발했고, 경쟁률은 8.0입니다. 50%컷은 1.8, 70%컷은 2.1입니다.",
		units[1].Text)
}

func TestSynthesize_EveryRowContributesOnce(t *testing.T) {
	ds := &domain.Dataset{
		Occupations: occupationTable(),
		Curricula:   curriculumTable(),
		Admissions:  admissionTable(),
	}

	units, err := Synthesize(ds)
	require.NoError(t, err)
	require.Len(t, units, 6)

	for i, u := range units {
		assert.Equal(t, i, u.Position)
	}

	semesters := 0
	tracks := 0
	for _, u := range units {
		semesters += strings.Count(u.Text, "학기: ")
		tracks += strings.Count(u.Text, "명을 선발했고")
	}
	assert.Equal(t, len(ds.Curricula.Rows), semesters)
	assert.Equal(t, len(ds.Admissions.Rows), tracks)
}

func TestSynthesize_FailsOnBrokenTable(t *testing.T) {
	ds := &domain.Dataset{
		Occupations: occupationTable(),
		Curricula:   curriculumTable(),
		Admissions:  &domain.Table{Name: "admissions", Header: []string{"대학명"}},
	}

	units, err := Synthesize(ds)

	assert.Nil(t, units)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestMajorComments(t *testing.T) {
	comments := MajorComments(curriculumTable())

	assert.Equal(t, map[string]string{"컴퓨터공학과": "코딩을 좋아하는 학생에게 추천"}, comments)
	assert.Empty(t, MajorComments(nil))
}
