package service

import (
	"testing"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMajorQuestion(t *testing.T) {
	tests := []struct {
		job  string
		want string
	}{
		{"소프트웨어 개발자", "소프트웨어 개발자를 하고 싶습니다"},
		{"간호사", "간호사를 하고 싶습니다"},
		{"사회복지사", "사회복지사를 하고 싶습니다"},
		{"경찰관", "경찰관을 하고 싶습니다"},
		{"  변호인 ", "변호인을 하고 싶습니다"},
		{"PD", "PD를 하고 싶습니다"},
	}
	for _, tt := range tests {
		t.Run(tt.job, func(t *testing.T) {
			assert.Equal(t, tt.want, MajorQuestion(tt.job))
		})
	}
}

func TestCurriculumQuestion(t *testing.T) {
	got := CurriculumQuestion(domain.Grade(2), "컴퓨터공학과")
	assert.Equal(t, "나는 현재 고등학교 2학년에 재학 중입니다.\n컴퓨터공학과에 입학하고 싶습니다.\n고등학교 2학년 1학기부터 3학년 2학기까지 이수해야 할 과목을 알려주세요.", got)
}

func TestAdmissionQuestion(t *testing.T) {
	universities := []string{"서울대", "연세대", "고려대"}

	assert.Equal(t, "컴퓨터공학과와 유사한 학과에 대해서 서울대, 연세대, 고려대 수시 입결정보를 알려줘",
		AdmissionQuestion("컴퓨터공학과", universities))
	assert.Equal(t, "컴퓨터공학부와 유사한 학과에 대해서 서울대, 연세대, 고려대 수시 입결정보를 알려줘",
		AdmissionQuestion("컴퓨터공학부", universities))
	assert.Equal(t, "간호학전공과 유사한 학과에 대해서 서울대 수시 입결정보를 알려줘",
		AdmissionQuestion("간호학전공", universities[:1]))
}
