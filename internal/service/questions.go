package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
)

// hasFinalConsonant reports whether the last syllable of word ends in a
// batchim. Non-Hangul endings count as open syllables.
func hasFinalConsonant(word string) bool {
	r, _ := utf8.DecodeLastRuneInString(strings.TrimSpace(word))
	if r < 0xAC00 || r > 0xD7A3 {
		return false
	}
	return (r-0xAC00)%28 != 0
}

func objectParticle(word string) string {
	if hasFinalConsonant(word) {
		return "을"
	}
	return "를"
}

func withParticle(word string) string {
	if hasFinalConsonant(word) {
		return "과"
	}
	return "와"
}

// MajorQuestion asks for majors suited to a desired job.
func MajorQuestion(job string) string {
	job = strings.TrimSpace(job)
	return job + objectParticle(job) + " 하고 싶습니다"
}

// CurriculumQuestion asks for the course plan from the student's grade onward.
func CurriculumQuestion(grade domain.Grade, major string) string {
	return fmt.Sprintf(
		"나는 현재 고등학교 %d학년에 재학 중입니다.\n%s에 입학하고 싶습니다.\n고등학교 %d학년 1학기부터 3학년 2학기까지 이수해야 할 과목을 알려주세요.",
		int(grade), major, int(grade),
	)
}

// AdmissionQuestion asks for early-admission results at the given universities.
func AdmissionQuestion(major string, universities []string) string {
	return fmt.Sprintf("%s%s 유사한 학과에 대해서 %s 수시 입결정보를 알려줘",
		major, withParticle(major), strings.Join(universities, ", "))
}
