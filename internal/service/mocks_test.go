package service

import (
	"context"
	"strings"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/index"
	"github.com/stretchr/testify/mock"
)

// MockCompleter is a mock implementation of Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, p string) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

// MockIndex is a mock implementation of index.Index
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Query(ctx context.Context, question string, k int) ([]domain.TextUnit, error) {
	args := m.Called(ctx, question, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TextUnit), args.Error(1)
}

func (m *MockIndex) Size() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockIndex) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBuilder is a mock implementation of index.Builder
type MockBuilder struct {
	mock.Mock
}

func (m *MockBuilder) Build(ctx context.Context, units []domain.TextUnit) (index.Index, error) {
	args := m.Called(ctx, units)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(index.Index), args.Error(1)
}

// promptFor matches prompts rendered from the given schema.
func promptFor(schema domain.Schema) interface{} {
	header := schema.HeaderRow()
	return mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, header)
	})
}

const (
	majorReply = `다음은 추천 결과입니다.

| 관련 직업명 | 직업 설명 | 추천 학과 |
|---|---|---|
| 소프트웨어 개발자 | 컴퓨터 프로그램을 설계하고 개발하는 직업입니다 | 컴퓨터공학과, 소프트웨어학과 |
| 웹 개발자 | 웹 서비스를 만드는 개발 직업입니다 | 컴퓨터공학과, 정보통신공학과 |
`
	curriculumReply = `| 학기정보 | 공통과목 | 기본선택과목 | 일반선택과목 | 진로선택과목 | 융합과목 |
|---|---|---|---|---|---|
| 2학년 1학기 | 없음 | 없음 | 확률과 통계 | 정보 | 없음 |
| 2학년 2학기 | 없음 | 없음 | 미적분 | 인공지능 기초 | 없음 |
`
	admissionReply = `| 대학명 | 학과명 | 전형명 | 모집인원 | 경쟁률 | 50% 컷 | 70% 컷 |
|---|---|---|---|---|---|---|
| 서울대 | 컴퓨터공학부 | 지역균형 | 10 | 5.2 | 1.3 | 1.5 |
`
)
