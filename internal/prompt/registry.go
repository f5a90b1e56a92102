// Package prompt holds the answer contracts sent to the chat model, one per
// query intent.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
)

// Schemas declared once per intent. Contracts render their table header from
// these and callers parse answers against the same value.
var (
	MajorSchema      = domain.NewSchema("관련 직업명", "직업 설명", "추천 학과")
	CurriculumSchema = domain.NewSchema("학기정보", "공통과목", "기본선택과목", "일반선택과목", "진로선택과목", "융합과목")
	AdmissionSchema  = domain.NewSchema("대학명", "학과명", "전형명", "모집인원", "경쟁률", "50% 컷", "70% 컷")
)

// MajorsColumn holds the comma-separated recommended majors.
const MajorsColumn = "추천 학과"

const preamble = "당신은 고등학생 진로 컨설턴트입니다.\n"

const footer = `
{{.Header}}
{{.Separator}}

문맥:
{{.Context}}

질문:
{{.Question}}

답변:
`

var instructions = map[domain.Intent]string{
	domain.IntentMajorRecommendation: `문맥을 참고해서 학생이 입력한 직업에 대해
관련 직업명, 직업 설명, 추천 학과(2개 이상, 쉼표로 구분)를 테이블 형태로 응답해줘.

직업 설명은 너가 찾은 직업에 대한 정보를 20자 이상 입력해주세요.
`,
	domain.IntentCurriculumPlan: `학생이 입력한 학과와 비슷한 학과에 대해서 이수 과목을 고등학교 1학년 1학기부터 3학년 2학기까지 순서대로 정리해서 알려줘.

답변은 문맥 내용 기반으로 답해주고 없으면 NULL 값으로 남겨놔줘.
답변형식은 테이블 형태로 대답해줘.
`,
	domain.IntentAdmissionCutoffs: `학생이 질문에서 선택한 학과와 비슷한 학과(예: 컴퓨터공학과 -> 컴퓨터 키워드가 들어간 학과 위주)를 문맥에서 찾아서
학교별 수시 입결 정보를 표로 정리해서 보여주세요.

아래 포맷에 맞게 답변하세요:
`,
}

var schemas = map[domain.Intent]domain.Schema{
	domain.IntentMajorRecommendation: MajorSchema,
	domain.IntentCurriculumPlan:      CurriculumSchema,
	domain.IntentAdmissionCutoffs:    AdmissionSchema,
}

// Contract is an immutable prompt template bound to an answer schema.
type Contract struct {
	intent domain.Intent
	schema domain.Schema
	tmpl   *template.Template
}

type renderData struct {
	Header    string
	Separator string
	Context   string
	Question  string
}

// Intent returns the intent the contract answers.
func (c *Contract) Intent() domain.Intent {
	return c.intent
}

// Schema returns the columns the model is told to produce.
func (c *Contract) Schema() domain.Schema {
	return c.schema
}

// Render fills the context and question placeholders.
func (c *Contract) Render(context, question string) (string, error) {
	var buf bytes.Buffer
	err := c.tmpl.Execute(&buf, renderData{
		Header:    c.schema.HeaderRow(),
		Separator: c.schema.SeparatorRow(),
		Context:   context,
		Question:  question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", c.intent, err)
	}
	return buf.String(), nil
}

// Registry looks up contracts by intent.
type Registry struct {
	contracts map[domain.Intent]*Contract
}

// NewRegistry builds the three contracts.
func NewRegistry() *Registry {
	r := &Registry{contracts: make(map[domain.Intent]*Contract, len(instructions))}
	for _, intent := range domain.Intents() {
		text := preamble + instructions[intent] + footer
		r.contracts[intent] = &Contract{
			intent: intent,
			schema: schemas[intent],
			tmpl:   template.Must(template.New(string(intent)).Option("missingkey=error").Parse(text)),
		}
	}
	return r
}

// Get returns the contract for an intent.
func (r *Registry) Get(intent domain.Intent) (*Contract, error) {
	c, ok := r.contracts[intent]
	if !ok {
		return nil, domain.Wrap(domain.ErrUnknownIntent, fmt.Errorf("%q", intent))
	}
	return c, nil
}
