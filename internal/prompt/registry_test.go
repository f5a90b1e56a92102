package prompt

import (
	"strings"
	"testing"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/pipetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	for _, intent := range domain.Intents() {
		t.Run(string(intent), func(t *testing.T) {
			c, err := r.Get(intent)
			require.NoError(t, err)
			assert.Equal(t, intent, c.Intent())
			assert.NotZero(t, c.Schema().Len())
		})
	}
}

func TestRegistry_Get_UnknownIntent(t *testing.T) {
	r := NewRegistry()

	c, err := r.Get(domain.Intent("horoscope"))

	assert.Nil(t, c)
	assert.ErrorIs(t, err, domain.ErrUnknownIntent)
}

func TestContract_Render(t *testing.T) {
	c, err := NewRegistry().Get(domain.IntentMajorRecommendation)
	require.NoError(t, err)

	out, err := c.Render("소프트웨어 개발자은(는) IT 분야에 속하는 직업이며", "소프트웨어 개발자를 하고 싶습니다")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "당신은 고등학생 진로 컨설턴트입니다.\n"))
	assert.Contains(t, out, "| 관련 직업명 | 직업 설명 | 추천 학과 |")
	assert.Contains(t, out, "문맥:\n소프트웨어 개발자은(는) IT 분야에 속하는 직업이며\n\n질문:\n소프트웨어 개발자를 하고 싶습니다\n\n답변:\n")
	assert.NotContains(t, out, "{{")
}

func TestContract_HeaderMatchesParserColumns(t *testing.T) {
	r := NewRegistry()

	for _, intent := range domain.Intents() {
		t.Run(string(intent), func(t *testing.T) {
			c, err := r.Get(intent)
			require.NoError(t, err)

			out, err := c.Render("ctx", "q")
			require.NoError(t, err)

			// A model echoing the prompt's own header plus one row must parse
			// into exactly the schema's columns.
			var table []string
			for _, line := range strings.Split(out, "\n") {
				if strings.HasPrefix(line, "|") {
					table = append(table, line)
				}
			}
			require.Len(t, table, 2)
			row := "|" + strings.Repeat(" v |", c.Schema().Len())
			result := pipetable.ParseSchema(strings.Join(append(table, row), "\n"), c.Schema())

			require.Len(t, result.Records, 1)
			assert.Equal(t, c.Schema().Columns, result.Records[0].Columns())
			assert.Equal(t, c.Schema().HeaderRow(), table[0])
		})
	}
}

func TestContract_RenderKeepsTemplateSyntaxInContext(t *testing.T) {
	c, err := NewRegistry().Get(domain.IntentCurriculumPlan)
	require.NoError(t, err)

	out, err := c.Render("{{.Question}}", "질문")
	require.NoError(t, err)

	assert.Contains(t, out, "문맥:\n{{.Question}}\n")
}
