package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"intelligence-layer/internal/domain"
)

func live(text string) domain.ModelResponse {
	return domain.LiveResponse(&domain.ModelOutput{Text: text})
}

func TestNormalizer_SummaryDirectJSON(t *testing.T) {
	n := NewNormalizer()

	resp := live(`{"title":"Q1 Spend","summary":"Spend rose.","key_points":["a","b"],"recommended_charts":["bar"]}`)
	result := n.Summary(resp, 10)

	assert.Equal(t, "Q1 Spend", result.Title)
	assert.Equal(t, "Spend rose.", result.Summary)
	assert.Equal(t, []string{"a", "b"}, result.KeyPoints)
	assert.Equal(t, []string{"bar"}, result.RecommendedCharts)
}

func TestNormalizer_SummaryFencedJSON(t *testing.T) {
	n := NewNormalizer()

	resp := live("Here you go:\n```json\n{\"summary\":\"Fenced.\",\"key_points\":[\"x\"]}\n```\nDone.")
	result := n.Summary(resp, 10)

	assert.Equal(t, "Fenced.", result.Summary)
	assert.Equal(t, []string{"x"}, result.KeyPoints)
}

func TestNormalizer_SummaryObjectEmbeddedInProse(t *testing.T) {
	n := NewNormalizer()

	// the enclosing object must win over the array nested inside it
	resp := live(`Sure thing: {"summary":"Embedded.","key_points":["a","b"]} hope that helps`)
	result := n.Summary(resp, 10)

	assert.Equal(t, "Embedded.", result.Summary)
	assert.Equal(t, []string{"a", "b"}, result.KeyPoints)
}

func TestNormalizer_ListFencedArray(t *testing.T) {
	n := NewNormalizer()

	resp := live("```json\n[\"first\",\"second\"]\n```")
	assert.Equal(t, []string{"first", "second"}, n.List(resp, 10))
}

func TestNormalizer_SummaryAlternateKeys(t *testing.T) {
	n := NewNormalizer()

	resp := live(`{"doc_title":"Alt","summary":"s","charts_recommended":["pie"]}`)
	result := n.Summary(resp, 10)

	assert.Equal(t, "Alt", result.Title)
	assert.Equal(t, []string{"pie"}, result.RecommendedCharts)
}

func TestNormalizer_SummaryFreeTextFallback(t *testing.T) {
	n := NewNormalizer()

	result := n.Summary(live("Just prose, no JSON at all."), 10)

	assert.Equal(t, "Just prose, no JSON at all.", result.Summary)
	assert.NotEmpty(t, result.KeyPoints)
}

func TestNormalizer_ListPrefersAttachedParsed(t *testing.T) {
	n := NewNormalizer()

	resp := domain.CachedResponse("ignored", []any{"first", "second"})
	assert.Equal(t, []string{"first", "second"}, n.List(resp, 10))
}

func TestNormalizer_ListUnwrapsWrapperObject(t *testing.T) {
	n := NewNormalizer()

	resp := live(`{"recommendations":["cut costs","consolidate suppliers"]}`)
	assert.Equal(t, []string{"cut costs", "consolidate suppliers"}, n.List(resp, 10))
}

func TestNormalizer_ListBulletFallback(t *testing.T) {
	n := NewNormalizer()

	resp := live("- cut costs\n* consolidate suppliers\n• renegotiate\n\n")
	assert.Equal(t, []string{"cut costs", "consolidate suppliers", "renegotiate"}, n.List(resp, 10))
}

func TestNormalizer_ListRespectsMax(t *testing.T) {
	n := NewNormalizer()

	resp := live(`["a","b","c","d"]`)
	assert.Equal(t, []string{"a", "b"}, n.List(resp, 2))
}

func TestNormalizer_ChartsKeyRemapping(t *testing.T) {
	n := NewNormalizer()

	resp := live(`[{"chart_name":"bar","description":"spend by vendor","x":"Vendor","y":"Amount"}]`)
	charts := n.Charts(resp, 5)

	assert.Len(t, charts, 1)
	assert.Equal(t, "bar", charts[0].ChartType)
	assert.Equal(t, "spend by vendor", charts[0].Purpose)
	assert.Equal(t, "Vendor", charts[0].XAxis)
	assert.Equal(t, "Amount", charts[0].YAxis)
}

func TestNormalizer_ChartsWrapperAndData(t *testing.T) {
	n := NewNormalizer()

	resp := live(`{"charts":[{"chart_type":"pie","purpose":"mix","data":{"labels":["a"]}}]}`)
	charts := n.Charts(resp, 5)

	assert.Len(t, charts, 1)
	assert.Equal(t, "pie", charts[0].ChartType)
	assert.NotNil(t, charts[0].RenderData)
}

func TestNormalizer_ChartsNeverEmpty(t *testing.T) {
	n := NewNormalizer()

	long := strings.Repeat("no charts here ", 40)
	charts := n.Charts(live(long), 5)

	assert.Len(t, charts, 1)
	assert.Equal(t, domain.ChartTypeTextSummary, charts[0].ChartType)
	assert.LessOrEqual(t, len([]rune(charts[0].Purpose)), degradedPrefixLimit)
	assert.NotEmpty(t, charts[0].Purpose)
}

func TestNormalizer_NeverPanicsOnGarbage(t *testing.T) {
	n := NewNormalizer()

	for _, text := range []string{"", "{broken", "[1,2", "null", `{"charts": "not a list"}`} {
		assert.NotPanics(t, func() {
			n.Summary(live(text), 5)
			n.List(live(text), 5)
			assert.NotEmpty(t, n.Charts(live(text), 5))
		})
	}
}
