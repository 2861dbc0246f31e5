package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"intelligence-layer/internal/domain"
)

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	codeFencePattern  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

	// wrapper keys models commonly nest list payloads under
	listWrapperKeys = []string{"recommendations", "charts", "recommended_charts", "key_points", "items"}
)

const degradedPrefixLimit = 200

// Normalizer turns raw model responses into typed results. It never fails:
// every parse attempt that comes up empty falls through to a degraded but
// well-formed value built from the raw text.
type Normalizer struct{}

func NewNormalizer() Normalizer {
	return Normalizer{}
}

// extract runs the parse ladder and returns the first decoded JSON value.
func (Normalizer) extract(resp domain.ModelResponse) any {
	if resp.Parsed != nil {
		return resp.Parsed
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil
	}

	var direct any
	if err := json.Unmarshal([]byte(text), &direct); err == nil {
		return direct
	}
	if m := codeFencePattern.FindStringSubmatch(text); m != nil {
		var fenced any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &fenced); err == nil {
			return fenced
		}
	}
	// Substring attempts run outermost-first: an object whose fields contain
	// arrays must be decoded as the object, not its inner array.
	for _, m := range substringCandidates(text) {
		var v any
		if err := json.Unmarshal([]byte(m), &v); err == nil {
			return v
		}
	}
	return nil
}

// substringCandidates returns the greedy array and object substrings ordered
// by where each starts in the text, so the enclosing structure wins.
func substringCandidates(text string) []string {
	arr := jsonArrayPattern.FindStringIndex(text)
	obj := jsonObjectPattern.FindStringIndex(text)

	var candidates []string
	switch {
	case arr != nil && obj != nil && obj[0] < arr[0]:
		candidates = append(candidates, text[obj[0]:obj[1]], text[arr[0]:arr[1]])
	case arr != nil && obj != nil:
		candidates = append(candidates, text[arr[0]:arr[1]], text[obj[0]:obj[1]])
	case arr != nil:
		candidates = append(candidates, text[arr[0]:arr[1]])
	case obj != nil:
		candidates = append(candidates, text[obj[0]:obj[1]])
	}
	return candidates
}

// Summary normalizes a model response into a summary result.
func (n Normalizer) Summary(resp domain.ModelResponse, maxKeyPoints int) *domain.SummaryResult {
	if obj, ok := n.extract(resp).(map[string]any); ok {
		result := &domain.SummaryResult{
			Title:             getString(obj, "title", "doc_title"),
			Summary:           getString(obj, "summary", "doc_summary"),
			KeyPoints:         stringList(lookupAny(obj, "key_points", "keypoints")),
			RecommendedCharts: stringList(lookupAny(obj, "recommended_charts", "charts_recommended", "charts")),
		}
		if result.Summary == "" {
			result.Summary = truncateText(resp.Text, degradedPrefixLimit)
		}
		result.KeyPoints = capList(result.KeyPoints, maxKeyPoints)
		return result
	}

	return &domain.SummaryResult{
		Summary:   strings.TrimSpace(resp.Text),
		KeyPoints: capList(lineItems(resp.Text), maxKeyPoints),
	}
}

// List normalizes a model response into a flat list of strings, unwrapping
// the usual wrapper objects and falling back to line splitting.
func (n Normalizer) List(resp domain.ModelResponse, max int) []string {
	switch v := n.extract(resp).(type) {
	case []any:
		return capList(stringList(v), max)
	case map[string]any:
		for _, key := range listWrapperKeys {
			if inner, ok := v[key].([]any); ok {
				return capList(stringList(inner), max)
			}
		}
	}
	return capList(lineItems(resp.Text), max)
}

// Charts normalizes a model response into chart specs. The returned slice is
// never empty: when nothing chart-shaped can be recovered a single
// text_summary entry carries a prefix of the raw text.
func (n Normalizer) Charts(resp domain.ModelResponse, max int) []domain.ChartSpec {
	var entries []any
	switch v := n.extract(resp).(type) {
	case []any:
		entries = v
	case map[string]any:
		for _, key := range []string{"charts", "recommended_charts", "visualizations"} {
			if inner, ok := v[key].([]any); ok {
				entries = inner
				break
			}
		}
		if entries == nil {
			// a single bare chart object
			if getString(v, "chart_type", "chart_name") != "" {
				entries = []any{v}
			}
		}
	}

	charts := make([]domain.ChartSpec, 0, len(entries))
	for _, entry := range entries {
		if len(charts) == max {
			break
		}
		switch e := entry.(type) {
		case map[string]any:
			charts = append(charts, chartFromMap(e))
		case string:
			charts = append(charts, domain.ChartSpec{
				ChartType: domain.ChartTypeTextSummary,
				Purpose:   truncateText(e, degradedPrefixLimit),
			})
		}
	}
	if len(charts) == 0 {
		charts = append(charts, domain.ChartSpec{
			ChartType: domain.ChartTypeTextSummary,
			Purpose:   truncateText(resp.Text, degradedPrefixLimit),
		})
	}
	return charts
}

func chartFromMap(m map[string]any) domain.ChartSpec {
	spec := domain.ChartSpec{
		ChartType: getString(m, "chart_type", "chart_name", "type"),
		Purpose:   getString(m, "purpose", "description"),
		XAxis:     getString(m, "x_axis", "x"),
		YAxis:     getString(m, "y_axis", "y"),
		Notes:     getString(m, "notes"),
	}
	if spec.ChartType == "" {
		spec.ChartType = domain.ChartTypeTextSummary
	}
	if data, ok := m["data"].(map[string]any); ok {
		spec.RenderData = data
	}
	return spec
}

func lookupAny(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return nil
}

func getString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		case map[string]any:
			if text := getString(s, "recommendation", "text", "description", "purpose"); text != "" {
				out = append(out, text)
			}
		case float64, bool:
			out = append(out, fmt.Sprintf("%v", s))
		}
	}
	return out
}

// lineItems splits free text into items, stripping bullets and quoting.
func lineItems(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(line, " \t-*•\"'")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func capList(items []string, max int) []string {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}

func truncateText(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
