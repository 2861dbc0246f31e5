package usecase

import (
	"fmt"
	"strings"

	"intelligence-layer/internal/domain"
)

// Header vocabularies driving the CSV fast path. Matching is exact on the
// lowercased header name.
var (
	amountHeaders   = map[string]bool{"amount": true, "cost": true, "spend": true, "price": true}
	supplierHeaders = map[string]bool{"supplier": true, "vendor": true, "company": true}
	categoryHeaders = map[string]bool{"category": true, "type": true, "group": true, "product": true}

	dateFragments = []string{"date", "time", "year", "month", "day"}
)

var generalRecommendations = []string{
	"Review the top spend categories for consolidation opportunities and volume discounts.",
	"Establish preferred supplier agreements for recurring purchases to lock in pricing.",
	"Set up periodic spend reviews to catch maverick spending early.",
}

// SynthesizeSummary builds a summary directly from a local CSV profile.
func SynthesizeSummary(profile *domain.LocalCSVProfile) *domain.SummaryResult {
	keyPoints := []string{
		fmt.Sprintf("The dataset contains %d records across %d columns.", profile.RowCount, len(profile.Headers)),
		fmt.Sprintf("%d numeric and %d categorical columns were detected.",
			len(profile.NumericColumns), len(profile.CategoricalColumns)),
	}
	for _, header := range profile.Headers {
		if stats, ok := profile.NumericColumns[header]; ok {
			keyPoints = append(keyPoints, fmt.Sprintf("%s: range %.2f to %.2f, mean %.2f.",
				header, stats.Min, stats.Max, stats.Mean))
			continue
		}
		if stats, ok := profile.CategoricalColumns[header]; ok && len(stats.TopValues) > 0 {
			keyPoints = append(keyPoints, fmt.Sprintf("%s: %d unique values, most common %q (%d).",
				header, stats.UniqueCount, stats.TopValues[0].Value, stats.TopValues[0].Count))
		}
	}

	return &domain.SummaryResult{
		Title: fmt.Sprintf("CSV Data Analysis (%d rows)", profile.RowCount),
		Summary: fmt.Sprintf("The file is a structured dataset with %d data rows and the columns %s.",
			profile.RowCount, strings.Join(profile.Headers, ", ")),
		KeyPoints:         keyPoints,
		RecommendedCharts: []string{},
	}
}

// SynthesizeRecommendations builds recommendations from header heuristics: a
// spend/supplier pairing unlocks supplier-level advice, a category column
// unlocks breakdown advice, and a fixed general set is always appended.
func SynthesizeRecommendations(profile *domain.LocalCSVProfile) *domain.RecommendationResult {
	var hasAmount, hasSupplier, hasCategory bool
	var amountCol, supplierCol, categoryCol string
	for _, header := range profile.Headers {
		switch h := strings.ToLower(strings.TrimSpace(header)); {
		case amountHeaders[h] && !hasAmount:
			hasAmount, amountCol = true, header
		case supplierHeaders[h] && !hasSupplier:
			hasSupplier, supplierCol = true, header
		case categoryHeaders[h] && !hasCategory:
			hasCategory, categoryCol = true, header
		}
	}

	var recs []string
	if hasAmount && hasSupplier {
		recs = append(recs,
			fmt.Sprintf("Rank suppliers in %s by total %s to identify your largest spend concentrations.",
				supplierCol, strings.ToLower(amountCol)),
			fmt.Sprintf("Negotiate framework agreements with the top suppliers in %s covering the bulk of %s.",
				supplierCol, strings.ToLower(amountCol)))
	}
	if hasCategory {
		recs = append(recs,
			fmt.Sprintf("Break spend down by %s to find categories with fragmented purchasing.", categoryCol))
	}
	recs = append(recs, generalRecommendations...)

	return &domain.RecommendationResult{Recommendations: recs}
}

// SynthesizeCharts proposes charts from the profiled column types: bar and pie
// charts for the leading categorical column against the leading numeric one,
// and a line chart when a date-like column exists.
func SynthesizeCharts(profile *domain.LocalCSVProfile) []domain.ChartSpec {
	numericCol := firstNumericColumn(profile)
	dateCol := firstDateLikeHeader(profile.Headers)
	catCol := firstCategoricalColumn(profile, dateCol)

	var charts []domain.ChartSpec
	if catCol != "" && numericCol != "" {
		charts = append(charts, domain.ChartSpec{
			ChartType:  "bar",
			Purpose:    fmt.Sprintf("Compare total %s across %s.", numericCol, catCol),
			XAxis:      catCol,
			YAxis:      numericCol,
			RenderData: categoricalRenderData(profile, catCol),
		})
	}
	if catCol != "" {
		charts = append(charts, domain.ChartSpec{
			ChartType: "pie",
			Purpose:   fmt.Sprintf("Show the distribution of records by %s.", catCol),
			XAxis:     catCol,
			Notes:     "Share of rows per value.",
		})
	}
	if dateCol != "" && numericCol != "" {
		charts = append(charts, domain.ChartSpec{
			ChartType: "line",
			Purpose:   fmt.Sprintf("Track %s over %s.", numericCol, dateCol),
			XAxis:     dateCol,
			YAxis:     numericCol,
		})
	}
	if len(charts) == 0 {
		charts = append(charts, domain.ChartSpec{
			ChartType: domain.ChartTypeTextSummary,
			Purpose: fmt.Sprintf("The dataset (%d rows, columns %s) has no column pairing suited to a chart.",
				profile.RowCount, strings.Join(profile.Headers, ", ")),
		})
	}
	return charts
}

func firstNumericColumn(profile *domain.LocalCSVProfile) string {
	for _, header := range profile.Headers {
		if _, ok := profile.NumericColumns[header]; ok {
			return header
		}
	}
	return ""
}

// firstCategoricalColumn prefers a non-date categorical column so the bar and
// pie charts group by an entity rather than a timestamp.
func firstCategoricalColumn(profile *domain.LocalCSVProfile, dateCol string) string {
	fallback := ""
	for _, header := range profile.Headers {
		if _, ok := profile.CategoricalColumns[header]; !ok {
			continue
		}
		if header != dateCol {
			return header
		}
		if fallback == "" {
			fallback = header
		}
	}
	return fallback
}

func firstDateLikeHeader(headers []string) string {
	for _, header := range headers {
		h := strings.ToLower(header)
		for _, fragment := range dateFragments {
			if strings.Contains(h, fragment) {
				return header
			}
		}
	}
	return ""
}

func categoricalRenderData(profile *domain.LocalCSVProfile, header string) map[string]any {
	stats, ok := profile.CategoricalColumns[header]
	if !ok || len(stats.TopValues) == 0 {
		return nil
	}
	labels := make([]string, 0, len(stats.TopValues))
	values := make([]int, 0, len(stats.TopValues))
	for _, vc := range stats.TopValues {
		labels = append(labels, vc.Value)
		values = append(values, vc.Count)
	}
	return map[string]any{"labels": labels, "values": values}
}
