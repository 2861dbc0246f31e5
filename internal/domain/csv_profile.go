package domain

import (
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// delimiters tried in order when profiling CSV text.
var delimiters = []rune{',', ';', '\t', '|'}

// NumericStats summarizes a fully numeric column using population statistics.
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// ValueCount is one categorical value with its occurrence count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalStats summarizes a non-numeric column.
type CategoricalStats struct {
	UniqueCount int          `json:"unique_values"`
	TopValues   []ValueCount `json:"most_common"`
}

// LocalCSVProfile is the result of profiling CSV content locally, without any
// model call. It feeds both the fast-path synthesizers and, for large inputs,
// the structured context handed to model prompts.
type LocalCSVProfile struct {
	Headers            []string                    `json:"headers"`
	RowCount           int                         `json:"row_count"`
	NumericColumns     map[string]NumericStats     `json:"numeric_columns"`
	CategoricalColumns map[string]CategoricalStats `json:"categorical_columns"`
	SampleRows         [][]string                  `json:"sample_rows"`
}

// ProfileCSV parses CSV text and computes per-column statistics. The delimiter
// is detected by trying comma, semicolon, tab, and pipe in order; the first one
// that yields a uniform field count across all rows with at least one data row
// wins. Malformed input returns an AnalysisFailure, never a partial profile.
func ProfileCSV(text string) (*LocalCSVProfile, error) {
	rows, err := parseWithDetectedDelimiter(text)
	if err != nil {
		return nil, err
	}

	headers := disambiguateHeaders(rows[0])
	dataRows := rows[1:]

	profile := &LocalCSVProfile{
		Headers:            headers,
		RowCount:           len(dataRows),
		NumericColumns:     make(map[string]NumericStats),
		CategoricalColumns: make(map[string]CategoricalStats),
	}
	for i := 0; i < len(dataRows) && i < 5; i++ {
		profile.SampleRows = append(profile.SampleRows, dataRows[i])
	}

	for col, header := range headers {
		if stats, ok := numericColumnStats(dataRows, col); ok {
			profile.NumericColumns[header] = stats
		} else {
			profile.CategoricalColumns[header] = categoricalColumnStats(dataRows, col)
		}
	}
	return profile, nil
}

func parseWithDetectedDelimiter(text string) ([][]string, error) {
	var best [][]string
	var lastErr error
	for _, delim := range delimiters {
		reader := csv.NewReader(strings.NewReader(text))
		reader.Comma = delim
		// FieldsPerRecord 0 enforces a uniform field count against the header row.
		reader.FieldsPerRecord = 0
		rows, err := reader.ReadAll()
		if err != nil {
			lastErr = err
			continue
		}
		if len(rows) < 2 {
			lastErr = fmt.Errorf("no data rows for delimiter %q", delim)
			continue
		}
		// Every delimiter "succeeds" on a one-column reading, so the one
		// that actually splits the input wins. Ties keep the earlier
		// delimiter in the detection order.
		if best == nil || len(rows[0]) > len(best[0]) {
			best = rows
		}
	}
	if best == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("empty input")
		}
		return nil, &AnalysisFailure{Detail: fmt.Sprintf("could not parse with common delimiters: %v", lastErr)}
	}
	return best, nil
}

// disambiguateHeaders appends a numeric suffix to repeated header names so
// column keys stay unique. The suffix is re-checked against names already
// taken, so a raw header like "a_2" cannot collide with a synthesized one.
func disambiguateHeaders(raw []string) []string {
	used := make(map[string]bool, len(raw))
	headers := make([]string, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		candidate := name
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		used[candidate] = true
		headers[i] = candidate
	}
	return headers
}

// numericColumnStats classifies a column as numeric only when every non-blank
// value parses as a float and at least one such value exists.
func numericColumnStats(rows [][]string, col int) (NumericStats, bool) {
	var values []float64
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return NumericStats{}, false
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return NumericStats{}, false
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	// Population standard deviation; zero for a single-value column.
	var stddev float64
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - mean
			sq += d * d
		}
		stddev = math.Sqrt(sq / float64(len(values)))
	}

	return NumericStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		Median: median,
		StdDev: stddev,
	}, true
}

// categoricalColumnStats counts distinct values and the top-5 most frequent,
// breaking frequency ties by first-seen order.
func categoricalColumnStats(rows [][]string, col int) CategoricalStats {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := row[col]
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	top := make([]ValueCount, 0, len(order))
	for _, v := range order {
		top = append(top, ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > 5 {
		top = top[:5]
	}

	return CategoricalStats{UniqueCount: len(counts), TopValues: top}
}
