package domain_test

import (
	"testing"

	"intelligence-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCSV(t *testing.T) {
	t.Run("Detects comma delimiter and numeric stats", func(t *testing.T) {
		profile, err := domain.ProfileCSV("a,b,c\n1,2,3\n4,5,6")
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c"}, profile.Headers)
		assert.Equal(t, 2, profile.RowCount)

		statsA, ok := profile.NumericColumns["a"]
		require.True(t, ok)
		assert.Equal(t, 2.5, statsA.Mean)
		assert.Equal(t, 1.0, statsA.Min)
		assert.Equal(t, 4.0, statsA.Max)
		assert.Equal(t, 2.5, statsA.Median)
		assert.Equal(t, 1.5, statsA.StdDev)
	})

	t.Run("Detects semicolon delimiter", func(t *testing.T) {
		profile, err := domain.ProfileCSV("name;amount\nAcme;100\nGlobex;200")
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "amount"}, profile.Headers)
		assert.Contains(t, profile.NumericColumns, "amount")
		assert.Contains(t, profile.CategoricalColumns, "name")
	})

	t.Run("Detects tab delimiter", func(t *testing.T) {
		profile, err := domain.ProfileCSV("name\tamount\nAcme\t100\nGlobex\t200")
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "amount"}, profile.Headers)
		assert.Contains(t, profile.NumericColumns, "amount")
	})

	t.Run("Detects pipe delimiter", func(t *testing.T) {
		profile, err := domain.ProfileCSV("name|amount\nAcme|100")
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "amount"}, profile.Headers)
	})

	t.Run("Single column input still profiles", func(t *testing.T) {
		profile, err := domain.ProfileCSV("n\n1\n2")
		require.NoError(t, err)
		assert.Equal(t, []string{"n"}, profile.Headers)
		assert.Equal(t, 2, profile.RowCount)
	})

	t.Run("Single value column has zero stddev", func(t *testing.T) {
		profile, err := domain.ProfileCSV("x,y\nfoo,7")
		require.NoError(t, err)
		assert.Equal(t, 0.0, profile.NumericColumns["y"].StdDev)
	})

	t.Run("Mixed column is categorical", func(t *testing.T) {
		profile, err := domain.ProfileCSV("v\n1\ntwo\n3")
		require.NoError(t, err)
		assert.Empty(t, profile.NumericColumns)
		assert.Equal(t, 3, profile.CategoricalColumns["v"].UniqueCount)
	})

	t.Run("Top values keep first seen order on ties", func(t *testing.T) {
		profile, err := domain.ProfileCSV("s\nb\na\nb\na\nc")
		require.NoError(t, err)
		top := profile.CategoricalColumns["s"].TopValues
		require.Len(t, top, 3)
		assert.Equal(t, domain.ValueCount{Value: "b", Count: 2}, top[0])
		assert.Equal(t, domain.ValueCount{Value: "a", Count: 2}, top[1])
		assert.Equal(t, domain.ValueCount{Value: "c", Count: 1}, top[2])
	})

	t.Run("Duplicate headers are disambiguated", func(t *testing.T) {
		profile, err := domain.ProfileCSV("a,a\n1,2")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "a_2"}, profile.Headers)
	})

	t.Run("Suffixed header never collides with a raw one", func(t *testing.T) {
		profile, err := domain.ProfileCSV("a,a_2,a\n1,2,3")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "a_2", "a_3"}, profile.Headers)
	})

	t.Run("Blank numeric cells are skipped", func(t *testing.T) {
		profile, err := domain.ProfileCSV("n\n10\n\n20")
		require.NoError(t, err)
		assert.Equal(t, 15.0, profile.NumericColumns["n"].Mean)
	})

	t.Run("Sample rows cap at five", func(t *testing.T) {
		profile, err := domain.ProfileCSV("n\n1\n2\n3\n4\n5\n6\n7")
		require.NoError(t, err)
		assert.Len(t, profile.SampleRows, 5)
	})

	t.Run("Header only input fails", func(t *testing.T) {
		_, err := domain.ProfileCSV("a,b,c")
		var failure *domain.AnalysisFailure
		assert.ErrorAs(t, err, &failure)
	})

	t.Run("Empty input fails", func(t *testing.T) {
		_, err := domain.ProfileCSV("")
		var failure *domain.AnalysisFailure
		assert.ErrorAs(t, err, &failure)
	})
}
