package airquality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		index float64
		want  string
	}{
		{0, "good"},
		{2, "good"},
		{3, "good"},
		{3.0001, "moderate"},
		{6, "moderate"},
		{6.0001, "unsatisfactory"},
		{8, "unsatisfactory"},
		{8.0001, "bad"},
		{10, "bad"},
		{10.0001, "very bad"},
		{11, "very bad"},
		{11.0001, "no data available"},
		{50, "no data available"},
		{math.NaN(), "no data available"},
	}

	for _, tt := range tests {
		got := Classify(tt.index).Label(LanguageEnglish)
		assert.Equal(t, tt.want, got, "Classify(%v)", tt.index)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i <= 130; i++ {
		v := float64(i) / 10
		first := Classify(v)
		assert.Equal(t, first, Classify(v))
		assert.GreaterOrEqual(t, int(first), int(CategoryGood))
		assert.LessOrEqual(t, int(first), int(CategoryNoData))
	}
}

func TestCategoryLabelDutch(t *testing.T) {
	assert.Equal(t, "goed", Classify(1).Label(LanguageDutch))
	assert.Equal(t, "zeer slecht", Classify(11).Label(LanguageDutch))
	assert.Equal(t, "Geen data beschikbaar", Classify(12).Label(LanguageDutch))
	assert.Equal(t, "bad", Classify(9).Label(Language("fr")))
}

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage("nl")
	require.NoError(t, err)
	assert.Equal(t, LanguageDutch, lang)

	_, err = ParseLanguage("de")
	assert.Error(t, err)
}
