package airquality

import "fmt"

// Category is the rating band derived from the LKI.
type Category int

const (
	CategoryGood Category = iota
	CategoryModerate
	CategoryUnsatisfactory
	CategoryBad
	CategoryVeryBad
	CategoryNoData
)

// Language selects the label set used for categories.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageDutch   Language = "nl"
)

var categoryLabels = map[Language][6]string{
	LanguageEnglish: {"good", "moderate", "unsatisfactory", "bad", "very bad", "no data available"},
	LanguageDutch:   {"goed", "matig", "onvoldoende", "slecht", "zeer slecht", "Geen data beschikbaar"},
}

// ParseLanguage validates a language code.
func ParseLanguage(s string) (Language, error) {
	lang := Language(s)
	if _, ok := categoryLabels[lang]; !ok {
		return "", fmt.Errorf("unsupported language %q (allowed: en, nl)", s)
	}
	return lang, nil
}

// Classify maps an LKI value to its category. Bands include their upper bound.
// Values above 11 and NaN fall through to CategoryNoData.
func Classify(index float64) Category {
	switch {
	case index <= 3:
		return CategoryGood
	case index <= 6:
		return CategoryModerate
	case index <= 8:
		return CategoryUnsatisfactory
	case index <= 10:
		return CategoryBad
	case index <= 11:
		return CategoryVeryBad
	default:
		return CategoryNoData
	}
}

// Label returns the category text in the given language, English when unknown.
func (c Category) Label(lang Language) string {
	labels, ok := categoryLabels[lang]
	if !ok {
		labels = categoryLabels[LanguageEnglish]
	}
	if c < CategoryGood || c > CategoryNoData {
		c = CategoryNoData
	}
	return labels[c]
}

func (c Category) String() string {
	return c.Label(LanguageEnglish)
}
