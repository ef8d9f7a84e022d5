// Package analysis turns free-form model output into structured meal
// data. The upstream model is prompted to answer in a fixed layout but
// regularly deviates, so every extractor here is total: a parse failure
// means "not found", never an error.
package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Calorie figures outside this range are treated as hallucinated or
// truncated output and rejected.
const (
	MinCalories = 10
	MaxCalories = 10000
)

// Primary patterns target the total-dish phrasing; they are tried in
// order and the first in-range capture wins.
var caloriePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)Общая калорийность:\s*(\d+)\s*ккал`),
	regexp.MustCompile(`(?im)Общее количество калорий:\s*(\d+)\s*ккал`),
	regexp.MustCompile(`(?im)Калорийность блюда:\s*(\d+)\s*ккал`),
	regexp.MustCompile(`(?im)Калорийность:\s*(\d+)\s*ккал\s*$`),
	regexp.MustCompile(`(?im)(\d+)\s*ккал\s*$`),
	regexp.MustCompile(`(?i)калорийность:\s*(\d+)`),
	regexp.MustCompile(`(?i)калорий:\s*(\d+)`),
}

// Fallback patterns accept any calorie mention, still range-guarded.
var calorieFallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*ккал`),
	regexp.MustCompile(`(?i)калорийность:\s*(\d+)`),
	regexp.MustCompile(`(?i)калорий:\s*(\d+)`),
}

var dishNamePattern = regexp.MustCompile(`(?i)Название:\s*([^\n]+)`)

// The model sometimes appends reasoning after the fixed block; the
// first matching pattern removes everything from the heading or
// transition phrase to the end of the text.
var explanationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)###\s*Пояснение расчетов:.*$`),
	regexp.MustCompile(`(?is)##\s*Пояснение расчетов:.*$`),
	regexp.MustCompile(`(?is)#\s*Пояснение расчетов:.*$`),
	regexp.MustCompile(`(?is)Пояснение расчетов:.*$`),
	regexp.MustCompile(`(?is)Таким образом.*$`),
	regexp.MustCompile(`(?is)Итак.*$`),
	regexp.MustCompile(`(?is)В итоге.*$`),
	regexp.MustCompile(`(?is)Итого.*$`),
}

// ExtractCalories returns the total-dish calorie count found in the
// analysis text, or false when no pattern yields a value inside
// [MinCalories, MaxCalories].
func ExtractCalories(text string) (int, bool) {
	if calories, ok := firstInRange(caloriePatterns, text); ok {
		return calories, true
	}
	return firstInRange(calorieFallbackPatterns, text)
}

func firstInRange(patterns []*regexp.Regexp, text string) (int, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		calories, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if calories >= MinCalories && calories <= MaxCalories {
			return calories, true
		}
	}
	return 0, false
}

// ExtractDishName returns the dish name from the labeled line of the
// analysis, or false when the line is absent.
func ExtractDishName(text string) (string, bool) {
	m := dishNamePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}

// StripExplanations removes a trailing reasoning section from the
// analysis text. The first matching pattern wins; the result is free of
// trailing blank lines. Applying it twice yields the same text.
func StripExplanations(text string) string {
	for _, re := range explanationPatterns {
		if re.MatchString(text) {
			text = re.ReplaceAllString(text, "")
			break
		}
	}
	return strings.TrimRight(text, "\n")
}

// IsValid reports whether the analysis text carries a usable calorie
// figure.
func IsValid(text string) bool {
	_, ok := ExtractCalories(text)
	return ok
}
