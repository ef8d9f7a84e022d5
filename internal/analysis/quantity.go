package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit is the canonical unit a parsed quantity is normalized to.
type Unit string

const (
	UnitGram       Unit = "г"
	UnitMilliliter Unit = "мл"
)

// DefaultQuantity is assumed when a description carries no recognizable
// amount: one standard 100 g portion.
const DefaultQuantity = 100.0

type quantityRule struct {
	re     *regexp.Regexp
	factor float64
	unit   Unit
}

// Rule order is a correctness contract: more specific spellings must
// come before the shorter ones they contain, and the first matching
// rule wins.
var quantityRules = []quantityRule{
	// килограммы
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*кг`), 1000, UnitGram},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*килограмм`), 1000, UnitGram},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*kg`), 1000, UnitGram},

	// граммы
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*г`), 1, UnitGram},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*грамм`), 1, UnitGram},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*g`), 1, UnitGram},

	// литры
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*л`), 1000, UnitMilliliter},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*литр`), 1000, UnitMilliliter},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*l`), 1000, UnitMilliliter},

	// миллилитры
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*мл`), 1, UnitMilliliter},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*миллилитр`), 1, UnitMilliliter},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ml`), 1, UnitMilliliter},

	// штуки, примерно 100 г за штуку
	{regexp.MustCompile(`(\d+)\s*шт`), 100, UnitGram},
	{regexp.MustCompile(`(\d+)\s*штук`), 100, UnitGram},
	{regexp.MustCompile(`(\d+)\s*pc`), 100, UnitGram},

	// порции, примерно 200 г
	{regexp.MustCompile(`(\d+)\s*порц`), 200, UnitGram},

	// стаканы, примерно 250 г
	{regexp.MustCompile(`(\d+)\s*стакан`), 250, UnitGram},

	// ложки столовые (15 г) и чайные (5 г)
	{regexp.MustCompile(`(\d+)\s*ст\.\s*л\.`), 15, UnitGram},
	{regexp.MustCompile(`(\d+)\s*столов\w* лож\w*`), 15, UnitGram},
	{regexp.MustCompile(`(\d+)\s*ч\.\s*л\.`), 5, UnitGram},
	{regexp.MustCompile(`(\d+)\s*чайн\w* лож\w*`), 5, UnitGram},
}

// ParseQuantity extracts an amount and unit from a free-text dish
// description. It never fails: when nothing matches it falls back to a
// standard 100 g portion.
func ParseQuantity(description string) (float64, Unit) {
	description = strings.ToLower(strings.TrimSpace(description))

	for _, rule := range quantityRules {
		m := rule.re.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return value * rule.factor, rule.unit
	}

	return DefaultQuantity, UnitGram
}
