package session

import "strconv"

// Registration input bounds.
const (
	MinAge    = 1
	MaxAge    = 120
	MinHeight = 50
	MaxHeight = 250
	MinWeight = 20
	MaxWeight = 300
)

// Genders and activity levels are chosen from buttons, never typed;
// the multiplier feeds the daily-calorie formula.
var Genders = []string{"Мужской", "Женский"}

var ActivityLevels = map[string]float64{
	"Минимальная":   1.2,
	"Легкая":        1.375,
	"Умеренная":     1.55,
	"Высокая":       1.725,
	"Очень высокая": 1.9,
}

func ValidateAge(input string) (int, bool) {
	age, err := strconv.Atoi(input)
	if err != nil || age < MinAge || age > MaxAge {
		return 0, false
	}
	return age, true
}

func ValidateHeight(input string) (float64, bool) {
	height, err := strconv.ParseFloat(input, 64)
	if err != nil || height < MinHeight || height > MaxHeight {
		return 0, false
	}
	return height, true
}

func ValidateWeight(input string) (float64, bool) {
	weight, err := strconv.ParseFloat(input, 64)
	if err != nil || weight < MinWeight || weight > MaxWeight {
		return 0, false
	}
	return weight, true
}

// DailyCalories computes the daily calorie target from the Mifflin-St
// Jeor basal rate scaled by the activity multiplier. An unknown
// activity level falls back to the moderate multiplier.
func DailyCalories(draft Draft) int {
	var bmr float64
	if draft.Gender == "Мужской" {
		bmr = 10*draft.Weight + 6.25*draft.Height - 5*float64(draft.Age) + 5
	} else {
		bmr = 10*draft.Weight + 6.25*draft.Height - 5*float64(draft.Age) - 161
	}

	multiplier, ok := ActivityLevels[draft.ActivityLevel]
	if !ok {
		multiplier = 1.55
	}
	return int(bmr * multiplier)
}
