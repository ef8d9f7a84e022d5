package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calorigram/internal/models"
)

func slotButtonData(t *testing.T, logged map[models.MealSlot]bool) []string {
	t.Helper()
	kb := slotKeyboard(logged)
	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			require.NotNil(t, btn.CallbackData)
			data = append(data, *btn.CallbackData)
		}
	}
	return data
}

func TestSlotKeyboardOmitsLoggedSlots(t *testing.T) {
	data := slotButtonData(t, map[models.MealSlot]bool{
		models.SlotBreakfast: true,
		models.SlotLunch:     true,
	})

	assert.Equal(t, []string{"meal_dinner", "meal_snack", "menu"}, data)
}

func TestSlotKeyboardAllFree(t *testing.T) {
	data := slotButtonData(t, nil)

	assert.Equal(t, []string{"meal_breakfast", "meal_lunch", "meal_dinner", "meal_snack", "menu"}, data)
}

func TestSlotKeyboardSnackAlwaysPresent(t *testing.T) {
	// Even with every slot logged, snack stays available.
	data := slotButtonData(t, map[models.MealSlot]bool{
		models.SlotBreakfast: true,
		models.SlotLunch:     true,
		models.SlotDinner:    true,
		models.SlotSnack:     true,
	})

	assert.Equal(t, []string{"meal_snack", "menu"}, data)
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Название: Борщ", "Название: Борщ"},
		{"**Калорийность:** 420", "\\*\\*Калорийность:\\*\\* 420"},
		{"вес 100-150г.", "вес 100\\-150г\\."},
		{"a_b [c]", "a\\_b \\[c\\]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeMarkdown(tt.in))
	}
}

func TestActivityLevelMapping(t *testing.T) {
	assert.Equal(t, "Минимальная", activityLevelFromCallback["activity_minimal"])
	assert.Equal(t, "Очень высокая", activityLevelFromCallback["activity_very_high"])
	assert.Len(t, activityLevelFromCallback, 5)
}
