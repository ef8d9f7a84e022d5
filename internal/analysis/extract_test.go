package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAnalysis = `**🍽️ Анализ блюда:**

**Название:** Борщ с говядиной
**Вес:** 350г
**Калорийность:** 420 ккал

**📊 БЖУ на 100г:**
• Белки: 4г
• Жиры: 6г
• Углеводы: 8г`

func TestExtractCalories(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
		ok   bool
	}{
		{"total phrasing", "Общая калорийность: 650 ккал", 650, true},
		{"total amount phrasing", "Общее количество калорий: 1200 ккал", 1200, true},
		{"dish phrasing", "Калорийность блюда: 310 ккал", 310, true},
		{"labeled line", sampleAnalysis, 420, true},
		{"bare trailing number", "Примерно 540 ккал", 540, true},
		{"lower bound", "Калорийность: 10 ккал", 10, true},
		{"upper bound", "Калорийность: 10000 ккал", 10000, true},
		{"below range", "Калорийность: 5 ккал", 0, false},
		{"above range", "Калорийность: 25000 ккал", 0, false},
		{"no calories at all", "Это блюдо выглядит аппетитно", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCalories(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A labeled total must win over a bare per-100g number appearing
// earlier in the same text.
func TestExtractCaloriesPrefersTotal(t *testing.T) {
	text := "Калорийность на 100г: 120 ккал в каждой порции\nОбщая калорийность: 480 ккал"
	got, ok := ExtractCalories(text)
	require.True(t, ok)
	assert.Equal(t, 480, got)
}

// An out-of-range primary match must not block the fallback cascade.
func TestExtractCaloriesFallback(t *testing.T) {
	text := "В блюде примерно 350 ккал, точнее сказать сложно."
	got, ok := ExtractCalories(text)
	require.True(t, ok)
	assert.Equal(t, 350, got)
}

func TestExtractDishName(t *testing.T) {
	name, ok := ExtractDishName(sampleAnalysis)
	require.True(t, ok)
	assert.Equal(t, "Борщ с говядиной", name)

	_, ok = ExtractDishName("никакого названия здесь нет")
	assert.False(t, ok)

	_, ok = ExtractDishName("Название:   \n")
	assert.False(t, ok)
}

func TestStripExplanations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"heading removed",
			"Калорийность: 420 ккал\n\n### Пояснение расчетов:\nвес умножен на...",
			"Калорийность: 420 ккал",
		},
		{
			"transition phrase removed",
			"Калорийность: 420 ккал\nТаким образом, итоговое значение получено из...",
			"Калорийность: 420 ккал",
		},
		{
			"clean text untouched",
			"Калорийность: 420 ккал",
			"Калорийность: 420 ккал",
		},
		{
			"trailing blank lines trimmed",
			"Калорийность: 420 ккал\n\n\n",
			"Калорийность: 420 ккал",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripExplanations(tt.in))
		})
	}
}

func TestStripExplanationsIdempotent(t *testing.T) {
	in := sampleAnalysis + "\n\nИтак, расчет выполнен по средним значениям."
	once := StripExplanations(in)
	twice := StripExplanations(once)
	assert.Equal(t, once, twice)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(sampleAnalysis))
	assert.False(t, IsValid("не удалось распознать блюдо"))
}
