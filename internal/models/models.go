package models

import (
	"time"
)

// Subscription tiers stored in users.subscription_type.
const (
	TierTrial   = "trial"
	TierPremium = "premium"
	TierNone    = "none"
)

// MealSlot identifies a meal of the day. Breakfast, lunch and dinner are
// limited to one logged entry per calendar day; snacks are unbounded.
type MealSlot string

const (
	SlotBreakfast MealSlot = "meal_breakfast"
	SlotLunch     MealSlot = "meal_lunch"
	SlotDinner    MealSlot = "meal_dinner"
	SlotSnack     MealSlot = "meal_snack"
)

// Title returns the human-readable slot name shown in menus and stored
// with the meal entry.
func (s MealSlot) Title() string {
	switch s {
	case SlotBreakfast:
		return "🌅 Завтрак"
	case SlotLunch:
		return "☀️ Обед"
	case SlotDinner:
		return "🌙 Ужин"
	case SlotSnack:
		return "🍎 Перекус"
	}
	return "Прием пищи"
}

// Channel is the input modality used for a food analysis.
type Channel string

const (
	ChannelPhoto Channel = "photo"
	ChannelText  Channel = "text"
	ChannelVoice Channel = "voice"
)

// UserProfile is a registered user. At most one profile exists per
// Telegram ID.
type UserProfile struct {
	ID            int64
	TelegramID    int64
	Name          string
	Gender        string
	Age           int
	Height        float64
	Weight        float64
	ActivityLevel string
	DailyCalories int
	Tier          string
	ExpiresAt     *time.Time
	IsPremium     bool
	CreatedAt     time.Time
}

// MealEntry is a single logged meal. Entries are never mutated.
type MealEntry struct {
	ID         int64
	TelegramID int64
	Slot       MealSlot
	MealName   string
	DishName   string
	Calories   int
	Channel    Channel
	CreatedAt  time.Time
}

// UsageEvent records one invocation of the free quick-check feature.
// Only the per-day count is ever read back.
type UsageEvent struct {
	ID         int64
	TelegramID int64
	Channel    Channel
	CreatedAt  time.Time
}

// DayTotal is the calorie summary for one user and one calendar day.
type DayTotal struct {
	Calories int
	Meals    int
}

// DailyStats is the aggregate shown in the admin panel.
type DailyStats struct {
	ActiveUsers   int
	MealsToday    int
	TotalCalories int
}

// RecentMeal joins a meal entry with the owner's name for the admin
// view.
type RecentMeal struct {
	TelegramID int64
	UserName   string
	MealName   string
	DishName   string
	Calories   int
	CreatedAt  time.Time
}
