package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calorigram/internal/models"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

func (b *Bot) showStatisticsMenu(ctx context.Context, chatID, userID int64) {
	profile, err := b.db.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при получении статистики. Попробуйте позже.")
		return
	}
	if profile == nil {
		b.sendNotRegistered(chatID)
		return
	}

	acc, err := b.gate.Check(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to check access", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при получении статистики. Попробуйте позже.")
		return
	}
	if !acc.Active {
		kb := subscriptionKeyboard(false)
		b.replyMarkdown(chatID, subscriptionLine(acc), &kb)
		return
	}

	kb := statisticsKeyboard()
	b.replyMarkdown(chatID, "📊 *Статистика*\n\nВыберите период для просмотра статистики:", &kb)
}

func (b *Bot) handleStatsCallback(ctx context.Context, chatID, userID int64, data string) {
	switch data {
	case "stats_today":
		b.showDayStats(ctx, chatID, userID, time.Now(), "за сегодня")
	case "stats_yesterday":
		b.showDayStats(ctx, chatID, userID, time.Now().AddDate(0, 0, -1), "за вчера")
	case "stats_week":
		b.showWeekStats(ctx, chatID, userID)
	}
}

func (b *Bot) showDayStats(ctx context.Context, chatID, userID int64, day time.Time, label string) {
	bySlot, err := b.db.DailyMealsBySlot(ctx, userID, day)
	if err != nil {
		b.logger.Errorw("Failed to load day stats", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при получении статистики. Попробуйте позже.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Ваша статистика %s:*\n\n", label)

	total := 0
	for _, slot := range []models.MealSlot{models.SlotBreakfast, models.SlotLunch, models.SlotDinner, models.SlotSnack} {
		calories := bySlot[slot]
		total += calories
		fmt.Fprintf(&sb, "%s - %d калорий\n", slot.Title(), calories)
	}
	fmt.Fprintf(&sb, "\n🔥 *Всего за день:* %d калорий", total)

	if profile, err := b.db.GetProfile(ctx, userID); err == nil && profile != nil && profile.DailyCalories > 0 {
		percentage := float64(total) / float64(profile.DailyCalories) * 100
		fmt.Fprintf(&sb, "\n📊 *Процент от суточной нормы:* %.1f%%", percentage)
	}

	kb := statisticsKeyboard()
	b.replyMarkdown(chatID, sb.String(), &kb)
}

func (b *Bot) showWeekStats(ctx context.Context, chatID, userID int64) {
	now := time.Now()
	byDate, err := b.db.WeeklyCalories(ctx, userID, now)
	if err != nil {
		b.logger.Errorw("Failed to load week stats", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при получении статистики. Попробуйте позже.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 *Ваша статистика за неделю:*\n\n")

	total := 0
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset)
		calories := byDate[day.Format("2006-01-02")]
		total += calories
		fmt.Fprintf(&sb, "%s - %d калорий\n", weekdayNames[day.Weekday()], calories)
	}
	fmt.Fprintf(&sb, "\n🔥 *Всего за неделю:* %d калорий", total)

	kb := statisticsKeyboard()
	b.replyMarkdown(chatID, sb.String(), &kb)
}
