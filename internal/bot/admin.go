package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"calorigram/internal/models"
	"calorigram/internal/session"
)

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Пользователи", "admin_users"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍽️ Последние приемы пищи", "admin_meals"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐ Управление подписками", "admin_subscriptions"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Рассылка", "admin_broadcast"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", "menu"),
		),
	)
}

func backToAdminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад в админку", "admin_panel"),
		),
	)
}

func (b *Bot) handleAdminCommand(ctx context.Context, chatID, userID int64) {
	if !b.isAdmin(userID) {
		kb := mainMenuKeyboard()
		b.replyMarkdown(chatID, "❌ У вас нет прав доступа к админ панели!", &kb)
		return
	}
	b.showAdminPanel(ctx, chatID)
}

func (b *Bot) showAdminPanel(ctx context.Context, chatID int64) {
	userCount, err := b.db.UserCount(ctx)
	if err != nil {
		b.logger.Errorw("Failed to count users", "error", err)
		b.reply(chatID, "❌ Произошла ошибка при загрузке админ панели. Попробуйте позже.")
		return
	}
	mealCount, err := b.db.MealCount(ctx)
	if err != nil {
		b.logger.Errorw("Failed to count meals", "error", err)
		b.reply(chatID, "❌ Произошла ошибка при загрузке админ панели. Попробуйте позже.")
		return
	}
	daily, err := b.db.DailyStats(ctx)
	if err != nil {
		b.logger.Errorw("Failed to load daily stats", "error", err)
		b.reply(chatID, "❌ Произошла ошибка при загрузке админ панели. Попробуйте позже.")
		return
	}

	text := fmt.Sprintf(`🔧 *Админ панель*

📊 *Общая статистика:*
• Всего пользователей: %d
• Всего записей о еде: %d

📈 *За сегодня:*
• Активных пользователей: %d
• Записей о еде: %d
• Общих калорий: %d

Выберите действие:`,
		userCount, mealCount,
		daily.ActiveUsers, daily.MealsToday, daily.TotalCalories,
	)

	kb := adminPanelKeyboard()
	b.replyMarkdown(chatID, text, &kb)
}

func (b *Bot) handleAdminCallback(ctx context.Context, s *session.Session, chatID, userID int64, data string) {
	if !b.isAdmin(userID) {
		b.reply(chatID, "❌ У вас нет прав доступа!")
		return
	}

	action, target := data, ""
	if idx := strings.IndexByte(data, ':'); idx >= 0 {
		action, target = data[:idx], data[idx+1:]
	}

	switch action {
	case "admin_panel":
		b.showAdminPanel(ctx, chatID)
	case "admin_users":
		b.showAdminUsers(ctx, chatID)
	case "admin_meals":
		b.showAdminMeals(ctx, chatID)
	case "admin_subscriptions":
		s.Set(session.AwaitingAdminInput{})
		b.replyMarkdown(chatID, "🔍 *Управление подписками*\n\n"+
			"Введите Telegram ID пользователя:", nil)
	case "admin_broadcast":
		kb := backToAdminKeyboard()
		b.replyMarkdown(chatID, "📢 *Рассылка*\n\nФункция находится в разработке.", &kb)
	case "admin_trial":
		b.adminSetSubscription(ctx, chatID, target, models.TierTrial, 1)
	case "admin_premium":
		b.adminSetSubscription(ctx, chatID, target, models.TierPremium, b.premiumDays)
	case "admin_deactivate":
		b.adminDeactivate(ctx, chatID, target)
	}
}

func (b *Bot) showAdminUsers(ctx context.Context, chatID int64) {
	users, err := b.db.AllUsers(ctx)
	if err != nil {
		b.logger.Errorw("Failed to load users", "error", err)
		b.reply(chatID, "❌ Ошибка при получении списка пользователей. Попробуйте позже.")
		return
	}

	kb := backToAdminKeyboard()
	if len(users) == 0 {
		b.replyMarkdown(chatID, "👥 *Пользователи*\n\nПользователи не найдены.", &kb)
		return
	}

	var sb strings.Builder
	sb.WriteString("👥 *Пользователи*\n\n")
	shown := users
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for i, u := range shown {
		fmt.Fprintf(&sb, "%d. *%s* (ID: %d)\n", i+1, u.Name, u.TelegramID)
		fmt.Fprintf(&sb, "   Пол: %s, Возраст: %d\n", u.Gender, u.Age)
		fmt.Fprintf(&sb, "   Рост: %.0fсм, Вес: %.0fкг\n", u.Height, u.Weight)
		fmt.Fprintf(&sb, "   Норма калорий: %d ккал\n", u.DailyCalories)
		fmt.Fprintf(&sb, "   Регистрация: %s\n\n", u.CreatedAt.Format("2006-01-02"))
	}
	if len(users) > 10 {
		fmt.Fprintf(&sb, "... и еще %d пользователей", len(users)-10)
	}

	b.replyMarkdown(chatID, sb.String(), &kb)
}

func (b *Bot) showAdminMeals(ctx context.Context, chatID int64) {
	meals, err := b.db.RecentMeals(ctx, 10)
	if err != nil {
		b.logger.Errorw("Failed to load recent meals", "error", err)
		b.reply(chatID, "❌ Ошибка при получении приемов пищи. Попробуйте позже.")
		return
	}

	kb := backToAdminKeyboard()
	if len(meals) == 0 {
		b.replyMarkdown(chatID, "🍽️ *Последние приемы пищи*\n\nЗаписи не найдены.", &kb)
		return
	}

	var sb strings.Builder
	sb.WriteString("🍽️ *Последние приемы пищи*\n\n")
	for i, m := range meals {
		fmt.Fprintf(&sb, "%d. *%s* (ID: %d)\n", i+1, m.UserName, m.TelegramID)
		fmt.Fprintf(&sb, "   %s: %s - %d ккал\n", m.MealName, m.DishName, m.Calories)
		fmt.Fprintf(&sb, "   %s\n\n", m.CreatedAt.Format("02.01.2006 15:04"))
	}

	b.replyMarkdown(chatID, sb.String(), &kb)
}

// handleAdminIDInput consumes the Telegram ID an administrator typed
// after opening subscription management.
func (b *Bot) handleAdminIDInput(ctx context.Context, s *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	targetID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil || targetID <= 0 {
		// Keep waiting so the next message is read as another attempt.
		b.replyMarkdown(chatID, "❌ *Неверный формат Telegram ID!*\n\n"+
			"Пожалуйста, введите числовой ID пользователя (например: 123456789)", nil)
		return
	}
	s.Reset()

	profile, err := b.db.GetProfile(ctx, targetID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", targetID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if profile == nil {
		b.replyMarkdown(chatID, fmt.Sprintf("❌ *Пользователь не найден!*\n\n"+
			"🆔 Telegram ID: %d\nПользователь не зарегистрирован в боте.", targetID), nil)
		return
	}

	acc, err := b.gate.Check(ctx, targetID)
	subscription := "❌ *Нет активной подписки*"
	if err == nil {
		subscription = subscriptionLine(acc)
	}

	text := fmt.Sprintf(`👤 *Управление подпиской пользователя*

📝 *Имя:* %s
🆔 *Telegram ID:* %d
📅 *Дата регистрации:* %s

%s

Выберите действие:`,
		profile.Name, targetID, profile.CreatedAt.Format("02.01.2006"), subscription,
	)

	target := strconv.FormatInt(targetID, 10)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆓 Активировать триал (1 день)", "admin_trial:"+target),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("⭐ Активировать премиум (%d дней)", b.premiumDays), "admin_premium:"+target),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Деактивировать подписку", "admin_deactivate:"+target),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад в админку", "admin_panel"),
		),
	)
	b.replyMarkdown(chatID, text, &kb)
}

func (b *Bot) adminSetSubscription(ctx context.Context, chatID int64, target, tier string, days int) {
	targetID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		b.reply(chatID, "❌ Ошибка: не удалось получить ID пользователя")
		return
	}

	expiry := time.Now().AddDate(0, 0, days)
	premium := tier == models.TierPremium
	if err := b.db.SetSubscription(ctx, targetID, tier, &expiry, premium); err != nil {
		b.logger.Errorw("Failed to set subscription", "user_id", targetID, "tier", tier, "error", err)
		b.replyMarkdown(chatID, fmt.Sprintf("❌ *Ошибка активации подписки!*\n\n"+
			"Пользователь %d не найден или произошла ошибка базы данных.", targetID), nil)
		return
	}

	if premium {
		b.replyMarkdown(chatID, fmt.Sprintf("✅ *Премиум подписка активирована!*\n\n"+
			"👤 Пользователь: %d\n⭐ Период: %d дней", targetID, days), nil)
	} else {
		b.replyMarkdown(chatID, fmt.Sprintf("✅ *Триальный период активирован!*\n\n"+
			"👤 Пользователь: %d\n🆓 Период: %d день", targetID, days), nil)
	}
}

func (b *Bot) adminDeactivate(ctx context.Context, chatID int64, target string) {
	targetID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		b.reply(chatID, "❌ Ошибка: не удалось получить ID пользователя")
		return
	}

	// Backdating the expiry marks every status check as expired.
	expired := time.Now().AddDate(0, 0, -1)
	if err := b.db.SetSubscription(ctx, targetID, models.TierTrial, &expired, false); err != nil {
		b.logger.Errorw("Failed to deactivate subscription", "user_id", targetID, "error", err)
		b.replyMarkdown(chatID, fmt.Sprintf("❌ *Ошибка деактивации подписки!*\n\n"+
			"Пользователь %d не найден.", targetID), nil)
		return
	}

	b.replyMarkdown(chatID, fmt.Sprintf("✅ *Подписка деактивирована!*\n\n"+
		"👤 Пользователь: %d\n❌ Статус: Подписка отменена", targetID), nil)
}
