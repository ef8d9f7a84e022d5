package bot

import (
	"context"
	"fmt"
	"time"

	"calorigram/internal/access"
	"calorigram/internal/session"
)

const helpText = `📋 Доступные команды:

/start - Начать работу с ботом
/register - Регистрация в системе
/profile - Посмотреть профиль
/add - Добавить блюдо
/check - Узнать калорийность без записи
/stats - Статистика питания
/subscription - Статус подписки
/dayreset - Удалить приемы пищи за сегодня
/reset - Удалить все данные регистрации
/help - Показать эту справку

🔧 Функции бота:
• Расчет суточной нормы калорий
• Отслеживание прогресса
• Добавление блюд по приемам пищи
• Анализ фотографий еды с помощью ИИ
• Анализ текстового описания блюд
• Анализ голосовых сообщений
• Безопасное удаление данных`

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) {
	profile, err := b.db.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	if profile != nil {
		b.showMainMenu(ctx, chatID, userID)
		return
	}

	welcome := "Привет! 👋\n\n" +
		"Добро пожаловать в Calorigram - бот для подсчета калорий!\n\n" +
		"Я помогу тебе:\n" +
		"• Рассчитать суточную норму калорий\n" +
		"• Отслеживать твой прогресс\n" +
		"• Давать рекомендации по питанию\n\n" +
		"Для начала работы используй команду /register"

	kb := registerKeyboard()
	b.replyMarkdown(chatID, welcome, &kb)
}

func (b *Bot) showMainMenu(ctx context.Context, chatID, userID int64) {
	kb := mainMenuKeyboard()
	b.replyMarkdown(chatID, "📋 Главное меню\n\nВыберите действие:", &kb)
}

func (b *Bot) sendHelp(chatID int64) {
	kb := mainMenuKeyboard()
	b.replyMarkdown(chatID, helpText, &kb)
}

func (b *Bot) sendNotRegistered(chatID int64) {
	kb := registerKeyboard()
	b.replyMarkdown(chatID, "❌ Вы не зарегистрированы в системе!\nИспользуйте /register для регистрации.", &kb)
}

func (b *Bot) showProfile(ctx context.Context, chatID, userID int64) {
	profile, err := b.db.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при получении данных профиля. Попробуйте позже.")
		return
	}
	if profile == nil {
		b.sendNotRegistered(chatID)
		return
	}

	acc, err := b.gate.Check(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to check access", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при получении данных профиля. Попробуйте позже.")
		return
	}

	text := fmt.Sprintf(`👤 Ваш профиль:

📝 Имя: %s
👤 Пол: %s
🎂 Возраст: %d лет
📏 Рост: %.0f см
⚖️ Вес: %.0f кг
🏃 Уровень активности: %s
🔥 Суточная норма калорий: %d ккал
📅 Дата регистрации: %s

%s`,
		profile.Name, profile.Gender, profile.Age, profile.Height,
		profile.Weight, profile.ActivityLevel, profile.DailyCalories,
		profile.CreatedAt.Format("02.01.2006"),
		subscriptionLine(acc),
	)

	kb := mainMenuKeyboard()
	b.replyMarkdown(chatID, text, &kb)
}

func subscriptionLine(acc access.Access) string {
	format := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02.01.2006 15:04")
	}

	switch acc.Status {
	case access.StatusTrial:
		return fmt.Sprintf("🆓 Триальный период\nДоступен до: %s", format(acc.ExpiresAt))
	case access.StatusPremium:
		if acc.ExpiresAt == nil {
			return "⭐ Премиум подписка\nБез ограничений"
		}
		return fmt.Sprintf("⭐ Премиум подписка\nДействует до: %s", format(acc.ExpiresAt))
	case access.StatusTrialExpired:
		return fmt.Sprintf("❌ Триальный период истек\nИстек: %s", format(acc.ExpiresAt))
	case access.StatusPremiumExpired:
		return fmt.Sprintf("❌ Премиум подписка истекла\nИстекла: %s", format(acc.ExpiresAt))
	}
	return "❌ Нет активной подписки"
}

func (b *Bot) showSubscription(ctx context.Context, chatID, userID int64) {
	profile, err := b.db.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при проверке подписки. Попробуйте позже.")
		return
	}
	if profile == nil {
		b.sendNotRegistered(chatID)
		return
	}

	acc, err := b.gate.Check(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to check access", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при проверке подписки. Попробуйте позже.")
		return
	}

	text := "⭐ Статус подписки\n\n" + subscriptionLine(acc)
	if !acc.Active {
		remaining, err := b.gate.Remaining(ctx, userID)
		if err == nil {
			text += fmt.Sprintf("\n\n🔍 Бесплатных проверок калорий сегодня: %d из %d", remaining, b.gate.Quota())
		}
		text += "\n\n💳 Оформите премиум подписку, чтобы снять ограничения."
	}

	kb := subscriptionKeyboard(acc.Active)
	b.replyMarkdown(chatID, text, &kb)
}

func (b *Bot) handleDayReset(ctx context.Context, chatID, userID int64) {
	profile, err := b.db.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при удалении данных. Попробуйте позже.")
		return
	}
	if profile == nil {
		b.sendNotRegistered(chatID)
		return
	}

	deleted, err := b.db.DeleteMealsForDay(ctx, userID, time.Now())
	if err != nil {
		b.logger.Errorw("Failed to delete day meals", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при удалении данных. Попробуйте позже.")
		return
	}

	kb := mainMenuKeyboard()
	if deleted {
		b.replyMarkdown(chatID, "✅ *Данные за сегодня удалены!*\n\n"+
			"Все приемы пищи за сегодняшний день были удалены.\n"+
			"Теперь вы можете снова добавлять завтрак, обед и ужин.", &kb)
	} else {
		b.replyMarkdown(chatID, "ℹ️ *Нет данных для удаления*\n\n"+
			"У вас нет записей о приемах пищи за сегодняшний день.", &kb)
	}
}

func (b *Bot) handleResetCommand(ctx context.Context, chatID, userID int64) {
	profile, err := b.db.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при проверке регистрации. Попробуйте позже.")
		return
	}
	if profile == nil {
		b.sendNotRegistered(chatID)
		return
	}

	warning := "⚠️ *ВНИМАНИЕ!* ⚠️\n\n" +
		"Вы собираетесь удалить ВСЕ ваши данные:\n" +
		"• Данные регистрации (имя, пол, возраст, рост, вес, уровень активности)\n" +
		"• Суточная норма калорий\n" +
		"• ВСЕ данные о приемах пищи за все время\n" +
		"• Статистика и история питания\n\n" +
		"🗑️ *УДАЛЕНИЕ БЕЗВОЗВРАТНО!*\n\n" +
		"Вы уверены, что хотите продолжить?"

	kb := resetConfirmKeyboard()
	b.replyMarkdown(chatID, warning, &kb)
}

func (b *Bot) handleResetConfirm(ctx context.Context, s *session.Session, chatID, userID int64) {
	// Meal history goes first, then the profile row cascades the rest.
	if _, err := b.db.DeleteAllMeals(ctx, userID); err != nil {
		b.logger.Errorw("Failed to delete meals", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при удалении данных. Попробуйте позже.")
		return
	}

	deleted, err := b.db.DeleteProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to delete profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при удалении данных. Попробуйте позже.")
		return
	}

	s.Reset()
	b.sessions.Drop(userID)

	if !deleted {
		b.sendNotRegistered(chatID)
		return
	}

	kb := registerKeyboard()
	b.replyMarkdown(chatID, "✅ Все ваши данные удалены.\n\n"+
		"Для повторной регистрации используйте /register", &kb)
}
