package bot

import (
	"context"
	"fmt"

	"calorigram/internal/session"
)

// handleCheckCalories opens the quick-check flow: the dish is analyzed
// and shown but never logged. Users without an active subscription
// spend one of their daily free checks.
func (b *Bot) handleCheckCalories(ctx context.Context, s *session.Session, chatID, userID int64) {
	profile, err := b.db.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if profile == nil {
		b.sendNotRegistered(chatID)
		return
	}

	acc, err := b.gate.Check(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to check access", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	var remaining int
	if !acc.Active {
		remaining, err = b.gate.Remaining(ctx, userID)
		if err != nil {
			b.logger.Errorw("Failed to count usage", "user_id", userID, "error", err)
			b.reply(chatID, "❌ Произошла ошибка. Попробуйте позже.")
			return
		}
		if remaining == 0 {
			kb := mainMenuKeyboard()
			b.replyMarkdown(chatID, fmt.Sprintf(
				"❌ *Лимит использований исчерпан*\n\n"+
					"Вы использовали функцию 'Узнать калории' %d/%d раз сегодня.\n\n%s",
				b.gate.Quota(), b.gate.Quota(), subscriptionLine(acc),
			), &kb)
			return
		}
	}

	s.Set(session.QuickCheck{})

	text := "🔍 *Узнать калории*\n\n" +
		"Выберите способ анализа:\n\n" +
		"ℹ️ *Результат будет показан, но НЕ сохранится в вашу статистику*"
	if !acc.Active {
		text += fmt.Sprintf("\n\n🆓 *Осталось использований: %d/%d*", remaining, b.gate.Quota())
		text += "\n\n⏰ *Счетчик сбрасывается в полночь*"
	}

	kb := channelKeyboard()
	b.replyMarkdown(chatID, text, &kb)
}
