package bot

import (
	"context"
	"fmt"
	"time"

	"calorigram/internal/models"
	"calorigram/internal/session"
)

// handleAddDish opens the meal-logging flow. Requires registration and
// an active subscription; quota-only users can still use quick checks.
func (b *Bot) handleAddDish(ctx context.Context, s *session.Session, chatID, userID int64) {
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
	if !acc.Active {
		kb := subscriptionKeyboard(false)
		b.replyMarkdown(chatID, subscriptionLine(acc)+
			"\n\n💳 Оформите премиум подписку, чтобы записывать приемы пищи.", &kb)
		return
	}

	logged := make(map[models.MealSlot]bool, 3)
	now := time.Now()
	for _, slot := range []models.MealSlot{models.SlotBreakfast, models.SlotLunch, models.SlotDinner} {
		added, err := b.db.MealSlotLogged(ctx, userID, slot, now)
		if err != nil {
			b.logger.Errorw("Failed to check meal slot", "user_id", userID, "slot", slot, "error", err)
			b.reply(chatID, "❌ Произошла ошибка. Попробуйте позже.")
			return
		}
		logged[slot] = added
	}

	kb := slotKeyboard(logged)
	b.replyMarkdown(chatID, "🍽️ *Добавить блюдо*\n\n"+
		"Выберите прием пищи:\n\n"+
		"🍎 Перекус можно добавлять неограниченное количество раз", &kb)
}

func (b *Bot) handleMealSlot(ctx context.Context, s *session.Session, chatID, userID int64, data string) {
	slot := models.MealSlot(data)
	switch slot {
	case models.SlotBreakfast, models.SlotLunch, models.SlotDinner, models.SlotSnack:
	default:
		b.logger.Debugw("Unknown meal slot", "data", data)
		return
	}

	s.Set(session.LoggingMeal{Slot: slot})

	kb := channelKeyboard()
	b.replyMarkdown(chatID, fmt.Sprintf("🍽️ *%s*\n\nВыберите способ анализа блюда:", slot.Title()), &kb)
}

// handleChannelChoice arms the session for the chosen input modality.
// It serves both the logging flow and the quick-check flow.
func (b *Bot) handleChannelChoice(s *session.Session, chatID int64, data string) {
	var channel models.Channel
	switch data {
	case "analyze_photo":
		channel = models.ChannelPhoto
	case "analyze_text":
		channel = models.ChannelText
	case "analyze_voice":
		channel = models.ChannelVoice
	default:
		return
	}

	var title string
	switch state := s.State().(type) {
	case session.LoggingMeal:
		state.Channel = channel
		s.Set(state)
		title = state.Slot.Title()
	case session.QuickCheck:
		state.Channel = channel
		s.Set(state)
		title = "Проверка калорийности"
	default:
		b.reply(chatID, "Сначала выберите прием пищи через меню.")
		return
	}

	switch channel {
	case models.ChannelPhoto:
		b.replyMarkdown(chatID, fmt.Sprintf("📸 *Анализ фотографии еды - %s*\n\n", title)+
			"Пришлите мне фото блюда, калорийность которого вы хотите оценить.\n\n"+
			"⚠️ *Для более точного расчета на фото должны присутствовать якорные объекты:*\n"+
			"• Вилка\n• Ложка\n• Рука\n• Монета\n• Другие объекты для масштаба\n\n"+
			"Модель проанализирует фото и вернет:\n"+
			"• Название блюда\n• Ориентировочный вес\n• Калорийность\n• Раскладку по БЖУ", nil)
	case models.ChannelText:
		b.replyMarkdown(chatID, fmt.Sprintf("📝 *Анализ описания блюда - %s*\n\n", title)+
			"Опишите блюдо, калорийность которого вы хотите оценить.\n\n"+
			"*Примеры описаний:*\n"+
			"• \"Большая тарелка борща с мясом и сметаной\"\n"+
			"• \"2 куска пиццы Маргарита среднего размера\"\n"+
			"• \"Салат Цезарь с курицей и сыром пармезан\"\n"+
			"• \"Порция жареной картошки с луком\"\n\n"+
			"*Укажите:*\n"+
			"• Название блюда\n• Примерный размер порции\n• Основные ингредиенты", nil)
	case models.ChannelVoice:
		b.replyMarkdown(chatID, fmt.Sprintf("🎤 *Анализ голосового описания блюда - %s*\n\n", title)+
			"Отправьте голосовое сообщение с описанием блюда, калорийность которого вы хотите оценить.\n\n"+
			"*Укажите в голосовом сообщении:*\n"+
			"• Название блюда\n• Примерный размер порции\n• Основные ингредиенты", nil)
	}
}
