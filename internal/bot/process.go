package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"calorigram/internal/analysis"
	"calorigram/internal/models"
	"calorigram/internal/session"
)

// handleAnalysisInput runs the shared analysis pipeline for both flows.
// slot is nil for a quick check, set for meal logging. The session is
// reset before the slow work so a failed analysis never leaves the user
// stuck in a waiting state.
func (b *Bot) handleAnalysisInput(ctx context.Context, s *session.Session, msg *tgbotapi.Message, channel models.Channel, slot *models.MealSlot) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	var description string
	var fileID string

	switch channel {
	case models.ChannelPhoto:
		if len(msg.Photo) == 0 {
			b.reply(chatID, "Пожалуйста, пришлите фотографию блюда.")
			return
		}
		fileID = msg.Photo[len(msg.Photo)-1].FileID
	case models.ChannelVoice:
		if msg.Voice == nil {
			b.reply(chatID, "Пожалуйста, отправьте голосовое сообщение с описанием блюда.")
			return
		}
		fileID = msg.Voice.FileID
	case models.ChannelText:
		if msg.Text == "" {
			b.reply(chatID, "Пожалуйста, опишите блюдо текстом.")
			return
		}
		description = msg.Text
	}

	s.Reset()

	processing := tgbotapi.NewMessage(chatID, "🔄 Обрабатываю... Анализирую с помощью ИИ модели...")
	sent, err := b.api.Send(processing)
	if err != nil {
		b.logger.Errorw("Failed to send processing message", "chat_id", chatID, "error", err)
		return
	}

	inferCtx, cancel := context.WithTimeout(ctx, b.inferTimeout)
	defer cancel()

	result, err := b.analyze(inferCtx, channel, fileID, description)
	if err != nil {
		b.logger.Errorw("Analysis failed", "user_id", userID, "channel", channel, "error", err)
		failure := "❌ Ошибка анализа\n\nНе удалось проанализировать блюдо. Попробуйте позже."
		if channel == models.ChannelVoice {
			failure = "❌ Ошибка анализа\n\n" +
				"Не удалось распознать голосовое сообщение.\n" +
				"Попробуйте еще раз или опишите блюдо текстом."
		}
		b.editWithMenu(chatID, sent.MessageID, failure)
		return
	}

	if !analysis.IsValid(result) {
		b.editWithMenu(chatID, sent.MessageID,
			"❌ Анализ не удался\n\n"+
				"ИИ не смог определить калорийность блюда.\n\n"+
				"Попробуйте другое фото или более подробное описание.")
		return
	}

	result = analysis.StripExplanations(result)
	calories, _ := analysis.ExtractCalories(result)
	dishName, ok := analysis.ExtractDishName(result)
	if !ok {
		dishName = "Блюдо"
	}

	if slot == nil {
		b.finishQuickCheck(ctx, chatID, userID, sent.MessageID, channel, result)
		return
	}
	b.finishMealLog(ctx, chatID, userID, sent.MessageID, channel, *slot, dishName, calories, result)
}

func (b *Bot) analyze(ctx context.Context, channel models.Channel, fileID, description string) (string, error) {
	switch channel {
	case models.ChannelPhoto:
		data, err := b.downloadFile(fileID)
		if err != nil {
			return "", err
		}
		return b.gptClient.AnalyzeFoodPhoto(ctx, data)

	case models.ChannelVoice:
		data, err := b.downloadFile(fileID)
		if err != nil {
			return "", err
		}
		transcript, err := b.gptClient.TranscribeVoice(ctx, data)
		if err != nil {
			return "", err
		}
		if transcript == "" {
			return "", fmt.Errorf("empty transcription")
		}
		return b.gptClient.AnalyzeFoodText(ctx, transcript)

	default:
		return b.gptClient.AnalyzeFoodText(ctx, description)
	}
}

func (b *Bot) finishQuickCheck(ctx context.Context, chatID, userID int64, messageID int, channel models.Channel, result string) {
	if err := b.db.InsertUsage(ctx, userID, channel); err != nil {
		b.logger.Errorw("Failed to record usage", "user_id", userID, "error", err)
	}

	text := fmt.Sprintf("🔍 Анализ калорий\n\n%s\n\nℹ️ Данные НЕ сохранены в статистику", escapeMarkdown(result))
	kb := backToMenuKeyboard()
	b.editMarkdown(chatID, messageID, text, &kb)
}

func (b *Bot) finishMealLog(ctx context.Context, chatID, userID int64, messageID int, channel models.Channel, slot models.MealSlot, dishName string, calories int, result string) {
	// A second entry for the same slot can slip in between the menu and
	// this point; re-check before saving.
	if slot != models.SlotSnack {
		logged, err := b.db.MealSlotLogged(ctx, userID, slot, time.Now())
		if err != nil {
			// Saving without the check could duplicate the slot.
			b.logger.Errorw("Failed to check meal slot", "user_id", userID, "error", err)
			b.editWithMenu(chatID, messageID,
				"❌ Ошибка сохранения\n\n"+
					"Не удалось сохранить данные о приеме пищи. Попробуйте еще раз.")
			return
		}
		if logged {
			b.editWithMenu(chatID, messageID, fmt.Sprintf(
				"ℹ️ %s уже добавлен сегодня.\n\nИспользуйте /dayreset, чтобы очистить день.", slot.Title()))
			return
		}
	}

	meal := &models.MealEntry{
		TelegramID: userID,
		Slot:       slot,
		MealName:   slot.Title(),
		DishName:   dishName,
		Calories:   calories,
		Channel:    channel,
	}
	if err := b.db.InsertMeal(ctx, meal); err != nil {
		b.logger.Errorw("Failed to save meal", "user_id", userID, "error", err)
		b.editWithMenu(chatID, messageID,
			"❌ Ошибка сохранения\n\n"+
				"Не удалось сохранить данные о приеме пищи. Попробуйте еще раз.")
		return
	}

	text := fmt.Sprintf("🍽️ %s\n\n%s", slot.Title(), escapeMarkdown(result))
	if total, err := b.db.DailyTotal(ctx, userID, time.Now()); err == nil {
		text += fmt.Sprintf("\n\n🔥 Всего за сегодня: %d ккал (%d приемов пищи)", total.Calories, total.Meals)
	}

	kb := mainMenuKeyboard()
	b.editMarkdown(chatID, messageID, text, &kb)
}

func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file URL: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) editWithMenu(chatID int64, messageID int, text string) {
	kb := mainMenuKeyboard()
	b.editText(chatID, messageID, text, &kb)
}

func (b *Bot) editText(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if keyboard != nil {
		edit.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Errorw("Failed to edit message", "chat_id", chatID, "error", err)
	}
}

// editMarkdown edits with Markdown formatting, falling back to plain
// text when the parser rejects the content.
func (b *Bot) editMarkdown(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		edit.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(edit); err != nil {
		b.editText(chatID, messageID, text, keyboard)
	}
}
