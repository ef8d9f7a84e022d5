package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"calorigram/internal/models"
	"calorigram/internal/session"
)

func (b *Bot) startRegistration(ctx context.Context, s *session.Session, chatID, userID int64) {
	profile, err := b.db.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Errorw("Failed to load profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при проверке регистрации. Попробуйте позже.")
		return
	}
	if profile != nil {
		b.reply(chatID, "Вы уже зарегистрированы! Используйте /profile для просмотра данных.")
		return
	}

	s.Set(session.Registering{Step: session.StepName})
	b.reply(chatID, "Давайте зарегистрируем вас в системе!\n\nВведите ваше имя:")
}

// handleRegistrationInput advances the registration flow by one typed
// answer. Gender and activity arrive as callbacks, not text.
func (b *Bot) handleRegistrationInput(ctx context.Context, s *session.Session, msg *tgbotapi.Message, state session.Registering) {
	chatID := msg.Chat.ID
	text := msg.Text

	switch state.Step {
	case session.StepName:
		state.Draft.Name = text
		state.Step = session.StepGender
		s.Set(state)

		kb := genderKeyboard()
		b.replyMarkdown(chatID, "Выберите ваш пол:", &kb)

	case session.StepAge:
		age, ok := session.ValidateAge(text)
		if !ok {
			b.reply(chatID, fmt.Sprintf("Пожалуйста, введите корректный возраст (%d-%d):", session.MinAge, session.MaxAge))
			return
		}
		state.Draft.Age = age
		state.Step = session.StepHeight
		s.Set(state)
		b.reply(chatID, "Введите ваш рост в см:")

	case session.StepHeight:
		height, ok := session.ValidateHeight(text)
		if !ok {
			b.reply(chatID, fmt.Sprintf("Пожалуйста, введите корректный рост (%d-%d см):", session.MinHeight, session.MaxHeight))
			return
		}
		state.Draft.Height = height
		state.Step = session.StepWeight
		s.Set(state)
		b.reply(chatID, "Введите ваш вес в кг:")

	case session.StepWeight:
		weight, ok := session.ValidateWeight(text)
		if !ok {
			b.reply(chatID, fmt.Sprintf("Пожалуйста, введите корректный вес (%d-%d кг):", session.MinWeight, session.MaxWeight))
			return
		}
		state.Draft.Weight = weight
		state.Step = session.StepActivity
		s.Set(state)

		kb := activityKeyboard()
		b.replyMarkdown(chatID, "Выберите ваш уровень активности:", &kb)

	default:
		// Gender and activity are button steps; typed text is ignored.
		b.reply(chatID, "Пожалуйста, используйте кнопки выше.")
	}
}

func (b *Bot) handleGenderCallback(s *session.Session, chatID int64, data string) {
	state, ok := s.State().(session.Registering)
	if !ok || state.Step != session.StepGender {
		b.reply(chatID, "❌ Ошибка: данные регистрации не найдены.\nПожалуйста, начните регистрацию заново с помощью /register")
		return
	}

	if data == "gender_male" {
		state.Draft.Gender = "Мужской"
	} else {
		state.Draft.Gender = "Женский"
	}
	state.Step = session.StepAge
	s.Set(state)

	b.reply(chatID, "Введите ваш возраст:")
}

func (b *Bot) handleActivityCallback(ctx context.Context, s *session.Session, chatID, userID int64, data string) {
	state, ok := s.State().(session.Registering)
	if !ok || state.Step != session.StepActivity {
		b.reply(chatID, "❌ Ошибка: данные регистрации не найдены.\nПожалуйста, начните регистрацию заново с помощью /register")
		return
	}

	level, ok := activityLevelFromCallback[data]
	if !ok {
		b.reply(chatID, "Пожалуйста, используйте кнопки выше.")
		return
	}
	state.Draft.ActivityLevel = level

	dailyCalories := session.DailyCalories(state.Draft)

	profile := &models.UserProfile{
		TelegramID:    userID,
		Name:          state.Draft.Name,
		Gender:        state.Draft.Gender,
		Age:           state.Draft.Age,
		Height:        state.Draft.Height,
		Weight:        state.Draft.Weight,
		ActivityLevel: state.Draft.ActivityLevel,
		DailyCalories: dailyCalories,
	}

	if err := b.db.CreateProfile(ctx, profile); err != nil {
		b.logger.Errorw("Failed to create profile", "user_id", userID, "error", err)
		b.reply(chatID, "❌ Произошла ошибка при сохранении данных. Попробуйте регистрацию заново.")
		return
	}

	s.Reset()

	acc, err := b.gate.Check(ctx, userID)
	subscription := ""
	if err == nil {
		subscription = subscriptionLine(acc)
	}

	kb := mainMenuKeyboard()
	b.replyMarkdown(chatID, fmt.Sprintf(
		"Привет %s, ✅ *Регистрация завершена!*\n\n"+
			"Ваша суточная норма калорий: *%d ккал*\n\n"+
			"%s\n\n"+
			"Выберите действие:",
		state.Draft.Name, dailyCalories, subscription,
	), &kb)
}
