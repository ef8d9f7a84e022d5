package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"calorigram/internal/access"
	"calorigram/internal/db"
	"calorigram/internal/gpt"
	"calorigram/internal/models"
	"calorigram/internal/payment"
	"calorigram/internal/session"
	"calorigram/pkg/logger"
)

// store is the slice of the database the bot needs.
type store interface {
	GetProfile(ctx context.Context, telegramID int64) (*models.UserProfile, error)
	CreateProfile(ctx context.Context, p *models.UserProfile) error
	DeleteProfile(ctx context.Context, telegramID int64) (bool, error)
	SetSubscription(ctx context.Context, telegramID int64, tier string, expiresAt *time.Time, premium bool) error
	InsertMeal(ctx context.Context, meal *models.MealEntry) error
	MealSlotLogged(ctx context.Context, telegramID int64, slot models.MealSlot, day time.Time) (bool, error)
	DeleteMealsForDay(ctx context.Context, telegramID int64, day time.Time) (bool, error)
	DeleteAllMeals(ctx context.Context, telegramID int64) (bool, error)
	InsertUsage(ctx context.Context, telegramID int64, channel models.Channel) error
	DailyTotal(ctx context.Context, telegramID int64, day time.Time) (*models.DayTotal, error)
	DailyMealsBySlot(ctx context.Context, telegramID int64, day time.Time) (map[models.MealSlot]int, error)
	WeeklyCalories(ctx context.Context, telegramID int64, day time.Time) (map[string]int, error)
	UserCount(ctx context.Context) (int, error)
	MealCount(ctx context.Context) (int, error)
	DailyStats(ctx context.Context) (*models.DailyStats, error)
	RecentMeals(ctx context.Context, limit int) ([]models.RecentMeal, error)
	AllUsers(ctx context.Context) ([]models.UserProfile, error)
}

var _ store = (*db.PostgresDB)(nil)

type Bot struct {
	api          *tgbotapi.BotAPI
	db           store
	gate         *access.Gate
	sessions     *session.Manager
	gptClient    *gpt.Client
	stripeClient *payment.StripeClient
	logger       *logger.Logger
	admins       map[int64]bool
	premiumDays  int
	inferTimeout time.Duration
	callbackURL  string
}

type Options struct {
	Token            string
	AdminIDs         []int64
	PremiumDays      int
	InferenceTimeout time.Duration
}

func NewBot(opts Options, database *db.PostgresDB, gate *access.Gate, gptClient *gpt.Client, stripeClient *payment.StripeClient, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log.Infow("Authorized on Telegram", "username", api.Self.UserName)

	admins := make(map[int64]bool, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		api:          api,
		db:           database,
		gate:         gate,
		sessions:     session.NewManager(),
		gptClient:    gptClient,
		stripeClient: stripeClient,
		logger:       log,
		admins:       admins,
		premiumDays:  opts.PremiumDays,
		inferTimeout: opts.InferenceTimeout,
		callbackURL:  fmt.Sprintf("https://t.me/%s", api.Self.UserName),
	}, nil
}

// Start begins receiving updates from Telegram via polling.
func (b *Bot) Start(ctx context.Context) error {
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)
	b.logger.Info("Started receiving Telegram updates")

	go b.handleUpdates(ctx, updates)
	return nil
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go func(update tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						b.logger.Errorw("Recovered from panic while processing update", "error", r)
					}
				}()
				b.dispatch(ctx, update)
			}(update)
		}
	}
}

// dispatch routes one update. The whole handler runs under the user's
// session lock, so a user's events are applied in arrival order even
// though updates are handled on separate goroutines.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		userID := update.Message.From.ID
		b.sessions.Do(userID, func(s *session.Session) {
			b.handleMessage(ctx, s, update.Message)
		})
	case update.CallbackQuery != nil:
		userID := update.CallbackQuery.From.ID
		b.sessions.Do(userID, func(s *session.Session) {
			b.handleCallback(ctx, s, update.CallbackQuery)
		})
	}
}

func (b *Bot) handleMessage(ctx context.Context, s *session.Session, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, s, msg)
		return
	}

	userID := msg.From.ID

	// Admin ID entry takes priority over every other reading of free
	// text.
	if _, ok := s.State().(session.AwaitingAdminInput); ok && b.isAdmin(userID) {
		b.handleAdminIDInput(ctx, s, msg)
		return
	}

	switch state := s.State().(type) {
	case session.LoggingMeal:
		if state.Channel != "" {
			b.handleAnalysisInput(ctx, s, msg, state.Channel, &state.Slot)
			return
		}
	case session.QuickCheck:
		if state.Channel != "" {
			b.handleAnalysisInput(ctx, s, msg, state.Channel, nil)
			return
		}
	case session.Registering:
		b.handleRegistrationInput(ctx, s, msg, state)
		return
	}

	b.reply(msg.Chat.ID, "Я не ожидаю от вас сообщений сейчас. Используйте меню или команды.")
}

func (b *Bot) handleCallback(ctx context.Context, s *session.Session, query *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the button stops spinning.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warnw("Failed to answer callback", "error", err)
	}

	// Telegram omits the originating message from callbacks older than
	// 48 hours.
	if query.Message == nil {
		b.logger.Warnw("Callback without message", "user_id", query.From.ID, "data", query.Data)
		return
	}

	data := query.Data
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	switch {
	case data == "register":
		b.startRegistration(ctx, s, chatID, userID)
	case data == "gender_male" || data == "gender_female":
		b.handleGenderCallback(s, chatID, data)
	case strings.HasPrefix(data, "activity_"):
		b.handleActivityCallback(ctx, s, chatID, userID, data)
	case data == "add_dish":
		b.handleAddDish(ctx, s, chatID, userID)
	case strings.HasPrefix(data, "meal_"):
		b.handleMealSlot(ctx, s, chatID, userID, data)
	case data == "check_calories":
		b.handleCheckCalories(ctx, s, chatID, userID)
	case strings.HasPrefix(data, "analyze_"):
		b.handleChannelChoice(s, chatID, data)
	case data == "statistics":
		b.showStatisticsMenu(ctx, chatID, userID)
	case data == "stats_today" || data == "stats_yesterday" || data == "stats_week":
		b.handleStatsCallback(ctx, chatID, userID, data)
	case data == "subscription":
		b.showSubscription(ctx, chatID, userID)
	case data == "buy_premium":
		b.handleBuyPremium(chatID, userID)
	case data == "profile":
		b.showProfile(ctx, chatID, userID)
	case data == "help":
		b.sendHelp(chatID)
	case data == "reset_confirm":
		b.handleResetConfirm(ctx, s, chatID, userID)
	case data == "menu" || data == "back_to_main":
		s.Reset()
		b.showMainMenu(ctx, chatID, userID)
	case strings.HasPrefix(data, "admin_"):
		b.handleAdminCallback(ctx, s, chatID, userID, data)
	default:
		b.logger.Debugw("Unknown callback", "data", data)
	}
}

func (b *Bot) handleCommand(ctx context.Context, s *session.Session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	// Commands abandon whatever flow was in progress.
	s.Reset()

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, chatID, userID)
	case "help":
		b.sendHelp(chatID)
	case "register":
		b.startRegistration(ctx, s, chatID, userID)
	case "profile":
		b.showProfile(ctx, chatID, userID)
	case "subscription":
		b.showSubscription(ctx, chatID, userID)
	case "add":
		b.handleAddDish(ctx, s, chatID, userID)
	case "check":
		b.handleCheckCalories(ctx, s, chatID, userID)
	case "stats":
		b.showStatisticsMenu(ctx, chatID, userID)
	case "dayreset":
		b.handleDayReset(ctx, chatID, userID)
	case "reset":
		b.handleResetCommand(ctx, chatID, userID)
	case "admin":
		b.handleAdminCommand(ctx, chatID, userID)
	default:
		b.reply(chatID, "Неизвестная команда. Используйте /help для списка команд.")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.admins[userID]
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorw("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) replyMarkdown(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		// Markdown parse failures are common with model output; retry
		// as plain text.
		plain := tgbotapi.NewMessage(chatID, text)
		if keyboard != nil {
			plain.ReplyMarkup = keyboard
		}
		if _, err := b.api.Send(plain); err != nil {
			b.logger.Errorw("Failed to send message", "chat_id", chatID, "error", err)
		}
	}
}

