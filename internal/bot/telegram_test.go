package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calorigram/internal/models"
	"calorigram/internal/session"
	"calorigram/pkg/logger"
)

// The zero-value API client fails every request before touching the
// network, which is all these tests need.
func newTestBot(db store) *Bot {
	return &Bot{
		api:      &tgbotapi.BotAPI{},
		db:       db,
		sessions: session.NewManager(),
		logger:   &logger.Logger{SugaredLogger: zap.NewNop().Sugar()},
	}
}

type fakeStore struct {
	store
	slotLogged func(slot models.MealSlot) (bool, error)
	insertMeal func(meal *models.MealEntry) error
}

func (f *fakeStore) MealSlotLogged(ctx context.Context, telegramID int64, slot models.MealSlot, day time.Time) (bool, error) {
	return f.slotLogged(slot)
}

func (f *fakeStore) InsertMeal(ctx context.Context, meal *models.MealEntry) error {
	return f.insertMeal(meal)
}

func (f *fakeStore) DailyTotal(ctx context.Context, telegramID int64, day time.Time) (*models.DayTotal, error) {
	return nil, errors.New("unavailable")
}

func TestAdminIDInputBadValueKeepsWaiting(t *testing.T) {
	b := newTestBot(nil)

	for _, text := range []string{"not-a-number", "0", "-5"} {
		m := session.NewManager()
		m.Do(7, func(s *session.Session) {
			s.Set(session.AwaitingAdminInput{})
			msg := &tgbotapi.Message{
				Text: text,
				Chat: &tgbotapi.Chat{ID: 7},
				From: &tgbotapi.User{ID: 7},
			}
			b.handleAdminIDInput(context.Background(), s, msg)
			require.IsType(t, session.AwaitingAdminInput{}, s.State(), "input %q", text)
		})
	}
}

func TestMealLogSkipsSaveWhenSlotCheckFails(t *testing.T) {
	fs := &fakeStore{
		slotLogged: func(models.MealSlot) (bool, error) {
			return false, errors.New("connection reset")
		},
		insertMeal: func(*models.MealEntry) error {
			t.Fatal("meal saved despite failed slot check")
			return nil
		},
	}
	b := newTestBot(fs)

	b.finishMealLog(context.Background(), 7, 7, 1, models.ChannelText, models.SlotBreakfast, "Овсянка", 320, "analysis")
}

func TestMealLogSkipsSaveWhenSlotAlreadyLogged(t *testing.T) {
	fs := &fakeStore{
		slotLogged: func(models.MealSlot) (bool, error) {
			return true, nil
		},
		insertMeal: func(*models.MealEntry) error {
			t.Fatal("duplicate meal saved")
			return nil
		},
	}
	b := newTestBot(fs)

	b.finishMealLog(context.Background(), 7, 7, 1, models.ChannelText, models.SlotDinner, "Суп", 250, "analysis")
}

func TestMealLogSavesSnackWithoutSlotCheck(t *testing.T) {
	saved := false
	fs := &fakeStore{
		slotLogged: func(models.MealSlot) (bool, error) {
			t.Fatal("slot check performed for snack")
			return false, nil
		},
		insertMeal: func(*models.MealEntry) error {
			saved = true
			return nil
		},
	}
	b := newTestBot(fs)

	b.finishMealLog(context.Background(), 7, 7, 1, models.ChannelText, models.SlotSnack, "Яблоко", 52, "analysis")
	require.True(t, saved)
}

func TestCallbackWithoutMessageIsIgnored(t *testing.T) {
	b := newTestBot(nil)

	m := session.NewManager()
	m.Do(7, func(s *session.Session) {
		query := &tgbotapi.CallbackQuery{
			ID:   "1",
			From: &tgbotapi.User{ID: 7},
			Data: "statistics",
		}
		require.NotPanics(t, func() {
			b.handleCallback(context.Background(), s, query)
		})
		require.IsType(t, session.Idle{}, s.State())
	})
}
