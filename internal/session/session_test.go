package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calorigram/internal/models"
)

func TestManagerLazySession(t *testing.T) {
	m := NewManager()
	m.Do(42, func(s *Session) {
		assert.IsType(t, Idle{}, s.State())
	})
}

func TestManagerStatePersistsAcrossEvents(t *testing.T) {
	m := NewManager()
	m.Do(42, func(s *Session) {
		s.Set(Registering{Step: StepAge, Draft: Draft{Name: "Анна", Gender: "Женский"}})
	})
	m.Do(42, func(s *Session) {
		reg, ok := s.State().(Registering)
		require.True(t, ok)
		assert.Equal(t, StepAge, reg.Step)
		assert.Equal(t, "Анна", reg.Draft.Name)
	})
}

func TestManagerIsolatesUsers(t *testing.T) {
	m := NewManager()
	m.Do(1, func(s *Session) {
		s.Set(QuickCheck{Channel: models.ChannelPhoto})
	})
	m.Do(2, func(s *Session) {
		assert.IsType(t, Idle{}, s.State())
	})
}

// Starting a new flow discards the previous flow's partial data.
func TestSetReplacesFlow(t *testing.T) {
	m := NewManager()
	m.Do(7, func(s *Session) {
		s.Set(Registering{Step: StepWeight})
	})
	m.Do(7, func(s *Session) {
		s.Set(LoggingMeal{Slot: models.SlotLunch})
	})
	m.Do(7, func(s *Session) {
		lm, ok := s.State().(LoggingMeal)
		require.True(t, ok)
		assert.Equal(t, models.SlotLunch, lm.Slot)
		assert.Equal(t, models.Channel(""), lm.Channel)
	})
}

func TestDrop(t *testing.T) {
	m := NewManager()
	m.Do(9, func(s *Session) {
		s.Set(AwaitingAdminInput{})
	})
	m.Drop(9)
	m.Do(9, func(s *Session) {
		assert.IsType(t, Idle{}, s.State())
	})
}

// Concurrent events for the same user must serialize: each callback
// sees the counter value the previous one left.
func TestManagerSerializesPerUser(t *testing.T) {
	m := NewManager()
	const events = 100

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Do(5, func(s *Session) {
				counter++
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, events, counter)
}

func TestValidateAge(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"15", 15, true},
		{"1", 1, true},
		{"120", 120, true},
		{"200", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ValidateAge(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestValidateHeightWeight(t *testing.T) {
	h, ok := ValidateHeight("175.5")
	require.True(t, ok)
	assert.Equal(t, 175.5, h)

	_, ok = ValidateHeight("20")
	assert.False(t, ok)

	w, ok := ValidateWeight("70")
	require.True(t, ok)
	assert.Equal(t, 70.0, w)

	_, ok = ValidateWeight("500")
	assert.False(t, ok)
}

func TestDailyCalories(t *testing.T) {
	male := Draft{Gender: "Мужской", Age: 30, Height: 180, Weight: 80, ActivityLevel: "Умеренная"}
	// BMR = 800 + 1125 - 150 + 5 = 1780; * 1.55 = 2759
	assert.Equal(t, 2759, DailyCalories(male))

	female := Draft{Gender: "Женский", Age: 25, Height: 165, Weight: 55, ActivityLevel: "Легкая"}
	// BMR = 550 + 1031.25 - 125 - 161 = 1295.25; * 1.375 = 1780.97
	assert.Equal(t, 1780, DailyCalories(female))

	unknown := Draft{Gender: "Мужской", Age: 30, Height: 180, Weight: 80, ActivityLevel: "nope"}
	assert.Equal(t, 2759, DailyCalories(unknown))
}
