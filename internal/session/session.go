// Package session owns the per-user conversational state. Each user is
// in exactly one flow at a time, modeled as a tagged variant so that
// contradictory flag combinations cannot be represented. Sessions live
// in process memory only: a restart abandons in-flight flows.
package session

import (
	"sync"

	"calorigram/internal/models"
)

// State is the closed set of conversational flows.
type State interface {
	isState()
}

// Idle means no flow is active; unexpected input gets a neutral reply.
type Idle struct{}

// Registering tracks registration progress and the partially built
// profile.
type Registering struct {
	Step  RegStep
	Draft Draft
}

// LoggingMeal is the meal-logging flow. Channel stays empty while the
// user is still choosing the analysis channel; once set, the flow is
// awaiting the matching input.
type LoggingMeal struct {
	Slot    models.MealSlot
	Channel models.Channel
}

// QuickCheck mirrors LoggingMeal but the result is only shown, never
// logged; a usage event is recorded instead.
type QuickCheck struct {
	Channel models.Channel
}

// AwaitingAdminInput waits for a target Telegram ID typed by an
// administrator.
type AwaitingAdminInput struct{}

func (Idle) isState()               {}
func (Registering) isState()        {}
func (LoggingMeal) isState()        {}
func (QuickCheck) isState()         {}
func (AwaitingAdminInput) isState() {}

// RegStep is the cursor inside the registration flow. Steps advance
// strictly in declaration order.
type RegStep int

const (
	StepName RegStep = iota
	StepGender
	StepAge
	StepHeight
	StepWeight
	StepActivity
)

// Draft is the profile under construction during registration.
type Draft struct {
	Name          string
	Gender        string
	Age           int
	Height        float64
	Weight        float64
	ActivityLevel string
}

// Session is the state of one user, valid only inside a Manager.Do
// callback.
type Session struct {
	state State
}

func (s *Session) State() State {
	return s.state
}

// Set replaces the active flow. Any previous flow's partial data is
// discarded; there is no flow history.
func (s *Session) Set(state State) {
	s.state = state
}

func (s *Session) Reset() {
	s.state = Idle{}
}

// Manager holds the sessions of all users, keyed by Telegram ID, and
// serializes event handling per user.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*entry
}

type entry struct {
	mu      sync.Mutex
	session Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*entry)}
}

// Do runs fn with exclusive ownership of the user's session. Events for
// one user are processed in arrival order; events for different users
// run concurrently. The lock is held for the whole callback, including
// any blocking inference or storage calls fn makes, so a user's own
// requests are serialized.
func (m *Manager) Do(telegramID int64, fn func(*Session)) {
	m.mu.Lock()
	e, ok := m.sessions[telegramID]
	if !ok {
		e = &entry{session: Session{state: Idle{}}}
		m.sessions[telegramID] = e
	}
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
}

// Drop removes the user's session entirely, used on data wipe.
func (m *Manager) Drop(telegramID int64) {
	m.mu.Lock()
	delete(m.sessions, telegramID)
	m.mu.Unlock()
}
