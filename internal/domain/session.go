package domain

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Screen is the step of the guidance flow a session is on.
type Screen string

const (
	ScreenHome           Screen = "home"
	ScreenMajorSelection Screen = "major_selection"
	ScreenCurriculum     Screen = "curriculum"
)

// Event moves a session between screens.
type Event string

const (
	EventSubmitProfile  Event = "submit_profile"
	EventOpenCurriculum Event = "open_curriculum"
	EventBackToMajors   Event = "back_to_majors"
	EventBackToHome     Event = "back_to_home"
)

var transitions = map[Screen]map[Event]Screen{
	ScreenHome: {
		EventSubmitProfile: ScreenMajorSelection,
	},
	ScreenMajorSelection: {
		EventOpenCurriculum: ScreenCurriculum,
		EventBackToHome:     ScreenHome,
	},
	ScreenCurriculum: {
		EventBackToMajors: ScreenMajorSelection,
	},
}

// NextScreen is the transition function of the session state machine.
func NextScreen(from Screen, ev Event) (Screen, error) {
	next, ok := transitions[from][ev]
	if !ok {
		return from, Wrap(ErrInvalidTransition, fmt.Errorf("%s on %s", ev, from))
	}
	return next, nil
}

// Session is the per-user state of one guidance flow.
type Session struct {
	mu      sync.Mutex
	deleted atomic.Bool

	ID              string
	Screen          Screen
	Profile         Profile
	MajorTable      *TableResult
	SelectedMajor   string
	MajorComment    string
	CurriculumTable *TableResult
	AdmissionTable  *TableResult
	Fault           string
	CreatedAt       time.Time
	LastActiveAt    time.Time
}

// NewSession returns a session on the home screen.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Screen:       ScreenHome,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Lock serializes interactions on one session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// TryLock takes the session only if no interaction is running on it.
func (s *Session) TryLock() bool { return s.mu.TryLock() }

// MarkDeleted flags the session as removed. Work still running on it must
// not be saved afterwards.
func (s *Session) MarkDeleted() { s.deleted.Store(true) }

func (s *Session) Deleted() bool { return s.deleted.Load() }

// Halted reports whether a fatal error stopped the session.
func (s *Session) Halted() bool {
	return s.Fault != ""
}

// Apply runs a transition and clears the state the target screen must not carry.
func (s *Session) Apply(ev Event) error {
	if ev == EventOpenCurriculum && s.SelectedMajor == "" {
		return ErrMajorNotSelected
	}

	next, err := NextScreen(s.Screen, ev)
	if err != nil {
		return err
	}

	switch ev {
	case EventBackToMajors:
		s.CurriculumTable = nil
		s.AdmissionTable = nil
		s.MajorComment = ""
	case EventBackToHome:
		s.MajorTable = nil
		s.SelectedMajor = ""
		s.MajorComment = ""
		s.CurriculumTable = nil
		s.AdmissionTable = nil
	}

	s.Screen = next
	return nil
}
