package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/index"
	"github.com/cloo-solutions/dreamcourse/internal/pipetable"
	"github.com/cloo-solutions/dreamcourse/internal/prompt"
	"github.com/cloo-solutions/dreamcourse/internal/telemetry"
	"github.com/google/uuid"
)

// SessionStore keeps sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	IdleSince(ctx context.Context, cutoff time.Time) ([]string, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// ProfileInput is the raw home-screen form.
type ProfileInput struct {
	Name   string `json:"name"`
	School string `json:"school"`
	Job    string `json:"job"`
	Grade  string `json:"grade"`
}

// Profile parses and validates the form.
func (in ProfileInput) Profile() (domain.Profile, error) {
	p := domain.Profile{
		Name:   strings.TrimSpace(in.Name),
		School: strings.TrimSpace(in.School),
		Job:    strings.TrimSpace(in.Job),
	}
	if p.Name == "" || p.School == "" {
		return p, domain.ErrMissingProfileField
	}
	if p.Job == "" {
		return p, domain.ErrMissingJob
	}
	grade, err := domain.ParseGrade(in.Grade)
	if err != nil {
		return p, err
	}
	p.Grade = grade
	return p, p.Validate()
}

// SessionView is a point-in-time copy of a session safe to serialize.
type SessionView struct {
	ID                string              `json:"id"`
	Screen            domain.Screen       `json:"screen"`
	Profile           *domain.Profile     `json:"profile,omitempty"`
	MajorTable        *domain.TableResult `json:"major_table,omitempty"`
	RecommendedMajors []string            `json:"recommended_majors,omitempty"`
	SelectedMajor     string              `json:"selected_major,omitempty"`
	MajorComment      string              `json:"major_comment,omitempty"`
	CurriculumTable   *domain.TableResult `json:"curriculum_table,omitempty"`
	AdmissionTable    *domain.TableResult `json:"admission_table,omitempty"`
	Fault             string              `json:"fault,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	LastActiveAt      time.Time           `json:"last_active_at"`
}

func newSessionView(s *domain.Session) *SessionView {
	v := &SessionView{
		ID:                s.ID,
		Screen:            s.Screen,
		MajorTable:        s.MajorTable,
		RecommendedMajors: RecommendedMajors(s.MajorTable),
		SelectedMajor:     s.SelectedMajor,
		MajorComment:      s.MajorComment,
		CurriculumTable:   s.CurriculumTable,
		AdmissionTable:    s.AdmissionTable,
		Fault:             s.Fault,
		CreatedAt:         s.CreatedAt,
		LastActiveAt:      s.LastActiveAt,
	}
	if s.Profile.Name != "" {
		p := s.Profile
		v.Profile = &p
	}
	return v
}

// RecommendedMajors lists the distinct majors named in a major table.
func RecommendedMajors(t *domain.TableResult) []string {
	return pipetable.UniqueList(t.Column(prompt.MajorsColumn))
}

// SessionOptions configures the guidance flow.
type SessionOptions struct {
	Universities []string
	Comments     map[string]string
	UUIDGen      UUIDGenerator
	Now          func() time.Time
}

// SessionService drives sessions through the guidance flow.
type SessionService struct {
	store        SessionStore
	answers      *AnswerService
	registry     *prompt.Registry
	indexSource  IndexSource
	universities []string
	comments     map[string]string
	uuidGen      UUIDGenerator
	now          func() time.Time

	mu      sync.Mutex
	indexes map[string]index.Index
}

func NewSessionService(store SessionStore, answers *AnswerService, registry *prompt.Registry, indexSource IndexSource, opts SessionOptions) *SessionService {
	if opts.UUIDGen == nil {
		opts.UUIDGen = &DefaultUUIDGenerator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Comments == nil {
		opts.Comments = map[string]string{}
	}
	return &SessionService{
		store:        store,
		answers:      answers,
		registry:     registry,
		indexSource:  indexSource,
		universities: opts.Universities,
		comments:     opts.Comments,
		uuidGen:      opts.UUIDGen,
		now:          opts.Now,
		indexes:      make(map[string]index.Index),
	}
}

// Create starts a session on the home screen.
func (s *SessionService) Create(ctx context.Context) (*SessionView, error) {
	sess := domain.NewSession(s.uuidGen.NewString(), s.now().UTC())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Printf("session: created %s", sess.ID)
	return newSessionView(sess), nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*SessionView, error) {
	var view *SessionView
	err := s.withSession(ctx, id, false, func(ctx context.Context, sess *domain.Session) error {
		view = newSessionView(sess)
		return nil
	})
	return view, err
}

// SubmitProfile validates the profile, builds the session index on first
// use and asks for majors matching the desired job.
func (s *SessionService) SubmitProfile(ctx context.Context, id string, input ProfileInput) (*SessionView, error) {
	var view *SessionView
	err := s.withSession(ctx, id, true, func(ctx context.Context, sess *domain.Session) error {
		if _, err := domain.NextScreen(sess.Screen, domain.EventSubmitProfile); err != nil {
			return err
		}
		profile, err := input.Profile()
		if err != nil {
			return err
		}

		idx, err := s.sessionIndex(ctx, sess)
		if err != nil {
			return err
		}

		answer, err := s.ask(ctx, sess, idx, domain.IntentMajorRecommendation, MajorQuestion(profile.Job))
		if err != nil {
			return err
		}

		sess.Profile = profile
		sess.MajorTable = answer.Table
		if err := sess.Apply(domain.EventSubmitProfile); err != nil {
			return err
		}
		view = newSessionView(sess)
		return nil
	})
	return view, err
}

// SelectMajor records the major to plan for. When the major table names any
// majors, only those are accepted.
func (s *SessionService) SelectMajor(ctx context.Context, id, major string) (*SessionView, error) {
	var view *SessionView
	err := s.withSession(ctx, id, true, func(ctx context.Context, sess *domain.Session) error {
		if sess.Screen != domain.ScreenMajorSelection {
			return domain.Wrap(domain.ErrInvalidTransition, fmt.Errorf("select major on %s", sess.Screen))
		}
		major = strings.TrimSpace(major)
		if major == "" {
			return domain.ErrUnknownMajor
		}
		if recommended := RecommendedMajors(sess.MajorTable); len(recommended) > 0 && !contains(recommended, major) {
			return domain.Wrap(domain.ErrUnknownMajor, fmt.Errorf("%q", major))
		}
		sess.SelectedMajor = major
		view = newSessionView(sess)
		return nil
	})
	return view, err
}

// OpenCurriculum generates the curriculum and admission tables for the
// selected major. Either both tables land or the session stays put.
func (s *SessionService) OpenCurriculum(ctx context.Context, id string) (*SessionView, error) {
	var view *SessionView
	err := s.withSession(ctx, id, true, func(ctx context.Context, sess *domain.Session) error {
		if _, err := domain.NextScreen(sess.Screen, domain.EventOpenCurriculum); err != nil {
			return err
		}
		if sess.SelectedMajor == "" {
			return domain.ErrMajorNotSelected
		}

		idx, err := s.sessionIndex(ctx, sess)
		if err != nil {
			return err
		}

		major := sess.SelectedMajor
		curriculum, err := s.ask(ctx, sess, idx, domain.IntentCurriculumPlan, CurriculumQuestion(sess.Profile.Grade, major))
		if err != nil {
			return err
		}
		admission, err := s.ask(ctx, sess, idx, domain.IntentAdmissionCutoffs, AdmissionQuestion(major, s.universities))
		if err != nil {
			return err
		}

		if err := sess.Apply(domain.EventOpenCurriculum); err != nil {
			return err
		}
		sess.CurriculumTable = curriculum.Table
		sess.AdmissionTable = admission.Table
		sess.MajorComment = s.comments[major]
		view = newSessionView(sess)
		return nil
	})
	return view, err
}

// Back navigates to "majors" or "home".
func (s *SessionService) Back(ctx context.Context, id, target string) (*SessionView, error) {
	var ev domain.Event
	switch target {
	case "majors":
		ev = domain.EventBackToMajors
	case "home":
		ev = domain.EventBackToHome
	default:
		return nil, domain.Wrap(domain.ErrUnknownBackTarget, fmt.Errorf("%q", target))
	}

	var view *SessionView
	err := s.withSession(ctx, id, true, func(ctx context.Context, sess *domain.Session) error {
		if err := sess.Apply(ev); err != nil {
			return err
		}
		telemetry.AddBreadcrumb(ctx, "session", fmt.Sprintf("%s -> %s", ev, sess.Screen))
		view = newSessionView(sess)
		return nil
	})
	return view, err
}

// Delete ends a session and releases its index. A request still running on
// the session completes but its result is dropped.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, sess); err != nil {
		return err
	}
	log.Printf("session: deleted %s", id)
	return nil
}

// EvictIdle deletes sessions inactive for longer than ttl. A session with a
// request in flight is not idle and is left for a later sweep.
func (s *SessionService) EvictIdle(ctx context.Context, ttl time.Duration) (int, error) {
	ids, err := s.store.IdleSince(ctx, s.now().UTC().Add(-ttl))
	if err != nil {
		return 0, err
	}

	evicted := 0
	for _, id := range ids {
		sess, err := s.store.Get(ctx, id)
		if err != nil {
			continue
		}
		if !sess.TryLock() {
			continue
		}
		err = s.remove(ctx, sess)
		sess.Unlock()
		if err != nil {
			log.Printf("session: failed to evict %s: %v", id, err)
			continue
		}
		evicted++
	}
	if evicted > 0 {
		log.Printf("session: evicted %d idle sessions", evicted)
	}
	return evicted, nil
}

// remove marks the session deleted and drops it from the store in one step
// with respect to save, then closes its index.
func (s *SessionService) remove(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	if sess.Deleted() {
		s.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	sess.MarkDeleted()
	err := s.store.Delete(ctx, sess.ID)
	s.mu.Unlock()

	s.releaseIndex(ctx, sess.ID)
	return err
}

// save writes the session back unless it was deleted meanwhile.
func (s *SessionService) save(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.Deleted() {
		return domain.ErrSessionNotFound
	}
	return s.store.Save(ctx, sess)
}

// Close releases every index still held by a session.
func (s *SessionService) Close(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.indexes))
	for id := range s.indexes {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.releaseIndex(ctx, id)
	}
}

func (s *SessionService) withSession(ctx context.Context, id string, mutate bool, fn func(context.Context, *domain.Session) error) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Deleted() {
		return domain.ErrSessionNotFound
	}
	if mutate && sess.Halted() {
		return domain.Wrap(domain.ErrSessionHalted, fmt.Errorf("%s", sess.Fault))
	}

	fnErr := fn(ctx, sess)
	sess.LastActiveAt = s.now().UTC()
	if err := s.save(ctx, sess); err != nil {
		return err
	}
	return fnErr
}

// sessionIndex returns the session's index, acquiring it on first use. A
// failed build halts the session; a caller that went away does not.
func (s *SessionService) sessionIndex(ctx context.Context, sess *domain.Session) (index.Index, error) {
	s.mu.Lock()
	idx, ok := s.indexes[sess.ID]
	s.mu.Unlock()
	if ok {
		return idx, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "session.index", telemetry.SpanAttributes{SessionID: sess.ID, Operation: "acquire"})
	defer span.End()

	idx, err := s.indexSource.Acquire(ctx)
	if err != nil {
		span.SetError(err)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquire index: %w", ctx.Err())
		}
		sess.Fault = err.Error()
		log.Printf("session: %s halted, index unavailable: %v", sess.ID, err)
		return nil, domain.Wrap(domain.ErrSessionHalted, err)
	}

	s.mu.Lock()
	if sess.Deleted() {
		s.mu.Unlock()
		if err := idx.Close(context.WithoutCancel(ctx)); err != nil {
			log.Printf("session: failed to close index for deleted %s: %v", sess.ID, err)
		}
		return nil, domain.ErrSessionNotFound
	}
	s.indexes[sess.ID] = idx
	s.mu.Unlock()
	return idx, nil
}

func (s *SessionService) releaseIndex(ctx context.Context, id string) {
	s.mu.Lock()
	idx, ok := s.indexes[id]
	delete(s.indexes, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := idx.Close(ctx); err != nil {
		log.Printf("session: failed to close index for %s: %v", id, err)
	}
}

func (s *SessionService) ask(ctx context.Context, sess *domain.Session, idx index.Index, intent domain.Intent, question string) (*Answer, error) {
	contract, err := s.registry.Get(intent)
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartSpan(ctx, "session.ask", telemetry.SpanAttributes{SessionID: sess.ID, Intent: string(intent), Operation: "ask"})
	defer span.End()
	return s.answers.Ask(ctx, idx, contract, question)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
