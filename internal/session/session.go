// Package session holds the state of one workout-builder UI: the catalog page
// on screen, the cards in each zone, the card being dragged and the exercise
// editor. Drivers call its transition methods; side effects go through the
// injected Backend, Renderer and Notifier.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/treino/internal/api"
	"github.com/claude/treino/internal/catalog"
	"github.com/claude/treino/internal/models"
	"github.com/claude/treino/internal/view"
)

// Backend is the REST API the session talks to.
type Backend interface {
	catalog.Backend
	CreateExercise(ctx context.Context, in api.ExerciseInput) (*models.Exercise, error)
	UploadExercise(ctx context.Context, up api.ExerciseUpload) (*models.Exercise, error)
	UpdateExercise(ctx context.Context, id int64, up api.ExerciseUpload) (*models.Exercise, error)
	DeleteExercise(ctx context.Context, id int64) error
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	SaveWorkout(ctx context.Context, draft models.WorkoutDraft) (int64, error)
	DeleteWorkout(ctx context.Context, id int64) error
}

var _ Backend = (*api.Client)(nil)

// Renderer paints views. Its methods are called with the session lock held
// and must not call back into the session.
type Renderer interface {
	RenderCatalog(v view.Catalog)
	RenderWorkout(v view.Workout)
	RenderWorkouts(workouts []models.Workout)
}

// Notifier surfaces blocking messages and confirmations to the user. It is
// never called with the session lock held.
type Notifier interface {
	Alert(msg string)
	Confirm(prompt string) bool
}

// Ledger remembers promoted external items across sessions.
type Ledger interface {
	Lookup(ext models.Exercise) (models.Exercise, bool, error)
	Record(ext, created models.Exercise) error
	Forget(id int64) error
}

// Options tune a session. Zero values fall back to the defaults.
type Options struct {
	PerPage     int
	LimitExt    int
	Debounce    time.Duration
	BaseURL     string
	Placeholder string
	// Ledger is optional.
	Ledger Ledger
}

const (
	DefaultPerPage  = 24
	DefaultLimitExt = 200
	DefaultDebounce = 250 * time.Millisecond
)

// Session is the controller of one builder UI. All state is guarded by mu;
// network calls run without it.
type Session struct {
	backend  Backend
	fetcher  *catalog.Fetcher
	render   Renderer
	notify   Notifier
	ledger   Ledger
	thumbs   catalog.ThumbnailResolver
	log      *slog.Logger
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	query    models.Query
	seq      uint64
	timer    *time.Timer
	closed   bool
	page     models.Page
	failed   bool
	cards    map[CardID]*Card
	catalog  []CardID
	workout  []CardID
	dragging CardID
	title    string
	saved    []models.Workout
	editor   editorState
}

// New creates a session. Nothing is fetched until Load.
func New(backend Backend, render Renderer, notify Notifier, log *slog.Logger, opts Options) *Session {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.LimitExt <= 0 {
		opts.LimitExt = DefaultLimitExt
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		backend:  backend,
		fetcher:  catalog.NewFetcher(backend, log),
		render:   render,
		notify:   notify,
		ledger:   opts.Ledger,
		thumbs:   catalog.NewThumbnailResolver(opts.BaseURL, opts.Placeholder),
		log:      log,
		debounce: opts.Debounce,
		ctx:      ctx,
		cancel:   cancel,
		query:    models.Query{Page: 1, PerPage: opts.PerPage, LimitExt: opts.LimitExt},
		cards:    make(map[CardID]*Card),
	}
}

// Load fetches the first catalog page and the saved workouts.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()

	s.fetch(ctx, q)
	s.RefreshWorkouts(ctx)
}

// Close stops any pending search and waits for a debounced fetch in flight.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// Query returns the last catalog query.
func (s *Session) Query() models.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Search schedules a search for term after the quiet period. A newer call
// replaces the pending one.
func (s *Session) Search(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		if s.timer != t || s.closed {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.wg.Add(1)
		q := s.query.WithTerm(term)
		s.mu.Unlock()

		defer s.wg.Done()
		s.fetch(s.ctx, q)
	})
	s.timer = t
}

// SearchNow runs a search for term immediately, cancelling a pending one.
func (s *Session) SearchNow(ctx context.Context, term string) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	q := s.query.WithTerm(term)
	s.mu.Unlock()

	s.fetch(ctx, q)
}

// GoToPage re-fetches the last query at page n.
func (s *Session) GoToPage(ctx context.Context, n int) {
	s.mu.Lock()
	q := s.query.WithPage(n)
	s.mu.Unlock()

	s.fetch(ctx, q)
}

// NextPage and PrevPage step from the page on screen.
func (s *Session) NextPage(ctx context.Context) {
	s.mu.Lock()
	n := s.page.Page + 1
	s.mu.Unlock()
	s.GoToPage(ctx, n)
}

func (s *Session) PrevPage(ctx context.Context) {
	s.mu.Lock()
	n := s.page.Page - 1
	s.mu.Unlock()
	s.GoToPage(ctx, max(n, 1))
}

// Reload re-fetches the last query unchanged.
func (s *Session) Reload(ctx context.Context) {
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()

	s.fetch(ctx, q)
}

// fetch loads q and replaces the catalog zone. Only the response of the most
// recent fetch is applied. Failures render the inline error state.
func (s *Session) fetch(ctx context.Context, q models.Query) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.query = q
	s.mu.Unlock()

	page, err := s.fetcher.Fetch(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.log.Debug("discarding stale catalog response", "seq", seq, "latest", s.seq)
		return
	}

	s.clearCatalog()
	if err != nil {
		s.log.Error("loading catalog", "q", q.Q, "page", q.Page, "error", err)
		s.page = models.Page{Page: 1, Pages: 1}
		s.failed = true
		s.render.RenderCatalog(view.FailedCatalog())
		return
	}

	s.failed = false
	s.page = page
	s.query.Page = page.Page
	for _, ex := range page.Items {
		s.catalog = append(s.catalog, s.addCard(ex, ZoneCatalog).ID)
	}
	s.log.Debug("catalog loaded", "q", q.Q, "page", page.Page, "pages", page.Pages, "items", len(page.Items))
	s.render.RenderCatalog(s.catalogView())
}

// State returns the current catalog and workout views.
func (s *Session) State() (view.Catalog, view.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogView(), s.workoutView()
}

func (s *Session) catalogView() view.Catalog {
	if s.failed {
		return view.FailedCatalog()
	}
	cards := make([]view.Card, 0, len(s.catalog))
	for _, id := range s.catalog {
		cards = append(cards, s.cardView(s.cards[id]))
	}
	return view.NewCatalog(cards, s.page.Page, s.page.Pages)
}

func (s *Session) workoutView() view.Workout {
	cards := make([]view.Card, 0, len(s.workout))
	for _, id := range s.workout {
		cards = append(cards, s.cardView(s.cards[id]))
	}
	return view.NewWorkout(s.title, cards)
}

func (s *Session) cardView(c *Card) view.Card {
	return view.NewCard(string(c.ID), c.Exercise, c.Sets, c.Reps, s.thumbs)
}

func (s *Session) renderAll() {
	s.render.RenderCatalog(s.catalogView())
	s.render.RenderWorkout(s.workoutView())
}
