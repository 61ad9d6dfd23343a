package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/claude/treino/internal/api"
	"github.com/claude/treino/internal/models"
	"github.com/claude/treino/internal/view"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	mu sync.Mutex

	items     []models.Exercise
	catalogFn func(q models.Query) (*api.CatalogResponse, error)
	queries   []models.Query

	personal    []models.Exercise
	personalErr error
	external    []map[string]any
	externalErr error

	createFn func(in api.ExerciseInput) (*models.Exercise, error)
	creates  []api.ExerciseInput
	nextID   int64

	uploads    []api.ExerciseUpload
	updates    []int64
	exerciseFn func() error
	deleted    []int64

	workouts         []models.Workout
	workoutsErr      error
	listWorkoutCalls int
	drafts           []models.WorkoutDraft
	saveErr          error
	deletedWorkouts  []int64
	deleteWorkoutErr error
}

func (b *fakeBackend) ListCatalog(_ context.Context, q models.Query) (*api.CatalogResponse, error) {
	b.mu.Lock()
	b.queries = append(b.queries, q)
	fn, items := b.catalogFn, b.items
	b.mu.Unlock()

	if fn != nil {
		return fn(q)
	}
	window, page, pages := models.Paginate(items, q.Page, q.PerPage)
	total := len(items)
	return &api.CatalogResponse{Items: window, Page: &page, Pages: &pages, Total: &total}, nil
}

func (b *fakeBackend) ListPersonal(context.Context) ([]models.Exercise, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.personal, b.personalErr
}

func (b *fakeBackend) ListExternal(context.Context, int, string) ([]map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.external, b.externalErr
}

func (b *fakeBackend) CreateExercise(_ context.Context, in api.ExerciseInput) (*models.Exercise, error) {
	b.mu.Lock()
	b.creates = append(b.creates, in)
	fn := b.createFn
	b.nextID++
	id := b.nextID + 100
	b.mu.Unlock()

	if fn != nil {
		return fn(in)
	}
	return &models.Exercise{
		ID:        models.Int64(id),
		Titulo:    in.Titulo,
		Musculo:   in.Musculo,
		Descricao: in.Descricao,
		Thumbnail: "uploads/confirmed.png",
		Source:    models.SourcePersonal,
	}, nil
}

func (b *fakeBackend) UploadExercise(_ context.Context, up api.ExerciseUpload) (*models.Exercise, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, up)
	if b.exerciseFn != nil {
		if err := b.exerciseFn(); err != nil {
			return nil, err
		}
	}
	return &models.Exercise{ID: models.Int64(1), Titulo: up.Titulo, Source: models.SourcePersonal}, nil
}

func (b *fakeBackend) UpdateExercise(_ context.Context, id int64, up api.ExerciseUpload) (*models.Exercise, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, id)
	b.uploads = append(b.uploads, up)
	if b.exerciseFn != nil {
		if err := b.exerciseFn(); err != nil {
			return nil, err
		}
	}
	return &models.Exercise{ID: models.Int64(id), Titulo: up.Titulo, Source: models.SourcePersonal}, nil
}

func (b *fakeBackend) DeleteExercise(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	if b.exerciseFn != nil {
		return b.exerciseFn()
	}
	return nil
}

func (b *fakeBackend) ListWorkouts(context.Context) ([]models.Workout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listWorkoutCalls++
	return b.workouts, b.workoutsErr
}

func (b *fakeBackend) SaveWorkout(_ context.Context, draft models.WorkoutDraft) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drafts = append(b.drafts, draft)
	if b.saveErr != nil {
		return 0, b.saveErr
	}
	return 5, nil
}

func (b *fakeBackend) DeleteWorkout(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletedWorkouts = append(b.deletedWorkouts, id)
	return b.deleteWorkoutErr
}

func (b *fakeBackend) catalogCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queries)
}

func (b *fakeBackend) createCalls() []api.ExerciseInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.ExerciseInput(nil), b.creates...)
}

type recorder struct {
	mu       sync.Mutex
	catalogs []view.Catalog
	zones    []view.Workout
	lists    [][]models.Workout
}

func (r *recorder) RenderCatalog(v view.Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs = append(r.catalogs, v)
}

func (r *recorder) RenderWorkout(v view.Workout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones = append(r.zones, v)
}

func (r *recorder) RenderWorkouts(workouts []models.Workout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, workouts)
}

func (r *recorder) lastCatalog() view.Catalog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.catalogs) == 0 {
		return view.Catalog{}
	}
	return r.catalogs[len(r.catalogs)-1]
}

type notifier struct {
	mu       sync.Mutex
	alerts   []string
	prompts  []string
	decision bool
}

func (n *notifier) Alert(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, msg)
}

func (n *notifier) Confirm(prompt string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompts = append(n.prompts, prompt)
	return n.decision
}

type fakeLedger struct {
	entries   map[string]models.Exercise
	forgotten []int64
}

func (l *fakeLedger) Lookup(ext models.Exercise) (models.Exercise, bool, error) {
	ex, ok := l.entries[ext.Titulo]
	return ex, ok, nil
}

func (l *fakeLedger) Record(ext, created models.Exercise) error {
	if l.entries == nil {
		l.entries = make(map[string]models.Exercise)
	}
	l.entries[ext.Titulo] = created
	return nil
}

func (l *fakeLedger) Forget(id int64) error {
	l.forgotten = append(l.forgotten, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, b Backend, opts Options) (*Session, *recorder, *notifier) {
	t.Helper()
	r := &recorder{}
	n := &notifier{decision: true}
	if opts.BaseURL == "" {
		opts.BaseURL = "http://api"
	}
	s := New(b, r, n, testLogger(), opts)
	t.Cleanup(s.Close)
	return s, r, n
}

func external(title string) models.Exercise {
	return models.Exercise{Titulo: title, Musculo: "legs", Source: models.SourceExternal}
}

func personal(id int64, title string) models.Exercise {
	return models.Exercise{ID: models.Int64(id), Titulo: title, Source: models.SourcePersonal}
}

// catalogCard returns the id of the i-th card on screen.
func catalogCard(t *testing.T, s *Session, i int) CardID {
	t.Helper()
	v, _ := s.State()
	if i >= len(v.Cards) {
		t.Fatalf("catalog has %d cards, want index %d", len(v.Cards), i)
	}
	return CardID(v.Cards[i].ID)
}
