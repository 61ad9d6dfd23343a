package session

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/claude/treino/internal/api"
	"github.com/claude/treino/internal/models"
	"github.com/claude/treino/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedSession(t *testing.T, b *fakeBackend, opts Options) (*Session, *recorder, *notifier) {
	t.Helper()
	s, r, n := newTestSession(t, b, opts)
	s.Reload(context.Background())
	return s, r, n
}

// TestDropPromotesExternalOnce verifies an external card is persisted when it
// enters the workout zone, and never again afterwards.
func TestDropPromotesExternalOnce(t *testing.T) {
	ext := external("Squat")
	ext.Descricao = strings.Repeat("d", 300)
	ext.Thumbnail = "https://cdn/squat.gif"
	b := &fakeBackend{items: []models.Exercise{ext}}
	s, r, _ := loadedSession(t, b, Options{})
	ctx := context.Background()

	id := catalogCard(t, s, 0)
	require.NoError(t, s.DragStart(id))
	assert.Equal(t, id, s.Dragging())
	require.NoError(t, s.Drop(ctx, ZoneWorkout))
	assert.Empty(t, s.Dragging())

	creates := b.createCalls()
	require.Len(t, creates, 1)
	assert.Equal(t, "Squat", creates[0].Titulo)
	assert.Len(t, []rune(creates[0].Descricao), models.MaxDescricao, "body is clamped")

	c, ok := s.Card(id)
	require.True(t, ok)
	assert.Equal(t, ZoneWorkout, c.Zone)
	assert.True(t, c.Exercise.Persisted())
	assert.Equal(t, models.SourcePersonal, c.Exercise.Source)
	assert.Equal(t, "uploads/confirmed.png", c.Exercise.Thumbnail)

	cat, wk := s.State()
	assert.Empty(t, cat.Cards, "card left the catalog")
	require.Len(t, wk.Cards, 1)
	assert.Equal(t, view.BadgePersonal, wk.Cards[0].Badge)
	assert.Equal(t, "http://api/uploads/confirmed.png", wk.Cards[0].Thumbnail)
	assert.False(t, wk.Empty)

	// Back to the catalog and into the workout again: no second request.
	require.NoError(t, s.RemoveFromWorkout(id))
	require.NoError(t, s.MoveToWorkout(ctx, id))
	assert.Len(t, b.createCalls(), 1)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.NotEmpty(t, r.zones)
}

// TestDropConflictRetriesWithSuffix verifies a 409 is retried once with the
// disambiguated title.
func TestDropConflictRetriesWithSuffix(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{external("Squat")}}
	b.createFn = func(in api.ExerciseInput) (*models.Exercise, error) {
		if in.Titulo == "Squat" {
			return nil, &api.StatusError{Method: "POST", Path: "/exercicio", Status: http.StatusConflict}
		}
		return &models.Exercise{ID: models.Int64(9), Titulo: in.Titulo}, nil
	}
	s, _, n := loadedSession(t, b, Options{})

	id := catalogCard(t, s, 0)
	require.NoError(t, s.MoveToWorkout(context.Background(), id))

	creates := b.createCalls()
	require.Len(t, creates, 2)
	assert.Equal(t, "Squat (catálogo)", creates[1].Titulo)

	c, _ := s.Card(id)
	assert.Equal(t, "Squat (catálogo)", c.Exercise.Titulo)
	assert.EqualValues(t, 9, *c.Exercise.ID)
	assert.Equal(t, models.SourcePersonal, c.Exercise.Source, "source is set even when the server omits it")
	assert.Empty(t, n.alerts)
}

// TestDropConflictSuffixClamped verifies the retried title keeps the suffix
// and still fits the column.
func TestDropConflictSuffixClamped(t *testing.T) {
	long := strings.Repeat("a", models.MaxTitulo)
	b := &fakeBackend{items: []models.Exercise{external(long)}}
	b.createFn = func(in api.ExerciseInput) (*models.Exercise, error) {
		return nil, &api.StatusError{Status: http.StatusConflict}
	}
	s, _, _ := loadedSession(t, b, Options{})

	err := s.MoveToWorkout(context.Background(), catalogCard(t, s, 0))
	require.Error(t, err)

	creates := b.createCalls()
	require.Len(t, creates, 2, "only one retry")
	assert.Equal(t, long[:models.MaxTitulo-len([]rune(ConflictSuffix))]+ConflictSuffix, creates[1].Titulo)
	assert.Equal(t, models.MaxTitulo, len([]rune(creates[1].Titulo)))
}

// TestDropPromotionFailure verifies a failed promotion keeps the card in the
// catalog, alerts the user and resets the drag.
func TestDropPromotionFailure(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{external("Squat")}}
	b.createFn = func(api.ExerciseInput) (*models.Exercise, error) {
		return nil, &api.StatusError{Status: http.StatusInternalServerError}
	}
	s, _, n := loadedSession(t, b, Options{})

	id := catalogCard(t, s, 0)
	require.NoError(t, s.DragStart(id))
	err := s.Drop(context.Background(), ZoneWorkout)

	require.Error(t, err)
	assert.True(t, Alerted(err))
	assert.Equal(t, []string{MsgPromotionFailed}, n.alerts)
	assert.Len(t, b.createCalls(), 1, "non-conflict errors are not retried")
	assert.Empty(t, s.Dragging())

	c, ok := s.Card(id)
	require.True(t, ok)
	assert.Equal(t, ZoneCatalog, c.Zone)
	assert.Equal(t, models.SourceExternal, c.Exercise.Source)
	_, wk := s.State()
	assert.True(t, wk.Empty)
}

// TestDropMissingID verifies a create answer without id fails the promotion.
func TestDropMissingID(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{external("Squat")}}
	b.createFn = func(api.ExerciseInput) (*models.Exercise, error) {
		return &models.Exercise{Titulo: "Squat"}, nil
	}
	s, _, n := loadedSession(t, b, Options{})

	err := s.MoveToWorkout(context.Background(), catalogCard(t, s, 0))
	require.Error(t, err)
	assert.Equal(t, []string{MsgPromotionFailed}, n.alerts)
}

// TestDropPersonalSkipsPromotion verifies personal cards move without a
// request.
func TestDropPersonalSkipsPromotion(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{personal(3, "Supino")}}
	s, _, _ := loadedSession(t, b, Options{})

	require.NoError(t, s.MoveToWorkout(context.Background(), catalogCard(t, s, 0)))
	assert.Empty(t, b.createCalls())
	assert.Len(t, s.WorkoutCards(), 1)
}

// TestDropIntoCatalogClearsInputs verifies a card returned to the catalog
// loses its sets and reps.
func TestDropIntoCatalogClearsInputs(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{personal(3, "Supino")}}
	s, _, _ := loadedSession(t, b, Options{})
	ctx := context.Background()

	id := catalogCard(t, s, 0)
	require.NoError(t, s.MoveToWorkout(ctx, id))
	require.NoError(t, s.SetReps(id, "3", "12"))

	require.NoError(t, s.DragStart(id))
	require.NoError(t, s.Drop(ctx, ZoneCatalog))

	c, _ := s.Card(id)
	assert.Equal(t, ZoneCatalog, c.Zone)
	assert.Empty(t, c.Sets)
	assert.Empty(t, c.Reps)
	assert.ErrorIs(t, s.SetReps(id, "1", "1"), ErrUnknownCard, "inputs only exist in the workout zone")
}

// TestDragStateMachine covers the idle transitions.
func TestDragStateMachine(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{personal(1, "A"), personal(2, "B")}}
	s, _, _ := loadedSession(t, b, Options{})
	ctx := context.Background()

	assert.ErrorIs(t, s.Drop(ctx, ZoneWorkout), ErrNotDragging)
	assert.ErrorIs(t, s.DragStart("nope"), ErrUnknownCard)

	a, bID := catalogCard(t, s, 0), catalogCard(t, s, 1)
	require.NoError(t, s.DragStart(a))
	require.NoError(t, s.DragStart(bID))
	assert.Equal(t, bID, s.Dragging(), "a new drag replaces the held card")

	s.CancelDrag()
	assert.Empty(t, s.Dragging())
	c, _ := s.Card(bID)
	assert.Equal(t, ZoneCatalog, c.Zone, "cancel leaves the card where it was")

	require.NoError(t, s.DragStart(a))
	assert.Error(t, s.Drop(ctx, Zone("floor")))
	assert.Equal(t, a, s.Dragging(), "an invalid zone keeps the drag")
}

// TestPageChangeDuringDrag verifies a held card survives a catalog reload
// and can still be dropped.
func TestPageChangeDuringDrag(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{personal(1, "A"), personal(2, "B")}}
	s, _, _ := loadedSession(t, b, Options{PerPage: 1})
	ctx := context.Background()

	id := catalogCard(t, s, 0)
	require.NoError(t, s.DragStart(id))
	s.GoToPage(ctx, 2)
	require.NoError(t, s.Drop(ctx, ZoneWorkout))

	cards := s.WorkoutCards()
	require.Len(t, cards, 1)
	assert.Equal(t, "A", cards[0].Exercise.Titulo)
}

// TestPromotionInFlight verifies a card being promoted cannot be dragged
// again until the promotion finishes.
func TestPromotionInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	b := &fakeBackend{items: []models.Exercise{external("Squat")}}
	b.createFn = func(in api.ExerciseInput) (*models.Exercise, error) {
		close(entered)
		<-release
		return &models.Exercise{ID: models.Int64(1), Titulo: in.Titulo}, nil
	}
	s, _, _ := loadedSession(t, b, Options{})
	ctx := context.Background()
	id := catalogCard(t, s, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.MoveToWorkout(ctx, id))
	}()
	<-entered

	assert.ErrorIs(t, s.DragStart(id), ErrPromotionInFlight)
	close(release)
	wg.Wait()

	assert.Len(t, b.createCalls(), 1)
	c, _ := s.Card(id)
	assert.Equal(t, ZoneWorkout, c.Zone)
}

// TestPromotionUsesLedger verifies an item promoted in an earlier session is
// reused without a request, and new promotions are recorded.
func TestPromotionUsesLedger(t *testing.T) {
	led := &fakeLedger{entries: map[string]models.Exercise{
		"Squat": personal(77, "Squat"),
	}}
	b := &fakeBackend{
		items:    []models.Exercise{external("Squat"), external("Lunge")},
		personal: []models.Exercise{{ID: models.Int64(77), Titulo: "Squat", Musculo: "legs"}},
	}
	s, _, _ := loadedSession(t, b, Options{Ledger: led})
	ctx := context.Background()

	squat, lunge := catalogCard(t, s, 0), catalogCard(t, s, 1)
	require.NoError(t, s.MoveToWorkout(ctx, squat))
	assert.Empty(t, b.createCalls())
	c, _ := s.Card(squat)
	assert.EqualValues(t, 77, *c.Exercise.ID)

	require.NoError(t, s.MoveToWorkout(ctx, lunge))
	assert.Len(t, b.createCalls(), 1)
	assert.Contains(t, led.entries, "Lunge")
}

// TestRemoveFromWorkout verifies the erase action returns the card.
func TestRemoveFromWorkout(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{personal(1, "A")}}
	s, _, _ := loadedSession(t, b, Options{})

	id := catalogCard(t, s, 0)
	assert.ErrorIs(t, s.RemoveFromWorkout(id), ErrUnknownCard, "not in the workout yet")
	require.NoError(t, s.MoveToWorkout(context.Background(), id))
	require.NoError(t, s.SetReps(id, "4", "8"))
	require.NoError(t, s.RemoveFromWorkout(id))

	cat, wk := s.State()
	assert.True(t, wk.Empty)
	require.Len(t, cat.Cards, 1)
	assert.Empty(t, cat.Cards[0].Sets)
	assert.ErrorIs(t, s.RemoveFromWorkout(id), ErrUnknownCard)
}

// TestDropAfterWorkoutReplaced verifies loading a saved workout while a
// workout card is held leaves the session idle, and a late drop is refused
// instead of landing a card that no longer exists.
func TestDropAfterWorkoutReplaced(t *testing.T) {
	b := &fakeBackend{
		items:    []models.Exercise{personal(1, "A")},
		personal: []models.Exercise{personal(1, "A")},
		workouts: []models.Workout{{ID: 9, Titulo: "Pernas", Exercicios: []models.WorkoutExercise{{ExercicioID: 1, Sets: 3, Reps: 10}}}},
	}
	s, _, _ := loadedSession(t, b, Options{})
	ctx := context.Background()

	id := catalogCard(t, s, 0)
	require.NoError(t, s.MoveToWorkout(ctx, id))
	require.NoError(t, s.DragStart(id))
	require.NoError(t, s.LoadWorkout(ctx, 9))
	assert.Empty(t, s.Dragging(), "held card was replaced")

	assert.ErrorIs(t, s.Drop(ctx, ZoneWorkout), ErrNotDragging)
	assert.Empty(t, s.Dragging())

	_, wk := s.State()
	require.Len(t, wk.Cards, 1)
	assert.Equal(t, "3", wk.Cards[0].Sets)
}

// TestDropForgottenCard verifies a drop whose held card is gone is refused
// and returns the session to idle.
func TestDropForgottenCard(t *testing.T) {
	b := &fakeBackend{items: []models.Exercise{personal(1, "A")}}
	s, _, _ := loadedSession(t, b, Options{})

	id := catalogCard(t, s, 0)
	require.NoError(t, s.DragStart(id))
	s.mu.Lock()
	delete(s.cards, id)
	s.mu.Unlock()

	assert.ErrorIs(t, s.Drop(context.Background(), ZoneWorkout), ErrUnknownCard)
	assert.Empty(t, s.Dragging())
}

// TestPromotionSkipsDeletedLedgerEntry verifies a remembered promotion whose
// exercise was deleted elsewhere is forgotten and the item promoted again.
func TestPromotionSkipsDeletedLedgerEntry(t *testing.T) {
	led := &fakeLedger{entries: map[string]models.Exercise{
		"Squat": personal(77, "Squat"),
	}}
	b := &fakeBackend{items: []models.Exercise{external("Squat")}}
	s, _, n := loadedSession(t, b, Options{Ledger: led})

	id := catalogCard(t, s, 0)
	require.NoError(t, s.MoveToWorkout(context.Background(), id))

	assert.Len(t, b.createCalls(), 1)
	assert.Equal(t, []int64{77}, led.forgotten)
	c, _ := s.Card(id)
	require.NotNil(t, c.Exercise.ID)
	assert.NotEqualValues(t, 77, *c.Exercise.ID)
	assert.Equal(t, *c.Exercise.ID, *led.entries["Squat"].ID)
	assert.Empty(t, n.alerts)
}
