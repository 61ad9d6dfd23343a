package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/claude/treino/internal/api"
	"github.com/claude/treino/internal/models"
)

// BuildDraft collects the workout zone into a submittable draft. Cards
// without a positive exercise id are left out; empty or non-numeric sets and
// reps become 0.
func BuildDraft(title string, cards []Card) (models.WorkoutDraft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.WorkoutDraft{}, ErrTitleRequired
	}
	if len(cards) == 0 {
		return models.WorkoutDraft{}, ErrNoExercises
	}

	draft := models.WorkoutDraft{Titulo: title}
	for _, c := range cards {
		if c.Exercise.ID == nil || *c.Exercise.ID <= 0 {
			continue
		}
		draft.Exercicios = append(draft.Exercicios, models.WorkoutExercise{
			ExercicioID: *c.Exercise.ID,
			Sets:        atoiOrZero(c.Sets),
			Reps:        atoiOrZero(c.Reps),
		})
	}
	if len(draft.Exercicios) == 0 {
		return models.WorkoutDraft{}, ErrNoPersistedExercises
	}
	return draft, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// SaveWorkout posts the workout zone and refreshes the saved list. It returns
// the new workout id, or 0 when the backend does not send one.
func (s *Session) SaveWorkout(ctx context.Context) (int64, error) {
	s.mu.Lock()
	title := s.title
	cards := make([]Card, 0, len(s.workout))
	for _, id := range s.workout {
		cards = append(cards, *s.cards[id])
	}
	s.mu.Unlock()

	draft, err := BuildDraft(title, cards)
	var ve *ValidationError
	if errors.As(err, &ve) {
		return 0, s.invalid(ve)
	}

	id, err := s.backend.SaveWorkout(ctx, draft)
	if err != nil {
		s.log.Error("saving workout", "titulo", draft.Titulo, "error", err)
		return 0, s.fail(api.ServerMessage(err, MsgSaveFailed), err)
	}
	s.log.Info("workout saved", "id", id, "titulo", draft.Titulo, "exercicios", len(draft.Exercicios))
	s.notify.Alert(MsgSaved)

	if err := s.RefreshWorkouts(ctx); err != nil {
		s.log.Warn("refreshing workouts after save", "error", err)
	}
	return id, nil
}

// Workouts returns the last fetched saved workouts.
func (s *Session) Workouts() []models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

// RefreshWorkouts reloads and renders the saved workout list. A failure keeps
// the previous list on screen.
func (s *Session) RefreshWorkouts(ctx context.Context) error {
	workouts, err := s.backend.ListWorkouts(ctx)
	if err != nil {
		s.log.Warn("loading workouts", "error", err)
		return fmt.Errorf("loading workouts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = workouts
	s.render.RenderWorkouts(workouts)
	return nil
}

// DeleteWorkout asks for confirmation, deletes workout id and refreshes the
// saved list.
func (s *Session) DeleteWorkout(ctx context.Context, id int64) error {
	w, err := s.findWorkout(ctx, id)
	if err != nil {
		return err
	}
	if !s.notify.Confirm(fmt.Sprintf("Excluir o treino %q?", w.Titulo)) {
		return ErrCancelled
	}

	if err := s.backend.DeleteWorkout(ctx, id); err != nil {
		s.log.Error("deleting workout", "id", id, "error", err)
		return s.fail(api.ServerMessage(err, MsgDeleteFailed), err)
	}
	s.log.Info("workout deleted", "id", id)

	if err := s.RefreshWorkouts(ctx); err != nil {
		s.log.Warn("refreshing workouts after delete", "error", err)
	}
	return nil
}

// LoadWorkout replaces the workout zone with saved workout id. Exercises no
// longer in the personal list are skipped.
func (s *Session) LoadWorkout(ctx context.Context, id int64) error {
	w, err := s.fetchWorkout(ctx, id)
	if err != nil {
		return err
	}
	personal, err := s.backend.ListPersonal(ctx)
	if err != nil {
		return fmt.Errorf("loading workout %d: %w", id, err)
	}
	byID := make(map[int64]models.Exercise, len(personal))
	for _, ex := range personal {
		if ex.ID != nil {
			ex.Source = models.SourcePersonal
			byID[*ex.ID] = ex
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearWorkout()
	s.title = w.Titulo
	skipped := 0
	for _, item := range w.Exercicios {
		ex, ok := byID[item.ExercicioID]
		if !ok {
			skipped++
			continue
		}
		c := s.addCard(ex, ZoneWorkout)
		c.Sets, c.Reps = strconv.Itoa(item.Sets), strconv.Itoa(item.Reps)
		s.workout = append(s.workout, c.ID)
	}
	if skipped > 0 {
		s.log.Warn("workout references missing exercises", "id", id, "skipped", skipped)
	}
	s.render.RenderWorkout(s.workoutView())
	return nil
}

// findWorkout looks in the saved list first and asks the backend otherwise.
func (s *Session) findWorkout(ctx context.Context, id int64) (models.Workout, error) {
	s.mu.Lock()
	i := slices.IndexFunc(s.saved, func(w models.Workout) bool { return w.ID == id })
	if i >= 0 {
		w := s.saved[i]
		s.mu.Unlock()
		return w, nil
	}
	s.mu.Unlock()
	return s.fetchWorkout(ctx, id)
}

func (s *Session) fetchWorkout(ctx context.Context, id int64) (models.Workout, error) {
	workouts, err := s.backend.ListWorkouts(ctx)
	if err != nil {
		return models.Workout{}, fmt.Errorf("loading workouts: %w", err)
	}
	for _, w := range workouts {
		if w.ID == id {
			return w, nil
		}
	}
	return models.Workout{}, fmt.Errorf("workout %d: %w", id, ErrUnknownWorkout)
}
