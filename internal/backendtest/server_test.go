package backendtest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/treino/internal/api"
	"github.com/claude/treino/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, opts ...Option) (*Server, *api.Client) {
	t.Helper()
	srv := New(slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, api.NewClient(ts.URL)
}

// TestCatalogPaginates verifies the unified endpoint merges, filters and
// paginates personal and external items.
func TestCatalogPaginates(t *testing.T) {
	_, client := newTestClient(t, Demo()...)

	resp, err := client.ListCatalog(context.Background(), models.Query{Q: "squat", Page: 1, PerPage: 1, LimitExt: 10})
	require.NoError(t, err)

	require.Len(t, resp.Entries(), 1)
	assert.Equal(t, "Barbell Squat", resp.Entries()[0].Titulo)
	assert.Equal(t, models.SourceExternal, resp.Entries()[0].Source)
	require.NotNil(t, resp.Pages)
	assert.Equal(t, 2, *resp.Pages)
	require.NotNil(t, resp.Total)
	assert.Equal(t, 2, *resp.Total)
}

// TestWithoutUnified verifies the 404 that drives clients to the fallback.
func TestWithoutUnified(t *testing.T) {
	_, client := newTestClient(t, WithoutUnified())

	_, err := client.ListCatalog(context.Background(), models.Query{Page: 1, PerPage: 10})
	assert.True(t, api.HasStatus(err, http.StatusNotFound))
}

// TestCreateConflict verifies duplicate titles answer 409 with a message.
func TestCreateConflict(t *testing.T) {
	srv, client := newTestClient(t, WithPersonal(models.Exercise{Titulo: "Squat"}))

	_, err := client.CreateExercise(context.Background(), api.ExerciseInput{Titulo: "squat"})
	require.Error(t, err)
	assert.True(t, api.IsConflict(err))
	assert.Equal(t, "exercício já existe", api.ServerMessage(err, ""))

	created, err := client.CreateExercise(context.Background(), api.ExerciseInput{Titulo: "Squat (catálogo)"})
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.EqualValues(t, 2, *created.ID)
	assert.Len(t, srv.Personal(), 2)
	assert.Equal(t, 2, srv.Hits(http.MethodPost, "/exercicio"))
}

// TestUploadUpdateDelete runs the personal exercise lifecycle over multipart.
func TestUploadUpdateDelete(t *testing.T) {
	srv, client := newTestClient(t)
	ctx := context.Background()

	_, err := client.UploadExercise(ctx, api.ExerciseUpload{Titulo: "Remada"})
	require.True(t, api.HasStatus(err, http.StatusBadRequest), "image is required on create")

	created, err := client.UploadExercise(ctx, api.ExerciseUpload{
		Titulo: "Remada", Musculo: "costas", Descricao: "curvada",
		ImageName: "remada.png", Image: bytes.NewReader([]byte("png")),
	})
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.True(t, strings.HasPrefix(created.Thumbnail, "uploads/"))
	assert.True(t, strings.HasSuffix(created.Thumbnail, "-remada.png"))

	updated, err := client.UpdateExercise(ctx, *created.ID, api.ExerciseUpload{
		Titulo: "Remada baixa", Musculo: "costas", Descricao: "no cabo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Remada baixa", updated.Titulo)
	assert.Equal(t, created.Thumbnail, updated.Thumbnail, "image kept when none is sent")

	require.NoError(t, client.DeleteExercise(ctx, *created.ID))
	assert.Empty(t, srv.Personal())
	assert.True(t, api.HasStatus(client.DeleteExercise(ctx, *created.ID), http.StatusNotFound))
}

// TestWorkoutLifecycle verifies save, list and delete of workouts.
func TestWorkoutLifecycle(t *testing.T) {
	_, client := newTestClient(t, WithPersonal(models.Exercise{Titulo: "Supino"}))
	ctx := context.Background()

	_, err := client.SaveWorkout(ctx, models.WorkoutDraft{Titulo: "A", Exercicios: []models.WorkoutExercise{{ExercicioID: 9}}})
	require.Error(t, err)
	assert.Equal(t, "exercicio 9 não existe", api.ServerMessage(err, ""))

	id, err := client.SaveWorkout(ctx, models.WorkoutDraft{
		Titulo:     "Peito",
		Exercicios: []models.WorkoutExercise{{ExercicioID: 1, Sets: 3, Reps: 12}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	workouts, err := client.ListWorkouts(ctx)
	require.NoError(t, err)
	require.Len(t, workouts, 1)
	assert.Equal(t, 1, workouts[0].TotalExercicios)

	require.NoError(t, client.DeleteWorkout(ctx, id))
	workouts, err = client.ListWorkouts(ctx)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}

// TestFail verifies queued failures are served and then cleared.
func TestFail(t *testing.T) {
	srv, client := newTestClient(t)
	srv.Fail(http.MethodGet, "/treinos", http.StatusInternalServerError, 1)

	_, err := client.ListWorkouts(context.Background())
	assert.True(t, api.HasStatus(err, http.StatusInternalServerError))

	_, err = client.ListWorkouts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, srv.Hits(http.MethodGet, "/treinos"))
}

// TestCORSPreflight verifies OPTIONS requests short-circuit.
func TestCORSPreflight(t *testing.T) {
	srv := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	req := httptest.NewRequest(http.MethodOptions, "/treino", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
