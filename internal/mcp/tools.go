package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/claude/treino/internal/models"
	"github.com/claude/treino/internal/session"
	"github.com/claude/treino/internal/view"
	"github.com/mark3labs/mcp-go/mcp"
)

// stateResult is what every tool answers with: the screen after the call
// plus any message the session raised.
type stateResult struct {
	Catalog  view.Catalog     `json:"catalog"`
	Workout  view.Workout     `json:"workout"`
	Messages []string         `json:"messages,omitempty"`
	Workouts []models.Workout `json:"workouts,omitempty"`
	SavedID  int64            `json:"saved_id,omitempty"`
}

// --- Tool definitions ---

var toolSearchCatalog = mcp.NewTool("search_catalog",
	mcp.WithDescription("Search personal and external exercises by title or muscle (case-insensitive substring). Returns page 1 of the results. An empty query lists everything."),
	mcp.WithString("q", mcp.Description("Search term, e.g. 'squat' or 'peito'")),
)

var toolGoToPage = mcp.NewTool("go_to_page",
	mcp.WithDescription("Show another page of the last search. Out of range pages are clamped."),
	mcp.WithNumber("page", mcp.Required(), mcp.Description("1-based page number")),
)

var toolShowState = mcp.NewTool("show_state",
	mcp.WithDescription("Return the catalog page on screen and the workout being assembled."),
)

var toolAddToWorkout = mcp.NewTool("add_to_workout",
	mcp.WithDescription("Move a catalog card into the workout. External exercises are saved to the personal catalog first."),
	mcp.WithString("card", mcp.Required(), mcp.Description("Card id from catalog.cards[].id")),
)

var toolRemoveFromWorkout = mcp.NewTool("remove_from_workout",
	mcp.WithDescription("Send a workout card back to the catalog, clearing its sets and reps."),
	mcp.WithString("card", mcp.Required(), mcp.Description("Card id from workout.cards[].id")),
)

var toolSetReps = mcp.NewTool("set_reps",
	mcp.WithDescription("Set the sets and reps of a workout card. Empty or non-numeric values are saved as 0."),
	mcp.WithString("card", mcp.Required(), mcp.Description("Card id from workout.cards[].id")),
	mcp.WithString("sets", mcp.Description("Number of sets")),
	mcp.WithString("reps", mcp.Description("Repetitions per set")),
)

var toolSetTitle = mcp.NewTool("set_title",
	mcp.WithDescription("Set the title of the workout being assembled."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Workout title")),
)

var toolSaveWorkout = mcp.NewTool("save_workout",
	mcp.WithDescription("Save the assembled workout. Needs a title and at least one card."),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List saved workouts with their exercise counts."),
)

var toolLoadWorkout = mcp.NewTool("load_workout",
	mcp.WithDescription("Replace the workout being assembled with a saved one."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Saved workout id")),
)

var toolDeleteWorkout = mcp.NewTool("delete_workout",
	mcp.WithDescription("Delete a saved workout."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Saved workout id")),
	mcp.WithBoolean("confirm", mcp.Description("Must be true to delete")),
)

var toolEditExercise = mcp.NewTool("edit_exercise",
	mcp.WithDescription("Change a personal exercise shown on the current catalog page. The image is kept."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Exercise id from catalog.cards[].exercise_id")),
	mcp.WithString("titulo", mcp.Required(), mcp.Description("Title")),
	mcp.WithString("musculo", mcp.Required(), mcp.Description("Target muscle")),
	mcp.WithString("descricao", mcp.Required(), mcp.Description("Description")),
)

var toolDeleteExercise = mcp.NewTool("delete_exercise",
	mcp.WithDescription("Delete a personal exercise."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Exercise id")),
	mcp.WithBoolean("confirm", mcp.Description("Must be true to delete")),
)

// --- Tool handlers ---

// run executes fn with the session notifier primed and answers with the
// resulting state. Cancelled confirmations are not errors.
func (h *handlers) run(name string, confirm bool, fn func(res *stateResult) error) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.notes.begin(confirm)
	var res stateResult
	err := fn(&res)
	res.Messages = h.notes.drain()

	if err != nil && !errors.Is(err, session.ErrCancelled) {
		h.log.Debug("mcp tool failed", "tool", name, "error", err)
		msg := err.Error()
		if session.Alerted(err) && len(res.Messages) > 0 {
			msg = strings.Join(res.Messages, "\n")
		}
		return mcp.NewToolResultError(msg), nil
	}

	res.Catalog, res.Workout = h.sess.State()
	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) searchCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := req.GetString("q", "")
	return h.run("search_catalog", false, func(*stateResult) error {
		h.sess.SearchNow(ctx, q)
		return nil
	})
}

func (h *handlers) goToPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := req.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError("page parameter is required"), nil
	}
	return h.run("go_to_page", false, func(*stateResult) error {
		h.sess.GoToPage(ctx, page)
		return nil
	})
}

func (h *handlers) showState(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run("show_state", false, func(*stateResult) error { return nil })
}

func (h *handlers) addToWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	card, err := req.RequireString("card")
	if err != nil {
		return mcp.NewToolResultError("card parameter is required"), nil
	}
	return h.run("add_to_workout", false, func(*stateResult) error {
		return h.sess.MoveToWorkout(ctx, session.CardID(card))
	})
}

func (h *handlers) removeFromWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	card, err := req.RequireString("card")
	if err != nil {
		return mcp.NewToolResultError("card parameter is required"), nil
	}
	return h.run("remove_from_workout", false, func(*stateResult) error {
		return h.sess.RemoveFromWorkout(session.CardID(card))
	})
}

func (h *handlers) setReps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	card, err := req.RequireString("card")
	if err != nil {
		return mcp.NewToolResultError("card parameter is required"), nil
	}
	sets, reps := req.GetString("sets", ""), req.GetString("reps", "")
	return h.run("set_reps", false, func(*stateResult) error {
		return h.sess.SetReps(session.CardID(card), sets, reps)
	})
}

func (h *handlers) setTitle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title parameter is required"), nil
	}
	return h.run("set_title", false, func(*stateResult) error {
		h.sess.SetTitle(title)
		return nil
	})
}

func (h *handlers) saveWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run("save_workout", false, func(res *stateResult) error {
		id, err := h.sess.SaveWorkout(ctx)
		res.SavedID = id
		res.Workouts = h.sess.Workouts()
		return err
	})
}

func (h *handlers) listWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run("list_workouts", false, func(res *stateResult) error {
		if err := h.sess.RefreshWorkouts(ctx); err != nil {
			return err
		}
		res.Workouts = h.sess.Workouts()
		return nil
	})
}

func (h *handlers) loadWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	return h.run("load_workout", false, func(*stateResult) error {
		return h.sess.LoadWorkout(ctx, int64(id))
	})
}

func (h *handlers) deleteWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	return h.run("delete_workout", req.GetBool("confirm", false), func(res *stateResult) error {
		err := h.sess.DeleteWorkout(ctx, int64(id))
		res.Workouts = h.sess.Workouts()
		return err
	})
}

func (h *handlers) editExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	form := session.ExerciseForm{
		Titulo:    req.GetString("titulo", ""),
		Musculo:   req.GetString("musculo", ""),
		Descricao: req.GetString("descricao", ""),
	}
	return h.run("edit_exercise", false, func(*stateResult) error {
		if _, err := h.sess.OpenEdit(int64(id)); err != nil {
			return err
		}
		if err := h.sess.SubmitExercise(ctx, form); err != nil {
			h.sess.CloseEditor()
			return err
		}
		return nil
	})
}

func (h *handlers) deleteExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	return h.run("delete_exercise", req.GetBool("confirm", false), func(*stateResult) error {
		return h.sess.DeleteExercise(ctx, int64(id))
	})
}
