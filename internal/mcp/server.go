// Package mcp exposes a builder session as MCP tools, so an assistant can
// search the catalog and assemble workouts.
package mcp

import (
	"log/slog"
	"sync"

	"github.com/claude/treino/internal/models"
	"github.com/claude/treino/internal/session"
	"github.com/claude/treino/internal/view"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered. The
// session must have been created with notes as its Notifier.
func New(sess *session.Session, notes *Notifier, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("treino", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Workout builder. Search the exercise catalog, add cards to the workout by their id (external items are copied to the personal catalog on the way), set sets/reps and a title, then save. Destructive tools need confirm=true."),
	)

	h := &handlers{sess: sess, notes: notes, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolSearchCatalog, Handler: h.searchCatalog},
		server.ServerTool{Tool: toolGoToPage, Handler: h.goToPage},
		server.ServerTool{Tool: toolShowState, Handler: h.showState},
		server.ServerTool{Tool: toolAddToWorkout, Handler: h.addToWorkout},
		server.ServerTool{Tool: toolRemoveFromWorkout, Handler: h.removeFromWorkout},
		server.ServerTool{Tool: toolSetReps, Handler: h.setReps},
		server.ServerTool{Tool: toolSetTitle, Handler: h.setTitle},
		server.ServerTool{Tool: toolSaveWorkout, Handler: h.saveWorkout},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolLoadWorkout, Handler: h.loadWorkout},
		server.ServerTool{Tool: toolDeleteWorkout, Handler: h.deleteWorkout},
		server.ServerTool{Tool: toolEditExercise, Handler: h.editExercise},
		server.ServerTool{Tool: toolDeleteExercise, Handler: h.deleteExercise},
	)

	s.AddResources(
		server.ServerResource{Resource: resState, Handler: h.stateResource},
		server.ServerResource{Resource: resWorkouts, Handler: h.workoutsResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers. Tool calls are
// serialized so alerts are attributed to the call that raised them.
type handlers struct {
	mu    sync.Mutex
	sess  *session.Session
	notes *Notifier
	log   *slog.Logger
}

// Notifier collects session alerts for the current tool call. Confirmations
// are answered by the call's confirm argument.
type Notifier struct {
	mu      sync.Mutex
	msgs    []string
	confirm bool
}

func (n *Notifier) Alert(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *Notifier) Confirm(prompt string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.confirm {
		n.msgs = append(n.msgs, prompt+" (call again with confirm=true)")
	}
	return n.confirm
}

// begin resets the collected messages and sets the confirmation answer.
func (n *Notifier) begin(confirm bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = nil
	n.confirm = confirm
}

func (n *Notifier) drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.msgs
	n.msgs = nil
	n.confirm = false
	return msgs
}

// Discard is a session Renderer for drivers that pull state instead of
// having it pushed.
type Discard struct{}

func (Discard) RenderCatalog(view.Catalog)      {}
func (Discard) RenderWorkout(view.Workout)      {}
func (Discard) RenderWorkouts([]models.Workout) {}

// --- Resource definitions ---

var resState = mcp.NewResource(
	"treino://state",
	"Builder State",
	mcp.WithResourceDescription("Catalog page on screen, pagination and the workout being assembled"),
	mcp.WithMIMEType("application/json"),
)

var resWorkouts = mcp.NewResource(
	"treino://workouts",
	"Saved Workouts",
	mcp.WithResourceDescription("Workouts saved on the backend"),
	mcp.WithMIMEType("application/json"),
)
