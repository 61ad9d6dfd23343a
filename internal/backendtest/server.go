// Package backendtest is an in-memory implementation of the exercise and
// workout REST API. It backs the client tests and the -demo mode.
package backendtest

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/claude/treino/internal/models"
	"github.com/go-chi/chi/v5"
)

// Server holds the fake backend state.
type Server struct {
	log    *slog.Logger
	router chi.Router

	mu          sync.Mutex
	nextID      int64
	nextWorkout int64
	personal    []models.Exercise
	external    []map[string]any
	workouts    []models.Workout
	unifiedDown bool
	faults      map[string]fault
	hits        map[string]int
}

// Option configures a Server.
type Option func(*Server)

// WithPersonal seeds personal exercises. Missing ids are assigned.
func WithPersonal(items ...models.Exercise) Option {
	return func(s *Server) {
		for _, ex := range items {
			s.insert(ex)
		}
	}
}

// WithExternal seeds the raw external catalog.
func WithExternal(items ...map[string]any) Option {
	return func(s *Server) {
		s.external = append(s.external, items...)
	}
}

// WithoutUnified makes GET /exercicios/todos answer 404, like an older
// backend that only has the two list endpoints.
func WithoutUnified() Option {
	return func(s *Server) {
		s.unifiedDown = true
	}
}

// New creates a fake backend with all routes configured.
func New(log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		log:    log,
		router: chi.NewRouter(),
		faults: make(map[string]fault),
		hits:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.injectFaults)

	s.router.Get("/exercicios/todos", s.handleCatalog)
	s.router.Get("/exercicios", s.handlePersonal)
	s.router.Get("/exercicios/default", s.handleExternal)
	s.router.Post("/exercicio", s.handleCreate)
	s.router.Post("/upload_exercicio", s.handleUpload)
	s.router.Put("/exercicio", s.handleUpdate)
	s.router.Delete("/exercicio", s.handleDeleteExercise)
	s.router.Get("/treinos", s.handleWorkouts)
	s.router.Post("/treino", s.handleSaveWorkout)
	s.router.Delete("/treino", s.handleDeleteWorkout)
}

// Fail makes the next n requests to method and path answer status.
func (s *Server) Fail(method, path string, status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[routeKey(method, path)] = fault{status: status, left: n}
}

type fault struct {
	status int
	left   int
}

// Hits returns how many requests method and path received.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[routeKey(method, path)]
}

// Personal returns a copy of the stored personal exercises.
func (s *Server) Personal() []models.Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Exercise, len(s.personal))
	copy(out, s.personal)
	return out
}

// Workouts returns a copy of the stored workouts.
func (s *Server) Workouts() []models.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Workout, len(s.workouts))
	copy(out, s.workouts)
	return out
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// insert stores ex as personal and returns the stored copy. Callers hold mu
// or are still constructing the server.
func (s *Server) insert(ex models.Exercise) models.Exercise {
	if ex.ID == nil {
		s.nextID++
		ex.ID = models.Int64(s.nextID)
	} else if *ex.ID > s.nextID {
		s.nextID = *ex.ID
	}
	ex.Source = models.SourcePersonal
	s.personal = append(s.personal, ex.Clamped())
	return s.personal[len(s.personal)-1]
}
