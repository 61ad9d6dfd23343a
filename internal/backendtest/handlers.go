package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/claude/treino/internal/catalog"
	"github.com/claude/treino/internal/models"
	"github.com/google/uuid"
)

const maxUpload = 8 << 20

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	down := s.unifiedDown
	s.mu.Unlock()
	if down {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	q := models.NormalizeTerm(r.URL.Query().Get("q"))
	page := intParam(r, "page", 1)
	perPage := intParam(r, "per_page", 24)
	limitExt := intParam(r, "limit_ext", 200)

	s.mu.Lock()
	merged := slices.Clone(s.personal)
	external := s.externalMatching(q, limitExt)
	s.mu.Unlock()

	merged = append(merged, catalog.NormalizeAll(external)...)
	merged = catalog.Filter(merged, q)
	items, page, pages := models.Paginate(merged, page, perPage)

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"page":  page,
		"pages": pages,
		"total": len(merged),
	})
}

func (s *Server) handlePersonal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := slices.Clone(s.personal)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"exercicios": items})
}

func (s *Server) handleExternal(w http.ResponseWriter, r *http.Request) {
	q := models.NormalizeTerm(r.URL.Query().Get("q"))
	limit := intParam(r, "limit", 200)

	s.mu.Lock()
	items := s.externalMatching(q, limit)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// externalMatching returns up to limit raw external items matching q.
func (s *Server) externalMatching(q string, limit int) []map[string]any {
	out := make([]map[string]any, 0, min(limit, len(s.external)))
	for _, raw := range s.external {
		if len(out) >= limit {
			break
		}
		if q == "" || catalog.Normalize(raw).Matches(q) {
			out = append(out, raw)
		}
	}
	return out
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.Exercise
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	in.ID = nil
	s.create(w, in)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	in, image, err := parseForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if image == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "imagem obrigatória"})
		return
	}
	in.Thumbnail = image
	s.create(w, in)
}

func (s *Server) create(w http.ResponseWriter, in models.Exercise) {
	if strings.TrimSpace(in.Titulo) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "titulo obrigatório"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.titleTaken(in.Titulo, 0) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "exercício já existe"})
		return
	}
	created := s.insert(in)
	s.log.Debug("exercise created", "id", *created.ID, "titulo", created.Titulo)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	in, image, err := parseForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.personalIndex(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "exercício não encontrado"})
		return
	}
	if s.titleTaken(in.Titulo, id) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "exercício já existe"})
		return
	}
	ex := &s.personal[i]
	ex.Titulo, ex.Musculo, ex.Descricao = in.Titulo, in.Musculo, in.Descricao
	if image != "" {
		ex.Thumbnail = image
	}
	*ex = ex.Clamped()
	writeJSON(w, http.StatusOK, *ex)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.personalIndex(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "exercício não encontrado"})
		return
	}
	s.personal = slices.Delete(s.personal, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWorkouts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := slices.Clone(s.workouts)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"treinos": items})
}

func (s *Server) handleSaveWorkout(w http.ResponseWriter, r *http.Request) {
	var draft models.WorkoutDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"mesage": "JSON inválido"})
		return
	}
	if strings.TrimSpace(draft.Titulo) == "" || len(draft.Exercicios) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"mesage": "titulo e exercicios são obrigatórios"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range draft.Exercicios {
		if s.personalIndex(item.ExercicioID) < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"mesage": fmt.Sprintf("exercicio %d não existe", item.ExercicioID),
			})
			return
		}
	}
	s.nextWorkout++
	wk := models.Workout{
		ID:              s.nextWorkout,
		Titulo:          models.Clamp(draft.Titulo, models.MaxTitulo),
		TotalExercicios: len(draft.Exercicios),
		Exercicios:      draft.Exercicios,
	}
	s.workouts = append(s.workouts, wk)
	writeJSON(w, http.StatusCreated, map[string]any{"id": wk.ID, "message": "treino salvo"})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.workouts, func(wk models.Workout) bool { return wk.ID == id })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"mesage": "treino não encontrado"})
		return
	}
	s.workouts = slices.Delete(s.workouts, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) personalIndex(id int64) int {
	return slices.IndexFunc(s.personal, func(ex models.Exercise) bool {
		return ex.ID != nil && *ex.ID == id
	})
}

// titleTaken reports whether another personal exercise already uses title.
func (s *Server) titleTaken(title string, except int64) bool {
	title = strings.ToLower(strings.TrimSpace(title))
	for _, ex := range s.personal {
		if *ex.ID != except && strings.ToLower(ex.Titulo) == title {
			return true
		}
	}
	return false
}

// parseForm reads the multipart exercise form. The returned image path is
// empty when no file was sent.
func parseForm(r *http.Request) (models.Exercise, string, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return models.Exercise{}, "", fmt.Errorf("invalid form: %w", err)
	}
	in := models.Exercise{
		Titulo:    r.FormValue("titulo"),
		Musculo:   r.FormValue("musculo"),
		Descricao: r.FormValue("descricao"),
	}

	f, hdr, err := r.FormFile("imagem")
	if err == http.ErrMissingFile {
		return in, "", nil
	}
	if err != nil {
		return models.Exercise{}, "", fmt.Errorf("reading imagem: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return models.Exercise{}, "", fmt.Errorf("reading imagem: %w", err)
	}
	return in, "uploads/" + uuid.NewString() + "-" + hdr.Filename, nil
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
