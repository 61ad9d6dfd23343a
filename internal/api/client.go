package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/treino/internal/models"
)

// Client calls the workout backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. with one that
// dials over a tailnet.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CatalogResponse is the body of GET /exercicios/todos. Page, Pages and Total
// are optional in the contract.
type CatalogResponse struct {
	Items      []models.Exercise `json:"items"`
	Exercicios []models.Exercise `json:"exercicios"`
	Page       *int              `json:"page"`
	Pages      *int              `json:"pages"`
	Total      *int              `json:"total"`
}

// Entries returns whichever item list the backend filled.
func (r *CatalogResponse) Entries() []models.Exercise {
	if r.Items != nil {
		return r.Items
	}
	if r.Exercicios != nil {
		return r.Exercicios
	}
	return []models.Exercise{}
}

// ExerciseInput is the body for creating a personal exercise from JSON.
type ExerciseInput struct {
	Titulo    string `json:"titulo"`
	Musculo   string `json:"musculo"`
	Descricao string `json:"descricao"`
	Thumbnail string `json:"thumbnail"`
}

// Clamped returns a copy with every field cut to its column limit.
func (in ExerciseInput) Clamped() ExerciseInput {
	return ExerciseInput{
		Titulo:    models.Clamp(in.Titulo, models.MaxTitulo),
		Musculo:   models.Clamp(in.Musculo, models.MaxMusculo),
		Descricao: models.Clamp(in.Descricao, models.MaxDescricao),
		Thumbnail: models.Clamp(in.Thumbnail, models.MaxThumbnail),
	}
}

// ExerciseUpload is the multipart form for /upload_exercicio and PUT /exercicio.
// Image is optional on update.
type ExerciseUpload struct {
	Titulo    string
	Musculo   string
	Descricao string
	ImageName string
	Image     io.Reader
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, contentType string, body io.Reader) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, "", nil)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, params url.Values, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("api: encode %s body: %w", path, err)
	}
	return c.do(ctx, method, path, params, "application/json", bytes.NewReader(data))
}

func idParam(id int64) url.Values {
	v := url.Values{}
	v.Set("id", strconv.FormatInt(id, 10))
	return v
}

// ListCatalog queries the unified paginated endpoint.
func (c *Client) ListCatalog(ctx context.Context, q models.Query) (*CatalogResponse, error) {
	params := url.Values{}
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("limit_ext", strconv.Itoa(q.LimitExt))

	body, err := c.get(ctx, "/exercicios/todos", params)
	if err != nil {
		return nil, err
	}

	var resp CatalogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: decode catalog: %w", err)
	}
	return &resp, nil
}

// ListPersonal returns the user's persisted exercises.
func (c *Client) ListPersonal(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.get(ctx, "/exercicios", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items      []models.Exercise `json:"items"`
		Exercicios []models.Exercise `json:"exercicios"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: decode personal exercises: %w", err)
	}
	if resp.Items != nil {
		return resp.Items, nil
	}
	return resp.Exercicios, nil
}

// ListExternal returns raw items from the external catalog. Their shape varies
// by provider, so they are left undecoded for the normalizer.
func (c *Client) ListExternal(ctx context.Context, limit int, q string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if q != "" {
		params.Set("q", q)
	}

	body, err := c.get(ctx, "/exercicios/default", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: decode external exercises: %w", err)
	}
	return resp.Items, nil
}

// CreateExercise creates a personal exercise from a JSON body. Fields are
// clamped before sending.
func (c *Client) CreateExercise(ctx context.Context, in ExerciseInput) (*models.Exercise, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/exercicio", nil, in.Clamped())
	if err != nil {
		return nil, err
	}
	return decodeExercise(body)
}

// UploadExercise creates a personal exercise with an image via multipart form.
func (c *Client) UploadExercise(ctx context.Context, up ExerciseUpload) (*models.Exercise, error) {
	body, ctype, err := up.encode()
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/upload_exercicio", nil, ctype, body)
	if err != nil {
		return nil, err
	}
	return decodeExercise(data)
}

// UpdateExercise replaces the fields of a personal exercise. The image is kept
// when up.Image is nil.
func (c *Client) UpdateExercise(ctx context.Context, id int64, up ExerciseUpload) (*models.Exercise, error) {
	body, ctype, err := up.encode()
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPut, "/exercicio", idParam(id), ctype, body)
	if err != nil {
		return nil, err
	}
	return decodeExercise(data)
}

// DeleteExercise removes a personal exercise.
func (c *Client) DeleteExercise(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/exercicio", idParam(id), "", nil)
	return err
}

// ListWorkouts returns the saved workouts.
func (c *Client) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	body, err := c.get(ctx, "/treinos", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Treinos []models.Workout `json:"treinos"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: decode workouts: %w", err)
	}
	return resp.Treinos, nil
}

// SaveWorkout posts a workout draft. The returned id is zero when the backend
// answers with a bare status.
func (c *Client) SaveWorkout(ctx context.Context, draft models.WorkoutDraft) (int64, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/treino", nil, draft)
	if err != nil {
		return 0, err
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if len(bytes.TrimSpace(body)) > 0 {
		// Only the id is of interest; other shapes are fine.
		_ = json.Unmarshal(body, &resp)
	}
	return resp.ID, nil
}

// DeleteWorkout removes a saved workout.
func (c *Client) DeleteWorkout(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/treino", idParam(id), "", nil)
	return err
}

func decodeExercise(body []byte) (*models.Exercise, error) {
	var ex models.Exercise
	if err := json.Unmarshal(body, &ex); err != nil {
		return nil, fmt.Errorf("api: decode exercise: %w", err)
	}
	if ex.Source == "" {
		ex.Source = models.SourcePersonal
	}
	return &ex, nil
}

func (up ExerciseUpload) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"titulo", models.Clamp(up.Titulo, models.MaxTitulo)},
		{"musculo", models.Clamp(up.Musculo, models.MaxMusculo)},
		{"descricao", models.Clamp(up.Descricao, models.MaxDescricao)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("api: write field %s: %w", f.name, err)
		}
	}

	if up.Image != nil {
		name := up.ImageName
		if name == "" {
			name = "imagem"
		}
		part, err := w.CreateFormFile("imagem", name)
		if err != nil {
			return nil, "", fmt.Errorf("api: create image part: %w", err)
		}
		if _, err := io.Copy(part, up.Image); err != nil {
			return nil, "", fmt.Errorf("api: copy image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("api: close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
