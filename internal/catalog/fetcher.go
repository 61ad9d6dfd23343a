package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/treino/internal/api"
	"github.com/claude/treino/internal/models"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the REST API the catalog reads from.
type Backend interface {
	ListCatalog(ctx context.Context, q models.Query) (*api.CatalogResponse, error)
	ListPersonal(ctx context.Context) ([]models.Exercise, error)
	ListExternal(ctx context.Context, limit int, q string) ([]map[string]any, error)
}

// Compile-time check: *api.Client satisfies Backend.
var _ Backend = (*api.Client)(nil)

// Fetcher loads catalog pages. It prefers the unified paginated endpoint and
// falls back to merging the personal and external lists client-side.
type Fetcher struct {
	backend Backend
	log     *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(backend Backend, log *slog.Logger) *Fetcher {
	return &Fetcher{backend: backend, log: log}
}

// Fetch returns the requested page. An error is returned only when the unified
// endpoint and both fallback lists all fail.
func (f *Fetcher) Fetch(ctx context.Context, q models.Query) (models.Page, error) {
	q.Q = models.NormalizeTerm(q.Q)

	page, unifiedErr := f.fetchUnified(ctx, q)
	if unifiedErr == nil {
		return page, nil
	}
	f.log.Warn("unified catalog unavailable, merging lists", "error", unifiedErr)

	page, fallbackErr := f.fetchMerged(ctx, q)
	if fallbackErr != nil {
		return models.Page{}, multierr.Append(unifiedErr, fallbackErr)
	}
	return page, nil
}

func (f *Fetcher) fetchUnified(ctx context.Context, q models.Query) (models.Page, error) {
	resp, err := f.backend.ListCatalog(ctx, q)
	if err != nil {
		return models.Page{}, err
	}

	items := tagPersonal(resp.Entries())

	total := len(items)
	if resp.Total != nil {
		total = *resp.Total
	}
	pages := models.PageCount(total, q.PerPage)
	if resp.Pages != nil && *resp.Pages > 0 {
		pages = *resp.Pages
	}
	current := q.Page
	if resp.Page != nil {
		current = *resp.Page
	}

	return models.Page{
		Items: items,
		Page:  models.ClampPage(current, pages),
		Pages: pages,
		Total: resp.Total,
	}, nil
}

func (f *Fetcher) fetchMerged(ctx context.Context, q models.Query) (models.Page, error) {
	var (
		personal            []models.Exercise
		external            []map[string]any
		personalErr, extErr error
	)

	// Each list degrades to empty on its own; the group never fails.
	var g errgroup.Group
	g.Go(func() error {
		personal, personalErr = f.backend.ListPersonal(ctx)
		if personalErr != nil {
			f.log.Warn("personal exercises unavailable", "error", personalErr)
		}
		return nil
	})
	g.Go(func() error {
		external, extErr = f.backend.ListExternal(ctx, q.LimitExt, q.Q)
		if extErr != nil {
			f.log.Warn("external catalog unavailable", "error", extErr)
		}
		return nil
	})
	_ = g.Wait()

	if personalErr != nil && extErr != nil {
		return models.Page{}, fmt.Errorf("merging catalog: %w",
			multierr.Combine(personalErr, extErr))
	}

	merged := make([]models.Exercise, 0, len(personal)+len(external))
	merged = append(merged, tagPersonal(personal)...)
	merged = append(merged, NormalizeAll(external)...)
	merged = Filter(merged, q.Q)

	total := len(merged)
	window, current, pages := models.Paginate(merged, q.Page, q.PerPage)
	return models.Page{
		Items: window,
		Page:  current,
		Pages: pages,
		Total: &total,
	}, nil
}

// Filter keeps the exercises whose title or muscle contains term. Filtering an
// already-filtered list by the same term returns it unchanged.
func Filter(items []models.Exercise, term string) []models.Exercise {
	term = models.NormalizeTerm(term)
	if term == "" {
		return items
	}
	out := make([]models.Exercise, 0, len(items))
	for _, ex := range items {
		if ex.Matches(term) {
			out = append(out, ex)
		}
	}
	return out
}

func tagPersonal(items []models.Exercise) []models.Exercise {
	for i := range items {
		if items[i].Source == "" {
			items[i].Source = models.SourcePersonal
		}
	}
	return items
}
