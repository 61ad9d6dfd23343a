// Package view turns session state into render-ready view models and prints
// them to a terminal.
package view

import (
	"github.com/claude/treino/internal/catalog"
	"github.com/claude/treino/internal/models"
)

// Messages shown in place of catalog cards.
const (
	EmptyCatalog = "Nenhum exercício encontrado."
	CatalogError = "Erro ao carregar exercícios."
)

// Badges distinguish personal cards from catalog ones.
const (
	BadgePersonal = "Meu"
	BadgeExternal = "Catálogo"
)

// DescriptionLimit is how much of the description a card shows.
const DescriptionLimit = 100

// Card is one rendered exercise card.
type Card struct {
	ID          string `json:"id"`
	ExerciseID  *int64 `json:"exercise_id,omitempty"`
	Title       string `json:"title"`
	Focus       string `json:"focus"`
	Description string `json:"description"`
	Badge       string `json:"badge"`
	Thumbnail   string `json:"thumbnail"`
	Sets        string `json:"sets,omitempty"`
	Reps        string `json:"reps,omitempty"`
}

// Catalog is the catalog zone plus its pagination bar.
type Catalog struct {
	Cards      []Card           `json:"cards"`
	Message    string           `json:"message,omitempty"`
	Error      bool             `json:"error,omitempty"`
	Page       int              `json:"page"`
	Pages      int              `json:"pages"`
	Pagination []catalog.Button `json:"pagination,omitempty"`
}

// Workout is the workout zone. Empty drives the "drag exercises here" hint.
type Workout struct {
	Title string `json:"title"`
	Cards []Card `json:"cards"`
	Empty bool   `json:"empty"`
}

// NewCard builds the card for ex. Sets and reps are the raw input values.
func NewCard(id string, ex models.Exercise, sets, reps string, thumbs catalog.ThumbnailResolver) Card {
	title := ex.Titulo
	if title == "" {
		title = models.UntitledExercise
	}
	focus := ex.Musculo
	if focus == "" {
		focus = "-"
	}
	badge := BadgePersonal
	if ex.Source == models.SourceExternal {
		badge = BadgeExternal
	}
	return Card{
		ID:          id,
		ExerciseID:  ex.ID,
		Title:       title,
		Focus:       focus,
		Description: models.Truncate(ex.Descricao, DescriptionLimit),
		Badge:       badge,
		Thumbnail:   thumbs.Resolve(ex.Thumbnail),
		Sets:        sets,
		Reps:        reps,
	}
}

// NewCatalog builds the catalog view for one page of cards.
func NewCatalog(cards []Card, page, pages int) Catalog {
	v := Catalog{
		Cards:      cards,
		Page:       page,
		Pages:      pages,
		Pagination: catalog.Buttons(page, pages),
	}
	if len(cards) == 0 {
		v.Message = EmptyCatalog
	}
	return v
}

// FailedCatalog is the inline error state: no cards and no pagination.
func FailedCatalog() Catalog {
	return Catalog{Cards: []Card{}, Message: CatalogError, Error: true}
}

// NewWorkout builds the workout zone view.
func NewWorkout(title string, cards []Card) Workout {
	return Workout{Title: title, Cards: cards, Empty: len(cards) == 0}
}
