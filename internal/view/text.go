package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/claude/treino/internal/catalog"
	"github.com/claude/treino/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#cc0000"))
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Italic(true)
	currentStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#994848"))
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#dddddd")).
			Padding(0, 1).
			Width(60)
)

// TextRenderer prints views to a terminal. Catalog cards are numbered from 1
// and workout cards from w1, matching the order of the view slices.
type TextRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextRenderer creates a renderer writing to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

// RenderCatalog prints the catalog cards and pagination bar.
func (r *TextRenderer) RenderCatalog(v Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.w, headerStyle.Render("Exercícios"))
	if v.Message != "" {
		style := faintStyle
		if v.Error {
			style = errorStyle
		}
		fmt.Fprintln(r.w, style.Render(v.Message))
	}
	for i, c := range v.Cards {
		fmt.Fprintln(r.w, renderCard(fmt.Sprintf("%d", i+1), c, false))
	}
	if bar := renderPagination(v.Pagination); bar != "" {
		fmt.Fprintln(r.w, bar)
	}
}

// RenderWorkout prints the workout zone.
func (r *TextRenderer) RenderWorkout(v Workout) {
	r.mu.Lock()
	defer r.mu.Unlock()

	header := "Treino"
	if v.Title != "" {
		header += ": " + v.Title
	}
	fmt.Fprintln(r.w, headerStyle.Render(header))
	if v.Empty {
		fmt.Fprintln(r.w, faintStyle.Render("Arraste exercícios para cá."))
		return
	}
	for i, c := range v.Cards {
		fmt.Fprintln(r.w, renderCard(fmt.Sprintf("w%d", i+1), c, true))
	}
}

// RenderWorkouts prints the saved workout list.
func (r *TextRenderer) RenderWorkouts(workouts []models.Workout) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.w, headerStyle.Render("Treinos salvos"))
	if len(workouts) == 0 {
		fmt.Fprintln(r.w, faintStyle.Render("Nenhum treino salvo."))
		return
	}
	for _, w := range workouts {
		fmt.Fprintf(r.w, "  #%d %s %s\n", w.ID, titleStyle.Render(w.Titulo),
			faintStyle.Render(fmt.Sprintf("(%d exercícios)", w.TotalExercicios)))
	}
}

func renderCard(handle string, c Card, full bool) string {
	lines := []string{
		titleStyle.Render(handle+". "+c.Title) + " " + badgeStyle.Render("["+c.Badge+"]"),
		"Foco: " + c.Focus,
	}
	if c.Description != "" {
		lines = append(lines, c.Description)
	}
	lines = append(lines, faintStyle.Render(c.Thumbnail))
	if full {
		lines = append(lines, fmt.Sprintf("%s x %s", orDash(c.Sets, "sets"), orDash(c.Reps, "reps")))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func renderPagination(buttons []catalog.Button) string {
	if len(buttons) == 0 {
		return ""
	}
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		switch {
		case b.Current:
			parts = append(parts, currentStyle.Render("["+b.Label+"]"))
		case b.Disabled:
			parts = append(parts, faintStyle.Render(b.Label))
		default:
			parts = append(parts, b.Label)
		}
	}
	return strings.Join(parts, " ")
}

func orDash(v, placeholder string) string {
	if v == "" {
		return faintStyle.Render(placeholder)
	}
	return v
}
