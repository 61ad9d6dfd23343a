package models

import "strings"

// Source tells where a catalog exercise comes from.
type Source string

const (
	SourcePersonal Source = "personal"
	SourceExternal Source = "external"
)

// Column limits enforced by the backend. Every text field is clamped to these
// before it is sent.
const (
	MaxTitulo    = 100
	MaxMusculo   = 50
	MaxDescricao = 255
	MaxThumbnail = 255
)

// UntitledExercise is shown (and submitted) when an exercise has no title.
const UntitledExercise = "(sem título)"

// Exercise is the unified catalog shape shared by personal and external items.
// ID is nil until the exercise is persisted as a personal record.
type Exercise struct {
	ID        *int64 `json:"id"`
	Titulo    string `json:"titulo"`
	Musculo   string `json:"musculo"`
	Descricao string `json:"descricao"`
	Thumbnail string `json:"thumbnail"`
	Source    Source `json:"source,omitempty"`
}

// Persisted reports whether the exercise is a personal record with a usable id.
func (e Exercise) Persisted() bool {
	return e.Source == SourcePersonal && e.ID != nil && *e.ID > 0
}

// Clamped returns a copy with every text field cut to its column limit.
func (e Exercise) Clamped() Exercise {
	e.Titulo = Clamp(e.Titulo, MaxTitulo)
	e.Musculo = Clamp(e.Musculo, MaxMusculo)
	e.Descricao = Clamp(e.Descricao, MaxDescricao)
	e.Thumbnail = Clamp(e.Thumbnail, MaxThumbnail)
	return e
}

// Clamp cuts s to at most max characters, keeping the beginning.
// Counts runes so accented titles are never split mid-character.
func Clamp(s string, max int) string {
	if s == "" || max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Truncate is the display variant of Clamp: it appends an ellipsis when the
// text was cut.
func Truncate(s string, max int) string {
	c := Clamp(s, max)
	if c == s {
		return s
	}
	return c + "…"
}

// Matches reports whether the exercise title or muscle contains term,
// ignoring case. An empty term matches everything.
func (e Exercise) Matches(term string) bool {
	term = NormalizeTerm(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Titulo), term) ||
		strings.Contains(strings.ToLower(e.Musculo), term)
}

// NormalizeTerm trims and lowercases a search term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}
