package session

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/claude/treino/internal/api"
	"github.com/claude/treino/internal/models"
)

// ConflictSuffix disambiguates the title of a promoted item when the backend
// already has a personal exercise with the same name.
const ConflictSuffix = " (catálogo)"

const promotedFallbackTitle = "Exercício"

// promote persists the external exercise ext as a personal one. A 409 is
// retried once with ConflictSuffix appended to the title.
func (s *Session) promote(ctx context.Context, ext models.Exercise) (models.Exercise, error) {
	if s.ledger != nil {
		if known, ok := s.promoted(ctx, ext); ok {
			return known, nil
		}
	}

	in := promotionInput(ext)
	created, err := s.backend.CreateExercise(ctx, in)
	if api.IsConflict(err) {
		s.log.Info("exercise title taken, retrying", "titulo", in.Titulo)
		in.Titulo = withSuffix(in.Titulo)
		created, err = s.backend.CreateExercise(ctx, in)
	}
	if err != nil {
		return models.Exercise{}, fmt.Errorf("creating personal copy: %w", err)
	}
	if created.ID == nil || *created.ID <= 0 {
		return models.Exercise{}, fmt.Errorf("creating personal copy: backend returned no id")
	}

	out := confirmed(in, *created)
	if s.ledger != nil {
		if err := s.ledger.Record(ext, out); err != nil {
			s.log.Warn("recording promotion", "id", *out.ID, "error", err)
		}
	}
	s.log.Info("promoted exercise", "id", *out.ID, "titulo", out.Titulo)
	return out, nil
}

// promoted returns the personal exercise an earlier session created from ext,
// as long as the backend still has it. Entries for deleted exercises are
// forgotten so the item is promoted again.
func (s *Session) promoted(ctx context.Context, ext models.Exercise) (models.Exercise, bool) {
	known, ok, err := s.ledger.Lookup(ext)
	if err != nil {
		s.log.Warn("promotion ledger unavailable", "error", err)
		return models.Exercise{}, false
	}
	if !ok {
		return models.Exercise{}, false
	}

	personal, err := s.backend.ListPersonal(ctx)
	if err != nil {
		s.log.Warn("verifying promoted exercise", "id", *known.ID, "error", err)
		return models.Exercise{}, false
	}
	for _, ex := range personal {
		if ex.ID != nil && *ex.ID == *known.ID {
			ex.Source = models.SourcePersonal
			s.log.Debug("reusing promoted exercise", "id", *ex.ID, "titulo", ex.Titulo)
			return ex, true
		}
	}

	s.log.Info("promoted exercise no longer exists", "id", *known.ID, "titulo", known.Titulo)
	if err := s.ledger.Forget(*known.ID); err != nil {
		s.log.Warn("forgetting promotion", "id", *known.ID, "error", err)
	}
	return models.Exercise{}, false
}

// withSuffix appends ConflictSuffix, shortening title so the result still fits
// the column.
func withSuffix(title string) string {
	room := models.MaxTitulo - utf8.RuneCountInString(ConflictSuffix)
	return models.Clamp(title, room) + ConflictSuffix
}

func promotionInput(ext models.Exercise) api.ExerciseInput {
	title := ext.Titulo
	if title == "" || title == models.UntitledExercise {
		title = promotedFallbackTitle
	}
	return api.ExerciseInput{
		Titulo:    title,
		Musculo:   ext.Musculo,
		Descricao: ext.Descricao,
		Thumbnail: ext.Thumbnail,
	}.Clamped()
}

// confirmed merges the server's record over what was sent; fields the server
// left empty keep the submitted value.
func confirmed(sent api.ExerciseInput, created models.Exercise) models.Exercise {
	out := models.Exercise{
		ID:        created.ID,
		Titulo:    orElse(created.Titulo, sent.Titulo),
		Musculo:   orElse(created.Musculo, sent.Musculo),
		Descricao: orElse(created.Descricao, sent.Descricao),
		Thumbnail: orElse(created.Thumbnail, sent.Thumbnail),
		Source:    models.SourcePersonal,
	}
	return out
}

func orElse(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
