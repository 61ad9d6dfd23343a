package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/claude/treino/internal/api"
)

// ExerciseForm is the personal exercise form. Image is required when
// creating and optional when editing.
type ExerciseForm struct {
	Titulo    string
	Musculo   string
	Descricao string
	// Thumbnail is the resolved current image, for display only.
	Thumbnail string
	ImageName string
	Image     io.Reader
}

type editorState struct {
	open bool
	id   int64 // 0 when creating
}

// OpenNew opens an empty form for a new personal exercise.
func (s *Session) OpenNew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor = editorState{open: true}
}

// OpenEdit opens the form for personal exercise id. Only items on the page
// on screen can be edited.
func (s *Session) OpenEdit(id int64) (ExerciseForm, error) {
	s.mu.Lock()
	for _, cid := range s.catalog {
		ex := s.cards[cid].Exercise
		if !ex.Persisted() || *ex.ID != id {
			continue
		}
		s.editor = editorState{open: true, id: id}
		form := ExerciseForm{
			Titulo:    ex.Titulo,
			Musculo:   ex.Musculo,
			Descricao: ex.Descricao,
			Thumbnail: s.thumbs.Resolve(ex.Thumbnail),
		}
		s.mu.Unlock()
		return form, nil
	}
	s.mu.Unlock()
	return ExerciseForm{}, s.invalid(ErrNotOnPage)
}

// Editing reports whether the form is open and which exercise it edits.
func (s *Session) Editing() (open bool, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.open, s.editor.id
}

// CloseEditor discards the form.
func (s *Session) CloseEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor = editorState{}
}

// SubmitExercise creates or updates the personal exercise in the open form,
// then reloads the catalog with the last query.
func (s *Session) SubmitExercise(ctx context.Context, form ExerciseForm) error {
	s.mu.Lock()
	ed := s.editor
	s.mu.Unlock()
	if !ed.open {
		return ErrNotEditing
	}

	up := api.ExerciseUpload{
		Titulo:    strings.TrimSpace(form.Titulo),
		Musculo:   strings.TrimSpace(form.Musculo),
		Descricao: strings.TrimSpace(form.Descricao),
		ImageName: form.ImageName,
		Image:     form.Image,
	}
	if up.Titulo == "" || up.Musculo == "" || up.Descricao == "" || (up.Image == nil && ed.id == 0) {
		return s.invalid(ErrMissingFields)
	}

	var err error
	if ed.id == 0 {
		_, err = s.backend.UploadExercise(ctx, up)
	} else {
		_, err = s.backend.UpdateExercise(ctx, ed.id, up)
	}
	if err != nil {
		s.log.Error("saving exercise", "id", ed.id, "titulo", up.Titulo, "error", err)
		return s.fail(MsgExerciseSave, err)
	}
	s.log.Info("exercise saved", "id", ed.id, "titulo", up.Titulo)

	s.CloseEditor()
	s.Reload(ctx)
	return nil
}

// DeleteExercise asks for confirmation, deletes personal exercise id and
// reloads the catalog with the last query.
func (s *Session) DeleteExercise(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("delete exercise %d: invalid id", id)
	}
	if !s.notify.Confirm(MsgConfirmExercise) {
		return ErrCancelled
	}

	if err := s.backend.DeleteExercise(ctx, id); err != nil {
		s.log.Error("deleting exercise", "id", id, "error", err)
		return s.fail(MsgExerciseDelete, err)
	}
	s.log.Info("exercise deleted", "id", id)

	if s.ledger != nil {
		if err := s.ledger.Forget(id); err != nil {
			s.log.Warn("forgetting promotion", "id", id, "error", err)
		}
	}
	s.Reload(ctx)
	return nil
}
