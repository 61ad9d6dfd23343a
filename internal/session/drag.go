package session

import (
	"context"
	"fmt"
	"slices"
)

// Dragging returns the held card, or "" when idle.
func (s *Session) Dragging() CardID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

// DragStart holds card id. Starting a new drag replaces the held card.
func (s *Session) DragStart(id CardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[id]
	if !ok {
		return fmt.Errorf("drag %s: %w", id, ErrUnknownCard)
	}
	if c.promoting {
		return fmt.Errorf("drag %s: %w", id, ErrPromotionInFlight)
	}
	s.dragging = id
	return nil
}

// CancelDrag drops the held card outside any zone; it stays where it was.
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dragging == "" {
		return
	}
	s.discardIfOrphan(s.cards[s.dragging])
	s.dragging = ""
}

// Drop lands the held card in zone. An external card dropped in the workout
// zone is promoted first; if that fails it stays in the catalog and the user
// is alerted. The session is idle again when Drop returns.
func (s *Session) Drop(ctx context.Context, zone Zone) error {
	if zone != ZoneCatalog && zone != ZoneWorkout {
		return fmt.Errorf("drop: unknown zone %q", zone)
	}

	s.mu.Lock()
	if s.dragging == "" {
		s.mu.Unlock()
		return ErrNotDragging
	}
	held := s.dragging
	s.dragging = ""
	c, ok := s.cards[held]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("drop %s: %w", held, ErrUnknownCard)
	}

	if zone == ZoneCatalog || c.Exercise.Persisted() {
		s.move(c, zone)
		s.renderAll()
		s.mu.Unlock()
		return nil
	}

	c.promoting = true
	ext := c.Exercise
	s.mu.Unlock()

	created, err := s.promote(ctx, ext)

	s.mu.Lock()
	c.promoting = false
	if err != nil {
		s.discardIfOrphan(c)
		s.renderAll()
		s.mu.Unlock()
		s.log.Error("promoting exercise", "titulo", ext.Titulo, "error", err)
		return s.fail(MsgPromotionFailed, err)
	}
	c.Exercise = created
	s.move(c, ZoneWorkout)
	s.renderAll()
	s.mu.Unlock()
	return nil
}

// MoveToWorkout is DragStart followed by a drop in the workout zone.
func (s *Session) MoveToWorkout(ctx context.Context, id CardID) error {
	if err := s.DragStart(id); err != nil {
		return err
	}
	return s.Drop(ctx, ZoneWorkout)
}

// RemoveFromWorkout sends a workout card back to the catalog and clears its
// inputs.
func (s *Session) RemoveFromWorkout(id CardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[id]
	if !ok || c.Zone != ZoneWorkout {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownCard)
	}
	if s.dragging == id {
		s.dragging = ""
	}
	s.move(c, ZoneCatalog)
	s.renderAll()
	return nil
}

// SetReps stores the raw sets and reps input of a workout card.
func (s *Session) SetReps(id CardID, sets, reps string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[id]
	if !ok || c.Zone != ZoneWorkout {
		return fmt.Errorf("set reps %s: %w", id, ErrUnknownCard)
	}
	c.Sets, c.Reps = sets, reps
	s.render.RenderWorkout(s.workoutView())
	return nil
}

// SetTitle stores the workout title input.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
	s.render.RenderWorkout(s.workoutView())
}

// discardIfOrphan forgets a catalog card whose page was replaced while it
// was held.
func (s *Session) discardIfOrphan(c *Card) {
	if c == nil || c.Zone != ZoneCatalog {
		return
	}
	if !slices.Contains(s.catalog, c.ID) {
		delete(s.cards, c.ID)
	}
}
