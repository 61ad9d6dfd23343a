package session

import (
	"slices"

	"github.com/claude/treino/internal/models"
	"github.com/google/uuid"
)

// CardID identifies a card for the lifetime of the session.
type CardID string

// Zone is where a card currently sits.
type Zone string

const (
	ZoneCatalog Zone = "catalog"
	ZoneWorkout Zone = "workout"
)

// Card is the session's record of one rendered exercise. Sets and Reps hold
// the raw input and are only meaningful in the workout zone.
type Card struct {
	ID       CardID
	Exercise models.Exercise
	Zone     Zone
	Sets     string
	Reps     string

	promoting bool
}

func (s *Session) addCard(ex models.Exercise, zone Zone) *Card {
	c := &Card{ID: CardID(uuid.NewString()), Exercise: ex, Zone: zone}
	s.cards[c.ID] = c
	return c
}

// clearCatalog drops the catalog zone. A card held mid-drag or mid-promotion
// stays registered so the pending drop can still land.
func (s *Session) clearCatalog() {
	for _, id := range s.catalog {
		c := s.cards[id]
		if id == s.dragging || (c != nil && c.promoting) {
			continue
		}
		delete(s.cards, id)
	}
	s.catalog = nil
}

// clearWorkout drops the workout zone, including a card held mid-drag.
func (s *Session) clearWorkout() {
	for _, id := range s.workout {
		if id == s.dragging {
			s.dragging = ""
		}
		delete(s.cards, id)
	}
	s.workout = nil
}

// move transfers c to zone, keeping each card in exactly one zone.
func (s *Session) move(c *Card, zone Zone) {
	s.catalog = slices.DeleteFunc(s.catalog, func(id CardID) bool { return id == c.ID })
	s.workout = slices.DeleteFunc(s.workout, func(id CardID) bool { return id == c.ID })

	c.Zone = zone
	switch zone {
	case ZoneWorkout:
		s.workout = append(s.workout, c.ID)
	case ZoneCatalog:
		c.Sets, c.Reps = "", ""
		s.catalog = append(s.catalog, c.ID)
	}
}

// Card returns a copy of the card with id.
func (s *Session) Card(id CardID) (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return Card{}, false
	}
	return *c, true
}

// WorkoutCards returns the cards in the workout zone, in order.
func (s *Session) WorkoutCards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Card, 0, len(s.workout))
	for _, id := range s.workout {
		out = append(out, *s.cards[id])
	}
	return out
}
