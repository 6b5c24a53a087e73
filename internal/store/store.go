package store

import (
	"errors"

	"ms-boxoffice/internal/models"
)

var ErrNotFound = errors.New("ticket not found")

// Store is the append-only record of issued tickets, most-recent-first.
// There is no update or delete: a ticket that made it into the history is
// immutable. The allocation workflow is the sole writer.
type Store struct {
	tickets []models.Ticket
}

func New(history []models.Ticket) *Store {
	s := &Store{}
	if len(history) > 0 {
		s.tickets = append(s.tickets, history...)
	}
	return s
}

// Append inserts at the head, preserving the order of everything already
// stored.
func (s *Store) Append(ticket models.Ticket) {
	s.tickets = append([]models.Ticket{ticket}, s.tickets...)
}

// FindAll returns the full ordered history. The slice is a copy; callers
// cannot mutate the store through it.
func (s *Store) FindAll() []models.Ticket {
	out := make([]models.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

func (s *Store) FindByID(ticketID string) (*models.Ticket, error) {
	for i := range s.tickets {
		if s.tickets[i].ID == ticketID {
			t := s.tickets[i]
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) Len() int {
	return len(s.tickets)
}
