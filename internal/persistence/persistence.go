package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"ms-boxoffice/internal/models"
)

// ErrNotFound is returned by Get when a key has never been written. On a
// first run all three state keys are missing and the caller falls back to
// configured baselines.
var ErrNotFound = errors.New("key not found")

// Store is the durable key-value adapter the box office synchronizes its
// state to. String keys, string values, nothing fancier; the snapshot codec
// below owns the encoding.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

const (
	KeyMaxTickets    = "boxoffice:max_tickets"
	KeyTicketsSold   = "boxoffice:tickets_sold"
	KeyTicketHistory = "boxoffice:ticket_history"
)

// Snapshot is the full durable state: the two capacity counters plus the
// serialized ticket history.
type Snapshot struct {
	Max     int
	Sold    int
	History []models.Ticket
}

// LoadSnapshot reads the three state keys, substituting defaults for any
// key that was never written. A present-but-unparseable value is an error;
// silently resetting state would violate the sold-count invariants.
func LoadSnapshot(ctx context.Context, s Store, defaults Snapshot) (Snapshot, error) {
	snap := defaults

	if raw, err := s.Get(ctx, KeyMaxTickets); err == nil {
		parsed, perr := strconv.Atoi(raw)
		if perr != nil {
			return Snapshot{}, fmt.Errorf("corrupt %s value %q: %w", KeyMaxTickets, raw, perr)
		}
		snap.Max = parsed
	} else if !errors.Is(err, ErrNotFound) {
		return Snapshot{}, fmt.Errorf("load %s: %w", KeyMaxTickets, err)
	}

	if raw, err := s.Get(ctx, KeyTicketsSold); err == nil {
		parsed, perr := strconv.Atoi(raw)
		if perr != nil {
			return Snapshot{}, fmt.Errorf("corrupt %s value %q: %w", KeyTicketsSold, raw, perr)
		}
		snap.Sold = parsed
	} else if !errors.Is(err, ErrNotFound) {
		return Snapshot{}, fmt.Errorf("load %s: %w", KeyTicketsSold, err)
	}

	if raw, err := s.Get(ctx, KeyTicketHistory); err == nil {
		var history []models.Ticket
		if perr := json.Unmarshal([]byte(raw), &history); perr != nil {
			return Snapshot{}, fmt.Errorf("corrupt %s: %w", KeyTicketHistory, perr)
		}
		snap.History = history
	} else if !errors.Is(err, ErrNotFound) {
		return Snapshot{}, fmt.Errorf("load %s: %w", KeyTicketHistory, err)
	}

	return snap, nil
}

// SaveSnapshot mirrors the full state to the adapter. Called after every
// mutation to any of the three values.
func SaveSnapshot(ctx context.Context, s Store, snap Snapshot) error {
	if err := s.Set(ctx, KeyMaxTickets, strconv.Itoa(snap.Max)); err != nil {
		return fmt.Errorf("save %s: %w", KeyMaxTickets, err)
	}
	if err := s.Set(ctx, KeyTicketsSold, strconv.Itoa(snap.Sold)); err != nil {
		return fmt.Errorf("save %s: %w", KeyTicketsSold, err)
	}

	history := snap.History
	if history == nil {
		history = []models.Ticket{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.Set(ctx, KeyTicketHistory, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", KeyTicketHistory, err)
	}
	return nil
}
