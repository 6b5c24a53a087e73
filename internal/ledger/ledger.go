package ledger

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is returned when a reservation would push the sold
// count past the configured maximum. Nothing is reserved in that case.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// Ledger tracks the event-wide seat counters. It is the single gate against
// overselling: every allocation goes through Reserve. The ledger itself is
// not safe for concurrent use; the allocation workflow owns it and holds its
// own lock around the reserve-then-mint critical section.
type Ledger struct {
	max  int
	sold int
}

func New(max, sold int) *Ledger {
	return &Ledger{max: max, sold: sold}
}

func (l *Ledger) Max() int {
	return l.max
}

func (l *Ledger) Sold() int {
	return l.sold
}

// Remaining saturates at zero. An operator may lower Max below Sold after
// tickets went out; already-issued tickets stay valid and further sales stop.
func (l *Ledger) Remaining() int {
	if l.sold >= l.max {
		return 0
	}
	return l.max - l.sold
}

// Reserve consumes quantity seats or fails without any partial reservation.
func (l *Ledger) Reserve(quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("invalid quantity %d", quantity)
	}
	if l.sold+quantity > l.max {
		return fmt.Errorf("%w: %d requested, %d remaining", ErrCapacityExceeded, quantity, l.Remaining())
	}
	l.sold += quantity
	return nil
}

// SetMax adjusts the capacity ceiling. A value below the current sold count
// is tolerated rather than rejected; Remaining reports zero until capacity
// is raised again.
func (l *Ledger) SetMax(newMax int) {
	if newMax < 0 {
		newMax = 0
	}
	l.max = newMax
}
