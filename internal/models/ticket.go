package models

import "time"

// Ticket is an issued pass. Tickets are immutable once materialized and only
// ever appended to the history, so the JSON shape below doubles as the
// persistence format.
type Ticket struct {
	ID          string    `json:"id"`
	NumberRange string    `json:"number_range"`
	GuestName   string    `json:"guest_name"`
	Email       string    `json:"email"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
	EventDate   string    `json:"event_date"`
	EventTime   string    `json:"event_time"`
	EventVenue  string    `json:"event_venue"`
	IssuedAt    time.Time `json:"issued_at"`
}
