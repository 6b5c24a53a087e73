package models

// BookingRequest is what a guest submits. It stays in memory only; nothing is
// persisted until the request becomes a Ticket.
type BookingRequest struct {
	GuestName string `json:"guest_name"`
	Email     string `json:"email"`
	Quantity  int    `json:"quantity"`
}

// Capacity holds the event-wide seat counters. Sold only ever increases;
// Max may be adjusted by an operator, even below Sold.
type Capacity struct {
	Max  int `json:"max"`
	Sold int `json:"sold"`
}

// RecordingPayload is the document sent to the external recording
// collaborator when a ticket is issued. Field names match what the
// collaborator's sheet expects.
type RecordingPayload struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Quantity    int     `json:"quantity"`
	TicketID    string  `json:"ticketId"`
	NumberRange string  `json:"ticketNumber"`
	TotalPrice  float64 `json:"totalPrice"`
}
