package server

import "time"

// groupRequest creates or renames a group.
type groupRequest struct {
	Name string `json:"name" binding:"required"`
}

// memberRequest carries the editable member fields.
type memberRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Instrument string `json:"instrument"`
}

// taskRequest carries the editable task fields.
type taskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Notes       string     `json:"notes"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeIDs []string   `json:"assignee_ids"`
}

// setlistRequest carries the setlist name and concert parameters.
type setlistRequest struct {
	Name         string     `json:"name" binding:"required"`
	ConcertDate  *time.Time `json:"concert_date"`
	ConcertEnd   *time.Time `json:"concert_end"`
	BreakMinutes int        `json:"break_minutes"`
}

// songRequest carries the editable song fields.
type songRequest struct {
	Title       string `json:"title" binding:"required"`
	DurationMin int    `json:"duration_min"`
	DurationSec int    `json:"duration_sec"`
	BPM         int    `json:"bpm"`
	Key         string `json:"key"`
}

// reorderRequest moves the song at position From to position To.
// Pointers so position zero survives required-field validation.
type reorderRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

// importRequest appends the songs of another setlist.
type importRequest struct {
	SourceID string `json:"source_id" binding:"required"`
}

// scheduleRequest selects the scheduling mode: sequential, breaks or even.
type scheduleRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// startTimeRequest overrides one song's start time.
type startTimeRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

// merchItemRequest carries the editable merch item fields.
type merchItemRequest struct {
	Name       string `json:"name" binding:"required"`
	Size       string `json:"size"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

// saleRequest records a sale of a merch item. A zero unit price falls
// back to the item's current price.
type saleRequest struct {
	ItemID         string `json:"item_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	MemberID       string `json:"member_id"`
}

// financeEntryRequest carries the editable finance entry fields.
// Positive amounts are income, negative amounts are expenses.
type financeEntryRequest struct {
	Title       string     `json:"title" binding:"required"`
	AmountCents int64      `json:"amount_cents" binding:"required"`
	Category    string     `json:"category"`
	Date        *time.Time `json:"date"`
	MemberID    string     `json:"member_id"`
}

// scanRequest carries scanned receipt text, either plain OCR lines or a
// vision API JSON payload.
type scanRequest struct {
	Text     string `json:"text" binding:"required"`
	MemberID string `json:"member_id"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
