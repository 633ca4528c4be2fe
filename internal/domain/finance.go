package domain

import "time"

// FinanceEntry represents a single income or expense booking. Amounts
// are signed integer cents: income positive, expenses negative.
type FinanceEntry struct {
	ID          string       `json:"id" bson:"_id"`
	GroupID     string       `json:"group_id" bson:"group_id"`
	Title       string       `json:"title" bson:"title"`
	AmountCents int64        `json:"amount_cents" bson:"amount_cents"`
	Category    string       `json:"category,omitempty" bson:"category,omitempty"`
	Date        time.Time    `json:"date" bson:"date"`
	MemberID    string       `json:"member_id,omitempty" bson:"member_id,omitempty"`
	Receipt     *ReceiptInfo `json:"receipt,omitempty" bson:"receipt,omitempty"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

// ReceiptInfo records where an entry came from when it was prefilled by
// the receipt scanner.
type ReceiptInfo struct {
	Merchant   string    `json:"merchant,omitempty" bson:"merchant,omitempty"`
	Currency   string    `json:"currency,omitempty" bson:"currency,omitempty"`
	Confidence float64   `json:"confidence" bson:"confidence"`
	ScannedAt  time.Time `json:"scanned_at" bson:"scanned_at"`
}

// FinanceSummary aggregates a group's bookings.
type FinanceSummary struct {
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
	NetCents     int64 `json:"net_cents"`
	EntryCount   int   `json:"entry_count"`
}
