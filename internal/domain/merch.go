package domain

import "time"

// MerchItem represents a merchandise article with its current stock.
// Prices are stored in integer cents; Stock never goes negative.
type MerchItem struct {
	ID         string    `json:"id" bson:"_id"`
	GroupID    string    `json:"group_id" bson:"group_id"`
	Name       string    `json:"name" bson:"name"`
	Size       string    `json:"size,omitempty" bson:"size,omitempty"`
	PriceCents int64     `json:"price_cents" bson:"price_cents"`
	Stock      int       `json:"stock" bson:"stock"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// Sale represents a recorded merch sale. The unit price is captured at
// sale time so later price changes do not rewrite history.
type Sale struct {
	ID             string    `json:"id" bson:"_id"`
	GroupID        string    `json:"group_id" bson:"group_id"`
	ItemID         string    `json:"item_id" bson:"item_id"`
	Quantity       int       `json:"quantity" bson:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents" bson:"unit_price_cents"`
	MemberID       string    `json:"member_id,omitempty" bson:"member_id,omitempty"`
	SoldAt         time.Time `json:"sold_at" bson:"sold_at"`
}

// TotalCents returns the sale total in cents.
func (s *Sale) TotalCents() int64 {
	return int64(s.Quantity) * s.UnitPriceCents
}
