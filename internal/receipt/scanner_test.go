package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScanGermanReceipt(t *testing.T) {
	text := `REWE Markt GmbH
Musterstrasse 12
10115 Berlin
Cola 1,50
Brezel 2,30
Zwischensumme 20,00 EUR
Summe 23,80 EUR
23.06.2025 14:33`

	scanner := NewScanner()
	sug := scanner.Scan(text)

	assert.Equal(t, "REWE Markt GmbH", sug.Merchant)
	assert.Equal(t, int64(2380), sug.AmountCents, "the grand total wins over the subtotal")
	assert.Equal(t, "EUR", sug.Currency)
	assert.Equal(t, time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), sug.Date)
	assert.InDelta(t, 1.0, sug.Confidence, 0.001)
}

func TestScanUSReceipt(t *testing.T) {
	text := `Joe's Diner
123 Main Street
Burger 12.00
Fries 4.50
TOTAL $45.00`

	scanner := NewScanner()
	sug := scanner.Scan(text)

	assert.Equal(t, "Joe's Diner", sug.Merchant)
	assert.Equal(t, int64(4500), sug.AmountCents)
	assert.Equal(t, "USD", sug.Currency)
	assert.True(t, sug.Date.IsZero())
	assert.InDelta(t, 0.8, sug.Confidence, 0.001)
}

func TestScanFallsBackToLargestAmount(t *testing.T) {
	text := `Gig supplies
Cables 19,99
Tape 4,50`

	scanner := NewScanner()
	sug := scanner.Scan(text)

	assert.Equal(t, "Gig supplies", sug.Merchant)
	assert.Equal(t, int64(1999), sug.AmountCents, "no total line means the largest amount is used")
	assert.InDelta(t, 0.6, sug.Confidence, 0.001)
}

func TestScanUSDateLayout(t *testing.T) {
	text := `Venue rental
06/23/2025
Total 300.00`

	scanner := NewScanner()
	sug := scanner.Scan(text)

	assert.Equal(t, time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), sug.Date)
	assert.Equal(t, int64(30000), sug.AmountCents)
}

func TestScanEmptyText(t *testing.T) {
	scanner := NewScanner()

	for _, text := range []string{"", "   ", "\n\n"} {
		sug := scanner.Scan(text)
		assert.Zero(t, sug.AmountCents)
		assert.Empty(t, sug.Merchant)
		assert.True(t, sug.Date.IsZero())
		assert.Zero(t, sug.Confidence)
	}
}

func TestScanJSON(t *testing.T) {
	payload := `{"responses":[{"fullTextAnnotation":{"text":"Cafe Blau\nTotal 12,00 EUR"}}]}`

	scanner := NewScanner()
	sug := scanner.ScanJSON([]byte(payload))

	assert.Equal(t, "Cafe Blau", sug.Merchant)
	assert.Equal(t, int64(1200), sug.AmountCents)
	assert.Equal(t, "EUR", sug.Currency)
}

func TestScanJSONPlainTextFallback(t *testing.T) {
	scanner := NewScanner()
	sug := scanner.ScanJSON([]byte("Backline hire\nTotal 80,00"))

	assert.Equal(t, int64(8000), sug.AmountCents)
	assert.Equal(t, "Backline hire", sug.Merchant)
}

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		name     string
		match    string
		expected int64
	}{
		{
			name:     "comma decimal",
			match:    "12,50",
			expected: 1250,
		},
		{
			name:     "point decimal",
			match:    "12.50",
			expected: 1250,
		},
		{
			name:     "german thousands",
			match:    "1.234,56",
			expected: 123456,
		},
		{
			name:     "english thousands",
			match:    "1,234.56",
			expected: 123456,
		},
		{
			name:     "sub one unit",
			match:    "0,99",
			expected: 99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseAmountCents(tt.match))
		})
	}
}
