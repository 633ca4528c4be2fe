package receipt

import (
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Scanner extracts a finance-entry suggestion from receipt text in a
// single pass. It never fails: fields it cannot find stay zero-valued
// and the Confidence score tells the caller how much was recognised.
type Scanner struct{}

func NewScanner() *Scanner {
	return &Scanner{}
}

// Suggestion is the scanner's best guess for a booking. Date is the
// zero time when no date was recognised.
type Suggestion struct {
	Merchant    string    `json:"merchant,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency,omitempty"`
	Date        time.Time `json:"date"`
	Confidence  float64   `json:"confidence"`
}

var (
	amountPattern = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})*[.,]\d{2}\b`)
	datePattern   = regexp.MustCompile(`\b\d{1,4}[./-]\d{1,2}[./-]\d{1,4}\b`)
)

// Lines containing one of these mark the grand total.
var totalKeywords = []string{
	"total",
	"summe",
	"gesamt",
	"amount due",
	"balance due",
	"to pay",
	"zu zahlen",
}

// Lines containing one of these are intermediate sums, not the total.
var subtotalKeywords = []string{
	"subtotal",
	"sub-total",
	"zwischensumme",
}

// Lines containing one of these are never the merchant name.
var merchantStopWords = []string{
	"str.",
	"strasse",
	"straße",
	"street",
	"avenue",
	"tel",
	"phone",
	"fax",
	"www",
	"@",
	"receipt",
	"invoice",
	"rechnung",
	"kassenbon",
	"beleg",
	"mwst",
	"vat",
	"ust-id",
}

var currencyMarkers = []struct {
	marker string
	code   string
}{
	{"€", "EUR"},
	{"eur", "EUR"},
	{"$", "USD"},
	{"usd", "USD"},
	{"£", "GBP"},
	{"gbp", "GBP"},
	{"chf", "CHF"},
}

// Day-first layouts are tried before US ones since most receipts the
// scanner sees are European.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
}

// Scan runs the heuristics over plain receipt text.
func (s *Scanner) Scan(text string) Suggestion {
	var sug Suggestion
	if strings.TrimSpace(text) == "" {
		return sug
	}

	lines := strings.Split(text, "\n")

	amount, currency, fromTotal := s.findAmount(lines)
	sug.AmountCents = amount
	sug.Currency = currency
	sug.Date = s.findDate(lines)
	sug.Merchant = s.findMerchant(lines)

	if sug.AmountCents > 0 {
		sug.Confidence += 0.4
		if fromTotal {
			sug.Confidence += 0.1
		}
	}
	if sug.Merchant != "" {
		sug.Confidence += 0.2
	}
	if !sug.Date.IsZero() {
		sug.Confidence += 0.2
	}
	if sug.Currency != "" {
		sug.Confidence += 0.1
	}
	return sug
}

// ScanJSON accepts a vision-API response and scans the recognised text
// inside it. Known payload shapes are tried in order; an unrecognised
// payload is scanned as plain text so nothing is ever rejected.
func (s *Scanner) ScanJSON(payload []byte) Suggestion {
	paths := []string{
		"responses.0.fullTextAnnotation.text",
		"ParsedResults.0.ParsedText",
		"text",
	}
	for _, path := range paths {
		if text := gjson.GetBytes(payload, path).String(); text != "" {
			return s.Scan(text)
		}
	}
	return s.Scan(string(payload))
}

// findAmount picks the amount on the last grand-total line, falling
// back to the largest amount on the receipt.
func (s *Scanner) findAmount(lines []string) (int64, string, bool) {
	var (
		totalAmount   int64
		totalCurrency string
		maxAmount     int64
		maxCurrency   string
	)

	for _, line := range lines {
		dateMatch := datePattern.FindString(line)
		for _, match := range amountPattern.FindAllString(line, -1) {
			// "23.06" inside "23.06.2025" is a date, not a price.
			if dateMatch != "" && strings.Contains(dateMatch, match) {
				continue
			}
			amount := parseAmountCents(match)
			if amount <= 0 {
				continue
			}
			currency := detectCurrency(line)

			lower := strings.ToLower(line)
			if containsAny(lower, totalKeywords) && !containsAny(lower, subtotalKeywords) {
				totalAmount = amount
				totalCurrency = currency
			}
			if amount > maxAmount {
				maxAmount = amount
				maxCurrency = currency
			}
		}
	}

	if totalAmount > 0 {
		return totalAmount, totalCurrency, true
	}
	return maxAmount, maxCurrency, false
}

func (s *Scanner) findDate(lines []string) time.Time {
	for _, line := range lines {
		for _, candidate := range datePattern.FindAllString(line, -1) {
			for _, layout := range dateLayouts {
				if parsed, err := time.Parse(layout, candidate); err == nil {
					return parsed
				}
			}
		}
	}
	return time.Time{}
}

// findMerchant returns the first line that looks like a shop name:
// short lines, amounts, dates, addresses and tax boilerplate are
// skipped.
func (s *Scanner) findMerchant(lines []string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < 3 {
			continue
		}
		if amountPattern.MatchString(trimmed) || datePattern.MatchString(trimmed) {
			continue
		}
		if containsAny(strings.ToLower(trimmed), merchantStopWords) {
			continue
		}
		if digitRatio(trimmed) > 0.3 {
			continue
		}
		return trimmed
	}
	return ""
}

// parseAmountCents converts a matched amount like "1.234,56" or
// "12.50" to cents. The pattern guarantees a two-digit fraction, so
// stripping every separator leaves the value in cents.
func parseAmountCents(match string) int64 {
	var cents int64
	for _, r := range match {
		if r < '0' || r > '9' {
			continue
		}
		cents = cents*10 + int64(r-'0')
	}
	return cents
}

func detectCurrency(line string) string {
	lower := strings.ToLower(line)
	for _, c := range currencyMarkers {
		if strings.Contains(lower, c.marker) {
			return c.code
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func digitRatio(s string) float64 {
	if s == "" {
		return 0
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}
