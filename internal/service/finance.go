package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/receipt"
	"github.com/bandstand-io/bandstand/internal/store"
)

// FinanceEntryInput carries the caller-editable booking fields. The
// amount is signed: income positive, expenses negative.
type FinanceEntryInput struct {
	Title       string
	AmountCents int64
	Category    string
	Date        *time.Time
	MemberID    string
}

// FinanceService manages a group's bookings and turns scanned receipts
// into prefilled expense entries.
type FinanceService struct {
	store   *store.Store
	hub     *Hub
	scanner *receipt.Scanner
}

func NewFinanceService(s *store.Store, hub *Hub) *FinanceService {
	return &FinanceService{store: s, hub: hub, scanner: receipt.NewScanner()}
}

// CreateEntry stores a new booking. A missing date defaults to now.
func (s *FinanceService) CreateEntry(ctx context.Context, groupID string, in FinanceEntryInput) (*domain.FinanceEntry, error) {
	if err := validateEntryInput(in); err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	date := now
	if in.Date != nil {
		date = in.Date.UTC()
	}
	entry := &domain.FinanceEntry{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		Title:       in.Title,
		AmountCents: in.AmountCents,
		Category:    in.Category,
		Date:        date,
		MemberID:    in.MemberID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.save(ctx, entry, ActionCreated); err != nil {
		return nil, err
	}
	slog.Info("Created finance entry", "entryID", entry.ID, "groupID", groupID, "amountCents", entry.AmountCents)
	return entry, nil
}

// GetEntry returns one booking of the group.
func (s *FinanceService) GetEntry(ctx context.Context, groupID, id string) (*domain.FinanceEntry, error) {
	return s.get(ctx, groupID, id)
}

// UpdateEntry replaces a booking's editable fields. Receipt provenance,
// if any, stays attached.
func (s *FinanceService) UpdateEntry(ctx context.Context, groupID, id string, in FinanceEntryInput) (*domain.FinanceEntry, error) {
	if err := validateEntryInput(in); err != nil {
		return nil, err
	}
	entry, err := s.get(ctx, groupID, id)
	if err != nil {
		return nil, err
	}
	entry.Title = in.Title
	entry.AmountCents = in.AmountCents
	entry.Category = in.Category
	if in.Date != nil {
		entry.Date = in.Date.UTC()
	}
	entry.MemberID = in.MemberID
	if err := s.save(ctx, entry, ActionUpdated); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes a booking.
func (s *FinanceService) DeleteEntry(ctx context.Context, groupID, id string) error {
	entry, err := s.get(ctx, groupID, id)
	if err != nil {
		return err
	}
	if err := s.store.Finance.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete finance entry: %w", err)
	}
	s.hub.Publish(Event{GroupID: entry.GroupID, Kind: KindFinance, Action: ActionDeleted, EntityID: id})
	return nil
}

// List returns the group's bookings, newest booking date first.
func (s *FinanceService) List(ctx context.Context, groupID string) ([]domain.FinanceEntry, error) {
	entries, err := s.store.Finance.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list finance entries: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Summary totals the group's bookings.
func (s *FinanceService) Summary(ctx context.Context, groupID string) (*domain.FinanceSummary, error) {
	entries, err := s.store.Finance.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list finance entries: %w", err)
	}
	summary := &domain.FinanceSummary{EntryCount: len(entries)}
	for i := range entries {
		amount := entries[i].AmountCents
		if amount >= 0 {
			summary.IncomeCents += amount
		} else {
			summary.ExpenseCents += -amount
		}
	}
	summary.NetCents = summary.IncomeCents - summary.ExpenseCents
	return summary, nil
}

// ScanReceipt extracts a booking suggestion from OCR output without
// storing anything. The payload may be an OCR provider's JSON response
// or plain text.
func (s *FinanceService) ScanReceipt(payload []byte) receipt.Suggestion {
	return s.scanner.ScanJSON(payload)
}

// CreateFromScan scans OCR output and books the result as an expense,
// keeping the scan's provenance on the entry. Fails when no amount was
// recognised.
func (s *FinanceService) CreateFromScan(ctx context.Context, groupID, memberID string, payload []byte) (*domain.FinanceEntry, error) {
	suggestion := s.scanner.ScanJSON(payload)
	if suggestion.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: no amount recognised on the receipt", ErrInvalidInput)
	}

	title := suggestion.Merchant
	if title == "" {
		title = "Scanned receipt"
	}
	now := time.Now().UTC()
	date := suggestion.Date
	if date.IsZero() {
		date = now
	}
	entry := &domain.FinanceEntry{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		Title:       title,
		AmountCents: -suggestion.AmountCents,
		Date:        date,
		MemberID:    memberID,
		Receipt: &domain.ReceiptInfo{
			Merchant:   suggestion.Merchant,
			Currency:   suggestion.Currency,
			Confidence: suggestion.Confidence,
			ScannedAt:  now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, entry, ActionCreated); err != nil {
		return nil, err
	}
	slog.Info("Booked scanned receipt", "entryID", entry.ID, "groupID", groupID,
		"merchant", suggestion.Merchant, "amountCents", entry.AmountCents, "confidence", suggestion.Confidence)
	return entry, nil
}

func (s *FinanceService) get(ctx context.Context, groupID, id string) (*domain.FinanceEntry, error) {
	entry, err := s.store.Finance.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get finance entry: %w", err)
	}
	if entry.GroupID != groupID {
		return nil, fmt.Errorf("finance entry %s: %w", id, store.ErrNotFound)
	}
	return entry, nil
}

func (s *FinanceService) save(ctx context.Context, entry *domain.FinanceEntry, action string) error {
	entry.UpdatedAt = time.Now().UTC()
	if err := s.store.Finance.Save(ctx, entry.ID, entry); err != nil {
		return fmt.Errorf("save finance entry: %w", err)
	}
	s.hub.Publish(Event{GroupID: entry.GroupID, Kind: KindFinance, Action: action, EntityID: entry.ID})
	return nil
}

func validateEntryInput(in FinanceEntryInput) error {
	if in.Title == "" {
		return fmt.Errorf("%w: entry title is required", ErrInvalidInput)
	}
	if in.AmountCents == 0 {
		return fmt.Errorf("%w: amount must not be zero", ErrInvalidInput)
	}
	return nil
}
