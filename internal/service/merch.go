package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/store"
)

// MerchItemInput carries the caller-editable merch item fields.
type MerchItemInput struct {
	Name       string
	Size       string
	PriceCents int64
	Stock      int
}

// SaleInput describes one sale. UnitPriceCents falls back to the item's
// current price when zero; MemberID optionally records the seller.
type SaleInput struct {
	ItemID         string
	Quantity       int
	UnitPriceCents int64
	MemberID       string
}

// MerchService manages merch items and their sales for a group.
type MerchService struct {
	store *store.Store
	hub   *Hub
}

func NewMerchService(s *store.Store, hub *Hub) *MerchService {
	return &MerchService{store: s, hub: hub}
}

// CreateItem stores a new merch item.
func (s *MerchService) CreateItem(ctx context.Context, groupID string, in MerchItemInput) (*domain.MerchItem, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	item := &domain.MerchItem{
		ID:         uuid.New().String(),
		GroupID:    groupID,
		Name:       in.Name,
		Size:       in.Size,
		PriceCents: in.PriceCents,
		Stock:      in.Stock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.saveItem(ctx, item, ActionCreated); err != nil {
		return nil, err
	}
	slog.Info("Created merch item", "itemID", item.ID, "groupID", groupID, "name", item.Name)
	return item, nil
}

// ListItems returns the group's merch items in name order.
func (s *MerchService) ListItems(ctx context.Context, groupID string) ([]domain.MerchItem, error) {
	items, err := s.store.MerchItems.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list merch items: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Size < items[j].Size
	})
	return items, nil
}

// GetItem returns one merch item of the group.
func (s *MerchService) GetItem(ctx context.Context, groupID, id string) (*domain.MerchItem, error) {
	return s.getItem(ctx, groupID, id)
}

// UpdateItem replaces an item's editable fields. Stock is set to the
// given value; sales history is not rewritten.
func (s *MerchService) UpdateItem(ctx context.Context, groupID, id string, in MerchItemInput) (*domain.MerchItem, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}
	item, err := s.getItem(ctx, groupID, id)
	if err != nil {
		return nil, err
	}
	item.Name = in.Name
	item.Size = in.Size
	item.PriceCents = in.PriceCents
	item.Stock = in.Stock
	if err := s.saveItem(ctx, item, ActionUpdated); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes a merch item. Past sales of the item remain.
func (s *MerchService) DeleteItem(ctx context.Context, groupID, id string) error {
	item, err := s.getItem(ctx, groupID, id)
	if err != nil {
		return err
	}
	if err := s.store.MerchItems.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete merch item: %w", err)
	}
	s.hub.Publish(Event{GroupID: item.GroupID, Kind: KindMerch, Action: ActionDeleted, EntityID: id})
	return nil
}

// RecordSale decrements the item's stock and stores the sale. Selling
// more than the current stock fails with ErrInsufficientStock and
// changes nothing.
func (s *MerchService) RecordSale(ctx context.Context, groupID string, in SaleInput) (*domain.Sale, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if in.UnitPriceCents < 0 {
		return nil, fmt.Errorf("%w: unit price must not be negative", ErrInvalidInput)
	}
	item, err := s.getItem(ctx, groupID, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Stock < in.Quantity {
		return nil, fmt.Errorf("%w: %d requested, %d in stock", ErrInsufficientStock, in.Quantity, item.Stock)
	}

	unitPrice := in.UnitPriceCents
	if unitPrice == 0 {
		unitPrice = item.PriceCents
	}
	sale := &domain.Sale{
		ID:             uuid.New().String(),
		GroupID:        groupID,
		ItemID:         item.ID,
		Quantity:       in.Quantity,
		UnitPriceCents: unitPrice,
		MemberID:       in.MemberID,
		SoldAt:         time.Now().UTC(),
	}

	item.Stock -= in.Quantity
	if err := s.saveItem(ctx, item, ActionUpdated); err != nil {
		return nil, err
	}
	if err := s.store.Sales.Save(ctx, sale.ID, sale); err != nil {
		// Put the stock back so the two documents stay consistent.
		item.Stock += in.Quantity
		if restoreErr := s.saveItem(ctx, item, ActionUpdated); restoreErr != nil {
			slog.Error("Failed to restore stock after sale save failure",
				"itemID", item.ID, "quantity", in.Quantity, "error", restoreErr)
		}
		return nil, fmt.Errorf("save sale: %w", err)
	}

	s.hub.Publish(Event{GroupID: groupID, Kind: KindSale, Action: ActionCreated, EntityID: sale.ID})
	slog.Info("Recorded sale", "saleID", sale.ID, "itemID", item.ID, "quantity", in.Quantity, "totalCents", sale.TotalCents())
	return sale, nil
}

// ListSales returns the group's sales, newest first.
func (s *MerchService) ListSales(ctx context.Context, groupID string) ([]domain.Sale, error) {
	sales, err := s.store.Sales.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].SoldAt.After(sales[j].SoldAt)
	})
	return sales, nil
}

func (s *MerchService) getItem(ctx context.Context, groupID, id string) (*domain.MerchItem, error) {
	item, err := s.store.MerchItems.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get merch item: %w", err)
	}
	if item.GroupID != groupID {
		return nil, fmt.Errorf("merch item %s: %w", id, store.ErrNotFound)
	}
	return item, nil
}

func (s *MerchService) saveItem(ctx context.Context, item *domain.MerchItem, action string) error {
	item.UpdatedAt = time.Now().UTC()
	if err := s.store.MerchItems.Save(ctx, item.ID, item); err != nil {
		return fmt.Errorf("save merch item: %w", err)
	}
	s.hub.Publish(Event{GroupID: item.GroupID, Kind: KindMerch, Action: action, EntityID: item.ID})
	return nil
}

func validateItemInput(in MerchItemInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidInput)
	}
	if in.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	return nil
}
