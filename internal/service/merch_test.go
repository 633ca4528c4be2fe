package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/store"
)

func newMerchService() (*MerchService, *Hub) {
	hub := NewHub()
	return NewMerchService(store.NewMemory(), hub), hub
}

func seedItem(t *testing.T, svc *MerchService) *domain.MerchItem {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), "group-1", MerchItemInput{
		Name:       "Tour Shirt",
		Size:       "M",
		PriceCents: 2500,
		Stock:      10,
	})
	require.NoError(t, err)
	return item
}

func TestCreateItem(t *testing.T) {
	svc, hub := newMerchService()
	events, cancel := hub.Subscribe("group-1")
	defer cancel()

	item := seedItem(t, svc)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, int64(2500), item.PriceCents)
	assert.Equal(t, 10, item.Stock)

	event := <-events
	assert.Equal(t, KindMerch, event.Kind)
	assert.Equal(t, ActionCreated, event.Action)
}

func TestCreateItemValidation(t *testing.T) {
	svc, _ := newMerchService()

	tests := []struct {
		name  string
		input MerchItemInput
	}{
		{name: "empty name", input: MerchItemInput{PriceCents: 100}},
		{name: "negative price", input: MerchItemInput{Name: "Shirt", PriceCents: -1}},
		{name: "negative stock", input: MerchItemInput{Name: "Shirt", Stock: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(context.Background(), "group-1", tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestListItemsSortedByName(t *testing.T) {
	svc, _ := newMerchService()
	ctx := context.Background()

	for _, in := range []MerchItemInput{
		{Name: "Tour Shirt", Size: "M", PriceCents: 2500, Stock: 5},
		{Name: "Beanie", PriceCents: 1500, Stock: 3},
		{Name: "Tour Shirt", Size: "L", PriceCents: 2500, Stock: 5},
	} {
		_, err := svc.CreateItem(ctx, "group-1", in)
		require.NoError(t, err)
	}

	items, err := svc.ListItems(ctx, "group-1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Beanie", items[0].Name)
	assert.Equal(t, "L", items[1].Size)
	assert.Equal(t, "M", items[2].Size)
}

func TestUpdateItem(t *testing.T) {
	svc, _ := newMerchService()
	item := seedItem(t, svc)

	updated, err := svc.UpdateItem(context.Background(), "group-1", item.ID, MerchItemInput{
		Name:       "Tour Shirt 2025",
		Size:       "M",
		PriceCents: 3000,
		Stock:      25,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tour Shirt 2025", updated.Name)
	assert.Equal(t, int64(3000), updated.PriceCents)
	assert.Equal(t, 25, updated.Stock)
}

func TestRecordSale(t *testing.T) {
	svc, hub := newMerchService()
	item := seedItem(t, svc)

	events, cancel := hub.Subscribe("group-1")
	defer cancel()

	sale, err := svc.RecordSale(context.Background(), "group-1", SaleInput{
		ItemID:   item.ID,
		Quantity: 3,
		MemberID: "member-1",
	})
	require.NoError(t, err)

	// Unit price defaults to the item's current price.
	assert.Equal(t, int64(2500), sale.UnitPriceCents)
	assert.Equal(t, int64(7500), sale.TotalCents())
	assert.Equal(t, "member-1", sale.MemberID)

	remaining, err := svc.GetItem(context.Background(), "group-1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, remaining.Stock)

	var kinds []string
	for len(events) > 0 {
		kinds = append(kinds, (<-events).Kind)
	}
	assert.Contains(t, kinds, KindMerch)
	assert.Contains(t, kinds, KindSale)
}

func TestRecordSaleCustomPrice(t *testing.T) {
	svc, _ := newMerchService()
	item := seedItem(t, svc)

	sale, err := svc.RecordSale(context.Background(), "group-1", SaleInput{
		ItemID:         item.ID,
		Quantity:       1,
		UnitPriceCents: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), sale.UnitPriceCents)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	svc, _ := newMerchService()
	item := seedItem(t, svc)

	_, err := svc.RecordSale(context.Background(), "group-1", SaleInput{
		ItemID:   item.ID,
		Quantity: 11,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The failed sale must not touch the stock.
	unchanged, err := svc.GetItem(context.Background(), "group-1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, unchanged.Stock)

	sales, err := svc.ListSales(context.Background(), "group-1")
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRecordSaleValidation(t *testing.T) {
	svc, _ := newMerchService()
	item := seedItem(t, svc)

	tests := []struct {
		name    string
		input   SaleInput
		wantErr error
	}{
		{
			name:    "zero quantity",
			input:   SaleInput{ItemID: item.ID},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative unit price",
			input:   SaleInput{ItemID: item.ID, Quantity: 1, UnitPriceCents: -5},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown item",
			input:   SaleInput{ItemID: "missing", Quantity: 1},
			wantErr: store.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordSale(context.Background(), "group-1", tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeleteItemKeepsSales(t *testing.T) {
	svc, _ := newMerchService()
	item := seedItem(t, svc)

	_, err := svc.RecordSale(context.Background(), "group-1", SaleInput{ItemID: item.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(context.Background(), "group-1", item.ID))

	_, err = svc.GetItem(context.Background(), "group-1", item.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	sales, err := svc.ListSales(context.Background(), "group-1")
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}
