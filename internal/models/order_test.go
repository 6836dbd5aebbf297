package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(statuses ...ItemStatus) []OrderItem {
	out := make([]OrderItem, len(statuses))
	for i, s := range statuses {
		out[i] = OrderItem{Status: s}
	}
	return out
}

func TestItemStatusNext(t *testing.T) {
	tests := []struct {
		from   ItemStatus
		want   ItemStatus
		wantOK bool
	}{
		{ItemPending, ItemPreparing, true},
		{ItemPreparing, ItemReady, true},
		{ItemReady, ItemDelivered, true},
		{ItemDelivered, ItemDelivered, false},
	}
	for _, tt := range tests {
		got, ok := tt.from.Next()
		assert.Equal(t, tt.wantOK, ok, "Next(%s) ok", tt.from)
		assert.Equal(t, tt.want, got, "Next(%s)", tt.from)
	}
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []OrderItem
		want  OrderStatus
	}{
		{"preparing beats ready", items(ItemPreparing, ItemReady), OrderPreparing},
		{"ready beats delivered", items(ItemReady, ItemDelivered), OrderReady},
		{"all delivered", items(ItemDelivered, ItemDelivered), OrderDelivered},
		{"pending beats delivered", items(ItemDelivered, ItemPending), OrderPending},
		{"pending beats everything", items(ItemReady, ItemPreparing, ItemPending, ItemDelivered), OrderPending},
		{"single preparing", items(ItemPreparing), OrderPreparing},
		{"empty", nil, OrderPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.items))
		})
	}
}

func TestStatusText(t *testing.T) {
	b, err := json.Marshal(struct {
		Item  ItemStatus
		Order OrderStatus
	}{ItemReady, OrderCancelled})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Item":"ready","Order":"cancelled"}`, string(b))

	var s ItemStatus
	require.NoError(t, s.Scan([]byte("preparing")))
	assert.Equal(t, ItemPreparing, s)

	_, err = ParseItemStatus("cancelled")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var o OrderStatus
	require.NoError(t, o.Scan("delivered"))
	assert.Equal(t, OrderDelivered, o)
}

func TestParseFulfillment(t *testing.T) {
	f, err := ParseFulfillment("")
	require.NoError(t, err)
	assert.Equal(t, FulfillmentDelivery, f)

	f, err = ParseFulfillment("pickup")
	require.NoError(t, err)
	assert.Equal(t, FulfillmentPickup, f)

	_, err = ParseFulfillment("drone")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOrderClone(t *testing.T) {
	table := 4
	o := &Order{ID: "o1", TableNumber: &table, Items: items(ItemPending)}
	c := o.Clone()
	c.Items[0].Status = ItemReady
	*c.TableNumber = 9

	assert.Equal(t, ItemPending, o.Items[0].Status)
	assert.Equal(t, 4, *o.TableNumber)
}
