package entities

import (
	"math"
	"testing"

	"github.com/alecthomas/assert"
)

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []OrderItem
		exp   float64
	}{
		{"empty", nil, 0},
		{"single line", []OrderItem{{Price: 10, Quantity: 2}}, 20},
		{"several lines", []OrderItem{{Price: 12.5, Quantity: 1}, {Price: 8, Quantity: 3}}, 36.5},
		{"decimal cents", []OrderItem{{Price: 0.1, Quantity: 3}}, 0.3},
		{"zero quantity", []OrderItem{{Price: 9, Quantity: 0}}, 0},
	}
	for _, tt := range tests {
		got := ComputeTotal(tt.items)
		assert.Equal(t, tt.exp, got, tt.name)
	}
}

func TestComputeTotalOverflow(t *testing.T) {
	total := ComputeTotal([]OrderItem{{Price: 1e308, Quantity: 2}})
	assert.False(t, IsFinite(total))
	assert.True(t, IsFinite(ComputeTotal([]OrderItem{{Price: 1e308, Quantity: 1}})))
	assert.False(t, IsFinite(math.NaN()))
}

func TestOrderHelpers(t *testing.T) {
	o := &Order{
		Lunch:      []OrderItem{{Price: 5, Quantity: 2}, {Price: 7, Quantity: 1}},
		OrderState: OrderStatePaid,
	}
	assert.Equal(t, 17.0, o.ItemsTotal())
	assert.Equal(t, 3, o.ItemCount())
	assert.True(t, o.IsPaid())
}

func TestLunchToOrderItem(t *testing.T) {
	l := &Lunch{ID: "l1", Title: "Ajiaco", Price: 14000, Tags: []string{"sopa"}}
	it := l.ToOrderItem(2)
	assert.Equal(t, "l1", it.ID)
	assert.Equal(t, 2, it.Quantity)
	it.Tags[0] = "changed"
	assert.Equal(t, "sopa", l.Tags[0])
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, OrderStatePending.IsValid())
	assert.True(t, OrderStatePaid.IsValid())
	assert.False(t, OrderState("cancelled").IsValid())
	assert.True(t, ExpenseKindThirdParty.IsValid())
	assert.False(t, ExpenseKind("gift").IsValid())
}
