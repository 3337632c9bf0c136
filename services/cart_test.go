package services

import (
	"testing"

	"cafe-pos/models"

	"github.com/shopspring/decimal"
)

func item(id string, price int64) models.MenuItem {
	return models.MenuItem{
		ID:       id,
		Name:     "Item " + id,
		Price:    decimal.NewFromInt(price),
		Category: models.CategoryFood,
	}
}

func wantTotal(t *testing.T, c *Cart, want int64) {
	t.Helper()
	if got := c.Total(); !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("Total() = %s, want %d", got, want)
	}
}

func TestCart_AddSameItemCountsUp(t *testing.T) {
	for _, n := range []int{1, 2, 5, 12} {
		c := NewCart()
		for i := 0; i < n; i++ {
			c.AddItem(item("A", 15000))
		}
		if got := c.Quantity("A"); got != n {
			t.Errorf("after %d adds: Quantity = %d", n, got)
		}
		if got := len(c.Lines()); got != 1 {
			t.Errorf("after %d adds: %d lines, want 1", n, got)
		}
		wantTotal(t, c, 15000*int64(n))
	}
}

func TestCart_ExampleTotals(t *testing.T) {
	c := NewCart()
	c.AddItem(item("A", 15000))
	c.AddItem(item("B", 20000))
	c.AddItem(item("B", 20000))
	wantTotal(t, c, 55000)

	c.RemoveItem("A")
	wantTotal(t, c, 40000)
	if c.Contains("A") {
		t.Error("A still in cart after RemoveItem")
	}

	c.Clear()
	wantTotal(t, c, 0)
	if !c.IsEmpty() {
		t.Error("cart not empty after Clear")
	}
}

func TestCart_DecrementClampsAndRemoves(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		delta     int
		wantQty   int
		wantLines int
	}{
		{"partial", 3, 1, 2, 1},
		{"exactly to zero", 2, 2, 0, 0},
		{"below zero", 1, 5, 0, 0},
		{"zero delta ignored", 2, 0, 2, 1},
		{"negative delta ignored", 2, -3, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart()
			for i := 0; i < tt.start; i++ {
				c.AddItem(item("A", 1000))
			}
			c.DecrementQuantity("A", tt.delta)
			if got := c.Quantity("A"); got != tt.wantQty {
				t.Errorf("Quantity = %d, want %d", got, tt.wantQty)
			}
			if got := len(c.Lines()); got != tt.wantLines {
				t.Errorf("lines = %d, want %d", got, tt.wantLines)
			}
			for _, l := range c.Lines() {
				if l.Quantity <= 0 {
					t.Errorf("line %s has quantity %d", l.ItemID, l.Quantity)
				}
			}
		})
	}
}

func TestCart_IncrementDecrementRoundTrip(t *testing.T) {
	c := NewCart()
	c.AddItem(item("A", 5000))
	c.AddItem(item("B", 7000))
	before := c.Lines()

	c.IncrementQuantity("A", 3)
	c.DecrementQuantity("A", 3)

	after := c.Lines()
	if len(after) != len(before) {
		t.Fatalf("lines = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i].ItemID != after[i].ItemID || before[i].Quantity != after[i].Quantity {
			t.Errorf("line %d = %+v, want %+v", i, after[i], before[i])
		}
	}
}

func TestCart_UnknownIDsAreNoOps(t *testing.T) {
	c := NewCart()
	c.AddItem(item("A", 1000))

	c.IncrementQuantity("missing", 2)
	c.DecrementQuantity("missing", 2)
	c.RemoveItem("missing")

	if c.Contains("missing") {
		t.Error("increment must not create a line")
	}
	if c.Count() != 1 {
		t.Errorf("Count = %d, want 1", c.Count())
	}
}

func TestCart_SnapshotsPriceOnFirstAdd(t *testing.T) {
	c := NewCart()
	c.AddItem(item("A", 1000))
	c.AddItem(item("A", 9999))
	wantTotal(t, c, 2000)
}

func TestCart_LinesIsCopy(t *testing.T) {
	c := NewCart()
	c.AddItem(item("A", 1000))
	lines := c.Lines()
	lines[0].Quantity = 50
	if c.Quantity("A") != 1 {
		t.Error("mutating Lines() result changed the cart")
	}
}

func TestOrderLines_SkipsEmpty(t *testing.T) {
	got := orderLines([]CartLine{
		{ItemID: "A", Quantity: 2},
		{ItemID: "B", Quantity: 0},
		{ItemID: "C", Quantity: 1},
	})
	want := []models.OrderLine{{MenuID: "A", Quantity: 2}, {MenuID: "C", Quantity: 1}}
	if len(got) != len(want) {
		t.Fatalf("orderLines = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("orderLines[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCart_RemoveSubmitted(t *testing.T) {
	c := NewCart()
	c.AddItem(item("A", 1000))
	c.AddItem(item("B", 2000))
	c.AddItem(item("B", 2000))
	submitted := c.Lines()

	c.AddItem(item("B", 2000))
	c.AddItem(item("C", 500))
	c.RemoveItem("A")

	c.RemoveSubmitted(submitted)
	if c.Contains("A") {
		t.Error("A came back")
	}
	if got := c.Quantity("B"); got != 1 {
		t.Errorf("B quantity = %d, want 1", got)
	}
	if got := c.Quantity("C"); got != 1 {
		t.Errorf("C quantity = %d, want 1", got)
	}
	wantTotal(t, c, 2500)
}
