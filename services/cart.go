package services

import (
	"sync"

	"cafe-pos/models"

	"github.com/shopspring/decimal"
)

// CartLine is one item-to-quantity entry. Name and price are snapshotted
// when the item is first added.
type CartLine struct {
	ItemID   string
	Name     string
	Price    decimal.Decimal
	Category string
	Quantity int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the in-memory cart of one operator. Lines keep insertion order,
// there is at most one line per item id, and no line has quantity 0.
type Cart struct {
	mu    sync.Mutex
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem adds one unit of item, creating the line on first add.
func (c *Cart) AddItem(item models.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, CartLine{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Category: item.Category,
		Quantity: 1,
	})
}

// IncrementQuantity raises an existing line by delta. Unknown ids and
// non-positive deltas are ignored.
func (c *Cart) IncrementQuantity(itemID string, delta int) {
	if delta <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(itemID); i >= 0 {
		c.lines[i].Quantity += delta
	}
}

// DecrementQuantity lowers a line by delta, clamped at zero; a line that
// reaches zero is removed.
func (c *Cart) DecrementQuantity(itemID string, delta int) {
	if delta <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(itemID)
	if i < 0 {
		return
	}
	q := c.lines[i].Quantity - delta
	if q <= 0 {
		c.removeLocked(i)
		return
	}
	c.lines[i].Quantity = q
}

func (c *Cart) RemoveItem(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(itemID); i >= 0 {
		c.removeLocked(i)
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// RemoveSubmitted takes the quantities of an accepted order back out of the
// cart. Units added after the snapshot was taken stay.
func (c *Cart) RemoveSubmitted(lines []CartLine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range lines {
		i := c.indexLocked(l.ItemID)
		if i < 0 {
			continue
		}
		if c.lines[i].Quantity <= l.Quantity {
			c.removeLocked(i)
			continue
		}
		c.lines[i].Quantity -= l.Quantity
	}
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CartLinesTotal(c.lines)
}

// CartLinesTotal sums a snapshot of cart lines.
func CartLinesTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Quantity(itemID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(itemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) Contains(itemID string) bool {
	return c.Quantity(itemID) > 0
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) indexLocked(itemID string) int {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeLocked(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// orderLines converts cart lines to order lines, skipping anything without units.
func orderLines(lines []CartLine) []models.OrderLine {
	out := make([]models.OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		out = append(out, models.OrderLine{MenuID: l.ItemID, Quantity: l.Quantity})
	}
	return out
}
