package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"cafe-pos/models"
)

// OrderCreator is the remote order API.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in models.CreateOrderInput) (*models.PlacedOrder, error)
}

type SubmitState int

const (
	SubmitIdle SubmitState = iota
	SubmitSubmitting
	SubmitSucceeded
	SubmitFailed
)

func (s SubmitState) String() string {
	switch s {
	case SubmitSubmitting:
		return "submitting"
	case SubmitSucceeded:
		return "succeeded"
	case SubmitFailed:
		return "failed"
	default:
		return "idle"
	}
}

const (
	FieldCart         = "cart"
	FieldTable        = "table_id"
	FieldCustomerName = "customer_name"
)

// OrderResult is handed back after the API accepted an order.
type OrderResult struct {
	Order   models.PlacedOrder
	Receipt Receipt
}

// Checkout turns one operator's cart plus table and customer name into an order.
type Checkout struct {
	cart     *Cart
	orders   OrderCreator
	tables   *TableDirectory
	notifier OrderNotifier

	mu           sync.Mutex
	tableID      string
	customerName string
	state        SubmitState
	lastErr      error
}

// NewCheckout wires a checkout to cart and the order API. tables may be nil;
// when set, the selected table must be in its latest snapshot.
func NewCheckout(cart *Cart, orders OrderCreator, tables *TableDirectory) *Checkout {
	return &Checkout{cart: cart, orders: orders, tables: tables}
}

func (c *Checkout) SetNotifier(n OrderNotifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = n
}

func (c *Checkout) Cart() *Cart {
	return c.cart
}

func (c *Checkout) SelectTable(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID = strings.TrimSpace(tableID)
}

func (c *Checkout) TableID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tableID
}

func (c *Checkout) SetCustomerName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customerName = name
}

func (c *Checkout) CustomerName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customerName
}

func (c *Checkout) State() SubmitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Checkout) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Validate checks the local preconditions in order: cart, table, customer name.
func (c *Checkout) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Checkout) validateLocked() error {
	if c.cart.IsEmpty() {
		return ValidationError{Field: FieldCart, Message: "Your cart is empty."}
	}
	if c.tableID == "" {
		return ValidationError{Field: FieldTable, Message: "Please select a table."}
	}
	if strings.TrimSpace(c.customerName) == "" {
		return ValidationError{Field: FieldCustomerName, Message: "Please enter the customer name."}
	}
	if c.tables != nil && c.tables.HasSnapshot() {
		if _, ok := c.tables.Lookup(c.tableID); !ok {
			return ValidationError{Field: FieldTable, Message: "This table is no longer available, please pick another one."}
		}
	}
	return nil
}

// Submit validates and sends the order with exactly one API call. On success
// the submitted lines leave the cart and a receipt is returned; on failure
// the cart is left as is.
func (c *Checkout) Submit(ctx context.Context) (*OrderResult, error) {
	c.mu.Lock()
	if c.state == SubmitSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	if err := c.validateLocked(); err != nil {
		c.state = SubmitFailed
		c.lastErr = err
		c.mu.Unlock()
		return nil, err
	}

	lines := c.cart.Lines()
	in := models.CreateOrderInput{
		CustomerName: strings.TrimSpace(c.customerName),
		TableID:      c.tableID,
		Lines:        orderLines(lines),
	}
	c.state = SubmitSubmitting
	c.lastErr = nil
	notifier := c.notifier
	c.mu.Unlock()

	placed, err := c.orders.CreateOrder(ctx, in)

	c.mu.Lock()
	if err != nil {
		c.state = SubmitFailed
		c.lastErr = err
		c.mu.Unlock()
		return nil, fmt.Errorf("submit order: %w", err)
	}

	var order models.PlacedOrder
	if placed != nil {
		order = *placed
	}
	if order.CustomerName == "" {
		order.CustomerName = in.CustomerName
	}
	if order.TableID == "" {
		order.TableID = in.TableID
	}
	if order.TableNumber == "" && c.tables != nil {
		if t, ok := c.tables.Lookup(in.TableID); ok {
			order.TableNumber = t.Number
		}
	}

	c.cart.RemoveSubmitted(lines)
	if c.tableID == in.TableID {
		c.tableID = ""
	}
	if strings.TrimSpace(c.customerName) == in.CustomerName {
		c.customerName = ""
	}
	c.state = SubmitSucceeded
	c.mu.Unlock()

	result := &OrderResult{Order: order, Receipt: BuildReceipt(order, lines)}
	if notifier != nil {
		if err := notifier.OrderPlaced(ctx, result.Receipt); err != nil {
			log.Printf("order %s placed, notify failed: %v", order.ID, err)
		}
	}
	return result, nil
}

// Reset returns a finished checkout to idle without touching the cart.
func (c *Checkout) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != SubmitSubmitting {
		c.state = SubmitIdle
		c.lastErr = nil
	}
}
