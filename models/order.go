package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is one (menu item, quantity) pair of an order submission.
type OrderLine struct {
	MenuID   string
	Quantity int
}

// CreateOrderInput is the transient order built from the cart at submission time.
type CreateOrderInput struct {
	CustomerName string
	TableID      string
	Lines        []OrderLine
}

// PlacedOrder is what the order API echoes back on success.
type PlacedOrder struct {
	ID           string
	OrderDate    time.Time
	CustomerName string
	TableID      string
	TableNumber  string
}

// OrderSummary is a row of the order history / search screens.
type OrderSummary struct {
	ID           string
	OrderDate    string
	CustomerName string
	TableNumber  string
	Status       string
	CreatedAt    string
}

type OrderDetailLine struct {
	ID        string
	MenuName  string
	Quantity  int
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

type OrderDetail struct {
	OrderID    string
	Lines      []OrderDetailLine
	TotalPrice decimal.Decimal
}

// OrderSearch filters the manager order list. Zero values mean "no filter".
type OrderSearch struct {
	Date time.Time
	Key  string
}
