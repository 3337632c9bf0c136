package models

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Category    string // "food" or "drink"
	Description string
	ImageURL    string
}

const (
	CategoryFood  = "food"
	CategoryDrink = "drink"
)

// Categories lists the closed set of menu categories in display order.
var Categories = []string{CategoryFood, CategoryDrink}

func ValidCategory(c string) bool {
	return c == CategoryFood || c == CategoryDrink
}

// MenuUpdate is the editable part of a menu item (admin screen).
type MenuUpdate struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	Description string
}

// NewMenuItem is a menu item to create together with its picture.
type NewMenuItem struct {
	MenuUpdate
	ImageName string
	Image     []byte
}
