package services

import (
	"fmt"
	"strings"

	"cafe-pos/models"
)

// CardButton is one inline button (text + callback_data or url).
type CardButton struct {
	Text         string
	CallbackData string
	URL          string // if set, use as URL button instead of callback
}

// Card is the text and optional inline keyboard of one bot screen.
type Card struct {
	Text    string
	Buttons [][]CardButton
}

func categoryLabel(category string) string {
	switch category {
	case models.CategoryFood:
		return "🍛 Food"
	case models.CategoryDrink:
		return "🥤 Drinks"
	default:
		return category
	}
}

// BuildCategoryCard is the menu entry screen with one button per category.
func BuildCategoryCard(state CatalogState, cart []CartLine) Card {
	text := "📋 Menu"
	switch state {
	case CatalogFailed:
		text += "\n\n⚠️ The menu could not be loaded. Showing the last known menu."
	case CatalogEmpty:
		text += "\n\nThe menu is empty."
	}
	text += cartSummary(cart)

	row := make([]CardButton, 0, len(models.Categories))
	for _, c := range models.Categories {
		row = append(row, CardButton{Text: categoryLabel(c), CallbackData: "cat:" + c})
	}
	buttons := [][]CardButton{row}
	if len(cart) > 0 {
		buttons = append(buttons, []CardButton{{Text: "🛒 Cart", CallbackData: "cart"}})
	}
	return Card{Text: text, Buttons: buttons}
}

// BuildMenuCard lists one category; each button adds one unit to the cart.
func BuildMenuCard(category string, items []models.MenuItem, cart []CartLine) Card {
	text := fmt.Sprintf("📋 %s", categoryLabel(category))
	if len(items) == 0 {
		text += "\n\nNothing here yet."
	}
	text += cartSummary(cart)

	var buttons [][]CardButton
	for _, it := range items {
		buttons = append(buttons, []CardButton{{
			Text:         fmt.Sprintf("%s · %s", it.Name, FormatPrice(it.Price)),
			CallbackData: "add:" + it.ID + ":" + category,
		}})
	}
	if len(cart) > 0 {
		buttons = append(buttons, []CardButton{{Text: "🛒 Cart", CallbackData: "cart"}})
	}
	buttons = append(buttons, []CardButton{{Text: "⬅️ Categories", CallbackData: "back_cats"}})
	return Card{Text: text, Buttons: buttons}
}

func cartSummary(lines []CartLine) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n🛒 Cart:\n")
	total := CartLinesTotal(lines)
	for _, l := range lines {
		fmt.Fprintf(&b, "• %s × %d = %s\n", l.Name, l.Quantity, FormatPrice(l.Subtotal()))
	}
	fmt.Fprintf(&b, "Total: %s", FormatPrice(total))
	return b.String()
}

// BuildCartCard shows the cart with +/-/remove controls and the checkout fields.
func BuildCartCard(lines []CartLine, tableLabel, customerName string) Card {
	if len(lines) == 0 {
		return Card{
			Text:    "🛒 Your cart is empty.",
			Buttons: [][]CardButton{{{Text: "📋 Menu", CallbackData: "menu"}}},
		}
	}

	var b strings.Builder
	b.WriteString("🛒 Cart\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "• %s × %d = %s\n", l.Name, l.Quantity, FormatPrice(l.Subtotal()))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", FormatPrice(CartLinesTotal(lines)))
	if tableLabel == "" {
		tableLabel = "not selected (/tables)"
	}
	if strings.TrimSpace(customerName) == "" {
		customerName = "not set (/name <customer>)"
	}
	fmt.Fprintf(&b, "Table: %s\nCustomer: %s", tableLabel, customerName)

	var buttons [][]CardButton
	for _, l := range lines {
		buttons = append(buttons, []CardButton{
			{Text: "➖", CallbackData: "dec:" + l.ItemID},
			{Text: fmt.Sprintf("%s (%d)", l.Name, l.Quantity), CallbackData: "noop"},
			{Text: "➕", CallbackData: "inc:" + l.ItemID},
			{Text: "🗑", CallbackData: "rm:" + l.ItemID},
		})
	}
	buttons = append(buttons,
		[]CardButton{{Text: "🪑 Table", CallbackData: "tables"}, {Text: "🧹 Clear", CallbackData: "clear"}},
		[]CardButton{{Text: "✅ Place order", CallbackData: "submit"}},
	)
	return Card{Text: b.String(), Buttons: buttons}
}

// BuildTablesCard lists free tables; the selected one is marked.
func BuildTablesCard(tables []models.Table, selectedID string) Card {
	if len(tables) == 0 {
		return Card{Text: "🪑 No free tables right now."}
	}
	var buttons [][]CardButton
	var row []CardButton
	for _, t := range tables {
		label := "Table " + t.Number
		if t.ID == selectedID {
			label = "✅ " + label
		}
		row = append(row, CardButton{Text: label, CallbackData: "table:" + t.ID})
		if len(row) == 3 {
			buttons = append(buttons, row)
			row = nil
		}
	}
	if len(row) > 0 {
		buttons = append(buttons, row)
	}
	return Card{Text: "🪑 Choose a table:", Buttons: buttons}
}

// BuildOrderListCard renders cashier history or manager search results.
func BuildOrderListCard(title string, orders []models.OrderSummary) Card {
	if len(orders) == 0 {
		return Card{Text: title + "\n\nNo orders found."}
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	var buttons [][]CardButton
	for _, o := range orders {
		fmt.Fprintf(&b, "\n#%s · %s · table %s · %s", o.ID, o.OrderDate, o.TableNumber, o.CustomerName)
		if o.Status != "" {
			fmt.Fprintf(&b, " (%s)", o.Status)
		}
		buttons = append(buttons, []CardButton{{Text: "#" + o.ID + " details", CallbackData: "detail:" + o.ID}})
	}
	return Card{Text: b.String(), Buttons: buttons}
}

func BuildOrderDetailCard(d *models.OrderDetail) Card {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Order #%s\n\n", d.OrderID)
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "• %s × %d @ %s = %s\n", l.MenuName, l.Quantity, FormatPrice(l.Price), FormatPrice(l.LineTotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s", FormatPrice(d.TotalPrice))
	return Card{Text: b.String()}
}

func BuildUsersCard(users []models.User) Card {
	if len(users) == 0 {
		return Card{Text: "👥 No users."}
	}
	var b strings.Builder
	b.WriteString("👥 Users\n")
	for _, u := range users {
		fmt.Fprintf(&b, "\n%s · %s (%s) · %s", u.ID, u.DisplayName, u.Username, u.Role)
	}
	return Card{Text: b.String()}
}
