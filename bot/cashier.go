package bot

import (
	"context"
	"fmt"
	"log"

	"cafe-pos/models"
	"cafe-pos/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMenu(chatID, userID int64) {
	b.showCategories(chatID, userID, 0)
}

// showCategories refreshes the catalog and shows the category screen. A failed
// fetch still shows the last known menu, flagged as stale.
func (b *Bot) showCategories(chatID, userID int64, editMsgID int) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	ctx := context.Background()
	if _, err := op.catalog.Fetch(ctx); err != nil {
		if services.IsAuthError(err) || len(op.catalog.Items()) == 0 {
			b.fail(chatID, userID, "fetch menu", err)
			return
		}
		log.Printf("fetch menu user=%d: %v", userID, err)
	}
	card := services.BuildCategoryCard(op.catalog.State(), op.cart.Lines())
	b.showCard(chatID, editMsgID, card)
}

func (b *Bot) showCategory(chatID, userID int64, editMsgID int, category string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	if !models.ValidCategory(category) {
		return
	}
	if op.catalog.State() == services.CatalogNotLoaded {
		if _, err := op.catalog.Fetch(context.Background()); err != nil {
			b.fail(chatID, userID, "fetch menu", err)
			return
		}
	}
	card := services.BuildMenuCard(category, op.catalog.ByCategory(category), op.cart.Lines())
	b.showCard(chatID, editMsgID, card)
}

func (b *Bot) showCard(chatID int64, editMsgID int, card services.Card) {
	if editMsgID != 0 {
		if err := b.editCard(chatID, editMsgID, card); err == nil {
			return
		}
	}
	b.sendCard(chatID, card)
}

func (b *Bot) addToCart(chatID, userID int64, editMsgID int, itemID, category string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	item, found := op.catalog.Lookup(itemID)
	if !found {
		b.send(chatID, "This item is no longer on the menu.")
		return
	}
	op.cart.AddItem(item)
	if !models.ValidCategory(category) {
		category = item.Category
	}
	card := services.BuildMenuCard(category, op.catalog.ByCategory(category), op.cart.Lines())
	b.showCard(chatID, editMsgID, card)
}

func (b *Bot) cartCard(op *operator) services.Card {
	label := ""
	if id := op.checkout.TableID(); id != "" {
		label = id
		if t, ok := op.tables.Lookup(id); ok {
			label = t.Number
		}
	}
	return services.BuildCartCard(op.cart.Lines(), label, op.checkout.CustomerName())
}

func (b *Bot) handleCart(chatID, userID int64) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	b.UpsertCard(context.Background(), userID, chatID, services.CardCart, b.cartCard(op))
}

func (b *Bot) changeQuantity(chatID, userID int64, msgID int, itemID string, delta int) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	if delta > 0 {
		op.cart.IncrementQuantity(itemID, delta)
	} else {
		op.cart.DecrementQuantity(itemID, -delta)
	}
	b.showCard(chatID, msgID, b.cartCard(op))
}

func (b *Bot) removeLine(chatID, userID int64, msgID int, itemID string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	op.cart.RemoveItem(itemID)
	b.showCard(chatID, msgID, b.cartCard(op))
}

func (b *Bot) clearCart(chatID, userID int64, msgID int) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	op.cart.Clear()
	b.showCard(chatID, msgID, b.cartCard(op))
}

func (b *Bot) handleTables(chatID, userID int64) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	tables, err := op.tables.FetchAvailable(context.Background())
	if err != nil {
		b.fail(chatID, userID, "fetch tables", err)
		return
	}
	b.sendCard(chatID, services.BuildTablesCard(tables, op.checkout.TableID()))
}

func (b *Bot) selectTable(chatID, userID int64, msgID int, tableID string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	if _, found := op.tables.Lookup(tableID); !found {
		b.send(chatID, "This table is no longer available, please pick another one.")
		return
	}
	op.checkout.SelectTable(tableID)
	b.showCard(chatID, msgID, services.BuildTablesCard(op.tables.Available(), tableID))
	b.UpsertCard(context.Background(), userID, chatID, services.CardCart, b.cartCard(op))
}

func (b *Bot) handleCustomerName(chatID, userID int64, name string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	op.checkout.SetCustomerName(name)
	b.UpsertCard(context.Background(), userID, chatID, services.CardCart, b.cartCard(op))
}

func (b *Bot) handleSubmit(chatID, userID int64) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	ctx := context.Background()
	res, err := op.checkout.Submit(ctx)
	if err != nil {
		b.fail(chatID, userID, "submit order", err)
		return
	}
	if err := services.DeleteCardMessagePointers(ctx, userID); err != nil {
		log.Printf("delete card pointers user=%d: %v", userID, err)
	}

	b.send(chatID, "✅ Order placed.\n\n"+res.Receipt.Text())
	b.sendReceiptQR(chatID, res.Receipt)
}

func (b *Bot) sendReceiptQR(chatID int64, r services.Receipt) {
	png, err := r.QRCode(256)
	if err != nil {
		log.Printf("receipt qr order=%s: %v", r.OrderID, err)
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: fmt.Sprintf("order-%s.png", r.OrderID), Bytes: png})
	photo.Caption = fmt.Sprintf("Order #%s · %s", r.OrderID, services.FormatPrice(r.Total))
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("send receipt qr: %v", err)
	}
}

func (b *Bot) handleHistory(chatID, userID int64) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier)
	if !ok {
		return
	}
	ctx := context.Background()
	u, err := op.session.User(ctx)
	if err != nil {
		b.fail(chatID, userID, "history", err)
		return
	}
	orders, err := op.cafe.OrdersByCashier(ctx, u.ID)
	if err != nil {
		b.fail(chatID, userID, "history", err)
		return
	}
	b.sendCard(chatID, services.BuildOrderListCard("📜 My orders", orders))
}

func (b *Bot) handleDetail(chatID, userID int64, orderID string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenCashier, services.ScreenManager)
	if !ok {
		return
	}
	if orderID == "" {
		b.send(chatID, "Usage: /detail <order id>")
		return
	}
	d, err := op.cafe.OrderDetail(context.Background(), orderID)
	if err != nil {
		b.fail(chatID, userID, "order detail", err)
		return
	}
	b.sendCard(chatID, services.BuildOrderDetailCard(d))
}
