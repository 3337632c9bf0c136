package bot

import (
	"context"
	"strings"
	"time"

	"cafe-pos/models"
	"cafe-pos/services"
)

// parseOrderSearch reads "/orders [YYYY-MM-DD] [keyword...]".
func parseOrderSearch(args string) models.OrderSearch {
	var q models.OrderSearch
	fields := strings.Fields(args)
	if len(fields) > 0 {
		if d, err := time.Parse("2006-01-02", fields[0]); err == nil {
			q.Date = d
			fields = fields[1:]
		}
	}
	q.Key = strings.Join(fields, " ")
	return q
}

func (b *Bot) handleOrderSearch(chatID, userID int64, args string) {
	op, ok := b.requireScreen(chatID, userID, services.ScreenManager)
	if !ok {
		return
	}
	q := parseOrderSearch(args)
	orders, err := op.cafe.SearchOrders(context.Background(), q)
	if err != nil {
		b.fail(chatID, userID, "search orders", err)
		return
	}

	title := "📊 Orders"
	if !q.Date.IsZero() {
		title += " · " + q.Date.Format("2006-01-02")
	}
	if q.Key != "" {
		title += " · \"" + q.Key + "\""
	}
	b.sendCard(chatID, services.BuildOrderListCard(title, orders))
}
