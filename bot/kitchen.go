package bot

import (
	"context"
	"fmt"
	"log"

	"cafe-pos/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// kitchenNotifier posts a ticket for every placed order to the kitchen chat.
type kitchenNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func (k *kitchenNotifier) OrderPlaced(ctx context.Context, r services.Receipt) error {
	sent, err := services.SentKitchenTicketWithin30s(ctx, r.OrderID)
	if err != nil {
		log.Printf("kitchen ticket dedup order=%s: %v", r.OrderID, err)
	}
	if sent {
		return nil
	}

	text := kitchenTicket(r)
	if _, err := k.api.Send(tgbotapi.NewMessage(k.chatID, text)); err != nil {
		return fmt.Errorf("send kitchen ticket: %w", err)
	}
	meta := map[string]interface{}{"sent_via": "kitchen_ticket", "order_id": r.OrderID}
	if err := services.SaveOutboundMessage(ctx, k.chatID, text, meta); err != nil {
		log.Printf("save kitchen ticket order=%s: %v", r.OrderID, err)
	}
	return nil
}

func kitchenTicket(r services.Receipt) string {
	text := fmt.Sprintf("🔔 New order #%s\nTable %s · %s\n", r.OrderID, r.TableLabel, r.CustomerName)
	for _, l := range r.Lines {
		text += fmt.Sprintf("\n• %s × %d", l.Name, l.Quantity)
	}
	return text
}
