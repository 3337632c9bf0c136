package services

import (
	"context"
	"encoding/json"
	"fmt"

	"cafe-pos/db"
)

const outboundRole = "system/outbound"

// SaveOutboundMessage persists an outbound system message (e.g. kitchen ticket).
func SaveOutboundMessage(ctx context.Context, chatID int64, content string, meta map[string]interface{}) error {
	if db.Pool == nil {
		return nil
	}
	metaJSON := "{}"
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}
		metaJSON = string(b)
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO messages (chat_id, role, content, meta)
		VALUES ($1, $2, $3, $4::jsonb)`,
		chatID, outboundRole, content, metaJSON,
	)
	return err
}

// SentKitchenTicketWithin30s returns true if a ticket for orderID was already sent in the last 30 seconds (de-dup).
func SentKitchenTicketWithin30s(ctx context.Context, orderID string) (bool, error) {
	if db.Pool == nil || orderID == "" {
		return false, nil
	}
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE role = $1 AND meta->>'sent_via' = 'kitchen_ticket'
		  AND (meta->>'order_id') = $2
		  AND created_at > now() - interval '30 seconds'`,
		outboundRole, orderID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
