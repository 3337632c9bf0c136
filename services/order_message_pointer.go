package services

import (
	"context"
	"errors"
	"strings"

	"cafe-pos/db"
	"github.com/jackc/pgx/v5"
)

// Screen cards that are edited in place rather than re-sent.
const (
	CardCart = "cart"
	CardMenu = "menu"
)

// EnsureCardMessagePointersTable creates card_message_pointers if missing (safety net when migrate was not run).
func EnsureCardMessagePointersTable(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS card_message_pointers (
			tg_user_id BIGINT NOT NULL,
			card TEXT NOT NULL CHECK (card IN ('cart','menu')),
			chat_id BIGINT NOT NULL,
			message_id INT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (tg_user_id, card)
		);
	`)
	return err
}

func isRelationNotExist(err error) bool {
	return err != nil && strings.Contains(err.Error(), "card_message_pointers") && strings.Contains(err.Error(), "does not exist")
}

// GetCardMessagePointer returns the chat_id and message_id of the operator's card.
// ok is false if no pointer exists or no database is configured.
func GetCardMessagePointer(ctx context.Context, tgUserID int64, card string) (chatID int64, messageID int, ok bool, err error) {
	if db.Pool == nil {
		return 0, 0, false, nil
	}
	err = db.Pool.QueryRow(ctx, `
		SELECT chat_id, message_id FROM card_message_pointers WHERE tg_user_id = $1 AND card = $2`,
		tgUserID, card,
	).Scan(&chatID, &messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, false, nil
		}
		if isRelationNotExist(err) {
			if ensureErr := EnsureCardMessagePointersTable(ctx); ensureErr != nil {
				return 0, 0, false, ensureErr
			}
			return GetCardMessagePointer(ctx, tgUserID, card)
		}
		return 0, 0, false, err
	}
	return chatID, messageID, true, nil
}

// UpsertCardMessagePointer inserts or updates the pointer for (tg_user_id, card).
func UpsertCardMessagePointer(ctx context.Context, tgUserID int64, card string, chatID int64, messageID int) error {
	if db.Pool == nil {
		return nil
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO card_message_pointers (tg_user_id, card, chat_id, message_id, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (tg_user_id, card) DO UPDATE SET chat_id = EXCLUDED.chat_id, message_id = EXCLUDED.message_id, updated_at = now()`,
		tgUserID, card, chatID, messageID,
	)
	if err != nil && isRelationNotExist(err) {
		if ensureErr := EnsureCardMessagePointersTable(ctx); ensureErr != nil {
			return ensureErr
		}
		return UpsertCardMessagePointer(ctx, tgUserID, card, chatID, messageID)
	}
	return err
}

// DeleteCardMessagePointers forgets all cards of the operator (after logout or a placed order).
func DeleteCardMessagePointers(ctx context.Context, tgUserID int64) error {
	if db.Pool == nil {
		return nil
	}
	_, err := db.Pool.Exec(ctx, `DELETE FROM card_message_pointers WHERE tg_user_id = $1`, tgUserID)
	if isRelationNotExist(err) {
		return nil
	}
	return err
}
