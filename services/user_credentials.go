package services

import (
	"context"
	"errors"

	"cafe-pos/db"
	"github.com/jackc/pgx/v5"
)

// PgCredentials stores operator login data in operator_credentials.
type PgCredentials struct{}

func NewPgCredentials() *PgCredentials {
	return &PgCredentials{}
}

func (PgCredentials) Get(ctx context.Context, tgUserID int64, key string) (string, bool, error) {
	var value string
	err := db.Pool.QueryRow(ctx, `
		SELECT value FROM operator_credentials WHERE tg_user_id = $1 AND key = $2`,
		tgUserID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set upserts all values in one transaction.
func (PgCredentials) Set(ctx context.Context, tgUserID int64, values map[string]string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for k, v := range values {
		_, err := tx.Exec(ctx, `
			INSERT INTO operator_credentials (tg_user_id, key, value, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (tg_user_id, key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = now()`,
			tgUserID, k, v,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Delete removes every key for the operator (logout). Do not log values.
func (PgCredentials) Delete(ctx context.Context, tgUserID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM operator_credentials WHERE tg_user_id = $1`, tgUserID)
	return err
}
