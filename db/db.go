package db

import (
	"context"
	"fmt"

	"cafe-pos/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool backs the local credential store and login throttle. Nil until Init.
var Pool *pgxpool.Pool

func Init(cfg config.DBConfig) error {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
	var err error
	Pool, err = pgxpool.New(context.Background(), connStr)
	return err
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
