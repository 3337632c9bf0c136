package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cafe-pos/bot"
	"cafe-pos/clients"
	"cafe-pos/config"
	"cafe-pos/db"
	"cafe-pos/messaging"
	"cafe-pos/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Check for migrate subcommand
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(cfg)
		return
	}

	if cfg.Telegram.Token == "" {
		fmt.Fprintln(os.Stderr, "TOKEN not set")
		os.Exit(1)
	}

	var store services.CredentialStore
	switch cfg.CredentialStore {
	case "memory":
		store = services.NewMemoryCredentials()
		fmt.Println("Using in-memory credential store; sessions end on restart.")
	case "postgres":
		if err := db.Init(cfg.DB); err != nil {
			fmt.Fprintln(os.Stderr, "db:", err)
			os.Exit(1)
		}
		defer db.Close()

		// Optional auto-migration (useful in production and for fresh DBs).
		if cfg.AutoMigrate {
			if err := applyMigrations(context.Background(), false); err != nil {
				fmt.Fprintln(os.Stderr, "migrate:", err)
				os.Exit(1)
			}
		}
		store = services.NewPgCredentials()
	default:
		fmt.Fprintln(os.Stderr, "unknown CREDENTIAL_STORE:", cfg.CredentialStore)
		os.Exit(1)
	}

	cafe := clients.NewClient(cfg.API)
	b, err := bot.New(cfg, cafe, store)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bot:", err)
		os.Exit(1)
	}

	// Order events (RABBITMQ_URL); the bot works without them.
	if cfg.RabbitMQ.URL != "" {
		pub, err := messaging.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rabbitmq:", err)
		} else {
			defer pub.Close()
			b.AddNotifier(pub)
		}
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		fmt.Println("Shutting down.")
		b.Stop()
	}()

	fmt.Println("Bot started.")
	b.Start()
}

func runMigrate(cfg *config.Config) {
	if err := db.Init(cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := applyMigrations(context.Background(), true); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
