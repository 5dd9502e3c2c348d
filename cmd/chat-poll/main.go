// Command chat-poll logs in and follows one chat by polling, printing new
// messages as they arrive.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gochat/internal/client"
	"gochat/internal/config"
	"gochat/internal/logging"
	"gochat/internal/model"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.LoadConfig()

	var (
		baseURL  = flag.String("url", "http://localhost:"+cfg.Server.Port, "server base URL")
		email    = flag.String("email", os.Getenv("CHAT_EMAIL"), "login email")
		password = flag.String("password", os.Getenv("CHAT_PASSWORD"), "login password")
		peer     = flag.String("peer", "", "counterpart user id; derives the chat id")
		chatID   = flag.String("chat", "", "chat id to follow (overrides -peer)")
		send     = flag.String("send", "", "optional message to send before polling")
		interval = flag.Duration("interval", cfg.Poller.Interval, "poll interval")
	)
	flag.Parse()

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if *email == "" || *password == "" {
		logger.Fatal("email and password are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*baseURL, nil)
	login, err := api.Login(ctx, *email, *password)
	if err != nil {
		logger.Fatal("login failed", zap.Error(err))
	}
	profile, err := api.Profile(ctx)
	if err != nil {
		logger.Fatal("profile failed", zap.Error(err))
	}

	session := client.NewSession()
	session.Authenticate(login.Token, login.UserID, profile.Name)

	rows, err := api.Contacts(ctx)
	if err != nil {
		logger.Warn("contacts unavailable", zap.Error(err))
	}
	session.SetContacts(rows)

	chat := *chatID
	if chat == "" && *peer != "" {
		chat = model.DirectChatID(login.UserID, *peer)
	}
	if chat == "" {
		for _, row := range rows {
			logger.Info("contact",
				zap.String("chat_id", row.ChatID),
				zap.String("with", row.CounterpartName),
				zap.String("last", row.LastMessage),
			)
		}
		logger.Fatal("no chat selected; pass -chat or -peer")
	}

	if *send != "" {
		recipient := *peer
		if recipient == "" {
			recipient = counterpartOf(rows, chat)
		}
		if _, err := api.SendMessage(ctx, chat, recipient, *send, profile.Name); err != nil {
			logger.Error("send failed", zap.Error(err))
		}
	}

	poller := client.NewPoller(api, session, *interval, logger, func(chatID string, msgs []model.Message) {
		for _, m := range msgs {
			logger.Info("message",
				zap.String("chat_id", chatID),
				zap.String("sender", m.SenderID),
				zap.Time("at", m.Timestamp),
				zap.String("text", m.Body),
			)
		}
	})
	poller.Start(chat)
	logger.Info("polling", zap.String("chat_id", chat), zap.Duration("interval", *interval))

	<-ctx.Done()
	poller.Stop()
}

func counterpartOf(rows []model.ContactRow, chatID string) string {
	for _, row := range rows {
		if row.ChatID == chatID {
			return row.CounterpartID
		}
	}
	return ""
}
