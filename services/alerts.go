// services/alerts.go
package services

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"upvote-club/config"

	"github.com/go-telegram/bot"
)

type AlertTopic int

const (
	AlertSweep AlertTopic = iota
	AlertNotify
	AlertPayment
)

// Alerter pushes operator-facing messages. Alerts are fire-and-forget.
type Alerter interface {
	Alert(topic AlertTopic, text string)
}

type NopAlerter struct{}

func (NopAlerter) Alert(AlertTopic, string) {}

// TelegramAlerter posts into forum topics of a single ops chat.
type TelegramAlerter struct {
	bot    *bot.Bot
	chatID int64
	topics map[AlertTopic]int
}

func NewTelegramAlerter(cfg *config.Config) (*TelegramAlerter, error) {
	b, err := bot.New(cfg.TelegramBotToken, bot.WithSkipGetMe())
	if err != nil {
		return nil, err
	}
	return &TelegramAlerter{
		bot:    b,
		chatID: cfg.AlertChatID,
		topics: map[AlertTopic]int{
			AlertSweep:   cfg.AlertTopicSweep,
			AlertNotify:  cfg.AlertTopicNotify,
			AlertPayment: cfg.AlertTopicPayment,
		},
	}, nil
}

// NewAlerterFromConfig returns a Telegram alerter when a bot token and chat
// are configured, otherwise a no-op.
func NewAlerterFromConfig(cfg *config.Config) Alerter {
	if !cfg.AlertsEnabled() {
		return NopAlerter{}
	}
	a, err := NewTelegramAlerter(cfg)
	if err != nil {
		log.Printf("⚠️ Telegram alerts disabled: %v", err)
		return NopAlerter{}
	}
	return a
}

func (a *TelegramAlerter) Alert(topic AlertTopic, text string) {
	text = truncateMessage(text, config.MaxTelegramMessageLen)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := a.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          a.chatID,
			Text:            text,
			MessageThreadID: a.topics[topic],
		})
		if err != nil {
			log.Printf("⚠️ Telegram alert failed: %v", err)
		}
	}()
}

// truncateMessage cuts text to at most limit characters on a rune boundary.
func truncateMessage(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-3]) + "..."
}
