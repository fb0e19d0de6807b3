package config

import "time"

const (
	TransportLog   = "log"
	TransportKafka = "kafka"
	TransportSES   = "ses"
)

const (
	// Extra draft candidates fetched beyond the missing actions, so one
	// failing candidate does not leave the task short.
	DraftCandidateSlack = 5

	// Notification dispatch
	NotifyBatchSize      = 50
	NotifyBackfillLimit  = 200
	NotifyPublishTimeout = 5 * time.Second

	// Reward rounding (decimal places kept on balances)
	BalanceScale = 8

	// Telegram message limit
	MaxTelegramMessageLen = 4096

	// HTTP clients
	IdentityTimeout     = 10 * time.Second
	TargetLookupTimeout = 15 * time.Second
	ProfileSyncTimeout  = 30 * time.Second
	ProfileSyncInterval = 1 * time.Minute
)
