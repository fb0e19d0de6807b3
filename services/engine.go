// services/engine.go
package services

import (
	"context"
	"fmt"
	"log"

	"upvote-club/config"
	"upvote-club/models"
	"upvote-club/store"
	"upvote-club/utils"
)

// Engine bundles the services built from one configuration, shared by the
// HTTP server and the operator CLI.
type Engine struct {
	Store      store.Store
	Tasks      *TaskService
	Notifier   *Notifier
	Sweeper    *Sweeper
	Ledger     *PointLedger
	Dispatcher *Dispatcher
	Alerter    Alerter

	closePublisher func() error
}

func NewEngine(ctx context.Context, cfg *config.Config, st store.Store) (*Engine, error) {
	followNetwork, err := models.ParseSocialNetwork(cfg.FollowLookupNetwork)
	if err != nil {
		return nil, fmt.Errorf("FOLLOW_LOOKUP_NETWORK: %w", err)
	}

	alerter := NewAlerterFromConfig(cfg)
	notifier := NewNotifier(st, cfg.NotifyMaxAttempts)
	tasks := NewTaskService(st, notifier, NewHTMLTargetResolver(cfg.TargetLookupURL), followNetwork)

	sweeper, err := NewSweeper(tasks, notifier, cfg)
	if err != nil {
		return nil, err
	}
	sweeper.Alerter = alerter
	if cfg.R2Enabled() {
		if err := utils.InitR2(cfg); err != nil {
			log.Printf("⚠️ R2 archive disabled: %v", err)
		} else {
			sweeper.Archiver = R2ReportArchiver{}
		}
	}

	publisher, closePublisher, err := NewPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var identity IdentityProvider
	if cfg.IdentityURL != "" {
		identity = NewIdentityClient(cfg.IdentityURL, cfg.IdentityToken)
	}

	return &Engine{
		Store:          st,
		Tasks:          tasks,
		Notifier:       notifier,
		Sweeper:        sweeper,
		Ledger:         NewPointLedger(st, alerter),
		Dispatcher:     NewDispatcher(st, identity, publisher, alerter),
		Alerter:        alerter,
		closePublisher: closePublisher,
	}, nil
}

func (e *Engine) Close() error {
	if e.closePublisher == nil {
		return nil
	}
	return e.closePublisher()
}
