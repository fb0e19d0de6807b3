// services/task_create.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"upvote-club/models"
	"upvote-club/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxPricePerAction = 1_000_000
	maxActions        = 100_000
)

type CreateTaskInput struct {
	CreatorID       string
	SocialNetwork   string
	ActionKind      string
	PostURL         string
	Price           int64
	ActionsRequired int
	BonusActions    int
}

func (in CreateTaskInput) validate() (models.SocialNetwork, models.ActionKind, error) {
	network, err := models.ParseSocialNetwork(in.SocialNetwork)
	if err != nil {
		return "", "", err
	}
	kind, err := models.ParseActionKind(in.ActionKind)
	if err != nil {
		return "", "", err
	}
	switch {
	case strings.TrimSpace(in.CreatorID) == "":
		return "", "", fmt.Errorf("%w: creator is required", models.ErrInvalidTask)
	case strings.TrimSpace(in.PostURL) == "":
		return "", "", fmt.Errorf("%w: post_url is required", models.ErrInvalidTask)
	case in.Price <= 0 || in.Price > maxPricePerAction:
		return "", "", fmt.Errorf("%w: price must be between 1 and %d", models.ErrInvalidTask, maxPricePerAction)
	case in.ActionsRequired < 1 || in.ActionsRequired > maxActions:
		return "", "", fmt.Errorf("%w: actions_required must be between 1 and %d", models.ErrInvalidTask, maxActions)
	case in.BonusActions < 0 || in.BonusActions > maxActions:
		return "", "", fmt.Errorf("%w: bonus_actions must be between 0 and %d", models.ErrInvalidTask, maxActions)
	}
	return network, kind, nil
}

// CreateTask debits the creator by price × actions_required and opens an
// ACTIVE task. Nothing is debited when validation, the target lookup, the
// balance check or the quota check fails.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	network, kind, err := in.validate()
	if err != nil {
		return nil, err
	}

	// External lookup happens before the transaction so no row lock is held
	// across the network call.
	var target *string
	if kind == models.ActionFollow && network == s.FollowLookupNetwork {
		if s.Targets == nil {
			return nil, fmt.Errorf("%w: no resolver configured for %s", models.ErrTargetLookupFailed, network)
		}
		id, err := s.Targets.Resolve(ctx, network, in.PostURL)
		if err != nil {
			log.Printf("[TASKS] ❌ Target lookup failed for %s (%s): %v", in.PostURL, network, err)
			return nil, fmt.Errorf("%w: %v", models.ErrTargetLookupFailed, err)
		}
		target = &id
	}

	originalPrice := in.Price * int64(in.ActionsRequired)
	task := &models.Task{
		ID:               uuid.NewString(),
		CreatorID:        in.CreatorID,
		SocialNetwork:    network,
		ActionKind:       kind,
		PostURL:          strings.TrimSpace(in.PostURL),
		TargetIdentifier: target,
		Price:            in.Price,
		OriginalPrice:    originalPrice,
		ActionsRequired:  in.ActionsRequired,
		BonusActions:     in.BonusActions,
		Status:           models.TaskStatusActive,
	}
	task.CreatedAt = s.Now()

	err = s.Store.Transaction(ctx, func(tx store.Store) error {
		profile, err := tx.LockProfile(ctx, in.CreatorID)
		if err != nil {
			return err
		}
		cost := decimal.NewFromInt(originalPrice)
		if profile.Balance.LessThan(cost) {
			return models.ErrInsufficientBalance
		}
		if profile.AvailableTasks <= 0 {
			return models.ErrNoAvailableTasks
		}

		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}
		profile.AvailableTasks--
		return debit(ctx, tx, profile, cost, models.TxTaskCreationDebit, task.ID, task.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[TASKS] ✅ Task %s created by %s: %s %s ×%d (+%d bonus) at %d pts, debited %d",
		task.ID, task.CreatorID, task.SocialNetwork, task.ActionKind,
		task.ActionsRequired, task.BonusActions, task.Price, task.OriginalPrice)
	return task, nil
}
