package services

import (
	"fmt"
	"time"

	"upvote-club/models"

	"github.com/shopspring/decimal"
)

// deletionExplanations holds the creator-facing explanation for each reason.
var deletionExplanations = map[models.DeletionReason]string{
	models.DeletionLinkUnavailable: "Members reported that the link in your task is unavailable, so we closed it. Please check that the post is public and create a new task.",
	models.DeletionCommunityRules:  "Your task was removed because it does not follow the community rules.",
	models.DeletionUserRequest:     "Your task was deleted at your request.",
	models.DeletionDoubleAccount:   "Your task was removed because the same link is already being promoted from another account. Only one account may run paid tasks for a link.",
	models.DeletionAdmin24hClose:   "Your task was closed by the moderation team after 24 hours without completion.",
	models.DeletionAutoClose24h:    "Your task was closed automatically because it was not completed within 24 hours.",
	models.DeletionNone:            "Your task was deleted by an administrator.",
}

// DeletionMessage renders the subject and body of a deletion notice.
func DeletionMessage(task *models.Task, reason models.DeletionReason, refund decimal.Decimal) (string, string) {
	explanation, ok := deletionExplanations[reason]
	if !ok {
		explanation = deletionExplanations[models.DeletionNone]
	}

	subject := fmt.Sprintf("Your %s task was closed", task.ActionKind)
	body := fmt.Sprintf("%s\n\nTask: %s on %s\nLink: %s\nCompleted actions: %d of %d\n",
		explanation, task.ActionKind, task.SocialNetwork, task.PostURL,
		task.ActionsCompleted, task.ActionsRequired)
	if refund.IsPositive() {
		body += fmt.Sprintf("Refunded: %s points\n", refund.String())
	} else {
		body += "No points were refunded because every paid action was completed.\n"
	}
	return subject, body
}

// CompletionMessage renders the subject and body of a completion notice.
func CompletionMessage(task *models.Task) (string, string) {
	subject := fmt.Sprintf("Your %s task is complete", task.ActionKind)
	lead := "Good news! Your task received all requested actions."
	if task.ActionsCompleted < task.ActionsRequired {
		lead = "Your task was closed before it received every requested action."
	}
	body := fmt.Sprintf("%s\n\nTask: %s on %s\nLink: %s\nActions: %d of %d (+%d bonus)\n",
		lead, task.ActionKind, task.SocialNetwork, task.PostURL,
		task.ActionsCompleted, task.ActionsRequired, task.BonusActionsCompleted)
	if task.CompletionDuration != nil {
		body += fmt.Sprintf("Completed in: %s\n", task.CompletionDuration.Round(time.Second).String())
	}
	return subject, body
}
