// services/alternation.go
package services

import "upvote-club/models"

// NextCounter picks which counter the next completion advances. Main and bonus
// actions interleave roughly 1:1, main wins ties, and the final unit always
// lands on main. A counter that reached its cap is never chosen.
func NextCounter(task *models.Task) (models.CompletionCounter, error) {
	mainRemaining := task.MainRemaining()
	bonusRemaining := task.BonusRemaining()

	switch {
	case mainRemaining+bonusRemaining == 0:
		return "", models.ErrNoRemainingActions
	case mainRemaining == 0:
		return models.CounterBonus, nil
	case bonusRemaining == 0:
		return models.CounterMain, nil
	case mainRemaining+bonusRemaining == 1:
		return models.CounterMain, nil
	case task.ActionsCompleted == task.BonusActionsCompleted:
		return models.CounterMain, nil
	case task.ActionsCompleted > task.BonusActionsCompleted:
		return models.CounterBonus, nil
	default:
		return models.CounterMain, nil
	}
}
