package services

import (
	"errors"
	"testing"

	"upvote-club/models"
)

func TestRefundFor(t *testing.T) {
	cases := []struct {
		required, completed int
		price               int64
		want                string
	}{
		{5, 2, 10, "30"},
		{5, 0, 10, "50"},
		{5, 5, 10, "0"},
		{5, 7, 10, "0"},
		{0, 0, 10, "0"},
		{3, 1, 0, "0"},
	}
	for _, tc := range cases {
		got := RefundFor(tc.required, tc.completed, tc.price)
		if !got.Equal(dec(tc.want)) {
			t.Errorf("RefundFor(%d, %d, %d)=%s, want %s", tc.required, tc.completed, tc.price, got, tc.want)
		}
	}
}

func TestRewardPerAction(t *testing.T) {
	cases := []struct {
		original int64
		required int
		want     string
	}{
		{50, 5, "5"},
		{10, 3, "1.66666667"},
		{7, 1, "3.5"},
		{50, 0, "0"},
	}
	for _, tc := range cases {
		got := RewardPerAction(tc.original, tc.required)
		if !got.Equal(dec(tc.want)) {
			t.Errorf("RewardPerAction(%d, %d)=%s, want %s", tc.original, tc.required, got, tc.want)
		}
	}
}

func TestNextCounterTrajectory(t *testing.T) {
	task := &models.Task{ActionsRequired: 3, BonusActions: 2}
	want := [][2]int{{1, 0}, {1, 1}, {2, 1}, {2, 2}, {3, 2}}

	for i, w := range want {
		counter, err := NextCounter(task)
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		if counter == models.CounterBonus {
			task.BonusActionsCompleted++
		} else {
			task.ActionsCompleted++
		}
		if task.ActionsCompleted != w[0] || task.BonusActionsCompleted != w[1] {
			t.Fatalf("step %d: (main,bonus)=(%d,%d), want (%d,%d)",
				i+1, task.ActionsCompleted, task.BonusActionsCompleted, w[0], w[1])
		}
	}
	if !task.MeetsCompletionCriterion() {
		t.Fatal("criterion not met after full trajectory")
	}
	if _, err := NextCounter(task); !errors.Is(err, models.ErrNoRemainingActions) {
		t.Fatalf("err=%v, want ErrNoRemainingActions", err)
	}
}

func TestNextCounterNeverExceedsCaps(t *testing.T) {
	shapes := [][2]int{{1, 3}, {4, 0}, {2, 5}, {5, 1}}
	for _, s := range shapes {
		task := &models.Task{ActionsRequired: s[0], BonusActions: s[1]}
		for i := 0; i < s[0]+s[1]; i++ {
			counter, err := NextCounter(task)
			if err != nil {
				t.Fatalf("shape %v step %d: %v", s, i, err)
			}
			if counter == models.CounterBonus {
				task.BonusActionsCompleted++
			} else {
				task.ActionsCompleted++
			}
			if task.ActionsCompleted > task.ActionsRequired || task.BonusActionsCompleted > task.BonusActions {
				t.Fatalf("shape %v overflowed: (%d,%d)", s, task.ActionsCompleted, task.BonusActionsCompleted)
			}
		}
		if !task.MeetsCompletionCriterion() {
			t.Fatalf("shape %v not complete: (%d,%d)", s, task.ActionsCompleted, task.BonusActionsCompleted)
		}
	}
}
