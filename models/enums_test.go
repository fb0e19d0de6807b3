package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseActionKind(t *testing.T) {
	cases := []struct {
		in   string
		want ActionKind
		err  error
	}{
		{"like", ActionLike, nil},
		{" Repost ", ActionRepost, nil},
		{"FOLLOW", ActionFollow, nil},
		{"upvote", ActionUpvote, nil},
		{"retweet", "", ErrInvalidActionKind},
		{"", "", ErrInvalidActionKind},
	}
	for _, tc := range cases {
		got, err := ParseActionKind(tc.in)
		if !errors.Is(err, tc.err) {
			t.Fatalf("ParseActionKind(%q) err=%v, want %v", tc.in, err, tc.err)
		}
		if got != tc.want {
			t.Fatalf("ParseActionKind(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseDeletionReason(t *testing.T) {
	if _, err := ParseDeletionReason("  "); !errors.Is(err, ErrMissingDeletionReason) {
		t.Fatalf("blank reason err=%v, want ErrMissingDeletionReason", err)
	}
	if _, err := ParseDeletionReason("spam"); !errors.Is(err, ErrUnknownDeletionReason) {
		t.Fatalf("unknown reason err=%v, want ErrUnknownDeletionReason", err)
	}
	got, err := ParseDeletionReason("auto_close_24h")
	if err != nil || got != DeletionAutoClose24h {
		t.Fatalf("ParseDeletionReason(auto_close_24h)=%q,%v", got, err)
	}
	if got, _ := ParseDeletionReason("none"); got != DeletionNone {
		t.Fatalf("ParseDeletionReason(none)=%q, want NONE", got)
	}
}

func TestParseSocialNetwork(t *testing.T) {
	if n, err := ParseSocialNetwork("twitter"); err != nil || n != NetworkTwitter {
		t.Fatalf("ParseSocialNetwork(twitter)=%q,%v", n, err)
	}
	if _, err := ParseSocialNetwork("myspace"); !errors.Is(err, ErrInvalidSocialNetwork) {
		t.Fatalf("err=%v, want ErrInvalidSocialNetwork", err)
	}
}

func TestTaskCompletionCriterion(t *testing.T) {
	cases := []struct {
		name string
		task Task
		want bool
	}{
		{"main and bonus done", Task{ActionsRequired: 3, ActionsCompleted: 3, BonusActions: 2, BonusActionsCompleted: 2}, true},
		{"bonus pending", Task{ActionsRequired: 3, ActionsCompleted: 3, BonusActions: 2, BonusActionsCompleted: 1}, false},
		{"main pending", Task{ActionsRequired: 3, ActionsCompleted: 2}, false},
		{"zero required never completes", Task{ActionsRequired: 0, BonusActions: 0}, false},
	}
	for _, tc := range cases {
		if got := tc.task.MeetsCompletionCriterion(); got != tc.want {
			t.Fatalf("%s: MeetsCompletionCriterion()=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTaskMarkCompletedSetsDuration(t *testing.T) {
	created := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	task := Task{Status: TaskStatusActive, Timestamps: Timestamps{CreatedAt: created}}
	task.MarkCompleted(created.Add(90 * time.Minute))

	if task.Status != TaskStatusCompleted {
		t.Fatalf("Status=%s, want COMPLETED", task.Status)
	}
	if task.CompletionDuration == nil || *task.CompletionDuration != 90*time.Minute {
		t.Fatalf("CompletionDuration=%v, want 90m", task.CompletionDuration)
	}
}
