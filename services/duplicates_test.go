package services

import (
	"testing"
	"time"

	"upvote-club/models"
)

func TestNormalizeURL(t *testing.T) {
	cases := map[string]string{
		"https://WWW.Reddit.com/r/golang/comments/abc/":      "https://reddit.com/r/golang/comments/abc",
		"HTTPS://reddit.com/r/golang/comments/abc?utm=x#top": "https://reddit.com/r/golang/comments/abc",
		"https://twitter.com/Gopher":                         "https://twitter.com/Gopher",
		"  https://www.youtube.com/watch  ":                  "https://youtube.com/watch",
		"not a url/":                                         "not a url",
	}
	for in, want := range cases {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestDuplicateCleanup(t *testing.T) {
	env := newTestEnv(t)
	for _, u := range []string{"first", "second", "third", "solo"} {
		env.profile(t, u, 1000, 10)
	}

	create := func(creator, url string) *models.Task {
		task := env.createTask(t, CreateTaskInput{CreatorID: creator, Price: 10, ActionsRequired: 2, PostURL: url})
		env.clock.Advance(time.Minute)
		return task
	}

	// Shared URL: "first" posted it first, two other accounts piled on.
	a1 := create("first", "https://www.reddit.com/r/x/1/")
	b1 := create("second", "https://reddit.com/r/x/1?ref=share")
	c1 := create("third", "HTTPS://REDDIT.COM/r/x/1")
	a2 := create("first", "https://reddit.com/r/x/1#again")

	// One creator running several tasks on their own URL is fine.
	s1 := create("solo", "https://reddit.com/r/solo")
	s2 := create("solo", "https://reddit.com/r/solo/")

	report, err := env.sweeper.RunDuplicateCleanup(env.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Done != 2 {
		t.Fatalf("done=%d, want 2", report.Done)
	}

	for _, tk := range []*models.Task{b1, c1} {
		got := env.task(t, tk.ID)
		if got.Status != models.TaskStatusDeleted || *got.DeletionReason != models.DeletionDoubleAccount {
			t.Fatalf("task %s by %s=%+v, want DOUBLE_ACCOUNT", tk.ID, tk.CreatorID, got)
		}
	}
	for _, tk := range []*models.Task{a1, a2, s1, s2} {
		if env.task(t, tk.ID).Status != models.TaskStatusActive {
			t.Fatalf("task %s by %s was deleted", tk.ID, tk.CreatorID)
		}
	}
	if bal := env.balance(t, "second"); !bal.Equal(dec("1000")) {
		t.Fatalf("second balance=%s, want full refund to 1000", bal)
	}
}

func TestDuplicateCleanupFirstUserFromHistory(t *testing.T) {
	env := newTestEnv(t)
	for _, u := range []string{"origin", "late1", "late2"} {
		env.profile(t, u, 1000, 10)
	}
	env.profile(t, "worker", 0, 0)

	// The original task finished long ago; it still decides who came first.
	orig := env.createTask(t, CreateTaskInput{CreatorID: "origin", Price: 10, ActionsRequired: 1, PostURL: "https://reddit.com/r/h"})
	env.complete(t, orig.ID, "worker", models.ActionLike)
	env.clock.Advance(time.Hour)

	l1 := env.createTask(t, CreateTaskInput{CreatorID: "late1", Price: 10, ActionsRequired: 2, PostURL: "https://reddit.com/r/h"})
	env.clock.Advance(time.Minute)
	l2 := env.createTask(t, CreateTaskInput{CreatorID: "late2", Price: 10, ActionsRequired: 2, PostURL: "https://reddit.com/r/h/"})

	if _, err := env.sweeper.RunDuplicateCleanup(env.ctx); err != nil {
		t.Fatal(err)
	}
	if env.task(t, l1.ID).Status != models.TaskStatusDeleted || env.task(t, l2.ID).Status != models.TaskStatusDeleted {
		t.Fatal("late creators kept their tasks")
	}
}
