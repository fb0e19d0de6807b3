package root

import (
	"bytes"
	"strings"
	"testing"
)

func TestRefundCommand(t *testing.T) {
	cmd := newRefundCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--required", "5", "--completed", "2", "--price", "10"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "refund: 30") {
		t.Fatalf("output %q missing refund 30", got)
	}
	if !strings.Contains(got, "reward per action: 5") {
		t.Fatalf("output %q missing reward 5", got)
	}
}

func TestRefundCommandRejectsNegative(t *testing.T) {
	cmd := newRefundCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--required", "-1", "--price", "10"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error")
	}
}
