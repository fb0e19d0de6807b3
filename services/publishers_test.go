package services

import (
	"context"
	"errors"
	"testing"

	"upvote-club/config"
	"upvote-club/models"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESPublisher(t *testing.T) {
	ses := &fakeSES{}
	p := &SESPublisher{client: ses, fromEmail: "noreply@upvote.club"}

	msg := OutboundMessage{Kind: models.NotificationTaskDeleted, TaskID: "t1", RecipientEmail: "c@example.com", Subject: "Task deleted", Body: "body"}
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	in := ses.input
	if *in.FromEmailAddress != "noreply@upvote.club" || in.Destination.ToAddresses[0] != "c@example.com" {
		t.Fatalf("input=%+v", in)
	}
	if *in.Content.Simple.Subject.Data != "Task deleted" || *in.Content.Simple.Body.Text.Data != "body" {
		t.Fatal("subject or body not carried over")
	}

	msg.RecipientEmail = ""
	if err := p.Publish(context.Background(), msg); !errors.Is(err, ErrNoRecipientEmail) {
		t.Fatalf("err=%v, want ErrNoRecipientEmail", err)
	}

	ses.err = errors.New("throttled")
	msg.RecipientEmail = "c@example.com"
	if err := p.Publish(context.Background(), msg); err == nil {
		t.Fatal("SES error swallowed")
	}
}

func TestKafkaMessageKeyedByTask(t *testing.T) {
	m, err := kafkaMessage(OutboundMessage{
		Kind:           models.NotificationTaskCompleted,
		TaskID:         "task-42",
		IdempotencyKey: "task_completed:task-42",
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(m.Key) != "task-42" {
		t.Fatalf("key=%q", m.Key)
	}
	headers := map[string]string{}
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers["kind"] != "TASK_COMPLETED" || headers["idempotency_key"] != "task_completed:task-42" {
		t.Fatalf("headers=%v", headers)
	}
}

func TestNewPublisherDefaultsToLog(t *testing.T) {
	p, closeFn, err := NewPublisher(context.Background(), &config.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(LogPublisher); !ok {
		t.Fatalf("publisher=%T, want LogPublisher", p)
	}
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
}
