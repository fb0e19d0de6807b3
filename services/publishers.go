// services/publishers.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"upvote-club/config"
	"upvote-club/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	kgo "github.com/segmentio/kafka-go"
)

// OutboundMessage is what the notification gateway receives.
type OutboundMessage struct {
	NotificationID  string                  `json:"notification_id"`
	IdempotencyKey  string                  `json:"idempotency_key"`
	Kind            models.NotificationKind `json:"kind"`
	TaskID          string                  `json:"task_id"`
	RecipientUserID string                  `json:"recipient_user_id"`
	RecipientEmail  string                  `json:"recipient_email,omitempty"`
	Subject         string                  `json:"subject"`
	Body            string                  `json:"body"`
	Payload         json.RawMessage         `json:"payload,omitempty"`
}

// Publisher hands a message to the external notification gateway.
type Publisher interface {
	Publish(ctx context.Context, msg OutboundMessage) error
}

var ErrNoRecipientEmail = errors.New("recipient email unknown")

// --- Kafka ---

type KafkaPublisher struct {
	writer *kgo.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kgo.Writer{
			Addr:         kgo.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kgo.Hash{},
			RequiredAcks: kgo.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg OutboundMessage) error {
	m, err := kafkaMessage(msg)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, m)
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// kafkaMessage keys by task id so notices for one task stay ordered.
func kafkaMessage(msg OutboundMessage) (kgo.Message, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return kgo.Message{}, fmt.Errorf("encode notification: %w", err)
	}
	return kgo.Message{
		Key:   []byte(msg.TaskID),
		Value: b,
		Time:  time.Now(),
		Headers: []kgo.Header{
			{Key: "kind", Value: []byte(msg.Kind)},
			{Key: "idempotency_key", Value: []byte(msg.IdempotencyKey)},
		},
	}, nil
}

// --- SES ---

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESPublisher struct {
	client    sesAPI
	fromEmail string
}

func NewSESPublisher(cfg aws.Config, fromEmail string) (*SESPublisher, error) {
	if fromEmail == "" {
		return nil, fmt.Errorf("SES_FROM_EMAIL is not set")
	}
	return &SESPublisher{client: sesv2.NewFromConfig(cfg), fromEmail: fromEmail}, nil
}

func (p *SESPublisher) Publish(ctx context.Context, msg OutboundMessage) error {
	if msg.RecipientEmail == "" {
		return ErrNoRecipientEmail
	}
	_, err := p.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(p.fromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{msg.RecipientEmail},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(msg.Body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES send failed: %w", err)
	}
	return nil
}

// --- Log ---

// LogPublisher only logs; used in development and when no transport is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg OutboundMessage) error {
	log.Printf("[NOTIFY] ✉️ %s → %s <%s>: %s", msg.Kind, msg.RecipientUserID, msg.RecipientEmail, msg.Subject)
	return nil
}

// NewPublisher builds the transport selected by NOTIFY_TRANSPORT. The returned
// close func is never nil.
func NewPublisher(ctx context.Context, cfg *config.Config) (Publisher, func() error, error) {
	noop := func() error { return nil }

	switch cfg.NotifyTransport {
	case config.TransportKafka:
		p := NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		return p, p.Close, nil
	case config.TransportSES:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, noop, fmt.Errorf("load AWS config: %w", err)
		}
		p, err := NewSESPublisher(awsCfg, cfg.SESFromEmail)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil
	default:
		return LogPublisher{}, noop, nil
	}
}
