package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/clienthub/identity/pkg/kafka"
)

// Kafka topic constants for identity domain events.
const (
	TopicLoggedIn               = "identity.account.logged_in"
	TopicPasswordResetRequested = "identity.account.password_reset_requested"
	TopicPasswordChanged        = "identity.account.password_changed"
)

// AggregateTypeAccount is the aggregate type carried by all identity events.
const AggregateTypeAccount = "account"

// SourceIdentityService identifies events originating from this service.
const SourceIdentityService = "identity-service"

// LoggedInData is the payload for an account.logged_in event.
type LoggedInData struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// PasswordResetRequestedData is the payload for an
// account.password_reset_requested event.
type PasswordResetRequestedData struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// PasswordChangedData is the payload for an account.password_changed event.
type PasswordChangedData struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	// Via records which flow changed the password: "reset" or "change".
	Via string `json:"via"`
}

// Publisher is the event-publishing capability the service layer depends on.
type Publisher interface {
	PublishLoggedIn(ctx context.Context, accountID, email string) error
	PublishPasswordResetRequested(ctx context.Context, accountID, email string) error
	PublishPasswordChanged(ctx context.Context, accountID, email, via string) error
}

// Producer publishes identity domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the identity service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishLoggedIn publishes an account.logged_in event.
func (p *Producer) PublishLoggedIn(ctx context.Context, accountID, email string) error {
	data := LoggedInData{AccountID: accountID, Email: email}
	return p.publish(ctx, TopicLoggedIn, accountID, data)
}

// PublishPasswordResetRequested publishes an account.password_reset_requested event.
func (p *Producer) PublishPasswordResetRequested(ctx context.Context, accountID, email string) error {
	data := PasswordResetRequestedData{AccountID: accountID, Email: email}
	return p.publish(ctx, TopicPasswordResetRequested, accountID, data)
}

// PublishPasswordChanged publishes an account.password_changed event.
func (p *Producer) PublishPasswordChanged(ctx context.Context, accountID, email, via string) error {
	data := PasswordChangedData{AccountID: accountID, Email: email, Via: via}
	return p.publish(ctx, TopicPasswordChanged, accountID, data)
}

func (p *Producer) publish(ctx context.Context, topic, accountID string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, accountID, AggregateTypeAccount, SourceIdentityService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published identity event",
		slog.String("topic", topic),
		slog.String("account_id", accountID),
	)

	return nil
}
