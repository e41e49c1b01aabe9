package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ethos-labs/ethos-auth/ports"
)

const (
	// TopicWalletCreated carries first-contact wallet registrations.
	TopicWalletCreated = "ethos.wallet_created"

	// TopicLogin carries successful logins.
	TopicLogin = "ethos.login"
)

// AuthEvent is the payload published on both topics.
type AuthEvent struct {
	WalletID string `json:"wallet_id"`
	Address  string `json:"address"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) publish(topic, walletID, address string) error {
	payload, err := json.Marshal(AuthEvent{WalletID: walletID, Address: address})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(walletID, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// PublishWalletCreated publishes a wallet-created event.
func (p *WatermillPublisher) PublishWalletCreated(ctx context.Context, walletID, address string) error {
	return p.publish(TopicWalletCreated, walletID, address)
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, walletID, address string) error {
	return p.publish(TopicLogin, walletID, address)
}

// NopPublisher drops all events. Used when no event transport is configured.
type NopPublisher struct{}

func (NopPublisher) PublishWalletCreated(context.Context, string, string) error { return nil }
func (NopPublisher) PublishLogin(context.Context, string, string) error        { return nil }
