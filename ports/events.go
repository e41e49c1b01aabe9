package ports

import "context"

// EventPublisher publishes authentication events to notify other instances.
// Publishing is best effort: a failed publish never fails the operation
// that triggered it.
type EventPublisher interface {
	PublishWalletCreated(ctx context.Context, walletID, address string) error
	PublishLogin(ctx context.Context, walletID, address string) error
}
