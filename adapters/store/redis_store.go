package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ethos-labs/ethos-auth/core"
	"github.com/ethos-labs/ethos-auth/ports"
)

// RedisStore is a Redis implementation of the WalletStore interface.
// Rotation atomicity comes from an optimistic WATCH/MULTI transaction on
// the wallet key: if another client writes the key between read and commit,
// the transaction fails and the rotation loses.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(client *redis.Client) ports.WalletStore {
	return &RedisStore{
		client: client,
		prefix: "ethos:wallet:",
	}
}

type walletRecord struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r walletRecord) identity() *core.WalletIdentity {
	return &core.WalletIdentity{
		ID:        r.ID,
		Address:   r.Address,
		Nonce:     r.Nonce,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *RedisStore) key(address string) string {
	return s.prefix + address
}

// FindByAddress returns the identity for an address.
func (s *RedisStore) FindByAddress(ctx context.Context, address string) (*core.WalletIdentity, error) {
	raw, err := s.client.Get(ctx, s.key(address)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrWalletNotFound
		}
		return nil, fmt.Errorf("%w: find wallet: %v", core.ErrStoreUnavailable, err)
	}

	var rec walletRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: decode wallet: %v", core.ErrStoreUnavailable, err)
	}

	return rec.identity(), nil
}

// Create inserts a new identity with a fresh nonce. SET NX makes the insert
// atomic: the first writer wins, everyone else gets ErrWalletExists.
func (s *RedisStore) Create(ctx context.Context, address string) (*core.WalletIdentity, error) {
	now := time.Now().UTC()
	rec := walletRecord{
		ID:        core.NewID(),
		Address:   address,
		Nonce:     core.NewNonce(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: encode wallet: %v", core.ErrStoreUnavailable, err)
	}

	ok, err := s.client.SetNX(ctx, s.key(address), payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: create wallet: %v", core.ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, core.ErrWalletExists
	}

	return rec.identity(), nil
}

// GetOrCreate fetches the identity for an address, creating it on first
// contact.
func (s *RedisStore) GetOrCreate(ctx context.Context, address string) (*core.WalletIdentity, error) {
	w, err := s.FindByAddress(ctx, address)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, core.ErrWalletNotFound) {
		return nil, err
	}

	w, err = s.Create(ctx, address)
	if errors.Is(err, core.ErrWalletExists) {
		return s.FindByAddress(ctx, address)
	}
	return w, err
}

// RotateNonce replaces the nonce, compare-and-set keyed on currentNonce.
func (s *RedisStore) RotateNonce(ctx context.Context, address, currentNonce string) (*core.WalletIdentity, error) {
	key := s.key(address)
	var updated *core.WalletIdentity

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return core.ErrWalletNotFound
			}
			return fmt.Errorf("%w: rotate nonce: %v", core.ErrStoreUnavailable, err)
		}

		var rec walletRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return fmt.Errorf("%w: decode wallet: %v", core.ErrStoreUnavailable, err)
		}
		if rec.Nonce != currentNonce {
			return core.ErrNonceConflict
		}

		rec.Nonce = core.NewNonce()
		rec.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: encode wallet: %v", core.ErrStoreUnavailable, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = rec.identity()
		return nil
	}, key)

	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			// Another rotation committed between our read and write.
			return nil, core.ErrNonceConflict
		}
		return nil, err
	}

	return updated, nil
}
