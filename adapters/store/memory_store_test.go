package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethos-labs/ethos-auth/core"
)

const testAddress = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

func TestMemoryStoreCreateAndFind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, testAddress)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Nonce)
	assert.Equal(t, testAddress, created.Address)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := s.FindByAddress(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Nonce, found.Nonce)
}

func TestMemoryStoreCreateConflict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Create(ctx, testAddress)
	require.NoError(t, err)

	_, err = s.Create(ctx, testAddress)
	assert.ErrorIs(t, err, core.ErrWalletExists)
}

func TestMemoryStoreFindUnknown(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.FindByAddress(context.Background(), testAddress)
	assert.ErrorIs(t, err, core.ErrWalletNotFound)
}

func TestMemoryStoreGetOrCreate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.GetOrCreate(ctx, testAddress)
	require.NoError(t, err)

	second, err := s.GetOrCreate(ctx, testAddress)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Nonce, second.Nonce)
}

func TestMemoryStoreRotateNonce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, testAddress)
	require.NoError(t, err)

	rotated, err := s.RotateNonce(ctx, testAddress, created.Nonce)
	require.NoError(t, err)
	assert.NotEqual(t, created.Nonce, rotated.Nonce)
	assert.Equal(t, created.ID, rotated.ID)

	// Stale nonce no longer rotates.
	_, err = s.RotateNonce(ctx, testAddress, created.Nonce)
	assert.ErrorIs(t, err, core.ErrNonceConflict)
}

func TestMemoryStoreRotateUnknown(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.RotateNonce(context.Background(), testAddress, "nonce")
	assert.ErrorIs(t, err, core.ErrWalletNotFound)
}

func TestMemoryStoreConcurrentRotationSingleWinner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, testAddress)
	require.NoError(t, err)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.RotateNonce(ctx, testAddress, created.Nonce)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, core.ErrNonceConflict)
		}
	}
	assert.Equal(t, 1, wins, "exactly one rotation must win")

	final, err := s.FindByAddress(ctx, testAddress)
	require.NoError(t, err)
	assert.NotEqual(t, created.Nonce, final.Nonce)
}
