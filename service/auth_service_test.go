package service

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethos-labs/ethos-auth/adapters/events"
	"github.com/ethos-labs/ethos-auth/adapters/store"
	"github.com/ethos-labs/ethos-auth/adapters/tokenizer"
	"github.com/ethos-labs/ethos-auth/core"
	"github.com/ethos-labs/ethos-auth/internal/logging"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(
		store.NewMemoryStore(),
		tokenizer.NewJWTTokenizer([]byte("test-secret"), time.Hour),
		events.NopPublisher{},
		logging.NopLogger{},
	)
}

func newWallet(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func signLogin(t *testing.T, key *ecdsa.PrivateKey, address, nonce string) string {
	t.Helper()
	message := core.BuildLoginMessage(address, nonce)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	return hexutil.Encode(sig)
}

func TestLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	key, address := newWallet(t)

	wallet, err := s.GetOrCreateWallet(ctx, address)
	require.NoError(t, err)
	require.NotEmpty(t, wallet.Nonce)

	token, identity, err := s.Login(ctx, address, signLogin(t, key, address, wallet.Nonce))
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, wallet.ID, identity.ID)
	assert.NotEqual(t, wallet.Nonce, identity.Nonce, "nonce must rotate on success")

	session, err := s.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, session.WalletID)
	assert.Equal(t, wallet.Address, session.Address)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestLoginReplayRejected(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	key, address := newWallet(t)

	wallet, err := s.GetOrCreateWallet(ctx, address)
	require.NoError(t, err)

	signature := signLogin(t, key, address, wallet.Nonce)

	_, _, err = s.Login(ctx, address, signature)
	require.NoError(t, err)

	// The identical proof must not authenticate a second time.
	_, _, err = s.Login(ctx, address, signature)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestLoginUnknownWallet(t *testing.T) {
	s := newTestService(t)
	key, address := newWallet(t)

	_, _, err := s.Login(context.Background(), address, signLogin(t, key, address, "some-nonce"))
	assert.ErrorIs(t, err, core.ErrWalletNotFound)
}

func TestLoginInvalidAddress(t *testing.T) {
	s := newTestService(t)

	_, _, err := s.Login(context.Background(), "not-an-address", "0x00")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestLoginWrongSignerKeepsNonce(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, address := newWallet(t)
	otherKey, _ := newWallet(t)

	wallet, err := s.GetOrCreateWallet(ctx, address)
	require.NoError(t, err)

	_, _, err = s.Login(ctx, address, signLogin(t, otherKey, address, wallet.Nonce))
	assert.ErrorIs(t, err, core.ErrInvalidSignature)

	// A failed verification must not consume the nonce.
	after, err := s.GetOrCreateWallet(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, wallet.Nonce, after.Nonce)
}

func TestLoginMalformedSignature(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, address := newWallet(t)

	_, err := s.GetOrCreateWallet(ctx, address)
	require.NoError(t, err)

	for _, sig := range []string{"", "0x00", "zzz"} {
		_, _, err := s.Login(ctx, address, sig)
		assert.ErrorIs(t, err, core.ErrInvalidSignature, "signature %q", sig)
	}
}

func TestLoginAddressCaseInsensitive(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	key, address := newWallet(t)

	lower := strings.ToLower(address)
	wallet, err := s.GetOrCreateWallet(ctx, lower)
	require.NoError(t, err)
	assert.Equal(t, address, wallet.Address, "stored address is checksummed")

	// Same address, different casing, maps to the same identity.
	sameWallet, err := s.GetOrCreateWallet(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, sameWallet.ID)

	_, identity, err := s.Login(ctx, lower, signLogin(t, key, address, wallet.Nonce))
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, identity.ID)
}

func TestConcurrentLoginSingleWinner(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	key, address := newWallet(t)

	wallet, err := s.GetOrCreateWallet(ctx, address)
	require.NoError(t, err)

	signature := signLogin(t, key, address, wallet.Nonce)

	const racers = 4
	var wg sync.WaitGroup
	errs := make([]error, racers)
	tokens := make([]string, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], _, errs[i] = s.Login(ctx, address, signature)
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := range errs {
		if errs[i] == nil {
			wins++
			assert.NotEmpty(t, tokens[i])
		} else {
			assert.ErrorIs(t, errs[i], core.ErrInvalidSignature)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent login may consume the nonce")

	after, err := s.GetOrCreateWallet(ctx, address)
	require.NoError(t, err)
	assert.NotEqual(t, wallet.Nonce, after.Nonce, "nonce rotated exactly once")
}

func TestGetOrCreateWalletInvalidAddress(t *testing.T) {
	s := newTestService(t)

	_, err := s.GetOrCreateWallet(context.Background(), "0x123")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestValidateRejectsGarbage(t *testing.T) {
	s := newTestService(t)

	_, err := s.Validate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, core.ErrTokenMalformed)
}
