// Package keystore persists ledger wallets on the player's machine. The
// ledger only ever returns a private key once, at wallet creation, so games
// that want to reuse a wallet across sessions need somewhere durable to keep
// it. Records hold the last observed balance alongside the credentials;
// balances are a cache of what the ledger last reported, never an
// authoritative figure.
package keystore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no stored wallet matches the requested address.
	ErrNotFound = errors.New("wallet not found")

	// ErrNoPrivateKey indicates the wallet was stored without a private key.
	ErrNoPrivateKey = errors.New("wallet has no stored private key")

	// ErrAuthFailed indicates the passphrase does not open the sealed key.
	ErrAuthFailed = errors.New("keystore authentication failed")

	// ErrInvalidEnvelope indicates the sealed key bytes are not a keystore
	// envelope.
	ErrInvalidEnvelope = errors.New("sealed key envelope is invalid")
)

// StoredWallet is one locally persisted wallet. SealedKey holds the
// passphrase-sealed private key envelope, or nil when the key was never
// stored.
type StoredWallet struct {
	ID        string
	Address   string
	Label     string
	Balance   float64
	PublicKey string
	SealedKey []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PrivateKey opens the wallet's sealed private key with the passphrase.
func (w StoredWallet) PrivateKey(passphrase string) ([]byte, error) {
	if len(w.SealedKey) == 0 {
		return nil, ErrNoPrivateKey
	}
	return Open(passphrase, w.SealedKey)
}

// Store is the wallet persistence contract. Implementations must treat the
// wallet address as the unique lookup key.
type Store interface {
	// Put inserts the wallet or replaces the record sharing its address,
	// returning the stored form with identifiers and timestamps filled in.
	Put(ctx context.Context, wallet StoredWallet) (StoredWallet, error)
	// Get loads one wallet by address. Missing wallets yield ErrNotFound.
	Get(ctx context.Context, address string) (StoredWallet, error)
	// List returns every stored wallet, oldest first.
	List(ctx context.Context) ([]StoredWallet, error)
	// UpdateBalance records the last balance the ledger reported for the
	// address. Missing wallets yield ErrNotFound.
	UpdateBalance(ctx context.Context, address string, balance float64) error
	// Delete removes one wallet by address. Missing wallets yield
	// ErrNotFound.
	Delete(ctx context.Context, address string) error
	// Close releases the underlying storage.
	Close() error
}
