package keystore

import (
	"crypto/rand"
	"encoding/json"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	envelopeVersion = 1
	saltSize        = 16
	envelopePrefix  = "VERSEKEY1\n"

	kdfName     = "argon2id"
	kdfTime     = 2
	kdfMemoryKB = 64 * 1024
	kdfThreads  = 1
)

// sealedEnvelope is the serialized form of one sealed secret. The KDF
// parameters ride along so older envelopes stay openable after the defaults
// change.
type sealedEnvelope struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// Seal encrypts a secret under a passphrase-derived key. The result is an
// opaque envelope suitable for StoredWallet.SealedKey.
func Seal(passphrase string, secret []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := deriveKey(passphrase, salt, kdfTime, kdfMemoryKB, kdfThreads)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	envelope := sealedEnvelope{
		Version:     envelopeVersion,
		KDF:         kdfName,
		KDFTime:     kdfTime,
		KDFMemoryKB: kdfMemoryKB,
		KDFThreads:  kdfThreads,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, secret, nil),
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}
	return append([]byte(envelopePrefix), raw...), nil
}

// Open decrypts a sealed envelope. A wrong passphrase or tampered envelope
// yields ErrAuthFailed; bytes that are not an envelope yield
// ErrInvalidEnvelope.
func Open(passphrase string, sealed []byte) ([]byte, error) {
	if !strings.HasPrefix(string(sealed), envelopePrefix) {
		return nil, ErrInvalidEnvelope
	}
	var envelope sealedEnvelope
	if err := json.Unmarshal(sealed[len(envelopePrefix):], &envelope); err != nil {
		return nil, ErrInvalidEnvelope
	}
	if envelope.Version != envelopeVersion || envelope.KDF != kdfName {
		return nil, ErrInvalidEnvelope
	}
	if len(envelope.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, ErrInvalidEnvelope
	}

	key := deriveKey(passphrase, envelope.Salt, envelope.KDFTime, envelope.KDFMemoryKB, envelope.KDFThreads)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	secret, err := aead.Open(nil, envelope.Nonce, envelope.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return secret, nil
}

func deriveKey(passphrase string, salt []byte, time, memoryKB uint32, threads uint8) []byte {
	return argon2.IDKey([]byte(passphrase), salt, time, memoryKB, threads, chacha20poly1305.KeySize)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
