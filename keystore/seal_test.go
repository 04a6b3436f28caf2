package keystore

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	secret := []byte("verse-private-key-material")

	sealed, err := Seal("correct horse", secret)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, secret) {
		t.Fatal("sealed envelope leaks the plaintext secret")
	}

	opened, err := Open("correct horse", sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, secret) {
		t.Fatalf("opened secret = %q, want %q", opened, secret)
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal("right", []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if _, err := Open("wrong", sealed); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("open with wrong passphrase = %v, want ErrAuthFailed", err)
	}
}

func TestOpenTamperedEnvelope(t *testing.T) {
	sealed, err := Seal("pass", []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	// Flip one ciphertext byte; the AEAD must refuse to open it.
	sealed[len(sealed)-2] ^= 0x01

	if _, err := Open("pass", sealed); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("open tampered envelope = %v, want ErrAuthFailed", err)
	}
}

func TestOpenRejectsNonEnvelopes(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("plaintext key material"),
		[]byte(envelopePrefix + "not json"),
		[]byte(envelopePrefix + `{"version":99,"kdf":"argon2id"}`),
	}
	for _, raw := range cases {
		if _, err := Open("pass", raw); !errors.Is(err, ErrInvalidEnvelope) {
			t.Fatalf("open %q = %v, want ErrInvalidEnvelope", raw, err)
		}
	}
}

func TestSealedEnvelopesAreUnique(t *testing.T) {
	first, err := Seal("pass", []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	second, err := Seal("pass", []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatal("two seals of the same secret produced identical envelopes")
	}
}

func TestStoredWalletPrivateKey(t *testing.T) {
	sealed, err := Seal("pass", []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	wallet := StoredWallet{Address: "addr-1", SealedKey: sealed}
	key, err := wallet.PrivateKey("pass")
	if err != nil {
		t.Fatalf("private key: %v", err)
	}
	if string(key) != "secret" {
		t.Fatalf("private key = %q, want %q", key, "secret")
	}

	bare := StoredWallet{Address: "addr-2"}
	if _, err := bare.PrivateKey("pass"); !errors.Is(err, ErrNoPrivateKey) {
		t.Fatalf("private key without sealed key = %v, want ErrNoPrivateKey", err)
	}
}
