package codec

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length.
	KeySize = 32
	// PBKDF2Iterations is the work factor for passphrase-derived keys.
	PBKDF2Iterations = 100_000
)

// KeySource says where a key came from.
type KeySource string

const (
	KeyFromConfig     KeySource = "config"
	KeyFromPassphrase KeySource = "passphrase"
	KeyEphemeral      KeySource = "ephemeral"
)

// DeriveKey stretches a passphrase into a 32-byte key with PBKDF2-HMAC-SHA256.
func DeriveKey(passphrase, salt string) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase must not be empty")
	}
	if salt == "" {
		return nil, errors.New("salt must not be empty")
	}
	return pbkdf2.Key([]byte(passphrase), []byte(salt), PBKDF2Iterations, KeySize, sha256.New), nil
}

// ResolveKey picks the codec key: an explicit raw key wins, then a
// passphrase-derived one, then a fresh random key.
func ResolveKey(raw []byte, passphrase, salt string) ([]byte, KeySource, error) {
	switch {
	case len(raw) > 0:
		if len(raw) != KeySize {
			return nil, "", fmt.Errorf("key must be %d bytes, got %d", KeySize, len(raw))
		}
		return raw, KeyFromConfig, nil
	case passphrase != "":
		key, err := DeriveKey(passphrase, salt)
		if err != nil {
			return nil, "", err
		}
		return key, KeyFromPassphrase, nil
	default:
		key := make([]byte, KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, "", fmt.Errorf("generate key: %w", err)
		}
		return key, KeyEphemeral, nil
	}
}
