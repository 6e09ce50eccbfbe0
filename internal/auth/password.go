// Package auth provides password hashing, session tokens and request identity.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// HashParams are the argon2id cost parameters.
type HashParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultHashParams follow the OWASP argon2id minimum.
var DefaultHashParams = HashParams{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

var (
	// ErrMalformedHash indicates a stored hash is not a PHC argon2id string.
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrUnsupportedVersion indicates the argon2 version in a hash is not supported.
	ErrUnsupportedVersion = errors.New("unsupported argon2 version")
)

// PasswordHasher hashes and verifies passwords with argon2id.
type PasswordHasher struct {
	params HashParams
	// decoy is verified against when the user does not exist so that
	// unknown-user and wrong-password logins cost the same.
	decoy string
}

// NewPasswordHasher creates a hasher with the given parameters.
func NewPasswordHasher(params HashParams) (*PasswordHasher, error) {
	h := &PasswordHasher{params: params}
	decoy, err := h.Hash("decoy-password-never-matches")
	if err != nil {
		return nil, err
	}
	h.decoy = decoy
	return h, nil
}

// Hash returns the PHC-encoded argon2id hash of password:
// $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<key>
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encoded. The cost parameters are
// read from the hash itself, so hashes made with older parameters still verify.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrMalformedHash
	}
	if version != argon2.Version {
		return false, ErrUnsupportedVersion
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// VerifyDecoy burns the same work as Verify without a real hash.
func (h *PasswordHasher) VerifyDecoy(password string) {
	_, _ = h.Verify(password, h.decoy)
}
