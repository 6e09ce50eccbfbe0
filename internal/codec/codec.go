// Package codec seals file bytes for storage: gzip compression followed by
// AES-256-GCM encryption, and the exact inverse on the way out.
//
// Sealed format:
//
//	[1 byte version][12 byte nonce][GCM ciphertext of gzip stream]
package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
)

const (
	formatV1  = byte(1)
	nonceSize = 12
	headerLen = 1 + nonceSize
)

var (
	// ErrCorrupt is returned when sealed bytes cannot be opened or inflated.
	ErrCorrupt = errors.New("sealed data is corrupt")
	// ErrTooLarge is returned when inflated output exceeds the configured limit.
	ErrTooLarge = errors.New("decoded data exceeds size limit")
)

// Stats describes one Encode call.
type Stats struct {
	OriginalSize     int64
	CompressedSize   int64
	StoredSize       int64
	CompressionRatio float64
}

// Codec is safe for concurrent use.
type Codec struct {
	aead      cipher.AEAD
	level     int
	maxOutput int64
}

// Option configures a Codec.
type Option func(*Codec)

// WithLevel sets the gzip compression level.
func WithLevel(level int) Option {
	return func(c *Codec) { c.level = level }
}

// WithMaxOutput caps the number of bytes Decode will inflate. Zero means no cap.
func WithMaxOutput(n int64) Option {
	return func(c *Codec) { c.maxOutput = n }
}

// New creates a Codec from a 32-byte key.
func New(key []byte, opts ...Option) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("codec key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	c := &Codec{aead: aead, level: gzip.DefaultCompression}
	for _, opt := range opts {
		opt(c)
	}
	if _, err := gzip.NewWriterLevel(io.Discard, c.level); err != nil {
		return nil, fmt.Errorf("invalid compression level %d: %w", c.level, err)
	}
	return c, nil
}

// Encode compresses then encrypts data.
func (c *Codec) Encode(data []byte) ([]byte, Stats, error) {
	var compressed bytes.Buffer
	zw, err := gzip.NewWriterLevel(&compressed, c.level)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, Stats{}, fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, Stats{}, fmt.Errorf("gzip close: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, Stats{}, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := make([]byte, 0, headerLen+compressed.Len()+c.aead.Overhead())
	sealed = append(sealed, formatV1)
	sealed = append(sealed, nonce...)
	sealed = c.aead.Seal(sealed, nonce, compressed.Bytes(), []byte{formatV1})

	stats := Stats{
		OriginalSize:     int64(len(data)),
		CompressedSize:   int64(compressed.Len()),
		StoredSize:       int64(len(sealed)),
		CompressionRatio: Ratio(int64(len(data)), int64(compressed.Len())),
	}
	return sealed, stats, nil
}

// Decode decrypts then decompresses sealed.
func (c *Codec) Decode(sealed []byte) ([]byte, error) {
	if len(sealed) < headerLen+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: short input", ErrCorrupt)
	}
	if sealed[0] != formatV1 {
		return nil, fmt.Errorf("%w: unknown format version %d", ErrCorrupt, sealed[0])
	}

	compressed, err := c.aead.Open(nil, sealed[1:headerLen], sealed[headerLen:], []byte{sealed[0]})
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrCorrupt)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()

	var r io.Reader = zr
	if c.maxOutput > 0 {
		r = io.LimitReader(zr, c.maxOutput+1)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if c.maxOutput > 0 && int64(len(out)) > c.maxOutput {
		return nil, ErrTooLarge
	}
	return out, nil
}

// Ratio returns the percentage size reduction rounded to two decimals and
// clamped to [0, 100]. An empty original yields 0.
func Ratio(original, compressed int64) float64 {
	if original <= 0 {
		return 0
	}
	r := 100 * (1 - float64(compressed)/float64(original))
	r = math.Round(r*100) / 100
	return math.Max(0, math.Min(100, r))
}
