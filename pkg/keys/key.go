package keys

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Size is the length of every Key in bytes.
const Size = 32

var (
	ErrInvalidKey      = errors.New("invalid key")
	ErrEmptyPassPhrase = errors.New("cannot use an empty passphrase")
	ErrInvalidData     = errors.New("unable to use input data")
)

// Key is caller key material for sealing and opening fields.
type Key []byte

// Passphrase is a human-readable string used to generate a Key.
type Passphrase []byte

// Generate creates a Key from secure random bytes.
func Generate() (Key, error) {
	key := make(Key, Size)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Parse reads a Key from standard base64 or hex text.
// Surrounding whitespace is ignored.
func Parse(text string) (Key, error) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return nil, fmt.Errorf("%w: empty key text", ErrInvalidKey)
	}
	if data, err := base64.StdEncoding.DecodeString(text); err == nil && len(data) == Size {
		return data, nil
	}
	if data, err := hex.DecodeString(text); err == nil && len(data) == Size {
		return data, nil
	}
	return nil, fmt.Errorf("%w: expected %d bytes as base64 or hex", ErrInvalidKey, Size)
}

// Validate checks the key length.
func (k Key) Validate() error {
	if len(k) != Size {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidKey, len(k), Size)
	}
	return nil
}

// Encode returns the key as standard base64 text, which Parse accepts.
func (k Key) Encode() string {
	return base64.StdEncoding.EncodeToString(k)
}
