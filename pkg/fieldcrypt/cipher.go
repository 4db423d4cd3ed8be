package fieldcrypt

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// Cipher seals and opens values under a single caller key.
type Cipher struct {
	version Version
	aeads   map[Version]cipher.AEAD
}

// Option customizes a Cipher in New.
type Option = func(*Cipher) error

// WithVersion selects the envelope version used by Seal.
// Envelopes of any supported version can be opened regardless of this setting.
func WithVersion(v Version) Option {
	return func(c *Cipher) error {
		if !Supported(v) {
			return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
		}
		c.version = v
		return nil
	}
}

// New creates a Cipher for the given key, which must be exactly KeySize bytes.
// By default new envelopes are sealed with CurrentVersion.
func New(key []byte, opts ...Option) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrKeySize, len(key), KeySize)
	}
	c := &Cipher{
		version: CurrentVersion,
		aeads:   make(map[Version]cipher.AEAD, len(suites)),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	for v := range suites {
		aead, err := newSuiteAEAD(v, key)
		if err != nil {
			return nil, err
		}
		c.aeads[v] = aead
	}
	return c, nil
}

// Version returns the envelope version used for sealing.
func (c *Cipher) Version() Version {
	return c.version
}

// Seal encrypts plaintext and returns an envelope token.
// Empty input is returned unchanged.
func (c *Cipher) Seal(plaintext string) (string, error) {
	return c.SealField("", KindText, plaintext)
}

// Open authenticates and decrypts a token produced by Seal.
// Empty input is returned unchanged.
func (c *Cipher) Open(token string) (string, error) {
	plaintext, _, err := c.OpenField("", token)
	return plaintext, err
}

// SealField is like Seal, but binds the envelope to field and records the kind of value sealed.
// The same field name must be given to OpenField.
func (c *Cipher) SealField(field string, kind Kind, plaintext string) (string, error) {
	if len(plaintext) == 0 {
		return "", nil
	}
	if !kind.valid() {
		return "", fmt.Errorf("%w: unknown value kind %d", ErrFormat, uint8(kind))
	}
	aead := c.aeads[c.version]
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	env := &Envelope{
		Version: c.version,
		Kind:    kind,
		Nonce:   nonce,
	}
	sealed := aead.Seal(nil, nonce, []byte(plaintext), env.additionalData(field))
	split := len(sealed) - aead.Overhead()
	env.Ciphertext, env.Tag = sealed[:split], sealed[split:]
	return env.Encode()
}

// OpenField opens a token produced by SealField for the same field.
// The kind recorded at sealing time is returned with the plain text.
func (c *Cipher) OpenField(field string, token string) (string, Kind, error) {
	if len(token) == 0 {
		return "", KindText, nil
	}
	env, err := ParseEnvelope(token)
	if err != nil {
		return "", 0, err
	}
	aead := c.aeads[env.Version]
	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	plaintext, err := aead.Open(nil, env.Nonce, sealed, env.additionalData(field))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return string(plaintext), env.Kind, nil
}

// Seal encrypts plaintext under key with the CurrentVersion suite.
func Seal(key []byte, plaintext string) (string, error) {
	c, err := New(key)
	if err != nil {
		return "", err
	}
	return c.Seal(plaintext)
}

// Open decrypts a token produced by Seal under the same key.
func Open(key []byte, token string) (string, error) {
	c, err := New(key)
	if err != nil {
		return "", err
	}
	return c.Open(token)
}
