package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"
	"slices"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Version identifies the AEAD suite used to produce an envelope.
type Version uint8

const (
	// VersionAESGCM seals with AES-256-GCM and a 12 byte nonce.
	VersionAESGCM Version = 1
	// VersionXChaCha seals with XChaCha20-Poly1305 and a 24 byte nonce.
	VersionXChaCha Version = 2

	// CurrentVersion is used for sealing unless WithVersion says otherwise.
	CurrentVersion = VersionAESGCM
)

const (
	// KeySize is the required length of caller key material.
	KeySize = 32
	// TagSize is the authentication tag length shared by all suites.
	TagSize = 16
)

type suite struct {
	label   string
	nonce   int
	newAEAD func(key []byte) (cipher.AEAD, error)
}

var suites = map[Version]suite{
	VersionAESGCM: {
		label: "fieldseal/v1/aes-256-gcm",
		nonce: 12,
		newAEAD: func(key []byte) (cipher.AEAD, error) {
			block, err := aes.NewCipher(key)
			if err != nil {
				return nil, err
			}
			return cipher.NewGCM(block)
		},
	},
	VersionXChaCha: {
		label:   "fieldseal/v2/xchacha20-poly1305",
		nonce:   chacha20poly1305.NonceSizeX,
		newAEAD: chacha20poly1305.NewX,
	},
}

// Supported reports whether v is a known envelope version.
func Supported(v Version) bool {
	_, ok := suites[v]
	return ok
}

// Versions returns every supported envelope version in ascending order.
func Versions() []Version {
	versions := make([]Version, 0, len(suites))
	for v := range suites {
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions
}

func nonceSize(v Version) (int, error) {
	s, ok := suites[v]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return s.nonce, nil
}

// newSuiteAEAD expands a version specific sub-key from key and builds the suite's AEAD with it.
func newSuiteAEAD(v Version, key []byte) (cipher.AEAD, error) {
	s, ok := suites[v]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	subKey := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(s.label)), subKey); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", s.label, err)
	}
	return s.newAEAD(subKey)
}
