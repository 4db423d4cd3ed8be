package fieldcrypt

import "errors"

var (
	// ErrFormat is returned when a token isn't a well-formed envelope.
	ErrFormat = errors.New("malformed envelope")
	// ErrIntegrity is returned when an envelope fails authentication, either because it was altered or because the wrong key was used.
	ErrIntegrity = errors.New("envelope failed authentication")
	// ErrKeySize is returned when a key isn't exactly KeySize bytes.
	ErrKeySize = errors.New("invalid key size")
	// ErrUnsupportedVersion is returned for envelope versions this package doesn't know.
	// When encountered while opening a token it's joined with ErrFormat.
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
)
