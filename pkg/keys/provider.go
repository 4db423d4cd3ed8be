package keys

import (
	"context"
	"fmt"
	"os"
)

//go:generate mockgen -source=provider.go -destination=../../internal/mock/provider_mock.go -package=mock

// Provider supplies key material from wherever the caller keeps it.
type Provider interface {
	Key(ctx context.Context) (Key, error)
}

type staticProvider struct {
	key Key
}

// Static returns a Provider that always supplies key.
func Static(key Key) Provider {
	return &staticProvider{key: key}
}

func (p *staticProvider) Key(ctx context.Context) (Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.key.Validate(); err != nil {
		return nil, err
	}
	return p.key, nil
}

// FileProvider reads a base64 or hex key from a file each time a Key is requested.
type FileProvider struct {
	Path string
}

func (p FileProvider) Key(ctx context.Context) (Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	key, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("key file '%s': %w", p.Path, err)
	}
	return key, nil
}

// PassphraseProvider derives a Key from a passphrase and a Descriptor created by KeyGenerator.GenerateKey.
// Derivation is deliberately slow. If ctx is done first, its error is returned and the derivation is abandoned.
type PassphraseProvider struct {
	Passphrase Passphrase
	Descriptor Descriptor
}

func (p PassphraseProvider) Key(ctx context.Context) (Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type result struct {
		key Key
		err error
	}
	done := make(chan result, 1)
	go func() {
		key, err := DeriveKey(p.Passphrase, p.Descriptor)
		done <- result{key: key, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.key, res.err
	}
}
