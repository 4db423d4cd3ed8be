package keys

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	got, err := Static(key).Key(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = Static(key[:8]).Key(context.Background())
	assert.ErrorIs(t, err, ErrInvalidKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Static(key).Key(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileProvider(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)
	dir := t.TempDir()

	b64 := filepath.Join(dir, "key.b64")
	require.NoError(t, os.WriteFile(b64, []byte(key.Encode()+"\n"), 0600))
	got, err := FileProvider{Path: b64}.Key(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, key, got)

	hexFile := filepath.Join(dir, "key.hex")
	require.NoError(t, os.WriteFile(hexFile, []byte(hex.EncodeToString(key)), 0600))
	got, err = FileProvider{Path: hexFile}.Key(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, key, got)

	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(bad, []byte("FinanceFlow2024SecureApp"), 0600))
	_, err = FileProvider{Path: bad}.Key(context.Background())
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = FileProvider{Path: filepath.Join(dir, "missing")}.Key(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPassphraseProvider(t *testing.T) {
	key, desc, err := fastScrypt(t).GenerateKey(testPass)
	require.NoError(t, err)

	got, err := PassphraseProvider{Passphrase: testPass, Descriptor: desc}.Key(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = PassphraseProvider{Descriptor: desc}.Key(context.Background())
	assert.ErrorIs(t, err, ErrEmptyPassPhrase)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = PassphraseProvider{Passphrase: testPass, Descriptor: desc}.Key(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
