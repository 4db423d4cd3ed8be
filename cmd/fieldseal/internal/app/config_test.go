package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/saylorsolutions/fieldseal/pkg/keys"
	"github.com/saylorsolutions/fieldseal/pkg/record"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(map[string]string{
		"FIELDSEAL_KEY_FILE":     "/etc/fieldseal/key",
		"FIELDSEAL_PROFILE_FILE": "/etc/fieldseal/profiles.ini",
		"FIELDSEAL_VERSION":      "2",
		"KEY":                    "ignored without prefix",
	})
	require.NoError(t, err)
	assert.Equal(t, Config{
		KeyFile:     "/etc/fieldseal/key",
		ProfileFile: "/etc/fieldseal/profiles.ini",
		Profile:     "default",
		Version:     2,
		LogLevel:    "warn",
	}, cfg)

	_, err = LoadConfig(map[string]string{"FIELDSEAL_VERSION": "two"})
	assert.Error(t, err)
}

func TestConfig_BindFlags(t *testing.T) {
	cfg, err := LoadConfig(map[string]string{
		"FIELDSEAL_PROFILE": "application",
		"FIELDSEAL_KEY":     "from env",
	})
	require.NoError(t, err)

	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"seal", "--key", "from flag", "--envelope-version", "2", "input.json"}))
	assert.Equal(t, "from flag", cfg.Key)
	assert.Equal(t, "application", cfg.Profile)
	assert.Equal(t, 2, cfg.Version)
	assert.Equal(t, []string{"seal", "input.json"}, flags.Args())
}

func TestConfig_Provider(t *testing.T) {
	ctx := context.Background()
	key, err := keys.Generate()
	require.NoError(t, err)
	keyFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(keyFile, []byte(key.Encode()), 0600))

	gen, err := keys.NewKeyGenerator(keys.SetIterations(1 << 10))
	require.NoError(t, err)
	passKey, desc, err := gen.GenerateKey(keys.Passphrase("a test password"))
	require.NoError(t, err)

	t.Run("key first", func(t *testing.T) {
		p, err := Config{Key: key.Encode(), KeyFile: "/missing", Passphrase: "x"}.Provider()
		require.NoError(t, err)
		got, err := p.Key(ctx)
		assert.NoError(t, err)
		assert.Equal(t, key, got)
	})
	t.Run("key file", func(t *testing.T) {
		p, err := Config{KeyFile: keyFile, Passphrase: "x"}.Provider()
		require.NoError(t, err)
		got, err := p.Key(ctx)
		assert.NoError(t, err)
		assert.Equal(t, key, got)
	})
	t.Run("passphrase", func(t *testing.T) {
		p, err := Config{Passphrase: "a test password", KDFDescriptor: desc.String()}.Provider()
		require.NoError(t, err)
		got, err := p.Key(ctx)
		assert.NoError(t, err)
		assert.Equal(t, passKey, got)
	})
	t.Run("passphrase without descriptor", func(t *testing.T) {
		_, err := Config{Passphrase: "a test password"}.Provider()
		assert.ErrorIs(t, err, ErrNoKey)
	})
	t.Run("bad key", func(t *testing.T) {
		_, err := Config{Key: "short"}.Provider()
		assert.ErrorIs(t, err, keys.ErrInvalidKey)
	})
	t.Run("nothing", func(t *testing.T) {
		_, err := Config{}.Provider()
		assert.ErrorIs(t, err, ErrNoKey)
	})
}

func TestConfig_RecordConfig(t *testing.T) {
	cfg, err := Config{}.RecordConfig()
	require.NoError(t, err)
	assert.Equal(t, record.DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "profiles.ini")
	require.NoError(t, os.WriteFile(path, []byte("[kyc]\nfields = director1Pan, director1Aadhaar\n"), 0600))

	cfg, err = Config{ProfileFile: path, Profile: "kyc", Version: 2}.RecordConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"director1Pan", "director1Aadhaar"}, cfg.SensitiveFields)
	assert.Equal(t, 2, cfg.CurrentVersion)

	_, err = Config{ProfileFile: path, Profile: "default"}.RecordConfig()
	assert.ErrorIs(t, err, record.ErrInvalidConfig)
	_, err = Config{Version: 9}.RecordConfig()
	assert.ErrorIs(t, err, record.ErrInvalidConfig)
}
