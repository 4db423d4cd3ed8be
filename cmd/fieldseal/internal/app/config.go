package app

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/saylorsolutions/fieldseal/pkg/keys"
	"github.com/saylorsolutions/fieldseal/pkg/record"
	flag "github.com/spf13/pflag"
)

const EnvPrefix = "FIELDSEAL_"

var ErrNoKey = errors.New("no key source configured")

// Config is read from FIELDSEAL_* environment variables, and may be overridden with flags.
type Config struct {
	Key           string `env:"KEY"`
	KeyFile       string `env:"KEY_FILE"`
	Passphrase    string `env:"PASSPHRASE"`
	KDFDescriptor string `env:"KDF_DESCRIPTOR"`
	ProfileFile   string `env:"PROFILE_FILE"`
	Profile       string `env:"PROFILE" envDefault:"default"`
	Version       int    `env:"VERSION"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"warn"`
}

// LoadConfig parses config from environ, or from the process environment if environ is nil.
func LoadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("error getting env configs: %w", err)
	}
	return cfg, nil
}

// BindFlags registers flags that override the current values of cfg.
func (c *Config) BindFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.Key, "key", c.Key, "Base64 or hex key. Overrides "+EnvPrefix+"KEY.")
	flags.StringVar(&c.KeyFile, "key-file", c.KeyFile, "File containing a base64 or hex key. Overrides "+EnvPrefix+"KEY_FILE.")
	flags.StringVar(&c.KDFDescriptor, "descriptor", c.KDFDescriptor, "KDF descriptor printed by 'derive', used with "+EnvPrefix+"PASSPHRASE. Overrides "+EnvPrefix+"KDF_DESCRIPTOR.")
	flags.StringVar(&c.ProfileFile, "profile-file", c.ProfileFile, "INI file of field profiles. Overrides "+EnvPrefix+"PROFILE_FILE.")
	flags.StringVarP(&c.Profile, "profile", "p", c.Profile, "Profile to use from the profile file. Overrides "+EnvPrefix+"PROFILE.")
	flags.IntVar(&c.Version, "envelope-version", c.Version, "Envelope version for new seals. Overrides "+EnvPrefix+"VERSION.")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level written to stderr. Overrides "+EnvPrefix+"LOG_LEVEL.")
}

// Provider selects the key source: an explicit key first, then a key file, then a passphrase with its descriptor.
func (c Config) Provider() (keys.Provider, error) {
	switch {
	case len(c.Key) > 0:
		key, err := keys.Parse(c.Key)
		if err != nil {
			return nil, err
		}
		return keys.Static(key), nil
	case len(c.KeyFile) > 0:
		return keys.FileProvider{Path: c.KeyFile}, nil
	case len(c.Passphrase) > 0:
		if len(c.KDFDescriptor) == 0 {
			return nil, fmt.Errorf("%w: a passphrase needs a KDF descriptor", ErrNoKey)
		}
		desc, err := keys.ParseDescriptor(c.KDFDescriptor)
		if err != nil {
			return nil, err
		}
		return keys.PassphraseProvider{Passphrase: keys.Passphrase(c.Passphrase), Descriptor: desc}, nil
	default:
		return nil, fmt.Errorf("%w: set a key, key file, or passphrase", ErrNoKey)
	}
}

// RecordConfig returns the selected profile, or the default loan application fields if there's no profile file.
func (c Config) RecordConfig() (record.Config, error) {
	cfg := record.DefaultConfig()
	if len(c.ProfileFile) > 0 {
		var err error
		cfg, err = record.LoadProfile(c.ProfileFile, c.Profile)
		if err != nil {
			return record.Config{}, err
		}
	}
	if c.Version != 0 {
		cfg.CurrentVersion = c.Version
	}
	if err := cfg.Validate(); err != nil {
		return record.Config{}, err
	}
	return cfg, nil
}
