package record

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/fieldseal/pkg/fieldcrypt"
)

// Transform seals and opens the sensitive fields of records.
// A Transform is immutable and may be shared between goroutines.
type Transform struct {
	cfg     Config
	version fieldcrypt.Version
	log     zerolog.Logger
}

// TransformOpt customizes a Transform in NewTransform.
type TransformOpt = func(*Transform) error

// WithLogger sets the logger used to report transforms.
// Only field names, versions, and counts are logged.
func WithLogger(logger zerolog.Logger) TransformOpt {
	return func(t *Transform) error {
		t.log = logger
		return nil
	}
}

// NewTransform validates cfg and creates a Transform from a copy of it.
func NewTransform(cfg Config, opts ...TransformOpt) (*Transform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	version, err := cfg.version()
	if err != nil {
		return nil, err
	}
	cfg = cfg.clone()
	cfg.CurrentVersion = int(version)
	t := &Transform{
		cfg:     cfg,
		version: version,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Config returns a copy of the effective configuration.
func (t *Transform) Config() Config {
	return t.cfg.clone()
}

// Seal returns a copy of r with every configured, non-empty field sealed under key.
// The copy is marked as encrypted with the configured version.
// Records already marked as encrypted are returned as an unchanged copy.
//
// If any field fails, a FieldErrors naming each failed field is returned and no record.
func (t *Transform) Seal(r *Record, key []byte) (*Record, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if r.Encrypted {
		t.log.Debug().Int("version", r.EncryptionVersion).Msg("Record is already encrypted, skipping seal")
		return r.Clone(), nil
	}
	c, err := fieldcrypt.New(key, fieldcrypt.WithVersion(t.version))
	if err != nil {
		return nil, err
	}

	out := r.Clone()
	var (
		errs   FieldErrors
		sealed int
	)
	for _, name := range t.cfg.SensitiveFields {
		value, ok := out.values[name]
		if !ok {
			continue
		}
		kind, text, ok := sealable(value)
		if !ok {
			continue
		}
		token, err := c.SealField(name, kind, text)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Err: err})
			continue
		}
		out.values[name] = token
		sealed++
	}
	if len(errs) > 0 {
		t.log.Error().Strs("fields", errs.Fields()).Msg("Failed to seal record")
		return nil, errs
	}
	out.Encrypted = true
	out.EncryptionVersion = int(t.version)
	t.log.Debug().Int("sealed", sealed).Int("version", out.EncryptionVersion).Msg("Sealed record")
	return out, nil
}

// Open returns a copy of r with every configured field opened with key.
// The copy is marked as plain text and its EncryptionVersion is cleared to 0.
// A version stamp on a plain text record is only meaningful until it's sealed, so it doesn't survive a Seal then Open cycle.
// Records not marked as encrypted are returned as an unchanged copy.
//
// Every field that fails to open is collected, and a FieldErrors naming each of them is returned with no record.
// A record stamped with an unsupported version fails with fieldcrypt.ErrUnsupportedVersion.
func (t *Transform) Open(r *Record, key []byte) (*Record, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if !r.Encrypted {
		t.log.Debug().Msg("Record is not encrypted, skipping open")
		return r.Clone(), nil
	}
	if v := r.EncryptionVersion; v != 0 && (v < 0 || v > 255 || !fieldcrypt.Supported(fieldcrypt.Version(v))) {
		return nil, fmt.Errorf("%w: record version %d", fieldcrypt.ErrUnsupportedVersion, v)
	}
	c, err := fieldcrypt.New(key)
	if err != nil {
		return nil, err
	}

	out := r.Clone()
	var (
		errs   FieldErrors
		opened int
	)
	for _, name := range t.cfg.SensitiveFields {
		value, ok := out.values[name]
		if !ok || value == nil {
			continue
		}
		token, ok := value.(string)
		if !ok {
			errs = append(errs, FieldError{Field: name, Err: fmt.Errorf("%w: sealed field holds a %T value", fieldcrypt.ErrFormat, value)})
			continue
		}
		if len(token) == 0 {
			continue
		}
		text, kind, err := c.OpenField(name, token)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Err: err})
			continue
		}
		restored, err := restore(kind, text)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Err: fmt.Errorf("%w: %v", fieldcrypt.ErrFormat, err)})
			continue
		}
		out.values[name] = restored
		opened++
	}
	if len(errs) > 0 {
		t.log.Error().Strs("fields", errs.Fields()).Msg("Failed to open record")
		return nil, errs
	}
	out.Encrypted = false
	out.EncryptionVersion = 0
	t.log.Debug().Int("opened", opened).Msg("Opened record")
	return out, nil
}

// Fingerprints returns the fieldcrypt.Hash of each configured field holding a value.
// Comparing fingerprints of plain text records shows which sensitive fields changed without keeping the values.
func (t *Transform) Fingerprints(r *Record) map[string]string {
	prints := map[string]string{}
	if r == nil {
		return prints
	}
	for _, name := range t.cfg.SensitiveFields {
		value, ok := r.values[name]
		if !ok {
			continue
		}
		if _, text, ok := sealable(value); ok {
			prints[name] = fieldcrypt.Hash(text)
		}
	}
	return prints
}

// SealRecord seals fields of r under key with fieldcrypt.CurrentVersion.
func SealRecord(r *Record, fields []string, key []byte) (*Record, error) {
	t, err := NewTransform(Config{SensitiveFields: fields})
	if err != nil {
		return nil, err
	}
	return t.Seal(r, key)
}

// OpenRecord opens fields of r with key.
func OpenRecord(r *Record, fields []string, key []byte) (*Record, error) {
	t, err := NewTransform(Config{SensitiveFields: fields})
	if err != nil {
		return nil, err
	}
	return t.Open(r, key)
}
