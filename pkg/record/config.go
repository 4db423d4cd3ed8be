package record

import (
	"fmt"
	"slices"

	"github.com/saylorsolutions/fieldseal/pkg/fieldcrypt"
)

// Config describes which fields of a record shape are sensitive, and which envelope version new seals use.
type Config struct {
	SensitiveFields []string
	// CurrentVersion is the envelope version stamped on sealed records.
	// Zero means fieldcrypt.CurrentVersion.
	CurrentVersion int
}

// DefaultSensitiveFields returns the sensitive fields of the business loan application form.
func DefaultSensitiveFields() []string {
	return []string{
		"legalName",
		"phoneNumber",
		"email",
		"registeredAddress",
		"director1Name",
		"director1Pan",
		"director1Aadhaar",
		"director1Din",
		"director1Address",
		"director2Name",
		"director2Pan",
		"director2Aadhaar",
		"director2Din",
		"director2Address",
		"annualRevenue",
		"pat",
		"capitalEmployed",
		"loanAmount",
		"purpose",
		"collateral",
	}
}

func DefaultConfig() Config {
	return Config{
		SensitiveFields: DefaultSensitiveFields(),
		CurrentVersion:  int(fieldcrypt.CurrentVersion),
	}
}

// Validate checks that field names are usable and the version is supported.
func (c Config) Validate() error {
	if len(c.SensitiveFields) == 0 {
		return fmt.Errorf("%w: no sensitive fields", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.SensitiveFields))
	for _, name := range c.SensitiveFields {
		switch {
		case len(name) == 0:
			return fmt.Errorf("%w: empty field name", ErrInvalidConfig)
		case isReserved(name):
			return fmt.Errorf("%w: field name '%s' is reserved", ErrInvalidConfig, name)
		case seen[name]:
			return fmt.Errorf("%w: duplicate field name '%s'", ErrInvalidConfig, name)
		}
		seen[name] = true
	}
	if _, err := c.version(); err != nil {
		return err
	}
	return nil
}

func (c Config) version() (fieldcrypt.Version, error) {
	if c.CurrentVersion == 0 {
		return fieldcrypt.CurrentVersion, nil
	}
	if c.CurrentVersion < 0 || c.CurrentVersion > 255 || !fieldcrypt.Supported(fieldcrypt.Version(c.CurrentVersion)) {
		return 0, fmt.Errorf("%w: %w: %d", ErrInvalidConfig, fieldcrypt.ErrUnsupportedVersion, c.CurrentVersion)
	}
	return fieldcrypt.Version(c.CurrentVersion), nil
}

func (c Config) clone() Config {
	c.SensitiveFields = slices.Clone(c.SensitiveFields)
	return c
}
