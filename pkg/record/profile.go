package record

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	profileFieldsKey  = "fields"
	profileVersionKey = "version"
)

// LoadProfiles reads named configs from an INI file, one section per record shape.
//
//	[application]
//	fields = legalName, phoneNumber, email
//	version = 1
//
// Every profile is validated.
func LoadProfiles(path string) (map[string]Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	profiles := map[string]Config{}
	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		cfg, err := sectionConfig(sec)
		if err != nil {
			return nil, fmt.Errorf("profile '%s': %w", sec.Name(), err)
		}
		profiles[sec.Name()] = cfg
	}
	return profiles, nil
}

// LoadProfile reads a single named config from an INI file.
func LoadProfile(path, name string) (Config, error) {
	profiles, err := LoadProfiles(path)
	if err != nil {
		return Config{}, err
	}
	cfg, ok := profiles[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: profile '%s' not found in %s", ErrInvalidConfig, name, path)
	}
	return cfg, nil
}

func sectionConfig(sec *ini.Section) (Config, error) {
	var cfg Config
	for _, name := range sec.Key(profileFieldsKey).Strings(",") {
		if name = strings.TrimSpace(name); len(name) > 0 {
			cfg.SensitiveFields = append(cfg.SensitiveFields, name)
		}
	}
	if sec.HasKey(profileVersionKey) {
		version, err := sec.Key(profileVersionKey).Int()
		if err != nil {
			return Config{}, fmt.Errorf("%w: version: %v", ErrInvalidConfig, err)
		}
		cfg.CurrentVersion = version
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
