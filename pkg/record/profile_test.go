package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadProfiles(t *testing.T) {
	path := writeProfiles(t, `
; Sensitive fields per form
[application]
fields = legalName, phoneNumber , email
version = 2

[kyc]
fields = director1Pan,director1Aadhaar,
`)
	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	app := profiles["application"]
	assert.Equal(t, []string{"legalName", "phoneNumber", "email"}, app.SensitiveFields)
	assert.Equal(t, 2, app.CurrentVersion)

	kyc := profiles["kyc"]
	assert.Equal(t, []string{"director1Pan", "director1Aadhaar"}, kyc.SensitiveFields)
	assert.Equal(t, 0, kyc.CurrentVersion)

	_, err = NewTransform(kyc)
	assert.NoError(t, err)
}

func TestLoadProfile(t *testing.T) {
	path := writeProfiles(t, `
[application]
fields = legalName
`)
	cfg, err := LoadProfile(path, "application")
	require.NoError(t, err)
	assert.Equal(t, []string{"legalName"}, cfg.SensitiveFields)

	_, err = LoadProfile(path, "missing")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadProfiles_Neg(t *testing.T) {
	tests := map[string]string{
		"no fields":       "[application]\nversion = 1\n",
		"bad version":     "[application]\nfields = legalName\nversion = one\n",
		"unknown version": "[application]\nfields = legalName\nversion = 9\n",
		"duplicate field": "[application]\nfields = legalName, legalName\n",
		"reserved field":  "[application]\nfields = legalName, encrypted\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadProfiles(writeProfiles(t, content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}
