package legacy

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/saylorsolutions/fieldseal/pkg/record"
)

const (
	// KeyPrefix is the fixed part of every legacy session key.
	KeyPrefix = "FinanceFlow2024SecureApp"
	// SuffixLen is the number of timestamp digits appended to KeyPrefix.
	SuffixLen = 6

	// MarkerKey and VersionKey are the fields the helper added to records it screened.
	MarkerKey  = "_encrypted"
	VersionKey = "_encryptionVersion"
)

var (
	ErrInvalidSuffix = errors.New("invalid legacy key suffix")
	ErrNotLatin1     = errors.New("text has characters outside of Latin-1")
	ErrInvalidToken  = errors.New("invalid legacy token")
)

// SessionKey rebuilds the key of a legacy browser session from its six digit suffix.
func SessionKey(suffix string) ([]byte, error) {
	if len(suffix) != SuffixLen {
		return nil, fmt.Errorf("%w: expected %d digits, got '%s'", ErrInvalidSuffix, SuffixLen, suffix)
	}
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return nil, fmt.Errorf("%w: expected %d digits, got '%s'", ErrInvalidSuffix, SuffixLen, suffix)
		}
	}
	return []byte(KeyPrefix + suffix), nil
}

// SuffixAt returns the key suffix of a session started at t.
func SuffixAt(t time.Time) string {
	ms := t.UnixMilli() % 1_000_000
	if ms < 0 {
		ms = -ms
	}
	return fmt.Sprintf("%06d", ms)
}

// Screen produces a legacy token from text, the way the helper did.
// It's only useful to build fixtures, new data must be sealed with fieldcrypt.
func Screen(text string, key []byte) (string, error) {
	if len(text) == 0 {
		return "", nil
	}
	latin1 := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xFF {
			return "", fmt.Errorf("%w: %q", ErrNotLatin1, r)
		}
		latin1 = append(latin1, byte(r))
	}
	var buf bytes.Buffer
	w, err := NewWriter(&buf, key, 0)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(latin1); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Unscreen recovers the text of a legacy token.
// A wrong key isn't detected, the result is just wrong.
func Unscreen(token string, key []byte) (string, error) {
	if len(token) == 0 {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	r, err := NewReader(bytes.NewReader(data), key, 0)
	if err != nil {
		return "", err
	}
	latin1, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(latin1))
	for _, b := range latin1 {
		sb.WriteRune(rune(b))
	}
	return sb.String(), nil
}

// DecodeRecord returns a plain text copy of a record screened by the helper.
// The legacy markers are removed from the copy. Records without the legacy marker are returned as an unchanged copy.
// Number and boolean fields are kept as they are, since the helper only screened text.
//
// Every field that fails is collected into a record.FieldErrors, and no record is returned.
func DecodeRecord(r *record.Record, fields []string, key []byte) (*record.Record, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", record.ErrInvalidRecord)
	}
	if marker, _ := r.Get(MarkerKey); marker != true {
		return r.Clone(), nil
	}

	out := r.Clone()
	var errs record.FieldErrors
	for _, name := range fields {
		value, ok := out.Get(name)
		if !ok || value == nil {
			continue
		}
		// Falsy values like 0 and false were stored as they were, never screened.
		token, ok := value.(string)
		if !ok {
			continue
		}
		text, err := Unscreen(token, key)
		if err == nil {
			err = out.Set(name, text)
		}
		if err != nil {
			errs = append(errs, record.FieldError{Field: name, Err: err})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	out.Delete(MarkerKey)
	out.Delete(VersionKey)
	out.Encrypted = false
	out.EncryptionVersion = 0
	return out, nil
}
