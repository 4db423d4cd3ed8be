package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	_ json.Marshaler   = (*Record)(nil)
	_ json.Unmarshaler = (*Record)(nil)
)

// MarshalJSON writes fields in order, followed by the encrypted marker and, when set, the encryption version.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, name := range r.names {
		if err := writeMember(&buf, name, r.values[name]); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeMember(&buf, EncryptedKey, r.Encrypted); err != nil {
		return nil, err
	}
	if r.EncryptionVersion != 0 {
		buf.WriteByte(',')
		if err := writeMember(&buf, EncryptionVersionKey, r.EncryptionVersion); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, value any) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode field '%s': %w", name, err)
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

// UnmarshalJSON reads a JSON object, keeping the order of its members.
// Nested objects and arrays aren't supported as field values.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidRecord)
	}

	decoded := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		name := tok.(string)
		switch name {
		case EncryptedKey:
			if err := dec.Decode(&decoded.Encrypted); err != nil {
				return fmt.Errorf("%w: '%s' must be a boolean", ErrInvalidRecord, name)
			}
		case EncryptionVersionKey:
			var version *int
			if err := dec.Decode(&version); err != nil {
				return fmt.Errorf("%w: '%s' must be an integer", ErrInvalidRecord, name)
			}
			if version != nil {
				decoded.EncryptionVersion = *version
			}
		default:
			value, err := decodeValue(dec)
			if err != nil {
				return fmt.Errorf("%w: field '%s': %v", ErrInvalidRecord, name, err)
			}
			if err := decoded.Set(name, value); err != nil {
				return err
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after record", ErrInvalidRecord)
	}
	*r = *decoded
	return nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	switch raw[0] {
	case '{', '[':
		return nil, errors.New("nested values are not supported")
	}
	inner := json.NewDecoder(bytes.NewReader(raw))
	inner.UseNumber()
	var value any
	if err := inner.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
