package record

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/saylorsolutions/fieldseal/pkg/fieldcrypt"
)

const (
	// EncryptedKey and EncryptionVersionKey are the serialized names of the record markers.
	// They can't be used as field names.
	EncryptedKey         = "encrypted"
	EncryptionVersionKey = "encryptionVersion"
)

// Record is an ordered set of named values.
// Values are string, json.Number, bool, or nil.
type Record struct {
	Encrypted         bool
	EncryptionVersion int

	names  []string
	values map[string]any
}

func New() *Record {
	return &Record{values: map[string]any{}}
}

func isReserved(name string) bool {
	return name == EncryptedKey || name == EncryptionVersionKey
}

// Set adds or replaces a field.
// Go integer and float values are stored as json.Number.
// New fields are appended, replaced fields keep their position.
func (r *Record) Set(name string, value any) error {
	if len(name) == 0 {
		return fmt.Errorf("%w: empty field name", ErrInvalidRecord)
	}
	if isReserved(name) {
		return fmt.Errorf("%w: field name '%s' is reserved", ErrInvalidRecord, name)
	}
	normal, err := normalize(value)
	if err != nil {
		return fmt.Errorf("%w: field '%s': %v", ErrInvalidRecord, name, err)
	}
	if r.values == nil {
		r.values = map[string]any{}
	}
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = normal
	return nil
}

func normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		if !validNumber(v) {
			return nil, fmt.Errorf("invalid number '%s'", v)
		}
		return v, nil
	case int:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float32:
		return json.Number(strconv.FormatFloat(float64(v), 'g', -1, 32)), nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

func validNumber(n json.Number) bool {
	if len(n) == 0 || (n[0] != '-' && (n[0] < '0' || n[0] > '9')) {
		return false
	}
	return json.Valid([]byte(n))
}

// Get returns the value of a field, and whether the field is present.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Delete removes a field if it's present.
func (r *Record) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	r.names = slices.DeleteFunc(r.names, func(n string) bool { return n == name })
}

// Fields returns the field names in order.
func (r *Record) Fields() []string {
	return slices.Clone(r.names)
}

func (r *Record) Len() int {
	return len(r.names)
}

func (r *Record) Clone() *Record {
	out := &Record{
		Encrypted:         r.Encrypted,
		EncryptionVersion: r.EncryptionVersion,
		names:             slices.Clone(r.names),
		values:            make(map[string]any, len(r.values)),
	}
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether both records have the same markers and the same fields, in the same order, with the same values.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Encrypted != other.Encrypted || r.EncryptionVersion != other.EncryptionVersion {
		return false
	}
	if !slices.Equal(r.names, other.names) {
		return false
	}
	for _, name := range r.names {
		if r.values[name] != other.values[name] {
			return false
		}
	}
	return true
}

// sealable returns the kind and text form of a value, and false if there's nothing to seal.
func sealable(value any) (fieldcrypt.Kind, string, bool) {
	switch v := value.(type) {
	case string:
		return fieldcrypt.KindText, v, len(v) > 0
	case json.Number:
		return fieldcrypt.KindNumber, string(v), len(v) > 0
	case bool:
		return fieldcrypt.KindBool, strconv.FormatBool(v), true
	default:
		return 0, "", false
	}
}

// restore converts opened text back to the kind of value that was sealed.
func restore(kind fieldcrypt.Kind, text string) (any, error) {
	switch kind {
	case fieldcrypt.KindText:
		return text, nil
	case fieldcrypt.KindNumber:
		return normalize(json.Number(text))
	case fieldcrypt.KindBool:
		return strconv.ParseBool(text)
	default:
		return nil, fmt.Errorf("%w: unknown value kind %s", fieldcrypt.ErrFormat, kind)
	}
}
