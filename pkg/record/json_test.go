package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_JSON(t *testing.T) {
	const input = `{"legalName":"Acme Pvt Ltd","loanAmount":2500000.00,"collateral":null,"gstRegistered":false,"encrypted":true,"encryptionVersion":1}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(input), &r))
	assert.Equal(t, []string{"legalName", "loanAmount", "collateral", "gstRegistered"}, r.Fields())
	assert.True(t, r.Encrypted)
	assert.Equal(t, 1, r.EncryptionVersion)
	v, _ := r.Get("loanAmount")
	assert.Equal(t, json.Number("2500000.00"), v, "numbers are kept as written")

	out, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestRecord_JSON_Markers(t *testing.T) {
	r := New()
	require.NoError(t, r.Set("email", "ops@acme.example"))
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"email":"ops@acme.example","encrypted":false}`, string(out))

	var empty Record
	out, err = json.Marshal(&empty)
	require.NoError(t, err)
	assert.Equal(t, `{"encrypted":false}`, string(out))

	var decoded Record
	require.NoError(t, json.Unmarshal([]byte(`{"encryptionVersion":null,"email":"a@b.c"}`), &decoded))
	assert.False(t, decoded.Encrypted)
	assert.Equal(t, 0, decoded.EncryptionVersion)
}

func TestRecord_JSON_Unicode(t *testing.T) {
	r := New()
	require.NoError(t, r.Set("director1Name", "नमस्ते <Zoë> & \"co\""))
	out, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.True(t, r.Equal(&decoded))
}

func TestRecord_JSON_Neg(t *testing.T) {
	tests := map[string]string{
		"array":            `[1, 2]`,
		"string":           `"record"`,
		"nested object":    `{"address": {"city": "Pune"}}`,
		"nested array":     `{"directors": ["a", "b"]}`,
		"bad marker":       `{"encrypted": "yes"}`,
		"fractional stamp": `{"encryptionVersion": 1.5}`,
		"truncated":        `{"legalName": "Acme"`,
		"trailing data":    `{"legalName": "Acme"} {}`,
		"empty name":       `{"": "x"}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			var r Record
			err := r.UnmarshalJSON([]byte(input))
			assert.ErrorIs(t, err, ErrInvalidRecord)
			assert.Equal(t, 0, r.Len(), "failed decoding leaves the record untouched")
		})
	}
}
