package fieldcrypt

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	bin "github.com/saylorsolutions/binmap"
)

// Kind records the type of value that was sealed in an envelope.
type Kind uint8

const (
	KindText   Kind = 1
	KindNumber Kind = 2
	KindBool   Kind = 3
)

func (k Kind) valid() bool {
	return k >= KindText && k <= KindBool
}

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// headerLen is the version and kind bytes that lead every envelope.
const headerLen = 2

// Envelope is the decoded form of a sealed value.
type Envelope struct {
	Version    Version
	Kind       Kind
	Nonce      []byte
	Tag        []byte
	Ciphertext []byte
}

func (e *Envelope) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Byte((*byte)(&e.Version)),
		bin.Byte((*byte)(&e.Kind)),
		rawBytes(&e.Nonce, func() (int, error) { return nonceSize(e.Version) }),
		rawBytes(&e.Tag, func() (int, error) { return TagSize, nil }),
		rawBytes(&e.Ciphertext, nil),
	)
}

// additionalData is authenticated alongside the ciphertext.
func (e *Envelope) additionalData(context string) []byte {
	ad := make([]byte, 0, headerLen+len(context))
	ad = append(ad, byte(e.Version), byte(e.Kind))
	return append(ad, context...)
}

func (e *Envelope) validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil envelope", ErrFormat)
	}
	size, err := nonceSize(e.Version)
	if err != nil {
		return errors.Join(ErrFormat, err)
	}
	if !e.Kind.valid() {
		return fmt.Errorf("%w: unknown value kind %d", ErrFormat, uint8(e.Kind))
	}
	if len(e.Nonce) != size {
		return fmt.Errorf("%w: nonce is %d bytes, expected %d", ErrFormat, len(e.Nonce), size)
	}
	if len(e.Tag) != TagSize {
		return fmt.Errorf("%w: tag is %d bytes, expected %d", ErrFormat, len(e.Tag), TagSize)
	}
	return nil
}

func (e *Envelope) MarshalBinary() ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(headerLen + len(e.Nonce) + len(e.Tag) + len(e.Ciphertext))
	if err := e.mapper().Write(&buf, binary.BigEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Envelope) UnmarshalBinary(data []byte) error {
	var decoded Envelope
	if err := decoded.mapper().Read(bytes.NewReader(data), binary.BigEndian); err != nil {
		if errors.Is(err, ErrUnsupportedVersion) {
			return errors.Join(ErrFormat, err)
		}
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if err := decoded.validate(); err != nil {
		return err
	}
	*e = decoded
	return nil
}

// Encode returns the text token form of the envelope.
func (e *Envelope) Encode() (string, error) {
	data, err := e.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ParseEnvelope decodes a text token produced by Encode.
// No authentication happens here, the result must still be opened by a Cipher before its contents can be trusted.
func ParseEnvelope(token string) (*Envelope, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	env := new(Envelope)
	if err := env.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return env, nil
}

var _ bin.Mapper = (*rawBytesMapper)(nil)

// rawBytesMapper maps a byte slice whose length is known from previously mapped fields.
// A nil size function consumes the rest of the input.
type rawBytesMapper struct {
	target *[]byte
	size   func() (int, error)
}

func rawBytes(target *[]byte, size func() (int, error)) *rawBytesMapper {
	return &rawBytesMapper{target: target, size: size}
}

func (m *rawBytesMapper) Read(r io.Reader, _ binary.ByteOrder) error {
	if m.size == nil {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		*m.target = data
		return nil
	}
	n, err := m.size()
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("truncated envelope: %w", err)
	}
	*m.target = buf
	return nil
}

func (m *rawBytesMapper) Write(w io.Writer, _ binary.ByteOrder) error {
	_, err := w.Write(*m.target)
	return err
}
