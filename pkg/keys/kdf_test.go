package keys

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPass = Passphrase("a test password")

func fastScrypt(t *testing.T) *KeyGenerator {
	t.Helper()
	gen, err := NewKeyGenerator(SetIterations(1 << 10))
	require.NoError(t, err)
	return gen
}

func fastArgon(t *testing.T) *KeyGenerator {
	t.Helper()
	gen, err := NewKeyGenerator(SetArgon2id(), SetIterations(1), SetMemory(1024), SetCPUCost(1))
	require.NoError(t, err)
	return gen
}

func TestNewKeyGenerator(t *testing.T) {
	gen, err := NewKeyGenerator()
	assert.NoError(t, err)
	assert.Equal(t, KDFScrypt, gen.kdf)
	assert.Equal(t, DefaultLargeIterations, gen.iterations)
	assert.Equal(t, DefaultCpuCost, gen.cpuCost)
	assert.Equal(t, DefaultRelBlockSize, gen.relativeBlockSize)

	gen, err = NewKeyGenerator(SetShortDelayIterations())
	assert.NoError(t, err)
	assert.Equal(t, DefaultInteractiveIterations, gen.iterations)

	gen, err = NewKeyGenerator(SetArgon2id(), SetShortDelayIterations())
	assert.NoError(t, err)
	assert.Equal(t, KDFArgon2id, gen.kdf)
	assert.Equal(t, DefaultArgonInteractiveTime, gen.iterations)
	assert.Equal(t, DefaultArgonThreads, gen.cpuCost)
	assert.Equal(t, DefaultArgonMemory, gen.memory)

	gen, err = NewKeyGenerator(SetArgon2id())
	assert.NoError(t, err)
	assert.Equal(t, DefaultArgonLargeTime, gen.iterations)
}

func TestNewKeyGenerator_Custom(t *testing.T) {
	gen, err := NewKeyGenerator(
		SetIterations(2),
		SetLongDelayIterations(),
		SetShortDelayIterations(),
		SetCPUCost(DefaultCpuCost),
		SetRelativeBlockSize(DefaultRelBlockSize),
		SetScrypt(),
	)
	assert.NoError(t, err)
	assert.Equal(t, DefaultInteractiveIterations, gen.iterations, "later options win")
	assert.Equal(t, DefaultCpuCost, gen.cpuCost)
	assert.Equal(t, DefaultRelBlockSize, gen.relativeBlockSize)
}

func TestNewKeyGenerator_Neg(t *testing.T) {
	tests := map[string][]GeneratorOpt{
		"zero iterations":    {SetIterations(0)},
		"scrypt not power 2": {SetIterations(1000)},
		"scrypt one":         {SetIterations(1)},
		"zero cpu cost":      {SetCPUCost(0)},
		"small block size":   {SetRelativeBlockSize(4)},
		"small argon memory": {SetArgon2id(), SetMemory(512)},
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			gen, err := NewKeyGenerator(opts...)
			assert.Error(t, err)
			assert.Nil(t, gen)
		})
	}
}

func TestNewKeyGenerator_InvalidCombination(t *testing.T) {
	// Each option is valid alone, but 255 threads need at least 2040KiB.
	gen, err := NewKeyGenerator(SetArgon2id(), SetMemory(1024), SetCPUCost(255))
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Nil(t, gen)

	// Scrypt ignores memory, so the same thread count is fine there.
	gen, err = NewKeyGenerator(SetMemory(1024), SetCPUCost(255), SetIterations(1<<4))
	assert.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestKeyGenerator_GenerateDerive(t *testing.T) {
	for name, gen := range map[string]*KeyGenerator{
		"scrypt":   fastScrypt(t),
		"argon2id": fastArgon(t),
	} {
		t.Run(name, func(t *testing.T) {
			key, desc, err := gen.GenerateKey(testPass)
			require.NoError(t, err)
			assert.Len(t, key, Size)
			assert.NotEqual(t, [SaltSize]byte{}, desc.Salt)

			derived, err := DeriveKey(testPass, desc)
			assert.NoError(t, err)
			assert.Equal(t, key, derived)

			parsed, err := ParseDescriptor(desc.String())
			require.NoError(t, err)
			assert.Equal(t, desc, parsed)
			derived, err = DeriveKey(testPass, parsed)
			assert.NoError(t, err)
			assert.Equal(t, key, derived)

			wrong, err := DeriveKey(Passphrase("another password"), desc)
			assert.NoError(t, err)
			assert.NotEqual(t, key, wrong)

			again, againDesc, err := gen.GenerateKey(testPass)
			require.NoError(t, err)
			assert.NotEqual(t, desc.Salt, againDesc.Salt)
			assert.NotEqual(t, key, again)
		})
	}
}

func TestKeyGenerator_EmptyPassphrase(t *testing.T) {
	gen := fastScrypt(t)
	_, _, err := gen.GenerateKey(nil)
	assert.ErrorIs(t, err, ErrEmptyPassPhrase)
	_, err = DeriveKey(Passphrase{}, gen.descriptor())
	assert.ErrorIs(t, err, ErrEmptyPassPhrase)
}

func TestDescriptor_mapper(t *testing.T) {
	var buf bytes.Buffer
	desc := fastArgon(t).descriptor()
	desc.Salt[0], desc.Salt[SaltSize-1] = 0xAB, 0xCD
	version := descriptorVersion
	assert.NoError(t, desc.mapper(&version).Write(&buf, binary.BigEndian))

	var (
		updated     = fastScrypt(t).descriptor()
		readVersion uint8
	)
	assert.NoError(t, updated.mapper(&readVersion).Read(&buf, binary.BigEndian))
	assert.Equal(t, descriptorVersion, readVersion)
	assert.Equal(t, desc, updated)
}

func TestParseDescriptor_Neg(t *testing.T) {
	desc := fastScrypt(t).descriptor()
	valid, err := desc.MarshalBinary()
	require.NoError(t, err)

	badVersion := bytes.Clone(valid)
	badVersion[0] = 9
	badKDF := bytes.Clone(valid)
	badKDF[1] = 7

	tests := map[string][]byte{
		"empty":       {},
		"truncated":   valid[:len(valid)-1],
		"trailing":    append(bytes.Clone(valid), 0),
		"bad version": badVersion,
		"bad kdf":     badKDF,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			var d Descriptor
			assert.ErrorIs(t, d.UnmarshalBinary(data), ErrInvalidData)
		})
	}

	_, err = ParseDescriptor("not base64!")
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = DeriveKey(testPass, Descriptor{})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestDescriptor_Text(t *testing.T) {
	desc := fastScrypt(t).descriptor()
	text, err := desc.Text()
	require.NoError(t, err)
	assert.Equal(t, text, desc.String())
	parsed, err := ParseDescriptor(text)
	require.NoError(t, err)
	assert.Equal(t, desc, parsed)

	_, err = Descriptor{}.Text()
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Equal(t, "", Descriptor{}.String())
}
