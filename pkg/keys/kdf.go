package keys

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	bin "github.com/saylorsolutions/binmap"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"
)

// KDF identifies the passphrase key derivation function.
type KDF uint8

const (
	KDFScrypt   KDF = 1
	KDFArgon2id KDF = 2
)

func (k KDF) String() string {
	switch k {
	case KDFScrypt:
		return "scrypt"
	case KDFArgon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("kdf(%d)", uint8(k))
	}
}

const (
	DefaultLargeIterations       uint64 = 1 << 20
	DefaultInteractiveIterations uint64 = 1 << 15
	DefaultRelBlockSize          uint8  = 8
	DefaultCpuCost               uint8  = 1

	DefaultArgonLargeTime       uint64 = 4
	DefaultArgonInteractiveTime uint64 = 1
	DefaultArgonMemory          uint64 = 64 * 1024
	DefaultArgonThreads         uint8  = 4

	SaltSize = 32

	descriptorVersion uint8 = 1
)

// Descriptor holds the KDF parameters and salt needed to derive the same Key from a passphrase again.
// It contains nothing secret and is persisted alongside configuration.
type Descriptor struct {
	KDF KDF
	// Iterations is the scrypt cost parameter N, or the argon2id time cost.
	Iterations        uint64
	RelativeBlockSize uint8
	// CPUCost is the scrypt parallelism, or the argon2id thread count.
	CPUCost uint8
	// Memory is the argon2id memory cost in KiB.
	Memory uint64
	Salt   [SaltSize]byte
}

func (d *Descriptor) mapper(version *uint8) bin.Mapper {
	mappers := []bin.Mapper{
		bin.Byte(version),
		bin.Byte((*byte)(&d.KDF)),
		bin.Int(&d.Iterations),
		bin.Byte(&d.RelativeBlockSize),
		bin.Byte(&d.CPUCost),
		bin.Int(&d.Memory),
	}
	for i := range d.Salt {
		mappers = append(mappers, bin.Byte(&d.Salt[i]))
	}
	return bin.MapSequence(mappers...)
}

func (d *Descriptor) validate() error {
	switch d.KDF {
	case KDFScrypt:
		if d.Iterations <= 1 || d.Iterations&(d.Iterations-1) != 0 || d.Iterations > math.MaxInt32 {
			return fmt.Errorf("%w: scrypt iterations must be a power of 2 greater than 1", ErrInvalidData)
		}
		if d.RelativeBlockSize < 1 || d.CPUCost < 1 {
			return fmt.Errorf("%w: scrypt block size and cpu cost must be at least 1", ErrInvalidData)
		}
	case KDFArgon2id:
		if d.Iterations < 1 || d.Iterations > math.MaxUint32 {
			return fmt.Errorf("%w: argon2id time must be between 1 and %d", ErrInvalidData, uint32(math.MaxUint32))
		}
		if d.CPUCost < 1 {
			return fmt.Errorf("%w: argon2id threads must be at least 1", ErrInvalidData)
		}
		if d.Memory < 8*uint64(d.CPUCost) || d.Memory > math.MaxUint32 {
			return fmt.Errorf("%w: argon2id memory must be at least 8KiB per thread", ErrInvalidData)
		}
	default:
		return fmt.Errorf("%w: unknown KDF %s", ErrInvalidData, d.KDF)
	}
	return nil
}

func (d *Descriptor) MarshalBinary() ([]byte, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	var (
		buf     bytes.Buffer
		version = descriptorVersion
	)
	if err := d.mapper(&version).Write(&buf, binary.BigEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Descriptor) UnmarshalBinary(data []byte) error {
	var (
		decoded Descriptor
		version uint8
		r       = bytes.NewReader(data)
	)
	if err := decoded.mapper(&version).Read(r, binary.BigEndian); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if version != descriptorVersion {
		return fmt.Errorf("%w: unknown descriptor version %d", ErrInvalidData, version)
	}
	if r.Len() > 0 {
		return fmt.Errorf("%w: %d unexpected trailing bytes", ErrInvalidData, r.Len())
	}
	if err := decoded.validate(); err != nil {
		return err
	}
	*d = decoded
	return nil
}

// Text returns the descriptor as base64 text, which ParseDescriptor accepts.
func (d Descriptor) Text() (string, error) {
	data, err := d.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// String is like Text, but returns an empty string for an invalid Descriptor.
func (d Descriptor) String() string {
	text, err := d.Text()
	if err != nil {
		return ""
	}
	return text
}

// ParseDescriptor reads a Descriptor from the text form returned by Descriptor.String.
func ParseDescriptor(text string) (Descriptor, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	var d Descriptor
	if err := d.UnmarshalBinary(data); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// KeyGenerator generates a Key from a Passphrase.
// Scrypt is used unless SetArgon2id is given.
type KeyGenerator struct {
	kdf               KDF
	long              bool
	iterations        uint64
	relativeBlockSize uint8
	cpuCost           uint8
	memory            uint64
}

type GeneratorOpt = func(*KeyGenerator) error

// SetScrypt selects scrypt for key derivation. This is the default.
func SetScrypt() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.kdf = KDFScrypt
		return nil
	}
}

// SetArgon2id selects argon2id for key derivation.
func SetArgon2id() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.kdf = KDFArgon2id
		return nil
	}
}

// SetLongDelayIterations sets a higher iteration count. This is sufficient for infrequent key derivation, or cases where the key will be cached for long periods of time.
// This option is much more resistant to password cracking, and is the default.
func SetLongDelayIterations() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.long = true
		gen.iterations = 0
		return nil
	}
}

// SetShortDelayIterations sets a lower iteration count. This is appropriate for situations where a shorter delay is desired because of frequent key derivations.
// This option balances speed with password cracking resistance. It's recommended to use longer passwords with this approach.
func SetShortDelayIterations() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.long = false
		gen.iterations = 0
		return nil
	}
}

// SetIterations allows the caller to customize the iteration count.
// With scrypt this must be a power of 2, with argon2id it's the time cost.
// Only use this option if you know what you're doing.
func SetIterations(iterations uint64) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if iterations < 1 {
			return errors.New("iterations must be at least 1")
		}
		gen.iterations = iterations
		return nil
	}
}

// SetCPUCost sets the parallelism factor for key generation.
// Only use this option if you know what you're doing.
func SetCPUCost(cost uint8) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if cost < DefaultCpuCost {
			return errors.New("cpu cost must be at least 1")
		}
		gen.cpuCost = cost
		return nil
	}
}

// SetRelativeBlockSize sets the scrypt relative block size.
// Only use this option if you know what you're doing.
func SetRelativeBlockSize(size uint8) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if size < DefaultRelBlockSize {
			return errors.New("relative block size must be at least 8")
		}
		gen.relativeBlockSize = size
		return nil
	}
}

// SetMemory sets the argon2id memory cost in KiB.
func SetMemory(kib uint64) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if kib < 1024 {
			return errors.New("memory must be at least 1024KiB")
		}
		gen.memory = kib
		return nil
	}
}

// NewKeyGenerator creates a new KeyGenerator using the options provided as zero or more GeneratorOpt.
// By default, the generator uses scrypt with DefaultLargeIterations.
func NewKeyGenerator(opts ...GeneratorOpt) (*KeyGenerator, error) {
	gen := &KeyGenerator{
		kdf:               KDFScrypt,
		long:              true,
		relativeBlockSize: DefaultRelBlockSize,
	}
	for _, opt := range opts {
		if err := opt(gen); err != nil {
			return nil, err
		}
	}

	switch gen.kdf {
	case KDFArgon2id:
		if gen.iterations == 0 {
			gen.iterations = DefaultArgonInteractiveTime
			if gen.long {
				gen.iterations = DefaultArgonLargeTime
			}
		}
		if gen.cpuCost == 0 {
			gen.cpuCost = DefaultArgonThreads
		}
		if gen.memory == 0 {
			gen.memory = DefaultArgonMemory
		}
	default:
		if gen.iterations == 0 {
			gen.iterations = DefaultInteractiveIterations
			if gen.long {
				gen.iterations = DefaultLargeIterations
			}
		}
		if gen.cpuCost == 0 {
			gen.cpuCost = DefaultCpuCost
		}
		gen.memory = 0
	}
	desc := gen.descriptor()
	if err := desc.validate(); err != nil {
		return nil, err
	}
	return gen, nil
}

func (g *KeyGenerator) descriptor() Descriptor {
	return Descriptor{
		KDF:               g.kdf,
		Iterations:        g.iterations,
		RelativeBlockSize: g.relativeBlockSize,
		CPUCost:           g.cpuCost,
		Memory:            g.memory,
	}
}

// GenerateKey will generate a Key with a fresh salt using the configuration of the KeyGenerator.
// The returned Descriptor must be kept to derive the same key later with DeriveKey.
func (g *KeyGenerator) GenerateKey(pass Passphrase) (Key, Descriptor, error) {
	if len(pass) == 0 {
		return nil, Descriptor{}, ErrEmptyPassPhrase
	}
	desc := g.descriptor()
	if _, err := io.ReadFull(rand.Reader, desc.Salt[:]); err != nil {
		return nil, Descriptor{}, err
	}
	key, err := derive(pass, desc)
	if err != nil {
		return nil, Descriptor{}, err
	}
	return key, desc, nil
}

// DeriveKey will recover a key with the parameters and salt in desc and the given passphrase.
// This doesn't ensure that the given passphrase is the *correct* passphrase, a wrong one yields a different key.
func DeriveKey(pass Passphrase, desc Descriptor) (Key, error) {
	if len(pass) == 0 {
		return nil, ErrEmptyPassPhrase
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}
	return derive(pass, desc)
}

func derive(pass Passphrase, desc Descriptor) (Key, error) {
	switch desc.KDF {
	case KDFArgon2id:
		return argon2.IDKey(pass, desc.Salt[:], uint32(desc.Iterations), uint32(desc.Memory), desc.CPUCost, Size), nil
	default:
		key, err := scrypt.Key(pass, desc.Salt[:], int(desc.Iterations), int(desc.RelativeBlockSize), int(desc.CPUCost), Size)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		return key, nil
	}
}
