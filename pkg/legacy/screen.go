package legacy

import (
	"errors"
	"fmt"
)

// keyRing hands out key bytes in order, wrapping around at the end of the key.
type keyRing struct {
	key   []byte
	start int
	pos   int
}

func newKeyRing(key []byte, offset int) (*keyRing, error) {
	if len(key) == 0 {
		return nil, errors.New("cannot use empty key")
	}
	if offset < 0 || offset >= len(key) {
		return nil, fmt.Errorf("offset %d out of range for provided key of len %d", offset, len(key))
	}
	return &keyRing{key: key, start: offset, pos: offset}, nil
}

func (k *keyRing) apply(buf []byte) {
	for i := range buf {
		buf[i] ^= k.key[k.pos]
		k.pos++
		if k.pos == len(k.key) {
			k.pos = 0
		}
	}
}

func (k *keyRing) rewind() {
	k.pos = k.start
}
