package legacy

import (
	"io"
)

// Reader screens every byte read from its source, and can be rewound to screen another source with the same key.
type Reader interface {
	io.Reader
	// Reset will use the provided io.Reader and rewind to the start of the key.
	Reset(source io.Reader)
}

// Writer screens every byte written to its target, and can be rewound to screen into another target with the same key.
type Writer interface {
	io.Writer
	// Reset will use the provided io.Writer and rewind to the start of the key.
	Reset(target io.Writer)
}

var _ Reader = (*reader)(nil)

type reader struct {
	source io.Reader
	ring   *keyRing
}

// NewReader creates a Reader that screens with key, starting at offset within the key.
func NewReader(source io.Reader, key []byte, offset int) (Reader, error) {
	ring, err := newKeyRing(key, offset)
	if err != nil {
		return nil, err
	}
	return &reader{source: source, ring: ring}, nil
}

func (r *reader) Read(out []byte) (int, error) {
	n, err := r.source.Read(out)
	r.ring.apply(out[:n])
	return n, err
}

func (r *reader) Reset(source io.Reader) {
	r.source = source
	r.ring.rewind()
}

var _ Writer = (*writer)(nil)

type writer struct {
	target io.Writer
	ring   *keyRing
}

// NewWriter creates a Writer that screens with key, starting at offset within the key.
func NewWriter(target io.Writer, key []byte, offset int) (Writer, error) {
	ring, err := newKeyRing(key, offset)
	if err != nil {
		return nil, err
	}
	return &writer{target: target, ring: ring}, nil
}

func (w *writer) Write(in []byte) (int, error) {
	screened := make([]byte, len(in))
	copy(screened, in)
	w.ring.apply(screened)
	return w.target.Write(screened)
}

func (w *writer) Reset(target io.Writer) {
	w.target = target
	w.ring.rewind()
}
