// Package bits provides the bit channel the integer codecs read from and write to.
// Bits are packed most significant bit first, and a partial trailing byte is padded with zeros on Close.
package bits

import (
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// ErrClosed is returned by operations on a closed channel.
var ErrClosed = errors.New("bit channel closed")

// A BitWriter is the write side of a bit channel, as expected by the integer codecs.
type BitWriter interface {
	// WriteBit writes the lowest bit of b.
	WriteBit(b int) error

	// WriteBits writes the lowest width bits of value, most significant first.
	WriteBits(width uint, value uint64) error
}

// A BitReader is the read side of a bit channel, as expected by the integer codecs.
type BitReader interface {
	// ReadBit reads a single bit.
	ReadBit() (int, error)

	// ReadBits reads width bits, the first one read being the most significant.
	ReadBits(width uint) (uint64, error)
}

// A Writer is a bit channel bound to a byte sink.
type Writer struct {
	w       *bitio.Writer
	written uint64
	closed  bool
}

// NewWriter returns a Writer that packs bits into dst.
// The Writer must be closed to flush the last partial byte.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{w: bitio.NewWriter(dst)}
}

func (w *Writer) WriteBit(b int) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.w.WriteBool(b&1 == 1); err != nil {
		return errors.Wrap(err, "write bit")
	}
	w.written++
	return nil
}

func (w *Writer) WriteBits(width uint, value uint64) error {
	if w.closed {
		return ErrClosed
	}
	if width > 64 {
		return errors.Errorf("width %d not in [0, 64]", width)
	}
	if width == 0 {
		return nil
	}
	if width < 64 {
		value &= (uint64(1) << width) - 1
	}
	if err := w.w.WriteBits(value, uint8(width)); err != nil {
		return errors.Wrapf(err, "write %d bits", width)
	}
	w.written += uint64(width)
	return nil
}

// WriteBitString writes the bits spelled out by s, e.g. "0110".
func (w *Writer) WriteBitString(s string) error {
	for i := 0; i < len(s); i++ {
		var b int
		switch s[i] {
		case '0':
			b = 0
		case '1':
			b = 1
		default:
			return errors.Errorf("invalid bit %q at %d in %q", s[i], i, s)
		}
		if err := w.WriteBit(b); err != nil {
			return err
		}
	}
	return nil
}

// Written returns the number of bits written so far, padding excluded.
func (w *Writer) Written() uint64 {
	return w.written
}

// Close pads the last partial byte with zeros and flushes it.
// It does not close the underlying sink, which remains owned by the caller.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.w.Close(); err != nil {
		return errors.Wrap(err, "flush bit channel")
	}
	return nil
}

// A Reader is a bit channel bound to a byte source.
type Reader struct {
	r      *bitio.Reader
	read   uint64
	closed bool
}

// NewReader returns a Reader that unpacks bits from src.
func NewReader(src io.Reader) *Reader {
	return &Reader{r: bitio.NewReader(src)}
}

func (r *Reader) ReadBit() (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	b, err := r.r.ReadBool()
	if err != nil {
		return 0, errors.Wrapf(eof(err), "read bit %d", r.read)
	}
	r.read++
	if b {
		return 1, nil
	}
	return 0, nil
}

func (r *Reader) ReadBits(width uint) (uint64, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if width > 64 {
		return 0, errors.Errorf("width %d not in [0, 64]", width)
	}
	if width == 0 {
		return 0, nil
	}
	v, err := r.r.ReadBits(uint8(width))
	if err != nil {
		return 0, errors.Wrapf(eof(err), "read %d bits at %d", width, r.read)
	}
	r.read += uint64(width)
	return v, nil
}

// Read returns the number of bits consumed so far.
func (r *Reader) Read() uint64 {
	return r.read
}

// Close releases the channel. The underlying source is not closed.
func (r *Reader) Close() error {
	r.closed = true
	return nil
}

// eof reports a clean end of input as a truncation.
func eof(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
