// Package prefix implements a static variable-length prefix code for small integers.
//
// An unsigned value v in [0, 32767] is written as the codeword selected by its bit length,
// followed by the bits of v below its leading one:
//
//	bit length | prefix | values
//	         0 | 00     | 0
//	         1 | 010    | 1
//	         2 | 011    | 2-3
//	         3 | 1000   | 4-7
//	         4 | 1001   | 8-15
//	         5 | 1010   | 16-31
//	         6 | 1011   | 32-63
//	         7 | 11000  | 64-127
//	         8 | 11001  | 128-255
//	         9 | 11010  | 256-511
//	        10 | 11011  | 512-1023
//	        11 | 11100  | 1024-2047
//	        12 | 11101  | 2048-4095
//	        13 | 11110  | 4096-8191
//	        14 | 111110 | 8192-16383
//	        15 | 111111 | 16384-32767
//
// Signed values carry a leading sign bit, 1 for negative, followed by the unsigned code of
// i for i >= 0, or of -(i+1) for i < 0.
package prefix

import (
	"math/bits"
	"strings"

	sfbits "github.com/fumin/sfrle/bits"
	"github.com/pkg/errors"
)

const (
	// MaxUnsigned is the largest value the unsigned code can represent.
	MaxUnsigned = 1<<15 - 1

	// MinSigned and MaxSigned bound the signed code.
	MinSigned = -(MaxUnsigned + 1)
	MaxSigned = MaxUnsigned
)

var (
	// ErrOutOfRange is returned when a value cannot be represented by the code.
	ErrOutOfRange = errors.New("value out of prefix code range")

	// ErrMalformedPrefix is returned when the input matches no codeword.
	ErrMalformedPrefix = errors.New("malformed prefix")
)

// A table maps a bit length to its codeword.
type table []string

var standard = table{
	"00", "010", "011", "1000", "1001", "1010", "1011",
	"11000", "11001", "11010", "11011", "11100",
	"11101", "11110", "111110", "111111",
}

// maxLen returns the length of the longest codeword, which bounds the prefix scan.
func (t table) maxLen() int {
	n := 0
	for _, c := range t {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

// match reads bits until they spell a codeword of t and returns its row.
// No more than t.maxLen() bits are consumed.
func (t table) match(r sfbits.BitReader) (int, error) {
	limit := t.maxLen()
	var sb strings.Builder
	for sb.Len() < limit {
		b, err := r.ReadBit()
		if err != nil {
			return 0, errors.Wrap(err, "read prefix")
		}
		sb.WriteByte(byte('0' + b))
		cand := sb.String()
		for row, c := range t {
			if c == cand {
				return row, nil
			}
		}
	}
	return 0, errors.Wrapf(ErrMalformedPrefix, "%q", sb.String())
}

// Code returns the codeword of v as a string of '0' and '1'.
func Code(v uint) (string, error) {
	if v > MaxUnsigned {
		return "", errors.Wrapf(ErrOutOfRange, "%d", v)
	}
	n := bits.Len(v)
	var sb strings.Builder
	sb.WriteString(standard[n])
	for i := n - 2; i >= 0; i-- {
		sb.WriteByte(byte('0' + (v>>uint(i))&1))
	}
	return sb.String(), nil
}

// WriteUnsigned writes v, which must not exceed MaxUnsigned.
func WriteUnsigned(w sfbits.BitWriter, v uint) error {
	if v > MaxUnsigned {
		return errors.Wrapf(ErrOutOfRange, "%d", v)
	}
	n := bits.Len(v)
	for _, c := range standard[n] {
		if err := w.WriteBit(int(c - '0')); err != nil {
			return errors.Wrap(err, "write prefix")
		}
	}
	if n < 2 {
		return nil
	}
	// The leading one is implied by the prefix.
	suffix := uint64(v) & (1<<uint(n-1) - 1)
	if err := w.WriteBits(uint(n-1), suffix); err != nil {
		return errors.Wrap(err, "write suffix")
	}
	return nil
}

// ReadUnsigned reads a value written by WriteUnsigned.
func ReadUnsigned(r sfbits.BitReader) (uint, error) {
	n, err := standard.match(r)
	if err != nil {
		return 0, err
	}
	if n < 2 {
		return uint(n), nil
	}
	suffix, err := r.ReadBits(uint(n - 1))
	if err != nil {
		return 0, errors.Wrap(err, "read suffix")
	}
	return 1<<uint(n-1) | uint(suffix), nil
}

// WriteSigned writes i, which must lie in [MinSigned, MaxSigned].
func WriteSigned(w sfbits.BitWriter, i int) error {
	if i < MinSigned || i > MaxSigned {
		return errors.Wrapf(ErrOutOfRange, "%d", i)
	}
	if i < 0 {
		if err := w.WriteBit(1); err != nil {
			return errors.Wrap(err, "write sign")
		}
		return WriteUnsigned(w, uint(-(i + 1)))
	}
	if err := w.WriteBit(0); err != nil {
		return errors.Wrap(err, "write sign")
	}
	return WriteUnsigned(w, uint(i))
}

// ReadSigned reads a value written by WriteSigned.
func ReadSigned(r sfbits.BitReader) (int, error) {
	sign, err := r.ReadBit()
	if err != nil {
		return 0, errors.Wrap(err, "read sign")
	}
	v, err := ReadUnsigned(r)
	if err != nil {
		return 0, err
	}
	if sign == 1 {
		return -(int(v) + 1), nil
	}
	return int(v), nil
}
