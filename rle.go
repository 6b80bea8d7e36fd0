package sfrle

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrRunOverflow is returned when a decoded run of zeros goes past the end of the output.
	ErrRunOverflow = errors.New("run of zeros overflows output")

	// ErrValueRange is returned when a coefficient does not fit in 32 bits after rounding.
	ErrValueRange = errors.New("coefficient out of range")
)

// A Run is a number of zeros followed by a nonzero value.
// The last Run of an array ending with zeros has no value.
type Run struct {
	Zeros    int
	Value    int
	HasValue bool
}

// round rounds half to even, the way the quantizer upstream does.
func round(f float64) (int, error) {
	r := math.RoundToEven(f)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return 0, errors.Wrapf(ErrValueRange, "%g", f)
	}
	return int(r), nil
}

// Runs splits coeffs into runs of zeros, each followed by a nonzero value.
// For example 5 8 0 0 4 0 0 0 0 2 1 0 0 0 gives (0,5) (0,8) (2,4) (4,2) (0,1) (3).
func Runs(coeffs []float64) ([]Run, error) {
	runs := []Run{}
	zeros := 0
	for _, c := range coeffs {
		v, err := round(c)
		if err != nil {
			return nil, err
		}
		if v == 0 {
			zeros++
			continue
		}
		runs = append(runs, Run{Zeros: zeros, Value: v, HasValue: true})
		zeros = 0
	}
	if zeros > 0 {
		runs = append(runs, Run{Zeros: zeros})
	}
	return runs, nil
}

// EncodeRLE writes coeffs as run lengths to runs and nonzero values to values.
// When both share a bit channel, the two streams are interleaved run first, and DecodeRLE must be given
// the same arrangement.
func EncodeRLE(runs, values IntPutter, coeffs []float64) error {
	rs, err := Runs(coeffs)
	if err != nil {
		return err
	}
	for i, r := range rs {
		if err := runs.Put(r.Zeros); err != nil {
			return errors.Wrapf(err, "run %d", i)
		}
		if !r.HasValue {
			break
		}
		if err := values.Put(r.Value); err != nil {
			return errors.Wrapf(err, "value %d", i)
		}
	}
	return nil
}

// DecodeRLE fills coeffs from streams written by EncodeRLE.
// The length of coeffs must be that of the encoded array.
func DecodeRLE(runs, values IntGetter, coeffs []float64) error {
	_, err := AppendRLE(coeffs[:0], runs, values, len(coeffs))
	return err
}

// AppendRLE decodes n coefficients from streams written by EncodeRLE and appends them to dst.
// dst grows only as runs and values are read, so n may come from an unchecked header.
func AppendRLE(dst []float64, runs, values IntGetter, n int) ([]float64, error) {
	if n < 0 {
		return dst, errors.Errorf("negative count %d", n)
	}
	start := len(dst)
	for i := 0; i < n; i = len(dst) - start {
		zeros, err := runs.Get()
		if err != nil {
			return dst, errors.Wrapf(err, "run at %d", i)
		}
		if zeros < 0 || zeros > n-i {
			return dst, errors.Wrapf(ErrRunOverflow, "%d zeros at %d of %d", zeros, i, n)
		}
		for k := 0; k < zeros; k++ {
			dst = append(dst, 0)
		}

		// A trailing run has no value.
		if i+zeros == n {
			break
		}
		v, err := values.Get()
		if err != nil {
			return dst, errors.Wrapf(err, "value at %d", i+zeros)
		}
		dst = append(dst, float64(v))
	}
	return dst, nil
}
