// Package sfrle is the lossless back end of a transform coder.
// It packs sparse integer arrays, typically quantized DCT or wavelet coefficients, as runs of zeros and
// nonzero values, each coded either with a static prefix code or with a dynamic Shannon-Fano model.
//
// Below is an example of compressing a file of whitespace separated coefficients:
//    go run compress/main.go coeffs.txt > coeffs.sf
//    cat coeffs.sf | go run decompress/main.go > coeffs.dsf
//    diff coeffs.txt coeffs.dsf
package sfrle

import (
	"encoding/json"
	"io"
	"math"

	"github.com/fumin/sfrle/bits"
	"github.com/fumin/sfrle/shannonfano"
	"github.com/pkg/errors"
)

// A Config selects how the run lengths and the nonzero values of a stream are coded.
type Config struct {
	Runs   Strategy
	Values Strategy

	// SharedModel makes both streams draw from one Shannon-Fano table when both are Adaptive.
	SharedModel bool
}

// DefaultConfig codes both streams adaptively with separate tables.
func DefaultConfig() Config {
	return Config{Runs: Adaptive, Values: Adaptive}
}

// ParseConfig decodes a JSON configuration such as {"Runs": "static", "Values": "adaptive"}.
// Fields left out keep their DefaultConfig values.
func ParseConfig(s string) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal([]byte(s), &cfg); err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	return cfg, nil
}

const (
	countBits = 32

	// maxPrealloc bounds the storage reserved from the header count before any payload is read.
	maxPrealloc = 1 << 16
)

// channels holds the two integer streams of a container, bound to one bit channel.
type channels struct {
	runModel   *shannonfano.Model
	valueModel *shannonfano.Model
}

func newChannels(cfg Config) channels {
	var c channels
	if cfg.Runs == Adaptive {
		c.runModel = shannonfano.New(0)
	}
	if cfg.Values == Adaptive {
		c.valueModel = shannonfano.New(0)
		if cfg.SharedModel && c.runModel != nil {
			c.valueModel = c.runModel
		}
	}
	return c
}

func writeHeader(w *bits.Writer, n int, cfg Config) error {
	if err := w.WriteBits(countBits, uint64(n)); err != nil {
		return errors.Wrap(err, "write count")
	}
	flags := []bool{cfg.Runs == Adaptive, cfg.Values == Adaptive, cfg.SharedModel}
	for _, f := range flags {
		b := 0
		if f {
			b = 1
		}
		if err := w.WriteBit(b); err != nil {
			return errors.Wrap(err, "write flags")
		}
	}
	return nil
}

func readHeader(r *bits.Reader) (int, Config, error) {
	n, err := r.ReadBits(countBits)
	if err != nil {
		return 0, Config{}, errors.Wrap(err, "read count")
	}
	var flags [3]bool
	for i := range flags {
		b, err := r.ReadBit()
		if err != nil {
			return 0, Config{}, errors.Wrap(err, "read flags")
		}
		flags[i] = b == 1
	}
	cfg := Config{Runs: Static, Values: Static, SharedModel: flags[2]}
	if flags[0] {
		cfg.Runs = Adaptive
	}
	if flags[1] {
		cfg.Values = Adaptive
	}
	if n > uint64(math.MaxInt) {
		return 0, Config{}, errors.Errorf("count %d does not fit in an int", n)
	}
	return int(n), cfg, nil
}

// Compress writes coeffs to w, preceded by their count and the coding configuration.
func Compress(w io.Writer, coeffs []float64, cfg Config) (err error) {
	if uint64(len(coeffs)) > math.MaxUint32 {
		return errors.Errorf("%d coefficients do not fit in a header", len(coeffs))
	}
	bw := bits.NewWriter(w)
	defer func() {
		if cerr := bw.Close(); err == nil {
			err = cerr
		}
	}()

	if err := writeHeader(bw, len(coeffs), cfg); err != nil {
		return err
	}
	c := newChannels(cfg)
	runs, err := NewIntEncoder(bw, cfg.Runs, false, c.runModel)
	if err != nil {
		return err
	}
	defer runs.Close()
	values, err := NewIntEncoder(bw, cfg.Values, true, c.valueModel)
	if err != nil {
		return err
	}
	defer values.Close()

	if err := EncodeRLE(runs, values, coeffs); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Decompress reads coefficients written by Compress.
func Decompress(r io.Reader) ([]float64, error) {
	br := bits.NewReader(r)
	defer br.Close()

	n, cfg, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	c := newChannels(cfg)
	runs, err := NewIntDecoder(br, cfg.Runs, false, c.runModel)
	if err != nil {
		return nil, err
	}
	defer runs.Close()
	values, err := NewIntDecoder(br, cfg.Values, true, c.valueModel)
	if err != nil {
		return nil, err
	}
	defer values.Close()

	size := n
	if size > maxPrealloc {
		size = maxPrealloc
	}
	coeffs, err := AppendRLE(make([]float64, 0, size), runs, values, n)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return coeffs, nil
}
