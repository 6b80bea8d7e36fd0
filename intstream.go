package sfrle

import (
	"strconv"

	"github.com/fumin/sfrle/bits"
	"github.com/fumin/sfrle/prefix"
	"github.com/fumin/sfrle/shannonfano"
	"github.com/pkg/errors"
)

// ErrClosed is returned by operations on a closed integer channel.
var ErrClosed = errors.New("integer channel closed")

// A Strategy is the way an integer channel codes its integers.
type Strategy int

const (
	// Static codes integers with the fixed prefix code of package prefix.
	Static Strategy = iota

	// Adaptive codes integers with a dynamic Shannon-Fano model.
	Adaptive
)

func (s Strategy) String() string {
	switch s {
	case Static:
		return "static"
	case Adaptive:
		return "adaptive"
	}
	return "Strategy(" + strconv.Itoa(int(s)) + ")"
}

func (s Strategy) MarshalText() ([]byte, error) {
	if s != Static && s != Adaptive {
		return nil, errors.Errorf("invalid strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "static":
		*s = Static
	case "adaptive":
		*s = Adaptive
	default:
		return errors.Errorf("unknown strategy %q", text)
	}
	return nil
}

// An IntPutter accepts integers, as expected by EncodeRLE.
type IntPutter interface {
	Put(v int) error
}

// An IntGetter produces integers, as expected by DecodeRLE.
type IntGetter interface {
	Get() (int, error)
}

// An IntEncoder writes integers to a bit channel.
// Several IntEncoders may share a bit channel, in which case their decoders must read in the same order.
type IntEncoder struct {
	w        bits.BitWriter
	strategy Strategy
	signed   bool
	model    *shannonfano.Model
}

// NewIntEncoder returns an IntEncoder writing to w.
// Signed only matters for the Static strategy, where it selects the signed variant of the prefix code.
// The Adaptive strategy requires model, which the encoder uses exclusively until closed, unless the
// caller deliberately hands the same model to another channel.
func NewIntEncoder(w bits.BitWriter, strategy Strategy, signed bool, model *shannonfano.Model) (*IntEncoder, error) {
	if err := checkChannel(w == nil, strategy, model); err != nil {
		return nil, err
	}
	return &IntEncoder{w: w, strategy: strategy, signed: signed, model: model}, nil
}

// Put writes v.
func (e *IntEncoder) Put(v int) error {
	if e.w == nil {
		return ErrClosed
	}
	switch e.strategy {
	case Static:
		if e.signed {
			return prefix.WriteSigned(e.w, v)
		}
		if v < 0 {
			return errors.Wrapf(prefix.ErrOutOfRange, "%d", v)
		}
		return prefix.WriteUnsigned(e.w, uint(v))
	default:
		if int(int32(v)) != v {
			return errors.Errorf("%d overflows 32 bits", v)
		}
		return e.model.Encode(e.w, int32(v))
	}
}

// Close drops its references to the bit channel and the model; the bit channel stays open.
func (e *IntEncoder) Close() error {
	e.w = nil
	e.model = nil
	return nil
}

// An IntDecoder reads integers written by an IntEncoder with the same settings.
type IntDecoder struct {
	r        bits.BitReader
	strategy Strategy
	signed   bool
	model    *shannonfano.Model
}

// NewIntDecoder returns an IntDecoder reading from r.
// The model, if any, must start in the same state as the encoder's did.
func NewIntDecoder(r bits.BitReader, strategy Strategy, signed bool, model *shannonfano.Model) (*IntDecoder, error) {
	if err := checkChannel(r == nil, strategy, model); err != nil {
		return nil, err
	}
	return &IntDecoder{r: r, strategy: strategy, signed: signed, model: model}, nil
}

// Get reads the next integer.
func (d *IntDecoder) Get() (int, error) {
	if d.r == nil {
		return 0, ErrClosed
	}
	switch d.strategy {
	case Static:
		if d.signed {
			return prefix.ReadSigned(d.r)
		}
		v, err := prefix.ReadUnsigned(d.r)
		return int(v), err
	default:
		v, err := d.model.Decode(d.r)
		return int(v), err
	}
}

// Close drops its references to the bit channel and the model; the bit channel stays open.
func (d *IntDecoder) Close() error {
	d.r = nil
	d.model = nil
	return nil
}

func checkChannel(nilChannel bool, strategy Strategy, model *shannonfano.Model) error {
	if nilChannel {
		return errors.New("nil bit channel")
	}
	switch strategy {
	case Static:
	case Adaptive:
		if model == nil {
			return errors.New("adaptive strategy without a model")
		}
	default:
		return errors.Errorf("invalid strategy %d", int(strategy))
	}
	return nil
}
