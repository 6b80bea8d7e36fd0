// Package shannonfano implements a dynamic Shannon-Fano code over integers.
//
// A Model holds the events seen so far, ranked by occurrence count, plus an Escape event.
// A value is coded as its position in the ranking, by repeatedly splitting the ranking in two halves of
// nearly equal occurrence mass. A value never seen before is coded as the position of Escape followed by the
// value itself in 32 bits. Encoder and decoder update their models identically after every value, so the
// table is never transmitted.
package shannonfano

import (
	"math"

	"github.com/fumin/sfrle/bits"
	"github.com/pkg/errors"
)

const (
	// Escape is the value of the event announcing a value not in the table yet.
	// It cannot be coded as a payload.
	Escape = math.MaxInt32

	// DefaultCapacity is the number of distinct events a Model holds unless told otherwise, Escape included.
	DefaultCapacity = 200000

	// rawBits is the width of a value following Escape.
	rawBits = 32
)

var (
	// ErrReservedValue is returned when encoding Escape.
	ErrReservedValue = errors.New("value reserved for escape")

	// ErrModelFull is returned when a new value does not fit in the table.
	ErrModelFull = errors.New("shannon-fano table full")

	// ErrCorrupt is returned by Check when the table breaks its invariants,
	// and by Decode when the stream escapes a value the table already holds.
	ErrCorrupt = errors.New("shannon-fano table corrupt")
)

// An Event is a value together with the number of times it occurred.
type Event struct {
	Value       int32
	Occurrences int
}

// A Model is an adaptive Shannon-Fano table.
// Events are kept sorted by decreasing occurrences.
// A Model is not safe for concurrent use.
type Model struct {
	events   []Event
	escape   int // position of Escape in events
	capacity int
}

// New returns a Model holding only Escape, with one occurrence.
// A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Model {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	m := &Model{capacity: capacity}
	m.events = append(m.events, Event{Value: Escape, Occurrences: 1})
	return m
}

// Len returns the number of events in the table, Escape included.
func (m *Model) Len() int {
	return len(m.events)
}

// Events returns a copy of the table, most frequent first.
func (m *Model) Events() []Event {
	events := make([]Event, len(m.events))
	copy(events, m.events)
	return events
}

// position returns the position of v, or that of Escape if v is not in the table.
func (m *Model) position(v int32) int {
	for i, e := range m.events {
		if e.Value == v {
			return i
		}
	}
	return m.escape
}

// Encode writes v to w and updates the model.
func (m *Model) Encode(w bits.BitWriter, v int32) error {
	if v == Escape {
		return errors.Wrapf(ErrReservedValue, "%d", v)
	}
	pos := m.position(v)
	escaped := pos == m.escape
	if escaped && len(m.events) >= m.capacity {
		return errors.Wrapf(ErrModelFull, "%d events", len(m.events))
	}

	if err := m.encodePosition(w, pos); err != nil {
		return err
	}
	if escaped {
		if err := w.WriteBits(rawBits, uint64(uint32(v))); err != nil {
			return errors.Wrap(err, "write escaped value")
		}
		pos = m.add(v)
	}
	m.increment(pos)
	return nil
}

// Decode reads a value from r and updates the model.
func (m *Model) Decode(r bits.BitReader) (int32, error) {
	pos, err := m.decodePosition(r)
	if err != nil {
		return 0, err
	}
	if pos != m.escape {
		v := m.events[pos].Value
		m.increment(pos)
		return v, nil
	}

	if len(m.events) >= m.capacity {
		return 0, errors.Wrapf(ErrModelFull, "%d events", len(m.events))
	}
	raw, err := r.ReadBits(rawBits)
	if err != nil {
		return 0, errors.Wrap(err, "read escaped value")
	}
	v := int32(uint32(raw))
	if v == Escape {
		return 0, errors.Wrap(ErrReservedValue, "escaped value")
	}
	if m.position(v) != m.escape {
		return 0, errors.Wrapf(ErrCorrupt, "escaped value %d already in table", v)
	}
	m.increment(m.add(v))
	return v, nil
}

func (m *Model) encodePosition(w bits.BitWriter, pos int) error {
	lo, hi := 0, len(m.events)-1
	for lo != hi {
		sep := separation(m.events, lo, hi)
		if pos <= sep {
			if err := w.WriteBit(0); err != nil {
				return errors.Wrap(err, "write position")
			}
			hi = sep
		} else {
			if err := w.WriteBit(1); err != nil {
				return errors.Wrap(err, "write position")
			}
			lo = sep + 1
		}
	}
	return nil
}

func (m *Model) decodePosition(r bits.BitReader) (int, error) {
	lo, hi := 0, len(m.events)-1
	for lo != hi {
		sep := separation(m.events, lo, hi)
		b, err := r.ReadBit()
		if err != nil {
			return 0, errors.Wrap(err, "read position")
		}
		if b == 0 {
			hi = sep
		} else {
			lo = sep + 1
		}
	}
	return lo, nil
}

// separation splits events[lo..hi], lo < hi, into events[lo..sep] and events[sep+1..hi]
// such that the occurrence masses of the two sides differ the least.
// On a tie the smaller sep wins.
func separation(events []Event, lo, hi int) int {
	total := 0
	for i := lo; i <= hi; i++ {
		total += events[i].Occurrences
	}

	sep := lo
	best := math.MaxInt
	low := 0
	for i := lo; i < hi; i++ {
		low += events[i].Occurrences
		d := 2*low - total
		if d < 0 {
			d = -d
		}
		if d < best {
			sep, best = i, d
		}
		if 2*low >= total {
			break
		}
	}
	return sep
}

// add appends v with one occurrence and returns its position.
func (m *Model) add(v int32) int {
	m.events = append(m.events, Event{Value: v, Occurrences: 1})
	return len(m.events) - 1
}

// increment adds one occurrence to events[pos] and moves it towards the front
// until the table is sorted again.
// Since only one count grew by one, swapping with left neighbours that became smaller is enough.
func (m *Model) increment(pos int) {
	m.events[pos].Occurrences++
	for pos > 0 && m.events[pos-1].Occurrences < m.events[pos].Occurrences {
		m.events[pos-1], m.events[pos] = m.events[pos], m.events[pos-1]
		switch m.escape {
		case pos:
			m.escape = pos - 1
		case pos - 1:
			m.escape = pos
		}
		pos--
	}
}

// Check verifies that the table is sorted by decreasing occurrences,
// holds exactly one Escape, and no value twice.
func (m *Model) Check() error {
	seen := make(map[int32]struct{}, len(m.events))
	escapes := 0
	for i, e := range m.events {
		if i > 0 && m.events[i-1].Occurrences < e.Occurrences {
			return errors.Wrapf(ErrCorrupt, "unsorted at %d: %d < %d", i, m.events[i-1].Occurrences, e.Occurrences)
		}
		if e.Occurrences < 1 {
			return errors.Wrapf(ErrCorrupt, "event %d has %d occurrences", e.Value, e.Occurrences)
		}
		if _, ok := seen[e.Value]; ok {
			return errors.Wrapf(ErrCorrupt, "duplicate value %d", e.Value)
		}
		seen[e.Value] = struct{}{}
		if e.Value == Escape {
			escapes++
			if i != m.escape {
				return errors.Wrapf(ErrCorrupt, "escape at %d, recorded at %d", i, m.escape)
			}
		}
	}
	if escapes != 1 {
		return errors.Wrapf(ErrCorrupt, "%d escape events", escapes)
	}
	return nil
}
