package sfrle

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

// recorder logs integers in the order they are put, tagged with their stream.
type recorder struct {
	name string
	log  *[]string
	ints []int
}

func (r *recorder) Put(v int) error {
	*r.log = append(*r.log, r.name)
	r.ints = append(r.ints, v)
	return nil
}

// replay serves integers and fails when exhausted.
type replay struct {
	ints []int
}

func (r *replay) Get() (int, error) {
	if len(r.ints) == 0 {
		return 0, errors.New("exhausted")
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v, nil
}

var scenario = []float64{5, 8, 0, 0, 4, 0, 0, 0, 0, 2, 1, 0, 0, 0}

func TestRuns(t *testing.T) {
	runs, err := Runs(scenario)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := []Run{
		{0, 5, true}, {0, 8, true}, {2, 4, true}, {4, 2, true}, {0, 1, true}, {3, 0, false},
	}
	if !reflect.DeepEqual(runs, want) {
		t.Errorf("%+v != %+v", runs, want)
	}
}

func TestEncodeRLE(t *testing.T) {
	var log []string
	runs := &recorder{name: "run", log: &log}
	values := &recorder{name: "value", log: &log}
	if err := EncodeRLE(runs, values, scenario); err != nil {
		t.Fatalf("%+v", err)
	}
	if want := []int{0, 0, 2, 4, 0, 3}; !reflect.DeepEqual(runs.ints, want) {
		t.Errorf("runs %v != %v", runs.ints, want)
	}
	if want := []int{5, 8, 4, 2, 1}; !reflect.DeepEqual(values.ints, want) {
		t.Errorf("values %v != %v", values.ints, want)
	}
	order := []string{"run", "value", "run", "value", "run", "value", "run", "value", "run", "value", "run"}
	if !reflect.DeepEqual(log, order) {
		t.Errorf("interleaving %v != %v", log, order)
	}

	got := make([]float64, len(scenario))
	for i := range got {
		got[i] = -1
	}
	if err := DecodeRLE(&replay{runs.ints}, &replay{values.ints}, got); err != nil {
		t.Fatalf("%+v", err)
	}
	if !reflect.DeepEqual(got, scenario) {
		t.Errorf("%v != %v", got, scenario)
	}
}

func TestRLEEdges(t *testing.T) {
	tests := []struct {
		name   string
		coeffs []float64
		runs   []int
		values []int
	}{
		{"empty", []float64{}, nil, nil},
		{"all zeros", []float64{0, 0, 0, 0}, []int{4}, nil},
		{"no zeros", []float64{1, -2, 3}, []int{0, 0, 0}, []int{1, -2, 3}},
		{"rounding", []float64{0.4, -0.5, 0.5, 1.5, 2.5, -1.6}, []int{3, 0, 0}, []int{2, 2, -2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var log []string
			runs := &recorder{name: "run", log: &log}
			values := &recorder{name: "value", log: &log}
			if err := EncodeRLE(runs, values, tc.coeffs); err != nil {
				t.Fatalf("%+v", err)
			}
			if len(runs.ints) != len(tc.runs) || (len(tc.runs) > 0 && !reflect.DeepEqual(runs.ints, tc.runs)) {
				t.Errorf("runs %v != %v", runs.ints, tc.runs)
			}
			if len(values.ints) != len(tc.values) || (len(tc.values) > 0 && !reflect.DeepEqual(values.ints, tc.values)) {
				t.Errorf("values %v != %v", values.ints, tc.values)
			}

			got := make([]float64, len(tc.coeffs))
			if err := DecodeRLE(&replay{runs.ints}, &replay{values.ints}, got); err != nil {
				t.Fatalf("%+v", err)
			}
			for i, c := range tc.coeffs {
				v, _ := round(c)
				if got[i] != float64(v) {
					t.Errorf("%d: %v != %v", i, got[i], v)
				}
			}
		})
	}
}

func TestDecodeRLEOverflow(t *testing.T) {
	got := make([]float64, 4)
	err := DecodeRLE(&replay{[]int{1, 5}}, &replay{[]int{7}}, got)
	if errors.Cause(err) != ErrRunOverflow {
		t.Fatalf("%v", err)
	}
}

func TestAppendRLE(t *testing.T) {
	dst := []float64{-1}
	got, err := AppendRLE(dst, &replay{[]int{2, 0}}, &replay{[]int{7, 3}}, 4)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if want := []float64{-1, 0, 0, 7, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("%v != %v", got, want)
	}

	// A count far beyond the streams fails once they run dry, with no storage reserved for it.
	got, err = AppendRLE(nil, &replay{[]int{3}}, &replay{[]int{1}}, 1<<30)
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(got) != 4 || cap(got) > 1<<20 {
		t.Errorf("len %d cap %d", len(got), cap(got))
	}

	if _, err := AppendRLE(nil, &replay{[]int{1, 5}}, &replay{[]int{7}}, 4); errors.Cause(err) != ErrRunOverflow {
		t.Errorf("%v", err)
	}
	if _, err := AppendRLE(nil, &replay{}, &replay{}, -1); err == nil {
		t.Errorf("negative count accepted")
	}
}

func TestDecodeRLETrailingValueNotRead(t *testing.T) {
	// Three zeros fill the array; no value may be consumed after them.
	got := make([]float64, 5)
	values := &replay{[]int{9, 42}}
	if err := DecodeRLE(&replay{[]int{1, 3}}, values, got); err != nil {
		t.Fatalf("%+v", err)
	}
	if len(values.ints) != 1 {
		t.Errorf("%d values left, want 1", len(values.ints))
	}
	if want := []float64{0, 9, 0, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("%v != %v", got, want)
	}
}

func TestValueRange(t *testing.T) {
	var log []string
	err := EncodeRLE(&recorder{log: &log}, &recorder{log: &log}, []float64{1 << 40})
	if errors.Cause(err) != ErrValueRange {
		t.Fatalf("%v", err)
	}
}
