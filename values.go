package sfrle

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// ReadValues parses whitespace separated numbers.
func ReadValues(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	values := make([]float64, 0, 1024)
	for scanner.Scan() {
		f, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", len(values))
		}
		values = append(values, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return values, nil
}

// WriteValues prints values one per line, rounded to integers.
func WriteValues(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 16)
	for _, f := range values {
		v, err := round(f)
		if err != nil {
			return err
		}
		buf = strconv.AppendInt(buf[:0], int64(v), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
