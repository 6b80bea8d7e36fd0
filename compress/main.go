package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fumin/sfrle"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	flagConfig = flag.String("c", `{
		"Runs": "adaptive",
		"Values": "adaptive",
		"SharedModel": false
		}`, "configuration")
	verbose = flag.Bool("verbose", false, "verbosity")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] filename...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A single file is compressed to stdout, several files each to filename.sf\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	cfg, err := sfrle.ParseConfig(*flagConfig)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	if flag.NArg() == 1 {
		if err := compress(os.Stdout, flag.Arg(0), cfg); err != nil {
			log.Fatalf("%+v", err)
		}
		return
	}
	if err := compressFiles(context.Background(), flag.Args(), cfg); err != nil {
		log.Fatalf("%+v", err)
	}
}

// compressFiles compresses every file to its own .sf file.
// Each file has its own bit channel and models, so files are processed concurrently.
func compressFiles(ctx context.Context, names []string, cfg sfrle.Config) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			f, err := os.Create(name + ".sf")
			if err != nil {
				return errors.Wrap(err, "")
			}
			if err := compress(f, name, cfg); err != nil {
				f.Close()
				os.Remove(f.Name())
				return errors.Wrap(err, name)
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "")
			}
			return nil
		})
	}
	return g.Wait()
}

func compress(w io.Writer, name string, cfg sfrle.Config) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()
	coeffs, err := sfrle.ReadValues(f)
	if err != nil {
		return errors.Wrap(err, name)
	}

	buf := bytes.NewBuffer(nil)
	if err := sfrle.Compress(buf, coeffs, cfg); err != nil {
		return errors.Wrap(err, name)
	}
	if *verbose {
		log.Printf("%s: %d coefficients, %d bytes, %.3f bits per coefficient", name, len(coeffs), buf.Len(), float64(8*buf.Len())/float64(len(coeffs)))
	}
	if _, err := buf.WriteTo(w); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
