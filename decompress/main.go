package main

import (
	"bufio"
	"flag"
	"log"
	"os"

	"github.com/fumin/sfrle"
)

var verbose = flag.Bool("verbose", false, "verbosity")

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	coeffs, err := sfrle.Decompress(bufio.NewReader(os.Stdin))
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if *verbose {
		log.Printf("%d coefficients", len(coeffs))
	}
	if err := sfrle.WriteValues(os.Stdout, coeffs); err != nil {
		log.Fatalf("%+v", err)
	}
}
