// Package main converts an entities file to the YAML world format.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/stag/internal/importer"
)

func main() {
	source := flag.String("source", "", "path to the entities file (.dot, .gv, .yaml or .yml)")
	output := flag.String("output", "", "path to the YAML world to write")
	flag.Parse()

	if *source == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: stagconvert -source <file> -output <file.yaml>")
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	start := time.Now()
	if err := importer.New(logger).Run(*source, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("conversion complete in %s\n", time.Since(start).Round(time.Millisecond))
}
