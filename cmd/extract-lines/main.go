// Command extract-lines prints the numbered text lines of a document, the
// view vendor extractors are written against.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/pdftext"
)

func main() {
	_ = common.LoadDotEnv()
	cfg := common.LoadConfig()

	out := flag.String("out", "", "write the listing to this file instead of stdout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: extract-lines [--out FILE] <document.pdf|document.txt>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := common.WithTimeout(context.Background(), cfg.PDF.Timeout)
	defer cancel()

	// Stay quiet on stdout; the listing is the output.
	logger := slogToStderr(cfg.Log)
	lines, err := pdftext.FromConfig(cfg.PDF, logger).Lines(ctx, flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract-lines: %v\n", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "extract-lines: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	if err := writeNumbered(bw, lines); err != nil {
		fmt.Fprintf(os.Stderr, "extract-lines: %v\n", err)
		os.Exit(1)
	}
	if err := bw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "extract-lines: %v\n", err)
		os.Exit(1)
	}
}

func writeNumbered(w io.Writer, lines []string) error {
	for i, line := range lines {
		if _, err := fmt.Fprintf(w, "[%d] %s\n", i, line); err != nil {
			return err
		}
	}
	return nil
}
