// Command multix assembles MULTIX source into RV64I machine code, grounded
// on the teacher's ie64asm main(): read a source file, assemble it, write
// the byte vector, optionally print a trace or hex dump. Flags and file I/O
// go through pflag and afero rather than os.Args/os.ReadFile, per
// wavesplatform-gowaves's cmd/wallet and known_peers.go conventions.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/multixspace/multixspace.github.io/assembler"
)

func main() {
	var (
		trace   bool
		hex     bool
		verbose bool
		outPath string
		origin  string
	)
	pflag.BoolVarP(&trace, "trace", "t", false, "print the assembly trace to stdout")
	pflag.BoolVarP(&hex, "hex", "x", false, "print a hex dump of the output to stdout")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "log compile timing and sizes to stderr")
	pflag.StringVarP(&outPath, "out", "o", "", "output path (defaults to the input path with its extension replaced by .bin)")
	pflag.StringVar(&origin, "origin", "", "expected entry-point origin (decimal or 0x-hex); compared against the source's own ':' line and a mismatch fails the run")
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: multix [-t] [-x] [-v] [-o out] [--origin addr] input.mx")
		os.Exit(1)
	}
	inputPath := pflag.Arg(0)

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	fs := afero.NewOsFs()
	if err := run(fs, inputPath, outPath, origin, trace, hex, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "multix: %v\n", err)
		os.Exit(1)
	}
}

// run performs one assemble-and-write cycle against fs, so tests can swap in
// an afero.MemMapFs instead of touching the real filesystem.
func run(fs afero.Fs, inputPath, outPath, expectOrigin string, trace, hex bool, stdout io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	start := time.Now()

	source, err := afero.ReadFile(fs, inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}
	logger.Info("read source", "path", inputPath, "bytes", len(source))

	c := assembler.NewCompiler()
	out, err := c.Compile(string(source))
	if err != nil {
		return fmt.Errorf("assembling %s: %w", inputPath, err)
	}
	logger.Info("compiled", "bytes", len(out), "instructions", c.Stats().Instructions,
		"labels", c.Stats().Labels, "maxDepth", c.Stats().MaxDepth, "elapsed", time.Since(start))

	if expectOrigin != "" {
		want, perr := strconv.ParseInt(expectOrigin, 0, 64)
		if perr != nil {
			return fmt.Errorf("parsing --origin %q: %w", expectOrigin, perr)
		}
		if uint32(want) != c.Stats().Origin {
			return fmt.Errorf("origin mismatch: source entry point is 0x%X, expected 0x%X", c.Stats().Origin, uint32(want))
		}
		logger.Info("origin matches", "origin", c.Stats().Origin)
	}

	if outPath == "" {
		ext := filepath.Ext(inputPath)
		outPath = strings.TrimSuffix(inputPath, ext) + ".bin"
	}
	if err := afero.WriteFile(fs, outPath, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	logger.Info("wrote output", "path", outPath)

	fmt.Fprintf(stdout, "assembled %s -> %s (%d bytes, %d instructions, %d labels)\n",
		inputPath, outPath, len(out), c.Stats().Instructions, c.Stats().Labels)

	if trace {
		fmt.Fprintln(stdout, "--- trace ---")
		for _, line := range c.Trace() {
			fmt.Fprintln(stdout, line)
		}
	}
	if hex {
		fmt.Fprintln(stdout, "--- hex ---")
		fmt.Fprintln(stdout, assembler.HexDump(out))
	}
	return nil
}
