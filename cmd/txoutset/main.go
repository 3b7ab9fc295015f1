// Package main implements the txoutset command line tool. It verifies,
// dumps, converts and compares UTXO set snapshot files without needing a
// running node or any network access.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bsv-blockchain/txoutset/errors"
	"github.com/bsv-blockchain/txoutset/ulogger"
	"github.com/bsv-blockchain/txoutset/utxoset"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Exit codes: 0 verified or identical, 1 malformed input or processing
// error, 2 snapshots decoded cleanly but differ.
const (
	exitError  = 1
	exitDiffer = 2
)

var logger = ulogger.New("txoutset")

func main() {
	app := &cli.App{
		Name:  "txoutset",
		Usage: "Verify, dump, convert and compare UTXO set snapshot files",
		Commands: []*cli.Command{
			{
				Name:      "verify",
				Usage:     "Check the structural integrity of a snapshot file",
				ArgsUsage: "<file>",
				Action:    verifyAction,
			},
			{
				Name:      "diff",
				Usage:     "Compare the contents of two snapshot files",
				ArgsUsage: "<left> <right>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum number of mismatches to print per list, 0 for all",
						Value: 20,
					},
				},
				Action: diffAction,
			},
			{
				Name:      "dump",
				Usage:     "Print the records of a snapshot file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum number of records to print, 0 for all",
						Value: 0,
					},
				},
				Action: dumpAction,
			},
			{
				Name:      "convert",
				Usage:     "Rewrite a snapshot file in another format version",
				ArgsUsage: "<in> <out>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "format",
						Usage:    "target format: legacy or current",
						Required: true,
					},
				},
				Action: convertAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openSnapshot(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewNotFoundError("cannot open %s", path, err)
	}

	return bufio.NewReaderSize(f, 1024*1024), f.Close, nil
}

func verifyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("verify expects exactly one file", exitError)
	}

	r, closer, err := openSnapshot(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	defer func() { _ = closer() }()

	result, err := utxoset.Verify(c.Context, logger, r)
	if err != nil {
		return cli.Exit(fmt.Sprintf("verification failed: %v", err), exitError)
	}

	p := message.NewPrinter(language.English)

	p.Printf("format:       %s\n", result.Header.Version)
	p.Printf("block hash:   %s\n", result.Header.BlockHash.String())
	p.Printf("block height: %d\n", result.Header.Height)
	p.Printf("record count: %d\n", result.Records)
	p.Printf("utxo count:   %d\n", result.UTXOs)
	p.Printf("OK\n")

	return nil
}

func diffAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("diff expects exactly two files", exitError)
	}

	var left, right *utxoset.UTXOSet

	g, ctx := errgroup.WithContext(c.Context)

	load := func(path string, dst **utxoset.UTXOSet) func() error {
		return func() error {
			r, closer, err := openSnapshot(path)
			if err != nil {
				return err
			}
			defer func() { _ = closer() }()

			us, err := utxoset.Load(ctx, logger, r)
			if err != nil {
				return errors.NewProcessingError("failed to decode %s", path, err)
			}

			*dst = us

			return nil
		}
	}

	g.Go(load(c.Args().Get(0), &left))
	g.Go(load(c.Args().Get(1), &right))

	if err := g.Wait(); err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	result := utxoset.Diff(left, right)

	p := message.NewPrinter(language.English)

	if result.Identical {
		p.Printf("snapshots are identical: %d utxo(s)\n", left.Length())

		return nil
	}

	limit := c.Int("limit")

	printEntries(p, "only in left", result.OnlyLeft, limit)
	printEntries(p, "only in right", result.OnlyRight, limit)
	printDiffering(p, result.Differing, limit)

	return cli.Exit(result.Summary(), exitDiffer)
}

func printEntries(p *message.Printer, label string, entries []utxoset.Entry, limit int) {
	if len(entries) == 0 {
		return
	}

	p.Printf("%s: %d\n", label, len(entries))

	for i, entry := range entries {
		if limit > 0 && i == limit {
			p.Printf("  ... %d more\n", len(entries)-limit)
			return
		}

		p.Printf("  %s %s\n", entry.Outpoint, entry.UTXO)
	}
}

func printDiffering(p *message.Printer, entries []utxoset.DifferingEntry, limit int) {
	if len(entries) == 0 {
		return
	}

	p.Printf("differing: %d\n", len(entries))

	for i, entry := range entries {
		if limit > 0 && i == limit {
			p.Printf("  ... %d more\n", len(entries)-limit)
			return
		}

		p.Printf("  %s\n", entry.Outpoint)
		p.Printf("    left:  %s\n", entry.Left)
		p.Printf("    right: %s\n", entry.Right)
	}
}

func dumpAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("dump expects exactly one file", exitError)
	}

	r, closer, err := openSnapshot(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	defer func() { _ = closer() }()

	rd, err := utxoset.NewReader(r)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	p := message.NewPrinter(language.English)
	p.Printf("%s\n", rd.Header())

	limit := c.Int("limit")
	printed := 0

	for {
		outpoint, utxo, err := rd.Next(c.Context)
		if err == io.EOF {
			break
		}

		if err != nil {
			return cli.Exit(err.Error(), exitError)
		}

		if limit == 0 || printed < limit {
			p.Printf("%s %s\n", outpoint, utxo)
			printed++
		}
	}

	p.Printf("%d record(s), %d utxo(s)\n", rd.RecordCount(), rd.UTXOCount())

	return nil
}

func convertAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("convert expects an input and an output file", exitError)
	}

	var version utxoset.Version

	switch c.String("format") {
	case "legacy":
		version = utxoset.VersionLegacy
	case "current":
		version = utxoset.VersionCurrent
	default:
		return cli.Exit("format must be legacy or current", exitError)
	}

	r, closer, err := openSnapshot(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	defer func() { _ = closer() }()

	us, err := utxoset.Load(c.Context, logger, r)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to decode %s: %v", c.Args().Get(0), err), exitError)
	}

	out, err := os.Create(c.Args().Get(1))
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot create %s: %v", c.Args().Get(1), err), exitError)
	}

	w := bufio.NewWriterSize(out, 1024*1024)

	if err := us.WriteTo(w, version); err != nil {
		_ = out.Close()
		return cli.Exit(fmt.Sprintf("failed to write %s: %v", c.Args().Get(1), err), exitError)
	}

	if err := w.Flush(); err != nil {
		_ = out.Close()
		return cli.Exit(fmt.Sprintf("failed to write %s: %v", c.Args().Get(1), err), exitError)
	}

	if err := out.Close(); err != nil {
		return cli.Exit(fmt.Sprintf("failed to close %s: %v", c.Args().Get(1), err), exitError)
	}

	logger.Infof("converted %s to %s (%s, %d utxos)", c.Args().Get(0), c.Args().Get(1), version, us.Length())

	return nil
}
