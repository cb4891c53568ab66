package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/guttosm/k4bridge/internal/export"
	"github.com/guttosm/k4bridge/internal/ingestion"
	"github.com/guttosm/k4bridge/internal/service"
)

// stdout is an indirection for unit testing.
var stdout io.Writer = os.Stdout

type summaryCmd struct {
	raw bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the K4 totals and a transaction preview" }
func (*summaryCmd) Usage() string {
	return `k4bridge summary [-raw] <file.csv>

  Prints the K4 box totals (3.3, 3.4, 3.5), a rough tax estimate and the
  first and last sell transactions of an export.
`
}

func (s *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&s.raw, "raw", false, "Print plain Markdown instead of rendering it for the terminal.")
}

func (s *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "summary: exactly one CSV file is required")
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)

	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer func() { _ = file.Close() }()

	conv, err := service.NewConversionService(nil, nil).Convert(ctx, filepath.Base(path), file)
	if errors.Is(err, ingestion.ErrNoSellTransactions) {
		fmt.Fprintln(os.Stderr, "No sell transactions found in this CSV file.")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	md, err := export.SummaryMarkdown(conv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if s.raw {
		fmt.Fprint(stdout, md)
		return subcommands.ExitSuccess
	}
	if err := printMarkdown(stdout, md); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal.
func printMarkdown(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
