package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"github.com/guttosm/k4bridge/config"
	"github.com/guttosm/k4bridge/internal/app"
	"github.com/guttosm/k4bridge/internal/export"
	"github.com/guttosm/k4bridge/internal/ingestion"
	"github.com/guttosm/k4bridge/internal/logger"
	"github.com/guttosm/k4bridge/internal/report"
	"github.com/guttosm/k4bridge/internal/service"
	"github.com/guttosm/k4bridge/internal/storage"
)

type convertCmd struct {
	out      string
	formats  string
	kinds    string
	parallel int
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert Trading 212 exports into K4 artifacts" }
func (*convertCmd) Usage() string {
	return `k4bridge convert [-out <dir>] [-formats xlsx,csv,pdf] [-kinds k4,statement] [-parallel <n>] <file.csv>...

  Converts each export and writes one file per kind and format. With more
  than one input, each export gets its own sub-directory of -out named after
  the input file. PDF output needs Chrome or Chromium (CHROME_PATH); when it
  is missing the PDF is skipped with a warning.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", config.AppConfig.Output.Dir, "Output directory (defaults to OUTPUT_DIR).")
	f.StringVar(&c.formats, "formats", "xlsx,csv,pdf", "Comma separated output formats.")
	f.StringVar(&c.kinds, "kinds", "k4,statement", "Comma separated artifact kinds.")
	f.IntVar(&c.parallel, "parallel", 0, "How many files to convert concurrently (0=auto up to CPU, max 8).")
}

func (c *convertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	paths := f.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "convert: at least one CSV file is required")
		return subcommands.ExitUsageError
	}

	formats, err := parseList(c.formats, export.ParseFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	kinds, err := parseList(c.kinds, report.ParseKind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	convLog, closeLog, err := openConversionLog(config.AppConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeLog()

	w := &artifactWriter{
		svc:       service.NewConversionService(convLog, nil),
		exporters: app.NewExporterRegistry(config.AppConfig),
		formats:   formats,
		kinds:     kinds,
		out:       c.out,
		perFile:   len(paths) > 1,
	}

	err = ingestion.ConvertFiles(ctx, paths, c.parallel, w.convertFile)
	if errors.Is(err, ingestion.ErrNoSellTransactions) {
		fmt.Fprintf(os.Stderr, "No sell transactions found: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// artifactWriter converts one export and writes every requested artifact.
type artifactWriter struct {
	svc       service.ConversionService
	exporters *export.Registry
	formats   []export.Format
	kinds     []report.Kind
	out       string
	perFile   bool
}

func (w *artifactWriter) convertFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	conv, err := w.svc.Convert(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}

	dir := w.out
	if w.perFile {
		dir = filepath.Join(w.out, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	log := logger.With("convert")
	for _, kind := range w.kinds {
		rep, err := report.Build(kind, conv)
		if err != nil {
			return err
		}
		for _, format := range w.formats {
			exporter, ok := w.exporters.Get(format)
			if !ok {
				return fmt.Errorf("no exporter for %s", format)
			}

			var buf bytes.Buffer
			if err := exporter.Export(ctx, &buf, rep); err != nil {
				if errors.Is(err, export.ErrRendererUnavailable) {
					log.Warn().Err(err).Str("kind", string(kind)).Msg("skipping pdf")
					continue
				}
				return fmt.Errorf("export %s %s: %w", kind, format, err)
			}

			target := filepath.Join(dir, export.Filename(kind, format, conv.TaxYear))
			if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			log.Info().Str("file", target).Int("bytes", buf.Len()).Msg("artifact written")
		}
	}
	return nil
}

// openConversionLog returns the Postgres conversion log when enabled and a no-op log otherwise.
func openConversionLog(cfg config.Config) (storage.ConversionLog, func(), error) {
	if !cfg.ConversionLog.Enabled {
		return storage.NopConversionLog{}, func() {}, nil
	}
	db, err := app.InitPostgres(cfg)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewConversionLogRepository(db), func() { _ = db.Close() }, nil
}

// parseList splits a comma separated flag value and parses each element, dropping duplicates.
func parseList[T comparable](s string, parse func(string) (T, error)) ([]T, error) {
	var out []T
	seen := make(map[T]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := parse(part)
		if err != nil {
			return nil, err
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return out, nil
}
