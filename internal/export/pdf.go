package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/guttosm/k4bridge/internal/logger"
	"github.com/guttosm/k4bridge/internal/report"
)

// chromeCandidates are looked up on PATH when no explicit browser is configured.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

const defaultPDFTimeout = 30 * time.Second

// Indirections for unit testing.
var (
	lookPath = exec.LookPath
	printPDF = chromePrintPDF
)

// PDFExporter renders a report to Markdown, converts it to HTML and prints it
// with headless Chrome.
type PDFExporter struct {
	// ChromePath is the browser executable; empty means search chromeCandidates.
	ChromePath string
	// Timeout bounds a single render; zero means 30s.
	Timeout time.Duration
}

func (PDFExporter) Format() Format { return FormatPDF }

func (PDFExporter) ContentType() string { return "application/pdf" }

// Export writes the PDF.
//
// Returns an error wrapping ErrRendererUnavailable when no browser executable is found.
func (p PDFExporter) Export(ctx context.Context, w io.Writer, rep report.Report) error {
	execPath, err := p.resolveChrome()
	if err != nil {
		return err
	}

	doc, err := Markdown(rep)
	if err != nil {
		return err
	}
	body, err := markdownToHTML(doc)
	if err != nil {
		return err
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultPDFTimeout
	}

	start := time.Now()
	data, err := printPDF(ctx, execPath, wrapHTML(rep.Title, body), timeout)
	if err != nil {
		return fmt.Errorf("print pdf: %w", err)
	}
	logger.L().Debug().Str("kind", string(rep.Kind)).Int("bytes", len(data)).Dur("elapsed", time.Since(start)).Msg("pdf rendered")

	_, err = w.Write(data)
	return err
}

// Available reports whether a browser executable can be found.
func (p PDFExporter) Available() bool {
	_, err := p.resolveChrome()
	return err == nil
}

func (p PDFExporter) resolveChrome() (string, error) {
	if p.ChromePath != "" {
		path, err := lookPath(p.ChromePath)
		if err != nil {
			return "", fmt.Errorf("%w: chrome not found at %s: %v", ErrRendererUnavailable, p.ChromePath, err)
		}
		return path, nil
	}
	for _, name := range chromeCandidates {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no chrome or chromium executable on PATH (set CHROME_PATH)", ErrRendererUnavailable)
}

func markdownToHTML(doc string) (string, error) {
	var buf bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert([]byte(doc), &buf); err != nil {
		return "", fmt.Errorf("markdown to html: %w", err)
	}
	return buf.String(), nil
}

const pageStyle = `@page { size: A4 landscape; margin: 12mm; }
body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; font-size: 9pt; color: #202124; }
h1 { font-size: 16pt; margin: 0 0 8px; }
h2 { font-size: 12pt; margin: 18px 0 6px; page-break-after: avoid; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #d0d7de; padding: 3px 6px; }
th { background: #f6f8fa; }
tr { page-break-inside: avoid; }`

func wrapHTML(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title><style>%s</style></head>
<body>%s</body></html>`, html.EscapeString(title), pageStyle, body)
}

// chromePrintPDF loads the HTML into a blank page and prints it.
func chromePrintPDF(ctx context.Context, execPath, doc string, timeout time.Duration) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.ExecPath(execPath),
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
		)...,
	)
	defer cancel()

	chromedpCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	chromedpCtx, cancel = context.WithTimeout(chromedpCtx, timeout)
	defer cancel()

	var pdfData []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfData, nil
}
