package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/k4bridge/internal/domain/dto"
	"github.com/guttosm/k4bridge/internal/export"
	"github.com/guttosm/k4bridge/internal/report"
	"github.com/guttosm/k4bridge/internal/service"
	"github.com/guttosm/k4bridge/internal/session"
)

const exportCSV = `Action,Time,ISIN,Ticker,Name,No. of shares,Price / share,Currency (Price / share),Exchange rate,Result,Currency (Result),Total
Market buy,2023-01-05 10:00:00,US0378331005,AAPL,Apple,3,120,USD,0.09,,,-3240
Market sell,2023-03-15 10:30:00,US0378331005,AAPL,Apple,1,150,USD,0.1,14.25,SEK,150
Limit Sell,2023-04-20 11:00:00,US0378331005,AAPL,Apple,2,200,USD,0.1,38.00,SEK,400
`

// stubPDF stands in for the Chrome-backed exporter.
type stubPDF struct{ err error }

func (stubPDF) Format() export.Format { return export.FormatPDF }
func (stubPDF) ContentType() string   { return "application/pdf" }
func (s stubPDF) Export(_ context.Context, w io.Writer, _ report.Report) error {
	if s.err != nil {
		return s.err
	}
	_, err := w.Write([]byte("%PDF-1.4"))
	return err
}

func fixedNow() time.Time { return time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC) }

func newTestRouter(pdfErr error) (*gin.Engine, *session.Store) {
	gin.SetMode(gin.TestMode)
	store := session.NewStore(time.Minute, time.Minute)
	registry := export.NewRegistry(export.CSVExporter{}, export.XLSXExporter{}, stubPDF{err: pdfErr})
	h := NewHandler(service.NewConversionService(nil, fixedNow), store, registry)
	return NewRouter(h, RouterConfig{MaxUploadBytes: 1 << 20}), store
}

func multipartBody(t *testing.T, field, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, r *gin.Engine, field, filename, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, field, filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversions", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateConversion_TableDriven(t *testing.T) {
	cases := []struct {
		name        string
		field       string
		contentType string
		content     string
		want        int
	}{
		{name: "ok", field: "file", contentType: "text/csv", content: exportCSV, want: http.StatusCreated},
		{name: "octet stream accepted", field: "file", contentType: "application/octet-stream", content: exportCSV, want: http.StatusCreated},
		{name: "missing file field", field: "other", contentType: "text/csv", content: exportCSV, want: http.StatusBadRequest},
		{name: "declared image", field: "file", contentType: "image/png", content: exportCSV, want: http.StatusUnsupportedMediaType},
		{name: "png content", field: "file", contentType: "text/csv", content: "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR", want: http.StatusUnsupportedMediaType},
		{name: "no action column", field: "file", contentType: "text/csv", content: "Time,ISIN\n2024-01-01,SE0000000001\n", want: http.StatusBadRequest},
		{name: "no sells", field: "file", contentType: "text/csv", content: "Action,Time\nDeposit,2024-01-01 00:00:00\n", want: http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, store := newTestRouter(nil)
			w := upload(t, r, tc.field, "2024_export.csv", tc.contentType, tc.content)
			if w.Code != tc.want {
				t.Fatalf("want %d got %d body=%s", tc.want, w.Code, w.Body.String())
			}
			if tc.want != http.StatusCreated {
				var er dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Message == "" {
					t.Fatalf("expected error body, got %s", w.Body.String())
				}
				if store.Len() != 0 {
					t.Fatalf("failed upload must not be stored")
				}
				return
			}
			if store.Len() != 1 {
				t.Fatalf("store len=%d", store.Len())
			}
		})
	}
}

func TestCreateConversion_Response(t *testing.T) {
	r, _ := newTestRouter(nil)
	w := upload(t, r, "file", "2024_export.csv", "text/csv", exportCSV)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var resp dto.ConversionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if w.Header().Get("Location") != "/api/v1/conversions/"+resp.ID {
		t.Fatalf("location=%q id=%q", w.Header().Get("Location"), resp.ID)
	}
	if resp.TaxYear != "2024" || resp.SourceFilename != "2024_export.csv" {
		t.Fatalf("unexpected metadata: %+v", resp)
	}
	if resp.TransactionCount != 2 || resp.UniqueSecurityCount != 1 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if resp.Totals.Gains != "52.25" || resp.Totals.Losses != "0.00" || resp.Totals.Net != "52.25" || resp.Totals.TotalProceeds != "550.00" {
		t.Fatalf("unexpected totals: %+v", resp.Totals)
	}
	if len(resp.Preview) != 2 || resp.Preview[0].Instrument != "AAPL" || resp.Preview[0].Date != "15.03.2023" {
		t.Fatalf("unexpected preview: %+v", resp.Preview)
	}
	if !resp.ExpiresAt.After(resp.CreatedAt) {
		t.Fatalf("expires_at=%v created_at=%v", resp.ExpiresAt, resp.CreatedAt)
	}
	// 2 kinds x 3 formats
	if len(resp.Artifacts) != 6 {
		t.Fatalf("artifacts=%d", len(resp.Artifacts))
	}
	if resp.Artifacts[0].URL != "/api/v1/conversions/"+resp.ID+"/artifacts/k4/csv" || resp.Artifacts[0].Filename != "2024_K4_Statement.csv" {
		t.Fatalf("unexpected first artifact: %+v", resp.Artifacts[0])
	}
}

func TestCreateConversion_TooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := session.NewStore(time.Minute, time.Minute)
	h := NewHandler(service.NewConversionService(nil, fixedNow), store, export.NewRegistry(export.CSVExporter{}))
	r := NewRouter(h, RouterConfig{MaxUploadBytes: 64})

	w := upload(t, r, "file", "2024_export.csv", "text/csv", exportCSV)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func createConversion(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := upload(t, r, "file", "2024_export.csv", "text/csv", exportCSV)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	var resp dto.ConversionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	return resp.ID
}

func TestGetAndDeleteConversion(t *testing.T) {
	r, _ := newTestRouter(nil)
	id := createConversion(t, r)

	steps := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/conversions/" + id, http.StatusOK},
		{http.MethodGet, "/api/v1/conversions/unknown", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/conversions/" + id, http.StatusNoContent},
		{http.MethodGet, "/api/v1/conversions/" + id, http.StatusNotFound},
		{http.MethodDelete, "/api/v1/conversions/" + id, http.StatusNotFound},
	}
	for _, s := range steps {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(s.method, s.path, nil))
		if w.Code != s.want {
			t.Fatalf("%s %s: want %d got %d", s.method, s.path, s.want, w.Code)
		}
	}
}

func TestDownloadArtifact_TableDriven(t *testing.T) {
	cases := []struct {
		name        string
		pdfErr      error
		kind        string
		format      string
		unknownID   bool
		want        int
		wantType    string
		wantFile    string
		wantContain string
	}{
		{name: "k4 csv", kind: "k4", format: "csv", want: 200, wantType: "text/csv", wantFile: "2024_K4_Statement.csv", wantContain: "US0378331005"},
		{name: "statement csv", kind: "statement", format: "csv", want: 200, wantType: "text/csv", wantFile: "2024_statement.csv", wantContain: "AAPL"},
		{name: "k4 xlsx", kind: "k4", format: "xlsx", want: 200, wantType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", wantFile: "2024_K4_Statement.xlsx", wantContain: "PK"},
		{name: "k4 pdf", kind: "k4", format: "pdf", want: 200, wantType: "application/pdf", wantFile: "2024_K4_Bilaga_B.pdf", wantContain: "%PDF"},
		{name: "pdf renderer missing", pdfErr: export.ErrRendererUnavailable, kind: "k4", format: "pdf", want: 503},
		{name: "pdf failure", pdfErr: assertErr{}, kind: "k4", format: "pdf", want: 500},
		{name: "unknown kind", kind: "k5", format: "csv", want: 400},
		{name: "unknown format", kind: "k4", format: "docx", want: 400},
		{name: "unknown id", unknownID: true, kind: "k4", format: "csv", want: 404},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRouter(tc.pdfErr)
			id := createConversion(t, r)
			if tc.unknownID {
				id = "missing"
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversions/"+id+"/artifacts/"+tc.kind+"/"+tc.format, nil))
			if w.Code != tc.want {
				t.Fatalf("want %d got %d body=%s", tc.want, w.Code, w.Body.String())
			}
			if tc.want != 200 {
				return
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, tc.wantType) {
				t.Fatalf("content-type=%q", ct)
			}
			if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, tc.wantFile) {
				t.Fatalf("content-disposition=%q", cd)
			}
			if !strings.Contains(w.Body.String(), tc.wantContain) {
				t.Fatalf("body does not contain %q", tc.wantContain)
			}
		})
	}
}

func TestRouter_RateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := session.NewStore(time.Minute, time.Minute)
	h := NewHandler(service.NewConversionService(nil, fixedNow), store, export.NewRegistry(export.CSVExporter{}))
	r := NewRouter(h, RouterConfig{RateLimitPerMinute: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversions/none", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 404 || codes[1] != 404 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes: %v", codes)
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	r, _ := newTestRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversions/none", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}
