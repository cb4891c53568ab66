package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/guttosm/k4bridge/internal/domain/models"
	"github.com/guttosm/k4bridge/internal/ingestion"
	"github.com/guttosm/k4bridge/internal/logger"
	"github.com/guttosm/k4bridge/internal/storage"
)

// ConversionService runs an uploaded export through the K4 pipeline.
type ConversionService interface {
	Convert(ctx context.Context, filename string, r io.Reader) (*models.Conversion, error)
}

type conversionService struct {
	log storage.ConversionLog
	now func() time.Time
}

// NewConversionService builds a ConversionService.
//
// Parameters:
//   - log: audit log for conversion metadata; nil means storage.NopConversionLog.
//   - now: clock used for CreatedAt and the tax-year fallback; nil means time.Now.
func NewConversionService(log storage.ConversionLog, now func() time.Time) ConversionService {
	if log == nil {
		log = storage.NopConversionLog{}
	}
	if now == nil {
		now = time.Now
	}
	return &conversionService{log: log, now: now}
}

// Convert reads, filters, normalizes and aggregates one export.
//
// Behavior:
//   - The pipeline is linear and single-threaded: ReadRows → Normalize → Aggregate.
//   - The returned Conversion is fresh for every call and never shared.
//   - A failure to write the audit log is logged and does not fail the conversion.
//
// Returns:
//   - error wrapping ingestion.ErrMalformedInput when the file cannot be read as an export.
//   - error wrapping ingestion.ErrNoSellTransactions when the export holds no sells.
func (s *conversionService) Convert(ctx context.Context, filename string, r io.Reader) (*models.Conversion, error) {
	rows, err := ingestion.ReadRows(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	txs, err := ingestion.Normalize(rows)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", filename, err)
	}

	groups, totals := Aggregate(txs)
	now := s.now()

	conv := &models.Conversion{
		ID:             uuid.NewString(),
		SourceFilename: filename,
		TaxYear:        ingestion.TaxYear(filename, txs[0].Time, now),
		CreatedAt:      now.UTC(),
		Transactions:   txs,
		Groups:         groups,
		Totals:         totals,
	}

	entry := storage.ConversionLogEntry{
		ID:                  conv.ID,
		Filename:            conv.SourceFilename,
		TaxYear:             conv.TaxYear,
		TransactionCount:    totals.TransactionCount,
		UniqueSecurityCount: totals.UniqueSecurityCount,
		NetResult:           totals.Net,
		ConvertedAt:         conv.CreatedAt,
	}
	if err := s.log.RecordConversion(ctx, entry); err != nil {
		logger.L().Warn().Err(err).Str("conversion_id", conv.ID).Msg("conversion log write failed")
	}

	logger.L().Info().
		Str("conversion_id", conv.ID).
		Str("file", filename).
		Str("tax_year", conv.TaxYear).
		Int("transactions", totals.TransactionCount).
		Int("securities", totals.UniqueSecurityCount).
		Msg("conversion done")

	return conv, nil
}
