package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pq "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ErrDuplicateConversion is returned when a conversion id was already logged.
var ErrDuplicateConversion = errors.New("conversion already logged")

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// ConversionLogEntry is the metadata recorded per conversion. It never carries
// transaction rows.
type ConversionLogEntry struct {
	ID                  string
	Filename            string
	TaxYear             string
	TransactionCount    int
	UniqueSecurityCount int
	NetResult           decimal.Decimal
	ConvertedAt         time.Time
}

// ConversionLog defines contract for the conversion audit log.
type ConversionLog interface {
	RecordConversion(ctx context.Context, entry ConversionLogEntry) error
	CountByTaxYear(ctx context.Context, taxYear string) (int, error)
	Ping() error
}

type conversionLogRepository struct {
	db *sql.DB
}

// NewConversionLogRepository returns a Postgres-backed ConversionLog.
func NewConversionLogRepository(db *sql.DB) ConversionLog {
	return &conversionLogRepository{db: db}
}

// RecordConversion inserts one audit entry.
func (r *conversionLogRepository) RecordConversion(ctx context.Context, entry ConversionLogEntry) error {
	convertedAt := entry.ConvertedAt
	if convertedAt.IsZero() {
		convertedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversion_log (
			id, filename, tax_year, transaction_count,
			unique_security_count, net_result, converted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		entry.ID,
		entry.Filename,
		entry.TaxYear,
		entry.TransactionCount,
		entry.UniqueSecurityCount,
		entry.NetResult.StringFixed(2),
		convertedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateConversion, entry.ID)
		}
		return err
	}
	return nil
}

// CountByTaxYear returns how many conversions were logged for a tax year.
func (r *conversionLogRepository) CountByTaxYear(ctx context.Context, taxYear string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversion_log WHERE tax_year = $1`, taxYear).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Ping checks database connectivity for readiness probes.
func (r *conversionLogRepository) Ping() error {
	return r.db.Ping()
}

// NopConversionLog is used when the conversion log is disabled.
type NopConversionLog struct{}

func (NopConversionLog) RecordConversion(context.Context, ConversionLogEntry) error { return nil }
func (NopConversionLog) CountByTaxYear(context.Context, string) (int, error)        { return 0, nil }
func (NopConversionLog) Ping() error                                                { return nil }
