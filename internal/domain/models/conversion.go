package models

import "time"

// Conversion is the result of running one uploaded export through the pipeline.
// It is created once per upload and never mutated afterwards; report formatters
// and exporters only read from it.
type Conversion struct {
	ID             string
	SourceFilename string
	TaxYear        string
	CreatedAt      time.Time
	Transactions   []SellTransaction
	Groups         []AggregateGroup
	Totals         SummaryTotals
}
