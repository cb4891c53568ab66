package models

import "github.com/shopspring/decimal"

// AggregateGroup is the per-security rollup of every sell transaction sharing an ISIN.
//
// Display fields (Ticker, Type, Currency) are taken from the first transaction
// seen for the ISIN. Totals are plain sums over all members.
type AggregateGroup struct {
	ISIN                 string
	Ticker               string
	Type                 InstrumentType
	Currency             string
	TotalQuantity        decimal.Decimal
	TotalProceeds        decimal.Decimal
	TotalAcquisitionCost decimal.Decimal
	TotalProfitLoss      decimal.Decimal
	TransactionCount     int
}

// Country returns the ISIN country prefix.
func (g AggregateGroup) Country() string { return countryCode(g.ISIN) }

// Security is the label used in the K4 "Värdepapper" column.
func (g AggregateGroup) Security() string { return securityLabel(g.Ticker, g.ISIN) }

// estimatedTaxRate is the flat Swedish capital income tax rate used for the preview estimate.
var estimatedTaxRate = decimal.RequireFromString("0.30")

// SummaryTotals holds the K4 box totals of one conversion.
//
// Gains and Losses are computed over individual transactions, not groups:
// a transaction with a zero result counts toward TransactionCount only.
type SummaryTotals struct {
	Gains                decimal.Decimal // Box 3.3, sum of positive results
	Losses               decimal.Decimal // Box 3.4, sum of negative results (<= 0)
	Net                  decimal.Decimal // Box 3.5, Gains + Losses
	TotalProceeds        decimal.Decimal
	TotalAcquisitionCost decimal.Decimal
	TransactionCount     int
	UniqueSecurityCount  int
}

// EstimatedTax returns a rough 30% estimate of the tax due on Net.
// It is negative when Net is a loss.
func (s SummaryTotals) EstimatedTax() decimal.Decimal {
	return s.Net.Mul(estimatedTaxRate)
}
