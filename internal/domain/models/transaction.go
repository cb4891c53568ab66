package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentType is the coarse classification reported in the K4 "Typ" column.
type InstrumentType string

const (
	InstrumentStock InstrumentType = "Stock"
	InstrumentETF   InstrumentType = "ETF"
)

// DefaultResultCurrency is used when the export leaves "Currency (Result)" empty.
const DefaultResultCurrency = "SEK"

// SellTransaction represents one disposal row of a Trading 212 export,
// already normalized at the parse boundary.
//
// Fields:
//   - Time: raw timestamp string as exported (kept for tax-year extraction).
//   - Timestamp / TimeValid: parsed execution time; TimeValid is false when Time could not be parsed.
//   - ISIN: security identifier, the aggregation key.
//   - Ticker, Name: display strings.
//   - Type: Stock or ETF, derived from Name.
//   - PriceCurrency: currency of PricePerShare ("Currency (Price / share)").
//   - Quantity, PricePerShare, FXRate: zero when the source cell was not a number.
//   - TotalSEK: settlement total in SEK.
//   - Result: realized profit/loss in SEK (signed).
//   - ResultCurrency: currency of Result, "SEK" when absent.
type SellTransaction struct {
	Time           string
	Timestamp      time.Time
	TimeValid      bool
	ISIN           string
	Ticker         string
	Name           string
	Type           InstrumentType
	PriceCurrency  string
	Quantity       decimal.Decimal
	PricePerShare  decimal.Decimal
	FXRate         decimal.Decimal
	TotalSEK       decimal.Decimal
	Result         decimal.Decimal
	ResultCurrency string
}

// AcquisitionCost is the K4 "omkostnadsbelopp": quantity × price × fx rate, unrounded.
func (t SellTransaction) AcquisitionCost() decimal.Decimal {
	return t.Quantity.Mul(t.PricePerShare).Mul(t.FXRate)
}

// CountryCode returns the ISIN country prefix (first two characters).
func (t SellTransaction) CountryCode() string {
	return countryCode(t.ISIN)
}

// Security is the label used in the K4 "Värdepapper" column.
func (t SellTransaction) Security() string {
	return securityLabel(t.Ticker, t.ISIN)
}

func countryCode(isin string) string {
	r := []rune(isin)
	if len(r) < 2 {
		return isin
	}
	return string(r[:2])
}

func securityLabel(ticker, isin string) string {
	return fmt.Sprintf("%s (%s)", ticker, isin)
}
