package ingestion

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/k4bridge/internal/domain/models"
	"github.com/guttosm/k4bridge/internal/logger"
)

// etfKeywords classify an instrument as ETF when found (case-insensitively) in its name.
var etfKeywords = []string{"etf", "ishares", "vanguard", "pimco"}

// timeLayouts are tried in order when parsing the "Time" column.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// numberPrefix matches the longest leading decimal literal of a cell, so that
// "12.5 USD" reads as 12.5 and "n/a" reads as nothing.
var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// Scale bounds for a parsed cell. Exponents above maxDecimalExponent or below
// -maxFractionScan ("1e999999999", "1e-999999999") are treated as unparseable
// and read as zero; longer fractions are rounded to maxDecimalExponent places.
const (
	maxDecimalExponent = 32
	maxFractionScan    = 1024
)

// IsSell reports whether the row's action is any sell variant
// ("Market sell", "Limit sell", "Stop sell", ...).
func IsSell(r Row) bool {
	action := r.Get(ColAction)
	return action != "" && strings.Contains(strings.ToLower(action), "sell")
}

// DetermineType classifies an instrument from its name. This is a heuristic:
// no instrument registry is consulted, anything not matching etfKeywords is a Stock.
func DetermineType(name string) models.InstrumentType {
	lower := strings.ToLower(name)
	for _, kw := range etfKeywords {
		if strings.Contains(lower, kw) {
			return models.InstrumentETF
		}
	}
	return models.InstrumentStock
}

// Normalize keeps the sell rows and maps each one to a SellTransaction.
//
// Behavior:
//   - Numeric cells that do not parse become zero; no row is rejected for bad numbers.
//   - Missing string cells become "", except ResultCurrency which defaults to "SEK".
//   - The result is sorted by execution time, oldest first. Rows whose time could
//     not be parsed keep their input order and sort after every dated row.
//
// Returns ErrNoSellTransactions when no row is a sell.
func Normalize(rows []Row) ([]models.SellTransaction, error) {
	txs := make([]models.SellTransaction, 0, len(rows))
	for _, r := range rows {
		if !IsSell(r) {
			continue
		}
		txs = append(txs, toSellTransaction(r))
	}

	if len(txs) == 0 {
		return nil, fmt.Errorf("%w (scanned %d rows)", ErrNoSellTransactions, len(rows))
	}

	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if a.TimeValid && b.TimeValid {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.TimeValid && !b.TimeValid
	})

	logger.L().Debug().Int("rows", len(rows)).Int("sells", len(txs)).Msg("rows normalized")
	return txs, nil
}

func toSellTransaction(r Row) models.SellTransaction {
	raw := r.Get(ColTime)
	ts, ok := parseTime(raw)

	resultCurrency := r.Get(ColResultCurrency)
	if resultCurrency == "" {
		resultCurrency = models.DefaultResultCurrency
	}

	return models.SellTransaction{
		Time:           raw,
		Timestamp:      ts,
		TimeValid:      ok,
		ISIN:           r.Get(ColISIN),
		Ticker:         r.Get(ColTicker),
		Name:           r.Get(ColName),
		Type:           DetermineType(r.Get(ColName)),
		PriceCurrency:  r.Get(ColPriceCurrency),
		Quantity:       parseDecimal(r.Get(ColShares)),
		PricePerShare:  parseDecimal(r.Get(ColPricePerShare)),
		FXRate:         parseDecimal(r.Get(ColExchangeRate)),
		TotalSEK:       parseDecimal(r.Get(ColTotal)),
		Result:         parseDecimal(r.Get(ColResult)),
		ResultCurrency: resultCurrency,
	}
}

// parseDecimal reads the leading number of s, returning zero when there is none.
func parseDecimal(s string) decimal.Decimal {
	m := numberPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero
	}
	m = strings.TrimPrefix(m, "+")
	m = strings.Replace(m, ".e", "e", 1)
	m = strings.Replace(m, ".E", "E", 1)
	m = strings.TrimSuffix(m, ".")
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	exp := d.Exponent()
	if exp > maxDecimalExponent || exp < -maxFractionScan {
		return decimal.Zero
	}
	if exp < -maxDecimalExponent {
		return d.Round(maxDecimalExponent)
	}
	return d
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
