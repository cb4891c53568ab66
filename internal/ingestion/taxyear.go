package ingestion

import (
	"regexp"
	"strconv"
	"time"
)

var (
	filenameYear    = regexp.MustCompile(`202\d`)
	transactionYear = regexp.MustCompile(`(\d{4})-`)
)

// TaxYear resolves the reporting year of an export.
//
// Precedence:
//  1. The first "202x" token in the source filename.
//  2. The four-digit year of the first (oldest) transaction's raw timestamp.
//  3. The calendar year of now.
func TaxYear(filename, firstTime string, now time.Time) string {
	if y := filenameYear.FindString(filename); y != "" {
		return y
	}
	if m := transactionYear.FindStringSubmatch(firstTime); m != nil {
		return m[1]
	}
	return strconv.Itoa(now.Year())
}
