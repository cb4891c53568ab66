package report

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// sekFormatter renders SEK the Swedish way: "1 234,56 kr".
var sekFormatter = money.NewFormatter(2, ",", " ", "kr", "1 $")

// FormatSEK formats an amount as Swedish kronor rounded to öre.
func FormatSEK(d decimal.Decimal) string {
	m := money.New(d.Round(2).Shift(2).IntPart(), money.SEK)
	return sekFormatter.Format(m.Amount())
}

func formatDateISO(t time.Time, valid bool) string {
	if !valid {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDate(t time.Time, valid bool) string {
	if !valid {
		return ""
	}
	return t.Format("02.01.2006")
}

func formatDateTime(t time.Time, valid bool) string {
	if !valid {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}
