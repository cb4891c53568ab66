package ingestion

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/guttosm/k4bridge/internal/domain/models"
)

func sellRow(line int, action, when, isin, name string) Row {
	return NewRow(line, map[string]string{
		ColAction: action,
		ColTime:   when,
		ColISIN:   isin,
		ColTicker: "T" + isin,
		ColName:   name,
	})
}

func TestIsSell(t *testing.T) {
	cases := map[string]bool{
		"Market sell":         true,
		"Limit sell":          true,
		"Stop sell":           true,
		"MARKET SELL":         true,
		"Market buy":          false,
		"Deposit":             false,
		"Dividend (Ordinary)": false,
		"":                    false,
	}
	for action, want := range cases {
		r := NewRow(2, map[string]string{ColAction: action})
		if got := IsSell(r); got != want {
			t.Fatalf("IsSell(%q)=%v want %v", action, got, want)
		}
	}
}

func TestDetermineType(t *testing.T) {
	cases := []struct {
		name string
		want models.InstrumentType
	}{
		{"Apple", models.InstrumentStock},
		{"iShares Core S&P 500", models.InstrumentETF},
		{"Vanguard FTSE All-World", models.InstrumentETF},
		{"PIMCO Short Maturity", models.InstrumentETF},
		{"Invesco QQQ ETF", models.InstrumentETF},
		{"", models.InstrumentStock},
	}
	for _, tc := range cases {
		if got := DetermineType(tc.name); got != tc.want {
			t.Fatalf("DetermineType(%q)=%s want %s", tc.name, got, tc.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.5", "12.5"},
		{"12.5 USD", "12.5"},
		{"+3", "3"},
		{"-0.5", "-0.5"},
		{".5", "0.5"},
		{"5.", "5"},
		{"1.e2", "100"},
		{"1,234.56", "1"},
		{"abc", "0"},
		{"", "0"},
		{"1e30", "1000000000000000000000000000000"},
		{"1e999999999", "0"},
		{"-2.5E-999999999", "0"},
		{"1e99999999999", "0"},
		{"0.12345678901234567890123456789012345", "0.12345678901234567890123456789012"},
		{"1e-40", "0"},
	}
	for _, tc := range cases {
		got := parseDecimal(tc.in)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("parseDecimal(%q)=%s want %s", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_FieldMapping(t *testing.T) {
	r := NewRow(2, map[string]string{
		ColAction:        "Market sell",
		ColTime:          "2024-03-15 10:30:00",
		ColISIN:          "US0378331005",
		ColTicker:        "AAPL",
		ColName:          "Apple",
		ColShares:        "2",
		ColPricePerShare: "180",
		ColPriceCurrency: "USD",
		ColExchangeRate:  "0.095",
		ColResult:        "52.25",
		ColTotal:         "3789.47",
	})

	txs, err := Normalize([]Row{r})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tx := txs[0]
	if !tx.TimeValid || tx.Timestamp.Year() != 2024 || tx.Timestamp.Month() != 3 {
		t.Fatalf("time not parsed: %+v", tx)
	}
	if tx.Type != models.InstrumentStock || tx.PriceCurrency != "USD" {
		t.Fatalf("unexpected type/currency: %+v", tx)
	}
	if tx.ResultCurrency != "SEK" {
		t.Fatalf("result currency should default to SEK, got %q", tx.ResultCurrency)
	}
	if !tx.Result.Equal(decimal.RequireFromString("52.25")) || !tx.TotalSEK.Equal(decimal.RequireFromString("3789.47")) {
		t.Fatalf("unexpected amounts: %+v", tx)
	}
	if !tx.AcquisitionCost().Equal(decimal.RequireFromString("34.2")) {
		t.Fatalf("acquisition cost=%s want 34.2", tx.AcquisitionCost())
	}
	if tx.CountryCode() != "US" || tx.Security() != "AAPL (US0378331005)" {
		t.Fatalf("unexpected labels: %s %s", tx.CountryCode(), tx.Security())
	}
}

func TestNormalize_FiltersAndSorts(t *testing.T) {
	rows := []Row{
		sellRow(2, "Market sell", "garbage", "A", "a"),
		sellRow(3, "Market buy", "2023-01-01 00:00:00", "X", "x"),
		sellRow(4, "Limit sell", "2024-05-01 12:00:00", "B", "b"),
		sellRow(5, "Market sell", "2024-01-10 09:00:00", "C", "c"),
		sellRow(6, "Deposit", "2024-01-01 00:00:00", "Y", "y"),
		sellRow(7, "Stop sell", "", "D", "d"),
	}

	txs, err := Normalize(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"C", "B", "A", "D"}
	if len(txs) != len(want) {
		t.Fatalf("got %d sells want %d", len(txs), len(want))
	}
	for i, isin := range want {
		if txs[i].ISIN != isin {
			t.Fatalf("position %d: got %s want %s", i, txs[i].ISIN, isin)
		}
	}
	if txs[2].TimeValid || txs[3].TimeValid {
		t.Fatalf("invalid times must stay invalid")
	}
}

func TestNormalize_BadNumbersBecomeZero(t *testing.T) {
	r := NewRow(2, map[string]string{
		ColAction:        "Market sell",
		ColShares:        "n/a",
		ColPricePerShare: "",
		ColExchangeRate:  "x",
		ColResult:        "-",
	})
	txs, err := Normalize([]Row{r})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tx := txs[0]
	for name, d := range map[string]decimal.Decimal{
		"quantity": tx.Quantity, "price": tx.PricePerShare, "fx": tx.FXRate, "result": tx.Result,
	} {
		if !d.IsZero() {
			t.Fatalf("%s should be zero, got %s", name, d)
		}
	}
}

func TestNormalize_NoSells(t *testing.T) {
	cases := [][]Row{
		nil,
		{sellRow(2, "Market buy", "", "A", "a"), sellRow(3, "Deposit", "", "", "")},
	}
	for _, rows := range cases {
		if _, err := Normalize(rows); !errors.Is(err, ErrNoSellTransactions) {
			t.Fatalf("expected ErrNoSellTransactions, got %v", err)
		}
	}
}
