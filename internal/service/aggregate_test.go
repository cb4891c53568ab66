package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/guttosm/k4bridge/internal/domain/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(isin, qty, total, result string) models.SellTransaction {
	return models.SellTransaction{
		ISIN:          isin,
		Ticker:        "T-" + isin,
		Type:          models.InstrumentStock,
		PriceCurrency: "USD",
		Quantity:      d(qty),
		PricePerShare: d("10"),
		FXRate:        d("1.5"),
		TotalSEK:      d(total),
		Result:        d(result),
	}
}

func TestAggregate_SameISINScenario(t *testing.T) {
	txs := []models.SellTransaction{
		tx("US0378331005", "1", "150", "14.25"),
		tx("US0378331005", "2", "400", "38.00"),
	}

	groups, totals := Aggregate(txs)

	if len(groups) != 1 {
		t.Fatalf("groups=%d want 1", len(groups))
	}
	g := groups[0]
	if !g.TotalQuantity.Equal(d("3")) || !g.TotalProfitLoss.Equal(d("52.25")) || g.TransactionCount != 2 {
		t.Fatalf("unexpected group: %+v", g)
	}
	if !g.TotalProceeds.Equal(d("550")) || !g.TotalAcquisitionCost.Equal(d("45")) {
		t.Fatalf("unexpected group totals: %+v", g)
	}
	if !totals.Gains.Equal(d("52.25")) || !totals.Losses.IsZero() || !totals.Net.Equal(d("52.25")) {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	if totals.TransactionCount != 2 || totals.UniqueSecurityCount != 1 {
		t.Fatalf("unexpected counts: %+v", totals)
	}
}

func TestAggregate_OrderingAndSigns(t *testing.T) {
	txs := []models.SellTransaction{
		tx("SE0000000003", "1", "100", "-20"),
		tx("SE0000000002", "1", "100", "5"),
		tx("SE0000000001", "1", "100", "5"),
		tx("SE0000000004", "1", "100", "0"),
		tx("SE0000000003", "1", "100", "30"),
	}

	groups, totals := Aggregate(txs)

	wantOrder := []string{"SE0000000003", "SE0000000001", "SE0000000002", "SE0000000004"}
	for i, isin := range wantOrder {
		if groups[i].ISIN != isin {
			t.Fatalf("position %d: got %s want %s", i, groups[i].ISIN, isin)
		}
	}

	// SE..3 nets to +10 but contributes both a gain and a loss.
	if !totals.Gains.Equal(d("40")) || !totals.Losses.Equal(d("-20")) || !totals.Net.Equal(d("20")) {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	if totals.TransactionCount != 5 || totals.UniqueSecurityCount != 4 {
		t.Fatalf("zero-result transaction must still count: %+v", totals)
	}
}

func TestAggregate_Invariants(t *testing.T) {
	txs := []models.SellTransaction{
		tx("A", "3", "300.10", "12.345"),
		tx("B", "0.5", "50.55", "-7.1"),
		tx("A", "1", "99.99", "-0.005"),
		tx("C", "7", "700", "0.3333"),
	}

	groups, totals := Aggregate(txs)

	sum := decimal.Zero
	count := 0
	for _, g := range groups {
		sum = sum.Add(g.TotalProfitLoss)
		count += g.TransactionCount
	}
	if !sum.Equal(totals.Net) {
		t.Fatalf("sum of group P/L %s != net %s", sum, totals.Net)
	}
	if !totals.Net.Equal(totals.Gains.Add(totals.Losses)) {
		t.Fatalf("net != gains + losses")
	}
	if count != len(txs) {
		t.Fatalf("group counts %d != transactions %d", count, len(txs))
	}
	if totals.Losses.Sign() > 0 || totals.Gains.Sign() < 0 {
		t.Fatalf("sign invariant broken: %+v", totals)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	txs := []models.SellTransaction{tx("A", "1", "10", "1"), tx("B", "2", "20", "-1")}

	g1, t1 := Aggregate(txs)
	g2, t2 := Aggregate(txs)

	if len(g1) != len(g2) {
		t.Fatalf("group count differs")
	}
	for i := range g1 {
		if g1[i].ISIN != g2[i].ISIN || !g1[i].TotalProfitLoss.Equal(g2[i].TotalProfitLoss) {
			t.Fatalf("group %d differs", i)
		}
	}
	if !t1.Net.Equal(t2.Net) || t1.TransactionCount != t2.TransactionCount {
		t.Fatalf("totals differ")
	}
}

func TestAggregate_Empty(t *testing.T) {
	groups, totals := Aggregate(nil)
	if len(groups) != 0 {
		t.Fatalf("expected no groups")
	}
	if !totals.Net.IsZero() || !totals.Gains.IsZero() || !totals.Losses.IsZero() || totals.TransactionCount != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestAggregate_DisplayFieldsFromFirstMember(t *testing.T) {
	first := tx("A", "1", "10", "1")
	first.Ticker = "FIRST"
	second := tx("A", "1", "10", "1")
	second.Ticker = "SECOND"
	second.Type = models.InstrumentETF

	groups, _ := Aggregate([]models.SellTransaction{first, second})
	if groups[0].Ticker != "FIRST" || groups[0].Type != models.InstrumentStock || groups[0].Currency != "USD" {
		t.Fatalf("unexpected display fields: %+v", groups[0])
	}
}
