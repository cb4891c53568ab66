package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/guttosm/k4bridge/internal/domain/models"
)

// Aggregate groups sell transactions by ISIN and computes the K4 totals.
//
// Behavior:
//   - Groups are keyed by the exact ISIN string; display fields come from the
//     first transaction seen for that ISIN.
//   - Groups are ordered by TotalProfitLoss descending, ties broken by ISIN ascending.
//   - Gains and Losses are summed per transaction by the sign of Result, so a
//     gain and a loss on the same security never net out before reaching Box 3.3/3.4.
//
// Returns zero groups and zero totals for empty input.
func Aggregate(txs []models.SellTransaction) ([]models.AggregateGroup, models.SummaryTotals) {
	index := make(map[string]int)
	groups := make([]models.AggregateGroup, 0)

	totals := models.SummaryTotals{
		Gains:                decimal.Zero,
		Losses:               decimal.Zero,
		Net:                  decimal.Zero,
		TotalProceeds:        decimal.Zero,
		TotalAcquisitionCost: decimal.Zero,
	}

	for _, tx := range txs {
		cost := tx.AcquisitionCost()

		i, ok := index[tx.ISIN]
		if !ok {
			i = len(groups)
			index[tx.ISIN] = i
			groups = append(groups, models.AggregateGroup{
				ISIN:                 tx.ISIN,
				Ticker:               tx.Ticker,
				Type:                 tx.Type,
				Currency:             tx.PriceCurrency,
				TotalQuantity:        decimal.Zero,
				TotalProceeds:        decimal.Zero,
				TotalAcquisitionCost: decimal.Zero,
				TotalProfitLoss:      decimal.Zero,
			})
		}
		g := &groups[i]
		g.TotalQuantity = g.TotalQuantity.Add(tx.Quantity)
		g.TotalProceeds = g.TotalProceeds.Add(tx.TotalSEK)
		g.TotalAcquisitionCost = g.TotalAcquisitionCost.Add(cost)
		g.TotalProfitLoss = g.TotalProfitLoss.Add(tx.Result)
		g.TransactionCount++

		switch tx.Result.Sign() {
		case 1:
			totals.Gains = totals.Gains.Add(tx.Result)
		case -1:
			totals.Losses = totals.Losses.Add(tx.Result)
		}
		totals.TotalProceeds = totals.TotalProceeds.Add(tx.TotalSEK)
		totals.TotalAcquisitionCost = totals.TotalAcquisitionCost.Add(cost)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if c := groups[i].TotalProfitLoss.Cmp(groups[j].TotalProfitLoss); c != 0 {
			return c > 0
		}
		return groups[i].ISIN < groups[j].ISIN
	})

	totals.Net = totals.Gains.Add(totals.Losses)
	totals.TransactionCount = len(txs)
	totals.UniqueSecurityCount = len(groups)

	return groups, totals
}
