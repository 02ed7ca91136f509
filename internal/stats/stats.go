// Package stats computes aggregate metrics from a movement sequence. It is
// purely functional: no I/O, no mutation of the input.
package stats

import (
	"kiwillet/internal/models"

	"github.com/shopspring/decimal"
)

// NoService is the most-paid-service sentinel when no service payment
// exists in the sequence.
const NoService = "N/A"

// Compute derives a fully populated snapshot from the sequence. Values
// that failed to decode are excluded from their aggregate; they do not
// abort the computation and are not treated as zero.
//
// The most-paid service is the description of the service payments with
// the highest frequency. Ties resolve chronologically: the first
// description to reach the maximal count wins.
func Compute(movements []models.Movement) models.Snapshot {
	snapshot := models.Snapshot{MostPaidService: NoService}
	if len(movements) == 0 {
		return snapshot
	}

	var balanceSum decimal.Decimal
	balanceCount := 0
	serviceCounts := make(map[string]int)
	best := 0

	for _, m := range movements {
		if m.Balance.Valid {
			balanceSum = balanceSum.Add(m.Balance.Decimal)
			balanceCount++
		}

		if m.Amount.Valid {
			switch {
			case m.Kind.IsCredit():
				snapshot.TotalCredit = snapshot.TotalCredit.Add(m.Amount.Decimal)
			case m.Kind.IsDebit():
				snapshot.TotalDebit = snapshot.TotalDebit.Add(m.Amount.Decimal)
			}
		}

		if m.Kind == models.KindServicePayment {
			serviceCounts[m.Description]++
			if serviceCounts[m.Description] > best {
				best = serviceCounts[m.Description]
				snapshot.MostPaidService = m.Description
			}
		}
	}

	if balanceCount > 0 {
		snapshot.AverageBalance = balanceSum.Div(decimal.NewFromInt(int64(balanceCount)))
	}
	return snapshot
}
