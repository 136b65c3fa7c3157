package main

import (
	"context"
	"fmt"
	"time"
)

// projectionDays is how far past the last known day the forecast extends.
const projectionDays = 15

// balanceHistory reconstructs the day-by-day transactional balance over
// [now - days, now] and extends it with a least-squares forecast. The series
// tracks cash flow only: debts and goals are excluded, so the opening balance
// is the initial amount plus every transaction dated before the window.
func balanceHistory(ctx context.Context, s Store, userID string, days int, now time.Time) (*BalanceHistory, error) {
	if days < 0 {
		return &BalanceHistory{History: []BalancePoint{}, Projection: []BalancePoint{}}, nil
	}

	initial, err := s.InitialBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("balance history: %w", err)
	}
	transactions, err := s.TransactionsInRange(ctx, userID, time.Time{}, time.Time{}, false)
	if err != nil {
		return nil, fmt.Errorf("balance history: %w", err)
	}

	windowStart := startOfDay(now.AddDate(0, 0, -days))

	opening := initial
	dailyNet := make(map[string]float64)
	for _, t := range transactions {
		net := t.Amount
		if t.Kind == KindExpense {
			net = -net
		}
		if t.OccurredAt.Before(windowStart) {
			opening += net
		} else {
			dailyNet[localDay(t.OccurredAt)] += net
		}
	}

	history := make([]BalancePoint, 0, days+1)
	running := opening
	for i := 0; i <= days; i++ {
		day := windowStart.AddDate(0, 0, i)
		key := localDay(day)
		running += dailyNet[key]
		history = append(history, BalancePoint{Date: key, Balance: running})
	}

	result := &BalanceHistory{
		History:    history,
		Projection: make([]BalancePoint, 0, projectionDays),
	}

	lastDay := windowStart.AddDate(0, 0, days)
	slope, intercept, ok := linearFit(history)
	result.Improving = ok && slope > 0
	for k := 1; k <= projectionDays; k++ {
		date := localDay(lastDay.AddDate(0, 0, k))
		balance := history[len(history)-1].Balance
		if ok {
			balance = slope*float64(len(history)-1+k) + intercept
		}
		result.Projection = append(result.Projection, BalancePoint{Date: date, Balance: balance})
	}
	return result, nil
}

// linearFit is an ordinary least-squares fit of balance against day index.
// ok is false for the degenerate case (one point or fewer) where the
// denominator collapses to zero.
func linearFit(points []BalancePoint) (slope, intercept float64, ok bool) {
	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range points {
		x := float64(i)
		sumX += x
		sumY += p.Balance
		sumXY += x * p.Balance
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}

func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// localDay is the local calendar-day key used for bucketing.
func localDay(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
