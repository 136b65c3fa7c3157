package main

import (
	"context"
	"fmt"
	"time"
)

// currentBalance derives the user's spendable balance from every record stream:
//
//	initial + income - expenses + unpaid borrowed - unpaid lent - total saved
//
// An unpaid borrowed debt is cash the user holds but owes, so it raises the
// balance; an unpaid lent debt is cash given away. Once a debt is paid its
// contribution disappears. Goal savings are money set aside and subtracted
// even though the user still owns it.
func currentBalance(ctx context.Context, s Store, userID string) (*BalanceBreakdown, error) {
	initial, err := s.InitialBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}

	transactions, err := s.TransactionsInRange(ctx, userID, time.Time{}, time.Time{}, false)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}

	debts, err := s.DebtsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}

	goals, err := s.GoalsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}

	b := &BalanceBreakdown{InitialAmount: initial}
	for _, t := range transactions {
		if t.Kind == KindIncome {
			b.TotalIncome += t.Amount
		} else {
			b.TotalExpenses += t.Amount
		}
	}
	for _, d := range debts {
		if d.IsPaid {
			continue
		}
		if d.Direction == DirectionBorrowed {
			b.UnpaidBorrowed += d.Amount
		} else {
			b.UnpaidLent += d.Amount
		}
	}
	for _, g := range goals {
		b.TotalSaved += g.SavedAmount
	}

	b.Balance = b.InitialAmount + b.TotalIncome - b.TotalExpenses +
		b.UnpaidBorrowed - b.UnpaidLent - b.TotalSaved
	return b, nil
}

// budgetStatus reports spend against every budget of the given period
// (a "YYYY-MM" key). Expense transactions are summed per category within the
// calendar month; a budget whose category has no transactions reports zero
// spend, and spending past the limit is representable rather than an error.
func budgetStatus(ctx context.Context, s Store, userID, periodKey string) ([]BudgetStatus, error) {
	start, err := time.ParseInLocation("2006-01", periodKey, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: bad period %q", errInvalidArgument, periodKey)
	}
	end := start.AddDate(0, 1, 0)

	budgets, err := s.BudgetsForPeriod(ctx, userID, periodKey)
	if err != nil {
		return nil, fmt.Errorf("budget status: %w", err)
	}

	transactions, err := s.TransactionsInRange(ctx, userID, start, end, false)
	if err != nil {
		return nil, fmt.Errorf("budget status: %w", err)
	}

	spentByCategory := make(map[int]float64)
	for _, t := range transactions {
		if t.Kind != KindExpense || t.CategoryID == nil {
			continue
		}
		spentByCategory[*t.CategoryID] += t.Amount
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := spentByCategory[b.CategoryID]
		st := BudgetStatus{
			BudgetID:     b.ID,
			CategoryID:   b.CategoryID,
			PeriodKey:    b.PeriodKey,
			MonthlyLimit: b.MonthlyLimit,
			Spent:        spent,
			Remaining:    b.MonthlyLimit - spent,
		}
		if b.MonthlyLimit != 0 {
			st.Percentage = spent / b.MonthlyLimit * 100
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// currentPeriodKey is the "YYYY-MM" key for the month containing now.
func currentPeriodKey(now time.Time) string {
	return now.Format("2006-01")
}
