package main

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

const epsilon = 1e-9

func intPtr(i int) *int { return &i }

func addTestTransaction(t *testing.T, s *memStore, userID string, categoryID *int, amount float64, kind TransactionKind, occurredAt time.Time) *Transaction {
	t.Helper()
	tx := &Transaction{
		ID:         uuid.New().String(),
		UserID:     userID,
		CategoryID: categoryID,
		Name:       "test",
		Amount:     amount,
		Kind:       kind,
		OccurredAt: occurredAt,
	}
	if err := s.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}
	return tx
}

func addTestDebt(t *testing.T, s *memStore, userID string, amount float64, direction DebtDirection, paid bool) *Debt {
	t.Helper()
	d := &Debt{
		ID:         uuid.New().String(),
		UserID:     userID,
		PersonName: "someone",
		Amount:     amount,
		Direction:  direction,
		IsPaid:     paid,
	}
	if err := s.CreateDebt(context.Background(), d); err != nil {
		t.Fatalf("CreateDebt() failed: %v", err)
	}
	return d
}

func addTestGoal(t *testing.T, s *memStore, userID string, target, saved float64) *Goal {
	t.Helper()
	g := &Goal{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         "goal",
		TargetAmount: target,
		SavedAmount:  saved,
	}
	if err := s.CreateGoal(context.Background(), g); err != nil {
		t.Fatalf("CreateGoal() failed: %v", err)
	}
	return g
}

func TestCurrentBalance(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	now := time.Now()

	// InitialBalance=1000, income 500, expense 200, unpaid borrowed 300,
	// unpaid lent 100, goal saved 150 -> 1000+500-200+300-100-150 = 1350
	if err := s.SetInitialBalance(ctx, "u1", 1000); err != nil {
		t.Fatal(err)
	}
	addTestTransaction(t, s, "u1", nil, 500, KindIncome, now)
	addTestTransaction(t, s, "u1", nil, 200, KindExpense, now)
	addTestDebt(t, s, "u1", 300, DirectionBorrowed, false)
	addTestDebt(t, s, "u1", 100, DirectionLent, false)
	addTestGoal(t, s, "u1", 2000, 150)

	// another user's records must not leak in
	addTestTransaction(t, s, "u2", nil, 9999, KindIncome, now)

	b, err := currentBalance(ctx, s, "u1")
	if err != nil {
		t.Fatalf("currentBalance() failed: %v", err)
	}
	if math.Abs(b.Balance-1350) > epsilon {
		t.Errorf("Balance = %v, want 1350", b.Balance)
	}
	if b.TotalIncome != 500 || b.TotalExpenses != 200 {
		t.Errorf("flow = +%v/-%v, want +500/-200", b.TotalIncome, b.TotalExpenses)
	}
	if b.UnpaidBorrowed != 300 || b.UnpaidLent != 100 || b.TotalSaved != 150 {
		t.Errorf("breakdown = %+v", b)
	}
}

func TestCurrentBalancePaidDebtsVanish(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()

	addTestDebt(t, s, "u1", 300, DirectionBorrowed, true)
	addTestDebt(t, s, "u1", 100, DirectionLent, true)

	b, err := currentBalance(ctx, s, "u1")
	if err != nil {
		t.Fatalf("currentBalance() failed: %v", err)
	}
	if b.Balance != 0 {
		t.Errorf("Balance = %v, want 0: paid debts must not contribute", b.Balance)
	}
}

func TestCurrentBalanceMissingInitial(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	addTestTransaction(t, s, "u1", nil, 42, KindIncome, time.Now())

	b, err := currentBalance(ctx, s, "u1")
	if err != nil {
		t.Fatalf("currentBalance() failed: %v", err)
	}
	if b.Balance != 42 {
		t.Errorf("Balance = %v, want 42: missing initial balance counts as 0", b.Balance)
	}
}

func TestBudgetStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()

	b := &Budget{ID: uuid.New().String(), UserID: "u1", CategoryID: 3, MonthlyLimit: 400, PeriodKey: "2026-08"}
	if err := s.UpsertBudget(ctx, b); err != nil {
		t.Fatalf("UpsertBudget() failed: %v", err)
	}

	statuses, err := budgetStatus(ctx, s, "u1", "2026-08")
	if err != nil {
		t.Fatalf("budgetStatus() failed: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("got %d statuses, want 1", len(statuses))
	}
	st := statuses[0]
	if st.MonthlyLimit != 400 || st.Spent != 0 || st.Remaining != 400 || st.Percentage != 0 {
		t.Errorf("status = %+v, want limit 400, spent 0, remaining 400, percentage 0", st)
	}
}

func TestBudgetStatusSpend(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()

	inWindow := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.Local)
	outside := time.Date(2026, time.July, 31, 12, 0, 0, 0, time.Local)

	if err := s.UpsertBudget(ctx, &Budget{ID: uuid.New().String(), UserID: "u1", CategoryID: 3, MonthlyLimit: 100, PeriodKey: "2026-08"}); err != nil {
		t.Fatal(err)
	}
	addTestTransaction(t, s, "u1", intPtr(3), 80, KindExpense, inWindow)
	addTestTransaction(t, s, "u1", intPtr(3), 70, KindExpense, inWindow)
	addTestTransaction(t, s, "u1", intPtr(3), 500, KindExpense, outside)  // previous month
	addTestTransaction(t, s, "u1", intPtr(3), 900, KindIncome, inWindow)  // income never counts as spend
	addTestTransaction(t, s, "u1", intPtr(7), 25, KindExpense, inWindow)  // other category
	addTestTransaction(t, s, "u1", nil, 10, KindExpense, inWindow)        // uncategorized

	statuses, err := budgetStatus(ctx, s, "u1", "2026-08")
	if err != nil {
		t.Fatalf("budgetStatus() failed: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("got %d statuses, want 1", len(statuses))
	}
	st := statuses[0]
	if math.Abs(st.Spent-150) > epsilon {
		t.Errorf("Spent = %v, want 150", st.Spent)
	}
	if math.Abs(st.Remaining-(-50)) > epsilon {
		t.Errorf("Remaining = %v, want -50", st.Remaining)
	}
	// over-budget is a valid state, not an error
	if math.Abs(st.Percentage-150) > epsilon {
		t.Errorf("Percentage = %v, want 150", st.Percentage)
	}
}

func TestBudgetStatusDanglingCategory(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()

	// budget for a category with no transactions at all
	if err := s.UpsertBudget(ctx, &Budget{ID: uuid.New().String(), UserID: "u1", CategoryID: 99, MonthlyLimit: 50, PeriodKey: "2026-08"}); err != nil {
		t.Fatal(err)
	}
	statuses, err := budgetStatus(ctx, s, "u1", "2026-08")
	if err != nil {
		t.Fatalf("budgetStatus() failed: %v", err)
	}
	if statuses[0].Spent != 0 {
		t.Errorf("Spent = %v, want 0", statuses[0].Spent)
	}
}

func TestBudgetStatusBadPeriod(t *testing.T) {
	_, err := budgetStatus(context.Background(), newMemStore(), "u1", "08-2026")
	if !errors.Is(err, errInvalidArgument) {
		t.Errorf("err = %v, want errInvalidArgument", err)
	}
}

func TestBudgetUpsertReplacesLimit(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()

	first := &Budget{ID: uuid.New().String(), UserID: "u1", CategoryID: 3, MonthlyLimit: 100, PeriodKey: "2026-08"}
	if err := s.UpsertBudget(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := &Budget{ID: uuid.New().String(), UserID: "u1", CategoryID: 3, MonthlyLimit: 250, PeriodKey: "2026-08"}
	if err := s.UpsertBudget(ctx, second); err != nil {
		t.Fatal(err)
	}

	statuses, err := budgetStatus(ctx, s, "u1", "2026-08")
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 {
		t.Fatalf("got %d budgets, want 1: upsert must not duplicate", len(statuses))
	}
	if statuses[0].MonthlyLimit != 250 {
		t.Errorf("MonthlyLimit = %v, want 250", statuses[0].MonthlyLimit)
	}
}
