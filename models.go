package main

import "time"

// TransactionKind distinguishes money coming in from money going out.
// Amounts are always non-negative; the kind carries the sign.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// Frequency is the cadence of a recurring rule.
type Frequency string

const (
	FreqDaily      Frequency = "daily"
	FreqWeekly     Frequency = "weekly"
	FreqBiweekly   Frequency = "biweekly"
	FreqMonthly    Frequency = "monthly"
	FreqBimonthly  Frequency = "bimonthly"
	FreqQuarterly  Frequency = "quarterly"
	FreqSemiannual Frequency = "semiannual"
	FreqAnnual     Frequency = "annual"
	FreqBiannual   Frequency = "biannual"
)

// DebtDirection says which way the money went when the debt was created.
type DebtDirection string

const (
	DirectionLent     DebtDirection = "lent"
	DirectionBorrowed DebtDirection = "borrowed"
)

// Transaction represents a single financial transaction
type Transaction struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	CategoryID *int            `json:"category_id"`
	Name       string          `json:"name"`
	Amount     float64         `json:"amount"`
	Kind       TransactionKind `json:"kind"`
	OccurredAt time.Time       `json:"occurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RecurringRule describes a transaction the scheduler materializes on a cadence.
// LastGeneratedAt is the idempotency witness: a rule never fires twice within
// its minimum interval.
type RecurringRule struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CategoryID      *int            `json:"category_id"`
	Name            string          `json:"name"`
	Amount          float64         `json:"amount"`
	Kind            TransactionKind `json:"kind"`
	Frequency       Frequency       `json:"frequency"`
	DayOfWeek       *int            `json:"day_of_week"`
	DayOfMonth      *int            `json:"day_of_month"`
	StartDate       time.Time       `json:"start_date"`
	IsActive        bool            `json:"is_active"`
	LastGeneratedAt *time.Time      `json:"last_generated_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Debt represents money lent to or borrowed from another person.
// IsPaid flips one way (false to true); a paid debt stops contributing
// to the balance instead of producing a repayment record.
type Debt struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	PersonName  string        `json:"person_name"`
	Amount      float64       `json:"amount"`
	Direction   DebtDirection `json:"direction"`
	DueDate     *time.Time    `json:"due_date"`
	IsPaid      bool          `json:"is_paid"`
	Description *string       `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Goal is a savings goal; SavedAmount is money set aside and never negative.
type Goal struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	TargetAmount float64    `json:"target_amount"`
	SavedAmount  float64    `json:"saved_amount"`
	Deadline     *time.Time `json:"deadline"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Budget is a monthly spending limit for one category, unique per
// (user, category, period).
type Budget struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CategoryID   int       `json:"category_id"`
	MonthlyLimit float64   `json:"monthly_limit"`
	PeriodKey    string    `json:"period_key"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category represents a transaction category
type Category struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

// BalanceBreakdown is the current balance with each contributing term.
type BalanceBreakdown struct {
	Balance        float64 `json:"balance"`
	InitialAmount  float64 `json:"initial_amount"`
	TotalIncome    float64 `json:"total_income"`
	TotalExpenses  float64 `json:"total_expenses"`
	UnpaidBorrowed float64 `json:"unpaid_borrowed"`
	UnpaidLent     float64 `json:"unpaid_lent"`
	TotalSaved     float64 `json:"total_saved"`
}

// BudgetStatus is the spend position of one budget within its period.
// Percentage may exceed 100; over-budget is a valid state.
type BudgetStatus struct {
	BudgetID     string  `json:"budget_id"`
	CategoryID   int     `json:"category_id"`
	PeriodKey    string  `json:"period_key"`
	MonthlyLimit float64 `json:"monthly_limit"`
	Spent        float64 `json:"spent"`
	Remaining    float64 `json:"remaining"`
	Percentage   float64 `json:"percentage"`
}

// BalancePoint is one day of the balance history series.
type BalancePoint struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// BalanceHistory is the reconstructed day-by-day series plus a
// least-squares forecast continuation.
type BalanceHistory struct {
	History    []BalancePoint `json:"history"`
	Projection []BalancePoint `json:"projection"`
	Improving  bool           `json:"improving"`
}

// ProcessSummary reports one batch pass of the recurring schedule engine.
type ProcessSummary struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Total     int `json:"total"`
}

func validKind(k TransactionKind) bool {
	return k == KindExpense || k == KindIncome
}

func validDirection(d DebtDirection) bool {
	return d == DirectionLent || d == DirectionBorrowed
}

func validFrequency(f Frequency) bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly, FreqBimonthly,
		FreqQuarterly, FreqSemiannual, FreqAnnual, FreqBiannual:
		return true
	}
	return false
}

// weekBased reports whether the frequency selects its day by day-of-week.
// Every other frequency selects by day-of-month.
func weekBased(f Frequency) bool {
	return f == FreqWeekly || f == FreqBiweekly
}
