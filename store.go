package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store is the record store the core operates on. Every query is scoped to a
// single user except ActiveRules, which feeds the batch scheduler. Reads of a
// missing or foreign-owned record return errNotFound.
type Store interface {
	CreateTransaction(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*Transaction, error)
	UpdateTransaction(ctx context.Context, t *Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
	// TransactionsInRange returns the user's transactions with
	// from <= occurred_at < to, ordered by occurred_at. A zero from or to
	// leaves that side unbounded.
	TransactionsInRange(ctx context.Context, userID string, from, to time.Time, newestFirst bool) ([]Transaction, error)

	CreateRule(ctx context.Context, r *RecurringRule) error
	GetRule(ctx context.Context, id string) (*RecurringRule, error)
	UpdateRule(ctx context.Context, r *RecurringRule) error
	DeleteRule(ctx context.Context, userID, id string) error
	RulesByUser(ctx context.Context, userID string) ([]RecurringRule, error)
	ActiveRules(ctx context.Context) ([]RecurringRule, error)
	// CreateGeneratedTransaction inserts the materialized transaction and
	// advances the rule's last_generated_at in a single atomic step. If the
	// insert fails the watermark must not move.
	CreateGeneratedTransaction(ctx context.Context, t *Transaction, ruleID string, generatedAt time.Time) error

	CreateDebt(ctx context.Context, d *Debt) error
	GetDebt(ctx context.Context, userID, id string) (*Debt, error)
	MarkDebtPaid(ctx context.Context, userID, id string) error
	DeleteDebt(ctx context.Context, userID, id string) error
	DebtsByUser(ctx context.Context, userID string) ([]Debt, error)

	CreateGoal(ctx context.Context, g *Goal) error
	GetGoal(ctx context.Context, userID, id string) (*Goal, error)
	UpdateGoalSaved(ctx context.Context, userID, id string, saved float64) error
	DeleteGoal(ctx context.Context, userID, id string) error
	GoalsByUser(ctx context.Context, userID string) ([]Goal, error)

	UpsertBudget(ctx context.Context, b *Budget) error
	BudgetsForPeriod(ctx context.Context, userID, periodKey string) ([]Budget, error)

	// InitialBalance returns 0 when the user never set one; that is not an error.
	InitialBalance(ctx context.Context, userID string) (float64, error)
	SetInitialBalance(ctx context.Context, userID string, amount float64) error

	Categories(ctx context.Context) ([]Category, error)
}

// postgresStore implements Store over the shared database/sql handle.
type postgresStore struct {
	db *sql.DB
}

const transactionCols = "id, user_id, category_id, name, amount, kind, occurred_at, created_at"

func (s *postgresStore) CreateTransaction(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, category_id, name, amount, kind, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		t.ID, t.UserID, t.CategoryID, t.Name, t.Amount, t.Kind, t.OccurredAt,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *postgresStore) GetTransaction(ctx context.Context, userID, id string) (*Transaction, error) {
	query := `SELECT ` + transactionCols + ` FROM transactions WHERE id = $1 AND user_id = $2`
	var t Transaction
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.CategoryID, &t.Name, &t.Amount, &t.Kind, &t.OccurredAt, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

func (s *postgresStore) UpdateTransaction(ctx context.Context, t *Transaction) error {
	query := `
		UPDATE transactions
		SET category_id = $1, name = $2, amount = $3, kind = $4, occurred_at = $5
		WHERE id = $6 AND user_id = $7
	`
	res, err := s.db.ExecContext(ctx, query,
		t.CategoryID, t.Name, t.Amount, t.Kind, t.OccurredAt, t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return checkAffected(res)
}

func (s *postgresStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return checkAffected(res)
}

func (s *postgresStore) TransactionsInRange(ctx context.Context, userID string, from, to time.Time, newestFirst bool) ([]Transaction, error) {
	query := `SELECT ` + transactionCols + ` FROM transactions WHERE user_id = $1`
	args := []interface{}{userID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND occurred_at < $%d", len(args))
	}
	if newestFirst {
		query += " ORDER BY occurred_at DESC"
	} else {
		query += " ORDER BY occurred_at ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	// ensure empty array ([]) instead of null when no rows
	transactions := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Name, &t.Amount, &t.Kind, &t.OccurredAt, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

const ruleCols = "id, user_id, category_id, name, amount, kind, frequency, day_of_week, day_of_month, start_date, is_active, last_generated_at, created_at"

func (s *postgresStore) CreateRule(ctx context.Context, r *RecurringRule) error {
	query := `
		INSERT INTO recurring_rules
			(id, user_id, category_id, name, amount, kind, frequency, day_of_week, day_of_month, start_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		r.ID, r.UserID, r.CategoryID, r.Name, r.Amount, r.Kind, r.Frequency,
		r.DayOfWeek, r.DayOfMonth, r.StartDate, r.IsActive,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func (s *postgresStore) GetRule(ctx context.Context, id string) (*RecurringRule, error) {
	query := `SELECT ` + ruleCols + ` FROM recurring_rules WHERE id = $1`
	r, err := scanRule(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return r, nil
}

func (s *postgresStore) UpdateRule(ctx context.Context, r *RecurringRule) error {
	query := `
		UPDATE recurring_rules
		SET category_id = $1, name = $2, amount = $3, kind = $4, frequency = $5,
		    day_of_week = $6, day_of_month = $7, start_date = $8, is_active = $9
		WHERE id = $10 AND user_id = $11
	`
	res, err := s.db.ExecContext(ctx, query,
		r.CategoryID, r.Name, r.Amount, r.Kind, r.Frequency,
		r.DayOfWeek, r.DayOfMonth, r.StartDate, r.IsActive, r.ID, r.UserID,
	)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return checkAffected(res)
}

func (s *postgresStore) DeleteRule(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return checkAffected(res)
}

func (s *postgresStore) RulesByUser(ctx context.Context, userID string) ([]RecurringRule, error) {
	query := `SELECT ` + ruleCols + ` FROM recurring_rules WHERE user_id = $1 ORDER BY created_at DESC`
	return s.queryRules(ctx, query, userID)
}

func (s *postgresStore) ActiveRules(ctx context.Context) ([]RecurringRule, error) {
	query := `SELECT ` + ruleCols + ` FROM recurring_rules WHERE is_active ORDER BY created_at`
	return s.queryRules(ctx, query)
}

func (s *postgresStore) queryRules(ctx context.Context, query string, args ...interface{}) ([]RecurringRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	rules := make([]RecurringRule, 0)
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*RecurringRule, error) {
	var r RecurringRule
	err := row.Scan(
		&r.ID, &r.UserID, &r.CategoryID, &r.Name, &r.Amount, &r.Kind, &r.Frequency,
		&r.DayOfWeek, &r.DayOfMonth, &r.StartDate, &r.IsActive, &r.LastGeneratedAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *postgresStore) CreateGeneratedTransaction(ctx context.Context, t *Transaction, ruleID string, generatedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin generate: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := `
		INSERT INTO transactions (id, user_id, category_id, name, amount, kind, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, insert,
		t.ID, t.UserID, t.CategoryID, t.Name, t.Amount, t.Kind, t.OccurredAt,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert generated transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE recurring_rules SET last_generated_at = $1 WHERE id = $2`, generatedAt, ruleID)
	if err != nil {
		return fmt.Errorf("advance rule watermark: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

const debtCols = "id, user_id, person_name, amount, direction, due_date, is_paid, description, created_at"

func (s *postgresStore) CreateDebt(ctx context.Context, d *Debt) error {
	query := `
		INSERT INTO debts (id, user_id, person_name, amount, direction, due_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING is_paid, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		d.ID, d.UserID, d.PersonName, d.Amount, d.Direction, d.DueDate, d.Description,
	).Scan(&d.IsPaid, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert debt: %w", err)
	}
	return nil
}

func (s *postgresStore) GetDebt(ctx context.Context, userID, id string) (*Debt, error) {
	query := `SELECT ` + debtCols + ` FROM debts WHERE id = $1 AND user_id = $2`
	var d Debt
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&d.ID, &d.UserID, &d.PersonName, &d.Amount, &d.Direction, &d.DueDate, &d.IsPaid, &d.Description, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get debt: %w", err)
	}
	return &d, nil
}

func (s *postgresStore) MarkDebtPaid(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE debts SET is_paid = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark debt paid: %w", err)
	}
	return checkAffected(res)
}

func (s *postgresStore) DeleteDebt(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM debts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return checkAffected(res)
}

func (s *postgresStore) DebtsByUser(ctx context.Context, userID string) ([]Debt, error) {
	query := `SELECT ` + debtCols + ` FROM debts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	debts := make([]Debt, 0)
	for rows.Next() {
		var d Debt
		err := rows.Scan(&d.ID, &d.UserID, &d.PersonName, &d.Amount, &d.Direction, &d.DueDate, &d.IsPaid, &d.Description, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

const goalCols = "id, user_id, name, target_amount, saved_amount, deadline, created_at"

func (s *postgresStore) CreateGoal(ctx context.Context, g *Goal) error {
	query := `
		INSERT INTO goals (id, user_id, name, target_amount, saved_amount, deadline)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		g.ID, g.UserID, g.Name, g.TargetAmount, g.SavedAmount, g.Deadline,
	).Scan(&g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (s *postgresStore) GetGoal(ctx context.Context, userID, id string) (*Goal, error) {
	query := `SELECT ` + goalCols + ` FROM goals WHERE id = $1 AND user_id = $2`
	var g Goal
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.SavedAmount, &g.Deadline, &g.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

func (s *postgresStore) UpdateGoalSaved(ctx context.Context, userID, id string, saved float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET saved_amount = $1 WHERE id = $2 AND user_id = $3`, saved, id, userID)
	if err != nil {
		return fmt.Errorf("update goal savings: %w", err)
	}
	return checkAffected(res)
}

func (s *postgresStore) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return checkAffected(res)
}

func (s *postgresStore) GoalsByUser(ctx context.Context, userID string) ([]Goal, error) {
	query := `SELECT ` + goalCols + ` FROM goals WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]Goal, 0)
	for rows.Next() {
		var g Goal
		err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.SavedAmount, &g.Deadline, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *postgresStore) UpsertBudget(ctx context.Context, b *Budget) error {
	query := `
		INSERT INTO budgets (id, user_id, category_id, monthly_limit, period_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, category_id, period_key)
		DO UPDATE SET monthly_limit = EXCLUDED.monthly_limit
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		b.ID, b.UserID, b.CategoryID, b.MonthlyLimit, b.PeriodKey,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (s *postgresStore) BudgetsForPeriod(ctx context.Context, userID, periodKey string) ([]Budget, error) {
	query := `
		SELECT id, user_id, category_id, monthly_limit, period_key, created_at
		FROM budgets
		WHERE user_id = $1 AND period_key = $2
		ORDER BY category_id
	`
	rows, err := s.db.QueryContext(ctx, query, userID, periodKey)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]Budget, 0)
	for rows.Next() {
		var b Budget
		err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.MonthlyLimit, &b.PeriodKey, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *postgresStore) InitialBalance(ctx context.Context, userID string) (float64, error) {
	var amount float64
	err := s.db.QueryRowContext(ctx,
		`SELECT amount FROM initial_balances WHERE user_id = $1`, userID).Scan(&amount)
	if err == sql.ErrNoRows {
		// never set is treated as zero
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get initial balance: %w", err)
	}
	return amount, nil
}

func (s *postgresStore) SetInitialBalance(ctx context.Context, userID string, amount float64) error {
	query := `
		INSERT INTO initial_balances (user_id, amount, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("set initial balance: %w", err)
	}
	return nil
}

func (s *postgresStore) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, color, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type, &cat.Color, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}
