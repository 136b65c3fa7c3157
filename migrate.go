package main

import (
	"database/sql"
	"fmt"
	"log"
)

// setupDatabase creates tables and seeds initial data
func setupDatabase() error {
	if err := initDB(); err != nil {
		return err
	}
	defer db.Close()

	log.Println("Creating database schema...")
	if err := ensureSchema(db); err != nil {
		return err
	}
	log.Println("Schema created successfully")

	log.Println("Seeding categories...")
	if err := seedDefaultCategories(db); err != nil {
		return err
	}
	log.Println("Categories seeded successfully")

	return nil
}

// demoUserID owns the seeded demo records. Matches the subject of the demo
// token issued by the external auth gate in dev environments.
const demoUserID = "11111111-1111-1111-1111-111111111111"

// Seed a small demo data set for presentations.
// Idempotent: will only run if the demo user has zero transactions.
func seedDemoData(db *sql.DB) error {
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE user_id = $1`, demoUserID).Scan(&cnt); err != nil {
		return fmt.Errorf("checking transactions count: %w", err)
	}
	if cnt > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(
		`INSERT INTO initial_balances (user_id, amount) VALUES ($1, 1000.00)
		 ON CONFLICT (user_id) DO NOTHING`, demoUserID); err != nil {
		return fmt.Errorf("seeding initial balance: %w", err)
	}

	// A month of income/expense activity. Categories assumed to exist from
	// seedDefaultCategories.
	demoTx := `
	INSERT INTO transactions (id, user_id, category_id, name, amount, kind, occurred_at) VALUES
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Salary' AND type='income' LIMIT 1), 'Monthly Salary', 3200.00, 'income', CURRENT_DATE - INTERVAL '28 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Rent' AND type='expense' LIMIT 1), 'Rent - Apartment', 1500.00, 'expense', CURRENT_DATE - INTERVAL '24 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Utilities' AND type='expense' LIMIT 1), 'Utilities - Electricity', 120.45, 'expense', CURRENT_DATE - INTERVAL '22 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Groceries' AND type='expense' LIMIT 1), 'Groceries - Whole Foods', 96.72, 'expense', CURRENT_DATE - INTERVAL '20 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Transportation' AND type='expense' LIMIT 1), 'Subway Pass', 45.00, 'expense', CURRENT_DATE - INTERVAL '19 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Freelance' AND type='income' LIMIT 1), 'Freelance: Dashboard Charts', 600.00, 'income', CURRENT_DATE - INTERVAL '13 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Entertainment' AND type='expense' LIMIT 1), 'Concert Tickets', 140.00, 'expense', CURRENT_DATE - INTERVAL '8 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Groceries' AND type='expense' LIMIT 1), 'Groceries - Costco', 132.39, 'expense', CURRENT_DATE - INTERVAL '6 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Entertainment' AND type='expense' LIMIT 1), 'Dinner Out', 54.80, 'expense', CURRENT_DATE - INTERVAL '1 days')
	`
	if _, err := tx.Exec(demoTx, demoUserID); err != nil {
		return fmt.Errorf("seeding transactions: %w", err)
	}

	demoRules := `
	INSERT INTO recurring_rules (id, user_id, category_id, name, amount, kind, frequency, day_of_month, start_date) VALUES
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Rent' AND type='expense' LIMIT 1), 'Rent', 1500.00, 'expense', 'monthly', 1, CURRENT_DATE - INTERVAL '90 days'),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Salary' AND type='income' LIMIT 1), 'Salary', 3200.00, 'income', 'monthly', 28, CURRENT_DATE - INTERVAL '90 days')
	`
	if _, err := tx.Exec(demoRules, demoUserID); err != nil {
		return fmt.Errorf("seeding recurring rules: %w", err)
	}

	demoDebts := `
	INSERT INTO debts (id, user_id, person_name, amount, direction, description) VALUES
	(gen_random_uuid(), $1, 'Alex', 300.00, 'borrowed', 'Short-term loan'),
	(gen_random_uuid(), $1, 'Sam', 100.00, 'lent', 'Concert ticket')
	`
	if _, err := tx.Exec(demoDebts, demoUserID); err != nil {
		return fmt.Errorf("seeding debts: %w", err)
	}

	demoGoals := `
	INSERT INTO goals (id, user_id, name, target_amount, saved_amount, deadline) VALUES
	(gen_random_uuid(), $1, 'Vacation', 2000.00, 150.00, CURRENT_DATE + INTERVAL '180 days')
	`
	if _, err := tx.Exec(demoGoals, demoUserID); err != nil {
		return fmt.Errorf("seeding goals: %w", err)
	}

	demoBudgets := `
	INSERT INTO budgets (id, user_id, category_id, monthly_limit, period_key) VALUES
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Groceries' AND type='expense' LIMIT 1), 400.00, to_char(CURRENT_DATE, 'YYYY-MM')),
	(gen_random_uuid(), $1, (SELECT id FROM categories WHERE name='Entertainment' AND type='expense' LIMIT 1), 200.00, to_char(CURRENT_DATE, 'YYYY-MM'))
	ON CONFLICT (user_id, category_id, period_key) DO NOTHING
	`
	if _, err := tx.Exec(demoBudgets, demoUserID); err != nil {
		return fmt.Errorf("seeding budgets: %w", err)
	}

	return tx.Commit()
}
