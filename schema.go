package main

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		type VARCHAR(20) NOT NULL,
		color VARCHAR(7) DEFAULT '#667eea',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_type ON categories(name, type);

	CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		category_id INTEGER REFERENCES categories(id),
		name VARCHAR(255) NOT NULL,
		amount DECIMAL(12,2) NOT NULL CHECK (amount >= 0),
		kind VARCHAR(10) NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_occurred ON transactions(user_id, occurred_at);

	CREATE TABLE IF NOT EXISTS recurring_rules (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		category_id INTEGER REFERENCES categories(id),
		name VARCHAR(255) NOT NULL,
		amount DECIMAL(12,2) NOT NULL CHECK (amount >= 0),
		kind VARCHAR(10) NOT NULL,
		frequency VARCHAR(20) NOT NULL,
		day_of_week SMALLINT CHECK (day_of_week BETWEEN 0 AND 6),
		day_of_month SMALLINT CHECK (day_of_month BETWEEN 1 AND 31),
		start_date DATE NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_generated_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_recurring_rules_active ON recurring_rules(is_active);

	CREATE TABLE IF NOT EXISTS debts (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		person_name VARCHAR(255) NOT NULL,
		amount DECIMAL(12,2) NOT NULL CHECK (amount >= 0),
		direction VARCHAR(10) NOT NULL,
		due_date TIMESTAMPTZ,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_debts_user ON debts(user_id);

	CREATE TABLE IF NOT EXISTS goals (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		name VARCHAR(255) NOT NULL,
		target_amount DECIMAL(12,2) NOT NULL,
		saved_amount DECIMAL(12,2) NOT NULL DEFAULT 0 CHECK (saved_amount >= 0),
		deadline TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);

	CREATE TABLE IF NOT EXISTS budgets (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		category_id INTEGER NOT NULL,
		monthly_limit DECIMAL(12,2) NOT NULL,
		period_key VARCHAR(7) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, category_id, period_key)
	);

	CREATE TABLE IF NOT EXISTS initial_balances (
		user_id TEXT PRIMARY KEY,
		amount DECIMAL(12,2) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

const seedSQL = `
	INSERT INTO categories (name, type, color) VALUES
		('Groceries', 'expense', '#e74c3c'),
		('Rent', 'expense', '#e67e22'),
		('Utilities', 'expense', '#f39c12'),
		('Transportation', 'expense', '#3498db'),
		('Entertainment', 'expense', '#9b59b6'),
		('Salary', 'income', '#27ae60'),
		('Freelance', 'income', '#16a085')
	ON CONFLICT (name, type) DO NOTHING;
`

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func seedDefaultCategories(db *sql.DB) error {
	if _, err := db.Exec(seedSQL); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	return nil
}
