package main

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store used by the core tests. It mirrors the
// postgres implementation's contract: errNotFound for missing or
// foreign-owned records, and an atomic insert+watermark step for generation.
type memStore struct {
	mu           sync.Mutex
	transactions map[string]*Transaction
	rules        map[string]*RecurringRule
	ruleOrder    []string
	debts        map[string]*Debt
	goals        map[string]*Goal
	budgets      map[string]*Budget
	initial      map[string]float64
	hasInitial   map[string]bool

	// failRules makes CreateGeneratedTransaction fail for the listed rules,
	// exercising the batch pass's skip-and-continue behavior.
	failRules map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		transactions: make(map[string]*Transaction),
		rules:        make(map[string]*RecurringRule),
		debts:        make(map[string]*Debt),
		goals:        make(map[string]*Goal),
		budgets:      make(map[string]*Budget),
		initial:      make(map[string]float64),
		hasInitial:   make(map[string]bool),
		failRules:    make(map[string]bool),
	}
}

func (m *memStore) CreateTransaction(ctx context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	cp := *t
	m.transactions[t.ID] = &cp
	return nil
}

func (m *memStore) GetTransaction(ctx context.Context, userID, id string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return nil, errNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) UpdateTransaction(ctx context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return errNotFound
	}
	cp := *t
	cp.CreatedAt = old.CreatedAt
	m.transactions[t.ID] = &cp
	return nil
}

func (m *memStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return errNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *memStore) TransactionsInRange(ctx context.Context, userID string, from, to time.Time, newestFirst bool) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transaction, 0)
	for _, t := range m.transactions {
		if t.UserID != userID {
			continue
		}
		if !from.IsZero() && t.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && !t.OccurredAt.Before(to) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, nil
}

func (m *memStore) CreateRule(ctx context.Context, r *RecurringRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	m.rules[r.ID] = &cp
	m.ruleOrder = append(m.ruleOrder, r.ID)
	return nil
}

func (m *memStore) GetRule(ctx context.Context, id string) (*RecurringRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) UpdateRule(ctx context.Context, r *RecurringRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.rules[r.ID]
	if !ok || old.UserID != r.UserID {
		return errNotFound
	}
	cp := *r
	cp.LastGeneratedAt = old.LastGeneratedAt
	cp.CreatedAt = old.CreatedAt
	m.rules[r.ID] = &cp
	return nil
}

func (m *memStore) DeleteRule(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok || r.UserID != userID {
		return errNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *memStore) RulesByUser(ctx context.Context, userID string) ([]RecurringRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecurringRule, 0)
	for _, id := range m.ruleOrder {
		if r, ok := m.rules[id]; ok && r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) ActiveRules(ctx context.Context) ([]RecurringRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecurringRule, 0)
	for _, id := range m.ruleOrder {
		if r, ok := m.rules[id]; ok && r.IsActive {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) CreateGeneratedTransaction(ctx context.Context, t *Transaction, ruleID string, generatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRules[ruleID] {
		return errors.New("simulated store failure")
	}
	r, ok := m.rules[ruleID]
	if !ok {
		return errNotFound
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	cp := *t
	m.transactions[t.ID] = &cp
	at := generatedAt
	r.LastGeneratedAt = &at
	return nil
}

func (m *memStore) CreateDebt(ctx context.Context, d *Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	cp := *d
	m.debts[d.ID] = &cp
	return nil
}

func (m *memStore) GetDebt(ctx context.Context, userID, id string) (*Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debts[id]
	if !ok || d.UserID != userID {
		return nil, errNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) MarkDebtPaid(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debts[id]
	if !ok || d.UserID != userID {
		return errNotFound
	}
	d.IsPaid = true
	return nil
}

func (m *memStore) DeleteDebt(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debts[id]
	if !ok || d.UserID != userID {
		return errNotFound
	}
	delete(m.debts, id)
	return nil
}

func (m *memStore) DebtsByUser(ctx context.Context, userID string) ([]Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Debt, 0)
	for _, d := range m.debts {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) CreateGoal(ctx context.Context, g *Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	cp := *g
	m.goals[g.ID] = &cp
	return nil
}

func (m *memStore) GetGoal(ctx context.Context, userID, id string) (*Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return nil, errNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) UpdateGoalSaved(ctx context.Context, userID, id string, saved float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return errNotFound
	}
	g.SavedAmount = saved
	return nil
}

func (m *memStore) DeleteGoal(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return errNotFound
	}
	delete(m.goals, id)
	return nil
}

func (m *memStore) GoalsByUser(ctx context.Context, userID string) ([]Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Goal, 0)
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memStore) UpsertBudget(ctx context.Context, b *Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.budgets {
		if existing.UserID == b.UserID && existing.CategoryID == b.CategoryID && existing.PeriodKey == b.PeriodKey {
			existing.MonthlyLimit = b.MonthlyLimit
			b.ID = existing.ID
			b.CreatedAt = existing.CreatedAt
			return nil
		}
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	cp := *b
	m.budgets[b.ID] = &cp
	return nil
}

func (m *memStore) BudgetsForPeriod(ctx context.Context, userID, periodKey string) ([]Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Budget, 0)
	for _, b := range m.budgets {
		if b.UserID == userID && b.PeriodKey == periodKey {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (m *memStore) InitialBalance(ctx context.Context, userID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasInitial[userID] {
		return 0, nil
	}
	return m.initial[userID], nil
}

func (m *memStore) SetInitialBalance(ctx context.Context, userID string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initial[userID] = amount
	m.hasInitial[userID] = true
	return nil
}

func (m *memStore) Categories(ctx context.Context) ([]Category, error) {
	return []Category{}, nil
}

// interface guard
var _ Store = (*memStore)(nil)
