package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// autoSuffix marks transactions materialized from a recurring rule.
const autoSuffix = " (Auto)"

// minInterval is the shortest allowed gap between two generations of the same
// rule. It is a coarse duplicate-fire guard shared by the manual and batch
// triggers, not a calendar computation: day_of_week and day_of_month stay
// descriptive metadata.
func minInterval(f Frequency) time.Duration {
	if f == FreqDaily {
		return 12 * time.Hour
	}
	return 24 * time.Hour
}

// ruleDue reports whether the rule may fire at now. A rule that never fired
// is always due.
func ruleDue(r *RecurringRule, now time.Time) bool {
	if r.LastGeneratedAt == nil {
		return true
	}
	return now.Sub(*r.LastGeneratedAt) >= minInterval(r.Frequency)
}

// ruleTransaction builds the transaction a firing rule materializes.
func ruleTransaction(r *RecurringRule, now time.Time) *Transaction {
	return &Transaction{
		ID:         uuid.New().String(),
		UserID:     r.UserID,
		CategoryID: r.CategoryID,
		Name:       r.Name + autoSuffix,
		Amount:     r.Amount,
		Kind:       r.Kind,
		OccurredAt: now,
	}
}

// generateNow is the manual trigger: the caller must own an active rule, and
// the duplicate-fire guard applies exactly as in the batch pass. On success it
// returns the ID of the new transaction; the insert and the watermark advance
// are one atomic store operation.
func generateNow(ctx context.Context, s Store, userID, ruleID string, now time.Time) (string, error) {
	r, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return "", err
	}
	if r.UserID != userID {
		return "", errNotFound
	}
	if !r.IsActive {
		return "", errInactive
	}
	if !ruleDue(r, now) {
		return "", errAlreadyGenerated
	}

	t := ruleTransaction(r, now)
	if err := s.CreateGeneratedTransaction(ctx, t, r.ID, now); err != nil {
		return "", fmt.Errorf("generate transaction: %w", err)
	}
	return t.ID, nil
}

// processDue is the batch trigger: one pass over every active rule across all
// users. Rules that are not due are skipped, and a failing rule is logged and
// counted as skipped without aborting the batch — a fleet-wide run must not
// stop because one user's rule is broken.
func processDue(ctx context.Context, s Store, now time.Time) (ProcessSummary, error) {
	rules, err := s.ActiveRules(ctx)
	if err != nil {
		return ProcessSummary{}, fmt.Errorf("process due: %w", err)
	}

	summary := ProcessSummary{Total: len(rules)}
	for i := range rules {
		r := &rules[i]
		if !ruleDue(r, now) {
			summary.Skipped++
			continue
		}
		t := ruleTransaction(r, now)
		if err := s.CreateGeneratedTransaction(ctx, t, r.ID, now); err != nil {
			log.Printf("process due: rule %s: %v", r.ID, err)
			summary.Skipped++
			continue
		}
		summary.Generated++
	}
	return summary, nil
}

// validateRule checks the fields of a new or updated rule. Week-based
// frequencies select their day by day_of_week (0..6), everything else by
// day_of_month (1..31).
func validateRule(r *RecurringRule) error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", errInvalidArgument)
	}
	if r.Amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative", errInvalidArgument)
	}
	if !validKind(r.Kind) {
		return fmt.Errorf("%w: bad kind %q", errInvalidArgument, r.Kind)
	}
	if !validFrequency(r.Frequency) {
		return fmt.Errorf("%w: bad frequency %q", errInvalidArgument, r.Frequency)
	}
	if weekBased(r.Frequency) {
		if r.DayOfWeek == nil || *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
			return fmt.Errorf("%w: day_of_week must be 0..6", errInvalidArgument)
		}
	} else {
		if r.DayOfMonth == nil || *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return fmt.Errorf("%w: day_of_month must be 1..31", errInvalidArgument)
		}
	}
	return nil
}
