package main

import (
	"context"
	"fmt"
)

// addSavings moves money into a goal. There is no upper clamp: saving past the
// target is valid over-saving.
func addSavings(ctx context.Context, s Store, userID, goalID string, amount float64) (*Goal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errInvalidArgument)
	}
	g, err := s.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	g.SavedAmount += amount
	if err := s.UpdateGoalSaved(ctx, userID, goalID, g.SavedAmount); err != nil {
		return nil, fmt.Errorf("add savings: %w", err)
	}
	return g, nil
}

// withdrawSavings takes money back out of a goal. Withdrawing more than is
// saved fails without touching the record; the result is clamped at zero.
func withdrawSavings(ctx context.Context, s Store, userID, goalID string, amount float64) (*Goal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errInvalidArgument)
	}
	g, err := s.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if amount > g.SavedAmount {
		return nil, errInsufficientFunds
	}
	g.SavedAmount -= amount
	if g.SavedAmount < 0 {
		g.SavedAmount = 0
	}
	if err := s.UpdateGoalSaved(ctx, userID, goalID, g.SavedAmount); err != nil {
		return nil, fmt.Errorf("withdraw savings: %w", err)
	}
	return g, nil
}

func validateGoal(g *Goal) error {
	if g.Name == "" {
		return fmt.Errorf("%w: name is required", errInvalidArgument)
	}
	if g.TargetAmount <= 0 {
		return fmt.Errorf("%w: target_amount must be positive", errInvalidArgument)
	}
	if g.SavedAmount < 0 {
		return fmt.Errorf("%w: saved_amount must be non-negative", errInvalidArgument)
	}
	return nil
}
