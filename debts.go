package main

import (
	"context"
	"fmt"
)

func validateDebt(d *Debt) error {
	if d.PersonName == "" {
		return fmt.Errorf("%w: person_name is required", errInvalidArgument)
	}
	if d.Amount < 0 {
		return fmt.Errorf("%w: amount must be non-negative", errInvalidArgument)
	}
	if !validDirection(d.Direction) {
		return fmt.Errorf("%w: bad direction %q", errInvalidArgument, d.Direction)
	}
	return nil
}

// settleDebt flips the one-way paid flag. A paid debt simply stops
// contributing to the balance; no repayment transaction is emitted. Settling
// an already-paid debt is a no-op.
func settleDebt(ctx context.Context, s Store, userID, debtID string) (*Debt, error) {
	d, err := s.GetDebt(ctx, userID, debtID)
	if err != nil {
		return nil, err
	}
	if !d.IsPaid {
		if err := s.MarkDebtPaid(ctx, userID, debtID); err != nil {
			return nil, fmt.Errorf("settle debt: %w", err)
		}
		d.IsPaid = true
	}
	return d, nil
}
