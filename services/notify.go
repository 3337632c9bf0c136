package services

import (
	"context"
	"errors"
)

// OrderNotifier is told about every order the API accepted.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, r Receipt) error
}

// Notifiers fans one order out to several notifiers; every notifier runs
// even when an earlier one fails.
type Notifiers []OrderNotifier

func (ns Notifiers) OrderPlaced(ctx context.Context, r Receipt) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.OrderPlaced(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
