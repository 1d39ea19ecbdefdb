// Package repository stores reconciled master lists per view.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/licmaster/internal/domain/model"
	"github.com/okian/licmaster/internal/domain/types"
)

// Store provides read/write access to master lists. Each view holds one
// complete list that is swapped as a whole.
type Store interface {
	// Replace swaps the list of view for rows. Rows are kept in the given order.
	Replace(ctx context.Context, view types.View, rows []model.MasterRecord) error

	// ReplaceAll swaps every list in lists at once. Either all of them are
	// replaced or none is.
	ReplaceAll(ctx context.Context, lists map[types.View][]model.MasterRecord) error

	// Identity returns every row of one identity.
	// Returns ErrNotFound if the key is unknown in view.
	Identity(ctx context.Context, view types.View, key string) ([]model.MasterRecord, error)

	// Page returns up to limit rows starting at offset, and the total row count.
	Page(ctx context.Context, view types.View, offset, limit int) ([]model.MasterRecord, int, error)

	// All returns the complete list of view.
	All(ctx context.Context, view types.View) ([]model.MasterRecord, error)

	// Count returns the number of rows in view.
	Count(ctx context.Context, view types.View) (int, error)

	Close() error
}

func checkView(view types.View) error {
	if _, ok := types.ParseView(string(view)); !ok || view == "" {
		return fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	return nil
}

func checkViews(lists map[types.View][]model.MasterRecord) error {
	for view := range lists {
		if err := checkView(view); err != nil {
			return err
		}
	}
	return nil
}

func checkPage(offset, limit int) error {
	if offset < 0 || limit <= 0 {
		return fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidPage, offset, limit)
	}
	return nil
}
