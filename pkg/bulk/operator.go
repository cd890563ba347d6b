// Package bulk runs an operation over a batch of items, collecting
// per-item failures instead of aborting. Admin batch endpoints use it so
// one bad item never blocks the rest of the batch.
package bulk

import "context"

type ItemError struct {
	ItemId  string `json:"item_id"`
	Message string `json:"message"`
}

type Result struct {
	SuccessCount int         `json:"success_count"`
	FailureCount int         `json:"failure_count"`
	Errors       []ItemError `json:"errors,omitempty"`
}

// Process applies op to each item in input order. A failed item is
// recorded and processing continues; the returned result always accounts
// for every item.
func Process[T any](ctx context.Context, items []T, id func(T) string, op func(ctx context.Context, item T) error) Result {
	result := Result{}
	for _, item := range items {
		if err := op(ctx, item); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, ItemError{
				ItemId:  id(item),
				Message: err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}
	return result
}
