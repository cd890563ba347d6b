package bulk

import (
	"context"
	"errors"
	"testing"
)

func TestProcessContinuesPastFailures(t *testing.T) {
	items := []string{"a", "bad", "c"}
	var seen []string

	result := Process(context.Background(), items,
		func(s string) string { return s },
		func(ctx context.Context, s string) error {
			seen = append(seen, s)
			if s == "bad" {
				return errors.New("rejected")
			}
			return nil
		})

	if len(seen) != 3 {
		t.Fatalf("processed %d items, want all 3", len(seen))
	}
	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Errorf("result = %d/%d, want 2 successes and 1 failure", result.SuccessCount, result.FailureCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].ItemId != "bad" {
		t.Errorf("errors = %+v, want one entry for item bad", result.Errors)
	}
	if result.Errors[0].Message != "rejected" {
		t.Errorf("error message = %q, want %q", result.Errors[0].Message, "rejected")
	}
}

func TestProcessPreservesInputOrder(t *testing.T) {
	items := []int{3, 1, 2}
	var order []int

	result := Process(context.Background(), items,
		func(i int) string { return "" },
		func(ctx context.Context, i int) error {
			order = append(order, i)
			return nil
		})

	if result.SuccessCount != 3 {
		t.Fatalf("SuccessCount = %d, want 3", result.SuccessCount)
	}
	for i, want := range items {
		if order[i] != want {
			t.Fatalf("processing order = %v, want %v", order, items)
		}
	}
}

func TestProcessEmptyInput(t *testing.T) {
	result := Process(context.Background(), nil,
		func(s string) string { return s },
		func(ctx context.Context, s string) error { return nil })

	if result.SuccessCount != 0 || result.FailureCount != 0 || result.Errors != nil {
		t.Errorf("result = %+v, want zero value", result)
	}
}
