package db

import (
	"context"
	"errors"
	"testing"
)

func TestError_WrapsOperation(t *testing.T) {
	err := error(&Error{Op: OpHSet, Err: context.DeadlineExceeded})

	if err.Error() != "HSET: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected Unwrap to expose the cause")
	}
	var dbErr *Error
	if !errors.As(err, &dbErr) || dbErr.Op != OpHSet {
		t.Errorf("errors.As failed: %v", err)
	}
}
