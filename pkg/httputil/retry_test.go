package httputil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errFlaky = errors.New("502 bad gateway")

func TestRetryableMark(t *testing.T) {
	if Retryable(nil) != nil {
		t.Fatal("Retryable(nil) != nil")
	}
	marked := Retryable(errFlaky)
	if marked.Error() != errFlaky.Error() {
		t.Errorf("Error() = %q", marked.Error())
	}
	if !errors.Is(marked, errFlaky) {
		t.Error("mark hides the cause")
	}
	if !IsRetryable(fmt.Errorf("post: %w", marked)) {
		t.Error("mark not found through wrapping")
	}
	if IsRetryable(errFlaky) {
		t.Error("unmarked error reported retryable")
	}
}

func TestRetryAttempts(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failures  int
		mark      bool
		wantCalls int
		wantErr   bool
	}{
		{"first call succeeds", 3, 0, true, 1, false},
		{"recovers", 3, 2, true, 3, false},
		{"gives up", 2, 9, true, 2, true},
		{"unmarked is final", 4, 9, false, 1, true},
		{"non-positive attempts", -1, 9, true, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.mark {
					return Retryable(errFlaky)
				}
				return errFlaky
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && IsRetryable(err) {
				t.Error("returned error still carries the retry mark")
			}
		})
	}
}

func TestRetryStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return Retryable(errFlaky)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
