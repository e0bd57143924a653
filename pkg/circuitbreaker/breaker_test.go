package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testBreaker(timeout time.Duration) *CircuitBreaker {
	return New("test", Config{
		MaxRequests:      2,
		Timeout:          timeout,
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Logger:           zap.NewNop(),
	})
}

func TestExecute_StaysClosedOnSuccess(t *testing.T) {
	cb := testBreaker(time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := cb.Execute(ctx, func() error { return nil }); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}
	if cb.State() != StateClosed {
		t.Errorf("state: got %v, want closed", cb.State())
	}
}

func TestExecute_OpensAfterThreshold(t *testing.T) {
	cb := testBreaker(time.Minute)
	ctx := context.Background()
	failure := errors.New("boom")

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, func() error { return failure })
	}

	if cb.State() != StateOpen {
		t.Fatalf("state: got %v, want open", cb.State())
	}

	err := cb.Execute(ctx, func() error {
		t.Error("function must not run while open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err: got %v, want ErrCircuitOpen", err)
	}
}

func TestExecute_RecoversThroughHalfOpen(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, func() error { return errors.New("boom") })
	}
	if cb.State() != StateOpen {
		t.Fatalf("state: got %v, want open", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	// Two consecutive successes in half-open close the circuit.
	for i := 0; i < 2; i++ {
		if err := cb.Execute(ctx, func() error { return nil }); err != nil {
			t.Fatalf("half-open execute %d: %v", i, err)
		}
	}
	if cb.State() != StateClosed {
		t.Errorf("state: got %v, want closed", cb.State())
	}
}

func TestExecute_ReopensOnHalfOpenFailure(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, func() error { return errors.New("boom") })
	}

	time.Sleep(20 * time.Millisecond)

	cb.Execute(ctx, func() error { return errors.New("still broken") })
	if cb.State() != StateOpen {
		t.Errorf("state: got %v, want open after half-open failure", cb.State())
	}
}
