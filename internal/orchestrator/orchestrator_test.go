package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func upper(ctx context.Context, s string) (string, error) {
	return strings.ToUpper(s), nil
}

func TestOrchestrator_New_Defaults(t *testing.T) {
	o := New(upper, OrchestratorConfig{})

	if o.config.Concurrency != 1 {
		t.Errorf("expected Concurrency=1, got %d", o.config.Concurrency)
	}
}

func TestOrchestrator_Execute_KeepsInputOrder(t *testing.T) {
	o := New(func(ctx context.Context, n int) (int, error) {
		// later items finish first
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * n, nil
	}, OrchestratorConfig{Concurrency: 4, Timeout: 5 * time.Second})

	result := o.Execute(context.Background(), []int{1, 2, 3, 4, 5, 6})

	if result.Succeeded != 6 || result.Failed != 0 {
		t.Errorf("expected 6 succeeded, got %d/%d", result.Succeeded, result.Failed)
	}
	for i, res := range result.Results {
		if res.Index != i || res.Value != (i+1)*(i+1) {
			t.Errorf("result %d = %+v", i, res)
		}
	}
}

func TestOrchestrator_Execute_WithFailures(t *testing.T) {
	boom := errors.New("boom")
	o := New(func(ctx context.Context, s string) (string, error) {
		if s == "bad" {
			return "", boom
		}
		return s, nil
	}, OrchestratorConfig{Concurrency: 2})

	result := o.Execute(context.Background(), []string{"a", "bad", "c"})

	if result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("expected 2 succeeded and 1 failed, got %d/%d", result.Succeeded, result.Failed)
	}
	errs := result.Errors()
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("unexpected errors %v", errs)
	}
	if !errors.Is(result.Results[1].Err, boom) {
		t.Errorf("error must stay at its item, got %+v", result.Results[1])
	}
}

func TestOrchestrator_Execute_BoundedConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	o := New(func(ctx context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	}, OrchestratorConfig{Concurrency: 3})

	o.Execute(context.Background(), make([]int, 20))

	if peak.Load() > 3 {
		t.Errorf("expected at most 3 concurrent jobs, saw %d", peak.Load())
	}
}

func TestOrchestrator_Execute_Timeout(t *testing.T) {
	o := New(func(ctx context.Context, _ int) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, OrchestratorConfig{Concurrency: 2, Timeout: 10 * time.Millisecond})

	result := o.Execute(context.Background(), []int{1, 2})

	if result.Failed != 2 {
		t.Fatalf("expected 2 failed, got %d", result.Failed)
	}
	if !errors.Is(result.Results[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", result.Results[0].Err)
	}
}

func TestOrchestrator_Execute_Cancellation(t *testing.T) {
	var calls atomic.Int32
	o := New(func(ctx context.Context, s string) (string, error) {
		calls.Add(1)
		return s, nil
	}, OrchestratorConfig{Concurrency: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := o.Execute(ctx, []string{"a", "b"})

	if calls.Load() != 0 {
		t.Errorf("expected no job to start, got %d", calls.Load())
	}
	if result.Failed != 2 || !errors.Is(result.Results[0].Err, context.Canceled) {
		t.Errorf("expected cancelled results, got %+v", result.Results)
	}
}

func TestOrchestrator_Execute_Empty(t *testing.T) {
	result := New(upper, OrchestratorConfig{}).Execute(context.Background(), nil)
	if len(result.Results) != 0 || result.Succeeded != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}
