package logger

import (
	"context"
	"fmt"
	"testing"
)

// Engines log on nearly every path, so the package must work before
// Init runs (tests, one-off tools).
func TestHelpersWorkWithoutInit(t *testing.T) {
	saved := globalLogger
	globalLogger = nil
	defer func() { globalLogger = saved }()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("logging without Init panicked: %v", r)
		}
	}()

	ctx := context.Background()
	Debug(ctx, "debug message", "k", "v")
	Info(ctx, "info message")
	Warn(ctx, "warn message")
	ErrorWithErr(ctx, "error message", fmt.Errorf("boom"))
	Trade(ctx, "s1", "buy", 0.006, "wallet", "sig")
}

func TestSkipVariantsWorkWithoutInit(t *testing.T) {
	saved := globalLogger
	globalLogger = nil
	defer func() { globalLogger = saved }()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("skip-variant logging without Init panicked: %v", r)
		}
	}()

	ctx := context.Background()
	DebugSkip(ctx, 1, "debug message")
	InfoSkip(ctx, 1, "info message")
	ErrorWithErrSkip(ctx, 1, "error message", fmt.Errorf("boom"))
}

func TestOperationTimerCompletesWithoutTracing(t *testing.T) {
	ctx := context.Background()

	timer := StartOperation(ctx, "test.operation", "key", "value")
	if timer.GetContext() == nil {
		t.Fatal("expected a usable context from the timer")
	}
	timer.End("result", "ok")

	failed := StartOperation(ctx, "test.operation")
	failed.EndWithError(fmt.Errorf("boom"))
}
