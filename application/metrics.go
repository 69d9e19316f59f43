package application

import (
	"context"
	"time"
)

// OperationMetrics records how application operations behave
type OperationMetrics interface {
	RecordRetry(ctx context.Context, operation string)
	RecordOperation(ctx context.Context, operation string, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordRetry(context.Context, string) {}

func (noopMetrics) RecordOperation(context.Context, string, time.Duration, error) {}
