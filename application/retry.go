package application

import (
	"context"
	"errors"
	"time"

	"rewards/domain/entities"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// RetryPolicy bounds how often a unit of work is replayed after a transaction conflict
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      maxRetries,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// withUnitOfWork runs fn inside a fresh unit of work and commits it.
// Attempts that fail with ErrTransactionConflict are rolled back and replayed from scratch.
func withUnitOfWork[T any](ctx context.Context, b *base, operation string, fn func(uow UnitOfWork) (T, error)) (T, error) {
	start := time.Now()
	attempt := 0

	result, err := backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		value, err := runOnce(ctx, b.uowFactory, fn)
		if err != nil && !errors.Is(err, entities.ErrTransactionConflict) {
			return value, backoff.Permanent(err)
		}
		return value, err
	}, b.retry.backOff(ctx), func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"operation": operation,
			"attempt":   attempt,
			"wait":      wait,
		}).WithError(err).Warn("Transaction conflict, retrying")
		b.metrics.RecordRetry(ctx, operation)
	})

	b.metrics.RecordOperation(ctx, operation, time.Since(start), err)
	return result, err
}

func runOnce[T any](ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) (T, error)) (T, error) {
	var zero T

	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return zero, err
	}
	defer uow.Rollback()

	result, err := fn(uow)
	if err != nil {
		return zero, err
	}

	if err := uow.Commit(); err != nil {
		return zero, err
	}
	return result, nil
}
