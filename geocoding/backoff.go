package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ErrRetriesExhausted исчерпано заданное число попыток
var ErrRetriesExhausted = errors.New("geocoding retries exhausted")

// SleepFunc точка ожидания между попытками; в тестах подменяется
type SleepFunc func(ctx context.Context, d time.Duration) error

// BackoffPolicy экспоненциальная задержка между попытками
type BackoffPolicy struct {
	Initial     time.Duration
	Factor      float64
	Max         time.Duration // 0 - без ограничения
	MaxAttempts int           // 0 - повторять, пока сервис не ответит
}

// DefaultBackoffPolicy 0.8с, удвоение, без ограничений
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Initial: 800 * time.Millisecond,
		Factor:  2,
	}
}

// Delay задержка после failures-й подряд неудачи (failures >= 1)
func (p BackoffPolicy) Delay(failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}

	d := float64(p.Initial) * math.Pow(factor, float64(failures-1))
	if p.Max > 0 && d > float64(p.Max) {
		return p.Max
	}
	if d >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Sleep ожидание с учетом отмены контекста
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier повторяет операцию по политике BackoffPolicy
type Retrier struct {
	policy BackoffPolicy
	sleep  SleepFunc
	logger *slog.Logger
}

// NewRetrier создает Retrier; sleep == nil означает реальное ожидание
func NewRetrier(policy BackoffPolicy, sleep SleepFunc, logger *slog.Logger) *Retrier {
	if sleep == nil {
		sleep = Sleep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{policy: policy, sleep: sleep, logger: logger}
}

// Do выполняет fn до первого успеха
// Возвращает ошибку только при отмене контекста или исчерпании MaxAttempts
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) (int, error) {
	failures := 0
	for {
		err := fn(ctx)
		if err == nil {
			return failures, nil
		}
		failures++

		if ctxErr := ctx.Err(); ctxErr != nil {
			return failures, fmt.Errorf("%s: %w", op, ctxErr)
		}
		if r.policy.MaxAttempts > 0 && failures >= r.policy.MaxAttempts {
			return failures, fmt.Errorf("%s after %d attempts: %w: %v", op, failures, ErrRetriesExhausted, err)
		}

		delay := r.policy.Delay(failures)
		r.logger.Warn("geocoding request failed, retrying",
			"op", op,
			"attempt", failures,
			"delay", delay.String(),
			"error", err,
		)

		if err := r.sleep(ctx, delay); err != nil {
			return failures, fmt.Errorf("%s: %w", op, err)
		}
	}
}
