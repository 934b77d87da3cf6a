package retry

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/code-escrow/pkg/retry/backoff"
)

func TestRetry(t *testing.T) {
	sleeperImpl = &testSleeper{}

	retriable := errors.New("retriable")

	attempts, err := Retry(func() error { return nil }, Limit(5), RetriableErrors(retriable))
	assert.NoError(t, err)
	assert.EqualValues(t, 1, attempts)

	attempts, err = Retry(func() error { return errors.New("unknown") }, Limit(5), RetriableErrors(retriable))
	assert.EqualError(t, err, "unknown")
	assert.EqualValues(t, 1, attempts)

	attempts, err = Retry(func() error { return retriable }, Limit(5), RetriableErrors(retriable))
	assert.Equal(t, retriable, err)
	assert.EqualValues(t, 5, attempts)

	var calls int
	attempts, err = Retry(
		func() error {
			calls++
			if calls < 3 {
				return retriable
			}
			return nil
		},
		RetriableErrors(retriable),
		Backoff(backoff.Constant(time.Millisecond), time.Second),
	)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, sleeperImpl.(*testSleeper).sleepTimes)
}

func TestRealSleeper(t *testing.T) {
	sleeperImpl = &realSleeper{}

	start := time.Now()
	n, err := Retry(func() error { return errors.New("err") },
		Limit(2),
		Backoff(backoff.Constant(100*time.Millisecond), 100*time.Millisecond),
	)

	assert.Error(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, 100*time.Millisecond <= time.Since(start))
}
