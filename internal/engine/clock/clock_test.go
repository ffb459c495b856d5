package clock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_SleepAdvances(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewFake(start)

	require.NoError(t, c.Sleep(context.Background(), 10*time.Second))
	c.Advance(time.Minute)
	require.NoError(t, c.Sleep(context.Background(), 0))

	assert.Equal(t, start.Add(70*time.Second), c.Now())
	assert.Equal(t, []time.Duration{10 * time.Second, 0}, c.Sleeps())
	assert.Equal(t, 10*time.Second, c.Slept())
}

func TestFake_SleepHonorsCancel(t *testing.T) {
	c := NewFake(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Second), context.Canceled)
	assert.Empty(t, c.Sleeps())
}

func TestFake_DrivesBackoff(t *testing.T) {
	c := NewFake(time.Time{})
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), 3)

	calls := 0
	err := backoff.RetryNotifyWithTimer(func() error {
		calls++
		return errors.New("not yet")
	}, b, nil, c.NewTimer())

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 6*time.Second, c.Slept())
}

func TestReal_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Real{}.Sleep(ctx, time.Hour), context.Canceled)
}
