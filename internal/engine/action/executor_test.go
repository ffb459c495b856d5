package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConserveLee/questr/internal/config"
	"github.com/ConserveLee/questr/internal/engine/clock"
	"github.com/ConserveLee/questr/internal/engine/device/devicetest"
)

const layoutDoc = `
locations:
  pokestop: [540, 1200]
  x_button: [540, 2100]
  spin_swipe: [200, 1000, 900, 1010]
  claim_reward_box: [300, 1700, 801, 1750]
waits:
  pokestop: 1.5
  x_button: 0
  spin_swipe: 0.25
  keycode_back: 2
`

func newExecutor(t *testing.T) (*Executor, *devicetest.Fake, *clock.Fake) {
	t.Helper()
	l, err := config.Parse([]byte(layoutDoc))
	require.NoError(t, err)
	dev := devicetest.New(1080, 2400)
	clk := clock.NewFake(time.Unix(0, 0))
	return NewExecutor(l, dev, clk), dev, clk
}

func TestTap(t *testing.T) {
	e, dev, clk := newExecutor(t)
	ctx := context.Background()

	require.NoError(t, e.Tap(ctx, config.RegionPokestop))
	require.NoError(t, e.Tap(ctx, config.RegionCloseButton))
	require.NoError(t, e.Tap(ctx, config.RegionClaimRewardBox))

	assert.Equal(t, []string{"tap 540 1200", "tap 540 2100", "tap 550 1725"}, dev.Calls())
	// zero waits are not slept
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, clk.Sleeps())
}

func TestSwipe(t *testing.T) {
	e, dev, clk := newExecutor(t)
	require.NoError(t, e.Swipe(context.Background(), config.RegionSpinSwipe, 300*time.Millisecond))

	assert.Equal(t, []string{"swipe 200 1000 900 1010 300ms"}, dev.Calls())
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, clk.Sleeps())
}

func TestKey_WaitMatchesCaseInsensitively(t *testing.T) {
	e, dev, clk := newExecutor(t)
	require.NoError(t, e.Key(context.Background(), config.KeyBack))

	assert.Equal(t, []string{"key KEYCODE_BACK"}, dev.Calls())
	assert.Equal(t, []time.Duration{2 * time.Second}, clk.Sleeps())
}

func TestConfigErrors(t *testing.T) {
	e, dev, _ := newExecutor(t)
	ctx := context.Background()

	err := e.Tap(ctx, config.RegionQuestButton)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	// a point cannot be swiped
	err = e.Swipe(ctx, config.RegionPokestop, time.Second)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	assert.Empty(t, dev.Calls())
}

func TestDeviceErrorsPropagate(t *testing.T) {
	e, dev, clk := newExecutor(t)
	broken := errors.New("device offline")
	dev.OnCall = func(string) (string, error) { return "", broken }

	err := e.Tap(context.Background(), config.RegionPokestop)
	require.Error(t, err)
	assert.ErrorIs(t, err, broken)
	assert.Contains(t, err.Error(), "tap pokestop")
	assert.Empty(t, clk.Sleeps())
}

func TestCancelledWait(t *testing.T) {
	e, _, _ := newExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Tap(ctx, config.RegionPokestop)
	assert.ErrorIs(t, err, context.Canceled)
}
