package quest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ConserveLee/questr/internal/config"
	"github.com/ConserveLee/questr/internal/constants"
	"github.com/ConserveLee/questr/internal/engine/vision"
)

type spinResult int

const (
	spinOK spinResult = iota
	spinSkip
	spinRepeat
)

func (r *Runner) handlePerformingActionState(ctx context.Context) error {
	wp := r.current()
	for attempt := 1; ; attempt++ {
		if r.opts.ActionAttempts > 0 && attempt > r.opts.ActionAttempts {
			return fmt.Errorf("%w: waypoint %d failed %d spin attempts", ErrActionExhausted, wp.Ordinal, r.opts.ActionAttempts)
		}

		res, err := r.spinStop(ctx)
		if err != nil {
			return err
		}

		switch res {
		case spinOK:
			r.progress.Actions++
			r.visit.Outcome = OutcomeSpun
			r.log.Info("Spun waypoint %d (%d/%d toward the quest).", wp.Ordinal, r.progress.Actions, r.opts.Quota)
			r.afterAction()
			return nil
		case spinSkip:
			r.visit.Outcome = OutcomeAlreadySpun
			if r.opts.Action == config.ActionTrade {
				r.progress.Actions++
				r.log.Info("Waypoint %d already spun, counted toward the trade quest (%d/%d).", wp.Ordinal, r.progress.Actions, r.opts.Quota)
				r.afterAction()
				return nil
			}
			r.setState(StateAwaitingCooldown)
			return nil
		}

		r.log.Warn("Spin attempt %d at waypoint %d did not stick, retrying.", attempt, wp.Ordinal)
		if err := r.clock.Sleep(ctx, constants.RepeatWait); err != nil {
			return err
		}
		if err := r.exec.Swipe(ctx, config.RegionSpinSwipe, constants.RecoverySwipeDuration); err != nil {
			return r.external(ctx, "recovery swipe", err)
		}
	}
}

func (r *Runner) afterAction() {
	if r.progress.Actions >= r.opts.Quota {
		r.setState(StateClaiming)
		return
	}
	r.setState(StateAwaitingCooldown)
}

// spinStop opens the stop, spins it if the bar says it is still unspun and
// checks the bar again.
func (r *Runner) spinStop(ctx context.Context) (spinResult, error) {
	r.log.Info("Clicking stop")
	if err := r.exec.Tap(ctx, config.RegionPokestop); err != nil {
		return 0, r.external(ctx, "open stop", err)
	}

	reading, err := r.readBar(ctx)
	if errors.Is(err, vision.ErrAmbiguousHue) {
		r.log.Error("We don't seem to be on the correct place: %v", err)
		return spinRepeat, nil
	}
	if err != nil {
		return 0, err
	}
	if reading.Affinity == vision.CloserToB {
		r.log.Info("We already spun this stop (H %d), leaving.", reading.Hue)
		if err := r.exec.Tap(ctx, config.RegionCloseButton); err != nil {
			return 0, r.external(ctx, "close stop", err)
		}
		return spinSkip, nil
	}

	r.log.Info("Stop not spun yet (H %d, %d%% confidence).", reading.Hue, reading.Confidence())
	if err := r.waitOutCooldown(ctx); err != nil {
		return 0, err
	}

	r.log.Info("Spinning...")
	if err := r.exec.Swipe(ctx, config.RegionSpinSwipe, constants.SpinSwipeDuration); err != nil {
		return 0, r.external(ctx, "spin", err)
	}
	reading, err = r.readBar(ctx)
	if err != nil && !errors.Is(err, vision.ErrAmbiguousHue) {
		return 0, err
	}
	if err := r.exec.Tap(ctx, config.RegionCloseButton); err != nil {
		return 0, r.external(ctx, "close stop", err)
	}
	if err == nil && reading.Affinity == vision.CloserToB {
		r.log.Info("All good! Leaving stop.")
		return spinOK, nil
	}
	r.log.Info("Doesn't look like the spin worked.")
	return spinRepeat, nil
}

// readBar samples the stop's bottom bar hue, sampling again while the read
// is a tie.
func (r *Runner) readBar(ctx context.Context) (vision.HueReading, error) {
	var lastErr error
	for i := 0; i <= r.opts.HueRetries; i++ {
		if i > 0 {
			if err := r.clock.Sleep(ctx, constants.HueSampleInterval); err != nil {
				return vision.HueReading{}, err
			}
		}
		img, err := r.ctrl.Screenshot(ctx)
		if err != nil {
			return vision.HueReading{}, r.external(ctx, "screenshot", err)
		}
		reading, err := r.vision.HueOf(img, config.RegionStopBar, r.opts.HueUnspun, r.opts.HueSpun)
		if err == nil {
			r.log.Debug("[Hue] H %d (%d from %d | %d from %d), confidence %d%%",
				reading.Hue, reading.DistA, r.opts.HueUnspun, reading.DistB, r.opts.HueSpun, reading.Confidence())
			return reading, nil
		}
		if !errors.Is(err, vision.ErrAmbiguousHue) {
			return reading, err
		}
		r.log.Warn("Ambiguous bar read (%v), sampling again.", err)
		lastErr = err
	}
	return vision.HueReading{}, lastErr
}

// waitOutCooldown sleeps until the cooldown deadline, halving the remaining
// time on each poll down to a floor.
func (r *Runner) waitOutCooldown(ctx context.Context) error {
	for {
		remaining := r.progress.CooldownEnds.Sub(r.clock.Now())
		if remaining <= 0 {
			return nil
		}
		half := remaining / 2
		if half < constants.CooldownPollMinimum {
			half = constants.CooldownPollMinimum
		}
		r.log.Info("%v of cooldown left, checking again in %v.", remaining.Round(time.Second), half.Round(time.Second))
		if err := r.clock.Sleep(ctx, half); err != nil {
			return err
		}
	}
}
