// Package quest drives the route: teleport to each waypoint, clear any
// dialog, perform the quest action, claim finished quests and wait out the
// travel cooldown before the next hop.
package quest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/ConserveLee/questr/internal/config"
	"github.com/ConserveLee/questr/internal/constants"
	"github.com/ConserveLee/questr/internal/cooldown"
	"github.com/ConserveLee/questr/internal/engine/action"
	"github.com/ConserveLee/questr/internal/engine/clock"
	"github.com/ConserveLee/questr/internal/engine/device"
	"github.com/ConserveLee/questr/internal/engine/vision"
	"github.com/ConserveLee/questr/internal/geo"
)

var (
	// ErrScreenUnstable means dialogs kept coming back until the retry policy ran out.
	ErrScreenUnstable = errors.New("screen did not settle on the world view")
	// ErrActionExhausted means a waypoint or the claim screen used up its attempts.
	ErrActionExhausted = errors.New("attempts exhausted")
	// ErrExternalCall wraps device and OCR failures. The run stops on it.
	ErrExternalCall = errors.New("external call failed")
)

// State defines the current phase of the run
type State int

const (
	StateTeleporting State = iota
	StateAwaitingStableWorld
	StatePerformingAction
	StateClaiming
	StateAwaitingCooldown
	StateDone
)

func (s State) String() string {
	switch s {
	case StateTeleporting:
		return "Teleporting"
	case StateAwaitingStableWorld:
		return "AwaitingStableWorld"
	case StatePerformingAction:
		return "PerformingAction"
	case StateClaiming:
		return "Claiming"
	case StateAwaitingCooldown:
		return "AwaitingCooldown"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is how a waypoint ended.
type Outcome int

const (
	OutcomeSpun Outcome = iota + 1
	OutcomeAlreadySpun
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSpun:
		return "spun"
	case OutcomeAlreadySpun:
		return "already_spun"
	default:
		return "none"
	}
}

// Logger is the logging surface the runner needs.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// RetryPolicy bounds a polling loop. MaxAttempts <= 0 polls forever.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Interval)
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

// Progress is the runner's mutable position in the route.
type Progress struct {
	RunID        string
	Index        int // into the waypoint list
	Actions      int // toward the quota
	Claims       int // claim sequences entered
	CooldownEnds time.Time
}

// Visit is reported to the Recorder when a waypoint is finished.
type Visit struct {
	RunID        string
	Waypoint     geo.Waypoint
	Outcome      Outcome
	Actions      int
	Rewards      int
	NextKm       float64
	Wait         time.Duration
	CooldownEnds time.Time
	At           time.Time
}

// Recorder persists finished waypoints.
type Recorder interface {
	RecordVisit(ctx context.Context, v Visit) error
}

// Options configure a run.
type Options struct {
	Action         config.ActionKind
	Quota          int
	HueUnspun      uint8
	HueSpun        uint8
	StableWorld    RetryPolicy
	ActionAttempts int
	HueRetries     int
	ClaimAttempts  int
	Table          cooldown.Table
	Trade          func(ctx context.Context) error
	Recorder       Recorder
	RunID          string
}

// DefaultOptions returns the standard spin run with a quota of one.
func DefaultOptions() Options {
	return Options{
		Action:    config.ActionSpin,
		Quota:     1,
		HueUnspun: constants.HueUnspun,
		HueSpun:   constants.HueSpun,
		StableWorld: RetryPolicy{
			MaxAttempts: constants.StableWorldMaxAttempts,
			Interval:    constants.StableWorldInterval,
		},
		ActionAttempts: constants.ActionMaxAttempts,
		HueRetries:     constants.HueSampleRetries,
		ClaimAttempts:  constants.ClaimMaxAttempts,
		Table:          cooldown.Default,
	}
}

// Runner is the quest state machine. It is driven by a single goroutine.
type Runner struct {
	state State
	opts  Options

	ctrl   device.Controller
	exec   *action.Executor
	vision *vision.Classifier
	clock  clock.Clock
	log    Logger

	waypoints []geo.Waypoint
	progress  Progress
	visit     Visit
}

// NewRunner wires a runner over a device, a region layout and an OCR engine.
func NewRunner(ctrl device.Controller, layout *config.Layout, ocr vision.TextExtractor, clk clock.Clock, log Logger, opts Options) *Runner {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Table == nil {
		opts.Table = cooldown.Default
	}
	if opts.Quota < 1 {
		opts.Quota = 1
	}
	exec := action.NewExecutor(layout, ctrl, clk)
	exec.SetDebugFunc(log.Debug)
	classifier := vision.NewClassifier(layout, ocr)
	classifier.SetDebugFunc(log.Debug)

	return &Runner{
		state:    StateDone,
		opts:     opts,
		ctrl:     ctrl,
		exec:     exec,
		vision:   classifier,
		clock:    clk,
		log:      log,
		progress: Progress{RunID: opts.RunID},
	}
}

// State returns the current state.
func (r *Runner) State() State { return r.state }

// Progress returns a copy of the run progress.
func (r *Runner) Progress() Progress { return r.progress }

// Resume carries quota progress and a running cooldown over from an earlier
// run. The next unspun stop waits for the cooldown before spinning.
func (r *Runner) Resume(actions int, cooldownEnds time.Time) {
	r.progress.Actions = actions
	r.progress.CooldownEnds = cooldownEnds
}

func (r *Runner) setState(s State) {
	if s != r.state {
		r.log.Debug("[Runner] %s -> %s", r.state, s)
	}
	r.state = s
}

// Run visits waypoints in order. Running out of waypoints is the normal
// end of a run and returns nil.
func (r *Runner) Run(ctx context.Context, waypoints []geo.Waypoint) error {
	if err := r.opts.Table.Validate(); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	r.waypoints = waypoints
	r.progress.Index = 0
	if len(waypoints) == 0 {
		r.log.Warn("No waypoints to visit.")
		r.setState(StateDone)
		return nil
	}

	r.log.Info("Run %s started: %d waypoints, %s x%d per claim.", r.opts.RunID, len(waypoints), r.opts.Action, r.opts.Quota)
	r.setState(StateTeleporting)
	for r.state != StateDone {
		if err := r.processState(ctx); err != nil {
			return err
		}
	}
	r.log.Info("We ran out of coordinates. Run %s finished.", r.opts.RunID)
	return nil
}

func (r *Runner) processState(ctx context.Context) error {
	switch r.state {
	case StateTeleporting:
		return r.handleTeleportingState(ctx)
	case StateAwaitingStableWorld:
		return r.handleAwaitingStableWorldState(ctx)
	case StatePerformingAction:
		return r.handlePerformingActionState(ctx)
	case StateClaiming:
		return r.handleClaimingState(ctx)
	case StateAwaitingCooldown:
		return r.handleAwaitingCooldownState(ctx)
	default:
		return fmt.Errorf("runner in unexpected state %s", r.state)
	}
}

func (r *Runner) current() geo.Waypoint {
	return r.waypoints[r.progress.Index]
}

func (r *Runner) handleTeleportingState(ctx context.Context) error {
	wp := r.current()
	r.log.Warn("Teleporting to waypoint %d (%d/%d), coords: %s", wp.Ordinal, r.progress.Index+1, len(r.waypoints), wp.Coordinate)

	cmd := fmt.Sprintf(constants.TeleportCommand, wp.Lat, wp.Lon)
	if _, err := r.ctrl.Run(ctx, cmd); err != nil {
		return r.external(ctx, "teleport", err)
	}
	r.visit = Visit{RunID: r.opts.RunID, Waypoint: wp}

	if err := r.clock.Sleep(ctx, constants.TeleportSettleDelay); err != nil {
		return err
	}
	r.setState(StateAwaitingStableWorld)
	return nil
}

func (r *Runner) handleAwaitingStableWorldState(ctx context.Context) error {
	samples := 0
	op := func() error {
		samples++
		img, err := r.ctrl.Screenshot(ctx)
		if err != nil {
			return backoff.Permanent(r.external(ctx, "screenshot", err))
		}
		st, err := r.vision.Classify(ctx, img)
		if err != nil {
			return backoff.Permanent(r.external(ctx, "classify screen", err))
		}
		if st == vision.StateWorld {
			return nil
		}
		if err := r.dismiss(ctx, st); err != nil {
			return backoff.Permanent(r.external(ctx, "dismiss "+st.String(), err))
		}
		return fmt.Errorf("%w: still %s", ErrScreenUnstable, st)
	}
	notify := func(err error, next time.Duration) {
		r.log.Info("We still seem to be loading (%v), sampling again in %v", err, next)
	}

	err := backoff.RetryNotifyWithTimer(op, r.opts.StableWorld.backOff(ctx), notify, r.clock.NewTimer())
	if err != nil {
		if errors.Is(err, ErrScreenUnstable) {
			return fmt.Errorf("waypoint %d after %d samples: %w", r.current().Ordinal, samples, err)
		}
		return err
	}
	r.log.Debug("[Runner] World view after %d samples", samples)
	r.setState(StatePerformingAction)
	return nil
}

// dismiss taps through the overlay st.
func (r *Runner) dismiss(ctx context.Context, st vision.ScreenState) error {
	switch st {
	case vision.StatePassengerDialog:
		r.log.Error("Passenger warning on screen, confirming it.")
		return r.exec.Tap(ctx, config.RegionPassengerBox)
	case vision.StateEggDialog:
		r.log.Error("An egg just hatched, closing the animation.")
		// any tap advances the dialog; the passenger box is a safe spot
		for i := 0; i < 2; i++ {
			if err := r.exec.Tap(ctx, config.RegionPassengerBox); err != nil {
				return err
			}
		}
		if err := r.clock.Sleep(ctx, constants.EggHatchAnimationWait); err != nil {
			return err
		}
		return r.exec.Tap(ctx, config.RegionCloseButton)
	case vision.StateMenu:
		r.log.Error("Looks like we went onto the menu, closing it.")
		return r.exec.Tap(ctx, config.RegionCloseButton)
	default:
		return nil
	}
}

func (r *Runner) handleAwaitingCooldownState(ctx context.Context) error {
	idx := r.progress.Index
	if idx+1 >= len(r.waypoints) {
		r.record(ctx)
		r.setState(StateDone)
		return nil
	}

	if r.visit.Outcome == OutcomeSpun {
		cur, next := r.waypoints[idx], r.waypoints[idx+1]
		km := geo.Distance(cur.Coordinate, next.Coordinate)
		minutes, ok := r.opts.Table.Minutes(km)
		if !ok {
			r.log.Warn("Waypoint %d is the same spot as %d, only the minimum wait applies.", next.Ordinal, cur.Ordinal)
		}
		wait := cooldown.Wait(minutes)
		r.progress.CooldownEnds = r.clock.Now().Add(wait)
		r.visit.NextKm = km
		r.visit.Wait = wait
		r.visit.CooldownEnds = r.progress.CooldownEnds
		r.record(ctx)

		r.log.Info("Next stop is %.2f km away: %.1f min cooldown, waiting %v.", km, minutes, wait.Round(time.Second))
		if err := r.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	} else {
		r.record(ctx)
	}

	r.progress.Index++
	r.setState(StateTeleporting)
	return nil
}

func (r *Runner) record(ctx context.Context) {
	if r.opts.Recorder == nil {
		return
	}
	v := r.visit
	v.Actions = r.progress.Actions
	v.At = r.clock.Now()
	if err := r.opts.Recorder.RecordVisit(ctx, v); err != nil {
		r.log.Error("Failed to record waypoint %d: %v", v.Waypoint.Ordinal, err)
	}
}

// external marks err as a failed device or OCR call. Configuration errors
// and cancellation pass through unchanged.
func (r *Runner) external(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, config.ErrInvalidConfig) || errors.Is(err, ErrExternalCall) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrExternalCall, err)
}
