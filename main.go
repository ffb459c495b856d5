// Command questr walks a route of coordinates on a rooted Android phone,
// spinning stops or trading until the quest quota is met, claiming the
// reward and respecting the travel cooldown between hops.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ConserveLee/questr/internal/config"
	"github.com/ConserveLee/questr/internal/engine/clock"
	"github.com/ConserveLee/questr/internal/engine/device"
	"github.com/ConserveLee/questr/internal/engine/quest"
	"github.com/ConserveLee/questr/internal/geo"
	"github.com/ConserveLee/questr/internal/journal"
	"github.com/ConserveLee/questr/internal/logger"
	"github.com/ConserveLee/questr/internal/ocr"
)

const mirrorProcess = "scrcpy"

func main() {
	fs := pflag.NewFlagSet("questr", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	opts, err := config.LoadOptions(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logger.NewAppLogger(os.Stdout, logger.ParseLevel(opts.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Interrupted.")
			os.Exit(130)
		}
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *config.Options, log *logger.AppLogger) error {
	layout, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if err := layout.Require(opts.RequiredRegions()...); err != nil {
		return err
	}

	waypoints, err := loadWaypoints(opts.Waypoints, log)
	if err != nil {
		return err
	}

	adb := device.NewADB(opts.ADBPath, nil)
	if err := adb.SelectDevice(ctx, opts.DeviceID); err != nil {
		return err
	}
	log.Info("Using device %s.", adb.Serial())

	var ctrl device.Controller = adb
	if opts.Backend == config.BackendMirror {
		m := device.NewMirror(adb, opts.Display)
		m.SetDebugFunc(log.Debug)
		if err := m.Attach(ctx, mirrorProcess); err != nil {
			return err
		}
		ctrl = m
	}

	tess, err := ocr.NewTesseract(opts.OCRLang)
	if err != nil {
		return err
	}
	defer tess.Close()

	qopts := quest.DefaultOptions()
	qopts.Action = opts.Action
	qopts.Quota = opts.Num
	if opts.Action == config.ActionTrade && opts.TradeCmd != "" {
		qopts.Trade = hostCommand(opts.TradeCmd)
	}

	var (
		jr      *journal.Journal
		resume  journal.Checkpoint
		resumed bool
	)
	if opts.Journal != "" {
		jr, err = journal.Open(opts.Journal)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer jr.Close()
		qopts.Recorder = jr

		route := journal.RouteKey(waypoints)
		if opts.Resume {
			resume, resumed, err = jr.LastCompleted(ctx, route)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if resumed {
				before := len(waypoints)
				waypoints = journal.Remaining(waypoints, resume)
				log.Info("Resuming after waypoint %d of run %s: %d of %d waypoints left.",
					resume.Ordinal, resume.RunID, len(waypoints), before)
			} else {
				log.Info("Nothing to resume for this route, starting from the top.")
			}
		}

		runner := quest.NewRunner(ctrl, layout, tess, clock.Real{}, log, qopts)
		if resumed {
			runner.Resume(resume.Actions, resume.CooldownEnds)
		}
		if err := jr.BeginRun(ctx, route, runner.Progress().RunID, string(opts.Action), opts.Num, clock.Real{}.Now()); err != nil {
			return fmt.Errorf("journal run: %w", err)
		}
		return runner.Run(ctx, waypoints)
	}

	return quest.NewRunner(ctrl, layout, tess, clock.Real{}, log, qopts).Run(ctx, waypoints)
}

func loadWaypoints(path string, log *logger.AppLogger) ([]geo.Waypoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open waypoints: %w", err)
	}
	defer f.Close()

	waypoints, skipped, err := geo.ReadWaypoints(f)
	if err != nil {
		return nil, err
	}
	for _, le := range skipped {
		log.Warn("Skipping %s %v", path, le)
	}
	log.Info("Loaded %d waypoints from %s.", len(waypoints), path)
	return waypoints, nil
}

// hostCommand runs cmdline through the shell. Its output goes to the terminal.
func hostCommand(cmdline string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("trade command %q: %w", cmdline, err)
		}
		return nil
	}
}
