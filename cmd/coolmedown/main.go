// Command coolmedown watches the clipboard for coordinates and tells you how
// long to wait before acting at the newly copied spot.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/go-vgo/robotgo"
	"github.com/spf13/pflag"

	"github.com/ConserveLee/questr/internal/cooldown"
	"github.com/ConserveLee/questr/internal/logger"
	"github.com/ConserveLee/questr/internal/notify"
)

// monitor turns clipboard values into cooldown reports.
type monitor struct {
	session  *cooldown.Session
	out      io.Writer
	color    bool
	notifier notify.Notifier
	last     string
}

func (m *monitor) handle(text string) {
	if text == m.last {
		return
	}
	m.last = text

	ev := m.session.Observe(text)
	switch ev.Kind {
	case cooldown.EventFirst:
		fmt.Fprintf(m.out, "First coordinate detected.\n\n")
	case cooldown.EventHop:
		c := logger.ColorRed
		switch {
		case ev.Minutes < 10:
			c = logger.ColorGreen
		case ev.Minutes < 30:
			c = logger.ColorYellow
		}
		fmt.Fprintf(m.out, "Last coordinate was: %s\n", logger.Colorize(m.color, logger.ColorBlue, ev.From.String()))
		fmt.Fprintf(m.out, "New coordinate is:   %s\n", logger.Colorize(m.color, logger.ColorBlue, ev.To.String()))
		fmt.Fprintf(m.out, "Cooldown is %s (%.2fkm)\n",
			logger.Colorize(m.color, logger.ColorBold+c, notify.FormatMinutes(ev.Minutes)+" minutes"), ev.Distance)
		fmt.Fprintln(m.out, "--------------------------------------------")
		if m.notifier != nil {
			m.notifier.Notify(notify.CooldownMessage(ev))
		}
	}
}

// poll reads the clipboard every interval until ctx is done.
func (m *monitor) poll(ctx context.Context, interval time.Duration, read func() (string, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			text, err := read()
			if err != nil {
				continue
			}
			m.handle(text)
		}
	}
}

// fyneNotifier hands notifications to the fyne event loop.
type fyneNotifier struct {
	desktop *notify.Desktop
}

func (n fyneNotifier) Notify(title, body string) {
	fyne.Do(func() { n.desktop.Notify(title, body) })
}

func main() {
	fs := pflag.NewFlagSet("coolmedown", pflag.ExitOnError)
	interval := fs.Duration("interval", 500*time.Millisecond, "Clipboard poll interval.")
	quiet := fs.Bool("no-notify", false, "Only print to the terminal.")
	_ = fs.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := &monitor{
		session: cooldown.NewSession(cooldown.Default),
		out:     os.Stdout,
		color:   logger.IsTerminal(os.Stdout),
	}
	fmt.Fprintln(m.out, "Watching the clipboard for coordinates. Ctrl-C to quit.")

	if *quiet {
		m.poll(ctx, *interval, robotgo.ReadAll)
		return
	}

	a := app.NewWithID("io.github.conservelee.coolmedown")
	m.notifier = fyneNotifier{desktop: notify.NewDesktop(a)}
	go func() {
		m.poll(ctx, *interval, robotgo.ReadAll)
		fyne.Do(a.Quit)
	}()
	a.Run()
}
