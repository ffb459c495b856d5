// Package notify shows desktop notifications.
package notify

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"

	"github.com/ConserveLee/questr/internal/cooldown"
)

// Notifier shows a message to the user.
type Notifier interface {
	Notify(title, body string)
}

// Desktop sends notifications through a fyne app.
type Desktop struct {
	app fyne.App
}

// NewDesktop creates a notifier backed by app.
func NewDesktop(app fyne.App) *Desktop {
	return &Desktop{app: app}
}

func (d *Desktop) Notify(title, body string) {
	d.app.SendNotification(fyne.NewNotification(title, body))
}

// CooldownMessage renders a hop as a notification.
func CooldownMessage(ev cooldown.Event) (title, body string) {
	title = fmt.Sprintf("%s minutes (%.2fkm)", FormatMinutes(ev.Minutes), ev.Distance)
	body = fmt.Sprintf("From: %s\nTo: %s", ev.From.Format(3), ev.To.Format(3))
	return title, body
}

// FormatMinutes prints whole minutes without decimals and fractions as-is.
func FormatMinutes(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
