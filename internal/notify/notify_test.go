package notify

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/ConserveLee/questr/internal/cooldown"
	"github.com/ConserveLee/questr/internal/geo"
)

func TestCooldownMessage(t *testing.T) {
	ev := cooldown.Event{
		Kind:     cooldown.EventHop,
		From:     geo.Coordinate{Lat: 35.281374, Lon: 139.6636},
		To:       geo.Coordinate{Lat: 35.3, Lon: 139.7},
		Distance: 3.88,
		Minutes:  2,
	}
	title, body := CooldownMessage(ev)
	assert.Equal(t, "2 minutes (3.88km)", title)
	assert.Equal(t, "From: 35.281,139.664\nTo: 35.300,139.700", body)

	ev.Minutes = 0.8
	title, _ = CooldownMessage(ev)
	assert.Equal(t, "0.8 minutes (3.88km)", title)
}

func TestDesktop_Notify(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	d := NewDesktop(a)
	test.AssertNotificationSent(t, fyne.NewNotification("6 minutes (11.13km)", "From: a\nTo: b"), func() {
		d.Notify("6 minutes (11.13km)", "From: a\nTo: b")
	})
}
