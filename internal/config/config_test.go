package config

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLayout = `
locations:
  pokestop: [540, 1200]
  x_button: [500, 1900, 580, 1980]
  spin_swipe: [200, 1100, 900, 1100]
  bottom_pokestop_bar: [0, 2000, 1080, 2160]
waits:
  pokestop: 1.5
  keycode_back: 0.25
`

func TestParse(t *testing.T) {
	l, err := Parse([]byte(sampleLayout))
	require.NoError(t, err)

	p, err := l.Point(RegionPokestop)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(540, 1200), p)

	p, err = l.Point(RegionCloseButton)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(540, 1940), p)

	box, err := l.Box(RegionStopBar)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 2000, 1080, 2160), box)

	from, to, err := l.Line(RegionSpinSwipe)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 1100), from)
	assert.Equal(t, image.Pt(900, 1100), to)

	w, ok := l.Wait("pokestop")
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, w)

	w, ok = l.Wait(string(KeyBack))
	assert.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, w)

	_, ok = l.Wait("x_button")
	assert.False(t, ok)
}

func TestParse_AcceptsUnusedLegacyEntries(t *testing.T) {
	doc := sampleLayout + `  keycode_home: 1
  keycode_app_switch: 2
`
	doc = strings.Replace(doc, "locations:\n", `locations:
  second_app_position: [900, 300]
  your_bag_is_full_text_box: [100, 900, 980, 1000]
`, 1)
	l, err := Parse([]byte(doc))
	require.NoError(t, err)

	box, err := l.Box(RegionBagFullTextBox)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(100, 900, 980, 1000), box)

	w, ok := l.Wait(string(KeyAppSwitch))
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, w)
}

func TestMustRegister(t *testing.T) {
	assert.NotPanics(t, func() { newValidator() })
	assert.Panics(t, func() {
		mustRegister(validator.New(), "", func(validator.FieldLevel) bool { return true })
	})
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown region":   "locations:\n  pokestopp: [1, 2]\n",
		"three values":     "locations:\n  pokestop: [1, 2, 3]\n",
		"negative":         "locations:\n  pokestop: [-1, 2]\n",
		"box as point":     "locations:\n  bottom_pokestop_bar: [1, 2]\n",
		"unknown wait":     "locations:\n  pokestop: [1, 2]\nwaits:\n  teleport: 3\n",
		"negative wait":    "locations:\n  pokestop: [1, 2]\nwaits:\n  pokestop: -3\n",
		"unknown section":  "locations:\n  pokestop: [1, 2]\nextras: {}\n",
		"no locations":     "waits:\n  pokestop: 1\n",
		"not yaml mapping": "- 1\n- 2\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), err.Error())
		})
	}
}

func TestLayout_Lookups(t *testing.T) {
	l, err := Parse([]byte(sampleLayout))
	require.NoError(t, err)

	_, err = l.Point(RegionQuestButton)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = l.Box(RegionPokestop)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, _, err = l.Line(RegionPokestop)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	err = l.Require(RegionPokestop, RegionQuestButton, RegionExitEncounter)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "quest_button, exit_encounter")
	assert.NoError(t, l.Require(RegionPokestop, RegionCloseButton))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleLayout), 0o644))

	l, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, l.Locations, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadOptions(t *testing.T) {
	t.Setenv("QUESTR_DEVICE_ID", "emulator-5554")
	t.Setenv("QUESTR_NUM", "7")

	fs := pflag.NewFlagSet("questr", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--action", "trade", "-n", "3"}))

	o, err := LoadOptions(fs)
	require.NoError(t, err)
	assert.Equal(t, "emulator-5554", o.DeviceID)
	assert.Equal(t, 3, o.Num, "explicit flag wins over env")
	assert.Equal(t, ActionTrade, o.Action)
	assert.Equal(t, BackendADB, o.Backend)
	assert.Equal(t, "config.yaml", o.Config)
	assert.Contains(t, o.RequiredRegions(), RegionFriendsTab)
}

func TestOptions_Validate(t *testing.T) {
	bad := []Options{
		{Action: "dance", Backend: BackendADB, Num: 1},
		{Action: ActionSpin, Backend: "usb", Num: 1},
		{Action: ActionSpin, Backend: BackendADB, Num: 0},
		{Action: ActionSpin, Backend: BackendADB, Num: 1, Resume: true},
	}
	for i, o := range bad {
		assert.ErrorIs(t, o.Validate(), ErrInvalidConfig, "case %d", i)
	}

	ok := Options{Action: ActionSpin, Backend: BackendMirror, Num: 2}
	assert.NoError(t, ok.Validate())
	assert.NotContains(t, ok.RequiredRegions(), RegionFriendsTab)
}
