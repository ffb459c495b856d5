package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ActionKind selects what counts toward the quest quota.
type ActionKind string

const (
	ActionSpin  ActionKind = "spin"
	ActionTrade ActionKind = "trade"
)

// Backend selects the device-control implementation.
type Backend string

const (
	BackendADB    Backend = "adb"
	BackendMirror Backend = "mirror"
)

// Options are the run settings taken from flags and QUESTR_* variables.
type Options struct {
	DeviceID  string     `mapstructure:"device-id"`
	Config    string     `mapstructure:"config"`
	Waypoints string     `mapstructure:"waypoints"`
	Action    ActionKind `mapstructure:"action"`
	Num       int        `mapstructure:"num"`
	Backend   Backend    `mapstructure:"backend"`
	ADBPath   string     `mapstructure:"adb"`
	Display   int        `mapstructure:"display"`
	Journal   string     `mapstructure:"journal"`
	Resume    bool       `mapstructure:"resume"`
	TradeCmd  string     `mapstructure:"trade-cmd"`
	OCRLang   string     `mapstructure:"ocr-lang"`
	LogLevel  string     `mapstructure:"log-level"`
}

// RegisterFlags adds the run flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("device-id", "", "Device serial; empty picks the only attached device. Use `adb devices` to list ids.")
	fs.String("config", "config.yaml", "Region config file location.")
	fs.String("waypoints", "quest_list.txt", "Newline-delimited route, one coordinate per line.")
	fs.String("action", string(ActionSpin), "Action required by the quest: spin or trade.")
	fs.IntP("num", "n", 1, "Number of times the action must be performed before the quest is claimed.")
	fs.String("backend", string(BackendADB), "Device control: adb, or mirror (scrcpy window driven by the desktop mouse).")
	fs.String("adb", "adb", "adb executable.")
	fs.Int("display", 0, "Display index holding the mirror window (mirror backend).")
	fs.String("journal", "", "SQLite file recording visits; empty disables the journal.")
	fs.Bool("resume", false, "Skip waypoints already completed for this route in the journal.")
	fs.String("trade-cmd", "", "Command run on the host to perform a trade (trade action).")
	fs.String("ocr-lang", "eng", "Tesseract language.")
	fs.String("log-level", "info", "debug, info, warn or error.")
}

// LoadOptions resolves options from fs and the environment. Flags that were
// set explicitly win over QUESTR_* variables, which win over defaults.
func LoadOptions(fs *pflag.FlagSet) (*Options, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix("QUESTR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Validate checks the option values.
func (o *Options) Validate() error {
	var errs []string
	switch o.Action {
	case ActionSpin, ActionTrade:
	default:
		errs = append(errs, fmt.Sprintf("action must be spin or trade, got %q", o.Action))
	}
	switch o.Backend {
	case BackendADB, BackendMirror:
	default:
		errs = append(errs, fmt.Sprintf("backend must be adb or mirror, got %q", o.Backend))
	}
	if o.Num < 1 {
		errs = append(errs, fmt.Sprintf("num must be at least 1, got %d", o.Num))
	}
	if o.Resume && o.Journal == "" {
		errs = append(errs, "resume needs a journal")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// RequiredRegions lists the regions the chosen action needs.
func (o *Options) RequiredRegions() []Region {
	regions := append([]Region{}, SpinRegions...)
	if o.Action == ActionTrade {
		regions = append(regions, TradeRegions...)
	}
	return regions
}
