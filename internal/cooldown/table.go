// Package cooldown maps travel distance to the mandatory wait before the
// next in-game action, and schedules that wait.
package cooldown

import (
	"fmt"
	"math"
	"time"

	"github.com/ConserveLee/questr/internal/constants"
)

// Entry maps the half-open distance interval [Low, High) in km to Minutes.
type Entry struct {
	Low     float64
	High    float64
	Minutes float64
}

// Table is an ordered partition of [0, +Inf).
type Table []Entry

// Default is the empirical calibration table. Breakpoints are measured, not derived.
var Default = Table{
	{0, 1, 0.8},
	{1, 2, 0.8},
	{2, 3, 1},
	{3, 4, 2},
	{4, 5, 2},
	{5, 6, 3},
	{6, 10, 4},
	{10, 15, 6},
	{15, 20, 8},
	{20, 25, 11},
	{25, 30, 14},
	{30, 35, 16},
	{35, 40, 17},
	{40, 45, 18},
	{45, 50, 19},
	{50, 60, 20},
	{60, 70, 21},
	{70, 80, 22},
	{80, 90, 23},
	{90, 100, 24},
	{100, 125, 26},
	{125, 150, 28},
	{150, 175, 31},
	{175, 201, 33},
	{201, 250, 36},
	{250, 300, 41},
	{300, 328, 46},
	{328, 350, 48},
	{350, 400, 49},
	{400, 450, 54},
	{450, 500, 58},
	{500, 550, 61},
	{550, 600, 65},
	{600, 650, 69},
	{650, 700, 73},
	{700, 751, 76},
	{751, 802, 81},
	{802, 839, 83},
	{839, 897, 88},
	{897, 948, 90},
	{948, 1007, 94},
	{1007, 1020, 97},
	{1020, 1180, 101},
	{1180, 1221, 109},
	{1221, 1300, 112},
	{1300, 1344, 117},
	{1344, 1403, 119},
	{1403, 1500, 120},
	{1500, math.Inf(1), 120},
}

// Minutes returns the cooldown for a distance in km. A distance of zero
// returns ok=false: the same spot was sampled twice and there is nothing
// to wait for.
func (t Table) Minutes(km float64) (minutes float64, ok bool) {
	if km <= 0 {
		return 0, false
	}
	for _, e := range t {
		if km >= e.Low && km < e.High {
			return e.Minutes, true
		}
	}
	// past the last bound
	return t[len(t)-1].Minutes, true
}

// Validate checks that the table starts at 0, ends at +Inf, has no gaps
// or overlaps and never decreases.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("cooldown table is empty")
	}
	if t[0].Low != 0 {
		return fmt.Errorf("cooldown table starts at %v, want 0", t[0].Low)
	}
	if !math.IsInf(t[len(t)-1].High, 1) {
		return fmt.Errorf("cooldown table ends at %v, want +Inf", t[len(t)-1].High)
	}
	for i, e := range t {
		if e.High <= e.Low {
			return fmt.Errorf("entry %d: empty interval [%v, %v)", i, e.Low, e.High)
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if e.Low != prev.High {
			return fmt.Errorf("entry %d: starts at %v, previous ends at %v", i, e.Low, prev.High)
		}
		if e.Minutes < prev.Minutes {
			return fmt.Errorf("entry %d: %v minutes after %v", i, e.Minutes, prev.Minutes)
		}
	}
	return nil
}

// Wait turns a cooldown in minutes into the time to actually sleep:
// the larger of the floor and the cooldown, plus the safety margin.
func Wait(minutes float64) time.Duration {
	d := time.Duration(minutes * float64(time.Minute))
	if d < constants.CooldownFloor {
		d = constants.CooldownFloor
	}
	return time.Duration(float64(d) * constants.CooldownSafetyMargin)
}

// Between is the scheduled wait for a hop of km kilometers.
func (t Table) Between(km float64) time.Duration {
	minutes, _ := t.Minutes(km)
	return Wait(minutes)
}
