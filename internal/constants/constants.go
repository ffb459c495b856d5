package constants

import "time"

// Quest Runner Configuration
const (
	// Teleport
	TeleportSettleDelay = 10 * time.Second // Wait after the teleport intent before sampling the screen

	// Stable World Polling
	StableWorldMaxAttempts = 30              // Samples before giving up on a stuck dialog
	StableWorldInterval    = 1 * time.Second // Wait between samples
	EggHatchAnimationWait  = 20 * time.Second // Hatch animation runs before the close button appears

	// Spin
	SpinSwipeDuration     = 300 * time.Millisecond // Swipe across the stop disc
	RecoverySwipeDuration = 800 * time.Millisecond // Slower swipe used after a failed attempt
	RepeatWait            = 5 * time.Second        // Wait before retrying a failed attempt
	ActionMaxAttempts     = 20                     // Attempts per waypoint before giving up
	HueSampleRetries      = 3                      // Re-samples when the hue read is a tie
	HueSampleInterval     = 500 * time.Millisecond
	CooldownPollMinimum   = 2 * time.Second // Shortest half-life sleep while waiting out a cooldown

	// Claim
	ClaimPreWait      = 5 * time.Second
	ClaimMaxAttempts  = 10 // Back-outs allowed before the claim screen shows up
	ClaimMaxRewards   = 20 // Rewards claimed in one sitting before leaving the screen
	TradeHandoverWait = 8 * time.Second

	// Hue references (0-255 hue space)
	HueUnspun = 130 // Blue bar: stop not spun yet
	HueSpun   = 200 // Purple bar: stop already spun

	// Cooldown Scheduling
	CooldownFloor        = 5 * time.Second
	CooldownSafetyMargin = 1.10
)

// Teleport intent understood by the joystick app on the device.
const TeleportCommand = "am start-foreground-service -a theappninjas.gpsjoystick.TELEPORT --ef lat %f --ef lng %f"

// Debugging
const LogHistorySize = 100
