package config

import "strings"

// Region names a configured screen region.
type Region string

const (
	RegionPokestop          Region = "pokestop"
	RegionSpinSwipe         Region = "spin_swipe"
	RegionStopBar           Region = "bottom_pokestop_bar"
	RegionCloseButton       Region = "x_button"
	RegionPassengerBox      Region = "im_a_passenger_button_box"
	RegionHatchBox          Region = "oh_hatching_box"
	RegionShopTextBox       Region = "shop_button_text_box"
	RegionQuestButton       Region = "quest_button"
	RegionClaimRewardBox    Region = "claim_reward_box"
	RegionExitEncounter     Region = "exit_encounter"
	RegionCharacterMenu     Region = "character_menu_button"
	RegionFriendsTab        Region = "friends_tab"
	RegionFriendPosition    Region = "friend_position"

	// Accepted so existing config files keep loading. Nothing reads them.
	RegionSecondAppPosition Region = "second_app_position"
	RegionBagFullTextBox    Region = "your_bag_is_full_text_box"
)

// KnownRegions is every region name accepted under `locations`.
var KnownRegions = []Region{
	RegionPokestop,
	RegionSpinSwipe,
	RegionStopBar,
	RegionCloseButton,
	RegionPassengerBox,
	RegionHatchBox,
	RegionShopTextBox,
	RegionQuestButton,
	RegionClaimRewardBox,
	RegionExitEncounter,
	RegionCharacterMenu,
	RegionFriendsTab,
	RegionFriendPosition,
	RegionSecondAppPosition,
	RegionBagFullTextBox,
}

// Key names a device key event.
type Key string

const (
	KeyBack Key = "KEYCODE_BACK"

	// Accepted as wait targets for existing config files; never sent.
	KeyAppSwitch Key = "KEYCODE_APP_SWITCH"
	KeyHome      Key = "KEYCODE_HOME"
)

// KnownKeys is every key accepted as a `waits` entry (matched case-insensitively).
var KnownKeys = []Key{KeyBack, KeyAppSwitch, KeyHome}

// SpinRegions are required for the spin action.
var SpinRegions = []Region{
	RegionPokestop,
	RegionSpinSwipe,
	RegionStopBar,
	RegionCloseButton,
	RegionPassengerBox,
	RegionHatchBox,
	RegionShopTextBox,
	RegionQuestButton,
	RegionClaimRewardBox,
	RegionExitEncounter,
}

// TradeRegions are required on top of SpinRegions for the trade action.
var TradeRegions = []Region{
	RegionCharacterMenu,
	RegionFriendsTab,
	RegionFriendPosition,
}

// boxRegions must be 4-tuples: they are cropped or swiped.
var boxRegions = map[Region]bool{
	RegionSpinSwipe:      true,
	RegionStopBar:        true,
	RegionPassengerBox:   true,
	RegionHatchBox:       true,
	RegionShopTextBox:    true,
	RegionClaimRewardBox: true,
	RegionBagFullTextBox: true,
}

func isKnownRegion(name string) bool {
	for _, r := range KnownRegions {
		if string(r) == name {
			return true
		}
	}
	return false
}

func isKnownKey(name string) bool {
	for _, k := range KnownKeys {
		if strings.EqualFold(string(k), name) {
			return true
		}
	}
	return false
}
