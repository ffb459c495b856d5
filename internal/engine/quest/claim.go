package quest

import (
	"context"
	"fmt"

	"github.com/ConserveLee/questr/internal/config"
	"github.com/ConserveLee/questr/internal/constants"
)

func (r *Runner) handleClaimingState(ctx context.Context) error {
	if r.opts.Action == config.ActionTrade {
		if err := r.trade(ctx); err != nil {
			return err
		}
	}

	if err := r.clock.Sleep(ctx, constants.ClaimPreWait); err != nil {
		return err
	}
	r.progress.Claims++
	rewards, err := r.claimRewards(ctx)
	if err != nil {
		return err
	}
	r.log.Info("Quest claimed: %d reward(s).", rewards)
	r.visit.Rewards = rewards
	r.progress.Actions = 0
	r.setState(StateAwaitingCooldown)
	return nil
}

// trade opens the friend list and hands the device to the trade hook.
func (r *Runner) trade(ctx context.Context) error {
	for _, region := range []config.Region{config.RegionCharacterMenu, config.RegionFriendsTab, config.RegionFriendPosition} {
		if err := r.exec.Tap(ctx, region); err != nil {
			return r.external(ctx, "open friend", err)
		}
	}
	if r.opts.Trade != nil {
		r.log.Info("Handing over to the trade command.")
		if err := r.opts.Trade(ctx); err != nil {
			return r.external(ctx, "trade", err)
		}
	}
	if err := r.clock.Sleep(ctx, constants.TradeHandoverWait); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if err := r.exec.Key(ctx, config.KeyBack); err != nil {
			return r.external(ctx, "leave trade", err)
		}
	}
	return nil
}

// claimRewards opens the quest screen and claims until the reward text is
// gone. Until the text has been seen once, a miss means the quest screen is
// not open yet and the runner backs out and tries again.
func (r *Runner) claimRewards(ctx context.Context) (int, error) {
	seen := false
	misses := 0
	rewards := 0
	for {
		if err := r.exec.Tap(ctx, config.RegionQuestButton); err != nil {
			return rewards, r.external(ctx, "open quests", err)
		}

		if !seen {
			ok, err := r.rewardVisible(ctx)
			if err != nil {
				return rewards, err
			}
			if !ok {
				misses++
				if r.opts.ClaimAttempts > 0 && misses > r.opts.ClaimAttempts {
					return rewards, fmt.Errorf("%w: quest screen not reached after %d tries", ErrActionExhausted, misses)
				}
				r.log.Error("Does not look like we're on the quest screen (%d), backing out.", misses)
				if err := r.exec.Key(ctx, config.KeyBack); err != nil {
					return rewards, r.external(ctx, "back", err)
				}
				continue
			}
			seen = true
		}

		ok, err := r.rewardVisible(ctx)
		if err != nil {
			return rewards, err
		}
		if !ok || rewards >= constants.ClaimMaxRewards {
			r.log.Info("Seems we finished claiming.")
			if err := r.exec.Key(ctx, config.KeyBack); err != nil {
				return rewards, r.external(ctx, "back", err)
			}
			return rewards, nil
		}

		r.log.Warn("Cool, we got another one!")
		if err := r.exec.Tap(ctx, config.RegionClaimRewardBox); err != nil {
			return rewards, r.external(ctx, "claim", err)
		}
		if err := r.exec.Tap(ctx, config.RegionExitEncounter); err != nil {
			return rewards, r.external(ctx, "exit encounter", err)
		}
		rewards++
	}
}

func (r *Runner) rewardVisible(ctx context.Context) (bool, error) {
	img, err := r.ctrl.Screenshot(ctx)
	if err != nil {
		return false, r.external(ctx, "screenshot", err)
	}
	ok, err := r.vision.ContainsAll(ctx, img, config.RegionClaimRewardBox, "CLAIM", "REWARD")
	if err != nil {
		return false, r.external(ctx, "read rewards", err)
	}
	return ok, nil
}
