package campaign

import (
	"log"
	"time"

	"github.com/rallycall/discord-mcp/internal/faults"
	"github.com/rallycall/discord-mcp/internal/store"
)

// TallyResult summarizes one reconciliation of Discord reactions into the
// opt-in set.
type TallyResult struct {
	CampaignID     int64 `json:"campaign_id"`
	TotalOptIns    int   `json:"total_optins"`
	NewOptIns      int   `json:"new_optins"`
	ExistingOptIns int   `json:"existing_optins"`
}

// Tally fetches the current reactors of the campaign's tracked emoji and
// persists new opt-ins. Bot users are skipped. The operation is idempotent:
// re-running against unchanged reactions records nothing new, and stored
// usernames are not refreshed.
func (e *Engine) Tally(campaignID int64) (*TallyResult, error) {
	c, err := e.store.GetCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status == store.StatusDeleted {
		return nil, faults.New(faults.InvalidState, "campaign %d is deleted", campaignID)
	}

	// Verify the tracked message still exists before paging reactions.
	if _, err := e.gw.MessageGet(c.ChannelID, c.MessageID); err != nil {
		return nil, err
	}

	users, err := e.gw.ReactionUsers(c.ChannelID, c.MessageID, c.Emoji)
	if err != nil {
		return nil, err
	}

	res := &TallyResult{CampaignID: campaignID}
	now := time.Now().UTC()
	for _, u := range users {
		if u.Bot {
			continue
		}
		inserted, err := e.store.UpsertOptIn(campaignID, u.ID, u.Name(), now)
		if err != nil {
			return nil, err
		}
		if inserted {
			res.NewOptIns++
		} else {
			res.ExistingOptIns++
		}
	}
	res.TotalOptIns = res.NewOptIns + res.ExistingOptIns

	log.Printf("[campaign] tallied campaign %d: %d new, %d existing, %d total",
		campaignID, res.NewOptIns, res.ExistingOptIns, res.TotalOptIns)
	return res, nil
}
