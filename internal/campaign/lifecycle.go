package campaign

import (
	"log"
	"time"

	"github.com/rallycall/discord-mcp/internal/faults"
	"github.com/rallycall/discord-mcp/internal/store"
)

// CreateCampaign registers a Discord message as a signup sheet keyed by an
// emoji. The tracked message must exist (checked via the gateway; skipped
// under DRY-RUN, where reads return fixtures anyway). A collision on
// (channel, message, emoji) yields a Duplicate fault carrying the existing
// campaign id.
func (e *Engine) CreateCampaign(title, channelID, messageID, emoji string, remindAt time.Time) (*store.Campaign, error) {
	if emoji == "" {
		return nil, faults.New(faults.InvalidState, "emoji is required")
	}

	if !e.opts.DryRun {
		if _, err := e.gw.MessageGet(channelID, messageID); err != nil {
			return nil, err
		}
	}

	c, err := e.store.CreateCampaign(title, channelID, messageID, emoji, remindAt.UTC())
	if err != nil {
		return nil, err
	}
	log.Printf("[campaign] created campaign %d for message %s (emoji %s, remind at %s)",
		c.ID, messageID, emoji, c.RemindAt.Format(time.RFC3339))
	return c, nil
}

// GetCampaign loads one campaign.
func (e *Engine) GetCampaign(id int64) (*store.Campaign, error) {
	return e.store.GetCampaign(id)
}

// ListCampaigns lists non-deleted campaigns, optionally filtered by status.
func (e *Engine) ListCampaigns(status store.Status) ([]*store.Campaign, error) {
	if status != "" && (!status.Valid() || status == store.StatusDeleted) {
		return nil, faults.New(faults.InvalidState, "invalid status filter %q", status)
	}
	return e.store.ListCampaigns(status)
}

// ListOptIns returns a page of a campaign's opt-ins in insertion order.
func (e *Engine) ListOptIns(campaignID int64, limit int, afterUserID string) ([]*store.OptIn, error) {
	if _, err := e.store.GetCampaign(campaignID); err != nil {
		return nil, err
	}
	return e.store.ListOptIns(campaignID, limit, afterUserID)
}

// UpdateStatus applies a manual status transition, enforcing the lifecycle
// state machine. Transitioning to deleted routes through the tombstone
// cascade.
func (e *Engine) UpdateStatus(id int64, status store.Status) (*store.Campaign, error) {
	if !status.Valid() {
		return nil, faults.New(faults.InvalidState, "unknown status %q", status)
	}

	c, err := e.store.GetCampaign(id)
	if err != nil {
		return nil, err
	}
	if !store.CanTransition(c.Status, status) {
		return nil, faults.New(faults.InvalidState,
			"illegal transition %s -> %s for campaign %d", c.Status, status, id)
	}

	if status == store.StatusDeleted {
		if err := e.store.DeleteCampaign(id); err != nil {
			return nil, err
		}
	} else if err := e.store.SetStatus(id, status); err != nil {
		return nil, err
	}

	log.Printf("[campaign] campaign %d status %s -> %s", id, c.Status, status)
	return e.store.GetCampaign(id)
}

// DeleteCampaign tombstones a campaign and removes its opt-ins and audit
// rows. Equivalent to UpdateStatus(id, deleted).
func (e *Engine) DeleteCampaign(id int64) error {
	_, err := e.UpdateStatus(id, store.StatusDeleted)
	return err
}
