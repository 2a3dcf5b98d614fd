package campaign

import (
	"log"
	"time"

	"github.com/rallycall/discord-mcp/internal/faults"
	"github.com/rallycall/discord-mcp/internal/store"
)

// SendResult reports the outcome of one broadcast invocation. On partial
// failure ChunksSent counts chunks actually delivered before the stop.
type SendResult struct {
	CampaignID     int64  `json:"campaign_id"`
	RecipientCount int    `json:"total_recipients"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksSent     int    `json:"chunks_sent"`
	Success        bool   `json:"success"`
	DryRun         bool   `json:"dry_run"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// SendReminder builds and delivers the broadcast for a campaign. Chunks go
// out strictly in order with the inter-chunk delay between them; rate limits
// are retried a bounded number of times honoring Discord's retry-after.
// Exactly one reminder-log row is written per invocation. On full non-dry-run
// success the campaign transitions to completed. A failed broadcast leaves the
// campaign active; a later retry resends from chunk 0 (at-least-once).
//
// A process-wide DRY_RUN forces dryRun regardless of the argument. A dry run
// writes the audit row but leaves the campaign status untouched so the
// broadcast can still be delivered for real later.
func (e *Engine) SendReminder(campaignID int64, dryRun bool) (*SendResult, error) {
	if e.opts.DryRun {
		dryRun = true
	}

	c, err := e.store.GetCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status == store.StatusDeleted {
		return nil, faults.New(faults.InvalidState, "campaign %d is deleted", campaignID)
	}

	rem, err := e.BuildReminder(campaignID, "")
	if err != nil {
		return nil, err
	}

	res := &SendResult{
		CampaignID:     campaignID,
		RecipientCount: rem.RecipientCount,
		ChunksTotal:    len(rem.Chunks),
		DryRun:         dryRun,
	}

	// Nothing to broadcast: audit the attempt, leave the status alone.
	if len(rem.Chunks) == 0 {
		if err := e.store.AppendReminderLog(campaignID, time.Now().UTC(), 0, 0, true, ""); err != nil {
			return nil, err
		}
		res.Success = true
		return res, nil
	}

	for i, chunk := range rem.Chunks {
		if !dryRun {
			if err := e.sendChunk(c.ChannelID, chunk); err != nil {
				res.ErrorMessage = err.Error()
				if logErr := e.store.AppendReminderLog(campaignID, time.Now().UTC(),
					rem.RecipientCount, res.ChunksSent, false, res.ErrorMessage); logErr != nil {
					return nil, logErr
				}
				log.Printf("[campaign] send for campaign %d stopped at chunk %d/%d: %v",
					campaignID, i+1, len(rem.Chunks), err)
				return res, err
			}
		}
		res.ChunksSent++
		if !dryRun && i < len(rem.Chunks)-1 {
			time.Sleep(e.InterChunkDelay)
		}
	}

	if err := e.store.AppendReminderLog(campaignID, time.Now().UTC(),
		rem.RecipientCount, res.ChunksSent, true, ""); err != nil {
		return nil, err
	}
	if !dryRun {
		if err := e.store.SetStatus(campaignID, store.StatusCompleted); err != nil {
			return nil, err
		}
	}

	res.Success = true
	log.Printf("[campaign] sent %d chunks to %d recipients for campaign %d (dry_run=%v)",
		res.ChunksSent, res.RecipientCount, campaignID, dryRun)
	return res, nil
}

// sendChunk delivers one chunk, retrying rate limits up to MaxSendRetries
// while honoring the reported retry-after. Any other failure stops the
// broadcast immediately.
func (e *Engine) sendChunk(channelID, chunk string) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		_, err := e.gw.MessageSend(channelID, chunk, "")
		if err == nil {
			return nil
		}
		lastErr = err

		fe, ok := faults.As(err)
		if !ok || fe.Kind != faults.RateLimited || attempt >= e.MaxSendRetries {
			return lastErr
		}
		wait := fe.RetryAfter
		if wait <= 0 {
			wait = e.InterChunkDelay
		}
		log.Printf("[campaign] rate limited sending to %s, retrying in %s (attempt %d/%d)",
			channelID, wait, attempt+1, e.MaxSendRetries)
		time.Sleep(wait)
	}
}
