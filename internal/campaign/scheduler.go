package campaign

import (
	"log"
	"time"
)

// Outcome is the per-campaign result of one scheduler tick.
type Outcome struct {
	CampaignID int64        `json:"campaign_id"`
	Title      string       `json:"title,omitempty"`
	Tally      *TallyResult `json:"tally,omitempty"`
	Send       *SendResult  `json:"send,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// RunDue processes every active campaign whose remind_at has passed, in
// remind_at ascending order: tally, then a real (non-dry-run) send, with the
// inter-campaign delay between campaigns. A campaign whose tally fails is
// skipped for this tick; due-ness is a function of persistent state, so the
// next tick retries it. The engine keeps no internal timer: ticks come from
// the caller.
func (e *Engine) RunDue(now time.Time) ([]Outcome, error) {
	due, err := e.store.ListDue(now.UTC())
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return []Outcome{}, nil
	}

	log.Printf("[campaign] %d campaigns due at %s", len(due), now.UTC().Format(time.RFC3339))

	outcomes := make([]Outcome, 0, len(due))
	for i, c := range due {
		if i > 0 {
			time.Sleep(e.InterCampaignDelay)
		}

		out := Outcome{CampaignID: c.ID, Title: c.Title}

		tally, err := e.Tally(c.ID)
		if err != nil {
			out.Error = err.Error()
			log.Printf("[campaign] due campaign %d tally failed, skipping send: %v", c.ID, err)
			outcomes = append(outcomes, out)
			continue
		}
		out.Tally = tally

		send, err := e.SendReminder(c.ID, false)
		if err != nil {
			out.Error = err.Error()
		}
		out.Send = send
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
