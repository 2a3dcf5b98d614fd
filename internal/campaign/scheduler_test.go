package campaign

import (
	"strings"
	"testing"
	"time"

	"github.com/rallycall/discord-mcp/internal/discord"
	"github.com/rallycall/discord-mcp/internal/store"
)

func TestRunDueNothingDue(t *testing.T) {
	e, _ := newTestEngine(t, Options{})

	if _, err := e.CreateCampaign("future", "chan1", "msg1", "✅", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}

	outcomes, err := e.RunDue(time.Now().UTC())
	if err != nil {
		t.Fatalf("RunDue failed: %v", err)
	}
	if outcomes == nil || len(outcomes) != 0 {
		t.Errorf("outcomes = %v", outcomes)
	}
}

func TestRunDue(t *testing.T) {
	e, gw := newTestEngine(t, Options{})
	now := time.Now().UTC()

	second, err := e.CreateCampaign("second", "chan1", "msg2", "✅", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	first, err := e.CreateCampaign("first", "chan1", "msg1", "✅", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	if _, err := e.CreateCampaign("future", "chan1", "msg3", "✅", now.Add(time.Hour)); err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}

	gw.reactors[gwKey("chan1", "msg1", "✅")] = []discord.User{
		{ID: "a", Username: "alice"},
		{ID: "b", Username: "bob"},
		{ID: "c", Username: "botty", Bot: true},
	}
	gw.reactors[gwKey("chan1", "msg2", "✅")] = []discord.User{
		{ID: "d", Username: "dana"},
	}

	outcomes, err := e.RunDue(now)
	if err != nil {
		t.Fatalf("RunDue failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	// Processed in remind_at order, not creation order.
	if outcomes[0].CampaignID != first.ID || outcomes[1].CampaignID != second.ID {
		t.Errorf("outcome order: %d, %d", outcomes[0].CampaignID, outcomes[1].CampaignID)
	}

	out := outcomes[0]
	if out.Error != "" {
		t.Fatalf("first outcome error: %s", out.Error)
	}
	if out.Tally == nil || out.Tally.TotalOptIns != 2 {
		t.Errorf("first tally = %+v", out.Tally)
	}
	if out.Send == nil || !out.Send.Success || out.Send.RecipientCount != 2 || out.Send.ChunksSent != 1 {
		t.Errorf("first send = %+v", out.Send)
	}

	if len(gw.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(gw.sent))
	}
	if !strings.Contains(gw.sent[0], "<@a> <@b>") || strings.Contains(gw.sent[0], "<@c>") {
		t.Errorf("first broadcast = %q", gw.sent[0])
	}

	for _, c := range []*store.Campaign{first, second} {
		if got := statusOf(t, e, c.ID); got != store.StatusCompleted {
			t.Errorf("campaign %d status = %s, want completed", c.ID, got)
		}
	}

	// Completed campaigns are no longer due.
	outcomes, err = e.RunDue(now)
	if err != nil {
		t.Fatalf("second RunDue failed: %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("second tick processed %d campaigns", len(outcomes))
	}
}

func TestRunDueTallyFailureSkipsSend(t *testing.T) {
	e, gw := newTestEngine(t, Options{})
	now := time.Now().UTC()

	broken, err := e.CreateCampaign("broken", "chan1", "msg1", "✅", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	ok, err := e.CreateCampaign("ok", "chan1", "msg2", "✅", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}

	gw.missing[gwKey("chan1", "msg1")] = true
	gw.reactors[gwKey("chan1", "msg2", "✅")] = []discord.User{{ID: "d", Username: "dana"}}

	outcomes, err := e.RunDue(now)
	if err != nil {
		t.Fatalf("RunDue failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	if outcomes[0].Error == "" || outcomes[0].Send != nil {
		t.Errorf("broken outcome = %+v", outcomes[0])
	}
	if got := statusOf(t, e, broken.ID); got != store.StatusActive {
		t.Errorf("broken campaign status = %s, want active", got)
	}

	// One failed campaign does not block the rest of the tick.
	if outcomes[1].Error != "" || outcomes[1].Send == nil || !outcomes[1].Send.Success {
		t.Errorf("ok outcome = %+v", outcomes[1])
	}
	if got := statusOf(t, e, ok.ID); got != store.StatusCompleted {
		t.Errorf("ok campaign status = %s, want completed", got)
	}
}
