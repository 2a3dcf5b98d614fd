package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rallycall/discord-mcp/internal/faults"
)

// setupStore creates a temporary test database.
func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, title, channelID, messageID, emoji string, remindAt time.Time) *Campaign {
	t.Helper()
	c, err := s.CreateCampaign(title, channelID, messageID, emoji, remindAt)
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	return c
}

func TestCreateAndGetCampaign(t *testing.T) {
	s := setupStore(t)

	remindAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := mustCreate(t, s, "Game night", "chan1", "msg1", "✅", remindAt)

	if c.ID == 0 {
		t.Error("expected server-assigned id")
	}
	if c.Status != StatusActive {
		t.Errorf("new campaign status = %s, want active", c.Status)
	}
	if !c.RemindAt.Equal(remindAt) {
		t.Errorf("remind_at = %v, want %v", c.RemindAt, remindAt)
	}

	got, err := s.GetCampaign(c.ID)
	if err != nil {
		t.Fatalf("GetCampaign failed: %v", err)
	}
	if got.Title != "Game night" || got.Emoji != "✅" {
		t.Errorf("unexpected campaign: %+v", got)
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetCampaign(42)
	if faults.KindOf(err) != faults.NotFound {
		t.Errorf("expected not_found fault, got %v", err)
	}
}

func TestCreateCampaignDuplicate(t *testing.T) {
	s := setupStore(t)

	remindAt := time.Now().UTC().Add(time.Hour)
	first := mustCreate(t, s, "first", "chan1", "msg1", "✅", remindAt)

	_, err := s.CreateCampaign("second", "chan1", "msg1", "✅", remindAt)
	fe, ok := faults.As(err)
	if !ok || fe.Kind != faults.Duplicate {
		t.Fatalf("expected duplicate fault, got %v", err)
	}
	if fe.CampaignID != first.ID {
		t.Errorf("duplicate fault campaign id = %d, want %d", fe.CampaignID, first.ID)
	}

	// A different emoji on the same message is a different campaign.
	if _, err := s.CreateCampaign("other", "chan1", "msg1", "🎉", remindAt); err != nil {
		t.Errorf("distinct emoji should not collide: %v", err)
	}

	campaigns, err := s.ListCampaigns("")
	if err != nil {
		t.Fatalf("ListCampaigns failed: %v", err)
	}
	if len(campaigns) != 2 {
		t.Errorf("expected 2 campaigns, got %d", len(campaigns))
	}
}

func TestRecreateAfterDelete(t *testing.T) {
	s := setupStore(t)

	remindAt := time.Now().UTC().Add(time.Hour)
	c := mustCreate(t, s, "", "chan1", "msg1", "✅", remindAt)
	if err := s.DeleteCampaign(c.ID); err != nil {
		t.Fatalf("DeleteCampaign failed: %v", err)
	}

	// The tombstone must not block recreating the same identity.
	again, err := s.CreateCampaign("", "chan1", "msg1", "✅", remindAt)
	if err != nil {
		t.Fatalf("recreate after delete failed: %v", err)
	}
	if again.ID == c.ID {
		t.Error("expected a fresh row for the recreated campaign")
	}
}

func TestListCampaignsFilterAndTombstones(t *testing.T) {
	s := setupStore(t)

	remindAt := time.Now().UTC().Add(time.Hour)
	a := mustCreate(t, s, "a", "c", "m1", "✅", remindAt)
	b := mustCreate(t, s, "b", "c", "m2", "✅", remindAt)
	d := mustCreate(t, s, "d", "c", "m3", "✅", remindAt)

	if err := s.SetStatus(b.ID, StatusCompleted); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := s.DeleteCampaign(d.ID); err != nil {
		t.Fatalf("DeleteCampaign failed: %v", err)
	}

	all, err := s.ListCampaigns("")
	if err != nil {
		t.Fatalf("ListCampaigns failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected tombstone excluded, got %d campaigns", len(all))
	}

	active, err := s.ListCampaigns(StatusActive)
	if err != nil {
		t.Fatalf("ListCampaigns(active) failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Errorf("active filter returned %+v", active)
	}

	// The tombstoned row is still reachable by id.
	got, err := s.GetCampaign(d.ID)
	if err != nil {
		t.Fatalf("GetCampaign(deleted) failed: %v", err)
	}
	if got.Status != StatusDeleted {
		t.Errorf("deleted campaign status = %s", got.Status)
	}
}

func TestListDue(t *testing.T) {
	s := setupStore(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := mustCreate(t, s, "later", "c", "m1", "✅", now.Add(-time.Minute))
	earlier := mustCreate(t, s, "earlier", "c", "m2", "✅", now.Add(-time.Hour))
	mustCreate(t, s, "future", "c", "m3", "✅", now.Add(time.Hour))
	done := mustCreate(t, s, "done", "c", "m4", "✅", now.Add(-time.Hour))
	if err := s.SetStatus(done.ID, StatusCompleted); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	due, err := s.ListDue(now)
	if err != nil {
		t.Fatalf("ListDue failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due campaigns, got %d", len(due))
	}
	if due[0].ID != earlier.ID || due[1].ID != later.ID {
		t.Errorf("due campaigns not in remind_at order: %d, %d", due[0].ID, due[1].ID)
	}
}

func TestUpsertOptInIdempotent(t *testing.T) {
	s := setupStore(t)

	c := mustCreate(t, s, "", "c", "m", "✅", time.Now().UTC())
	now := time.Now().UTC()

	inserted, err := s.UpsertOptIn(c.ID, "user1", "Alice", now)
	if err != nil {
		t.Fatalf("UpsertOptIn failed: %v", err)
	}
	if !inserted {
		t.Error("first upsert should insert")
	}

	// Repeat is a no-op and does not refresh the username.
	inserted, err = s.UpsertOptIn(c.ID, "user1", "Alicia", now)
	if err != nil {
		t.Fatalf("second UpsertOptIn failed: %v", err)
	}
	if inserted {
		t.Error("second upsert should not insert")
	}

	optins, err := s.ListOptIns(c.ID, 0, "")
	if err != nil {
		t.Fatalf("ListOptIns failed: %v", err)
	}
	if len(optins) != 1 || optins[0].Username != "Alice" {
		t.Errorf("unexpected opt-ins: %+v", optins)
	}

	n, err := s.CountOptIns(c.ID)
	if err != nil {
		t.Fatalf("CountOptIns failed: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestListOptInsPagination(t *testing.T) {
	s := setupStore(t)

	c := mustCreate(t, s, "", "c", "m", "✅", time.Now().UTC())
	now := time.Now().UTC()
	ids := []string{"u3", "u1", "u5", "u2", "u4"}
	for _, id := range ids {
		if _, err := s.UpsertOptIn(c.ID, id, "", now); err != nil {
			t.Fatalf("UpsertOptIn(%s) failed: %v", id, err)
		}
	}

	// Pages follow insertion order, not user id order.
	page, err := s.ListOptIns(c.ID, 2, "")
	if err != nil {
		t.Fatalf("ListOptIns failed: %v", err)
	}
	if len(page) != 2 || page[0].UserID != "u3" || page[1].UserID != "u1" {
		t.Fatalf("first page = %+v", page)
	}

	page, err = s.ListOptIns(c.ID, 2, page[len(page)-1].UserID)
	if err != nil {
		t.Fatalf("ListOptIns(cursor) failed: %v", err)
	}
	if len(page) != 2 || page[0].UserID != "u5" || page[1].UserID != "u2" {
		t.Fatalf("second page = %+v", page)
	}

	page, err = s.ListOptIns(c.ID, 2, page[len(page)-1].UserID)
	if err != nil {
		t.Fatalf("ListOptIns(last page) failed: %v", err)
	}
	if len(page) != 1 || page[0].UserID != "u4" {
		t.Fatalf("last page = %+v", page)
	}
}

func TestDeleteCascades(t *testing.T) {
	s := setupStore(t)

	c := mustCreate(t, s, "", "c", "m", "✅", time.Now().UTC())
	now := time.Now().UTC()
	if _, err := s.UpsertOptIn(c.ID, "u1", "", now); err != nil {
		t.Fatalf("UpsertOptIn failed: %v", err)
	}
	if err := s.AppendReminderLog(c.ID, now, 1, 1, true, ""); err != nil {
		t.Fatalf("AppendReminderLog failed: %v", err)
	}

	if err := s.DeleteCampaign(c.ID); err != nil {
		t.Fatalf("DeleteCampaign failed: %v", err)
	}

	n, err := s.CountOptIns(c.ID)
	if err != nil {
		t.Fatalf("CountOptIns failed: %v", err)
	}
	if n != 0 {
		t.Errorf("opt-ins survived delete: %d", n)
	}
	logs, err := s.ListReminderLogs(c.ID)
	if err != nil {
		t.Fatalf("ListReminderLogs failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("reminder logs survived delete: %d", len(logs))
	}
}

func TestReminderLogRoundTrip(t *testing.T) {
	s := setupStore(t)

	c := mustCreate(t, s, "", "c", "m", "✅", time.Now().UTC())
	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := s.AppendReminderLog(c.ID, sentAt, 10, 2, false, "boom"); err != nil {
		t.Fatalf("AppendReminderLog failed: %v", err)
	}

	logs, err := s.ListReminderLogs(c.ID)
	if err != nil {
		t.Fatalf("ListReminderLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	l := logs[0]
	if l.RecipientCount != 10 || l.MessageChunks != 2 || l.Success || l.ErrorMessage != "boom" {
		t.Errorf("unexpected log: %+v", l)
	}
	if !l.SentAt.Equal(sentAt) {
		t.Errorf("sent_at = %v, want %v", l.SentAt, sentAt)
	}
}

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusActive, StatusCompleted},
		{StatusActive, StatusCancelled},
		{StatusActive, StatusDeleted},
		{StatusCancelled, StatusActive},
		{StatusCompleted, StatusDeleted},
	}
	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be legal", tc.from, tc.to)
		}
	}

	illegal := []struct{ from, to Status }{
		{StatusCompleted, StatusActive},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusCompleted},
		{StatusCancelled, StatusDeleted},
		{StatusDeleted, StatusActive},
		{StatusDeleted, StatusCompleted},
		{StatusActive, StatusActive},
	}
	for _, tc := range illegal {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
}
