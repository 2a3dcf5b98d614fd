package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/rallycall/discord-mcp/internal/faults"
)

// CreateCampaign inserts a new active campaign. A collision on the
// (channel, message, emoji) identity of a non-deleted campaign yields a
// Duplicate fault carrying the existing campaign id.
func (s *Store) CreateCampaign(title, channelID, messageID, emoji string, remindAt time.Time) (*Campaign, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO campaigns (title, channel_id, message_id, emoji, remind_at, created_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullString(title), channelID, messageID, emoji, remindAt.UTC(), now, StatusActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findByIdentity(channelID, messageID, emoji)
			if lookupErr != nil {
				return nil, fmt.Errorf("lookup duplicate campaign: %w", lookupErr)
			}
			fe := faults.Wrap(faults.Duplicate, err,
				"campaign already exists for (%s, %s, %s)", channelID, messageID, emoji)
			fe.CampaignID = existing.ID
			return nil, fe
		}
		return nil, fmt.Errorf("insert campaign: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("campaign id: %w", err)
	}
	return s.GetCampaign(id)
}

// GetCampaign loads one campaign by id, including tombstoned ones.
func (s *Store) GetCampaign(id int64) (*Campaign, error) {
	row := s.db.QueryRow(
		`SELECT id, title, channel_id, message_id, emoji, remind_at, created_at, status
		 FROM campaigns WHERE id = ?`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, faults.New(faults.NotFound, "campaign %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return c, nil
}

// ListCampaigns returns campaigns ordered by creation, optionally filtered by
// status. Tombstoned campaigns are never listed.
func (s *Store) ListCampaigns(status Status) ([]*Campaign, error) {
	query := `SELECT id, title, channel_id, message_id, emoji, remind_at, created_at, status
	          FROM campaigns WHERE status != ?`
	args := []any{StatusDeleted}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ListDue returns active campaigns whose remind_at has passed, ordered by
// remind_at ascending.
func (s *Store) ListDue(now time.Time) ([]*Campaign, error) {
	rows, err := s.db.Query(
		`SELECT id, title, channel_id, message_id, emoji, remind_at, created_at, status
		 FROM campaigns WHERE status = ? AND remind_at <= ?
		 ORDER BY remind_at ASC`, StatusActive, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("list due campaigns: %w", err)
	}
	defer rows.Close()

	var due []*Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		due = append(due, c)
	}
	return due, rows.Err()
}

// SetStatus writes a campaign status. Transition legality is enforced by the
// lifecycle layer; the store only checks existence.
func (s *Store) SetStatus(id int64, status Status) error {
	res, err := s.db.Exec(`UPDATE campaigns SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set campaign %d status: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.New(faults.NotFound, "campaign %d not found", id)
	}
	return nil
}

// DeleteCampaign tombstones a campaign and hard-deletes its opt-ins and
// reminder-log rows, giving cascade-equivalent semantics.
func (s *Store) DeleteCampaign(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE campaigns SET status = ? WHERE id = ?`, StatusDeleted, id)
	if err != nil {
		return fmt.Errorf("tombstone campaign %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.New(faults.NotFound, "campaign %d not found", id)
	}
	if _, err := tx.Exec(`DELETE FROM opt_ins WHERE campaign_id = ?`, id); err != nil {
		return fmt.Errorf("delete opt-ins for campaign %d: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM reminder_logs WHERE campaign_id = ?`, id); err != nil {
		return fmt.Errorf("delete reminder logs for campaign %d: %w", id, err)
	}
	return tx.Commit()
}

func (s *Store) findByIdentity(channelID, messageID, emoji string) (*Campaign, error) {
	row := s.db.QueryRow(
		`SELECT id, title, channel_id, message_id, emoji, remind_at, created_at, status
		 FROM campaigns
		 WHERE channel_id = ? AND message_id = ? AND emoji = ? AND status != ?`,
		channelID, messageID, emoji, StatusDeleted)
	return scanCampaign(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*Campaign, error) {
	var c Campaign
	var title sql.NullString
	if err := row.Scan(&c.ID, &title, &c.ChannelID, &c.MessageID, &c.Emoji,
		&c.RemindAt, &c.CreatedAt, &c.Status); err != nil {
		return nil, err
	}
	c.Title = title.String
	c.RemindAt = c.RemindAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
