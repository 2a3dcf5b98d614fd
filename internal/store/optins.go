package store

import (
	"fmt"
	"time"
)

// UpsertOptIn records a user's opt-in for a campaign. The insert is idempotent
// under the (campaign_id, user_id) uniqueness constraint: a repeat is a no-op
// and the stored username is not refreshed. Returns whether a row was
// inserted.
func (s *Store) UpsertOptIn(campaignID int64, userID, username string, talliedAt time.Time) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO opt_ins (campaign_id, user_id, username, tallied_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(campaign_id, user_id) DO NOTHING`,
		campaignID, userID, nullString(username), talliedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("upsert opt-in (%d, %s): %w", campaignID, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("opt-in rows affected: %w", err)
	}
	return n > 0, nil
}

// ListOptIns returns a page of opt-ins for a campaign in insertion order.
// afterUserID is a cursor: only opt-ins recorded after that user's are
// returned. limit <= 0 means no limit.
func (s *Store) ListOptIns(campaignID int64, limit int, afterUserID string) ([]*OptIn, error) {
	query := `SELECT id, campaign_id, user_id, COALESCE(username, ''), tallied_at
	          FROM opt_ins WHERE campaign_id = ?`
	args := []any{campaignID}
	if afterUserID != "" {
		query += ` AND id > (SELECT id FROM opt_ins WHERE campaign_id = ? AND user_id = ?)`
		args = append(args, campaignID, afterUserID)
	}
	query += " ORDER BY id ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list opt-ins for campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	var optins []*OptIn
	for rows.Next() {
		var o OptIn
		if err := rows.Scan(&o.ID, &o.CampaignID, &o.UserID, &o.Username, &o.TalliedAt); err != nil {
			return nil, fmt.Errorf("scan opt-in: %w", err)
		}
		o.TalliedAt = o.TalliedAt.UTC()
		optins = append(optins, &o)
	}
	return optins, rows.Err()
}

// CountOptIns returns the number of recorded opt-ins for a campaign.
func (s *Store) CountOptIns(campaignID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM opt_ins WHERE campaign_id = ?`, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count opt-ins for campaign %d: %w", campaignID, err)
	}
	return n, nil
}
