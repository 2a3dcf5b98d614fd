package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AppendReminderLog writes the audit row for one broadcast attempt.
func (s *Store) AppendReminderLog(campaignID int64, sentAt time.Time, recipientCount, messageChunks int, success bool, errorMessage string) error {
	var errMsg any
	if errorMessage != "" {
		errMsg = errorMessage
	}
	_, err := s.db.Exec(
		`INSERT INTO reminder_logs (campaign_id, sent_at, recipient_count, message_chunks, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		campaignID, sentAt.UTC(), recipientCount, messageChunks, success, errMsg,
	)
	if err != nil {
		return fmt.Errorf("append reminder log for campaign %d: %w", campaignID, err)
	}
	return nil
}

// ListReminderLogs returns the broadcast history for a campaign, oldest first.
func (s *Store) ListReminderLogs(campaignID int64) ([]*ReminderLog, error) {
	rows, err := s.db.Query(
		`SELECT id, campaign_id, sent_at, recipient_count, message_chunks, success, error_message
		 FROM reminder_logs WHERE campaign_id = ? ORDER BY id ASC`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list reminder logs for campaign %d: %w", campaignID, err)
	}
	defer rows.Close()

	var logs []*ReminderLog
	for rows.Next() {
		var l ReminderLog
		var errMsg sql.NullString
		if err := rows.Scan(&l.ID, &l.CampaignID, &l.SentAt, &l.RecipientCount,
			&l.MessageChunks, &l.Success, &errMsg); err != nil {
			return nil, fmt.Errorf("scan reminder log: %w", err)
		}
		l.ErrorMessage = errMsg.String
		l.SentAt = l.SentAt.UTC()
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
