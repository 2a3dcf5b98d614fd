package discord

import (
	"fmt"
	"time"

	"github.com/rallycall/discord-mcp/internal/faults"
)

// Deterministic fixtures returned by read operations under DRY-RUN. The store
// paths stay intact; only Discord traffic is suppressed.
const (
	fixtureGuildID   = "000000000000000001"
	fixtureChannelID = "000000000000000002"
	fixtureMessageID = "000000000000000003"
	fixtureBotID     = "000000000000000004"
	fixtureBotName   = "dry-run-bot"
)

var fixtureGuild = Guild{
	ID:          fixtureGuildID,
	Name:        "Dry Run Guild",
	MemberCount: 2,
}

var fixtureTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fixtureChannel(channelID string) *Channel {
	if channelID == "" {
		channelID = fixtureChannelID
	}
	return &Channel{
		ID:      channelID,
		GuildID: fixtureGuildID,
		Name:    "dry-run-channel",
		Type:    "text",
	}
}

func fixtureMessage(channelID, messageID string) *Message {
	if messageID == "" {
		messageID = fixtureMessageID
	}
	return &Message{
		ID:         messageID,
		ChannelID:  channelID,
		AuthorID:   fixtureBotID,
		AuthorName: fixtureBotName,
		Content:    "dry run fixture message",
		Timestamp:  fixtureTime,
	}
}

func syntheticMessageID(seq int64) string {
	return fmt.Sprintf("dry-run-%06d", seq)
}

func notFoundf(format string, args ...any) error {
	return faults.New(faults.NotFound, format, args...)
}
