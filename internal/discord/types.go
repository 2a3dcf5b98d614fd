package discord

import "time"

// Guild is a summary of a Discord server the bot can see.
type Guild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Owner       bool   `json:"owner"`
	MemberCount int    `json:"member_count,omitempty"`
}

// Channel is a summary of a Discord channel.
type Channel struct {
	ID      string `json:"id"`
	GuildID string `json:"guild_id,omitempty"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Topic   string `json:"topic,omitempty"`
	NSFW    bool   `json:"nsfw,omitempty"`
}

// Message is a summary of a Discord message, including reaction counts.
type Message struct {
	ID         string     `json:"id"`
	ChannelID  string     `json:"channel_id"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Reactions  []Reaction `json:"reactions,omitempty"`
}

// Reaction is an emoji with its reaction count on a message.
type Reaction struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// User is a Discord user as seen through reaction pagination.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Bot         bool   `json:"bot,omitempty"`
}

// Name returns the best display string for the user at tally time.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Status describes the gateway session for the bot_status tool.
type Status struct {
	Connected  bool   `json:"connected"`
	DryRun     bool   `json:"dry_run"`
	BotID      string `json:"bot_id,omitempty"`
	BotName    string `json:"bot_name,omitempty"`
	GuildCount int    `json:"guild_count"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
}
