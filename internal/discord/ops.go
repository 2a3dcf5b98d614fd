package discord

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// reactionPageSize is Discord's maximum page size for reaction pagination.
const reactionPageSize = 100

// GuildList returns the guilds the bot is a member of, filtered by the
// allowlist.
func (s *Session) GuildList() ([]Guild, error) {
	if s.cfg.DryRun {
		return []Guild{fixtureGuild}, nil
	}
	dg, err := s.connected()
	if err != nil {
		return nil, err
	}

	userGuilds, err := dg.UserGuilds(200, "", "", true)
	if err != nil {
		return nil, mapError("list guilds", err)
	}

	var guilds []Guild
	for _, g := range userGuilds {
		if s.guildAllowed(g.ID) != nil {
			continue
		}
		guilds = append(guilds, Guild{
			ID:          g.ID,
			Name:        g.Name,
			Owner:       g.Owner,
			MemberCount: g.ApproximateMemberCount,
		})
	}
	return guilds, nil
}

// ChannelGet fetches one channel and enforces the allowlist on its guild.
func (s *Session) ChannelGet(channelID string) (*Channel, error) {
	if s.cfg.DryRun {
		return fixtureChannel(channelID), nil
	}
	dg, err := s.connected()
	if err != nil {
		return nil, err
	}

	ch, err := dg.Channel(channelID)
	if err != nil {
		return nil, mapError("get channel", err)
	}
	if err := s.guildAllowed(ch.GuildID); err != nil {
		return nil, err
	}
	return convertChannel(ch), nil
}

// ChannelList returns the channels of a guild, optionally filtered by type
// name (e.g. "text", "voice", "category").
func (s *Session) ChannelList(guildID, typeFilter string) ([]Channel, error) {
	if err := s.guildAllowed(guildID); err != nil {
		return nil, err
	}
	if s.cfg.DryRun {
		return []Channel{*fixtureChannel(fixtureChannelID)}, nil
	}
	dg, err := s.connected()
	if err != nil {
		return nil, err
	}

	raw, err := dg.GuildChannels(guildID)
	if err != nil {
		return nil, mapError("list channels", err)
	}

	var channels []Channel
	for _, ch := range raw {
		c := convertChannel(ch)
		if typeFilter != "" && c.Type != typeFilter {
			continue
		}
		channels = append(channels, *c)
	}
	return channels, nil
}

// FindChannelByName resolves a channel in a guild by name. Exact
// case-insensitive matches win over substring matches.
func (s *Session) FindChannelByName(guildID, name string) (*Channel, error) {
	channels, err := s.ChannelList(guildID, "")
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	var partial *Channel
	for i := range channels {
		have := strings.ToLower(channels[i].Name)
		if have == needle {
			return &channels[i], nil
		}
		if partial == nil && strings.Contains(have, needle) {
			partial = &channels[i]
		}
	}
	if partial != nil {
		return partial, nil
	}
	return nil, notFoundf("channel %q not found in guild %s", name, guildID)
}

// MessageGet fetches one message, allowlist enforced via its channel.
func (s *Session) MessageGet(channelID, messageID string) (*Message, error) {
	if s.cfg.DryRun {
		return fixtureMessage(channelID, messageID), nil
	}
	if _, err := s.ChannelGet(channelID); err != nil {
		return nil, err
	}
	dg, err := s.connected()
	if err != nil {
		return nil, err
	}

	msg, err := dg.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, mapError("get message", err)
	}
	return convertMessage(msg), nil
}

// RecentMessages returns up to limit recent messages in a channel, newest
// first.
func (s *Session) RecentMessages(channelID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if s.cfg.DryRun {
		return []Message{*fixtureMessage(channelID, fixtureMessageID)}, nil
	}
	if _, err := s.ChannelGet(channelID); err != nil {
		return nil, err
	}
	dg, err := s.connected()
	if err != nil {
		return nil, err
	}

	raw, err := dg.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, mapError("get recent messages", err)
	}

	messages := make([]Message, 0, len(raw))
	for _, m := range raw {
		messages = append(messages, *convertMessage(m))
	}
	return messages, nil
}

// ReactionUsers pages through every user who reacted to a message with the
// given emoji. The emoji string must match Discord's representation exactly:
// the raw Unicode emoji, or name:id for custom emoji. Each call re-fetches
// from the start, so the traversal is restartable.
func (s *Session) ReactionUsers(channelID, messageID, emoji string) ([]User, error) {
	if s.cfg.DryRun {
		return nil, nil
	}
	if _, err := s.ChannelGet(channelID); err != nil {
		return nil, err
	}
	dg, err := s.connected()
	if err != nil {
		return nil, err
	}

	var users []User
	afterID := ""
	for {
		page, err := dg.MessageReactions(channelID, messageID, emoji, reactionPageSize, "", afterID)
		if err != nil {
			return nil, mapError("list reaction users", err)
		}
		for _, u := range page {
			users = append(users, User{
				ID:          u.ID,
				Username:    u.Username,
				DisplayName: u.GlobalName,
				Bot:         u.Bot,
			})
		}
		if len(page) < reactionPageSize {
			return users, nil
		}
		afterID = page[len(page)-1].ID
	}
}

// MessageSend posts a message to a channel, optionally as a reply. Under
// DRY-RUN nothing is sent and a synthetic message id is returned.
func (s *Session) MessageSend(channelID, content, replyTo string) (string, error) {
	if s.cfg.DryRun {
		seq := atomic.AddInt64(&s.sentSeq, 1)
		id := syntheticMessageID(seq)
		log.Printf("[discord] DRY_RUN: suppressed send to %s (%d chars)", channelID, len(content))
		return id, nil
	}
	if _, err := s.ChannelGet(channelID); err != nil {
		return "", err
	}
	dg, err := s.connected()
	if err != nil {
		return "", err
	}

	var msg *discordgo.Message
	if replyTo != "" {
		msg, err = dg.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
			ChannelID: channelID,
			MessageID: replyTo,
		})
	} else {
		msg, err = dg.ChannelMessageSend(channelID, content)
	}
	if err != nil {
		return "", mapError("send message", err)
	}
	return msg.ID, nil
}

func convertChannel(ch *discordgo.Channel) *Channel {
	return &Channel{
		ID:      ch.ID,
		GuildID: ch.GuildID,
		Name:    ch.Name,
		Type:    channelTypeName(ch.Type),
		Topic:   ch.Topic,
		NSFW:    ch.NSFW,
	}
}

func convertMessage(m *discordgo.Message) *Message {
	msg := &Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
	}
	for _, r := range m.Reactions {
		if r.Emoji == nil {
			continue
		}
		msg.Reactions = append(msg.Reactions, Reaction{
			Emoji: r.Emoji.APIName(),
			Count: r.Count,
		})
	}
	return msg
}

func channelTypeName(t discordgo.ChannelType) string {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return "text"
	case discordgo.ChannelTypeGuildVoice:
		return "voice"
	case discordgo.ChannelTypeGuildCategory:
		return "category"
	case discordgo.ChannelTypeGuildNews:
		return "news"
	case discordgo.ChannelTypeGuildStageVoice:
		return "stage"
	case discordgo.ChannelTypeGuildForum:
		return "forum"
	case discordgo.ChannelTypeGuildNewsThread, discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread:
		return "thread"
	case discordgo.ChannelTypeDM, discordgo.ChannelTypeGroupDM:
		return "dm"
	}
	return "other"
}
