// Package discord wraps a single long-lived discordgo session behind the
// operations the campaign engine consumes: guild/channel/message/reaction
// reads and message sends. It enforces the guild allowlist and the DRY-RUN
// short-circuit.
package discord

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rallycall/discord-mcp/internal/config"
	"github.com/rallycall/discord-mcp/internal/faults"
)

// Session is the process-wide Discord gateway session.
type Session struct {
	cfg *config.Config

	mu      sync.Mutex
	dg      *discordgo.Session
	open    bool
	sentSeq int64
}

// New creates a session without connecting. Under DRY-RUN no token is
// required; connection attempts become no-ops.
func New(cfg *config.Config) (*Session, error) {
	s := &Session{cfg: cfg}
	if cfg.DryRun {
		return s, nil
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent
	s.dg = dg
	return s, nil
}

// EnsureConnected opens the gateway connection once; subsequent calls are
// no-ops. Every tool handler calls this before touching Discord.
func (s *Session) EnsureConnected() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.DryRun || s.open {
		return nil
	}
	if s.dg == nil {
		return faults.New(faults.NotConnected, "discord session not configured")
	}
	if err := s.dg.Open(); err != nil {
		return faults.Wrap(faults.NotConnected, err, "open gateway connection")
	}
	s.open = true
	log.Printf("[discord] connected as %s", s.dg.State.User.Username)
	return nil
}

// Close shuts the gateway connection down.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	s.open = false
	return s.dg.Close()
}

func (s *Session) connected() (*discordgo.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.dg == nil {
		return nil, faults.New(faults.NotConnected, "discord session not connected")
	}
	return s.dg, nil
}

// Status reports the session state for the bot_status tool.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{DryRun: s.cfg.DryRun}
	if s.cfg.DryRun {
		st.Connected = true
		st.BotID = fixtureBotID
		st.BotName = fixtureBotName
		st.GuildCount = 1
		return st
	}
	if !s.open || s.dg == nil || s.dg.State == nil || s.dg.State.User == nil {
		return st
	}
	st.Connected = true
	st.BotID = s.dg.State.User.ID
	st.BotName = s.dg.State.User.Username
	st.GuildCount = len(s.dg.State.Guilds)
	st.LatencyMS = s.dg.HeartbeatLatency().Milliseconds()
	return st
}

// Latency returns the gateway heartbeat latency.
func (s *Session) Latency() time.Duration {
	if s.cfg.DryRun {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.dg == nil {
		return 0
	}
	return s.dg.HeartbeatLatency()
}

// guildAllowed checks the allowlist before any Discord I/O against a guild.
// Direct messages (empty guild id) are never restricted.
func (s *Session) guildAllowed(guildID string) error {
	if guildID == "" || s.cfg.GuildAllowed(guildID) {
		return nil
	}
	return faults.New(faults.Forbidden, "guild %s is not in the allowlist", guildID)
}
