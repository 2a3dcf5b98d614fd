// Package campaign implements the reaction-based opt-in reminder engine:
// tallying reactors into an idempotent opt-in set, chunking mention broadcasts
// under Discord's message ceiling, rate-limited delivery with an audit log,
// and time-driven execution of due campaigns.
package campaign

import (
	"time"

	"github.com/rallycall/discord-mcp/internal/discord"
	"github.com/rallycall/discord-mcp/internal/store"
)

// Gateway is the slice of the Discord session the engine consumes. The
// concrete *discord.Session implements it; tests substitute a fake.
type Gateway interface {
	EnsureConnected() error
	MessageGet(channelID, messageID string) (*discord.Message, error)
	ReactionUsers(channelID, messageID, emoji string) ([]discord.User, error)
	MessageSend(channelID, content, replyTo string) (string, error)
}

// Options configures an Engine.
type Options struct {
	// DryRun suppresses outbound Discord sends engine-wide; store paths run
	// unchanged.
	DryRun bool

	// Templates maps template names to reminder template strings.
	Templates map[string]string
}

// Engine ties the store and the gateway together. One engine serves all
// campaigns; the store serializes state mutations.
type Engine struct {
	store *store.Store
	gw    Gateway
	opts  Options

	// Delivery throttles. The inter-chunk floor is an engine-level guarantee
	// on top of whatever per-route limits the Discord layer enforces.
	InterChunkDelay    time.Duration
	InterCampaignDelay time.Duration
	MaxSendRetries     int
}

// New creates an engine with the default throttles.
func New(st *store.Store, gw Gateway, opts Options) *Engine {
	return &Engine{
		store:              st,
		gw:                 gw,
		opts:               opts,
		InterChunkDelay:    time.Second,
		InterCampaignDelay: 2 * time.Second,
		MaxSendRetries:     3,
	}
}

// Store exposes the underlying store for read-only tool queries.
func (e *Engine) Store() *store.Store { return e.store }
