package campaign

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rallycall/discord-mcp/internal/discord"
	"github.com/rallycall/discord-mcp/internal/faults"
	"github.com/rallycall/discord-mcp/internal/store"
)

// fakeGateway is an in-memory Gateway. Reactors are keyed by
// channel|message|emoji; sendErrs is a queue consumed one entry per
// MessageSend call (nil entries succeed).
type fakeGateway struct {
	reactors map[string][]discord.User
	missing  map[string]bool
	sendErrs []error
	sent     []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		reactors: make(map[string][]discord.User),
		missing:  make(map[string]bool),
	}
}

func gwKey(parts ...string) string { return strings.Join(parts, "|") }

func (g *fakeGateway) EnsureConnected() error { return nil }

func (g *fakeGateway) MessageGet(channelID, messageID string) (*discord.Message, error) {
	if g.missing[gwKey(channelID, messageID)] {
		return nil, faults.New(faults.NotFound, "message %s not found in channel %s", messageID, channelID)
	}
	return &discord.Message{ID: messageID, ChannelID: channelID}, nil
}

func (g *fakeGateway) ReactionUsers(channelID, messageID, emoji string) ([]discord.User, error) {
	return g.reactors[gwKey(channelID, messageID, emoji)], nil
}

func (g *fakeGateway) MessageSend(channelID, content, replyTo string) (string, error) {
	if len(g.sendErrs) > 0 {
		err := g.sendErrs[0]
		g.sendErrs = g.sendErrs[1:]
		if err != nil {
			return "", err
		}
	}
	g.sent = append(g.sent, content)
	return fmt.Sprintf("sent-%d", len(g.sent)), nil
}

// newTestEngine builds an engine over a temp database with all delivery
// throttles zeroed.
func newTestEngine(t *testing.T, opts Options) (*Engine, *fakeGateway) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gw := newFakeGateway()
	e := New(st, gw, opts)
	e.InterChunkDelay = 0
	e.InterCampaignDelay = 0
	return e, gw
}
