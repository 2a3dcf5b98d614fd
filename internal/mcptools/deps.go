// Package mcptools binds the campaign engine and the Discord session into the
// MCP tool surface. The toolset is a static table built at startup; handlers
// return structured JSON results in-band and reserve transport errors for
// fatal faults.
package mcptools

import (
	"github.com/rallycall/discord-mcp/internal/campaign"
	"github.com/rallycall/discord-mcp/internal/config"
	"github.com/rallycall/discord-mcp/internal/discord"
)

// Dependencies carries everything tool handlers need. Handlers receive it
// explicitly; there is no global state.
type Dependencies struct {
	Config  *config.Config
	Session *discord.Session
	Engine  *campaign.Engine
}
