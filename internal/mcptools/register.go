package mcptools

import (
	"context"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shirou/gopsutil/v3/process"
)

// RegisterAll registers the full tool surface with the MCP server.
func RegisterAll(s *server.MCPServer, deps *Dependencies) {
	registerServerTools(s, deps)
	registerMessageTools(s, deps)
	registerCampaignTools(s, deps)
	registerReminderTools(s, deps)
}

// ensureConnected is asserted by every handler before it does anything else.
func ensureConnected(deps *Dependencies) *mcp.CallToolResult {
	if err := deps.Session.EnsureConnected(); err != nil {
		return faultResult(err)
	}
	return nil
}

func registerServerTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("discord_list_servers",
		mcp.WithDescription("List all Discord servers (guilds) the bot is a member of, filtered by the guild allowlist."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		guilds, err := deps.Session.GuildList()
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"servers": guilds, "count": len(guilds)}), nil
	})

	s.AddTool(mcp.NewTool("discord_list_channels",
		mcp.WithDescription("List the channels of a Discord server, optionally filtered by type (text, voice, category, forum, news, thread, stage)."),
		mcp.WithString("guild_id", mcp.Required(), mcp.Description("The Discord server (guild) ID")),
		mcp.WithString("type", mcp.Description("Optional channel type filter")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		guildID := strArg(args, "guild_id")
		if guildID == "" {
			return mcp.NewToolResultError("guild_id is required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		channels, err := deps.Session.ChannelList(guildID, strArg(args, "type"))
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"channels": channels, "count": len(channels)}), nil
	})

	s.AddTool(mcp.NewTool("discord_get_channel_info",
		mcp.WithDescription("Get details about a Discord channel."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("The Discord channel ID")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		channelID := strArg(toolArgs(req), "channel_id")
		if channelID == "" {
			return mcp.NewToolResultError("channel_id is required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		ch, err := deps.Session.ChannelGet(channelID)
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"channel": ch}), nil
	})

	s.AddTool(mcp.NewTool("discord_find_channel",
		mcp.WithDescription("Find a channel in a server by name. Exact case-insensitive matches win over substring matches."),
		mcp.WithString("guild_id", mcp.Required(), mcp.Description("The Discord server (guild) ID")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Channel name to look for")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		guildID, name := strArg(args, "guild_id"), strArg(args, "name")
		if guildID == "" || name == "" {
			return mcp.NewToolResultError("guild_id and name are required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		ch, err := deps.Session.FindChannelByName(guildID, name)
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"channel": ch}), nil
	})

	s.AddTool(mcp.NewTool("discord_bot_status",
		mcp.WithDescription("Report the gateway session state plus process metrics (memory, CPU, uptime)."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload := map[string]any{"session": deps.Session.Status()}
		if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
			metrics := map[string]any{}
			if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
				metrics["rss_bytes"] = mem.RSS
			}
			if cpu, err := proc.CPUPercent(); err == nil {
				metrics["cpu_percent"] = cpu
			}
			if created, err := proc.CreateTime(); err == nil {
				started := time.UnixMilli(created)
				metrics["uptime_seconds"] = int64(time.Since(started).Seconds())
			}
			payload["process"] = metrics
		}
		return okResult(payload), nil
	})

	s.AddTool(mcp.NewTool("discord_ping",
		mcp.WithDescription("Check gateway liveness and report heartbeat latency."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		return okResult(map[string]any{
			"pong":       true,
			"latency_ms": deps.Session.Latency().Milliseconds(),
		}), nil
	})
}

func registerMessageTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("discord_get_recent_messages",
		mcp.WithDescription("Fetch recent messages from a channel, newest first, including reaction counts."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("The Discord channel ID")),
		mcp.WithNumber("limit", mcp.Description("How many messages to fetch (1-100, default 50)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		channelID := strArg(args, "channel_id")
		if channelID == "" {
			return mcp.NewToolResultError("channel_id is required"), nil
		}
		limit := 50
		if n, ok := intArg(args, "limit"); ok {
			limit = int(n)
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		messages, err := deps.Session.RecentMessages(channelID, limit)
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"messages": messages, "count": len(messages)}), nil
	})

	s.AddTool(mcp.NewTool("discord_get_message",
		mcp.WithDescription("Fetch a single message by channel and message ID, including its reactions."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("The Discord channel ID")),
		mcp.WithString("message_id", mcp.Required(), mcp.Description("The Discord message ID")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		channelID, messageID := strArg(args, "channel_id"), strArg(args, "message_id")
		if channelID == "" || messageID == "" {
			return mcp.NewToolResultError("channel_id and message_id are required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		msg, err := deps.Session.MessageGet(channelID, messageID)
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"message": msg}), nil
	})

	s.AddTool(mcp.NewTool("discord_send_message",
		mcp.WithDescription("Send a message to a channel, optionally as a reply. Suppressed under DRY_RUN."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("The Discord channel ID to send to")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The message content")),
		mcp.WithString("reply_to", mcp.Description("Optional message ID to reply to")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		channelID, content := strArg(args, "channel_id"), strArg(args, "content")
		if channelID == "" || content == "" {
			return mcp.NewToolResultError("channel_id and content are required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		id, err := deps.Session.MessageSend(channelID, content, strArg(args, "reply_to"))
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{
			"message_id": id,
			"dry_run":    deps.Config.DryRun,
		}), nil
	})
}
