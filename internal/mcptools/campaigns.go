package mcptools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rallycall/discord-mcp/internal/store"
)

func registerCampaignTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("discord_create_campaign",
		mcp.WithDescription("Create a reaction opt-in reminder campaign tracking an emoji on a message. The (channel, message, emoji) triple must be unique."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("Channel ID containing the tracked message")),
		mcp.WithString("message_id", mcp.Required(), mcp.Description("Message ID to track reactions on")),
		mcp.WithString("emoji", mcp.Required(), mcp.Description("Emoji to track, exactly as Discord reports it (Unicode emoji or name:id for custom emoji)")),
		mcp.WithString("remind_at", mcp.Required(), mcp.Description("When to send the reminder, RFC 3339 (e.g. 2024-01-15T10:00:00Z)")),
		mcp.WithString("title", mcp.Description("Optional campaign title used in the reminder header")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		channelID, messageID := strArg(args, "channel_id"), strArg(args, "message_id")
		emoji, remindRaw := strArg(args, "emoji"), strArg(args, "remind_at")
		if channelID == "" || messageID == "" || emoji == "" || remindRaw == "" {
			return mcp.NewToolResultError("channel_id, message_id, emoji and remind_at are required"), nil
		}
		remindAt, err := parseTime(remindRaw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		c, err := deps.Engine.CreateCampaign(strArg(args, "title"), channelID, messageID, emoji, remindAt)
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"campaign": c}), nil
	})

	s.AddTool(mcp.NewTool("discord_list_campaigns",
		mcp.WithDescription("List campaigns, optionally filtered by status (active, completed, cancelled)."),
		mcp.WithString("status", mcp.Description("Optional status filter")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		campaigns, err := deps.Engine.ListCampaigns(store.Status(strArg(toolArgs(req), "status")))
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"campaigns": campaigns, "count": len(campaigns)}), nil
	})

	s.AddTool(mcp.NewTool("discord_get_campaign",
		mcp.WithDescription("Get a campaign with its opt-in count and broadcast history."),
		mcp.WithNumber("campaign_id", mcp.Required(), mcp.Description("The campaign ID")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := intArg(toolArgs(req), "campaign_id")
		if !ok {
			return mcp.NewToolResultError("campaign_id is required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		c, err := deps.Engine.GetCampaign(id)
		if err != nil {
			return faultResult(err), nil
		}
		count, err := deps.Engine.Store().CountOptIns(id)
		if err != nil {
			return faultResult(err), nil
		}
		logs, err := deps.Engine.Store().ListReminderLogs(id)
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{
			"campaign":      c,
			"optin_count":   count,
			"reminder_logs": logs,
		}), nil
	})

	s.AddTool(mcp.NewTool("discord_update_campaign_status",
		mcp.WithDescription("Update a campaign's status. Legal transitions: active -> completed/cancelled/deleted, cancelled -> active, completed -> deleted."),
		mcp.WithNumber("campaign_id", mcp.Required(), mcp.Description("The campaign ID")),
		mcp.WithString("status", mcp.Required(), mcp.Description("The new status")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		id, ok := intArg(args, "campaign_id")
		status := strArg(args, "status")
		if !ok || status == "" {
			return mcp.NewToolResultError("campaign_id and status are required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		c, err := deps.Engine.UpdateStatus(id, store.Status(status))
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"campaign": c}), nil
	})

	s.AddTool(mcp.NewTool("discord_delete_campaign",
		mcp.WithDescription("Delete a campaign. Its opt-ins and reminder log are removed with it."),
		mcp.WithNumber("campaign_id", mcp.Required(), mcp.Description("The campaign ID")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := intArg(toolArgs(req), "campaign_id")
		if !ok {
			return mcp.NewToolResultError("campaign_id is required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		if err := deps.Engine.DeleteCampaign(id); err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"deleted": id}), nil
	})

	s.AddTool(mcp.NewTool("discord_list_optins",
		mcp.WithDescription("List a campaign's opt-ins in insertion order with cursor pagination."),
		mcp.WithNumber("campaign_id", mcp.Required(), mcp.Description("The campaign ID")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 100)")),
		mcp.WithString("after_user_id", mcp.Description("Cursor: return opt-ins recorded after this user's")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		id, ok := intArg(args, "campaign_id")
		if !ok {
			return mcp.NewToolResultError("campaign_id is required"), nil
		}
		limit := 100
		if n, ok := intArg(args, "limit"); ok && n > 0 {
			limit = int(n)
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		optins, err := deps.Engine.ListOptIns(id, limit, strArg(args, "after_user_id"))
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{
			"optins": optins,
			"count":  len(optins),
			"pagination": map[string]any{
				"limit":    limit,
				"has_more": len(optins) == limit,
			},
		}), nil
	})
}

func registerReminderTools(s *server.MCPServer, deps *Dependencies) {
	s.AddTool(mcp.NewTool("discord_tally_optins",
		mcp.WithDescription("Fetch current reactions for a campaign's tracked emoji and record new opt-ins. Idempotent; bot reactors are skipped."),
		mcp.WithNumber("campaign_id", mcp.Required(), mcp.Description("The campaign ID")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := intArg(toolArgs(req), "campaign_id")
		if !ok {
			return mcp.NewToolResultError("campaign_id is required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		tally, err := deps.Engine.Tally(id)
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"tally": tally}), nil
	})

	s.AddTool(mcp.NewTool("discord_build_reminder",
		mcp.WithDescription("Build the reminder broadcast: ordered message chunks of at most 2000 characters mentioning every opt-in. Does not send anything."),
		mcp.WithNumber("campaign_id", mcp.Required(), mcp.Description("The campaign ID")),
		mcp.WithString("template", mcp.Description("Optional template: a configured template name, or a literal string with {title}, {mentions}, {total_optins}")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		id, ok := intArg(args, "campaign_id")
		if !ok {
			return mcp.NewToolResultError("campaign_id is required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		rem, err := deps.Engine.BuildReminder(id, strArg(args, "template"))
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{"reminder": rem, "chunk_count": len(rem.Chunks)}), nil
	})

	s.AddTool(mcp.NewTool("discord_send_reminder",
		mcp.WithDescription("Send the reminder broadcast for a campaign. dry_run defaults to true for safety; pass false to actually deliver."),
		mcp.WithNumber("campaign_id", mcp.Required(), mcp.Description("The campaign ID")),
		mcp.WithBoolean("dry_run", mcp.Description("If true (the default), build and audit without sending")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := toolArgs(req)
		id, ok := intArg(args, "campaign_id")
		if !ok {
			return mcp.NewToolResultError("campaign_id is required"), nil
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		res, err := deps.Engine.SendReminder(id, boolArg(args, "dry_run", true))
		if err != nil {
			if res != nil {
				// Partial broadcast: report progress alongside the fault.
				return partialSendResult(res, err), nil
			}
			return faultResult(err), nil
		}
		return okResult(map[string]any{"sending": res}), nil
	})

	s.AddTool(mcp.NewTool("discord_run_due_reminders",
		mcp.WithDescription("Process every active campaign whose remind_at has passed: tally, then a real send, in remind_at order. Intended to be invoked periodically (e.g. by cron)."),
		mcp.WithString("now", mcp.Description("Optional RFC 3339 timestamp to treat as the current time (for testing)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		now := time.Now().UTC()
		if raw := strArg(toolArgs(req), "now"); raw != "" {
			t, err := parseTime(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			now = t
		}
		if r := ensureConnected(deps); r != nil {
			return r, nil
		}
		outcomes, err := deps.Engine.RunDue(now)
		if err != nil {
			return faultResult(err), nil
		}
		return okResult(map[string]any{
			"current_time": now.Format(time.RFC3339),
			"processed":    len(outcomes),
			"outcomes":     outcomes,
		}), nil
	})
}
