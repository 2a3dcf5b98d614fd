package mcptools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rallycall/discord-mcp/internal/faults"
)

func toolArgs(req mcp.CallToolRequest) map[string]any {
	args, _ := req.Params.Arguments.(map[string]any)
	return args
}

func strArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// intArg reads a JSON number argument. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case string:
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// parseTime accepts RFC 3339 timestamps, or a bare "2006-01-02T15:04:05"
// which is committed to UTC at the boundary.
func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q, use RFC 3339 like 2024-01-15T10:00:00Z", v)
	}
	return t.UTC(), nil
}

// okResult wraps a payload in a success envelope.
func okResult(payload map[string]any) *mcp.CallToolResult {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// partialSendResult reports a broadcast that stopped mid-way: success=false
// with both the progress counters and the fault.
func partialSendResult(sending any, err error) *mcp.CallToolResult {
	body := map[string]any{
		"success": false,
		"sending": sending,
		"error": map[string]any{
			"kind":    string(faults.KindOf(err)),
			"message": err.Error(),
		},
	}
	data, merr := json.MarshalIndent(body, "", "  ")
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}

// faultResult reports a classified fault as a structured in-band error.
// Duplicate faults carry the existing campaign id; rate limits carry the
// retry-after.
func faultResult(err error) *mcp.CallToolResult {
	detail := map[string]any{
		"kind":    string(faults.KindOf(err)),
		"message": err.Error(),
	}
	if fe, ok := faults.As(err); ok {
		if fe.CampaignID != 0 {
			detail["campaign_id"] = fe.CampaignID
		}
		if fe.RetryAfter > 0 {
			detail["retry_after_ms"] = fe.RetryAfter.Milliseconds()
		}
	}
	body := map[string]any{"success": false, "error": detail}
	data, merr := json.MarshalIndent(body, "", "  ")
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}
