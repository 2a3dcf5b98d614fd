package discord

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/rallycall/discord-mcp/internal/faults"
)

// mapError classifies a discordgo error into the fault taxonomy. Rate limits
// carry the retry-after Discord reported so the sender can honor it.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		fe := faults.Wrap(faults.RateLimited, err, "%s rate limited", op)
		fe.RetryAfter = rl.RetryAfter
		return fe
	}

	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusForbidden:
			return faults.Wrap(faults.Forbidden, err, "%s forbidden", op)
		case http.StatusNotFound:
			return faults.Wrap(faults.NotFound, err, "%s not found", op)
		case http.StatusTooManyRequests:
			return faults.Wrap(faults.RateLimited, err, "%s rate limited", op)
		}
	}

	return faults.Wrap(faults.Transient, err, "%s failed", op)
}
