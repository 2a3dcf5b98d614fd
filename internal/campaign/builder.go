package campaign

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rallycall/discord-mcp/internal/faults"
	"github.com/rallycall/discord-mcp/internal/store"
)

// MaxMessageLen is Discord's per-message ceiling in Unicode code points.
const MaxMessageLen = 2000

// DefaultTemplate is the reminder header used when no template is supplied.
const DefaultTemplate = "🔔 Reminder: {title}"

// optInPageSize is how many opt-ins the builder pulls from the store per page.
const optInPageSize = 1000

// Reminder is an ordered broadcast: chunks ready to send, each within
// MaxMessageLen code points, together mentioning every opt-in in insertion
// order.
type Reminder struct {
	CampaignID     int64    `json:"campaign_id"`
	RecipientCount int      `json:"total_recipients"`
	Chunks         []string `json:"message_chunks"`
}

// BuildReminder assembles the broadcast for a campaign. template may be empty
// (default header), the name of a configured template, or a literal template
// string with {title}, {mentions} and {total_optins} variables. A campaign
// with zero opt-ins yields no chunks.
func (e *Engine) BuildReminder(campaignID int64, template string) (*Reminder, error) {
	c, err := e.store.GetCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status == store.StatusDeleted {
		return nil, faults.New(faults.InvalidState, "campaign %d is deleted", campaignID)
	}

	optins, err := e.allOptIns(campaignID)
	if err != nil {
		return nil, err
	}

	rem := &Reminder{CampaignID: campaignID, RecipientCount: len(optins)}
	if len(optins) == 0 {
		return rem, nil
	}

	mentions := make([]string, len(optins))
	for i, o := range optins {
		mentions[i] = "<@" + o.UserID + ">"
	}

	header := e.headerText(c, template, len(optins))
	rem.Chunks = chunkMentions(header, mentions)
	return rem, nil
}

// allOptIns pages through the full opt-in set in insertion order.
func (e *Engine) allOptIns(campaignID int64) ([]*store.OptIn, error) {
	var all []*store.OptIn
	after := ""
	for {
		page, err := e.store.ListOptIns(campaignID, optInPageSize, after)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < optInPageSize {
			return all, nil
		}
		after = page[len(page)-1].UserID
	}
}

// headerText renders the chunk header. A template argument that names a
// configured template is resolved first; otherwise it is used verbatim. The
// {mentions} placeholder is stripped: mentions always follow the header.
func (e *Engine) headerText(c *store.Campaign, template string, totalOptIns int) string {
	if template == "" {
		template = DefaultTemplate
	} else if named, ok := e.opts.Templates[template]; ok {
		template = named
	}

	title := c.Title
	if title == "" {
		title = fmt.Sprintf("Campaign %d", c.ID)
	}

	header := strings.ReplaceAll(template, "{title}", title)
	header = strings.ReplaceAll(header, "{total_optins}", strconv.Itoa(totalOptIns))
	header = strings.ReplaceAll(header, "{mentions}", "")
	return strings.TrimSpace(header)
}

// chunkMentions packs mention tokens into chunks of at most MaxMessageLen code
// points. The first chunk opens with the header, continuations repeat it with
// a "(cont.)" marker. A mention too large to share a chunk with any header is
// emitted as a bare chunk of its own.
func chunkMentions(header string, mentions []string) []string {
	head := header + "\n"
	contHead := header + " (cont.)\n"
	headLen := utf8.RuneCountInString(head)
	contLen := utf8.RuneCountInString(contHead)

	var chunks []string
	var b strings.Builder
	b.WriteString(head)
	curLen := headLen
	hasMentions := false

	flush := func() {
		if hasMentions {
			chunks = append(chunks, b.String())
		}
		b.Reset()
		b.WriteString(contHead)
		curLen = contLen
		hasMentions = false
	}

	for _, m := range mentions {
		mlen := utf8.RuneCountInString(m)
		need := mlen
		if hasMentions {
			need++ // separating space
		}
		if curLen+need <= MaxMessageLen {
			if hasMentions {
				b.WriteByte(' ')
				curLen++
			}
			b.WriteString(m)
			curLen += mlen
			hasMentions = true
			continue
		}

		flush()
		if contLen+mlen <= MaxMessageLen {
			b.WriteString(m)
			curLen += mlen
			hasMentions = true
			continue
		}

		// Degenerate mention longer than a headed chunk allows.
		chunks = append(chunks, m)
	}
	if hasMentions {
		chunks = append(chunks, b.String())
	}
	return chunks
}
