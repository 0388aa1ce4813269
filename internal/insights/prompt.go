package insights

import (
	"fmt"
	"strings"

	"github.com/streamwise/streamwise/internal/database/sqlc"
	"github.com/streamwise/streamwise/internal/preferences"
)

// historyWindow bounds how many watchlist entries the prompt carries;
// the most recent entries come first from the query ordering.
const historyWindow = 20

// buildPrompt assembles the generation prompt from the user's library,
// subscriptions, and stated preferences.
func buildPrompt(watchlist []*sqlc.WatchlistItem, subs []*sqlc.Subscription, prefs *preferences.Preferences, region string) string {
	var b strings.Builder

	b.WriteString("You are a streaming recommendation assistant. Based on the viewer profile below, ")
	b.WriteString("suggest titles they have not seen and a short subscription strategy.\n\n")

	b.WriteString("## Watch history\n")
	if len(watchlist) == 0 {
		b.WriteString("(empty)\n")
	}
	entries := watchlist
	if len(entries) > historyWindow {
		entries = entries[:historyWindow]
	}
	var dropped []string
	for _, entry := range entries {
		line := fmt.Sprintf("- %s (%s, status: %s", entry.Title, entry.MediaType, entry.Status)
		if entry.UserRating.Valid {
			line += fmt.Sprintf(", rated %d/10", entry.UserRating.Int64)
		}
		line += ")"
		b.WriteString(line + "\n")

		if entry.Status == "dropped" {
			dropped = append(dropped, entry.Title)
		}
	}

	b.WriteString("\n## Active subscriptions\n")
	if len(subs) == 0 {
		b.WriteString("(none)\n")
	}
	for _, sub := range subs {
		fmt.Fprintf(&b, "- %s (%.2f %s per %s cycle)\n", sub.ServiceName, sub.Cost, sub.Currency, sub.BillingCycle)
	}

	fmt.Fprintf(&b, "\n## Region\n%s\n", region)

	if prefs.FreeText != "" {
		fmt.Fprintf(&b, "\n## Viewer notes\n%s\n", prefs.FreeText)
	}
	if len(prefs.DealBreakers) > 0 {
		fmt.Fprintf(&b, "\n## Deal breakers (never suggest content featuring these)\n%s\n", strings.Join(prefs.DealBreakers, ", "))
	}
	if len(dropped) > 0 {
		fmt.Fprintf(&b, "\n## Dropped without finishing (avoid similar)\n%s\n", strings.Join(dropped, ", "))
	}
	if banned := prefs.SoftBanned(); len(banned) > 0 {
		ids := make([]string, len(banned))
		for i, id := range banned {
			ids[i] = fmt.Sprintf("%d", id)
		}
		fmt.Fprintf(&b, "\n## Previously suggested and repeatedly ignored (do not suggest, TMDB ids)\n%s\n", strings.Join(ids, ", "))
	}

	b.WriteString(`
## Output format
Respond with JSON only, no prose, matching exactly:
{
  "picks": [
    {"title": "...", "media_type": "movie|tv", "reason": "one sentence", "confidence": "high|medium|low"}
  ],
  "strategy": [
    {"action": "cancel|add", "service_name": "...", "monthly_saving": 7.99, "currency": "USD", "reason": "one sentence"}
  ],
  "gaps": [
    {"title": "...", "media_type": "movie|tv", "reason": "why this title is worth a service they lack"}
  ]
}
Suggest at most 6 picks and at most 4 gaps. Gaps are strong titles the
viewer cannot watch on any current subscription. monthly_saving is the
monthly amount in the subscription's own currency.
`)

	return b.String()
}
