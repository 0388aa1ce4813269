package insights

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var errUnparseable = errors.New("unparseable model response")

// trailingArtifactRe matches stray numeric junk some models append to
// the end of reason strings ("... worth watching. 4" or "... 8.5)").
var trailingArtifactRe = regexp.MustCompile(`[\s([]*\d+(\.\d+)?[)\]]*\s*$`)

// rawPick is the model's own pick shape before enrichment. Gap entries
// arrive in the same shape.
type rawPick struct {
	Title      string `json:"title"`
	MediaType  string `json:"media_type"`
	Reason     string `json:"reason"`
	Confidence string `json:"confidence"`
}

// rawAction is one model-suggested subscription change.
type rawAction struct {
	Action        string  `json:"action"`
	ServiceName   string  `json:"service_name"`
	MonthlySaving float64 `json:"monthly_saving"`
	Currency      string  `json:"currency"`
	Reason        string  `json:"reason"`
}

type rawInsights struct {
	Picks    []rawPick   `json:"picks"`
	Strategy []rawAction `json:"strategy"`
	Gaps     []rawPick   `json:"gaps"`
}

// parseResponse extracts the JSON document from a model response,
// tolerating markdown code fences and surrounding prose.
func parseResponse(text string) (*rawInsights, error) {
	candidates := []string{
		strings.TrimSpace(text),
		stripCodeFence(text),
		extractJSONObject(text),
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		var parsed rawInsights
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		if len(parsed.Picks) == 0 && len(parsed.Strategy) == 0 && len(parsed.Gaps) == 0 {
			continue
		}
		return &parsed, nil
	}
	return nil, errUnparseable
}

// stripCodeFence removes a surrounding ```json ... ``` block.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// extractJSONObject returns the outermost brace-delimited span.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// cleanReason trims whitespace and strips trailing numeric artifacts
// while leaving ordinary sentences alone.
func cleanReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return ""
	}
	// Sentences ending with proper punctuation are kept verbatim.
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return trimmed
	}
	return strings.TrimSpace(trailingArtifactRe.ReplaceAllString(trimmed, ""))
}

// normalizeAction maps model phrasing onto the closed action set.
// Unrecognized verbs return empty and the entry is dropped.
func normalizeAction(action string) string {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionCancel, "drop", "remove", "unsubscribe":
		return ActionCancel
	case ActionAdd, "subscribe", "keep-and-add":
		return ActionAdd
	default:
		return ""
	}
}

func normalizeConfidence(confidence string) string {
	switch strings.ToLower(strings.TrimSpace(confidence)) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}
