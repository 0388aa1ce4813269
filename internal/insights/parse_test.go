package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	plain := `{"picks":[{"title":"Dark","media_type":"tv","reason":"Mind-bending.","confidence":"high"}],` +
		`"strategy":[{"action":"cancel","service_name":"Hulu","monthly_saving":7.99,"currency":"USD","reason":"Unused."}],` +
		`"gaps":[{"title":"Severance","media_type":"tv","reason":"Top rated, not on your services."}]}`

	tests := []struct {
		name  string
		input string
	}{
		{"bare json", plain},
		{"fenced json", "```json\n" + plain + "\n```"},
		{"fenced without language", "```\n" + plain + "\n```"},
		{"prose around json", "Here are my picks:\n" + plain + "\nEnjoy!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseResponse(tt.input)
			require.NoError(t, err)
			require.Len(t, parsed.Picks, 1)
			assert.Equal(t, "Dark", parsed.Picks[0].Title)
			require.Len(t, parsed.Strategy, 1)
			assert.Equal(t, "cancel", parsed.Strategy[0].Action)
			assert.Equal(t, 7.99, parsed.Strategy[0].MonthlySaving)
			require.Len(t, parsed.Gaps, 1)
			assert.Equal(t, "Severance", parsed.Gaps[0].Title)
		})
	}
}

func TestNormalizeAction(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cancel", ActionCancel},
		{"Drop", ActionCancel},
		{"remove", ActionCancel},
		{"add", ActionAdd},
		{"Subscribe", ActionAdd},
		{"renegotiate", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAction(tt.input), "input %q", tt.input)
	}
}

func TestParseResponse_Unparseable(t *testing.T) {
	for _, input := range []string{"", "no json here", "{broken", "{}"} {
		_, err := parseResponse(input)
		assert.ErrorIs(t, err, errUnparseable, "input %q", input)
	}
}

func TestCleanReason(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"proper sentence kept", "A gripping thriller.", "A gripping thriller."},
		{"trailing integer stripped", "Great pacing and cast 4", "Great pacing and cast"},
		{"trailing decimal stripped", "Matches your taste 8.5", "Matches your taste"},
		{"parenthesized artifact stripped", "Critically acclaimed (9)", "Critically acclaimed"},
		{"year inside sentence kept", "Best of 2023, a must watch.", "Best of 2023, a must watch."},
		{"whitespace trimmed", "  solid drama.  ", "solid drama."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanReason(tt.input))
		})
	}
}

func TestNormalizeConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, normalizeConfidence("High"))
	assert.Equal(t, ConfidenceLow, normalizeConfidence(" low "))
	assert.Equal(t, ConfidenceMedium, normalizeConfidence("medium"))
	assert.Equal(t, ConfidenceMedium, normalizeConfidence("certain"))
	assert.Equal(t, ConfidenceMedium, normalizeConfidence(""))
}
