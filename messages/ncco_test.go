package messages

import (
	"encoding/json"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dtmfURL = "https://pizza.example.com/webhooks/dtmf"

// roundTrip renders an NCCO the way the server does and reads it back generically
func roundTrip(t *testing.T, ncco NCCO) []map[string]any {
	t.Helper()
	data, err := sonic.Marshal(ncco)
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestGreetingAndRoute(t *testing.T) {
	out := roundTrip(t, GreetingAndRoute("447700900123"))

	require.Len(t, out, 2)
	assert.Equal(t, "talk", out[0]["action"])
	assert.Equal(t, "Thanks for calling Jurgo's pizza!", out[0]["text"])
	assert.Equal(t, "conversation", out[1]["action"])
	assert.Equal(t, "pizza_447700900123", out[1]["name"])
}

func TestNewOrderMenu(t *testing.T) {
	out := roundTrip(t, NewOrderMenu(dtmfURL))

	require.Len(t, out, 2)
	text := out[0]["text"].(string)
	assert.Contains(t, text, "<speak>")
	assert.Contains(t, text, "pepperoni pizza press 1")
	assert.Contains(t, text, "hawaiian pizza press 2")
	assert.Contains(t, text, "<phoneme alphabet='ipa' ph='mɑr gəˈri tə;'>margherita</phoneme> pizza press 3")

	assert.Equal(t, "input", out[1]["action"])
	assert.EqualValues(t, 1, out[1]["maxDigits"])
	assert.EqualValues(t, 10, out[1]["timeOut"])
	assert.Equal(t, []any{dtmfURL}, out[1]["eventUrl"])
}

func TestRepeatOrderOffer(t *testing.T) {
	tests := []struct {
		pizza string
		want  string
	}{
		{"hawaiian", "another hawaiian pizza"},
		{"margherita", "another <phoneme alphabet='ipa' ph='mɑr gəˈri tə;'>margherita</phoneme> pizza"},
	}

	for _, tt := range tests {
		t.Run(tt.pizza, func(t *testing.T) {
			out := roundTrip(t, RepeatOrderOffer(tt.pizza, dtmfURL))
			require.Len(t, out, 2)
			assert.Contains(t, out[0]["text"], tt.want)
			assert.Contains(t, out[0]["text"], "press two to hear the options")
			assert.Equal(t, "input", out[1]["action"])
			assert.Equal(t, []any{dtmfURL}, out[1]["eventUrl"])
		})
	}
}

func TestConfirmationsAndRejection(t *testing.T) {
	out := roundTrip(t, OrderConfirmation("pepperoni"))
	require.Len(t, out, 1)
	assert.Equal(t, "<speak>Thanks for ordering a pepperoni pizza!</speak>", out[0]["text"])

	out = roundTrip(t, ReorderConfirmation("hawaiian"))
	assert.Equal(t, "<speak>A fine choice! We'll have another hawaiian pizza on its way soon!</speak>", out[0]["text"])

	out = roundTrip(t, UnknownPizza("7"))
	assert.Equal(t, "<speak>Sorry, we don't have 7 pizzas</speak>", out[0]["text"])

	out = roundTrip(t, OrderFailed())
	assert.Equal(t, "talk", out[0]["action"])
}

func TestSpeechEscapesCallerSuppliedText(t *testing.T) {
	out := roundTrip(t, UnknownPizza(`</speak><audio src="x"/>`))
	assert.Equal(t, "<speak>Sorry, we don't have &lt;/speak&gt;&lt;audio src=&#34;x&#34;/&gt; pizzas</speak>", out[0]["text"])

	out = roundTrip(t, RepeatOrderOffer("<break/>", dtmfURL))
	text := out[0]["text"].(string)
	assert.Contains(t, text, "another &lt;break/&gt; pizza")
	assert.NotContains(t, text, "<break/>")
}
