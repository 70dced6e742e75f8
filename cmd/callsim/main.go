package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// simulator plays the telephony platform's part against a running server
type simulator struct {
	http *resty.Client
}

func newSimulator(serverURL string) *simulator {
	c := resty.New().
		SetBaseURL(strings.TrimRight(serverURL, "/")).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	return &simulator{http: c}
}

// answer places a call from the given number
func (s *simulator) answer(from, conversationID string) (*resty.Response, error) {
	return s.http.R().
		SetQueryParams(map[string]string{
			"from":              from,
			"to":                "447700900000",
			"uuid":              uuid.NewString(),
			"conversation_uuid": conversationID,
		}).
		Get("/webhooks/answer")
}

// transfer reports that the caller joined their named conversation
func (s *simulator) transfer(fromID, toID string) (*resty.Response, error) {
	return s.http.R().
		SetBody(map[string]string{
			"type":                   "transfer",
			"conversation_uuid_from": fromID,
			"conversation_uuid_to":   toID,
			"uuid":                   uuid.NewString(),
			"timestamp":              time.Now().UTC().Format(time.RFC3339),
		}).
		Post("/webhooks/event")
}

// press sends a keypad result; an empty digit simulates a timeout
func (s *simulator) press(conversationID, digit string) (*resty.Response, error) {
	return s.http.R().
		SetBody(map[string]any{
			"conversation_uuid": conversationID,
			"dtmf":              digit,
			"timed_out":         digit == "",
			"uuid":              uuid.NewString(),
		}).
		Post("/webhooks/dtmf")
}

// printResponse logs the webhook status and writes any NCCO body, indented, to out
func printResponse(log zerolog.Logger, out io.Writer, step string, resp *resty.Response) {
	log.Info().Str("step", step).Int("status", resp.StatusCode()).Msg("webhook answered")
	body := resp.Body()
	if len(body) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Fprintln(out, string(body))
		return
	}
	fmt.Fprintln(out, buf.String())
}

func main() {
	// Flags
	serverURL := flag.String("server", "http://localhost:3000", "Webhook server base URL")
	from := flag.String("from", "447700900123", "Caller phone number")
	digits := flag.String("digits", "1", "Comma-separated digits to press after the prompt (empty entry = timeout)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	sim := newSimulator(*serverURL)
	legID := uuid.NewString()
	conversationID := "CON-" + uuid.NewString()

	log.Info().Str("server", *serverURL).Str("from", *from).Msg("placing call")
	resp, err := sim.answer(*from, legID)
	if err != nil {
		log.Fatal().Err(err).Msg("answer webhook failed")
	}
	printResponse(log, os.Stdout, "answer", resp)

	// The server pushes the menu through the platform API, so nothing comes back here
	resp, err = sim.transfer(legID, conversationID)
	if err != nil {
		log.Fatal().Err(err).Msg("event webhook failed")
	}
	printResponse(log, os.Stdout, "transfer", resp)

	for _, digit := range strings.Split(*digits, ",") {
		digit = strings.TrimSpace(digit)
		resp, err = sim.press(conversationID, digit)
		if err != nil {
			log.Fatal().Err(err).Msg("dtmf webhook failed")
		}
		printResponse(log, os.Stdout, fmt.Sprintf("dtmf %q", digit), resp)
	}

	log.Info().Str("conversation_id", conversationID).Msg("call finished")
}
