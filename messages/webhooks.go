package messages

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
)

// ErrMalformedInput is returned when a webhook body does not match its schema
var ErrMalformedInput = errors.New("malformed webhook input")

// Event types sent to the event webhook
const (
	EventTypeTransfer = "transfer"
)

// AnswerRequest is the query string of the answer webhook
type AnswerRequest struct {
	From             string
	To               string
	UUID             string
	ConversationUUID string
}

// EventRequest is the body of the event webhook. Only transfers carry ConversationUUIDTo.
type EventRequest struct {
	Type                 string `json:"type"`
	ConversationUUIDFrom string `json:"conversation_uuid_from,omitempty"`
	ConversationUUIDTo   string `json:"conversation_uuid_to,omitempty"`
	UUID                 string `json:"uuid,omitempty"`
	Status               string `json:"status,omitempty"`
	Timestamp            string `json:"timestamp,omitempty"`
}

// DTMFRequest is the body posted by an input action
type DTMFRequest struct {
	ConversationUUID string `json:"conversation_uuid"`
	DTMF             string `json:"dtmf"`
	TimedOut         bool   `json:"timed_out"`
	UUID             string `json:"uuid,omitempty"`
}

// ParseAnswer reads the answer webhook query parameters
func ParseAnswer(q url.Values) (*AnswerRequest, error) {
	req := &AnswerRequest{
		From:             strings.TrimSpace(q.Get("from")),
		To:               q.Get("to"),
		UUID:             q.Get("uuid"),
		ConversationUUID: q.Get("conversation_uuid"),
	}
	if req.From == "" {
		return nil, fmt.Errorf("%w: missing from", ErrMalformedInput)
	}
	return req, nil
}

// DecodeEvent reads an event webhook body
func DecodeEvent(r io.Reader) (*EventRequest, error) {
	var req EventRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if req.Type == EventTypeTransfer && req.ConversationUUIDTo == "" {
		return nil, fmt.Errorf("%w: transfer without conversation_uuid_to", ErrMalformedInput)
	}
	return &req, nil
}

// DecodeDTMF reads an input webhook body
func DecodeDTMF(r io.Reader) (*DTMFRequest, error) {
	var req DTMFRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if req.TimedOut {
		return &req, nil
	}
	if req.ConversationUUID == "" {
		return nil, fmt.Errorf("%w: missing conversation_uuid", ErrMalformedInput)
	}
	return &req, nil
}

func decode(r io.Reader, v any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrMalformedInput, err)
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return nil
}
