package vonage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/room4-2/jurgo-ivr/messages"
)

// EventTypeOrder marks an order placed on the phone line
const EventTypeOrder = "custom:order"

const (
	eventsPath = "/v0.1/conversations/{conversation_id}/events"
	nccoPath   = "/v1/conversations/{conversation_id}/ncco"
)

// Event is one entry of a conversation's log
type Event struct {
	ID        int64           `json:"id,omitempty"`
	Type      string          `json:"type"`
	From      string          `json:"from,omitempty"`
	Body      json.RawMessage `json:"body,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// OrderBody is the body of a custom:order event
type OrderBody struct {
	Type string `json:"type"`
}

type eventsPage struct {
	Embedded struct {
		Data struct {
			Events []Event `json:"events"`
		} `json:"data"`
	} `json:"_embedded"`
}

type createEventRequest struct {
	Type string    `json:"type"`
	Body OrderBody `json:"body"`
}

// OrderedPizza decodes the pizza name of an order event
func (e Event) OrderedPizza() (string, error) {
	if e.Type != EventTypeOrder {
		return "", fmt.Errorf("event type %q is not an order", e.Type)
	}
	var body OrderBody
	if err := sonic.Unmarshal(e.Body, &body); err != nil {
		return "", fmt.Errorf("decode order body: %w", err)
	}
	if body.Type == "" {
		return "", errors.New("order body has no pizza type")
	}
	return body.Type, nil
}

// ListEvents returns the first page of a conversation's events, most recent first.
func (c *Client) ListEvents(ctx context.Context, conversationID string) ([]Event, error) {
	var page eventsPage
	err := c.do(ctx, "list_events", ErrRemoteFetch, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("conversation_id", conversationID).
			SetQueryParams(map[string]string{
				"page_size": strconv.Itoa(c.pageSize),
				"order":     "desc",
			}).
			SetResult(&page).
			Get(eventsPath)
	})
	if err != nil {
		return nil, err
	}
	return page.Embedded.Data.Events, nil
}

// AppendOrderEvent records an order in the conversation. Calling it twice
// records two orders.
func (c *Client) AppendOrderEvent(ctx context.Context, conversationID, pizza string) error {
	return c.do(ctx, "append_order", ErrRemoteWrite, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("conversation_id", conversationID).
			SetBody(createEventRequest{Type: EventTypeOrder, Body: OrderBody{Type: pizza}}).
			Post(eventsPath)
	})
}

// ReplaceNCCO pushes a new call-flow document into a live conversation.
func (c *Client) ReplaceNCCO(ctx context.Context, conversationID string, ncco messages.NCCO) error {
	return c.do(ctx, "replace_ncco", ErrRemoteWrite, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("conversation_id", conversationID).
			SetBody(ncco).
			Put(nccoPath)
	})
}

// FilterOrderEvents keeps only custom:order events, preserving order.
func FilterOrderEvents(events []Event) []Event {
	orders := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Type == EventTypeOrder {
			orders = append(orders, e)
		}
	}
	return orders
}

// LatestOrder returns the pizza of the first readable order event in a
// most-recent-first list.
func LatestOrder(events []Event) (string, bool) {
	for _, e := range FilterOrderEvents(events) {
		if pizza, err := e.OrderedPizza(); err == nil {
			return pizza, true
		}
	}
	return "", false
}
