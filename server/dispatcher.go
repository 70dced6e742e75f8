package server

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/room4-2/jurgo-ivr/menu"
	"github.com/room4-2/jurgo-ivr/messages"
	"github.com/room4-2/jurgo-ivr/metrics"
	"github.com/room4-2/jurgo-ivr/session"
	"github.com/room4-2/jurgo-ivr/vonage"
)

// EventGateway reads and writes a conversation's remote event log
type EventGateway interface {
	ListEvents(ctx context.Context, conversationID string) ([]vonage.Event, error)
	AppendOrderEvent(ctx context.Context, conversationID, pizza string) error
	ReplaceNCCO(ctx context.Context, conversationID string, ncco messages.NCCO) error
}

// Notifier tells the kitchen about an order
type Notifier interface {
	NotifyOrder(ctx context.Context, pizza string) error
}

// StateStore holds each conversation's order intent
type StateStore interface {
	Get(ctx context.Context, conversationID string) (session.State, bool)
	Set(ctx context.Context, conversationID string, state session.State)
}

// Dispatcher decides the next call flow for each platform webhook
type Dispatcher struct {
	gateway  EventGateway
	notifier Notifier
	states   StateStore
	log      zerolog.Logger
}

// NewDispatcher wires the order state machine to its collaborators
func NewDispatcher(gateway EventGateway, notifier Notifier, states StateStore, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		gateway:  gateway,
		notifier: notifier,
		states:   states,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// Answer greets the caller and routes them into their named conversation
func (d *Dispatcher) Answer(req *messages.AnswerRequest) messages.NCCO {
	return messages.GreetingAndRoute(req.From)
}

// Transfer runs when a caller lands in their conversation: it replays the
// conversation's history and pushes either the menu or a repeat offer.
func (d *Dispatcher) Transfer(ctx context.Context, conversationID, eventURL string) error {
	ncco, err := d.decide(ctx, conversationID, eventURL)
	if err != nil {
		return err
	}
	return d.gateway.ReplaceNCCO(ctx, conversationID, ncco)
}

// decide derives the conversation's state from its remote log, records it,
// and returns the matching prompt.
func (d *Dispatcher) decide(ctx context.Context, conversationID, eventURL string) (messages.NCCO, error) {
	events, err := d.gateway.ListEvents(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if pizza, ok := vonage.LatestOrder(events); ok {
		d.states.Set(ctx, conversationID, session.Ordered{Pizza: pizza})
		return messages.RepeatOrderOffer(pizza, eventURL), nil
	}

	d.states.Set(ctx, conversationID, session.New{})
	return messages.NewOrderMenu(eventURL), nil
}

// Digits interprets a keypad press. A nil NCCO means there is nothing to say.
func (d *Dispatcher) Digits(ctx context.Context, req *messages.DTMFRequest, eventURL string) messages.NCCO {
	if req.TimedOut {
		return nil
	}

	log := d.log.With().Str("conversation_id", req.ConversationUUID).Str("dtmf", req.DTMF).Logger()

	state, ok := d.states.Get(ctx, req.ConversationUUID)
	if !ok {
		// No transfer seen for this conversation (or the cache lost it): ask
		// again rather than guess what the digit meant.
		ncco, err := d.decide(ctx, req.ConversationUUID, eventURL)
		if err != nil {
			log.Error().Err(err).Msg("could not load conversation history, offering the menu")
			d.states.Set(ctx, req.ConversationUUID, session.New{})
			return messages.NewOrderMenu(eventURL)
		}
		log.Info().Msg("digit received before any prompt, re-prompting")
		return ncco
	}

	switch s := state.(type) {
	case session.Ordered:
		if req.DTMF == "1" {
			return d.placeOrder(ctx, log, req.ConversationUUID, s.Pizza, "repeat")
		}
		d.states.Set(ctx, req.ConversationUUID, session.New{})
		return messages.NewOrderMenu(eventURL)

	default:
		pizza, ok := menu.Lookup(req.DTMF)
		if !ok {
			log.Info().Msg("digit not on the menu")
			return messages.UnknownPizza(req.DTMF)
		}
		return d.placeOrder(ctx, log, req.ConversationUUID, pizza, "new")
	}
}

// placeOrder records the order, then texts the kitchen. The order event is
// what matters to the caller; a failed text is only logged.
func (d *Dispatcher) placeOrder(ctx context.Context, log zerolog.Logger, conversationID, pizza, kind string) messages.NCCO {
	if err := d.gateway.AppendOrderEvent(ctx, conversationID, pizza); err != nil {
		log.Error().Err(err).Str("pizza", pizza).Msg("failed to record order")
		return messages.OrderFailed()
	}
	metrics.OrdersTotal.WithLabelValues(pizza, kind).Inc()
	log.Info().Str("pizza", pizza).Str("kind", kind).Msg("order recorded")

	if err := d.notifier.NotifyOrder(ctx, pizza); err != nil {
		log.Error().Err(err).Str("pizza", pizza).Msg("failed to notify kitchen")
	}

	if kind == "repeat" {
		return messages.ReorderConfirmation(pizza)
	}
	return messages.OrderConfirmation(pizza)
}
