package messages

import (
	"fmt"
	"html"

	"github.com/room4-2/jurgo-ivr/menu"
)

const (
	conversationPrefix = "pizza_"
	inputMaxDigits     = 1
	inputTimeoutSecs   = 10
)

// ConversationName derives the per-caller conversation name from the caller's number
func ConversationName(from string) string {
	return conversationPrefix + from
}

// GreetingAndRoute welcomes the caller and moves them into their own conversation
func GreetingAndRoute(from string) NCCO {
	return NCCO{
		Talk{Text: "Thanks for calling Jurgo's pizza!"},
		Conversation{Name: ConversationName(from)},
	}
}

// NewOrderMenu lists the three pizzas and waits for a single digit
func NewOrderMenu(eventURL string) NCCO {
	text := fmt.Sprintf(
		"To order a %s pizza press 1. To order a %s pizza press 2, or to order a %s pizza press 3",
		menu.Pronounce(menu.Pepperoni), menu.Pronounce(menu.Hawaiian), menu.Pronounce(menu.Margherita),
	)
	return NCCO{
		Talk{Text: ssml(text)},
		digitInput(eventURL),
	}
}

// RepeatOrderOffer offers a returning caller their previous pizza again
func RepeatOrderOffer(pizza, eventURL string) NCCO {
	text := fmt.Sprintf(
		"Welcome back! You can press one to order another %s pizza, or press two to hear the options",
		menu.Pronounce(pizza),
	)
	return NCCO{
		Talk{Text: ssml(text)},
		digitInput(eventURL),
	}
}

// Say is a single-action NCCO speaking text as SSML
func Say(text string) NCCO {
	return NCCO{Talk{Text: ssml(text)}}
}

// OrderConfirmation thanks a caller for a first-time choice
func OrderConfirmation(pizza string) NCCO {
	return Say(fmt.Sprintf("Thanks for ordering a %s pizza!", menu.Pronounce(pizza)))
}

// ReorderConfirmation confirms a repeat of the caller's previous pizza
func ReorderConfirmation(pizza string) NCCO {
	return Say(fmt.Sprintf("A fine choice! We'll have another %s pizza on its way soon!", menu.Pronounce(pizza)))
}

// UnknownPizza rejects a digit that is not on the menu
func UnknownPizza(digit string) NCCO {
	return Say(fmt.Sprintf("Sorry, we don't have %s pizzas", html.EscapeString(digit)))
}

// OrderFailed apologises when the order could not be recorded
func OrderFailed() NCCO {
	return Say("Sorry, we couldn't place your order right now. Please call back in a few minutes.")
}

func digitInput(eventURL string) Input {
	return Input{
		MaxDigits: inputMaxDigits,
		TimeOut:   inputTimeoutSecs,
		EventURL:  []string{eventURL},
	}
}

func ssml(text string) string {
	return "<speak>" + text + "</speak>"
}
