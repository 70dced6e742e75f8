package messages

import (
	"github.com/bytedance/sonic"
)

// NCCO action names
const (
	ActionTalk         = "talk"
	ActionConversation = "conversation"
	ActionInput        = "input"
)

// Action is one directive of a call control object
type Action interface {
	isAction()
}

// NCCO is the call-flow document returned to, or pushed into, the platform
type NCCO []Action

// Talk speaks text (plain or SSML) to the caller
type Talk struct {
	Text string `json:"text"`
}

func (Talk) isAction() {}

// MarshalJSON adds the action discriminator
func (t Talk) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Action string `json:"action"`
		Text   string `json:"text"`
	}{ActionTalk, t.Text})
}

// Conversation moves the call into a named conversation
type Conversation struct {
	Name string `json:"name"`
}

func (Conversation) isAction() {}

// MarshalJSON adds the action discriminator
func (c Conversation) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Action string `json:"action"`
		Name   string `json:"name"`
	}{ActionConversation, c.Name})
}

// Input collects DTMF digits and reports them to EventURL
type Input struct {
	MaxDigits int      `json:"maxDigits"`
	TimeOut   int      `json:"timeOut"` // seconds
	EventURL  []string `json:"eventUrl"`
}

func (Input) isAction() {}

// MarshalJSON adds the action discriminator
func (i Input) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Action    string   `json:"action"`
		MaxDigits int      `json:"maxDigits"`
		TimeOut   int      `json:"timeOut"`
		EventURL  []string `json:"eventUrl"`
	}{ActionInput, i.MaxDigits, i.TimeOut, i.EventURL})
}
