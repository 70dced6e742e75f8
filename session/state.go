package session

import (
	"fmt"
	"strings"
)

// State is a conversation's order intent. A conversation with no entry has
// not been seen since this process (or its cache) last heard of it.
type State interface {
	isState()
	String() string
}

// New means the next digit picks a pizza from the menu
type New struct{}

func (New) isState() {}

func (New) String() string { return "new" }

// Ordered means the caller has ordered Pizza before; the next digit accepts
// or declines a repeat of it
type Ordered struct {
	Pizza string
}

func (Ordered) isState() {}

func (o Ordered) String() string { return "ordered:" + o.Pizza }

// parseState reverses State.String
func parseState(raw string) (State, error) {
	if raw == "new" {
		return New{}, nil
	}
	if pizza, ok := strings.CutPrefix(raw, "ordered:"); ok && pizza != "" {
		return Ordered{Pizza: pizza}, nil
	}
	return nil, fmt.Errorf("unknown order state %q", raw)
}
