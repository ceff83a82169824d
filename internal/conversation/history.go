package conversation

import (
	"errors"
	"strings"
)

// ErrNoPendingTurn is returned when a reply is recorded but the last turn
// already has one, or there are no turns at all.
var ErrNoPendingTurn = errors.New("no pending turn to complete")

// Turn is one exchange. Bot stays empty until the model answers.
type Turn struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// Answered reports whether the turn has a reply.
func (t Turn) Answered() bool { return t.Bot != "" }

// History is the ordered list of turns for one session. Turns are only ever
// appended; the single exception is filling in the Bot of the last turn.
type History []Turn

// Begin appends a pending turn for a new user message.
func (h *History) Begin(user string) {
	*h = append(*h, Turn{User: user})
}

// Pending reports whether the last turn is still waiting for a reply.
func (h History) Pending() bool {
	return len(h) > 0 && !h[len(h)-1].Answered()
}

// Complete records the model reply on the trailing pending turn. The reply
// is trimmed of surrounding whitespace. Earlier turns are never touched.
func (h History) Complete(reply string) error {
	if !h.Pending() {
		return ErrNoPendingTurn
	}
	h[len(h)-1].Bot = strings.TrimSpace(reply)
	return nil
}

// Prior returns the turns before the trailing pending one. When the last
// turn is answered, every turn is prior.
func (h History) Prior() History {
	if h.Pending() {
		return h[:len(h)-1]
	}
	return h
}

// Answered returns the answered turns in order, dropping any that never
// received a reply.
func (h History) Answered() History {
	out := make(History, 0, len(h))
	for _, t := range h {
		if t.Answered() {
			out = append(out, t)
		}
	}
	return out
}

// Last returns at most n turns from the end. n <= 0 returns all of them.
func (h History) Last(n int) History {
	if n <= 0 || n >= len(h) {
		return h
	}
	return h[len(h)-n:]
}

// Clone returns a copy that shares no backing array with h.
func (h History) Clone() History {
	if h == nil {
		return History{}
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}
