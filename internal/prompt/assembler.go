package prompt

import (
	"fmt"
	"strings"

	"github.com/yabatech/campusbot/internal/conversation"
	"github.com/yabatech/campusbot/internal/knowledge"
	"github.com/yabatech/campusbot/internal/llm"
)

// Assembler turns stored history and the knowledge base into the ordered
// message list sent to the model.
type Assembler struct {
	// MaxTurns caps how many answered prior turns are replayed. Zero
	// replays all of them.
	MaxTurns int
}

// Instructions renders the instruction block for kb.
func Instructions(kb *knowledge.Base) string {
	return fmt.Sprintf(instructionTemplate, kb.FreeText(), kb.CanonicalJSON())
}

// Assemble builds the message list for question. The first message is the
// instruction block and the last is question. In between, every answered
// prior turn contributes a user message followed by an assistant message.
// A trailing pending turn in history is the request being answered and is
// not replayed; unanswered earlier turns are skipped.
func (a Assembler) Assemble(kb *knowledge.Base, history conversation.History, question string) []llm.Message {
	replay := history.Prior().Answered().Last(a.MaxTurns)

	msgs := make([]llm.Message, 0, 2+2*len(replay))
	msgs = append(msgs, llm.UserMessage(Instructions(kb)))
	for _, t := range replay {
		msgs = append(msgs, llm.UserMessage(t.User), llm.AssistantMessage(t.Bot))
	}
	return append(msgs, llm.UserMessage(question))
}

// GuidedLearning renders the single-message prompt for a learning plan.
func GuidedLearning(topic string) []llm.Message {
	return []llm.Message{llm.UserMessage(fmt.Sprintf(guidedLearningTemplate, strings.TrimSpace(topic)))}
}
