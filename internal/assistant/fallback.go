package assistant

import (
	"errors"

	"github.com/yabatech/campusbot/internal/llm"
)

// Messages returned to the caller when the model cannot answer.
const (
	TimeoutFallback        = "The assistant took too long to respond. Please try again in a moment."
	UnavailableFallback    = "I'm sorry, I'm unable to answer right now. Please try again shortly or contact the college ICT help desk."
	GuidedLearningFallback = "I'm sorry, I'm unable to generate a research plan at this time."
)

// Messages for rejected input.
const (
	EmptyQuestionMessage = "Please enter a question."
	EmptyTopicMessage    = "Please provide a topic for guided learning."
)

func chatFallback(err error) string {
	if errors.Is(err, llm.ErrTimeout) {
		return TimeoutFallback
	}
	return UnavailableFallback
}
