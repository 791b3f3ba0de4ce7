package llm

import (
	"fmt"

	"github.com/RichardoC/couples-gpt/internal/models"
)

const DefaultHistoryLimit = 10

var systemPrompts = map[models.ChatType]string{
	models.ChatPrivate:  "You are a professional couples counselor inspired by Abraham Hicks. Provide compassionate guidance.",
	models.ChatMediator: "You are a neutral mediator helping couples communicate effectively. Provide constructive feedback.",
}

func SystemPrompt(chatType models.ChatType) (string, error) {
	prompt, ok := systemPrompts[chatType]
	if !ok {
		return "", fmt.Errorf("%w: unknown chat type %q", ErrInvalidInput, chatType)
	}
	return prompt, nil
}

// Replay decodes newest-first turns into chronological entries.
func Replay(history []models.Turn) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i].Message())
	}
	return out
}

// BuildContext assembles the payload sent to the model: the system prompt,
// the replayed history and finally the new user message.
func BuildContext(system string, history []models.Turn, message string) []models.ChatMessage {
	msgs := make([]models.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, models.ChatMessage{Role: models.RoleSystem, Content: system})
	msgs = append(msgs, Replay(history)...)
	return append(msgs, models.ChatMessage{Role: models.RoleUser, Content: message})
}
