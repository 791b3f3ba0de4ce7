package models

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-tagged entry of a completion payload.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Turn is a stored exchange. Rows written by chat carry both fields;
// imported rows may leave either one empty.
type Turn struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	InputText   string `json:"input_text"`
	GPTResponse string `json:"gpt_response"`
}

// Message decodes the turn into a single entry. A non-empty InputText wins;
// anything else, including a row with both fields empty, is the assistant's.
func (t Turn) Message() ChatMessage {
	if t.InputText != "" {
		return ChatMessage{Role: RoleUser, Content: t.InputText}
	}
	return ChatMessage{Role: RoleAssistant, Content: t.GPTResponse}
}
