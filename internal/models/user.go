package models

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ChatType selects the persona prompt prepended to a conversation.
type ChatType string

const (
	ChatPrivate  ChatType = "private"
	ChatMediator ChatType = "mediator"
)

func (c ChatType) Valid() bool {
	return c == ChatPrivate || c == ChatMediator
}
