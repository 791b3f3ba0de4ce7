package llm

import (
	"fmt"
	"testing"

	"github.com/RichardoC/couples-gpt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	private, err := SystemPrompt(models.ChatPrivate)
	require.NoError(t, err)
	assert.Contains(t, private, "couples counselor")

	mediator, err := SystemPrompt(models.ChatMediator)
	require.NoError(t, err)
	assert.Contains(t, mediator, "neutral mediator")

	_, err = SystemPrompt("therapist")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildContextEmptyHistory(t *testing.T) {
	got := BuildContext("sys", nil, "I feel unheard")
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "I feel unheard"},
	}, got)
}

func TestBuildContextReplaysOldestFirst(t *testing.T) {
	// Newest first, as the store returns them.
	history := []models.Turn{
		{ID: 3, GPTResponse: "imported reply"},
		{ID: 2, InputText: "second", GPTResponse: "r2"},
		{ID: 1, InputText: "first", GPTResponse: "r1"},
	}

	got := BuildContext("sys", history, "now")
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleUser, Content: "second"},
		{Role: models.RoleAssistant, Content: "imported reply"},
		{Role: models.RoleUser, Content: "now"},
	}, got)
}

func TestBuildContextLength(t *testing.T) {
	for _, n := range []int{0, 1, 5, 10} {
		t.Run(fmt.Sprintf("history=%d", n), func(t *testing.T) {
			history := make([]models.Turn, n)
			for i := range history {
				history[i] = models.Turn{InputText: fmt.Sprintf("m%d", i)}
			}
			assert.Len(t, BuildContext("sys", history, "new"), n+2)
		})
	}
}
