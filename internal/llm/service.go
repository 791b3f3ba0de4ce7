package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/RichardoC/couples-gpt/internal/db"
	"github.com/RichardoC/couples-gpt/internal/metrics"
	"github.com/RichardoC/couples-gpt/internal/models"
	"go.uber.org/zap"
)

type Completer interface {
	Complete(ctx context.Context, msgs []models.ChatMessage) (string, error)
}

type TurnStore interface {
	RecentTurns(ctx context.Context, userID int64, limit int) ([]models.Turn, error)
	AppendTurn(ctx context.Context, turn *models.Turn) error
	ImportTurns(ctx context.Context, userID int64, entries []db.ImportEntry) (int, error)
}

type Service struct {
	store        TurnStore
	completer    Completer
	historyLimit int
	logger       *zap.Logger
}

func New(store TurnStore, completer Completer, historyLimit int, logger *zap.Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Service{
		store:        store,
		completer:    completer,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Chat runs one exchange for the user. Nothing is written unless the
// completion succeeds, and then exactly one turn is stored.
func (s *Service) Chat(ctx context.Context, userID int64, chatType models.ChatType, message string) (*models.ChatMessage, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}
	system, err := SystemPrompt(chatType)
	if err != nil {
		return nil, err
	}

	history, err := s.store.RecentTurns(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	msgs := BuildContext(system, history, message)

	s.logger.Debug("Sending completion request",
		zap.Int64("user_id", userID),
		zap.String("chat_type", string(chatType)),
		zap.Int("messages", len(msgs)))

	reply, err := s.completer.Complete(ctx, msgs)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrRateLimited) {
			outcome = "rate_limited"
		}
		metrics.CompletionsTotal.WithLabelValues(string(chatType), outcome).Inc()
		return nil, err
	}
	metrics.CompletionsTotal.WithLabelValues(string(chatType), "ok").Inc()

	turn := &models.Turn{UserID: userID, InputText: message, GPTResponse: reply}
	if err := s.store.AppendTurn(ctx, turn); err != nil {
		return nil, fmt.Errorf("failed to save turn: %w", err)
	}

	return &models.ChatMessage{Role: models.RoleAssistant, Content: reply}, nil
}

// History returns the user's recent turns decoded oldest first.
func (s *Service) History(ctx context.Context, userID int64) ([]models.ChatMessage, error) {
	turns, err := s.store.RecentTurns(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	return Replay(turns), nil
}

// Import reads a JSON array of {user_input, gpt_response} objects and stores
// each one as a turn. A file that does not parse stores nothing.
func (s *Service) Import(ctx context.Context, userID int64, r io.Reader) (int, error) {
	entries, err := parseHistory(r)
	if err != nil {
		return 0, &ImportError{Err: err}
	}

	n, err := s.store.ImportTurns(ctx, userID, entries)
	if err != nil {
		return 0, &ImportError{Err: err}
	}
	metrics.ImportedTurnsTotal.Add(float64(n))

	s.logger.Info("Imported history",
		zap.Int64("user_id", userID),
		zap.Int("count", n))
	return n, nil
}

// parseHistory requires the whole file to be one array of objects.
func parseHistory(r io.Reader) ([]db.ImportEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var raw []*db.ImportEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("history must be a JSON array")
	}

	entries := make([]db.ImportEntry, 0, len(raw))
	for i, e := range raw {
		if e == nil {
			return nil, fmt.Errorf("entry %d is not an object", i)
		}
		entries = append(entries, *e)
	}
	return entries, nil
}
