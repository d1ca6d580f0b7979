// Package chat answers questions about a single document. Each turn ranks
// the document's text against the question, assembles a bounded context and
// asks the completion backend, persisting both sides of the exchange.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"docchat-backend/internal/documents"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/retrieval"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/telemetry"
)

const (
	MaxContentRunes     = 6000
	DefaultHistoryLimit = 10
)

// Turn states, logged as the exchange progresses.
const (
	StateReceived           = "received"
	StateRanked             = "ranked"
	StateContextBuilt       = "context_built"
	StateAwaitingCompletion = "awaiting_completion"
	StatePersisted          = "persisted"
	StateFailed             = "failed"
)

// DocumentSource resolves a document the caller owns.
type DocumentSource interface {
	Get(ctx context.Context, userID, documentID string) (documents.Document, error)
}

// Service orchestrates chat turns.
type Service struct {
	Repo      Repo
	Documents DocumentSource
	Completer llm.Completer
	Ranker    retrieval.Ranker

	MaxContextChars int
	// HistoryLimit caps prior turns sent to the backend; 0 uses the default.
	HistoryLimit int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) historyLimit() int {
	if s.HistoryLimit > 0 {
		return s.HistoryLimit
	}
	return DefaultHistoryLimit
}

// List returns the document's messages oldest first.
func (s *Service) List(ctx context.Context, userID, documentID string) ([]Message, error) {
	if _, err := s.Documents.Get(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx, documentID, ListOptions{Order: OrderOldestFirst})
}

// Send stores the user's question, answers it from the document and stores
// the reply. When the backend fails the question stays stored, no reply is
// written and the error matches ErrServiceUnavailable.
func (s *Service) Send(ctx context.Context, userID, documentID, content string) (Turn, error) {
	question := strings.TrimSpace(content)
	if question == "" {
		return Turn{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxContentRunes {
		return Turn{}, fmt.Errorf("%w: content must be at most %d characters", ErrInvalidInput, MaxContentRunes)
	}
	doc, err := s.Documents.Get(ctx, userID, documentID)
	if err != nil {
		return Turn{}, err
	}

	log := turnLogger{documentID: doc.ID, userID: userID, start: time.Now()}
	userMsg := Message{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Role:       RoleUser,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, userMsg); err != nil {
		return Turn{}, fmt.Errorf("store user message: %w", err)
	}
	metrics.IncChatTurn()
	log.state(StateReceived, map[string]any{"message_id": userMsg.ID, "chars": utf8.RuneCountInString(content)})

	ranked := s.Ranker.Rank(doc.ExtractedText, question, 0)
	log.state(StateRanked, map[string]any{"chunks": len(ranked)})

	ctxText := retrieval.Assemble(doc.Summary, ranked, s.MaxContextChars)
	log.state(StateContextBuilt, map[string]any{"context_chars": utf8.RuneCountInString(ctxText)})

	history, err := s.history(ctx, doc.ID, userMsg.ID)
	if err != nil {
		return Turn{}, fmt.Errorf("load history: %w", err)
	}

	log.state(StateAwaitingCompletion, map[string]any{"history": len(history), "provider": s.Completer.Name()})
	started := time.Now()
	completion, err := s.Completer.Complete(ctx, llm.Request{
		System:  llm.SystemPrompt,
		History: history,
		User:    llm.UserPrompt(ctxText, question),
		Title:   doc.Title,
	})
	metrics.ObserveCompletionDurationMs(float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.IncChatFailed()
		log.failed(err)
		return Turn{}, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	provider := completion.Provider
	if provider == "" {
		provider = s.Completer.Name()
	}
	model := completion.Model
	if model == "" {
		model = s.Completer.Model()
	}
	assistantAt := s.now()
	if !assistantAt.After(userMsg.CreatedAt) {
		assistantAt = userMsg.CreatedAt.Add(time.Microsecond)
	}
	assistantMsg := Message{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Role:       RoleAssistant,
		Content:    completion.Text,
		Metadata:   map[string]any{"provider": provider, "model": model},
		CreatedAt:  assistantAt,
	}
	if err := s.Repo.Create(ctx, assistantMsg); err != nil {
		log.failed(err)
		return Turn{}, fmt.Errorf("store assistant message: %w", err)
	}
	log.state(StatePersisted, map[string]any{"message_id": assistantMsg.ID, "provider": provider, "model": model})
	return Turn{User: userMsg, Assistant: assistantMsg}, nil
}

// history returns the newest prior user and assistant turns, oldest first,
// leaving out the message that started this exchange.
func (s *Service) history(ctx context.Context, documentID, currentID string) ([]llm.Message, error) {
	limit := s.historyLimit()
	recent, err := s.Repo.List(ctx, documentID, ListOptions{Limit: limit + 1, Order: OrderNewestFirst})
	if err != nil {
		return nil, err
	}
	out := make([]llm.Message, 0, limit)
	for _, m := range recent {
		if m.ID == currentID {
			continue
		}
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

type turnLogger struct {
	documentID string
	userID     string
	start      time.Time
}

func (l turnLogger) state(state string, extra map[string]any) {
	fields := map[string]any{
		"state":       state,
		"document_id": l.documentID,
		"user_id":     l.userID,
		"elapsed_ms":  telemetry.DurationMs(time.Since(l.start)),
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("chat.turn", fields)
}

func (l turnLogger) failed(err error) {
	telemetry.Warn("chat.turn", map[string]any{
		"state":       StateFailed,
		"document_id": l.documentID,
		"user_id":     l.userID,
		"elapsed_ms":  telemetry.DurationMs(time.Since(l.start)),
		"unavailable": llm.Unavailable(err),
		"err":         err,
	})
}
