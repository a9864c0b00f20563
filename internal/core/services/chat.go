package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultTopK is how many chunks are retrieved per question.
const DefaultTopK = 3

// ChatServiceConfig holds tuning knobs for the chat service.
type ChatServiceConfig struct {
	// TopK is the number of chunks retrieved per question (default 3).
	TopK int

	// MaxAnswerTokens caps the synthesis reply length (0 = no cap).
	MaxAnswerTokens int
}

// ChatService answers questions over the indexed corpus, keeping a
// per-session conversation history.
//
// Each question runs a four-stage pipeline: condense the question
// against the session history into a standalone one, embed it, retrieve
// the nearest chunks, and synthesize an answer grounded in them. The
// session transcript is extended only after the whole pipeline
// succeeds, so a failed question leaves the history as it was.
type ChatService struct {
	cfg           ChatServiceConfig
	indexAdmin    driving.IndexAdmin
	embedder      driven.EmbeddingService
	llm           driven.LLMService
	conversations driven.ConversationStore

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewChatService creates a new chat service.
func NewChatService(
	cfg ChatServiceConfig,
	indexAdmin driving.IndexAdmin,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	conversations driven.ConversationStore,
) *ChatService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &ChatService{
		cfg:           cfg,
		indexAdmin:    indexAdmin,
		embedder:      embedder,
		llm:           llm,
		conversations: conversations,
		sessions:      make(map[string]*sync.Mutex),
	}
}

// Answer responds to a question within a session. Questions in the
// same session are serialized so history stays consistent; different
// sessions proceed in parallel.
func (s *ChatService) Answer(ctx context.Context, sessionID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if sessionID == "" || question == "" {
		return "", fmt.Errorf("%w: session ID and question are required", domain.ErrInvalidInput)
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	logger.Section("Chat Turn")
	logger.Debug("session %s: %q", sessionID, question)

	// Resolve whatever index is already open; the watcher and the
	// rebuild operations own refresh. A question must never trigger a
	// re-embed of the corpus.
	index, err := s.indexAdmin.Current(ctx)
	if err != nil {
		return "", err
	}

	history := s.conversations.History(sessionID)

	standalone := s.condense(ctx, history, question)

	query, err := s.embedder.Embed(ctx, standalone)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}

	chunks, err := index.Search(ctx, query, s.cfg.TopK)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			logger.Info("session %s: corpus is empty", sessionID)
			s.record(sessionID, question, emptyIndexAnswer)
			return emptyIndexAnswer, nil
		}
		return "", err
	}
	logger.Debug("retrieved %d chunks", len(chunks))

	answer, err := s.synthesize(ctx, history, question, chunks)
	if err != nil {
		return "", err
	}

	s.record(sessionID, question, answer)
	return answer, nil
}

// condense rewrites a follow-up question into a standalone one using
// the session history. With no history the question is already
// standalone. A condense failure degrades to the raw question rather
// than failing the turn.
func (s *ChatService) condense(ctx context.Context, history domain.Transcript, question string) string {
	if len(history) == 0 {
		return question
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: condenseSystemPrompt},
	}
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    "user",
		Content: "Follow-up question: " + question,
	})

	standalone, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 200})
	if err != nil {
		logger.Warn("condense failed, using raw question: %v", err)
		return question
	}

	standalone = strings.TrimSpace(standalone)
	if standalone == "" {
		return question
	}
	logger.Debug("condensed question: %q", standalone)
	return standalone
}

// synthesize asks the LLM to answer from the retrieved chunks.
func (s *ChatService) synthesize(
	ctx context.Context,
	history domain.Transcript,
	question string,
	chunks []domain.Chunk,
) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("Document excerpts:\n\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&prompt, "[%d] (%s)\n%s\n\n", i+1, chunk.Source, chunk.Text)
	}
	prompt.WriteString("Question: ")
	prompt.WriteString(question)

	messages := []driven.ChatMessage{
		{Role: "system", Content: answerSystemPrompt},
	}
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    "user",
		Content: prompt.String(),
	})

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: s.cfg.MaxAnswerTokens})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	return strings.TrimSpace(answer), nil
}

// record appends the completed exchange to the session transcript.
func (s *ChatService) record(sessionID, question, answer string) {
	s.conversations.Append(sessionID,
		domain.Turn{Role: domain.RoleUser, Content: question},
		domain.Turn{Role: domain.RoleAssistant, Content: answer},
	)
}

// sessionLock returns the mutex serializing one session's turns.
func (s *ChatService) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessions[sessionID] = lock
	}
	return lock
}
