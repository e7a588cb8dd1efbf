package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cartable/internal/config"
	"cartable/internal/domain"
	"cartable/internal/domain/models/pedagogy"
	pedagogyRepo "cartable/internal/domain/repositories/pedagogy"
	"cartable/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Service implements services.ChatService with in-memory conversations.
type Service struct {
	assistant    pedagogyRepo.Assistant
	historyLimit int
	logger       *slog.Logger

	mu            sync.Mutex
	conversations map[string]*conversation
}

// conversation is owned by the user key that started it.
type conversation struct {
	owner   string
	history []pedagogy.ChatMessage
}

// NewService creates a chat service. historyLimit caps how many messages a
// conversation keeps, and so how many are sent with each request; 0 means
// the default.
func NewService(assistant pedagogyRepo.Assistant, historyLimit int, logger *slog.Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = config.DefaultChatHistoryLimit
	}
	return &Service{
		assistant:     assistant,
		historyLimit:  historyLimit,
		logger:        logger,
		conversations: make(map[string]*conversation),
	}
}

var _ services.ChatService = (*Service)(nil)

// Start opens an empty conversation owned by the caller.
func (s *Service) Start(caller services.Caller) string {
	id := uuid.New().String()

	s.mu.Lock()
	s.conversations[id] = &conversation{owner: caller.UserKey, history: []pedagogy.ChatMessage{}}
	s.mu.Unlock()

	return id
}

// Send relays message with the stored history and records both turns.
func (s *Service) Send(ctx context.Context, caller services.Caller, conversationID, message string) (*pedagogy.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if err := validation.Validate(message, validation.Required); err != nil {
		return nil, fmt.Errorf("%w: message: %v", domain.ErrValidation, err)
	}

	s.mu.Lock()
	conv, err := s.ownedLocked(caller, conversationID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sent := make([]pedagogy.ChatMessage, len(conv.history))
	copy(sent, conv.history)
	s.mu.Unlock()

	resp, err := s.assistant.Chat(ctx, message, sent, caller.Token)
	if err != nil {
		s.logger.Warn("assistant request failed",
			"conversation_id", conversationID,
			"error", err,
		)
		return nil, err
	}

	reply := pedagogy.ChatMessage{Role: pedagogy.RoleAssistant, Content: resp.Response}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The conversation may have been reset while waiting; append to whatever is there now.
	if _, ok := s.conversations[conversationID]; !ok {
		return &reply, nil
	}
	history := append(conv.history,
		pedagogy.ChatMessage{Role: pedagogy.RoleUser, Content: message},
		reply,
	)
	if len(history) > s.historyLimit {
		history = append([]pedagogy.ChatMessage(nil), history[len(history)-s.historyLimit:]...)
	}
	conv.history = history

	s.logger.Debug("assistant replied",
		"conversation_id", conversationID,
		"history_len", len(conv.history),
	)
	return &reply, nil
}

// Conversation returns a copy of one of the caller's conversations.
func (s *Service) Conversation(caller services.Caller, conversationID string) (*services.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.ownedLocked(caller, conversationID)
	if err != nil {
		return nil, err
	}
	out := make([]pedagogy.ChatMessage, len(conv.history))
	copy(out, conv.history)
	return &services.Conversation{ID: conversationID, History: out}, nil
}

// Reset clears one of the caller's conversations, keeping its ID.
func (s *Service) Reset(caller services.Caller, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.ownedLocked(caller, conversationID)
	if err != nil {
		return err
	}
	conv.history = []pedagogy.ChatMessage{}
	return nil
}

// ownedLocked finds a conversation; other users' conversations are reported
// as missing.
func (s *Service) ownedLocked(caller services.Caller, conversationID string) (*conversation, error) {
	conv, ok := s.conversations[conversationID]
	if !ok || conv.owner != caller.UserKey {
		return nil, &domain.NotFoundError{Message: "conversation not found"}
	}
	return conv, nil
}
