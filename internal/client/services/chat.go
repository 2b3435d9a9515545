package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/aither/internal/client/gateway"
	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/common"
	"github.com/dmitrijs2005/aither/internal/logging"
)

// FailureReply is stored as the assistant message when the gateway fails.
const FailureReply = "Erro crítico na conexão neural. Verifique sua permissão de acesso ao núcleo Gemini."

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrReplyPending = errors.New("a reply for this session is still pending")
)

// ChatService runs one exchange: the user message is stored first, then the
// gateway is asked for a reply, which is stored after it.
type ChatService struct {
	sessions *SessionManager
	gw       gateway.Gateway
	logger   logging.Logger
	now      func() time.Time
	newID    func() string

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewChatService(sessions *SessionManager, gw gateway.Gateway, logger logging.Logger) *ChatService {
	return &ChatService{
		sessions: sessions,
		gw:       gw,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		pending:  make(map[string]struct{}),
	}
}

// Send posts text to sessionID on behalf of user and returns the updated
// collection together with the assistant's message. A gateway error does not
// fail Send: the exchange is completed with FailureReply instead.
func (s *ChatService) Send(ctx context.Context, user models.UserProfile, all []models.ChatSession, sessionID, text string) ([]models.ChatSession, models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return all, models.Message{}, ErrEmptyMessage
	}

	session, ok := FindSession(all, sessionID)
	if !ok || session.UserID != user.ID {
		return all, models.Message{}, fmt.Errorf("session %s: %w", sessionID, common.ErrNotFound)
	}

	if !s.acquire(sessionID) {
		return all, models.Message{}, ErrReplyPending
	}
	defer s.release(sessionID)

	history := session.Messages
	msgs := make([]models.Message, 0, len(history)+2)
	msgs = append(msgs, history...)
	msgs = append(msgs, s.message(models.MessageRoleUser, text))

	all, err := s.sessions.AppendMessages(ctx, all, sessionID, msgs)
	if err != nil {
		return all, models.Message{}, err
	}

	s.logger.Debug(ctx, "requesting assistant reply", "session", sessionID, "history", len(history))
	content, err := s.gw.Reply(ctx, gateway.CallerFrom(user), history, text)
	if err != nil {
		s.logger.Error(ctx, "assistant reply failed", "session", sessionID, "error", err)
		content = FailureReply
	}

	reply := s.message(models.MessageRoleAssistant, content)
	msgs = append(msgs, reply)

	all, err = s.sessions.AppendMessages(ctx, all, sessionID, msgs)
	if err != nil {
		return all, models.Message{}, err
	}
	return all, reply, nil
}

func (s *ChatService) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pending[id]; busy {
		return false
	}
	s.pending[id] = struct{}{}
	return true
}

func (s *ChatService) release(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

func (s *ChatService) message(role models.MessageRole, content string) models.Message {
	return models.Message{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}
}
