package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/repositories/state"
	"github.com/dmitrijs2005/aither/internal/common"
)

const (
	DefaultSessionTitle = "Nova Conversa"
	titleRunes          = 30
)

// DeriveTitle returns the title a session gets from its messages: the first
// user message cut to 30 runes (with "..." when cut), or fallback.
func DeriveTitle(messages []models.Message, fallback string) string {
	for _, m := range messages {
		if m.Role != models.MessageRoleUser {
			continue
		}
		r := []rune(m.Content)
		if len(r) > titleRunes {
			return string(r[:titleRunes]) + "..."
		}
		return m.Content
	}
	return fallback
}

// ListForUser keeps stored order, which is newest-created first.
func ListForUser(all []models.ChatSession, userID string) []models.ChatSession {
	out := make([]models.ChatSession, 0)
	for _, s := range all {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}

func FindSession(all []models.ChatSession, id string) (models.ChatSession, bool) {
	for _, s := range all {
		if s.ID == id {
			return s, true
		}
	}
	return models.ChatSession{}, false
}

// SessionManager owns the session collection of every user. Each operation
// takes the current collection, persists the result and returns it.
type SessionManager struct {
	repo  state.Repository
	now   func() time.Time
	newID func() string
}

func NewSessionManager(repo state.Repository) *SessionManager {
	return &SessionManager{repo: repo, now: time.Now, newID: uuid.NewString}
}

func (m *SessionManager) Load(ctx context.Context) ([]models.ChatSession, error) {
	all, err := m.repo.LoadSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return all, nil
}

// Create prepends a new empty session for userID.
func (m *SessionManager) Create(ctx context.Context, all []models.ChatSession, userID string) (models.ChatSession, []models.ChatSession, error) {
	s := models.ChatSession{
		ID:        m.newID(),
		UserID:    userID,
		Title:     DefaultSessionTitle,
		Messages:  []models.Message{},
		UpdatedAt: m.now().UnixMilli(),
	}

	out := make([]models.ChatSession, 0, len(all)+1)
	out = append(out, s)
	out = append(out, all...)

	if err := m.save(ctx, out); err != nil {
		return models.ChatSession{}, all, err
	}
	return s, out, nil
}

// AppendMessages replaces the message list of sessionID wholesale, recomputes
// its title and stamps UpdatedAt. Other sessions are left as they are.
func (m *SessionManager) AppendMessages(ctx context.Context, all []models.ChatSession, sessionID string, messages []models.Message) ([]models.ChatSession, error) {
	out := make([]models.ChatSession, len(all))
	copy(out, all)

	found := false
	for i := range out {
		if out[i].ID != sessionID {
			continue
		}
		msgs := make([]models.Message, len(messages))
		copy(msgs, messages)
		out[i].Messages = msgs
		out[i].Title = DeriveTitle(msgs, out[i].Title)
		out[i].UpdatedAt = m.now().UnixMilli()
		found = true
		break
	}
	if !found {
		return all, fmt.Errorf("session %s: %w", sessionID, common.ErrNotFound)
	}

	if err := m.save(ctx, out); err != nil {
		return all, err
	}
	return out, nil
}

func (m *SessionManager) Delete(ctx context.Context, all []models.ChatSession, sessionID string) ([]models.ChatSession, error) {
	out := make([]models.ChatSession, 0, len(all))
	for _, s := range all {
		if s.ID != sessionID {
			out = append(out, s)
		}
	}
	if len(out) == len(all) {
		return all, fmt.Errorf("session %s: %w", sessionID, common.ErrNotFound)
	}

	if err := m.save(ctx, out); err != nil {
		return all, err
	}
	return out, nil
}

// ClearForUser removes every session owned by userID and reports how many
// were removed.
func (m *SessionManager) ClearForUser(ctx context.Context, all []models.ChatSession, userID string) ([]models.ChatSession, int, error) {
	out := make([]models.ChatSession, 0, len(all))
	for _, s := range all {
		if s.UserID != userID {
			out = append(out, s)
		}
	}
	removed := len(all) - len(out)
	if removed == 0 {
		return all, 0, nil
	}

	if err := m.save(ctx, out); err != nil {
		return all, 0, err
	}
	return out, removed, nil
}

func (m *SessionManager) save(ctx context.Context, all []models.ChatSession) error {
	if err := m.repo.SaveSessions(ctx, all); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}
