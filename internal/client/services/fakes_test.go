package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/aither/internal/client/gateway"
	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/repositories/state"
)

// fakeState is an in-memory state.Repository that records saves.
type fakeState struct {
	users    []models.UserProfile
	sessions []models.ChatSession
	cfg      *models.GlobalConfig
	active   string
	raw      map[string][]byte

	loadErr error
	saveErr error

	userSaves    int
	sessionSaves int
}

var _ state.Repository = (*fakeState)(nil)

func (f *fakeState) LoadUsers(context.Context) ([]models.UserProfile, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]models.UserProfile(nil), f.users...), nil
}

func (f *fakeState) SaveUsers(_ context.Context, users []models.UserProfile) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.userSaves++
	f.users = append([]models.UserProfile(nil), users...)
	return nil
}

func (f *fakeState) LoadSessions(context.Context) ([]models.ChatSession, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]models.ChatSession(nil), f.sessions...), nil
}

func (f *fakeState) SaveSessions(_ context.Context, sessions []models.ChatSession) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sessionSaves++
	f.sessions = append([]models.ChatSession(nil), sessions...)
	return nil
}

func (f *fakeState) LoadGlobalConfig(context.Context) (*models.GlobalConfig, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.cfg, nil
}

func (f *fakeState) SaveGlobalConfig(_ context.Context, cfg models.GlobalConfig) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.cfg = &cfg
	return nil
}

func (f *fakeState) ActiveUserID(context.Context) (string, error) { return f.active, nil }

func (f *fakeState) SetActiveUserID(_ context.Context, id string) error {
	f.active = id
	return nil
}

func (f *fakeState) Raw(_ context.Context, key string) ([]byte, error) {
	return f.raw[key], nil
}

func (f *fakeState) SetRaw(_ context.Context, key string, value []byte) error {
	if f.raw == nil {
		f.raw = map[string][]byte{}
	}
	f.raw[key] = value
	return nil
}

// fakeGateway returns a fixed reply and records what it was asked.
type fakeGateway struct {
	reply string
	err   error

	// entered, when set, receives a value as Reply starts.
	entered chan struct{}
	// block, when set, is waited on before replying.
	block chan struct{}

	mu      sync.Mutex
	calls   int
	caller  gateway.Caller
	history []models.Message
	text    string
}

func (g *fakeGateway) Reply(_ context.Context, caller gateway.Caller, history []models.Message, text string) (string, error) {
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.caller = caller
	g.history = append([]models.Message(nil), history...)
	g.text = text
	return g.reply, g.err
}

// seqIDs returns an id generator yielding prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
