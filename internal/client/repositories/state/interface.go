// Package state is the typed persistence boundary of the client. It reads and
// writes whole collections (users, sessions, global config) and the
// active-user pointer, each under its own key of the kv store.
//
// Every mutation in the services is "load everything, transform, save
// everything": last writer wins, and nothing reconciles two processes sharing
// one database file.
package state

import (
	"context"

	"github.com/dmitrijs2005/aither/internal/client/models"
)

// Storage keys, identical to the browser client's local storage keys.
const (
	KeyUsers        = "aither_database_users"
	KeySessions     = "aither_database_chats"
	KeyGlobalConfig = "aither_global_config"
	KeyActiveUser   = "aither_active_user_id"
)

type Repository interface {
	LoadUsers(ctx context.Context) ([]models.UserProfile, error)
	SaveUsers(ctx context.Context, users []models.UserProfile) error

	LoadSessions(ctx context.Context) ([]models.ChatSession, error)
	SaveSessions(ctx context.Context, sessions []models.ChatSession) error

	// LoadGlobalConfig returns nil when nothing has been stored yet.
	LoadGlobalConfig(ctx context.Context) (*models.GlobalConfig, error)
	SaveGlobalConfig(ctx context.Context, cfg models.GlobalConfig) error

	// ActiveUserID returns "" when nobody is logged in.
	ActiveUserID(ctx context.Context) (string, error)
	// SetActiveUserID stores id; an empty id removes the pointer.
	SetActiveUserID(ctx context.Context, id string) error

	// Raw and SetRaw move stored documents verbatim (backup/restore).
	Raw(ctx context.Context, key string) ([]byte, error)
	SetRaw(ctx context.Context, key string, value []byte) error
}
