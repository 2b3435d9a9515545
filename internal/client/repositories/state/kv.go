package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/repositories/kv"
	"github.com/dmitrijs2005/aither/internal/logging"
)

// KVRepository implements Repository on top of a kv.Repository.
//
// A stored value that is not valid JSON is quarantined: it is copied to
// "<key>.corrupt.<unix-ms>", the key itself is removed, and the collection
// loads as empty.
type KVRepository struct {
	store  kv.Repository
	logger logging.Logger
	now    func() time.Time
}

var _ Repository = (*KVRepository)(nil)

func NewKVRepository(store kv.Repository, logger logging.Logger) *KVRepository {
	return &KVRepository{store: store, logger: logger, now: time.Now}
}

// QuarantineKey is where a corrupt value of key is moved at time t.
func QuarantineKey(key string, t time.Time) string {
	return key + ".corrupt." + strconv.FormatInt(t.UnixMilli(), 10)
}

func (r *KVRepository) LoadUsers(ctx context.Context) ([]models.UserProfile, error) {
	var users []models.UserProfile
	if _, err := r.load(ctx, KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *KVRepository) SaveUsers(ctx context.Context, users []models.UserProfile) error {
	if users == nil {
		users = []models.UserProfile{}
	}
	return r.save(ctx, KeyUsers, users)
}

func (r *KVRepository) LoadSessions(ctx context.Context) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if _, err := r.load(ctx, KeySessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *KVRepository) SaveSessions(ctx context.Context, sessions []models.ChatSession) error {
	out := make([]models.ChatSession, len(sessions))
	copy(out, sessions)
	for i := range out {
		if out[i].Messages == nil {
			out[i].Messages = []models.Message{}
		}
	}
	return r.save(ctx, KeySessions, out)
}

func (r *KVRepository) LoadGlobalConfig(ctx context.Context) (*models.GlobalConfig, error) {
	var cfg models.GlobalConfig
	found, err := r.load(ctx, KeyGlobalConfig, &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

func (r *KVRepository) SaveGlobalConfig(ctx context.Context, cfg models.GlobalConfig) error {
	return r.save(ctx, KeyGlobalConfig, cfg)
}

func (r *KVRepository) ActiveUserID(ctx context.Context) (string, error) {
	v, err := r.store.Get(ctx, KeyActiveUser)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (r *KVRepository) SetActiveUserID(ctx context.Context, id string) error {
	if id == "" {
		return r.store.Delete(ctx, KeyActiveUser)
	}
	return r.store.Set(ctx, KeyActiveUser, []byte(id))
}

func (r *KVRepository) Raw(ctx context.Context, key string) ([]byte, error) {
	return r.store.Get(ctx, key)
}

func (r *KVRepository) SetRaw(ctx context.Context, key string, value []byte) error {
	return r.store.Set(ctx, key, value)
}

// load decodes the value under key into dst. It reports false when the key is
// absent, empty, or held a corrupt value that has just been quarantined.
func (r *KVRepository) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		if qerr := r.quarantine(ctx, key, raw); qerr != nil {
			return false, fmt.Errorf("quarantine %s: %w", key, qerr)
		}
		r.logger.Warn(ctx, "corrupt record quarantined, starting empty", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (r *KVRepository) quarantine(ctx context.Context, key string, raw []byte) error {
	if err := r.store.Set(ctx, QuarantineKey(key, r.now()), raw); err != nil {
		return err
	}
	return r.store.Delete(ctx, key)
}

func (r *KVRepository) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.store.Set(ctx, key, raw)
}
