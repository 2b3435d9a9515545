package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/moby/sys/atomicwriter"

	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/repositories/kv"
	"github.com/dmitrijs2005/aither/internal/client/repositories/state"
	"github.com/dmitrijs2005/aither/internal/common"
	"github.com/dmitrijs2005/aither/internal/dbx"
	"github.com/dmitrijs2005/aither/internal/filex"
	"github.com/dmitrijs2005/aither/internal/logging"
)

// BlobStore is a remote place backups can be kept in.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// BackupService exports and restores the three primary records verbatim.
type BackupService struct {
	db       *sql.DB
	repo     state.Repository
	registry *Registry
	logger   logging.Logger
	now      func() time.Time
}

func NewBackupService(db *sql.DB, repo state.Repository, registry *Registry, logger logging.Logger) *BackupService {
	return &BackupService{db: db, repo: repo, registry: registry, logger: logger, now: time.Now}
}

// Export returns the backup document and its conventional file name.
func (s *BackupService) Export(ctx context.Context, actor models.UserProfile) ([]byte, string, error) {
	if !actor.IsOwner() {
		return nil, "", common.ErrForbidden
	}

	var b models.Backup
	for _, f := range []struct {
		key string
		dst *string
	}{
		{state.KeyUsers, &b.Users},
		{state.KeySessions, &b.Chats},
		{state.KeyGlobalConfig, &b.Config},
	} {
		raw, err := s.repo.Raw(ctx, f.key)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", f.key, err)
		}
		*f.dst = string(raw)
	}

	ts := s.now()
	b.ExportedAt = ts.UTC()

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode backup: %w", err)
	}
	return data, models.BackupFileName(ts), nil
}

// Import restores a backup produced by Export (or by the browser client).
// Every record is validated before anything is written, and all records are
// written in one transaction. Empty records leave the stored value alone.
// The registry is reloaded afterwards so the owner account is guaranteed.
func (s *BackupService) Import(ctx context.Context, actor models.UserProfile, data []byte) ([]models.UserProfile, error) {
	if !actor.IsOwner() {
		return nil, common.ErrForbidden
	}

	var b models.Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode backup: %w: %v", common.ErrCorruptRecord, err)
	}

	records := []struct {
		key string
		raw string
		dst any
	}{
		{state.KeyUsers, b.Users, &[]models.UserProfile{}},
		{state.KeySessions, b.Chats, &[]models.ChatSession{}},
		{state.KeyGlobalConfig, b.Config, &models.GlobalConfig{}},
	}
	for _, r := range records {
		if r.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(r.raw), r.dst); err != nil {
			return nil, fmt.Errorf("backup record %s: %w: %v", r.key, common.ErrCorruptRecord, err)
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := state.NewKVRepository(kv.NewSQLiteRepository(tx), s.logger)
		for _, r := range records {
			if r.raw == "" {
				continue
			}
			if err := repo.SetRaw(ctx, r.key, []byte(r.raw)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("restore backup: %w", err)
	}

	s.logger.Info(ctx, "backup restored", "by", actor.Email)
	return s.registry.Load(ctx)
}

// SaveFile writes data to path atomically, creating parent directories.
func SaveFile(path string, data []byte) error {
	if err := filex.EnsureParentDir(path); err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
