package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/repositories/state"
	"github.com/dmitrijs2005/aither/internal/common"
)

// DefaultAIAvatar is the built-in assistant logo, an SVG data URL.
const DefaultAIAvatar = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iNTEyIiBoZWlnaHQ9IjUxMiIgdmlld0JveD0iMCAwIDUxMiA1MTIiIGZpbGw9Im5vbmUiIHhtbG5zPSJodHRwOi8vd3d3LnczLm9yZy8yMDAwL3N2ZyI+CjxyZWN0IHdpZHRoPSI1MTIiIGhlaWdodD0iNTEyIiByeD0iMjU2IiBmaWxsPSJ3aGl0ZSIvPgo8cGF0aCBkPSJNMjU2IDg1TDI5NiAxMzVMMzQ2IDg1TDM2NiAxNjVIMTQ2TDE2NiA4NUwyMTYgMTM1TDI1NiA4NVoiIGZpbGw9ImJsYWNrIi8+CjxwYXRoIGQ9Ik0xNzYgMTk1SDMzNlYyNTVIMTc2VjE5NVoiIGZpbGw9ImJsYWNrIi8+CjxwYXRoIGQ9Ik0xNzYgMjcwSDI0NlYzMzBIMTc2VjI3MFoiIGZpbGw9ImJsYWNrIi8+CjxwYXRoIGQ9Ik0yNjYgMjcwSDMzNlYzMzBIMjY2VjI3MFoiIGZpbGw9ImJsYWNrIi8+CjxwYXRoIGQ9Ik0xNzYgMzQ1SDMzNlY0MDVDMzM2IDQyMS41NjkgMzIyLjU2OSA0MzUgMzA2IDQzNUgyMDZDMTg5LjQzMSA0MzUgMTc2IDQyMS41NjkgMTc2IDQwNVYzNDVaIiBmaWxsPSJibGFjayIvPgo8L3N2Zz4="

// SystemEditor is recorded as the editor of the built-in config.
const SystemEditor = "system"

func DefaultGlobalConfig() models.GlobalConfig {
	return models.GlobalConfig{AIAvatar: DefaultAIAvatar, LastEditor: SystemEditor}
}

// GlobalConfigManager reads and writes the platform-wide config. Only the
// owner may change it, and every change overwrites the previous one.
type GlobalConfigManager struct {
	repo state.Repository
}

func NewGlobalConfigManager(repo state.Repository) *GlobalConfigManager {
	return &GlobalConfigManager{repo: repo}
}

// Get returns the stored config, or the default when none was saved.
func (m *GlobalConfigManager) Get(ctx context.Context) (models.GlobalConfig, error) {
	cfg, err := m.repo.LoadGlobalConfig(ctx)
	if err != nil {
		return models.GlobalConfig{}, fmt.Errorf("load global config: %w", err)
	}
	if cfg == nil {
		return DefaultGlobalConfig(), nil
	}
	return *cfg, nil
}

func (m *GlobalConfigManager) Set(ctx context.Context, actor models.UserProfile, aiAvatar string) (models.GlobalConfig, error) {
	if !actor.IsOwner() {
		return models.GlobalConfig{}, common.ErrForbidden
	}

	cfg := models.GlobalConfig{AIAvatar: aiAvatar, LastEditor: actor.DisplayName}
	if err := m.repo.SaveGlobalConfig(ctx, cfg); err != nil {
		return models.GlobalConfig{}, fmt.Errorf("save global config: %w", err)
	}
	return cfg, nil
}

// ResolveImageRef turns ref into something that can be stored as an avatar.
// URLs and data URLs are returned as they are; anything else is read as a
// local file and encoded into a data URL.
func ResolveImageRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", ref, err)
	}

	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(ref)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", ref, ct)
	}

	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
