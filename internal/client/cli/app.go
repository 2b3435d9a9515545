package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/aither/internal/client/config"
	"github.com/dmitrijs2005/aither/internal/client/gateway"
	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/objectstore"
	"github.com/dmitrijs2005/aither/internal/client/repositories/kv"
	"github.com/dmitrijs2005/aither/internal/client/repositories/state"
	"github.com/dmitrijs2005/aither/internal/client/services"
	"github.com/dmitrijs2005/aither/internal/client/storage"
	"github.com/dmitrijs2005/aither/internal/logging"
)

var errNotLoggedIn = errors.New("not logged in; type 'login'")

// App is the state of one CLI process: the services, the signed-in user,
// the session collection and the session currently open.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	closer io.Closer

	repo     state.Repository
	registry *services.Registry
	sessions *services.SessionManager
	globals  *services.GlobalConfigManager
	chat     *services.ChatService
	backup   *services.BackupService
	blobs    services.BlobStore

	render *renderer
	reader *bufio.Reader
	out    io.Writer

	users    []models.UserProfile
	all      []models.ChatSession
	user     *models.UserProfile
	activeID string
	// listed holds the session ids of the last listing, for "open 2".
	listed []string
}

// NewApp opens the database and wires the services. The Gemini gateway is
// optional: without an API key every reply degrades to services.FailureReply.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	repo := state.NewKVRepository(kv.NewSQLiteRepository(db), logger)
	registry := services.NewRegistry(repo, services.OwnerAccount{
		Email: c.OwnerEmail,
		Name:  c.OwnerName,
		PIN:   c.OwnerPIN,
	}, logger)
	sessions := services.NewSessionManager(repo)

	a := &App{
		config:   c,
		logger:   logger,
		db:       db,
		repo:     repo,
		registry: registry,
		sessions: sessions,
		globals:  services.NewGlobalConfigManager(repo),
		backup:   services.NewBackupService(db, repo, registry, logger),
		render:   newRenderer(c.RenderMarkdown && isTerminal(int(os.Stdout.Fd()))),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	var gw gateway.Gateway = unavailableGateway{}
	gem, err := gateway.NewGemini(ctx, c.GeminiAPIKey, c.GeminiModel)
	switch {
	case err == nil:
		gw = gem
		a.closer = gem
	case errors.Is(err, gateway.ErrNoAPIKey):
		logger.Warn(ctx, "GEMINI_API_KEY is not set, assistant replies are disabled")
	default:
		_ = db.Close()
		return nil, err
	}
	a.chat = services.NewChatService(sessions, gw, logger)

	store, err := objectstore.NewS3Store(ctx, objectstore.Options{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	})
	switch {
	case err == nil:
		a.blobs = store
	case errors.Is(err, objectstore.ErrNotConfigured):
		logger.Debug(ctx, "s3 backups not configured")
	default:
		logger.Warn(ctx, "s3 backups disabled", "error", err)
	}

	return a, nil
}

// Run restores the previous login (or asks for one) and serves the REPL
// until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println("AITHER // Hypers Labs neural terminal (type 'help' for commands)")

	if err := a.Restore(ctx); err != nil {
		a.logger.Error(ctx, "restore session failed", "error", err)
	}
	if !a.isLoggedIn() {
		if err := a.Login(ctx); err != nil && !errors.Is(err, io.EOF) {
			a.println("Error:", err)
		}
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// Restore signs in the user recorded by the active-user pointer, if any. A
// pointer to a user that no longer exists is removed.
func (a *App) Restore(ctx context.Context) error {
	users, err := a.registry.Load(ctx)
	if err != nil {
		return err
	}
	a.users = users

	id, err := a.repo.ActiveUserID(ctx)
	if err != nil || id == "" {
		return err
	}

	u, ok := services.FindByID(users, id)
	if !ok {
		a.logger.Warn(ctx, "active user no longer exists", "user_id", id)
		return a.repo.SetActiveUserID(ctx, "")
	}
	return a.signIn(ctx, u)
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) hasOpenSession() bool {
	return a.activeID != ""
}

func (a *App) status() string {
	if a.user == nil {
		return ""
	}
	s := a.user.DisplayName
	if a.user.IsOwner() {
		s += " [owner]"
	}
	if cur, ok := a.current(); ok {
		s += " · " + cur.Title
	}
	return s
}

// current returns the open session.
func (a *App) current() (models.ChatSession, bool) {
	if a.activeID == "" {
		return models.ChatSession{}, false
	}
	return services.FindSession(a.all, a.activeID)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// unavailableGateway stands in when no API key is configured.
type unavailableGateway struct{}

func (unavailableGateway) Reply(context.Context, gateway.Caller, []models.Message, string) (string, error) {
	return "", gateway.ErrNoAPIKey
}
