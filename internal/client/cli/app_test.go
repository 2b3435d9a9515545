package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/aither/internal/client/config"
	"github.com/dmitrijs2005/aither/internal/client/gateway"
	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/repositories/kv"
	"github.com/dmitrijs2005/aither/internal/client/repositories/state"
	"github.com/dmitrijs2005/aither/internal/client/services"
	"github.com/dmitrijs2005/aither/internal/client/storage"
	"github.com/dmitrijs2005/aither/internal/common"
	"github.com/dmitrijs2005/aither/internal/logging"
)

type stubGateway struct {
	reply string
	err   error
	texts []string
}

func (g *stubGateway) Reply(_ context.Context, _ gateway.Caller, _ []models.Message, text string) (string, error) {
	g.texts = append(g.texts, text)
	return g.reply, g.err
}

type memBlobs struct{ objects map[string][]byte }

func (m *memBlobs) Put(_ context.Context, key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	d, ok := m.objects[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return d, nil
}

// newTestApp wires an App over a temporary database, like NewApp does, but
// with a stub gateway and output captured in a buffer.
func newTestApp(t *testing.T, gw gateway.Gateway) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "aither.db")

	db, err := storage.InitDatabase(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabasePath = dbPath

	logger := logging.Discard()
	repo := state.NewKVRepository(kv.NewSQLiteRepository(db), logger)
	registry := services.NewRegistry(repo, services.DefaultOwnerAccount(), logger)
	sessions := services.NewSessionManager(repo)

	var out bytes.Buffer
	a := &App{
		config:   cfg,
		logger:   logger,
		repo:     repo,
		registry: registry,
		sessions: sessions,
		globals:  services.NewGlobalConfigManager(repo),
		chat:     services.NewChatService(sessions, gw, logger),
		backup:   services.NewBackupService(db, repo, registry, logger),
		render:   newRenderer(false),
		reader:   bufio.NewReader(bytes.NewReader(nil)),
		out:      &out,
	}
	require.NoError(t, a.Restore(ctx))
	return a, &out
}

// scriptInputs answers text prompts and PIN prompts from two queues.
func scriptInputs(t *testing.T, texts []string, pins []string) {
	t.Helper()
	origText, origPIN, origConfirm := getSimpleText, getPIN, confirm
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPIN = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(pins) == 0 {
			return "", io.EOF
		}
		v := pins[0]
		pins = pins[1:]
		return v, nil
	}
	confirm = func(*bufio.Reader, string, io.Writer) (bool, error) { return true, nil }
	t.Cleanup(func() { getSimpleText, getPIN, confirm = origText, origPIN, origConfirm })
}

func loginOwner(t *testing.T, a *App) {
	t.Helper()
	scriptInputs(t, []string{"owner@aither.local"}, []string{"2011"})
	require.NoError(t, a.Login(context.Background()))
	require.True(t, a.isLoggedIn())
}

func TestLogin_OwnerWithWrongPINThenRight(t *testing.T) {
	a, out := newTestApp(t, &stubGateway{})
	ctx := context.Background()
	scriptInputs(t, []string{"Owner@Aither.local"}, []string{"0000", "2011"})

	require.NoError(t, a.Login(ctx))

	require.True(t, a.isLoggedIn())
	assert.True(t, a.user.IsOwner())
	assert.Contains(t, out.String(), "PIN incorreto")
	assert.Contains(t, out.String(), "Criador")

	id, err := a.repo.ActiveUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.user.ID, id)
}

func TestLogin_NewUserIsRegistered(t *testing.T) {
	a, out := newTestApp(t, &stubGateway{})
	ctx := context.Background()
	// The first setup attempt has a short PIN and is asked again.
	scriptInputs(t, []string{"Ana@Example.com", "Ana", "Ana"}, []string{"12", "1234"})

	require.NoError(t, a.Login(ctx))
	require.True(t, a.isLoggedIn())
	assert.Equal(t, "Ana", a.user.DisplayName)
	assert.Equal(t, "ana@example.com", a.user.Email)
	assert.False(t, a.user.IsOwner())
	assert.Contains(t, out.String(), "O PIN deve conter 4 dígitos.")

	users, err := a.registry.Load(ctx)
	require.NoError(t, err)
	_, ok := services.FindByEmail(users, "ana@example.com")
	assert.True(t, ok)
}

func TestLogin_EmptyPINGoesBackToEmail(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	scriptInputs(t, []string{"owner@aither.local", "owner@aither.local"}, []string{"", "2011"})

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
}

func TestLogin_InputEOFStops(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	scriptInputs(t, nil, nil)

	err := a.Login(context.Background())
	require.ErrorIs(t, err, io.EOF)
	assert.False(t, a.isLoggedIn())
}

func TestRestore_SignsInActiveUser(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	loginOwner(t, a)
	id := a.user.ID

	a.user = nil
	require.NoError(t, a.Restore(context.Background()))
	require.True(t, a.isLoggedIn())
	assert.Equal(t, id, a.user.ID)
}

func TestRestore_DropsDanglingPointer(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	ctx := context.Background()
	require.NoError(t, a.repo.SetActiveUserID(ctx, "ghost"))

	require.NoError(t, a.Restore(ctx))
	assert.False(t, a.isLoggedIn())

	id, err := a.repo.ActiveUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSendCreatesSessionAndStoresExchange(t *testing.T) {
	gw := &stubGateway{reply: "A capital é **Camberra**."}
	a, out := newTestApp(t, gw)
	loginOwner(t, a)
	ctx := context.Background()

	require.NoError(t, a.Send(ctx, "Qual é a capital da Austrália?"))

	cur, ok := a.current()
	require.True(t, ok)
	assert.Equal(t, "Qual é a capital da Austrália?", cur.Title)
	require.Len(t, cur.Messages, 2)
	assert.Equal(t, models.MessageRoleAssistant, cur.Messages[1].Role)
	assert.Contains(t, out.String(), "Camberra")
	assert.Equal(t, []string{"Qual é a capital da Austrália?"}, gw.texts)

	require.ErrorIs(t, a.Send(ctx, "   "), services.ErrEmptyMessage)
}

func TestSend_GatewayFailureShowsFailureReply(t *testing.T) {
	a, out := newTestApp(t, &stubGateway{err: errors.New("permission denied")})
	loginOwner(t, a)

	require.NoError(t, a.Send(context.Background(), "oi"))
	assert.Contains(t, out.String(), services.FailureReply)
}

func TestDelete_ActiveSessionClearsSelection(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	loginOwner(t, a)
	ctx := context.Background()

	require.NoError(t, a.New(ctx))
	first := a.activeID
	require.NoError(t, a.New(ctx))
	second := a.activeID

	require.NoError(t, a.Delete(ctx, first))
	assert.Equal(t, second, a.activeID, "deleting another session keeps the selection")

	require.NoError(t, a.Delete(ctx, second))
	assert.Empty(t, a.activeID)
	assert.False(t, a.hasOpenSession())
}

func TestListAndOpenByNumber(t *testing.T) {
	a, out := newTestApp(t, &stubGateway{reply: "ok"})
	loginOwner(t, a)
	ctx := context.Background()

	require.NoError(t, a.Send(ctx, "primeira conversa"))
	require.NoError(t, a.New(ctx))
	require.NoError(t, a.Home(ctx))

	require.NoError(t, a.List(ctx))
	assert.Contains(t, out.String(), "Nova Conversa")
	assert.Contains(t, out.String(), "primeira conversa")

	require.NoError(t, a.Open(ctx, "2"))
	cur, ok := a.current()
	require.True(t, ok)
	assert.Equal(t, "primeira conversa", cur.Title, "newest first, so #2 is the older one")

	require.Error(t, a.Open(ctx, "9"))
	require.ErrorIs(t, a.Open(ctx, "not-an-id"), common.ErrNotFound)
	require.Error(t, a.Open(ctx, ""))
}

func TestSessionsOfOtherUsersAreInvisible(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	loginOwner(t, a)
	ctx := context.Background()
	require.NoError(t, a.New(ctx))
	ownerSession := a.activeID
	require.NoError(t, a.Logout(ctx))

	scriptInputs(t, []string{"ana@example.com", "Ana"}, []string{"1234"})
	require.NoError(t, a.Login(ctx))

	require.ErrorIs(t, a.Open(ctx, ownerSession), common.ErrNotFound)
	require.ErrorIs(t, a.Delete(ctx, ownerSession), common.ErrNotFound)
}

func TestClear(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	loginOwner(t, a)
	ctx := context.Background()
	require.NoError(t, a.New(ctx))
	require.NoError(t, a.New(ctx))

	require.NoError(t, a.Clear(ctx))
	assert.Empty(t, services.ListForUser(a.all, a.user.ID))
	assert.False(t, a.hasOpenSession())
}

func TestLogoutClearsPointerAndSelection(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	loginOwner(t, a)
	ctx := context.Background()
	require.NoError(t, a.New(ctx))

	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn())
	assert.False(t, a.hasOpenSession())

	id, err := a.repo.ActiveUserID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.ErrorIs(t, a.Logout(ctx), errNotLoggedIn)
}

func TestSettingsUpdatesProfile(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	loginOwner(t, a)
	ctx := context.Background()

	scriptInputs(t, []string{"Marcos", "https://example.com/me.png"}, []string{"4321"})
	require.NoError(t, a.Settings(ctx))

	assert.Equal(t, "Marcos", a.user.DisplayName)
	assert.Equal(t, "https://example.com/me.png", a.user.UserAvatar)
	assert.Equal(t, "4321", a.user.PIN)

	scriptInputs(t, []string{"", "-"}, []string{"12"})
	require.NoError(t, a.Settings(ctx))
	assert.Equal(t, "Marcos", a.user.DisplayName)
	assert.Empty(t, a.user.UserAvatar)
	assert.Equal(t, "4321", a.user.PIN, "short PIN is ignored")
}

func TestOwnerOnlyCommands(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{})
	ctx := context.Background()
	scriptInputs(t, []string{"ana@example.com", "Ana"}, []string{"1234"})
	require.NoError(t, a.Login(ctx))

	require.ErrorIs(t, a.Users(ctx), common.ErrForbidden)
	require.ErrorIs(t, a.Export(ctx, ""), common.ErrForbidden)
	require.ErrorIs(t, a.Import(ctx, "x.json"), common.ErrForbidden)
	require.ErrorIs(t, a.Avatar(ctx, "https://example.com/ai.png"), common.ErrForbidden)
	require.NoError(t, a.Avatar(ctx, ""), "anyone may look at the avatar")
}

func TestAvatar_OwnerSetsGlobalConfig(t *testing.T) {
	a, out := newTestApp(t, &stubGateway{})
	loginOwner(t, a)
	ctx := context.Background()

	require.NoError(t, a.Avatar(ctx, "https://example.com/ai.png"))
	cfg, err := a.globals.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/ai.png", cfg.AIAvatar)
	assert.Equal(t, "Owner", cfg.LastEditor)
	assert.Contains(t, out.String(), "AI avatar updated by Owner.")
}

func TestExportImportFile(t *testing.T) {
	a, _ := newTestApp(t, &stubGateway{reply: "ok"})
	loginOwner(t, a)
	ctx := context.Background()
	require.NoError(t, a.Send(ctx, "guardar isto"))

	dir := t.TempDir()
	require.NoError(t, a.Export(ctx, dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	path := filepath.Join(dir, entries[0].Name())

	require.NoError(t, a.Clear(ctx))
	require.NoError(t, a.Import(ctx, path))

	assert.True(t, a.isLoggedIn())
	mine := services.ListForUser(a.all, a.user.ID)
	require.Len(t, mine, 1)
	assert.Equal(t, "guardar isto", mine[0].Title)
}

func TestExportImportS3(t *testing.T) {
	a, out := newTestApp(t, &stubGateway{})
	loginOwner(t, a)
	ctx := context.Background()

	require.ErrorIs(t, a.Export(ctx, "s3"), errS3Disabled)

	blobs := &memBlobs{objects: map[string][]byte{}}
	a.blobs = blobs
	require.NoError(t, a.Export(ctx, "s3"))
	require.Len(t, blobs.objects, 1)

	var key string
	for k := range blobs.objects {
		key = k
	}
	assert.Contains(t, out.String(), "s3:"+key)

	require.NoError(t, a.Import(ctx, "s3:"+key))
	require.Error(t, a.Import(ctx, "s3:missing.json"))
}
