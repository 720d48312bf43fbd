package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/omnisent/omnisent/internal/client/config"
	"github.com/omnisent/omnisent/internal/client/models"
	"github.com/omnisent/omnisent/internal/client/session"
	"github.com/omnisent/omnisent/internal/client/uploads"
	"github.com/omnisent/omnisent/internal/common"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func mintToken(t *testing.T, subject string, role models.Role, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      subject,
		"username": subject,
		"role":     string(role),
		"exp":      time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// memStore is an in-memory credentials.Repository.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}
func (s *memStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}
func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}

// fakeAPI is a scriptable api.Client.
type fakeAPI struct {
	loginToken string
	loginUser  *models.User
	loginErr   error

	logoutCalled bool

	files   map[string]*models.Resource
	listOut []*models.Resource

	deletedID string
	renamedTo string
	movedTo   string

	shareIn   string
	shareOpts models.ShareOptions
	shareOut  *models.Share

	versionsID string
	versions   []*models.Version
	activityID string
	activities []*models.Activity
	stats      *models.StorageStats

	uploaded []string
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}
func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) { return f.loginUser, nil }
func (f *fakeAPI) Refresh(ctx context.Context) (string, error)  { return f.loginToken, nil }
func (f *fakeAPI) Logout(ctx context.Context) error {
	f.logoutCalled = true
	return nil
}

func (f *fakeAPI) ListFiles(ctx context.Context, path, filter, search string) ([]*models.Resource, error) {
	return f.listOut, nil
}
func (f *fakeAPI) GetFile(ctx context.Context, id string) (*models.Resource, error) {
	if res, ok := f.files[id]; ok {
		return res, nil
	}
	return nil, common.ErrNotFound
}
func (f *fakeAPI) DeleteFile(ctx context.Context, id string) error {
	f.deletedID = id
	return nil
}
func (f *fakeAPI) RenameFile(ctx context.Context, id, name string) error {
	f.renamedTo = name
	return nil
}
func (f *fakeAPI) MoveFile(ctx context.Context, id, parentID string) error {
	f.movedTo = parentID
	return nil
}
func (f *fakeAPI) CreateFolder(ctx context.Context, parentID, name string) (*models.Resource, error) {
	return &models.Resource{ID: "folder-1", Name: name, Kind: models.KindFolder}, nil
}

func (f *fakeAPI) Upload(ctx context.Context, folderID, name string, src io.Reader, size int64, progress func(int)) (*models.Resource, error) {
	f.uploaded = append(f.uploaded, name)
	if progress != nil {
		progress(100)
	}
	_, _ = io.Copy(io.Discard, src)
	return &models.Resource{ID: "res-" + name, Name: name}, nil
}

func (f *fakeAPI) CreateShare(ctx context.Context, id string, opts models.ShareOptions) (*models.Share, error) {
	f.shareIn = id
	f.shareOpts = opts
	return f.shareOut, nil
}
func (f *fakeAPI) ListVersions(ctx context.Context, id string) ([]*models.Version, error) {
	f.versionsID = id
	return f.versions, nil
}
func (f *fakeAPI) ListActivity(ctx context.Context, id string) ([]*models.Activity, error) {
	f.activityID = id
	return f.activities, nil
}
func (f *fakeAPI) Stats(ctx context.Context) (*models.StorageStats, error) { return f.stats, nil }
func (f *fakeAPI) Close() error                                            { return nil }

func newTestApp(t *testing.T, fake *fakeAPI) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	return &App{
		config:  cfg,
		api:     fake,
		session: session.NewManager(newMemStore(), nil),
		queue:   uploads.NewQueue(fake, nil, uploads.WithGracePeriod(time.Hour)),
		reader:  readerFromLines(),
	}
}

func loginAs(t *testing.T, app *App, subject string, role models.Role) {
	t.Helper()
	token := mintToken(t, subject, role, time.Hour)
	user := &models.User{ID: subject, Username: subject, Role: role, IsActive: true}
	require.NoError(t, app.session.Store(context.Background(), token, user))
}

func stubInput(t *testing.T, texts []string, password string) {
	t.Helper()
	origText, origPass := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPass })

	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(texts) {
			return "", nil
		}
		s := texts[i]
		i++
		return s, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return []byte(password), nil
	}
}

// ------------ tests ------------

func TestLogin_StoresSessionAndArmsAutoLogout(t *testing.T) {
	fake := &fakeAPI{
		loginToken: mintToken(t, "alice", models.RoleUser, time.Hour),
		loginUser:  &models.User{ID: "alice", Username: "alice", Role: models.RoleUser, IsActive: true},
	}
	app := newTestApp(t, fake)
	stubInput(t, []string{"alice"}, "p@ss")

	require.NoError(t, app.Login(context.Background()))

	require.True(t, app.session.IsAuthenticated())
	require.Equal(t, "alice", app.session.User().Username)
	require.NotNil(t, app.stopAutoLogout)
	app.stopAutoLogout()
}

func TestLogin_InvalidCredentials(t *testing.T) {
	fake := &fakeAPI{loginErr: common.ErrUnauthorized}
	app := newTestApp(t, fake)
	stubInput(t, []string{"alice"}, "wrong")

	err := app.Login(context.Background())
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.False(t, app.session.IsAuthenticated())
}

func TestLogout_ClearsSessionAndNotifiesBackend(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, fake)
	loginAs(t, app, "alice", models.RoleUser)

	require.NoError(t, app.Logout(context.Background()))
	require.True(t, fake.logoutCalled)
	require.False(t, app.session.IsAuthenticated())

	// Idempotent: a second logout is a no-op that still succeeds.
	fake.logoutCalled = false
	require.NoError(t, app.Logout(context.Background()))
	require.False(t, fake.logoutCalled)
}

func TestUpload_ValidatesBeforeEnqueueing(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, fake)
	loginAs(t, app, "gerda", models.RoleGuest)

	dir := t.TempDir()
	ok := filepath.Join(dir, "photo.jpg")
	blocked := filepath.Join(dir, "tool.exe")
	wrongType := filepath.Join(dir, "archive.zip")
	require.NoError(t, os.WriteFile(ok, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(wrongType, []byte("x"), 0o600))

	require.NoError(t, app.Upload(context.Background(), []string{ok, blocked, wrongType}))
	app.queue.Wait()

	tasks := app.queue.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "photo.jpg", tasks[0].Name)
	require.Equal(t, []string{"photo.jpg"}, fake.uploaded)
}

func TestUpload_RequiresLogin(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, fake)

	require.NoError(t, app.Upload(context.Background(), []string{"whatever.jpg"}))
	require.Empty(t, app.queue.Tasks())
}

func TestRemove_DeniedOnProtectedResource(t *testing.T) {
	fake := &fakeAPI{files: map[string]*models.Resource{
		"f1": {ID: "f1", Name: "report.pdf", OwnerID: "bob", Protected: true, Shared: true},
	}}
	app := newTestApp(t, fake)
	loginAs(t, app, "alice", models.RoleUser)

	require.NoError(t, app.Remove(context.Background(), []string{"f1"}))
	require.Empty(t, fake.deletedID)
}

func TestRemove_OwnerDeletes(t *testing.T) {
	fake := &fakeAPI{files: map[string]*models.Resource{
		"f1": {ID: "f1", Name: "report.pdf", OwnerID: "alice"},
	}}
	app := newTestApp(t, fake)
	loginAs(t, app, "alice", models.RoleUser)

	require.NoError(t, app.Remove(context.Background(), []string{"f1"}))
	require.Equal(t, "f1", fake.deletedID)
}

func TestRename_DeniedWithoutWriteGrant(t *testing.T) {
	fake := &fakeAPI{files: map[string]*models.Resource{
		"f1": {ID: "f1", Name: "notes.txt", OwnerID: "bob",
			Perms: &models.PermissionRecord{Read: true}},
	}}
	app := newTestApp(t, fake)
	loginAs(t, app, "alice", models.RoleUser)

	require.NoError(t, app.Rename(context.Background(), []string{"f1", "new.txt"}))
	require.Empty(t, fake.renamedTo)
}

func TestShare_RefusedForGuest(t *testing.T) {
	fake := &fakeAPI{files: map[string]*models.Resource{
		"f1": {ID: "f1", Name: "pic.jpg", OwnerID: "gerda"},
	}}
	app := newTestApp(t, fake)
	loginAs(t, app, "gerda", models.RoleGuest)

	require.NoError(t, app.Share(context.Background(), []string{"f1"}))
	require.Empty(t, fake.shareIn)
}

func TestShare_OwnerCreatesLink(t *testing.T) {
	fake := &fakeAPI{
		files: map[string]*models.Resource{
			"f1": {ID: "f1", Name: "pic.jpg", OwnerID: "alice"},
		},
		shareOut: &models.Share{ID: "s1", ResourceID: "f1", Token: "tok123", IsActive: true},
	}
	app := newTestApp(t, fake)
	loginAs(t, app, "alice", models.RoleUser)
	stubInput(t, []string{"", ""}, "") // no password, never expires

	require.NoError(t, app.Share(context.Background(), []string{"f1"}))
	require.Equal(t, "f1", fake.shareIn)
	require.Empty(t, fake.shareOpts.Password)
	require.Nil(t, fake.shareOpts.ExpiresAt)
}

func TestVersions_RequiresHistoryCapability(t *testing.T) {
	fake := &fakeAPI{
		files: map[string]*models.Resource{
			"f1": {ID: "f1", Name: "doc.txt", OwnerID: "bob", Shared: true},
		},
		versions: []*models.Version{{ID: "v1", Number: 1}},
	}
	app := newTestApp(t, fake)
	loginAs(t, app, "alice", models.RoleUser)

	// Shared-with visitor cannot see history.
	require.NoError(t, app.Versions(context.Background(), []string{"f1"}))
	require.Empty(t, fake.versionsID)

	// The owner can.
	fake.files["f1"].OwnerID = "alice"
	require.NoError(t, app.Versions(context.Background(), []string{"f1"}))
	require.Equal(t, "f1", fake.versionsID)
}

func TestStats_OK(t *testing.T) {
	fake := &fakeAPI{stats: &models.StorageStats{TotalFiles: 3, TotalFolders: 1, UsedBytes: 1 << 20}}
	app := newTestApp(t, fake)
	loginAs(t, app, "alice", models.RoleUser)

	require.NoError(t, app.Stats(context.Background()))
}
