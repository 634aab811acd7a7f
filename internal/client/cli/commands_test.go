package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/factshare/internal/client/backup"
	"github.com/dmitrijs2005/factshare/internal/client/config"
	"github.com/dmitrijs2005/factshare/internal/client/models"
	"github.com/dmitrijs2005/factshare/internal/client/services"
	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/dmitrijs2005/factshare/internal/share/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShare struct {
	res     *services.ShareResult
	profile *services.Profile
}

func (f *fakeShare) OwnerID(context.Context) (string, error) { return "owner-1", nil }
func (f *fakeShare) Settings(context.Context) (map[string]string, error) {
	return map[string]string{"owner_id": "owner-1", "last_backup": "factshare/owner-1/x.json"}, nil
}
func (f *fakeShare) Share(_ context.Context, p *services.Profile) (*services.ShareResult, error) {
	f.profile = p
	return f.res, nil
}

type fakeScan struct {
	raw string
	res *services.ScanResult
	err error
}

func (f *fakeScan) Scan(_ context.Context, raw string) (*services.ScanResult, error) {
	f.raw = raw
	return f.res, f.err
}

type fakeContacts struct {
	list       []models.Contact
	backupErr  error
	restored   string
	restoreErr error
}

func (f *fakeContacts) List(context.Context) ([]models.Contact, error) { return f.list, nil }
func (f *fakeContacts) Find(_ context.Context, ref string) (*models.Contact, error) {
	for i := range f.list {
		if f.list[i].ID == ref {
			return &f.list[i], nil
		}
	}
	return nil, common.ErrorNotFound
}
func (f *fakeContacts) Forget(ctx context.Context, ref string) (*models.Contact, error) {
	c, err := f.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	gone := *c
	f.list = slices.DeleteFunc(f.list, func(x models.Contact) bool { return x.ID == ref })
	return &gone, nil
}
func (f *fakeContacts) Backup(context.Context, string) (string, error) {
	return "factshare/owner-1/x.json", f.backupErr
}
func (f *fakeContacts) Restore(_ context.Context, key string) (int, error) {
	f.restored = key
	return 2, f.restoreErr
}

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer, *fakeShare, *fakeScan, *fakeContacts) {
	t.Helper()
	out := &bytes.Buffer{}
	sh := &fakeShare{}
	sc := &fakeScan{}
	ct := &fakeContacts{}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return &App{
		config:   cfg,
		share:    sh,
		scan:     sc,
		contacts: ct,
		log:      logging.Discard(),
		lines:    newScanner(strings.NewReader(input)),
		out:      out,
	}, out, sh, sc, ct
}

func TestShareCommand(t *testing.T) {
	stubPrint(t)
	app, out, sh, _, _ := newTestApp(t, "")

	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Анна","groups":[]}`), 0o600))
	sh.res = &services.ShareResult{Token: "FACTSHARE:abc", Link: "https://x/share/Ab3dEf7h", Short: true, ExpiresAt: time.Now(), Length: 13}

	require.NoError(t, app.Share(context.Background(), []string{path}))
	assert.Equal(t, "Анна", sh.profile.Name)
	assert.Contains(t, out.String(), "https://x/share/Ab3dEf7h")
	assert.Contains(t, out.String(), "FACTSHARE:abc")

	assert.Error(t, app.Share(context.Background(), []string{filepath.Join(t.TempDir(), "absent.json")}))
}

func TestScanCommand(t *testing.T) {
	printed := stubPrint(t)
	app, _, _, sc, _ := newTestApp(t, "https://x/share?token=FACTSHARE%3Aabc\n")

	sc.res = &services.ScanResult{Contact: models.Contact{Name: "Анна"}, WasCreated: true, AddedFacts: 1}
	require.NoError(t, app.Scan(context.Background(), nil))
	assert.Equal(t, "https://x/share?token=FACTSHARE%3Aabc", sc.raw)
	assert.Contains(t, *printed, "New contact Анна with 1 facts.")

	sc.res = &services.ScanResult{Contact: models.Contact{RemoteID: "u1"}}
	require.NoError(t, app.Scan(context.Background(), []string{"FACTSHARE:abc"}))
	assert.Contains(t, *printed, "u1 is up to date.")

	sc.err = locator.ErrNoToken
	assert.Error(t, app.Scan(context.Background(), []string{"junk"}))
	assert.Contains(t, *printed, services.ScanMessage(locator.ErrNoToken))
}

func TestListAndShowCommands(t *testing.T) {
	printed := stubPrint(t)
	app, out, _, _, ct := newTestApp(t, "")

	require.NoError(t, app.List(context.Background()))
	assert.Contains(t, *printed, "No contacts yet. Use 'scan' to add one.")

	ct.list = []models.Contact{{
		ID: "c1", RemoteID: "u1", Name: "Анна", Telegram: "@anna",
		Groups: []models.ContactGroup{{Name: "Работа", Facts: []models.ContactFact{{Text: "Дизайнер"}}}},
	}}
	require.NoError(t, app.List(context.Background()))
	assert.Contains(t, out.String(), "Анна")

	out.Reset()
	require.NoError(t, app.Show(context.Background(), []string{"c1"}))
	assert.Contains(t, out.String(), "@anna")
	assert.Contains(t, out.String(), "[Работа]")
	assert.Contains(t, out.String(), "- Дизайнер")

	assert.ErrorIs(t, app.Show(context.Background(), []string{"zz"}), common.ErrorNotFound)
	assert.ErrorIs(t, app.Show(context.Background(), nil), common.ErrorValidation)
}

func TestBackupAndWhoAmICommands(t *testing.T) {
	printed := stubPrint(t)
	app, _, _, _, ct := newTestApp(t, "")

	require.NoError(t, app.Backup(context.Background()))
	assert.Contains(t, *printed, "Backup written to factshare/owner-1/x.json")

	ct.backupErr = backup.ErrDisabled
	assert.ErrorIs(t, app.Backup(context.Background()), backup.ErrDisabled)

	ct.backupErr = errors.New("denied")
	assert.Error(t, app.Backup(context.Background()))

	require.NoError(t, app.WhoAmI(context.Background()))
	assert.Contains(t, *printed, "owner-1")
	assert.Contains(t, *printed, "Last backup: factshare/owner-1/x.json")
}

func TestForgetCommand(t *testing.T) {
	printed := stubPrint(t)
	app, _, _, _, ct := newTestApp(t, "")
	ct.list = []models.Contact{{ID: "c1", RemoteID: "u1", Name: "Анна"}}

	require.NoError(t, app.Forget(context.Background(), []string{"c1"}))
	assert.Contains(t, *printed, "Forgot Анна")
	assert.Empty(t, ct.list)

	assert.ErrorIs(t, app.Forget(context.Background(), []string{"c1"}), common.ErrorNotFound)
	assert.ErrorIs(t, app.Forget(context.Background(), nil), common.ErrorValidation)
}

func TestRestoreCommand(t *testing.T) {
	printed := stubPrint(t)
	app, _, _, _, ct := newTestApp(t, "")

	require.NoError(t, app.Restore(context.Background(), []string{"o/1.json"}))
	assert.Equal(t, "o/1.json", ct.restored)
	assert.Contains(t, *printed, "Restored 2 contacts from o/1.json.")

	ct.restoreErr = backup.ErrSealed
	assert.ErrorIs(t, app.Restore(context.Background(), []string{"o/2.sealed.json"}), backup.ErrSealed)
	assert.Contains(t, *printed, "This backup is sealed. Set the passphrase in the config file.")

	ct.restoreErr = backup.ErrDisabled
	assert.ErrorIs(t, app.Restore(context.Background(), []string{"o/1.json"}), backup.ErrDisabled)

	assert.ErrorIs(t, app.Restore(context.Background(), nil), common.ErrorValidation)
}

func TestInteractive_UsesTerminalSeam(t *testing.T) {
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })

	isTerminal = func(int) bool { return true }
	assert.True(t, interactive())
	isTerminal = func(int) bool { return false }
	assert.False(t, interactive())
}
