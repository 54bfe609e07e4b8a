package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/contacts"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCredentials returns a fixed password per user.
type MockCredentials map[string]string

func (m MockCredentials) Password(user string) (string, error) {
	return m[user], nil
}

// -----------------------------------------------------------------------------
// Importer Tests
// -----------------------------------------------------------------------------

func TestImporter_ImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(sampleCards), 0o600))

	book := contacts.NewBook()
	stats, err := (&engine.Importer{}).ImportFile(context.Background(), book, path)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 2, book.Len())
}

func TestImporter_ImportFile_Missing(t *testing.T) {
	_, err := (&engine.Importer{}).ImportFile(context.Background(), contacts.NewBook(), filepath.Join(t.TempDir(), "nope.vcf"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImporter_ImportURL_UsesCredentials(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com/ann", "ann", "s3cret").
		Return(io.NopCloser(strings.NewReader(sampleCards)), nil)

	im := &engine.Importer{Fetcher: fetcher, Credentials: MockCredentials{"ann": "s3cret"}}
	book := contacts.NewBook()

	stats, err := im.ImportURL(context.Background(), book, "https://dav.example.com/ann", "ann")

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)
	fetcher.AssertExpectations(t)
}

func TestImporter_ImportURL_Errors(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := (&engine.Importer{Fetcher: new(MockFetcher)}).ImportURL(context.Background(), contacts.NewBook(), "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrURLEmpty)
	})

	t.Run("NoFetcher", func(t *testing.T) {
		_, err := (&engine.Importer{}).ImportURL(context.Background(), contacts.NewBook(), "https://x", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrFetcherMissing)
	})

	t.Run("FetchFails", func(t *testing.T) {
		fetcher := new(MockFetcher)
		boom := errors.New("boom")
		fetcher.On("Fetch", mock.Anything, "https://x", "", "").Return(nil, boom)

		book := contacts.NewBook()
		_, err := (&engine.Importer{Fetcher: fetcher}).ImportURL(context.Background(), book, "https://x", "")

		assert.ErrorIs(t, err, boom)
		assert.Zero(t, book.Len())
	})
}

// -----------------------------------------------------------------------------
// Credential Tests
// -----------------------------------------------------------------------------

func TestKeyringCredentials(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(config.KeyringService, "ann", "s3cret"))

	creds := engine.KeyringCredentials{Service: config.KeyringService}

	p, err := creds.Password("ann")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", p)

	p, err = creds.Password("unknown")
	require.NoError(t, err)
	assert.Empty(t, p, "Missing entries mean anonymous access")

	p, err = creds.Password("")
	require.NoError(t, err)
	assert.Empty(t, p)
}
