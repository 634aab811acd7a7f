package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/server/config"
	"github.com/dmitrijs2005/factshare/internal/server/repositories/aliases"
	"github.com/dmitrijs2005/factshare/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubManager struct {
	migrateErr error
	closed     bool
}

func (s *stubManager) RunMigrations(context.Context) error { return s.migrateErr }
func (s *stubManager) Aliases() aliases.Repository { return aliases.NewMemoryRepository() }
func (s *stubManager) Close() error {
	s.closed = true
	return nil
}

func withManager(t *testing.T, m repomanager.RepositoryManager, err error) {
	t.Helper()
	orig := newRepositoryManager
	newRepositoryManager = func(context.Context, *config.Config) (repomanager.RepositoryManager, error) { return m, err }
	t.Cleanup(func() { newRepositoryManager = orig })
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.LogLevel = "error"
	return c
}

func TestNewApp_Errors(t *testing.T) {
	t.Run("bad config", func(t *testing.T) {
		c := testConfig()
		c.Store = "sqlite"
		_, err := NewApp(context.Background(), c)
		assert.ErrorContains(t, err, "config error")
	})

	t.Run("store init", func(t *testing.T) {
		withManager(t, nil, errors.New("dial tcp: refused"))
		_, err := NewApp(context.Background(), testConfig())
		assert.ErrorContains(t, err, "store init error")
	})

	t.Run("migrations", func(t *testing.T) {
		m := &stubManager{migrateErr: errors.New("goose: boom")}
		withManager(t, m, nil)
		_, err := NewApp(context.Background(), testConfig())
		assert.ErrorContains(t, err, "migration error")
		assert.True(t, m.closed)
	})
}

func TestApp_RunServesAndStops(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	m := &stubManager{}
	withManager(t, m, nil)

	c := testConfig()
	c.Addr = addr
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Post("http://"+addr+common.AliasAPIPath, "application/json",
			strings.NewReader(`{"token":"FACTSHARE:abc"}`))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, m.closed)
}

func TestNewRepositoryManager_Memory(t *testing.T) {
	m, err := newRepositoryManager(context.Background(), testConfig())
	require.NoError(t, err)
	_, ok := m.(*repomanager.MemoryRepositoryManager)
	assert.True(t, ok)
}
