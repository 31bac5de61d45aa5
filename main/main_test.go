package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgsvc/auth"
	"msgsvc/channels"
	"msgsvc/config"
)

func sqliteConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "main.sqlite")
	cfg.RateLimit = 0
	return cfg
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewServerSeedsGeneralBeforeServing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	cfg := sqliteConfig(t)

	s, err := openStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })

	server, err := newServer(ctx, cfg, s, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, cfg.Addr, server.Addr)

	// the very first request already sees the seeded channel
	req := httptest.NewRequest(http.MethodGet, "/v1/channels", nil)
	req.Header.Set(auth.XUser, `{"id":"u1"}`)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"`+channels.GeneralChannelName+`"`)
}

func TestNewServerFailsWhenSeedingFails(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	s, err := openStore(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	server, err := newServer(ctx, cfg, s, quietLogger())
	assert.Error(t, err)
	assert.Nil(t, server)
}

func TestRunReportsBadConfig(t *testing.T) {
	err := run([]string{"--store", "postgres"})
	assert.Error(t, err)
}
