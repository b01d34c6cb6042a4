package logger

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "info", level: "info"},
		{name: "debug", level: "debug"},
		{name: "upper case", level: "WARN"},
		{name: "unknown level", level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, GetLogger())
		})
	}
}

func TestInitWithOptions_WritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pigeon.log")
	require.NoError(t, InitWithOptions("info", Options{File: file}))
	t.Cleanup(func() { Log = nil })

	GetLogger().Info("hello from test")
	_ = Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestGetLogger_DefaultsWhenUninitialized(t *testing.T) {
	Log = nil
	assert.NotNil(t, GetLogger())
}

func TestGinLogMiddleware_KeepsRequestBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinLogMiddleware())

	var seen string
	engine.POST("/", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		seen = string(body)
		c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("token=abc&command=%2Fping"))
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "token=abc&command=%2Fping", seen)
}

func TestTruncate(t *testing.T) {
	short := "short body"
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("x", bodyLimit+10)
	got := truncate(long)
	assert.True(t, strings.HasSuffix(got, truncatedMarker))
	assert.Len(t, got, bodyLimit+len(truncatedMarker))
}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = prev })
	return logs
}

func TestGinLogMiddleware_RecordsSlackRetry(t *testing.T) {
	logs := observe(t)
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinLogMiddleware())
	engine.POST("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("X-Slack-Retry-Num", "2")
	req.Header.Set("X-Slack-Retry-Reason", "http_timeout")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "2", fields["retry_num"])
	assert.Equal(t, "http_timeout", fields["retry_reason"])

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	entries = logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "retry_num")
}

func TestGinLogMiddleware_PassesReadErrorsOn(t *testing.T) {
	observe(t)
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 4)
		c.Next()
	}, GinLogMiddleware())

	var readErr error
	engine.POST("/", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, "ok")
	})
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))

	var maxErr *http.MaxBytesError
	assert.True(t, errors.As(readErr, &maxErr), "got %v", readErr)
}
