package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLog_RecordsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := chimiddleware.RequestID(AccessLog(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/v1/verification-codes", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/v1/verification-codes", fields["path"])
	assert.Equal(t, int64(http.StatusAccepted), fields["status"])
	assert.Equal(t, int64(2), fields["bytes_out"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestAccessLog_ImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := AccessLog(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
}
