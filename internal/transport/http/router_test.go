package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-mobile-verification/internal/application/validity"
	"github.com/go-mobile-verification/internal/application/verification"
	"github.com/go-mobile-verification/internal/config"
	"github.com/go-mobile-verification/internal/domain"
	"github.com/go-mobile-verification/internal/infrastructure/breaker"
	jwtinfra "github.com/go-mobile-verification/internal/infrastructure/jwt"
	redisinfra "github.com/go-mobile-verification/internal/infrastructure/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outbox records every message handed to it.
type outbox struct {
	mu   sync.Mutex
	msgs map[string]string
}

func (o *outbox) Send(_ context.Context, phone domain.PhoneNumber, message string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.msgs == nil {
		o.msgs = map[string]string{}
	}
	o.msgs[phone.String()] = message
	return nil
}

func (o *outbox) last(phone string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.msgs[phone]
}

type testServer struct {
	srv   *httptest.Server
	mr    *miniredis.Miniredis
	box   *outbox
	token *jwtinfra.Provider
}

func newTestProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	cfg := &config.Config{
		JWTPrivateKeyPath: filepath.Join(dir, "private.pem"),
		JWTPublicKeyPath:  filepath.Join(dir, "public.pem"),
		JWTExpiry:         time.Hour,
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(cfg.JWTPrivateKeyPath, privPEM, 0600))
	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(cfg.JWTPublicKeyPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)
	return p
}

func newTestServer(t *testing.T, withAuth bool) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := validity.NewStore(redisinfra.NewKV(client))
	require.NoError(t, err)
	box := &outbox{}
	svc, err := verification.NewService(verification.Config{Store: store, Notifier: box})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ts := &testServer{mr: mr, box: box}
	deps := &Deps{Verification: svc}
	if withAuth {
		ts.token = newTestProvider(t)
		deps.TokenVerifier = ts.token
	}
	ts.srv = httptest.NewServer(NewRouter(ctx, &config.Config{AllowedOrigins: []string{"*"}}, deps))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, bearer string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func isValid(t *testing.T, resp *http.Response) bool {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Valid
}

var fiveDigits = regexp.MustCompile(`[0-9]{5}`)

func TestRouter_HealthCheck(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.do(t, http.MethodGet, "/v1/health-check/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_NotifierHealthWithoutBreaker(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.do(t, http.MethodGet, "/v1/health-check/notifier", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_IssueThenValidate(t *testing.T) {
	ts := newTestServer(t, false)
	const phone = "9140000000"

	resp := ts.do(t, http.MethodPost, "/v1/verification-codes", "", map[string]string{"phone_number": phone})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	code, err := strconv.Atoi(fiveDigits.FindString(ts.box.last(phone)))
	require.NoError(t, err)

	assert.True(t, isValid(t, ts.do(t, http.MethodPost, "/v1/verification-codes/validate", "",
		map[string]interface{}{"phone_number": phone, "code": code})))
	assert.False(t, isValid(t, ts.do(t, http.MethodPost, "/v1/verification-codes/validate", "",
		map[string]interface{}{"phone_number": "9140000001", "code": code})))

	ts.mr.FastForward(validity.DefaultTTL + time.Second)
	assert.False(t, isValid(t, ts.do(t, http.MethodPost, "/v1/verification-codes/validate", "",
		map[string]interface{}{"phone_number": phone, "code": code})))
}

func TestRouter_TemplateRoutesNotMountedWithoutVerifier(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.do(t, http.MethodGet, "/v1/verification-codes/template", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_TemplateRequiresAdmin(t *testing.T) {
	ts := newTestServer(t, true)

	resp := ts.do(t, http.MethodGet, "/v1/verification-codes/template", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userTok, err := ts.token.Sign("someone", "user")
	require.NoError(t, err)
	resp = ts.do(t, http.MethodPut, "/v1/verification-codes/template", userTok, map[string]string{"template": "x %d"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_AdminChangesTemplate(t *testing.T) {
	ts := newTestServer(t, true)
	adminTok, err := ts.token.Sign("ops-1", domain.RoleAdmin)
	require.NoError(t, err)

	resp := ts.do(t, http.MethodPut, "/v1/verification-codes/template", adminTok, map[string]string{"template": "no placeholder"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = ts.do(t, http.MethodPut, "/v1/verification-codes/template", adminTok, map[string]string{"template": "Code: %d"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/verification-codes", "", map[string]string{"phone_number": "9140000000"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Regexp(t, `^Code: [0-9]{5}$`, ts.box.last("9140000000"))
}

type failingNotifier struct{}

func (failingNotifier) Send(context.Context, domain.PhoneNumber, string) error {
	return errors.New("gateway down")
}

func TestRouter_OpenBreakerFailsNotifierHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store, err := validity.NewStore(redisinfra.NewKV(client))
	require.NoError(t, err)

	b := breaker.NewNotifier(failingNotifier{}, breaker.Settings{Name: "sms", MaxFailures: 1, Timeout: time.Minute}, nil)
	svc, err := verification.NewService(verification.Config{Store: store, Notifier: b})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ts := &testServer{mr: mr}
	ts.srv = httptest.NewServer(NewRouter(ctx, &config.Config{}, &Deps{Verification: svc, NotifierBreaker: b}))
	t.Cleanup(ts.srv.Close)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/v1/health-check/notifier", "", nil).StatusCode)

	resp := ts.do(t, http.MethodPost, "/v1/verification-codes", "", map[string]string{"phone_number": "9140000000"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp = ts.do(t, http.MethodPost, "/v1/verification-codes", "", map[string]string{"phone_number": "9140000000"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, http.MethodGet, "/v1/health-check/notifier", "", nil).StatusCode)
}
