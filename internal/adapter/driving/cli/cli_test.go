package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/bakelink/internal/adapter/driven/bakelink"
	sqliteadapter "github.com/ericfisherdev/bakelink/internal/adapter/driven/sqlite"
)

// --- Test helpers ---

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// fakeBackend is a minimal bakery API that issues one token.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
}

const fakeToken = "tok-42"

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	authorized := r.Header.Get("Authorization") == "Bearer "+fakeToken

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		var req struct{ Email, Password string }
		_ = json.Unmarshal(body, &req)
		if req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"wrong password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"` + fakeToken + `"}`))
	case !authorized:
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	case r.URL.Path == "/auth/me":
		_, _ = w.Write([]byte(`{"email":"baker@example.com"}`))
	case r.URL.Path == "/products/missing":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such product"}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func (b *fakeBackend) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func (b *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	reqs := b.recorded()
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

type harness struct {
	backend *fakeBackend
	apiURL  string
	dbPath  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{
		"BAKELINK_API_URL", "BAKELINK_DB_PATH", "BAKELINK_SECRET_KEY",
		"BAKELINK_HTTP_TIMEOUT", "BAKELINK_HTTP_CACHE", "BAKELINK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	backend := &fakeBackend{}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	return &harness{
		backend: backend,
		apiURL:  server.URL,
		dbPath:  filepath.Join(t.TempDir(), "data", "bakelink.db"),
	}
}

// run executes a fresh root command, as a separate process invocation would.
func (h *harness) run(stdin string, args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api-url", h.apiURL, "--db", h.dbPath}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// storeToken writes token into the session database the way an earlier
// login would have.
func (h *harness) storeToken(t *testing.T, token string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Dir(h.dbPath), 0o700))

	db, err := sqliteadapter.NewDB(ctx, h.dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	require.NoError(t, sqliteadapter.RunMigrations(db.Writer))
	require.NoError(t, sqliteadapter.NewTokenRepo(sqliteadapter.NewCredentialRepo(db, nil)).Save(ctx, token))
}

func (h *harness) status(t *testing.T) sessionStatus {
	t.Helper()
	stdout, _, err := h.run("", "status", "--json")
	require.NoError(t, err)
	var st sessionStatus
	require.NoError(t, json.Unmarshal([]byte(stdout), &st))
	return st
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, _, err := h.run("hunter2\n", "login", "--email", "baker@example.com", "--password-file", "-")
	require.NoError(t, err)
}

// --- Tests ---

func TestLogin_PersistsTokenAcrossInvocations(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("hunter2\n", "login", "--email", "baker@example.com", "--password-file", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "logged in as baker@example.com")

	login := h.backend.last(t)
	assert.Equal(t, "/auth/login", login.Path)
	assert.Empty(t, login.Auth, "login must not carry a bearer header")
	assert.JSONEq(t, `{"email":"baker@example.com","password":"hunter2"}`, login.Body)

	stdout, _, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "baker@example.com")
	assert.Equal(t, "Bearer "+fakeToken, h.backend.last(t).Auth)
}

func TestLogin_PromptsForEmailAndPassword(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("baker@example.com\nhunter2\n", "login")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Email:")
	assert.JSONEq(t, `{"email":"baker@example.com","password":"hunter2"}`, h.backend.last(t).Body)
}

func TestLogin_RejectedCredentialsLeaveNoSession(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("wrong\n", "login", "--email", "baker@example.com", "--password-file", "-")

	var statusErr *bakelink.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Response.StatusCode)
	assert.Contains(t, stderr, "wrong password")

	assert.False(t, h.status(t).LoggedIn)
}

func TestLogout_ClearsPersistedSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, err := h.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "logged out")

	before := len(h.backend.recorded())
	_, _, err = h.run("", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Len(t, h.backend.recorded(), before, "guarded command must not reach the backend")
}

func TestLogout_WithoutSessionSucceeds(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "logout")

	assert.NoError(t, err)
}

func TestGuard_RejectsResourceCommandsWithoutSession(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"orders", "list"},
		{"products", "get", "3"},
		{"categories", "delete", "3"},
		{"schedules", "date", "2024-05-01"},
	} {
		_, _, err := h.run("", args...)
		assert.ErrorIs(t, err, errNotLoggedIn, "%v", args)
	}
	assert.Empty(t, h.backend.recorded())
}

func TestStatus_ReportsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, err := h.run("", "status")

	require.NoError(t, err)
	assert.Contains(t, stdout, h.apiURL)
	assert.Contains(t, stdout, h.dbPath)
	assert.Regexp(t, `LOGGED IN\s+yes`, stdout)
	assert.Regexp(t, `ENCRYPTED\s+no`, stdout)
	assert.Contains(t, stdout, "TOKEN SAVED")

	st := h.status(t)
	assert.True(t, st.LoggedIn)
	require.NotNil(t, st.TokenSavedAt)
	assert.False(t, st.TokenSavedAt.IsZero())
}

func TestStatus_NoTokenOmitsSavedAt(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run("", "status")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "TOKEN SAVED")
	assert.Nil(t, h.status(t).TokenSavedAt)
}

func TestRejectedToken_EndsSession(t *testing.T) {
	h := newHarness(t)
	h.storeToken(t, "expired")
	require.True(t, h.status(t).LoggedIn)

	_, stderr, err := h.run("", "whoami")

	var statusErr *bakelink.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Response.StatusCode)
	assert.Contains(t, stderr, "token expired")

	st := h.status(t)
	assert.False(t, st.LoggedIn)
	assert.Nil(t, st.TokenSavedAt)

	before := len(h.backend.recorded())
	_, _, err = h.run("", "orders", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Len(t, h.backend.recorded(), before)
}

func TestOrdersList_StatusFilter(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, _, err := h.run("", "orders", "list")
	require.NoError(t, err)
	assert.Equal(t, "/orders/list", h.backend.last(t).Path)
	assert.JSONEq(t, `{}`, h.backend.last(t).Body)

	_, _, err = h.run("", "orders", "list", "--status", "all")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, h.backend.last(t).Body)

	_, _, err = h.run("", "orders", "list", "--status", "Completed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed"}`, h.backend.last(t).Body)

	before := len(h.backend.recorded())
	_, _, err = h.run("", "orders", "list", "--status", "baked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown order status")
	assert.Len(t, h.backend.recorded(), before)
}

func TestSchedulesList_StatusFilter(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, _, err := h.run("", "schedules", "list", "--status", "open")

	require.NoError(t, err)
	assert.Equal(t, "/schedules/list", h.backend.last(t).Path)
	assert.JSONEq(t, `{"status":"OPEN"}`, h.backend.last(t).Body)
}

func TestSchedules_DateAndMonth(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, _, err := h.run("", "schedules", "date", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "/schedules/2024-05-01", h.backend.last(t).Path)

	_, _, err = h.run("", "schedules", "month", "2024-05")
	require.NoError(t, err)
	assert.Equal(t, "/schedules/month/2024-05", h.backend.last(t).Path)

	_, _, err = h.run("", "schedules", "date", "May 1st")
	assert.Error(t, err)
}

func TestProductsCreate_SendsInlinePayload(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, err := h.run("", "products", "create", "--data", `{"name":"baguette","price":80,}`)

	require.NoError(t, err)
	req := h.backend.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/products", req.Path)
	assert.JSONEq(t, `{"name":"baguette","price":80}`, req.Body)
	assert.Contains(t, stdout, `"ok": true`)
}

func TestOrdersCreate_ForwardsNumbersVerbatim(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, _, err := h.run("", "orders", "create", "--data", `{"orderId": 9007199254740993, "price": 1.10}`)

	require.NoError(t, err)
	assert.Equal(t, `{"orderId":9007199254740993,"price":1.10}`, h.backend.last(t).Body)
}

func TestCategoriesUpdate_RequiresPayload(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	before := len(h.backend.recorded())
	_, _, err := h.run("", "categories", "update", "7")

	require.Error(t, err)
	assert.Len(t, h.backend.recorded(), before)
}

func TestProductsGet_NotFoundIsNotifiedAndReturned(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, stderr, err := h.run("", "products", "get", "missing")

	var statusErr *bakelink.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Response.StatusCode)
	assert.Contains(t, stderr, "no such product")
	assert.True(t, h.status(t).LoggedIn, "only a 401 ends the session")
}

func TestUpload_SendsMultipartFile(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	path := filepath.Join(t.TempDir(), "croissant.png")
	require.NoError(t, writeFile(path, "png-bytes"))

	_, _, err := h.run("", "upload", path)

	require.NoError(t, err)
	req := h.backend.last(t)
	assert.Equal(t, "/UploadFile", req.Path)
	assert.Contains(t, req.Body, `filename="croissant.png"`)
	assert.Contains(t, req.Body, "png-bytes")
}

func TestOptions_ListsStatuses(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"options"})

	require.NoError(t, cmd.Execute())

	for _, want := range []string{"DRAFT", "FULFILLED", "all", "cancelled", "已取消"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestRoot_RequiresAPIURL(t *testing.T) {
	t.Setenv("BAKELINK_API_URL", "")
	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "x.db"), "status"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAKELINK_API_URL")
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestUnreachableBackend_ShowsBlockingNotice(t *testing.T) {
	h := newHarness(t)

	cmd := NewRootCmd(WithTransport(failingTransport{}))
	var errOut bytes.Buffer
	cmd.SetOut(io.Discard)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--api-url", h.apiURL, "--db", h.dbPath,
		"login", "--email", "baker@example.com", "--password-file", "-"})
	cmd.SetIn(strings.NewReader("hunter2\n"))

	err := cmd.Execute()

	require.Error(t, err)
	assert.True(t, bakelink.IsTransportFailure(err))
	assert.Contains(t, errOut.String(), "CORS")
	assert.Empty(t, h.backend.recorded())
}
