package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mulearn/dashboard/internal/config"
	"github.com/mulearn/dashboard/internal/core"
	"github.com/mulearn/dashboard/internal/store/memory"
)

const (
	testChannelID = "00000000-0000-0000-0000-00000000b001"
	testTypeID    = "00000000-0000-0000-0000-00000000f001"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Import:   config.ImportConfig{MaxFileSize: 1 << 20},
		Security: config.SecurityConfig{JWTSecret: "test-secret", JWTIssuer: "mulearn"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	memory.Seed(store)
	svc := core.NewService(store, core.Options{DefaultPageSize: 10, MaxPageSize: 100})
	return NewServer(svc, store, testConfig())
}

func token(t *testing.T, s *Server, userID string, roles ...string) string {
	t.Helper()
	tok, err := s.tokens.Sign(core.Identity{UserID: userID, Roles: roles}, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, s *Server, method, path, tok string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	HasError   bool                `json:"hasError"`
	StatusCode int                 `json:"statusCode"`
	Message    map[string][]string `json:"message"`
	Response   json.RawMessage     `json:"response"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.StatusCode)
	return env
}

func multipartBody(t *testing.T, field, filename, content string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/dashboard/task/", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.HasError)
	assert.Equal(t, []string{"Authentication required"}, env.Message["general"])

	rec = do(t, s, http.MethodGet, "/api/dashboard/task/", "not-a-jwt", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := NewTokenVerifier("test-secret", "someone-else")
	foreign, err := other.Sign(core.Identity{UserID: memory.SeedAdminID, Roles: []string{core.RoleAdmin}}, time.Hour)
	require.NoError(t, err)
	rec = do(t, s, http.MethodGet, "/api/dashboard/task/", foreign, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "issuer must match")

	expired, err := s.tokens.Sign(core.Identity{UserID: memory.SeedAdminID}, -time.Minute)
	require.NoError(t, err)
	rec = do(t, s, http.MethodGet, "/api/dashboard/task/", expired, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	student := token(t, s, memory.SeedStudentID, core.RoleStudent)
	rec = do(t, s, http.MethodGet, "/api/dashboard/task/", student, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code, "any signed-in user may list tasks")

	rec = do(t, s, http.MethodGet, "/api/dashboard/task/csv", student, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/dashboard/campus/details", student, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTokenVerifier_RejectsOtherAlgorithms(t *testing.T) {
	v := NewTokenVerifier("test-secret", "")
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(unsigned)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = v.Verify(noSubject)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)

	good, err := v.Sign(core.Identity{UserID: "u1", Roles: []string{core.RoleAdmin}}, time.Hour)
	require.NoError(t, err)
	id, err := v.Verify(good)
	require.NoError(t, err)
	assert.Equal(t, core.Identity{UserID: "u1", Roles: []string{core.RoleAdmin}}, id)
}

const importCSV = `hashtag,title,description,karma,usage_count,variable_karma,level,channel,type,ig,org
#intro,Intro,Say hi,10,1,false,,general,Event,,
#web,Web,Build a page,50,2,true,Level 1,web-dev,Learning,Web Development,MEC
#bad,Bad,Nope,5,1,false,,nowhere,Event,,
`

func TestImportEndpoint(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, s, memory.SeedAdminID, core.RoleAdmin)

	body, ct := multipartBody(t, importField, "tasks.csv", importCSV)
	rec := do(t, s, http.MethodPost, "/api/dashboard/task/import", admin, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.False(t, env.HasError)
	var outcome struct {
		Success []map[string]any `json:"Success"`
		Failed  []map[string]any `json:"Failed"`
	}
	require.NoError(t, json.Unmarshal(env.Response, &outcome))
	require.Len(t, outcome.Success, 2)
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, "#intro", outcome.Success[0]["hashtag"])
	assert.Equal(t, "Invalid channel ID: nowhere", outcome.Failed[0]["error"])

	tests := []struct {
		name     string
		field    string
		content  string
		filename string
		want     string
	}{
		{"missing field", "", "", "", "File not found."},
		{"empty file", importField, "hashtag,title\n", "tasks.csv", "Empty csv file."},
		{"missing column", importField, "hashtag,title\n#a,b\n", "tasks.csv", "description does not exist in the file."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.field, tt.filename, tt.content)
			rec := do(t, s, http.MethodPost, "/api/dashboard/task/import", admin, body, ct)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decode(t, rec)
			assert.True(t, env.HasError)
			assert.Equal(t, []string{tt.want}, env.Message["general"])
		})
	}
}

// failingChannels fails every channel lookup after the first.
type failingChannels struct {
	*memory.Store
	calls int
}

func (f *failingChannels) ChannelByName(ctx context.Context, name string) (core.Channel, error) {
	f.calls++
	if f.calls > 1 {
		return core.Channel{}, errors.New("read tcp: connection reset by peer")
	}
	return f.Store.ChannelByName(ctx, name)
}

func TestImportEndpoint_StoppedImportReportsPersistedRows(t *testing.T) {
	mem := memory.New()
	memory.Seed(mem)
	store := &failingChannels{Store: mem}
	s := NewServer(core.NewService(store, core.Options{}), store, testConfig())
	admin := token(t, s, memory.SeedAdminID, core.RoleAdmin)

	csvData := `hashtag,title,description,karma,usage_count,variable_karma,level,channel,type,ig,org
#first,First,One,10,1,false,,general,Event,,
#second,Second,Two,10,1,false,,general,Event,,
`
	body, ct := multipartBody(t, importField, "tasks.csv", csvData)
	rec := do(t, s, http.MethodPost, "/api/dashboard/task/import", admin, body, ct)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.True(t, env.HasError)
	var resp struct {
		Code    string           `json:"code"`
		Action  string           `json:"action"`
		Success []map[string]any `json:"Success"`
		Failed  []map[string]any `json:"Failed"`
	}
	require.NoError(t, json.Unmarshal(env.Response, &resp))
	assert.Equal(t, "DB005", resp.Code)
	require.Len(t, resp.Success, 1)
	assert.Equal(t, "#first", resp.Success[0]["hashtag"])
	assert.NotNil(t, resp.Failed)
	assert.Empty(t, resp.Failed)

	exists, err := mem.HashtagExists(context.Background(), "#first")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = mem.HashtagExists(context.Background(), "#second")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestImportEndpoint_BatchErrorHasNoRows(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, s, memory.SeedAdminID, core.RoleAdmin)

	body, ct := multipartBody(t, importField, "tasks.csv", "hashtag,title\n#a,b\n")
	rec := do(t, s, http.MethodPost, "/api/dashboard/task/import", admin, body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &resp))
	assert.Equal(t, "IMP003", resp["code"])
	assert.NotContains(t, resp, "Success")
}

func TestImportEndpoint_TooLarge(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Import.MaxFileSize = 200
	admin := token(t, s, memory.SeedAdminID, core.RoleAdmin)

	body, ct := multipartBody(t, importField, "tasks.csv", importCSV)
	rec := do(t, s, http.MethodPost, "/api/dashboard/task/import", admin, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestTaskEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, s, memory.SeedAdminID, core.RoleAdmin)

	payload := `{"hashtag":"#http","title":"Over HTTP","karma":15,"channel_id":"` + testChannelID + `","type_id":"` + testTypeID + `"}`
	rec := do(t, s, http.MethodPost, "/api/dashboard/task/", admin, []byte(payload), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created core.Task
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &created))
	assert.Equal(t, "general", created.Channel)
	assert.True(t, created.Active)

	rec = do(t, s, http.MethodPost, "/api/dashboard/task/", admin, []byte(payload), "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/dashboard/task/", admin, []byte(`{"hashtag":`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/dashboard/task/", admin, []byte(`{"hashtag":"#x","karma":-4}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Contains(t, env.Message, "title")
	assert.Contains(t, env.Message, "karma")

	rec = do(t, s, http.MethodPut, "/api/dashboard/task/"+created.ID, admin, []byte(`{"title":"Renamed"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated core.Task
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &updated))
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 15, updated.Karma)

	rec = do(t, s, http.MethodPatch, "/api/dashboard/task/"+created.ID, admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/dashboard/task/"+created.ID, admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got core.Task
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &got))
	assert.False(t, got.Active)

	rec = do(t, s, http.MethodGet, "/api/dashboard/task/does-not-exist", admin, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/dashboard/task/?pageIndex=1&perPage=5&search=http", admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page core.Page[core.Task]
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &page))
	assert.EqualValues(t, 1, page.Pagination.Count)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "#http", page.Data[0].Hashtag)
}

func TestTaskExport(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, s, memory.SeedAdminID, core.RoleAdmin)

	body, ct := multipartBody(t, importField, "tasks.csv", importCSV)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/dashboard/task/import", admin, body, ct).Code)

	rec := do(t, s, http.MethodGet, "/api/dashboard/task/csv", admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Task List.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(core.TaskCSVHeader, ","), lines[0])
}

func TestCampusEndpoints(t *testing.T) {
	s := newTestServer(t)
	lead := token(t, s, memory.SeedLeadID, core.RoleCampusLead)

	rec := do(t, s, http.MethodGet, "/api/dashboard/campus/details", lead, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &details))
	assert.Equal(t, "Model Engineering College", details["title"])
	assert.Equal(t, "Kerala", details["state"])

	rec = do(t, s, http.MethodGet, "/api/dashboard/campus/student-details?perPage=10", lead, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var roster core.Page[core.Student]
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &roster))
	require.Len(t, roster.Data, 3)
	assert.Equal(t, "Bea", roster.Data[0].FirstName)
	assert.Equal(t, 1, roster.Data[0].Rank)

	rec = do(t, s, http.MethodGet, "/api/dashboard/campus/student-details/csv", lead, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Campus Details.csv"`, rec.Header().Get("Content-Disposition"))

	orphan := token(t, s, memory.SeedAdminID, core.RoleCampusLead)
	rec = do(t, s, http.MethodGet, "/api/dashboard/campus/details", orphan, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, s, memory.SeedAdminID, core.RoleAdmin)

	rec := do(t, s, http.MethodGet, "/api/dashboard/user/?sortBy=-total_karma", admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var users core.Page[core.UserSummary]
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &users))
	require.NotEmpty(t, users.Data)
	assert.Equal(t, "Bea", users.Data[0].FirstName)

	rec = do(t, s, http.MethodGet, "/api/dashboard/user/"+memory.SeedStudentID, admin, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &view))
	assert.Equal(t, core.RoleStudent, view["role"])

	rec = do(t, s, http.MethodPut, "/api/dashboard/user/"+memory.SeedStudentID, admin,
		[]byte(`{"email":"not-an-email"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Message, "email")

	rec = do(t, s, http.MethodPut, "/api/dashboard/user/"+memory.SeedStudentID, admin,
		[]byte(`{"email":"bea@example.com"}`), "application/json")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/dashboard/user/"+memory.SeedStudentID, admin,
		[]byte(`{"first_name":"Samuel","igs":[]}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &view))
	assert.Equal(t, "Samuel", view["first_name"])
	assert.Empty(t, view["interest_groups"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health healthStatus
	require.NoError(t, json.Unmarshal(decode(t, rec).Response, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, core.DefaultMaxConcurrentImports, health.Imports.Available)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := &rateLimiter{visitors: map[string]*visitor{}, rate: 2, window: time.Minute, now: func() time.Time { return now }}

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "limits are per client")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("10.0.0.1"), "window reset")
}

func TestRateLimitedRequestsGetEnvelope(t *testing.T) {
	rl := &rateLimiter{visitors: map[string]*visitor{}, rate: 1, window: time.Minute, now: time.Now}
	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.True(t, decode(t, second).HasError)
}
