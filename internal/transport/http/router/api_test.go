package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"estate-api/internal/core/auth"
	"estate-api/internal/core/database"
	"estate-api/internal/domain"
	"estate-api/internal/events"
	"estate-api/internal/repo"
	"estate-api/internal/service"
	"estate-api/internal/transport/http/handler"
	"estate-api/internal/transport/http/session"
	"estate-api/pkg/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type testApp struct {
	engine *gin.Engine
	db     *gorm.DB
	store  *repo.UserRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	log := zap.NewNop()
	store := repo.NewUserRepo(db)
	jwter := &auth.JWTer{Secret: []byte("test"), Issuer: "estate-api", TTL: session.CookieTTL}
	users := handler.NewUserHandler(service.NewUserService(store, log), store, session.NewIssuer(jwter, false), log)
	evs := handler.NewEventHandler(events.NewDispatcher(service.NewReconciler(store, log), nil, log), log)

	return &testApp{
		engine: NewAPIEngine(Deps{Log: log, JWT: jwter, Users: users, Events: evs, RequestTimeout: 5 * time.Second}),
		db:     db,
		store:  store,
	}
}

func (a *testApp) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) count(t *testing.T, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(&domain.User{}).Where(where, args...).Count(&n).Error)
	return n
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

var ada = map[string]string{"name": "Ada", "email": "ada@x.com", "phone": "555", "password": "secret1", "location": "NYC"}

func TestSignupSuccess(t *testing.T) {
	app := newTestApp(t)

	w := app.post(t, "/api/v1/user/signup", ada)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@x.com", user["email"])
	assert.Equal(t, "USER", user["userType"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "createdAt")
	assert.NotContains(t, w.Body.String(), "secret1")

	cookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, "token="))
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Strict")
	assert.NotContains(t, cookie, "Secure")

	stored, err := app.store.FindByEmailOrPhone(context.Background(), "ada@x.com", "555")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.Password)
	assert.NotEqual(t, "secret1", *stored.Password)
	assert.True(t, utils.CheckPassword("secret1", *stored.Password))
	assert.Equal(t, domain.UserTypeUser, stored.UserType)
}

func TestSignupMissingFields(t *testing.T) {
	app := newTestApp(t)
	for _, field := range []string{"name", "email", "phone", "password", "location"} {
		t.Run(field, func(t *testing.T) {
			in := map[string]string{}
			for k, v := range ada {
				in[k] = v
			}
			in[field] = ""
			w := app.post(t, "/api/v1/user/signup", in)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, service.MsgFieldsRequired, body["message"])
		})
	}
	assert.Zero(t, app.count(t, "1 = 1"))
}

func TestSignupMalformedBody(t *testing.T) {
	app := newTestApp(t)
	w := app.post(t, "/api/v1/user/signup", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestSignupDuplicate(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusOK, app.post(t, "/api/v1/user/signup", ada).Code)

	sameEmail := map[string]string{"name": "Ada 2", "email": "ada@x.com", "phone": "999", "password": "pw", "location": "SF"}
	w := app.post(t, "/api/v1/user/signup", sameEmail)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, service.MsgUserExists, body["message"])
	assert.Empty(t, w.Header().Get("Set-Cookie"))
	assert.EqualValues(t, 1, app.count(t, "email = ?", "ada@x.com"))

	samePhone := map[string]string{"name": "Bob", "email": "bob@x.com", "phone": "555", "password": "pw", "location": "SF"}
	assert.Equal(t, http.StatusBadRequest, app.post(t, "/api/v1/user/signup", samePhone).Code)
	assert.EqualValues(t, 1, app.count(t, "1 = 1"))
}

func TestSignupThenMe(t *testing.T) {
	app := newTestApp(t)
	w := app.post(t, "/api/v1/user/signup", ada)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	me := httptest.NewRecorder()
	app.engine.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ada@x.com", decode(t, me)["user"].(map[string]any)["email"])
}

func TestLiveness(t *testing.T) {
	app := newTestApp(t)
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "estate api running", w.Body.String())
}

func userEvent(id, name string, data map[string]any) map[string]any {
	return map[string]any{"id": id, "name": name, "data": data}
}

func TestIngestCreateUpdateDelete(t *testing.T) {
	app := newTestApp(t)
	emails := []map[string]string{{"email_address": "grace@x.com"}}

	w := app.post(t, "/api/inngest", userEvent("e1", events.UserCreated, map[string]any{
		"id": "user_g", "name": "Grace", "email_addresses": emails, "phone": "777", "location": "DC",
		"image_url": "https://img/g.png",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.post(t, "/api/inngest", userEvent("e2", events.UserUpdated, map[string]any{
		"id": "user_g", "name": "Grace H", "email_addresses": emails, "phone": "777", "location": "DC",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	u, err := app.store.FindByID(context.Background(), "user_g")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Grace H", u.Name)
	assert.Equal(t, "user_g", u.ID)
	assert.Nil(t, u.Avatar)

	w = app.post(t, "/api/inngest", userEvent("e3", events.UserDeleted, map[string]any{"id": "user_g"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, app.count(t, "id = ?", "user_g"))

	w = app.post(t, "/api/inngest", userEvent("e4", events.UserDeleted, map[string]any{"id": "user_g"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestIngestRejections(t *testing.T) {
	app := newTestApp(t)

	w := app.post(t, "/api/inngest", userEvent("e1", events.UserCreated, map[string]any{"id": "u1", "email_addresses": []any{}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.post(t, "/api/inngest", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.post(t, "/api/inngest", userEvent("e2", events.UserUpdated, map[string]any{
		"id": "ghost", "email_addresses": []map[string]string{{"email_address": "g@x.com"}},
	}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.post(t, "/api/inngest", userEvent("e3", "clerk/session.created", map[string]any{"id": "sess"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIngestDuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusOK, app.post(t, "/api/v1/user/signup", ada).Code)

	w := app.post(t, "/api/inngest", userEvent("e1", events.UserCreated, map[string]any{
		"id": "user_a", "email_addresses": []map[string]string{{"email_address": "ada@x.com"}},
	}))
	assert.Equal(t, http.StatusConflict, w.Code)
}
