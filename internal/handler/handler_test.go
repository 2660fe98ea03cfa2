package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"receipts/internal/auth"
	"receipts/internal/cache"
	"receipts/internal/database"
	"receipts/internal/receipt"
	"receipts/internal/repository"
	"receipts/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

type testServer struct {
	router *gin.Engine
	pingOK bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := repository.NewUserRepository(db)
	receipts := repository.NewReceiptRepository(db)
	tokens := auth.NewTokenService("test-secret")
	root := t.TempDir()

	ts := &testServer{pingOK: true}
	authSvc := service.NewAuthService(users, tokens, cache.NewRedisCache(client), 0, nil)
	ts.router = NewRouter(RouterDeps{
		Registry:       prometheus.NewRegistry(),
		AuthService:    authSvc,
		ReceiptService: service.NewReceiptService(receipts, repository.NewTransactionManager(db), nil, nil, nil),
		ArtifactService: service.NewArtifactService(receipts, receipt.NewRenderer(), receipt.NewPNGEncoder(0), service.ArtifactConfig{
			TextDir:       filepath.Join(root, "receipts"),
			QRDir:         filepath.Join(root, "qr"),
			PublicBaseURL: "http://localhost:8080",
		}, nil),
		StatisticsService: service.NewStatisticsService(repository.NewStatisticsRepository(db)),
		PingDB: func(ctx context.Context) error {
			if !ts.pingOK {
				return errors.New("connection refused")
			}
			return database.Ping(ctx, db)
		},
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) loginForm(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (ts *testServer) signupAndLogin(t *testing.T, login string) auth.TokenPair {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/auth/signup", "", service.SignupRequest{Name: "AliceTest", Login: login, Password: "secretP1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.loginForm(t, login, "secretP1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair auth.TokenPair
	decode(t, w, &pair)
	return pair
}

func widgetPayload(paymentType string, amount string) map[string]any {
	payment := map[string]any{"type": paymentType}
	if amount != "" {
		payment["amount"] = amount
	}
	return map[string]any{
		"products": []map[string]any{{"name": "Widget", "price": "9.99", "quantity": 3}},
		"payment":  payment,
	}
}

func TestScenario_SignupLoginCreate(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/auth/signup", "", service.SignupRequest{Name: "AliceTest", Login: "alice", Password: "secretP1"})
	require.Equal(t, http.StatusCreated, w.Code)
	var signup service.SignupResponse
	decode(t, w, &signup)
	assert.NotEqual(t, uuid.Nil, signup.ID)
	assert.Equal(t, "alice", signup.Login)

	w = ts.loginForm(t, "alice", "secretP1")
	require.Equal(t, http.StatusOK, w.Code)
	var pair auth.TokenPair
	decode(t, w, &pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)

	w = ts.do(t, http.MethodPost, "/receipt/receipt", pair.AccessToken, widgetPayload("cash", "40.00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created service.ReceiptResponse
	decode(t, w, &created)
	assert.Equal(t, "29.97", created.Total)
	assert.Equal(t, "10.03", created.Rest)
}

func TestAuthRoutes(t *testing.T) {
	ts := newTestServer(t)
	pair := ts.signupAndLogin(t, "alice")

	w := ts.do(t, http.MethodPost, "/auth/signup", "", service.SignupRequest{Name: "AliceTest", Login: "ALICE", Password: "secretP1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Account already exists", decode(t, w, nil).Error)

	w = ts.do(t, http.MethodPost, "/auth/signup", "", map[string]string{"login": "bob"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.loginForm(t, "alice", "nope123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Invalid password", decode(t, w, nil).Error)

	w = ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "secretP1"})
	assert.Equal(t, http.StatusOK, w.Code, "JSON login is accepted too")

	w = ts.do(t, http.MethodGet, "/auth/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me service.UserResponse
	decode(t, w, &me)
	assert.Equal(t, "alice", me.Login)

	w = ts.do(t, http.MethodGet, "/auth/me", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid scope for token", decode(t, w, nil).Error)
}

func TestRefreshRoute(t *testing.T) {
	ts := newTestServer(t)
	ts.signupAndLogin(t, "alice")

	// a fresh login makes the refresh token from it the only valid one
	w := ts.loginForm(t, "alice", "secretP1")
	var pair auth.TokenPair
	decode(t, w, &pair)

	w = ts.do(t, http.MethodGet, "/auth/refresh_token", pair.RefreshToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rotated auth.TokenPair
	decode(t, w, &rotated)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	w = ts.do(t, http.MethodGet, "/auth/refresh_token", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid refresh token", decode(t, w, nil).Error)

	w = ts.do(t, http.MethodGet, "/auth/refresh_token", rotated.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/auth/refresh_token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRoute(t *testing.T) {
	ts := newTestServer(t)
	pair := ts.signupAndLogin(t, "alice")

	w := ts.do(t, http.MethodPost, "/auth/logout", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/auth/refresh_token", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReceiptRoutes(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signupAndLogin(t, "alice")
	bob := ts.signupAndLogin(t, "bobby")

	w := ts.do(t, http.MethodPost, "/receipt/receipt", "", widgetPayload("cash", "40.00"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/receipt/receipt", alice.AccessToken, widgetPayload("cash", "1.00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient cash provided", decode(t, w, nil).Error)

	w = ts.do(t, http.MethodPost, "/receipt/receipt", alice.AccessToken, widgetPayload("cash", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Amount is required for cash payments.", decode(t, w, nil).Error)

	w = ts.do(t, http.MethodPost, "/receipt/receipt", alice.AccessToken, widgetPayload("bitcoin", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid payment type, must be 'cash' or 'card'.", decode(t, w, nil).Error)

	longName := widgetPayload("card", "")
	longName["products"] = []map[string]any{{"name": strings.Repeat("x", 256), "price": "1.00", "quantity": 1}}
	w = ts.do(t, http.MethodPost, "/receipt/receipt", alice.AccessToken, longName)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Product name must be at most 255 characters.", decode(t, w, nil).Error)

	w = ts.do(t, http.MethodPost, "/receipt/receipt", alice.AccessToken, map[string]any{"products": []any{}, "payment": map[string]string{"type": "card"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodPost, "/receipt/receipt", alice.AccessToken, widgetPayload("card", ""))
	require.Equal(t, http.StatusCreated, w.Code)
	var created service.ReceiptResponse
	decode(t, w, &created)

	w = ts.do(t, http.MethodGet, "/receipt/receipts?payment_type=card&limit=5", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []service.ReceiptListItem
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "29.97", list[0].PaidAmount)

	w = ts.do(t, http.MethodGet, "/receipt/receipts?limit=0", alice.AccessToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = ts.do(t, http.MethodGet, "/receipt/receipts?start_date=yesterday", alice.AccessToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = ts.do(t, http.MethodGet, "/receipt/receipts?payment_type=cheque", alice.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/receipt/receipts/"+created.ID.String(), alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched map[string]any
	decode(t, w, &fetched)
	assert.Equal(t, "card", fetched["payment_type"])
	assert.Equal(t, "29.97", fetched["paid_amount"])
	assert.Equal(t, "0.00", fetched["rest"])
	assert.NotContains(t, fetched, "payment")
	products := fetched["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "9.99", products[0].(map[string]any)["unit_price"])

	w = ts.do(t, http.MethodGet, "/receipt/receipts/"+created.ID.String(), bob.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Receipt not found", decode(t, w, nil).Error)
	w = ts.do(t, http.MethodGet, "/receipt/receipts/not-a-uuid", alice.AccessToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	from := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	w = ts.do(t, http.MethodGet, "/receipt/statistics?start_date="+url.QueryEscape(from), alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats struct {
		ReceiptCount  int    `json:"receipt_count"`
		TotalTurnover string `json:"total_turnover"`
	}
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.ReceiptCount)
	assert.Equal(t, "29.97", stats.TotalTurnover)
}

func TestPublicView(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signupAndLogin(t, "alice")

	w := ts.do(t, http.MethodPost, "/receipt/receipt", alice.AccessToken, widgetPayload("cash", "40.00"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created service.ReceiptResponse
	decode(t, w, &created)
	base := "/receipt/public/" + created.ID.String() + "/view"

	w = ts.do(t, http.MethodGet, base+"?file_type=txt&line_length=10000000000", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid request payload: line_length must not exceed 200", decode(t, w, nil).Error)
	w = ts.do(t, http.MethodGet, base+"?file_type=txt&line_length=wide", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodGet, base+"?file_type=txt&line_length=40", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Widget")
	assert.Contains(t, w.Body.String(), "Готівка")

	w = ts.do(t, http.MethodGet, base+"?file_type=qr", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = ts.do(t, http.MethodGet, base+"?file_type=pdf", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file_type must be 'txt' or 'qr'", decode(t, w, nil).Error)

	w = ts.do(t, http.MethodGet, "/receipt/public/"+uuid.NewString()+"/view", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	ts.pingOK = false
	w = ts.do(t, http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Cannot connect to the database.", decode(t, w, nil).Error)

	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
