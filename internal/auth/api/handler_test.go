package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-booking/internal/auth"
	"ms-booking/internal/auth/api"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

func setupTestRouter(t *testing.T) (*chi.Mux, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.SessionLog)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		require.NoError(t, err)
	}

	log := &logger.Logger{}
	svc := auth.NewService(&auth.DB{Bun: bunDB}, nil, nil, log, "test-secret", time.Hour)
	handler := api.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Post("/auth/register", handler.Register)
	r.Post("/auth/login", handler.Login)
	r.Post("/auth/logout", handler.Logout)
	return r, bunDB
}

func postJSON(router *chi.Mux, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.APIResponse {
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthFlow(t *testing.T) {
	router, bunDB := setupTestRouter(t)
	defer bunDB.Close()

	// Register
	rec := postJSON(router, "/auth/register", models.RegisterRequest{
		Username: "alice",
		Password: "s3cret-pass",
		Email:    "alice@example.com",
		Role:     models.RoleUser,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	// Duplicate username
	rec = postJSON(router, "/auth/register", models.RegisterRequest{
		Username: "alice",
		Password: "other-pass",
		Email:    "alice2@example.com",
		Role:     models.RoleUser,
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Login
	rec = postJSON(router, "/auth/login", models.LoginRequest{
		Username: "alice",
		Password: "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	// Wrong password
	rec = postJSON(router, "/auth/login", models.LoginRequest{
		Username: "alice",
		Password: "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout with the issued token
	rec = postJSON(router, "/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second logout finds no active session
	rec = postJSON(router, "/auth/logout", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_MalformedBody(t *testing.T) {
	router, bunDB := setupTestRouter(t)
	defer bunDB.Close()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
