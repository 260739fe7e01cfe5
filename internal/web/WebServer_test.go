package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/common"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/database"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/services"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *WebServer {
	t.Helper()
	store, err := database.OpenMemory(log.NewNopLogger())
	require.NoError(t, err)
	svc := services.NewClientService(services.Stores{Users: store, Environments: store, Objects: store}, nil, log.NewNopLogger())
	return NewWebServer(testSecret, time.Hour, svc, log.NewNopLogger())
}

func doRequest(t *testing.T, s *WebServer, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func login(t *testing.T, s *WebServer, username string) string {
	t.Helper()
	creds := common.LoginRequest{Username: username, Password: "Valid-Password1"}
	status, _ := doRequest(t, s, http.MethodPost, "/account/register", "", creds)
	require.Equal(t, http.StatusCreated, status)

	status, body := doRequest(t, s, http.MethodPost, "/account/login", "", creds)
	require.Equal(t, http.StatusOK, status)
	var resp common.TokenResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createEnvironment(t *testing.T, s *WebServer, token, name string) environment.Environment {
	t.Helper()
	status, body := doRequest(t, s, http.MethodPost, "/api/environment", token,
		common.CreateEnvironmentRequest{Name: name, MaxWidth: 50, MaxHeight: 20})
	require.Equal(t, http.StatusCreated, status, string(body))
	var env environment.Environment
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, body := doRequest(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))

	status, body = doRequest(t, s, http.MethodGet, "/routes", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "/api/Objects/environment/:environmentId")
}

func TestAccount(t *testing.T) {
	s := newTestServer(t)

	status, _ := doRequest(t, s, http.MethodPost, "/account/register", "", common.RegisterRequest{Username: "alice", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, status)

	token := login(t, s, "alice")
	assert.NotEmpty(t, token)

	status, _ = doRequest(t, s, http.MethodPost, "/account/register", "", common.RegisterRequest{Username: "alice", Password: "Valid-Password1"})
	assert.Equal(t, http.StatusConflict, status)

	status, body := doRequest(t, s, http.MethodPost, "/account/login", "", common.LoginRequest{Username: "alice", Password: "Wrong-Password1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, string(body))
}

func TestTokenRequired(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{"sub": "someone"})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{"sub": "someone", "exp": time.Now().Add(-time.Minute).Unix()})},
		{"unknown user", signToken(t, testSecret, jwt.MapClaims{"sub": "someone"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doRequest(t, s, http.MethodGet, "/api/environment", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestEnvironmentRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := login(t, s, "alice")
	bob := login(t, s, "bob")

	status, body := doRequest(t, s, http.MethodGet, "/api/environment", alice, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	env := createEnvironment(t, s, alice, "Forest")
	assert.Positive(t, env.ID)

	status, _ = doRequest(t, s, http.MethodPost, "/api/environment", alice,
		common.CreateEnvironmentRequest{Name: "Forest", MaxWidth: 50, MaxHeight: 20})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doRequest(t, s, http.MethodPost, "/api/environment", alice,
		common.CreateEnvironmentRequest{Name: "Huge", MaxWidth: 500, MaxHeight: 20})
	assert.Equal(t, http.StatusBadRequest, status)

	path := fmt.Sprintf("/api/environment/%d", env.ID)
	status, _ = doRequest(t, s, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doRequest(t, s, http.MethodGet, "/api/environment/9999", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, s, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = doRequest(t, s, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestObjectRoutes(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "alice")
	env := createEnvironment(t, s, token, "Forest")

	status, body := doRequest(t, s, http.MethodPost, "/api/Objects", token, map[string]any{
		"id":            "",
		"environmentId": env.ID,
		"prefabId":      3,
		"positionX":     5,
		"positionY":     2,
	})
	require.Equal(t, http.StatusBadRequest, status, "string id is not a valid body")

	status, body = doRequest(t, s, http.MethodPost, "/api/Objects", token, map[string]any{
		"environmentId": env.ID,
		"prefabId":      3,
		"positionX":     5,
		"positionY":     2,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var created object.PlacedObject
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Positive(t, created.ID)
	assert.Equal(t, 1.0, created.ScaleX)

	status, _ = doRequest(t, s, http.MethodPost, "/api/Objects", token, map[string]any{"prefabId": 3})
	assert.Equal(t, http.StatusBadRequest, status)

	path := fmt.Sprintf("/api/Objects/%d", created.ID)
	status, body = doRequest(t, s, http.MethodPut, path, token, map[string]any{
		"environmentId": env.ID,
		"prefabId":      3,
		"positionX":     5.5,
		"positionY":     2,
		"rotationZ":     -90,
		"scaleX":        0,
		"scaleY":        2,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var updated object.PlacedObject
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 5.5, updated.PositionX)
	assert.Equal(t, 270.0, updated.RotationZ)
	assert.Equal(t, object.MinScale, updated.ScaleX)

	status, body = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/Objects/environment/%d", env.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []object.PlacedObject
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 5.5, listed[0].PositionX)

	status, _ = doRequest(t, s, http.MethodGet, "/api/Objects/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, s, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = doRequest(t, s, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
