package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/changyic/bloglist/internal/blogservice"
	"github.com/changyic/bloglist/internal/common"
	"github.com/changyic/bloglist/internal/userservice"
)

const testSecret = "test-secret-do-not-use"

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := &Config{
		Port:        ":0",
		Environment: "test",
		Secret:      testSecret,
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(db),
		blogService: blogservice.NewBlogService(db, cache),
	}

	return app, db
}

// createTestUser inserts a user and signs an access token for it.
func createTestUser(t *testing.T, db *sql.DB, username, name, password string) (int, string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	assert.NoError(t, err)

	var id int
	err = db.QueryRow("INSERT INTO users (username, name, password_hash) VALUES ($1, $2, $3) RETURNING id", username, name, hash).Scan(&id)
	assert.NoError(t, err)

	token, err := userservice.NewAccessToken([]byte(testSecret), &userservice.User{ID: id, Username: username})
	assert.NoError(t, err)

	return id, token
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, []byte) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, responseBody
}

func (ts *testServer) request(t *testing.T, method, path string, payload any, token *string) (int, http.Header, []byte) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, []byte) {
	return ts.request(t, http.MethodGet, path, nil, token)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token *string) (int, http.Header, []byte) {
	return ts.request(t, http.MethodPost, path, payload, token)
}

func (ts *testServer) put(t *testing.T, path string, payload any, token *string) (int, http.Header, []byte) {
	return ts.request(t, http.MethodPut, path, payload, token)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, []byte) {
	return ts.request(t, http.MethodDelete, path, nil, token)
}

func decodeJSON[T any](t *testing.T, body []byte) T {
	var out T
	err := json.Unmarshal(body, &out)
	assert.NoError(t, err)
	return out
}

type errorBody struct {
	Error string `json:"error"`
}
