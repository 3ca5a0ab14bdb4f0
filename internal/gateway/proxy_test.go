package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceProxy(t *testing.T) {
	t.Run("forwards method, path, query, body and cookie", func(t *testing.T) {
		var (
			gotMethod string
			gotPath   string
			gotQuery  string
			gotCookie string
			gotBody   string
		)
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			gotCookie = r.Header.Get("Cookie")
			raw, _ := io.ReadAll(r.Body)
			gotBody = string(raw)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"created"}`))
		}))
		defer backend.Close()

		app := fiber.New()
		app.Post("/api/v1/rating/:movie_id", NewServiceProxy().ForwardTo(backend.URL))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/rating/7?verbose=1", strings.NewReader(`{"rating":8}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Cookie", "access_token=tok123")

		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/api/v1/rating/7", gotPath)
		assert.Equal(t, "verbose=1", gotQuery)
		assert.Equal(t, "access_token=tok123", gotCookie)
		assert.Equal(t, `{"rating":8}`, gotBody)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "created", body["message"])
	})

	t.Run("passes backend error statuses through untouched", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"movie 42 not found"}`))
		}))
		defer backend.Close()

		app := fiber.New()
		app.Get("/api/v1/movies/:movie_id", NewServiceProxy().ForwardTo(backend.URL))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/movies/42", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("an unreachable backend is a 502", func(t *testing.T) {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		backend.Close()

		app := fiber.New()
		app.Get("/api/v1/newsfeed", NewServiceProxy().ForwardTo(backend.URL))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/newsfeed", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestRateLimiterFailOpen(t *testing.T) {
	// A dead Redis must not take the gateway down with it.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	limiter := NewRateLimiter(rdb, 5, 60)

	app := fiber.New()
	app.Use(limiter.Handler())
	app.Get("/health", func(c fiber.Ctx) error { return c.SendString("ok") })

	// The dead client exhausts its dial retries in ~2s, longer than
	// app.Test's 1s default timeout, so give the request room to finish.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil),
		fiber.TestConfig{Timeout: 10 * time.Second, FailOnTimeout: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
