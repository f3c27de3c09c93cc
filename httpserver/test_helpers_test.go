package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// testConfig leaves writes unauthenticated.
func testConfig() *config.Config {
	return &config.Config{}
}

func authConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testJWTSecret
	return cfg
}

func newTestServer(t testing.TB, cfg *config.Config, svc movie.Service) *httpserver.Server {
	t.Helper()
	server, err := httpserver.New(
		httpserver.WithConfig(cfg),
		httpserver.WithMovieService(svc),
	)
	require.NoError(t, err)
	return server
}

func signTestToken(t testing.TB) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "catalog-admin",
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func serve(server *httpserver.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Router.ServeHTTP(rec, req)
	return rec
}

func newJSONRequest(t testing.TB, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeAPIResponse(t testing.TB, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp
}

func decodeMovie(t testing.TB, rec *httptest.ResponseRecorder) movie.Movie {
	t.Helper()
	var body httpserver.MovieRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body.ToMovie()
}

func decodeMovies(t testing.TB, rec *httptest.ResponseRecorder) []movie.Movie {
	t.Helper()
	var body []httpserver.MovieRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	movies := make([]movie.Movie, 0, len(body))
	for _, m := range body {
		movies = append(movies, m.ToMovie())
	}
	return movies
}

func strPtr(s string) *string {
	return &s
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
