package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/declcat/internal/catalog"
	"github.com/mvp-joe/declcat/internal/config"
	"github.com/mvp-joe/declcat/internal/git"
	"github.com/mvp-joe/declcat/internal/project"
	"github.com/mvp-joe/declcat/internal/service"
	"github.com/mvp-joe/declcat/internal/source"
)

type stubAnalyzer struct {
	result  *catalog.AnalysisResult
	err     error
	locator string
}

func (s *stubAnalyzer) Analyze(_ context.Context, locator string) (*catalog.AnalysisResult, error) {
	s.locator = locator
	return s.result, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAnalyze_Success(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{result: &catalog.AnalysisResult{Files: []catalog.FileAnalysis{{
		FilePath:        "src/a.ts",
		Functions:       []catalog.DeclarationRecord{{Name: "foo", SourceText: "function foo(){}"}},
		ArrowFunctions:  []catalog.DeclarationRecord{},
		ReactComponents: []catalog.DeclarationRecord{},
		Classes:         []catalog.DeclarationRecord{},
		Interfaces:      []catalog.DeclarationRecord{},
		Enums:           []catalog.DeclarationRecord{},
		TypeAliases:     []catalog.DeclarationRecord{},
	}}}}
	h := NewRouter(stub, time.Minute, quietLogger())

	rec := post(t, h, `{"repoUrl": "https://github.com/acme/app.git"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "https://github.com/acme/app.git", stub.locator)
	assert.JSONEq(t, `{"files": [{
		"filePath": "src/a.ts",
		"functions": [{"name": "foo", "sourceText": "function foo(){}"}],
		"arrowFunctions": [], "reactComponents": [], "classes": [],
		"interfaces": [], "enums": [], "typeAliases": []
	}]}`, rec.Body.String())
}

func TestAnalyze_MissingRepoURL(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{}
	h := NewRouter(stub, time.Minute, quietLogger())

	for _, body := range []string{`{}`, `{"repoUrl": ""}`, `{"repoUrl": "  "}`} {
		rec := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "repoUrl is required", decodeError(t, rec), body)
	}
	assert.Empty(t, stub.locator, "analyzer must not run")
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	t.Parallel()

	rec := post(t, NewRouter(&stubAnalyzer{}, time.Minute, quietLogger()), `{"repoUrl":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", decodeError(t, rec))
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad locator", fmt.Errorf("%w: nope", git.ErrInvalidLocator), http.StatusBadRequest},
		{"missing tsconfig", fmt.Errorf("%w: tsconfig.json", project.ErrConfigNotFound), http.StatusUnprocessableEntity},
		{"invalid tsconfig", project.ErrInvalidConfig, http.StatusUnprocessableEntity},
		{"malformed file", &source.ParseError{Path: "a.ts", Line: 1, Column: 1}, http.StatusUnprocessableEntity},
		{"clone failed", fmt.Errorf("%w: timeout", git.ErrCloneFailed), http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewRouter(&stubAnalyzer{err: tt.err}, time.Minute, quietLogger())
			rec := post(t, h, `{"repoUrl": "https://example.com/r.git"}`)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.err.Error(), decodeError(t, rec))
		})
	}
}

func TestAnalyze_RejectsServerLocalPaths(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Git.AllowLocal = cfg.Server.AllowLocal
	svc, err := service.NewFromConfig(cfg, quietLogger(), nil)
	require.NoError(t, err)
	defer svc.Close()
	h := NewRouter(svc, time.Minute, quietLogger())

	dir, err := filepath.Abs(filepath.Join("..", "..", "testdata", "projects", "webapp"))
	require.NoError(t, err)

	for _, locator := range []string{dir, "file://" + dir, "../../testdata/projects/webapp"} {
		body, err := json.Marshal(analyzeRequest{RepoURL: locator})
		require.NoError(t, err)

		rec := post(t, h, string(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, locator)
		assert.Contains(t, decodeError(t, rec), "local paths are not accepted", locator)
		assert.NotContains(t, rec.Body.String(), "sourceText", locator)
	}
}

// headerCounter records every WriteHeader call reaching the client.
type headerCounter struct {
	*httptest.ResponseRecorder
	calls []int
}

func (h *headerCounter) WriteHeader(code int) {
	h.calls = append(h.calls, code)
	h.ResponseRecorder.WriteHeader(code)
}

type blockingAnalyzer struct{}

func (blockingAnalyzer) Analyze(ctx context.Context, _ string) (*catalog.AnalysisResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAnalyze_RequestTimeout(t *testing.T) {
	t.Parallel()

	h := NewRouter(blockingAnalyzer{}, 20*time.Millisecond, quietLogger())
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"repoUrl": "https://example.com/r.git"}`))
	rec := &headerCounter{ResponseRecorder: httptest.NewRecorder()}

	h.ServeHTTP(rec, req)

	assert.Equal(t, []int{http.StatusGatewayTimeout}, rec.calls, "status must be written exactly once")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, context.DeadlineExceeded.Error(), decodeError(t, rec.ResponseRecorder))
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := NewRouter(&stubAnalyzer{}, time.Minute, quietLogger())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := NewRouter(&stubAnalyzer{}, time.Minute, quietLogger())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_RunAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(ln.Addr().String(), NewRouter(&stubAnalyzer{}, time.Minute, quietLogger()), time.Second, quietLogger())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
