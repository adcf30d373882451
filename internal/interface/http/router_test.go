package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devcore/rag-chat/internal/domain/chat"
	"github.com/devcore/rag-chat/internal/infra/config"
	apperrors "github.com/devcore/rag-chat/pkg/errors"
)

type stubChatService struct {
	queryResp chat.Response
	queryErr  error
	clearErr  error
	cleared   []string
}

func (s *stubChatService) Query(_ context.Context, _ chat.Request) (chat.Response, error) {
	if s.queryErr != nil {
		return chat.Response{}, s.queryErr
	}
	return s.queryResp, nil
}

func (s *stubChatService) ClearCache(_ context.Context, category string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, category)
	return nil
}

func (s *stubChatService) Categories() []chat.CategoryStatus {
	return []chat.CategoryStatus{
		{Name: "dev", IndexLoaded: true, CachedEntries: 2},
		{Name: "mern", Legacy: true},
	}
}

func newTestRouter(svc chat.Service) http.Handler {
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewRouter(cfg, NewHandler(svc, logger))
	return server.Handler
}

func performRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	svc := &stubChatService{queryResp: chat.Response{
		Category: "dev",
		Question: "how do I deploy",
		AnswerRecord: chat.AnswerRecord{
			Answer:     "use the cli",
			Confidence: 94,
			Sources:    []string{"guide.md"},
		},
	}}
	router := newTestRouter(svc)

	rec := performRequest(router, http.MethodPost, "/api/v1/chat/query", `{"category":"dev","question":"how do I deploy"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "use the cli", resp.Answer)
	require.Equal(t, 94, resp.Confidence)
	require.False(t, resp.IsCached)
}

func TestQueryEndpointBadJSON(t *testing.T) {
	router := newTestRouter(&stubChatService{})

	rec := performRequest(router, http.MethodPost, "/api/v1/chat/query", `{broken`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEndpointUnknownCategory(t *testing.T) {
	svc := &stubChatService{queryErr: apperrors.Wrap("not_found", `unknown category "nope"`, nil)}
	router := newTestRouter(svc)

	rec := performRequest(router, http.MethodPost, "/api/v1/chat/query", `{"category":"nope","question":"hi"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown_category")
}

func TestQueryEndpointEmptyQuestion(t *testing.T) {
	svc := &stubChatService{queryErr: apperrors.Wrap("invalid_input", "question cannot be empty", nil)}
	router := newTestRouter(svc)

	rec := performRequest(router, http.MethodPost, "/api/v1/chat/query", `{"category":"dev","question":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEndpointUpstreamFailure(t *testing.T) {
	svc := &stubChatService{queryErr: apperrors.Wrap("embedding_error", "failed to embed question", nil)}
	router := newTestRouter(svc)

	rec := performRequest(router, http.MethodPost, "/api/v1/chat/query", `{"category":"dev","question":"hi"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestClearCacheEndpoint(t *testing.T) {
	svc := &stubChatService{}
	router := newTestRouter(svc)

	rec := performRequest(router, http.MethodDelete, "/api/v1/chat/cache/dev", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"dev"}, svc.cleared)
}

func TestClearCacheEndpointUnknownCategory(t *testing.T) {
	svc := &stubChatService{clearErr: apperrors.Wrap("not_found", `unknown category "nope"`, nil)}
	router := newTestRouter(svc)

	rec := performRequest(router, http.MethodDelete, "/api/v1/chat/cache/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoriesEndpoint(t *testing.T) {
	router := newTestRouter(&stubChatService{})

	rec := performRequest(router, http.MethodGet, "/api/v1/chat/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Categories []chat.CategoryStatus `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Categories, 2)
	require.Equal(t, "dev", body.Categories[0].Name)
	require.True(t, body.Categories[1].Legacy)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubChatService{})

	rec := performRequest(router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}
