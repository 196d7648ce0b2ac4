package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"braincells-be/internal/apperror"
	"braincells-be/internal/dto"
	"braincells-be/internal/pkg/logger"
	"braincells-be/internal/pkg/serverutils"
	"braincells-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-secret"

type stubBraincellService struct {
	lastUserId string
	err        error
}

func (s *stubBraincellService) Create(ctx context.Context, userId string, req *dto.CreateBraincellRequest) (*dto.BraincellResponse, error) {
	s.lastUserId = userId
	if s.err != nil {
		return nil, s.err
	}
	if userId == "" {
		return nil, apperror.NewUnauthorized("")
	}
	return &dto.BraincellResponse{Id: "new-id", Title: req.Title, Content: req.Content, UserId: userId, CreatedAt: time.Now()}, nil
}

func (s *stubBraincellService) Update(ctx context.Context, userId string, req *dto.UpdateBraincellRequest) (*dto.BraincellResponse, error) {
	s.lastUserId = userId
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BraincellResponse{Id: req.Id, Title: req.Title, UserId: userId}, nil
}

func (s *stubBraincellService) Delete(ctx context.Context, userId string, req *dto.DeleteBraincellRequest) error {
	s.lastUserId = userId
	return s.err
}

func (s *stubBraincellService) List(ctx context.Context, userId string) ([]*dto.BraincellResponse, error) {
	s.lastUserId = userId
	return []*dto.BraincellResponse{{Id: "a", Title: "one", UserId: userId}}, s.err
}

func (s *stubBraincellService) Show(ctx context.Context, userId string, id string) (*dto.BraincellResponse, error) {
	s.lastUserId = userId
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BraincellResponse{Id: id, UserId: userId}, nil
}

type stubStream struct {
	tokens []string
	err    error
}

func (s *stubStream) Recv() (string, error) {
	if len(s.tokens) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	t := s.tokens[0]
	s.tokens = s.tokens[1:]
	return t, nil
}

func (s *stubStream) Close() error { return nil }

type stubChatService struct {
	stream   llm.Stream
	err      error
	received *dto.ChatRequest
}

func (s *stubChatService) Chat(ctx context.Context, userId string, req *dto.ChatRequest) (llm.Stream, error) {
	s.received = req
	if userId == "" {
		return nil, apperror.NewUnauthorized("")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.stream, nil
}

func newTestApp(braincells *stubBraincellService, chat *stubChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))

	auth := serverutils.NewAuthenticator(testSecret)
	api := app.Group("/api")
	NewBraincellController(braincells).RegisterRoutes(api, auth)
	NewChatController(chat, logger.NewNopLogger()).RegisterRoutes(api, auth)
	return app
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, app *fiber.App, method, path, body, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func decode(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestCreateBraincell(t *testing.T) {
	svc := &stubBraincellService{}
	app := newTestApp(svc, &stubChatService{})

	status, body := do(t, app, fiber.MethodPost, "/api/braincells", `{"title":"Trip","content":"socks"}`, bearer(t, "user-1"))

	assert.Equal(t, fiber.StatusCreated, status)
	res := decode(t, body)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, float64(201), res["code"])
	assert.Equal(t, "Trip", res["data"].(map[string]interface{})["title"])
	assert.Equal(t, "user-1", svc.lastUserId)
}

func TestCreateBraincellEmptyTitleIsBadRequest(t *testing.T) {
	svc := &stubBraincellService{}
	app := newTestApp(svc, &stubChatService{})

	status, body := do(t, app, fiber.MethodPost, "/api/braincells", `{"title":""}`, "")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid input", decode(t, body)["message"])
	assert.Empty(t, svc.lastUserId)
}

func TestCreateBraincellMalformedBody(t *testing.T) {
	app := newTestApp(&stubBraincellService{}, &stubChatService{})

	status, _ := do(t, app, fiber.MethodPost, "/api/braincells", `{"title":`, bearer(t, "u"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreateBraincellAnonymousIsUnauthorized(t *testing.T) {
	app := newTestApp(&stubBraincellService{}, &stubChatService{})

	status, body := do(t, app, fiber.MethodPost, "/api/braincells", `{"title":"x"}`, "")

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", decode(t, body)["message"])
}

func TestUpdateBraincellErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"missing id", `{"title":"x"}`, nil, fiber.StatusBadRequest},
		{"not found", `{"id":"b1","title":"x"}`, apperror.NewNotFound("braincell", "braincell data not found"), fiber.StatusNotFound},
		{"not owner", `{"id":"b1","title":"x"}`, apperror.NewUnauthorized(""), fiber.StatusUnauthorized},
		{"store down", `{"id":"b1","title":"x"}`, errors.New("connection refused"), fiber.StatusInternalServerError},
		{"ok", `{"id":"b1","title":"x"}`, nil, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubBraincellService{err: tt.err}, &stubChatService{})
			status, body := do(t, app, fiber.MethodPut, "/api/braincells", tt.body, bearer(t, "user-1"))
			assert.Equal(t, tt.status, status)
			if tt.status == fiber.StatusInternalServerError {
				assert.Equal(t, "Internal server error", decode(t, body)["message"])
			}
		})
	}
}

func TestDeleteBraincell(t *testing.T) {
	app := newTestApp(&stubBraincellService{}, &stubChatService{})

	status, body := do(t, app, fiber.MethodDelete, "/api/braincells", `{"id":"b1"}`, bearer(t, "user-1"))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Braincell data deleted", decode(t, body)["message"])
}

func TestDeleteBraincellNotFound(t *testing.T) {
	app := newTestApp(&stubBraincellService{err: apperror.NewNotFound("braincell", "braincell not found")}, &stubChatService{})

	status, body := do(t, app, fiber.MethodDelete, "/api/braincells", `{"id":"nope"}`, bearer(t, "user-1"))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "braincell not found", decode(t, body)["message"])
}

func TestReadEndpointsRequireToken(t *testing.T) {
	svc := &stubBraincellService{}
	app := newTestApp(svc, &stubChatService{})

	status, _ := do(t, app, fiber.MethodGet, "/api/braincells", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := do(t, app, fiber.MethodGet, "/api/braincells/b1", "", bearer(t, "user-9"))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "b1", decode(t, body)["data"].(map[string]interface{})["id"])
	assert.Equal(t, "user-9", svc.lastUserId)
}

func TestChatStreamsPlainText(t *testing.T) {
	chat := &stubChatService{stream: &stubStream{tokens: []string{"Hel", "lo", "!"}}}
	app := newTestApp(&stubBraincellService{}, chat)

	req := httptest.NewRequest(fiber.MethodPost, "/api/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "user-1"))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "Hello!", string(raw))
	assert.Len(t, chat.received.Messages, 1)
}

func TestChatMidStreamFailureEndsBody(t *testing.T) {
	chat := &stubChatService{stream: &stubStream{tokens: []string{"partial"}, err: errors.New("upstream reset")}}
	app := newTestApp(&stubBraincellService{}, chat)

	status, body := do(t, app, fiber.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`, bearer(t, "user-1"))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "partial", body)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		auth   bool
		err    error
		status int
	}{
		{"no messages", `{"messages":[]}`, true, nil, fiber.StatusBadRequest},
		{"bad role", `{"messages":[{"role":"robot","content":"x"}]}`, true, nil, fiber.StatusBadRequest},
		{"anonymous", `{"messages":[{"role":"user","content":"x"}]}`, false, nil, fiber.StatusUnauthorized},
		{"embedding down", `{"messages":[{"role":"user","content":"x"}]}`, true, errors.New("embed failed"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubBraincellService{}, &stubChatService{err: tt.err})
			auth := ""
			if tt.auth {
				auth = bearer(t, "user-1")
			}
			status, _ := do(t, app, fiber.MethodPost, "/api/chat", tt.body, auth)
			assert.Equal(t, tt.status, status)
		})
	}
}
