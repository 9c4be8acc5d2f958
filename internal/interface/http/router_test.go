package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/slacksum-agent/internal/domain/agent"
	"github.com/yanqian/slacksum-agent/internal/domain/notification"
	"github.com/yanqian/slacksum-agent/internal/infra/config"
	apperrors "github.com/yanqian/slacksum-agent/pkg/errors"
)

func TestRouter_Health(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/health", "", newRouterUnderTest(t, &stubAgent{}, &stubNotifier{}, ""))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"healthy"}`, recorder.Body.String())
}

func TestRouter_ProcessSuccess(t *testing.T) {
	title := "Update from #general"
	body := "New action items detected"
	want := agent.Response{Response: "one action item", ShouldNotify: true, NotificationTitle: &title, NotificationBody: &body}
	svc := &stubAgent{
		processFn: func(ctx context.Context, req agent.Request) (agent.Response, error) {
			require.Equal(t, "U1", req.UserID)
			require.Equal(t, "T1", req.TeamID)
			require.Equal(t, "general", req.ChannelName)
			require.Equal(t, "a\nb", req.Messages)
			require.Nil(t, req.DeviceID)
			return want, nil
		},
	}

	payload := `{"user_id":"U1","team_id":"T1","channel_id":"C1","channel_name":"general","messages":"a\nb","user_query":"sum"}`
	recorder := performRequest(http.MethodPost, "/api/agent", payload, newRouterUnderTest(t, svc, &stubNotifier{}, ""))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get(requestIDHeader))

	var got agent.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, want, got)
}

func TestRouter_ProcessNullNotificationFields(t *testing.T) {
	svc := &stubAgent{
		processFn: func(ctx context.Context, req agent.Request) (agent.Response, error) {
			return agent.Response{Response: "all quiet"}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/agent", validAgentBody, newRouterUnderTest(t, svc, &stubNotifier{}, ""))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"response":"all quiet","shouldNotify":false,"notificationTitle":null,"notificationBody":null}`, recorder.Body.String())
}

func TestRouter_ProcessInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/agent", `{"user_id":123}`, newRouterUnderTest(t, &stubAgent{}, &stubNotifier{}, ""))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody.Error.Code)
	require.NotEmpty(t, errBody.Detail)
}

func TestRouter_ProcessMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "missing user_id", body: `{"team_id":"T1","channel_id":"C1","channel_name":"general","messages":"a","user_query":"q"}`},
		{name: "missing messages", body: `{"user_id":"U1","team_id":"T1","channel_id":"C1","channel_name":"general","user_query":"q"}`},
		{name: "null user_query", body: `{"user_id":"U1","team_id":"T1","channel_id":"C1","channel_name":"general","messages":"a","user_query":null}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubAgent{
				processFn: func(ctx context.Context, req agent.Request) (agent.Response, error) {
					t.Errorf("agent service called for %s", tt.name)
					return agent.Response{}, nil
				},
			}
			recorder := performRequest(http.MethodPost, "/api/agent", tt.body, newRouterUnderTest(t, svc, &stubNotifier{}, ""))
			require.Equal(t, http.StatusBadRequest, recorder.Code)
			require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes()).Error.Code)
		})
	}
}

func TestRouter_ProcessAcceptsEmptyMessages(t *testing.T) {
	var got agent.Request
	svc := &stubAgent{
		processFn: func(ctx context.Context, req agent.Request) (agent.Response, error) {
			got = req
			return agent.Response{Response: "nothing new"}, nil
		},
	}

	body := `{"user_id":"U1","team_id":"T1","channel_id":"C1","channel_name":"general","messages":"","user_query":"anything?","device_id":"D1"}`
	recorder := performRequest(http.MethodPost, "/api/agent", body, newRouterUnderTest(t, svc, &stubNotifier{}, ""))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "", got.Messages)
	require.Equal(t, "anything?", got.UserQuery)
	require.Equal(t, agent.ConversationKey{TeamID: "T1", UserID: "U1"}, got.Key())
	require.NotNil(t, got.DeviceID)
	require.Equal(t, "D1", *got.DeviceID)
	require.Nil(t, got.SlackAccessToken)
}

func TestRouter_ProcessInternalError(t *testing.T) {
	svc := &stubAgent{
		processFn: func(ctx context.Context, req agent.Request) (agent.Response, error) {
			return agent.Response{}, apperrors.Wrap(apperrors.CodeInternal, "summarizer failed", errors.New("model offline"))
		},
	}

	recorder := performRequest(http.MethodPost, "/api/agent", validAgentBody, newRouterUnderTest(t, svc, &stubNotifier{}, ""))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "model offline", errBody.Detail)
	require.Equal(t, "agent_failed", errBody.Error.Code)
}

func TestRouter_Context(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubAgent{
		contextFn: func(ctx context.Context, key agent.ConversationKey) ([]agent.ContextEntry, error) {
			if key.TeamID == "" {
				return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "team_id and user_id are required", nil)
			}
			require.Equal(t, agent.ConversationKey{TeamID: "T1", UserID: "U1"}, key)
			return []agent.ContextEntry{{Role: agent.RoleUser, Content: "hi", CreatedAt: created}}, nil
		},
	}
	server := newRouterUnderTest(t, svc, &stubNotifier{}, "")

	recorder := performRequest(http.MethodGet, "/api/agent/context?team_id=T1&user_id=U1", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"entries":[{"role":"user","content":"hi","createdAt":"2024-05-01T12:00:00Z"}]}`, recorder.Body.String())

	recorder = performRequest(http.MethodGet, "/api/agent/context?user_id=U1", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_SendNotificationSuccess(t *testing.T) {
	notifier := &stubNotifier{
		sendFn: func(ctx context.Context, req notification.Request) (notification.Result, error) {
			require.Equal(t, "U1", req.UserID)
			require.Equal(t, "Hello", req.Title)
			require.Nil(t, req.URL)
			return notification.Result(`{"success":true,"sent":2}`), nil
		},
	}

	recorder := performRequest(http.MethodPost, "/send-notification", `{"user_id":"U1","title":"Hello","body":"World"}`, newRouterUnderTest(t, &stubAgent{}, notifier, ""))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"success":true,"sent":2}`, recorder.Body.String())
}

func TestRouter_SendNotificationMissingFields(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"title":"t","body":"b"}`,
		`{"user_id":"U1","body":"b"}`,
		`{"user_id":"U1","title":"t"}`,
	} {
		notifier := &stubNotifier{
			sendFn: func(ctx context.Context, req notification.Request) (notification.Result, error) {
				t.Errorf("relay called for %s", body)
				return nil, nil
			},
		}
		recorder := performRequest(http.MethodPost, "/send-notification", body, newRouterUnderTest(t, &stubAgent{}, notifier, ""))
		require.Equal(t, http.StatusBadRequest, recorder.Code, body)
		require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes()).Error.Code)
	}
}

func TestRouter_SendNotificationEmptyStrings(t *testing.T) {
	var got notification.Request
	notifier := &stubNotifier{
		sendFn: func(ctx context.Context, req notification.Request) (notification.Result, error) {
			got = req
			return notification.Result(`{"success":true}`), nil
		},
	}

	body := `{"user_id":"U1","title":"","body":"","url":"/dashboard?channel=eng","data":{"k":"v"}}`
	recorder := performRequest(http.MethodPost, "/send-notification", body, newRouterUnderTest(t, &stubAgent{}, notifier, ""))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "U1", got.UserID)
	require.Empty(t, got.Title)
	require.NotNil(t, got.URL)
	require.Equal(t, "/dashboard?channel=eng", *got.URL)
	require.Equal(t, map[string]any{"k": "v"}, got.Data)
	require.Nil(t, got.DeviceID)
}

func TestRouter_SendNotificationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name:       "relay overloaded",
			err:        apperrors.Wrap(apperrors.CodeRelayRejected, "Failed to send notification", &notification.UpstreamError{StatusCode: 503, Body: "overloaded"}),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeRelayRejected,
			wantDetail: "Failed to send notification: overloaded",
		},
		{
			name:       "relay unauthorized",
			err:        apperrors.Wrap(apperrors.CodeRelayRejected, "Failed to send notification", &notification.UpstreamError{StatusCode: 401, Body: `{"error":"Unauthorized"}`}),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperrors.CodeRelayRejected,
			wantDetail: `Failed to send notification: {"error":"Unauthorized"}`,
		},
		{
			name:       "transport failure",
			err:        apperrors.Wrap(apperrors.CodeRelayUnavailable, "Request failed", errors.New("dial tcp: connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeRelayUnavailable,
			wantDetail: "Request failed: dial tcp: connection refused",
		},
		{
			name:       "invalid relay body",
			err:        apperrors.Wrap(apperrors.CodeRelayInvalidResponse, "invalid relay response", errors.New("status=200")),
			wantStatus: http.StatusBadGateway,
			wantCode:   apperrors.CodeRelayInvalidResponse,
			wantDetail: "invalid relay response",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			notifier := &stubNotifier{
				sendFn: func(ctx context.Context, req notification.Request) (notification.Result, error) {
					return nil, tt.err
				},
			}
			recorder := performRequest(http.MethodPost, "/send-notification", `{"user_id":"U1","title":"t","body":"b"}`, newRouterUnderTest(t, &stubAgent{}, notifier, ""))
			require.Equal(t, tt.wantStatus, recorder.Code)

			errBody := decodeErrorBody(t, recorder.Body.Bytes())
			require.Equal(t, tt.wantCode, errBody.Error.Code)
			require.Equal(t, tt.wantDetail, errBody.Detail)
		})
	}
}

func TestRouter_StaticToken(t *testing.T) {
	svc := &stubAgent{
		processFn: func(ctx context.Context, req agent.Request) (agent.Response, error) {
			return agent.Response{Response: "ok"}, nil
		},
	}
	server := newRouterUnderTest(t, svc, &stubNotifier{}, "inbound-secret")

	recorder := performRequest(http.MethodPost, "/api/agent", validAgentBody, server)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequestWithHeaders(http.MethodPost, "/api/agent", validAgentBody, server, map[string]string{"Authorization": "Bearer wrong"})
	require.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = performRequestWithHeaders(http.MethodPost, "/api/agent", validAgentBody, server, map[string]string{"Authorization": "Bearer inbound-secret"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(http.MethodGet, "/health", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubAgent{}, &stubNotifier{}, "")

	recorder := performRequestWithHeaders(http.MethodOptions, "/api/agent", "", server, map[string]string{
		"Origin":                         "https://dashboard.example.com",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "content-type",
	})
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "https://dashboard.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))
	require.Equal(t, "content-type", recorder.Header().Get("Access-Control-Allow-Headers"))
}

func TestResolveOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		allowed []string
		want    string
	}{
		{origin: "", allowed: nil, want: "*"},
		{origin: "https://a.example.com", allowed: []string{"*"}, want: "https://a.example.com"},
		{origin: "https://A.example.com", allowed: []string{"https://a.example.com"}, want: "https://A.example.com"},
		{origin: "https://evil.example.com", allowed: []string{"https://a.example.com"}, want: ""},
	}
	for i, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, resolveOrigin(tt.origin, tt.allowed))
		})
	}
}

const validAgentBody = `{"user_id":"U1","team_id":"T1","channel_id":"C1","channel_name":"general","messages":"a","user_query":"q"}`

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	return performRequestWithHeaders(method, path, body, server, nil)
}

func performRequestWithHeaders(method, path, body string, server *http.Server, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, agentSvc agent.Service, notifySvc notification.Service, token string) *http.Server {
	t.Helper()
	handler := NewHandler(agentSvc, notifySvc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			AllowedOrigins: []string{"*"},
			AuthToken:      token,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubAgent struct {
	processFn func(ctx context.Context, req agent.Request) (agent.Response, error)
	contextFn func(ctx context.Context, key agent.ConversationKey) ([]agent.ContextEntry, error)
}

func (s *stubAgent) Process(ctx context.Context, req agent.Request) (agent.Response, error) {
	if s.processFn != nil {
		return s.processFn(ctx, req)
	}
	return agent.Response{}, nil
}

func (s *stubAgent) Context(ctx context.Context, key agent.ConversationKey) ([]agent.ContextEntry, error) {
	if s.contextFn != nil {
		return s.contextFn(ctx, key)
	}
	return nil, nil
}

type stubNotifier struct {
	sendFn func(ctx context.Context, req notification.Request) (notification.Result, error)
}

func (s *stubNotifier) Send(ctx context.Context, req notification.Request) (notification.Result, error) {
	if s.sendFn != nil {
		return s.sendFn(ctx, req)
	}
	return notification.Result(`{}`), nil
}

func (s *stubNotifier) NotifyImportant(ctx context.Context, userID, channelName, message string) (notification.Result, error) {
	return s.Send(ctx, notification.Request{UserID: userID, Title: "Important: #" + channelName, Body: message})
}

func decodeErrorBody(t *testing.T, raw []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
