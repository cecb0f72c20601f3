package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/rb-ci/internal/constants"
)

func newTestWebhookAlerter(t *testing.T, config WebhookConfig, limiter *RateLimiter) (*WebhookAlerter, *mockHTTPClient, *testLogger) {
	t.Helper()
	logger := &testLogger{}
	client := &mockHTTPClient{}
	w := NewWebhookAlerter(config, limiter, logger)
	w.SetHTTPClient(client)
	w.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return w, client, logger
}

func respond(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func testAlert() Alert {
	return Alert{
		ErrorCode: "SMOKE.PAGES_FAILED",
		Message:   "Test failed due to console errors or exceptions",
		TraceID:   "0af7651916cd43dd8448eb211c80319c",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Command:   "smoke-pages",
		Project:   "./ReplayBrowser/ReplayBrowser.csproj",
		Severity:  SeverityCritical,
	}
}

func TestWebhookAlerter_Send_Payload(t *testing.T) {
	config := WebhookConfig{
		Enabled:    true,
		URLs:       []string{"https://hooks.example.com/ci"},
		Headers:    map[string]string{"Authorization": "Bearer token"},
		MaxRetries: 3,
	}
	w, client, _ := newTestWebhookAlerter(t, config, nil)

	var got WebhookPayload
	client.DoFunc = func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, config.URLs[0], req.URL.String())
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, constants.AppName+"/"+constants.Version, req.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		return respond(http.StatusOK, `{"ok":true}`), nil
	}

	require.NoError(t, w.Send(context.Background(), testAlert()))
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, "SMOKE.PAGES_FAILED", got.ErrorCode)
	assert.Equal(t, "CRITICAL", got.Severity)
	assert.Equal(t, constants.AppName, got.Source)
	assert.Equal(t, "smoke-pages", got.Command)
	assert.Equal(t, "./ReplayBrowser/ReplayBrowser.csproj", got.Project)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", got.TraceID)
}

func TestWebhookAlerter_Send_Retries(t *testing.T) {
	tests := []struct {
		name       string
		responses  []int
		maxRetries int
		wantCalls  int
		wantErrLog bool
	}{
		{"успех с первой попытки", []int{200}, 3, 1, false},
		{"5xx затем успех", []int{503, 502, 200}, 3, 3, false},
		{"5xx до исчерпания", []int{500, 500, 500, 500, 500}, 3, 4, true},
		{"4xx без повторов", []int{400, 200}, 3, 1, true},
		{"без повторов", []int{500, 200}, 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, client, logger := newTestWebhookAlerter(t, WebhookConfig{
				Enabled:    true,
				URLs:       []string{"https://hooks.example.com/ci"},
				MaxRetries: tt.maxRetries,
			}, nil)

			var idx atomic.Int32
			client.DoFunc = func(_ *http.Request) (*http.Response, error) {
				i := int(idx.Add(1)) - 1
				return respond(tt.responses[i], "body"), nil
			}

			require.NoError(t, w.Send(context.Background(), testAlert()))
			assert.Equal(t, tt.wantCalls, client.callCount())
			assert.Equal(t, tt.wantErrLog, len(logger.errors()) > 0)
		})
	}
}

func TestWebhookAlerter_sendWithRetry_Errors(t *testing.T) {
	w, client, _ := newTestWebhookAlerter(t, WebhookConfig{Enabled: true, MaxRetries: 2}, nil)

	t.Run("4xx возвращается как есть", func(t *testing.T) {
		client.DoFunc = func(_ *http.Request) (*http.Response, error) {
			return respond(http.StatusUnauthorized, "bad token"), nil
		}
		err := w.sendWithRetry(context.Background(), "https://hooks.example.com/ci", []byte("{}"))
		require.Error(t, err)
		assert.True(t, isClientHTTPError(err))
		assert.Contains(t, err.Error(), "HTTP 401: bad token")
	})

	t.Run("сетевая ошибка после всех попыток", func(t *testing.T) {
		client.DoFunc = func(_ *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}
		err := w.sendWithRetry(context.Background(), "https://hooks.example.com/ci", []byte("{}"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "all 3 attempts failed")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestWebhookAlerter_Send_MultipleURLs(t *testing.T) {
	w, client, logger := newTestWebhookAlerter(t, WebhookConfig{
		Enabled:    true,
		URLs:       []string{"https://a.example.com/hook", "https://b.example.com/hook"},
		MaxRetries: 0,
	}, nil)

	client.DoFunc = func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "a.example.com" {
			return respond(http.StatusInternalServerError, "down"), nil
		}
		return respond(http.StatusOK, ""), nil
	}

	require.NoError(t, w.Send(context.Background(), testAlert()))
	assert.Equal(t, 2, client.callCount())
	assert.Len(t, logger.errors(), 1)
	assert.Contains(t, logger.infoMsgs, "webhook алерт отправлен")
}

func TestWebhookAlerter_Send_RateLimited(t *testing.T) {
	limiter := NewRateLimiter(time.Minute)
	w, client, _ := newTestWebhookAlerter(t, WebhookConfig{
		Enabled: true,
		URLs:    []string{"https://hooks.example.com/ci"},
	}, limiter)
	client.DoFunc = func(_ *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, ""), nil
	}

	require.NoError(t, w.Send(context.Background(), testAlert()))
	require.NoError(t, w.Send(context.Background(), testAlert()))
	assert.Equal(t, 1, client.callCount())

	other := testAlert()
	other.ErrorCode = "MIGRATIONS.PENDING_CHANGES"
	require.NoError(t, w.Send(context.Background(), other))
	assert.Equal(t, 2, client.callCount())
}

func TestWebhookAlerter_Send_CancelledContext(t *testing.T) {
	w, client, _ := newTestWebhookAlerter(t, WebhookConfig{
		Enabled: true,
		URLs:    []string{"https://hooks.example.com/ci"},
	}, nil)
	client.DoFunc = func(_ *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, ""), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, w.Send(ctx, testAlert()))
	assert.Equal(t, 0, client.callCount())
}

func TestWebhookAlerter_RealServer(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"source":"`+constants.AppName+`"`)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	w := NewWebhookAlerter(WebhookConfig{
		Enabled: true,
		URLs:    []string{server.URL},
		Timeout: 2 * time.Second,
	}, nil, &testLogger{})

	require.NoError(t, w.Send(context.Background(), testAlert()))
	assert.Equal(t, int32(1), hits.Load())
}

func TestIsClientHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"400", &httpError{StatusCode: 400}, true},
		{"499", &httpError{StatusCode: 499}, true},
		{"500", &httpError{StatusCode: 500}, false},
		{"обёрнутая 404", errors.Join(errors.New("ctx"), &httpError{StatusCode: 404}), true},
		{"не HTTP", errors.New("timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isClientHTTPError(tt.err))
		})
	}
}
