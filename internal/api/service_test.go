package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalitka-bot/kalitka/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gopkg.in/telebot.v4"
)

type fakeProcessor struct {
	updates []telebot.Update
}

func (f *fakeProcessor) ProcessUpdate(u telebot.Update) {
	f.updates = append(f.updates, u)
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error {
	return f.err
}

func newTestService(t *testing.T, pinger *fakePinger) (*echo.Echo, *fakeProcessor) {
	t.Helper()

	viper.Reset()
	viper.Set("telegram_token", "test-token")
	cfg := config.New()

	processor := &fakeProcessor{}
	service := NewService(cfg, pinger, processor, "test-secret")

	e := echo.New()
	service.Register(e)

	return e, processor
}

func postWebhook(e *echo.Echo, path, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set(secretTokenHeader, secret)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookDispatchesUpdate(t *testing.T) {
	e, processor := newTestService(t, &fakePinger{})

	rec := postWebhook(e, "/webhook/test-token", "test-secret", `{"update_id": 7}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	if len(processor.updates) != 1 || processor.updates[0].ID != 7 {
		t.Errorf("processor saw %+v, want single update with id 7", processor.updates)
	}
}

func TestWebhookRejectsWrongToken(t *testing.T) {
	e, processor := newTestService(t, &fakePinger{})

	rec := postWebhook(e, "/webhook/other-token", "test-secret", `{"update_id": 7}`)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if len(processor.updates) != 0 {
		t.Errorf("update dispatched despite wrong token: %+v", processor.updates)
	}
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	e, processor := newTestService(t, &fakePinger{})

	rec := postWebhook(e, "/webhook/test-token", "wrong", `{"update_id": 7}`)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if len(processor.updates) != 0 {
		t.Errorf("update dispatched despite bad secret: %+v", processor.updates)
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	e, processor := newTestService(t, &fakePinger{})

	rec := postWebhook(e, "/webhook/test-token", "test-secret", `{"update_id": `)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(processor.updates) != 0 {
		t.Errorf("update dispatched despite malformed body: %+v", processor.updates)
	}
}

func TestHealth(t *testing.T) {
	e, _ := newTestService(t, &fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"database":"ok"`) {
		t.Errorf("unexpected health body: %s", rec.Body)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	e, _ := newTestService(t, &fakePinger{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"database":"unreachable"`) {
		t.Errorf("unexpected health body: %s", rec.Body)
	}
}

func TestRoot(t *testing.T) {
	e, _ := newTestService(t, &fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "running") {
		t.Errorf("unexpected root body: %s", rec.Body)
	}
}
