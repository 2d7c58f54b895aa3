package chatapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/zava/storefront-chat/internal/chat"
	"github.com/zava/storefront-chat/internal/logging"
)

type fakeSender struct {
	messages []string
	result   chat.Result
}

func (f *fakeSender) Send(_ context.Context, message string) chat.Result {
	f.messages = append(f.messages, message)
	return f.result
}

func newMux(sender Sender, accessKey string) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(logging.Discard("chat-api-test"), sender, accessKey).Register(mux)
	return mux
}

func post(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) chat.Result {
	t.Helper()
	var res chat.Result
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res
}

func TestChatRelaysMessage(t *testing.T) {
	sender := &fakeSender{result: chat.Result{Success: true, Message: "Hello!"}}
	rr := post(t, newMux(sender, ""), `{"message":"hi"}`, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	if res := decodeResult(t, rr); !res.Success || res.Message != "Hello!" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(sender.messages) != 1 || sender.messages[0] != "hi" {
		t.Fatalf("expected message to be relayed, got %v", sender.messages)
	}
}

func TestChatFailureIsStillOK(t *testing.T) {
	sender := &fakeSender{result: chat.Result{Error: chat.MsgTimeout}}
	rr := post(t, newMux(sender, ""), `{"message":"hi"}`, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if res := decodeResult(t, rr); res.Success || res.Error != chat.MsgTimeout {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestChatRejectsBadBody(t *testing.T) {
	sender := &fakeSender{}
	rr := post(t, newMux(sender, ""), `{"message":`, nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if res := decodeResult(t, rr); res.Error != "Invalid request body." {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(sender.messages) != 0 {
		t.Fatalf("expected no dispatch, got %v", sender.messages)
	}
}

func TestChatMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	newMux(&fakeSender{}, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("expected Allow POST, got %q", allow)
	}
}

func TestChatAccessKey(t *testing.T) {
	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"right key", "secret", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &fakeSender{result: chat.Result{Success: true, Message: "ok"}}
			headers := map[string]string{}
			if tc.header != "" {
				headers[accessKeyHeader] = tc.header
			}
			rr := post(t, newMux(sender, "secret"), `{"message":"hi"}`, headers)
			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newMux(&fakeSender{}, "secret").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}
}

func TestChatEndToEnd(t *testing.T) {
	var auth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Welcome to Zava!"}}]}`)
	}))
	defer upstream.Close()

	d := chat.New(chat.Settings{EndpointURL: upstream.URL, APIKey: "up-key"}, chat.WithLogger(logging.Discard("chat")))
	rr := post(t, newMux(d, ""), `{"message":"hello"}`, nil)

	if res := decodeResult(t, rr); !res.Success || res.Message != "Welcome to Zava!" {
		t.Fatalf("unexpected result %+v", res)
	}
	if auth != "Bearer up-key" {
		t.Fatalf("expected upstream bearer header, got %q", auth)
	}

	rr = post(t, newMux(d, ""), `{"message":"   "}`, nil)
	if res := decodeResult(t, rr); res.Success || res.Error != chat.MsgEmptyMessage {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestLogRequests(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := LogRequests(logger.WithField("component", "chat-api"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pot", nil))

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected an access log entry")
	}
	if entry.Data["status"] != http.StatusTeapot || entry.Data["bytes"] != 15 || entry.Data["path"] != "/pot" {
		t.Fatalf("unexpected access log fields %v", entry.Data)
	}
}
