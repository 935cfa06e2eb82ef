package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/edgard/construfacil/internal/config"
	"github.com/edgard/construfacil/internal/gemini"
	"github.com/edgard/construfacil/internal/realtime"
	"github.com/edgard/construfacil/internal/server"
	"github.com/edgard/construfacil/internal/server/handlers"
	"github.com/edgard/construfacil/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCompleter struct {
	result gemini.Result
	err    error
	calls  int
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (gemini.Result, error) {
	f.calls++
	if strings.TrimSpace(prompt) == "" {
		return gemini.Result{}, gemini.ErrInvalidPrompt
	}
	return f.result, f.err
}

type brokenDirectory struct {
	store.Directory
}

func (brokenDirectory) List(context.Context) ([]store.Professional, error) {
	return nil, errors.New("database is locked")
}

func testDeps(t *testing.T, completer handlers.Completer, dir store.Directory) handlers.HandlerDeps {
	t.Helper()

	cfg := &config.Config{
		Logger: config.LoggerConfig{Level: "debug"},
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
		Chat: config.ChatConfig{
			SendBuffer:     16,
			WriteWait:      config.DefaultChatWriteWait,
			PongWait:       config.DefaultChatPongWait,
			MaxMessageSize: config.DefaultChatMaxMessageSize,
		},
	}
	chat := store.NewChatHistory(store.ChatOptions{})
	hub := realtime.NewHub(chat.SnapshotSeq, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Run(ctx) }()

	return handlers.HandlerDeps{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:      cfg,
		Completer:   completer,
		Directory:   dir,
		Chat:        chat,
		Hub:         hub,
		Broadcaster: realtime.NewBroadcaster(chat, hub),
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, out
}

func TestCompletionEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		completer  *fakeCompleter
		body       string
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name:       "success",
			completer:  &fakeCompleter{result: gemini.Result{Text: "Use vergalhão CA-50.", Model: "gemini-2.5-flash"}},
			body:       `{"prompt":"Qual aço usar?"}`,
			wantStatus: http.StatusOK,
			wantKey:    "text",
			wantValue:  "Use vergalhão CA-50.",
		},
		{
			name:       "empty prompt",
			completer:  &fakeCompleter{},
			body:       `{"prompt":""}`,
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantValue:  handlers.MsgInvalidPrompt,
		},
		{
			name:       "malformed body",
			completer:  &fakeCompleter{},
			body:       `{"prompt":`,
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantValue:  handlers.MsgInvalidPrompt,
		},
		{
			name:       "all models down",
			completer:  &fakeCompleter{err: fmt.Errorf("%w: boom", gemini.ErrUnavailable)},
			body:       `{"prompt":"oi"}`,
			wantStatus: http.StatusServiceUnavailable,
			wantKey:    "error",
			wantValue:  "O Consultor Técnico está offline no momento.",
		},
		{
			name:       "unexpected error",
			completer:  &fakeCompleter{err: errors.New("kaboom")},
			body:       `{"prompt":"oi"}`,
			wantStatus: http.StatusInternalServerError,
			wantKey:    "error",
			wantValue:  handlers.MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := server.NewRouter(testDeps(t, tt.completer, store.NewMemoryDirectory(0, nil)))
			w, out := do(t, r, http.MethodPost, "/api/gemini", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if out[tt.wantKey] != tt.wantValue {
				t.Errorf("%s = %v, want %q", tt.wantKey, out[tt.wantKey], tt.wantValue)
			}
		})
	}
}

func TestCompletionEndpoint_ReportsModel(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{result: gemini.Result{Text: "ok", Model: "gemini-2.5-pro"}}
	r := server.NewRouter(testDeps(t, completer, store.NewMemoryDirectory(0, nil)))

	_, out := do(t, r, http.MethodPost, "/api/gemini", `{"prompt":"oi"}`)
	if out["model"] != "gemini-2.5-pro" {
		t.Errorf("model = %v, want gemini-2.5-pro", out["model"])
	}
}

func TestCompletionEndpoint_RendersHTML(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{result: gemini.Result{Text: "**Atenção:** use EPI.", Model: "m"}}
	r := server.NewRouter(testDeps(t, completer, store.NewMemoryDirectory(0, nil)))

	_, out := do(t, r, http.MethodPost, "/api/gemini", `{"prompt":"oi"}`)
	if out["text"] != "**Atenção:** use EPI." {
		t.Errorf("text = %v, want the raw markdown", out["text"])
	}
	html, _ := out["html"].(string)
	if !strings.Contains(html, "<strong>Atenção:</strong>") {
		t.Errorf("html = %q, want rendered markdown", html)
	}
}

func TestProfessionalsEndpoints(t *testing.T) {
	t.Parallel()

	r := server.NewRouter(testDeps(t, &fakeCompleter{}, store.NewMemoryDirectory(0, nil)))

	w, out := do(t, r, http.MethodGet, "/api/professionals", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}
	if list, ok := out["professionals"].([]any); !ok || len(list) != 0 {
		t.Fatalf("GET professionals = %v, want empty array", out["professionals"])
	}

	body := `{"ownerId":"u1","name":"Ana","trade":"Eletricista","contact":"x","lat":-23.5,"lng":-46.6}`
	w, out = do(t, r, http.MethodPost, "/api/professionals", body)
	if w.Code != http.StatusCreated || out["ok"] != true {
		t.Fatalf("POST = %d %v", w.Code, out)
	}
	p, _ := out["professional"].(map[string]any)
	if p["ownerId"] != "u1" || p["name"] != "Ana" || p["desc"] != "" || p["id"] == "" {
		t.Errorf("professional = %v", p)
	}

	body = `{"ownerId":"u1","name":"Ana Souza","trade":"Eletricista","contact":"x","lat":-23.5,"lng":-46.6}`
	if w, _ = do(t, r, http.MethodPost, "/api/professionals", body); w.Code != http.StatusCreated {
		t.Fatalf("second POST status = %d", w.Code)
	}

	_, out = do(t, r, http.MethodGet, "/api/professionals", "")
	list, _ := out["professionals"].([]any)
	if len(list) != 1 {
		t.Fatalf("len(professionals) = %d, want 1", len(list))
	}
	if got := list[0].(map[string]any)["name"]; got != "Ana Souza" {
		t.Errorf("name = %v, want Ana Souza", got)
	}

	w, out = do(t, r, http.MethodDelete, "/api/professionals/ghost", "")
	if w.Code != http.StatusOK || out["ok"] != true || out["removed"] != float64(0) {
		t.Errorf("DELETE ghost = %d %v", w.Code, out)
	}

	w, out = do(t, r, http.MethodDelete, "/api/professionals/u1", "")
	if w.Code != http.StatusOK || out["removed"] != float64(1) {
		t.Errorf("DELETE u1 = %d %v", w.Code, out)
	}
}

func TestRegisterProfessional_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing name", `{"ownerId":"u1","trade":"Pedreiro","contact":"x","lat":1,"lng":2}`, "name is required"},
		{"missing coordinates", `{"ownerId":"u1","name":"Ana","trade":"Pedreiro","contact":"x"}`, "lat is required"},
		{"lat out of range", `{"ownerId":"u1","name":"Ana","trade":"Pedreiro","contact":"x","lat":95,"lng":2}`, "lat must be a valid latitude"},
		{"non-numeric lat", `{"ownerId":"u1","name":"Ana","trade":"Pedreiro","contact":"x","lat":"abc","lng":2}`, handlers.MsgInvalidBody},
		{"not json", `nope`, handlers.MsgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := store.NewMemoryDirectory(0, nil)
			r := server.NewRouter(testDeps(t, &fakeCompleter{}, dir))

			w, out := do(t, r, http.MethodPost, "/api/professionals", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			msg, _ := out["error"].(string)
			if !strings.Contains(msg, tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.wantErr)
			}
			if list, _ := dir.List(context.Background()); len(list) != 0 {
				t.Errorf("directory mutated by invalid request: %+v", list)
			}
		})
	}
}

func TestListProfessionals_StoreFailure(t *testing.T) {
	t.Parallel()

	r := server.NewRouter(testDeps(t, &fakeCompleter{}, brokenDirectory{}))
	w, out := do(t, r, http.MethodGet, "/api/professionals", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if out["error"] != handlers.MsgInternal {
		t.Errorf("error = %v, want the generic message", out["error"])
	}
}

func TestHealthAndCORS(t *testing.T) {
	t.Parallel()

	r := server.NewRouter(testDeps(t, &fakeCompleter{}, store.NewMemoryDirectory(0, nil)))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("status = %v, want ok", out["status"])
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}
