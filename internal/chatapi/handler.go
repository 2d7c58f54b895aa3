package chatapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zava/storefront-chat/internal/chat"
)

// maxRequestBytes bounds the inbound JSON body.
const maxRequestBytes = 64 << 10

// Sender relays one message. *chat.Dispatcher satisfies it.
type Sender interface {
	Send(ctx context.Context, message string) chat.Result
}

// Handler exposes the chat dispatcher to the storefront UI over HTTP.
type Handler struct {
	sender    Sender
	accessKey string
	logger    *logrus.Entry
}

// NewHandler constructs a chat API handler. An empty accessKey disables the
// inbound key check.
func NewHandler(logger *logrus.Entry, sender Sender, accessKey string) *Handler {
	return &Handler{
		sender:    sender,
		accessKey: strings.TrimSpace(accessKey),
		logger:    logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/chat", h.handleChat)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorize(r) {
		h.logger.Warn("unauthorized request")
		writeJSON(w, chat.Result{Error: "Unauthorized."}, http.StatusUnauthorized)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.logger.Warnf("bad request: %v", err)
		writeJSON(w, chat.Result{Error: "Invalid request body."}, http.StatusBadRequest)
		return
	}

	// Dispatch failures are still a well-formed result for the UI.
	writeJSON(w, h.sender.Send(r.Context(), req.Message), http.StatusOK)
}

const accessKeyHeader = "X-Chat-Key"

func (h *Handler) authorize(r *http.Request) bool {
	if h.accessKey == "" {
		return true
	}
	return strings.TrimSpace(r.Header.Get(accessKeyHeader)) == h.accessKey
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
