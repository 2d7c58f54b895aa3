// Package chat relays a single user message to an OpenAI-compatible chat
// completion endpoint and folds every outcome into a Result.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zava/storefront-chat/internal/version"
)

// DefaultTimeout bounds a single Send when no timeout is configured.
const DefaultTimeout = 100 * time.Second

// errorBodyLimit caps how much of a failed response body is read for logging.
const errorBodyLimit = 4096

// Doer performs one HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(*http.Request) (*http.Response, error)

func (f DoerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

// Recorder observes the outcome of every Send.
type Recorder interface {
	Observe(kind Kind, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Observe(Kind, time.Duration) {}

// Dispatcher sends chat messages. It is safe for concurrent use; the only
// shared state is the read-only settings and the HTTP client.
type Dispatcher struct {
	settings  Settings
	client    Doer
	logger    *logrus.Entry
	recorder  Recorder
	timeout   time.Duration
	userAgent string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(c Doer) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.client = c
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *logrus.Entry) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRecorder attaches an outcome recorder, typically metrics.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithTimeout bounds each Send. Zero or negative leaves the caller's
// context as the only deadline.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

// New builds a Dispatcher for the given settings.
func New(settings Settings, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		settings:  settings,
		client:    &http.Client{},
		logger:    logrus.StandardLogger().WithField("component", "chat"),
		recorder:  nopRecorder{},
		timeout:   DefaultTimeout,
		userAgent: version.UserAgent(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send forwards userMessage to the configured endpoint. It never returns an
// error or panics; failures are reported through Result.Error.
func (d *Dispatcher) Send(ctx context.Context, userMessage string) Result {
	start := time.Now()
	reply, err := d.dispatch(ctx, userMessage)
	if err != nil {
		d.recorder.Observe(err.Kind, time.Since(start))
		return failure(err)
	}
	d.recorder.Observe(KindOK, time.Since(start))
	return success(reply)
}

func (d *Dispatcher) dispatch(ctx context.Context, userMessage string) (reply string, cerr *Error) {
	defer func() {
		if r := recover(); r != nil {
			reply, cerr = "", d.fail(newError(KindUnknown, fmt.Errorf("panic: %v", r)))
		}
	}()

	if strings.TrimSpace(userMessage) == "" {
		return "", &Error{Kind: KindValidation, Message: MsgEmptyMessage, Cause: errEmptyMessage}
	}
	if !d.settings.Configured() {
		d.logger.Warn("Chat endpoint URL is not configured")
		return "", &Error{Kind: KindValidation, Message: MsgNotConfigured, Cause: errNotConfigured}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(newChatRequest(userMessage))
	if err != nil {
		return "", d.fail(newError(KindUnknown, fmt.Errorf("encode chat request: %w", err)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.settings.EndpointURL, bytes.NewReader(payload))
	if err != nil {
		return "", d.fail(newError(KindUnknown, fmt.Errorf("build chat request: %w", err)))
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	if key := strings.TrimSpace(d.settings.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	log := d.logger.WithFields(logrus.Fields{
		"endpoint": d.settings.EndpointURL,
		"model":    d.settings.ModelName,
	})
	log.Info("Sending message to chat endpoint")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", d.fail(newError(classifyTransport(err), err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readErrorBody(resp.Body)
		log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   body,
		}).Error(logMessage(KindAPI))
		return "", apiError(resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		kind := classifyTransport(err)
		if kind == KindUnknown {
			kind = KindNetwork
		}
		return "", d.fail(newError(kind, fmt.Errorf("read chat response: %w", err)))
	}
	log.Info("Received response from chat endpoint")

	text, perr := parseCompletion(body)
	if perr != nil {
		if perr.Message == MsgUnknownShape {
			log.WithError(perr.Cause).Warn("Chat response matched no known shape")
			return "", perr
		}
		return "", d.fail(perr)
	}
	return text, nil
}

// fail logs err with its cause and returns it.
func (d *Dispatcher) fail(err *Error) *Error {
	d.logger.WithError(err.Cause).WithField("kind", err.Kind).Error(logMessage(err.Kind))
	return err
}

// readErrorBody reads a bounded prefix of a failed response; read errors are ignored.
func readErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, errorBodyLimit))
	return strings.TrimSpace(string(data))
}
