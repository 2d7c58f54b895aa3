package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zava/storefront-chat/internal/chat"
	"github.com/zava/storefront-chat/internal/chatapi"
	"github.com/zava/storefront-chat/internal/config"
	"github.com/zava/storefront-chat/internal/logging"
	"github.com/zava/storefront-chat/internal/metrics"
	"github.com/zava/storefront-chat/internal/version"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "settings file (json, yaml or toml)")
	port := flag.String("port", "", "port to listen on")
	endpoint := flag.String("endpoint", "", "chat endpoint URL")
	apiKey := flag.String("api-key", "", "chat endpoint API key")
	accessKey := flag.String("access-key", "", "inbound X-Chat-Key required by /api/chat")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *endpoint != "" {
		cfg.Chat.EndpointURL = *endpoint
	}
	if *apiKey != "" {
		cfg.Chat.APIKey = *apiKey
	}
	if *accessKey != "" {
		cfg.AccessKey = *accessKey
	}

	logger, cleanup, err := logging.New("chat-api", cfg.LogDir, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if !cfg.Chat.Configured() {
		logger.Warn("CHAT_ENDPOINT_URL is empty; /api/chat will report the service as not configured")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	dispatcher := chat.New(cfg.Chat,
		chat.WithLogger(logger.WithField("component", "dispatcher")),
		chat.WithRecorder(metrics.NewDispatch(reg)),
		chat.WithTimeout(cfg.Timeout),
	)

	h := chatapi.NewHandler(logger, dispatcher, cfg.AccessKey)
	mux := http.NewServeMux()
	h.Register(mux)
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(version.Get())
	})

	addr := ":" + strings.TrimPrefix(cfg.Port, ":")
	srv := &http.Server{
		Addr:              addr,
		Handler:           chatapi.LogRequests(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Infof("Chat API listening on %s (model=%s endpoint=%s)", addr, cfg.Chat.ModelName, cfg.Chat.EndpointURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}
