package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"pingbot/pkg/channel"
	"pingbot/pkg/config"
)

const (
	defaultStatusHost = "0.0.0.0"
	defaultStatusPort = 18791
	probeInterval     = 30 * time.Second
)

// ProbeFunc checks connectivity and authentication against the chat platform.
type ProbeFunc func(ctx context.Context) error

// Service supervises channel adapters and serves health/readiness endpoints.
type Service struct {
	cfg      *config.Config
	log      *slog.Logger
	probe    ProbeFunc
	handler  channel.Handler
	channels []channel.Adapter

	mu            sync.RWMutex
	startedAt     time.Time
	zulipLastOKAt time.Time
	zulipLastErr  string
	channelStates map[string]channelState
}

type channelState struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
}

type statusResponse struct {
	Status        string                  `json:"status"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	ZulipLastOKAt string                  `json:"zulip_last_ok_at,omitempty"`
	ZulipLastErr  string                  `json:"zulip_last_error,omitempty"`
	Channels      map[string]channelState `json:"channels"`
}

// NewService wires adapters to a handler with a platform connectivity probe.
func NewService(cfg *config.Config, adapters []channel.Adapter, handler channel.Handler, probe ProbeFunc, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if len(adapters) == 0 {
		return nil, errors.New("at least one channel adapter is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if probe == nil {
		return nil, errors.New("probe is required")
	}
	if log == nil {
		log = slog.Default()
	}

	channelStates := make(map[string]channelState, len(adapters))
	for _, adapter := range adapters {
		channelStates[adapter.Name()] = channelState{}
	}

	return &Service{
		cfg:           cfg,
		log:           log.With("component", "service"),
		probe:         probe,
		handler:       handler,
		channels:      adapters,
		channelStates: channelStates,
	}, nil
}

// Run blocks until the context ends, the status server fails, or an adapter
// exits with an error. The initial connectivity probe is fatal when it fails,
// so bad credentials stop the bot before it starts listening.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	if err := s.checkZulipHealth(ctx); err != nil {
		return err
	}

	serverErrors := make(chan error, 1)
	go s.runStatusServer(ctx, serverErrors)

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.checkZulipHealth(ctx)
			}
		}
	}()

	errCh := make(chan error, len(s.channels))
	for _, adapter := range s.channels {
		adapter := adapter
		s.setChannelState(adapter.Name(), channelState{Running: true})

		go func() {
			err := adapter.Run(ctx, s.handler)
			s.setChannelState(adapter.Name(), channelState{Running: false, Error: errorString(err)})
			if err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("run %s channel: %w", adapter.Name(), err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErrors:
		return err
	case err := <-errCh:
		return err
	}
}

func (s *Service) runStatusServer(ctx context.Context, errCh chan<- error) {
	host := strings.TrimSpace(s.cfg.Status.Host)
	if host == "" {
		host = defaultStatusHost
	}

	port := s.cfg.Status.Port
	if port <= 0 {
		port = defaultStatusPort
	}

	addr := host + ":" + strconv.Itoa(port)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Status server started", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- fmt.Errorf("start status server: %w", err)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if !s.isReady() {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	s.respondStatus(w, statusCode, status)
}

func (s *Service) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Service) currentStatus(status string) statusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uptime := int64(0)
	if !s.startedAt.IsZero() {
		uptime = int64(time.Since(s.startedAt).Seconds())
	}

	channels := make(map[string]channelState, len(s.channelStates))
	for name, state := range s.channelStates {
		channels[name] = state
	}

	zulipLastOK := ""
	if !s.zulipLastOKAt.IsZero() {
		zulipLastOK = s.zulipLastOKAt.Format(time.RFC3339)
	}

	return statusResponse{
		Status:        status,
		UptimeSeconds: uptime,
		ZulipLastOKAt: zulipLastOK,
		ZulipLastErr:  s.zulipLastErr,
		Channels:      channels,
	}
}

func (s *Service) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	anyRunning := false
	for _, state := range s.channelStates {
		if state.Running {
			anyRunning = true
			break
		}
	}
	if !anyRunning {
		return false
	}

	if s.zulipLastOKAt.IsZero() {
		return false
	}

	return s.zulipLastErr == ""
}

func (s *Service) checkZulipHealth(ctx context.Context) error {
	if err := s.probe(ctx); err != nil {
		s.mu.Lock()
		s.zulipLastErr = err.Error()
		s.mu.Unlock()
		return fmt.Errorf("zulip connectivity check failed: %w", err)
	}

	s.mu.Lock()
	s.zulipLastErr = ""
	s.zulipLastOKAt = time.Now().UTC()
	s.mu.Unlock()

	return nil
}

func (s *Service) setChannelState(name string, state channelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelStates[name] = state
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
