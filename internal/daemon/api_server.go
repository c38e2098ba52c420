package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"reel/internal/api"
	"reel/internal/asset"
	"reel/internal/config"
	"reel/internal/events"
	"reel/internal/logging"
	"reel/internal/services"
)

// apiServer serves the watch-mode HTTP endpoints. It is nil when no bind
// address is configured; all methods tolerate the nil receiver.
type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	assetSvc *api.AssetService

	// runCtx outlives individual requests; background dispatches inherit
	// it so they stop with the daemon, not with the request.
	runCtx context.Context

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, runCtx context.Context) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:     bind,
		logger:   logging.NewComponentLogger(d.logger, "api-server"),
		daemon:   d,
		assetSvc: api.NewAssetService(d.store),
		runCtx:   runCtx,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/assets", srv.handleAssets)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleAssets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAssets(w, r)
	case http.MethodPost:
		s.createAsset(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) listAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if source := strings.TrimSpace(query.Get("source")); source != "" {
		record, err := s.assetSvc.Describe(r.Context(), source)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if record == nil {
			s.writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		s.writeJSON(w, http.StatusOK, api.AssetResponse{Asset: *record})
		return
	}

	var statuses []asset.Status
	for _, value := range query["status"] {
		parsed, ok := asset.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", value))
			return
		}
		statuses = append(statuses, parsed)
	}

	assets, err := s.assetSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.AssetListResponse{Assets: assets})
}

// createAsset registers a remote-URL source. A fresh record is dispatched for
// processing in the background; an existing record is returned as-is so the
// endpoint stays idempotent per URL.
func (s *apiServer) createAsset(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	providerName := strings.TrimSpace(req.Provider)
	if providerName == "" {
		providerName = s.daemon.cfg.Provider.Default
	}
	if _, err := s.daemon.registry.Provider(providerName); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown provider %q", providerName))
		return
	}

	requestID := uuid.NewString()
	record, created, err := s.assetSvc.LookupOrCreate(r.Context(), req.URL, providerName)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if created && !record.IsTerminal() {
		dispatchCtx := services.WithRequestID(s.runCtx, requestID)
		go func(record asset.Asset) {
			s.daemon.bus.Publish(dispatchCtx, events.RequestVideoAdded, &record)
		}(*record)
	}

	s.logger.Info("asset registered",
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldSource, record.OriginalFilePath),
		logging.Bool("created", created))

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, api.AssetResponse{Asset: *record, Created: created})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
