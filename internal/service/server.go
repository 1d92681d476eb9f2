package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shortlink/internal/types"
)

// Server is the thin redirect surface: resolve a code, redirect, record
// the click off the request path. Everything else about the web layer
// lives outside this module.
type Server struct {
	port    string
	service *Service
}

func NewServer(port string, service *Service) *Server {
	return &Server{port: port, service: service}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{code}", s.handleRedirect)
	mux.HandleFunc("GET /{code}/qr", s.handleQRCode)
	srv := &http.Server{
		Addr:    ":" + s.port,
		Handler: mux,
	}
	errChan := make(chan error, 1)
	go func() { errChan <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	rec, err := s.service.Resolve(r.Context(), code)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	click := types.ClickContext{
		IP:        clientIP(r.Header.Get("X-Forwarded-For")),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.service.RecordClick(ctx, code, click); err != nil {
			slog.Warn("failed to record click", "code", code, "error", err)
		}
	}()

	http.Redirect(w, r, rec.OriginalURL, http.StatusFound)
}

// clientIP extracts the originating address from an X-Forwarded-For value,
// which carries a comma-separated chain behind multiple proxies.
func clientIP(forwardedFor string) string {
	ip, _, _ := strings.Cut(forwardedFor, ",")
	return strings.TrimSpace(ip)
}

func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, err := s.service.Resolve(r.Context(), code); err != nil {
		http.NotFound(w, r)
		return
	}
	png, err := s.service.QRCode(code, 256)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
