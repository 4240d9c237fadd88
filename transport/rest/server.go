package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/playrooms/tictactoe-rooms/internal/repository"
)

type roomLister interface {
	ListRooms(ctx context.Context) ([]repository.RoomSummary, error)
}

type Server struct {
	logger *slog.Logger
	rooms  roomLister
}

func New(logger *slog.Logger, rooms roomLister) *Server {
	return &Server{
		logger: logger,
		rooms:  rooms,
	}
}

// Start runs the HTTP server until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", that.pingHandler)
	mux.HandleFunc("/api/rooms", that.roomsHandler)

	return mux
}

func (that *Server) pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// roomsHandler exposes the live rooms with player counts. Read-only, no auth.
func (that *Server) roomsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "roomsHandler")

	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	summaries, err := that.rooms.ListRooms(r.Context())
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(summaries); err != nil {
		log.Error("failed to encode rooms", "error", err)
	}
}
