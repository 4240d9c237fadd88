package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playrooms/tictactoe-rooms/internal/entity"
	"github.com/playrooms/tictactoe-rooms/internal/pkg"
	"github.com/playrooms/tictactoe-rooms/internal/usecase"
)

type roomManager interface {
	CreateRoom(ctx context.Context, connID string) (*entity.Room, error)
	JoinRoom(ctx context.Context, code, connID string) (*entity.Room, error)
	MakeMove(ctx context.Context, code, connID string, cell int) (*entity.Room, *usecase.MoveResult, error)
	RestartGame(ctx context.Context, code string) (*entity.Room, error)
	ResetScores(ctx context.Context, code string) (*entity.Room, error)
	RemovePlayer(ctx context.Context, connID string) (*entity.Room, bool, error)
}

// connection is one live client socket. Writes are serialized through mu
// because gorilla connections allow a single concurrent writer.
type connection struct {
	id   string
	conn *websocket.Conn

	mu sync.Mutex
}

func (that *connection) send(event string, payload any) error {
	message := Message{Event: event}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		message.Payload = raw
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

type handlerFunc func(ctx context.Context, client *connection, payload json.RawMessage) error

type Server struct {
	logger *slog.Logger
	rooms  roomManager

	upgrader websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*connection

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		connections: make(map[string]*connection),
		handlers:    make(map[string]handlerFunc),
	}

	server.handlers[eventCreateRoom] = server.handleCreateRoom
	server.handlers[eventJoinRoom] = server.handleJoinRoom
	server.handlers[eventMakeMove] = server.handleMakeMove
	server.handlers[eventRestartGame] = server.handleRestartGame
	server.handlers[eventResetScores] = server.handleResetScores
	server.handlers[eventLeaveRoom] = server.handleLeaveRoom

	return server
}

// Start runs the WebSocket server until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
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

// Handler exposes the /ws upgrade for tests and embedding.
func (that *Server) Handler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	}
}

// serveConnection upgrades one client and pumps its messages until it hangs
// up. The connection identity is minted here and never trusted from input.
func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := &connection{
		id:   pkg.GenerateConnectionID(),
		conn: conn,
	}

	that.connectionsMutex.Lock()
	that.connections[client.id] = client
	that.connectionsMutex.Unlock()

	log = log.With("connID", client.id)
	log.Info("connection established")

	defer func() {
		that.dropConnection(ctx, client)
		_ = conn.Close()
	}()

	that.readLoop(ctx, client)
}

func (that *Server) readLoop(ctx context.Context, client *connection) {
	log := that.logger.With("method", "readLoop", "connID", client.id)

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("connection read failed", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Event]
		if !ok {
			log.Warn("unknown event", "event", message.Event)
			continue
		}

		if err = handler(ctx, client, message.Payload); err != nil {
			log.Error("failed to handle event", "event", message.Event, "error", err)
		}
	}
}

// dropConnection handles an abrupt disconnect: the player is removed from its
// room through the same path as an explicit leave, and whoever remains in the
// room is told the opponent is gone.
func (that *Server) dropConnection(ctx context.Context, client *connection) {
	log := that.logger.With("method", "dropConnection", "connID", client.id)

	that.connectionsMutex.Lock()
	delete(that.connections, client.id)
	that.connectionsMutex.Unlock()

	room, removed, err := that.rooms.RemovePlayer(ctx, client.id)
	if err != nil {
		log.Error("failed to remove player", "error", err)
		return
	}

	if removed && room != nil && len(room.Players) > 0 {
		that.broadcast(room, eventPlayerDisconnected, nil)
	}

	log.Info("connection closed")
}

// broadcast fans an event out to every player still seated in the room.
// Sends are fire-and-forget; a dead member connection never fails the others.
func (that *Server) broadcast(room *entity.Room, event string, payload any) {
	log := that.logger.With("method", "broadcast", "roomCode", room.Code, "event", event)

	for _, player := range room.Players {
		that.connectionsMutex.RLock()
		client, ok := that.connections[player.ID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for player", "connID", player.ID)
			continue
		}

		if err := client.send(event, payload); err != nil {
			log.Error("failed to send event", "connID", player.ID, "error", err)
		}
	}
}

func (that *Server) sendError(client *connection, message string) error {
	if err := client.send(eventError, errorPayload{Message: message}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
