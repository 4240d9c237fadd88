package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/playrooms/tictactoe-rooms/internal/apperror"
	"github.com/playrooms/tictactoe-rooms/internal/entity"
	"github.com/playrooms/tictactoe-rooms/internal/pkg"
	"github.com/playrooms/tictactoe-rooms/internal/repository"
	"github.com/playrooms/tictactoe-rooms/internal/tictactoe"
)

// maxCodeAttempts bounds the regenerate-until-unique loop on room creation.
const maxCodeAttempts = 10

var ErrNoUniqueCode = errors.New("could not allocate a unique room code")

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) error
	Update(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	DeleteByCode(ctx context.Context, code string) error
	ListSummaries(ctx context.Context) ([]repository.RoomSummary, error)
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	DeleteByID(ctx context.Context, id string) error
}

// MoveResult describes the outcome of one accepted move.
type MoveResult struct {
	Cell         int
	Symbol       string
	Concluded    bool
	Winner       string // empty on a draw
	WinningCells *[3]int
}

// RoomManager owns room lifecycle and all game-state transitions. Every
// check-then-mutate sequence for a room runs under that room's own mutex;
// rooms never share a lock, so independent rooms never block each other.
type RoomManager struct {
	logger     *slog.Logger
	roomRepo   roomRepo
	playerRepo playerRepo

	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

func NewRoomManager(logger *slog.Logger, roomRepo roomRepo, playerRepo playerRepo) *RoomManager {
	return &RoomManager{
		logger: logger,

		roomRepo:   roomRepo,
		playerRepo: playerRepo,

		roomLocks: make(map[string]*sync.Mutex),
	}
}

// CreateRoom allocates a fresh room with a unique code and seats the creator
// as X. The room stays in the waiting state until a second player joins.
func (that *RoomManager) CreateRoom(ctx context.Context, connID string) (*entity.Room, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := pkg.GenerateRoomCode()

		room := entity.NewRoom(code)
		player := &entity.Player{ID: connID, Symbol: entity.SymbolX, RoomCode: code}
		room.Players = []*entity.Player{player}

		err := that.roomRepo.Create(ctx, room)
		if errors.Is(err, apperror.ErrRoomAlreadyExists) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to index player: %w", err)
		}

		return room, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoUniqueCode, maxCodeAttempts)
}

// JoinRoom seats the connection as O and starts the game.
func (that *RoomManager) JoinRoom(ctx context.Context, code, connID string) (*entity.Room, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}

	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.PlayerIndex(connID) != -1 {
		return room, nil
	}

	if room.IsFull() {
		return nil, apperror.ErrRoomFull
	}

	player := &entity.Player{ID: connID, Symbol: room.NextSymbol(), RoomCode: code}
	room.Players = append(room.Players, player)

	if room.IsFull() {
		room.Status = entity.StatusOngoing
	}

	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to index player: %w", err)
	}

	return room, nil
}

// MakeMove validates and applies one move for the given connection. Callers
// treat ErrGameNotActive, ErrNotYourTurn, ErrCellOccupied and ErrInvalidCell
// as stale racing input and drop the request without a reply.
func (that *RoomManager) MakeMove(ctx context.Context, code, connID string, cell int) (*entity.Room, *MoveResult, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, nil, err
	}

	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	if !room.IsOngoing() {
		return nil, nil, apperror.ErrGameNotActive
	}

	index := room.PlayerIndex(connID)
	if index != room.CurrentPlayer {
		return nil, nil, apperror.ErrNotYourTurn
	}

	symbol := room.Players[index].Symbol
	if err = tictactoe.ApplyMove(&room.Board, cell, symbol); err != nil {
		return nil, nil, err
	}

	result := &MoveResult{Cell: cell, Symbol: symbol}

	switch combo, won := tictactoe.CheckWin(room.Board); {
	case won:
		room.Status = entity.StatusFinished
		room.Winner = symbol
		room.Scores[symbol]++

		result.Concluded = true
		result.Winner = symbol
		result.WinningCells = &combo
	case tictactoe.CheckDraw(room.Board):
		room.Status = entity.StatusFinished

		result.Concluded = true
	default:
		room.CurrentPlayer = 1 - room.CurrentPlayer
	}

	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, nil, fmt.Errorf("failed to update room: %w", err)
	}

	return room, result, nil
}

// RestartGame clears the board and hands the turn back to X. Scores persist.
func (that *RoomManager) RestartGame(ctx context.Context, code string) (*entity.Room, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}

	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	room.ResetBoard()
	room.Status = entity.StatusOngoing

	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	return room, nil
}

// ResetScores zeroes both symbols' win counts. Board and turn are untouched.
func (that *RoomManager) ResetScores(ctx context.Context, code string) (*entity.Room, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}

	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	room.Scores = map[string]int{entity.SymbolX: 0, entity.SymbolO: 0}

	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	return room, nil
}

// RemovePlayer takes a connection out of whatever room it occupies. An empty
// room is deleted on the spot; otherwise the room falls back to waiting and
// the returned state carries the remaining player for notification. A
// connection that holds no seat is a no-op.
func (that *RoomManager) RemovePlayer(ctx context.Context, connID string) (*entity.Room, bool, error) {
	log := that.logger.With("method", "RemovePlayer")

	player, err := that.playerRepo.GetByID(ctx, connID)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to look up player: %w", err)
	}

	unlock := that.lockRoom(player.RoomCode)
	defer unlock()

	if err = that.playerRepo.DeleteByID(ctx, connID); err != nil {
		return nil, false, fmt.Errorf("failed to drop player index: %w", err)
	}

	room, err := that.roomRepo.GetByCode(ctx, player.RoomCode)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get room: %w", err)
	}

	if !room.RemovePlayer(connID) {
		return nil, false, nil
	}

	if len(room.Players) == 0 {
		if err = that.roomRepo.DeleteByCode(ctx, room.Code); err != nil {
			return nil, false, fmt.Errorf("failed to delete empty room: %w", err)
		}

		that.forgetRoomLock(room.Code)
		log.Info("room deleted, no players left", "roomCode", room.Code)

		return room, true, nil
	}

	room.Status = entity.StatusWaiting

	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, false, fmt.Errorf("failed to update room: %w", err)
	}

	return room, true, nil
}

// ListRooms exposes live rooms for the read-only introspection endpoint.
func (that *RoomManager) ListRooms(ctx context.Context) ([]repository.RoomSummary, error) {
	summaries, err := that.roomRepo.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return summaries, nil
}

// lockRoom acquires the per-room mutex, creating it on first use.
func (that *RoomManager) lockRoom(code string) func() {
	that.mu.Lock()
	lock, ok := that.roomLocks[code]
	if !ok {
		lock = &sync.Mutex{}
		that.roomLocks[code] = lock
	}
	that.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}

// forgetRoomLock is called once a room is deleted; stragglers re-create the
// lock and then fail their room lookup.
func (that *RoomManager) forgetRoomLock(code string) {
	that.mu.Lock()
	delete(that.roomLocks, code)
	that.mu.Unlock()
}

// normalizeCode upper-cases a client-supplied room code and rejects anything
// that is not exactly six alphanumeric characters.
func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if len(code) != pkg.RoomCodeLength {
		return "", apperror.ErrInvalidRoomCode
	}

	for _, char := range code {
		isLetter := char >= 'A' && char <= 'Z'
		isDigit := char >= '0' && char <= '9'

		if !isLetter && !isDigit {
			return "", apperror.ErrInvalidRoomCode
		}
	}

	return code, nil
}
