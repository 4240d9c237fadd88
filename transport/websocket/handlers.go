package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playrooms/tictactoe-rooms/internal/apperror"
	"github.com/playrooms/tictactoe-rooms/internal/entity"
)

func (that *Server) handleCreateRoom(ctx context.Context, client *connection, _ json.RawMessage) error {
	log := that.logger.With("method", "handleCreateRoom", "connID", client.id)

	room, err := that.rooms.CreateRoom(ctx, client.id)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return that.sendError(client, "failed to create room")
	}

	log.Info("room created", "roomCode", room.Code)

	return client.send(eventRoomCreated, roomCreatedPayload{
		RoomCode: room.Code,
		Symbol:   room.Players[0].Symbol,
	})
}

func (that *Server) handleJoinRoom(ctx context.Context, client *connection, payload json.RawMessage) error {
	log := that.logger.With("method", "handleJoinRoom", "connID", client.id)

	var req roomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.JoinRoom(ctx, req.RoomCode, client.id)

	// join failures go to the requester only; the room, if any, is untouched
	switch {
	case errors.Is(err, apperror.ErrInvalidRoomCode):
		return that.sendError(client, "Invalid room code")
	case errors.Is(err, apperror.ErrRoomNotFound):
		return that.sendError(client, "Room not found")
	case errors.Is(err, apperror.ErrRoomFull):
		return that.sendError(client, "Room is full")
	case err != nil:
		log.Error("failed to join room", "roomCode", req.RoomCode, "error", err)
		return that.sendError(client, "failed to join room")
	}

	log.Info("player joined room", "roomCode", room.Code)

	that.broadcast(room, eventGameStart, gameStartPayload{
		Players:             seats(room),
		CurrentPlayer:       room.CurrentPlayer,
		CurrentPlayerSymbol: room.CurrentSymbol(),
	})

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, client *connection, payload json.RawMessage) error {
	log := that.logger.With("method", "handleMakeMove", "connID", client.id)

	var req moveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, result, err := that.rooms.MakeMove(ctx, req.RoomCode, client.id, req.Index)
	if err != nil {
		// stale or racing input: no reply, no state change, no broadcast
		log.Debug("move ignored", "roomCode", req.RoomCode, "cell", req.Index, "reason", err)
		return nil
	}

	if result.Concluded {
		over := gameOverPayload{
			Board:  room.Board,
			Scores: room.Scores,
		}

		if result.Winner != entity.EmptyCell {
			over.Winner = &result.Winner
		}

		if result.WinningCells != nil {
			over.WinningCells = result.WinningCells[:]
		}

		that.broadcast(room, eventGameOver, over)

		return nil
	}

	that.broadcast(room, eventMoveMade, moveMadePayload{
		Index:               result.Cell,
		Symbol:              result.Symbol,
		Board:               room.Board,
		CurrentPlayer:       room.CurrentPlayer,
		CurrentPlayerSymbol: room.CurrentSymbol(),
	})

	return nil
}

func (that *Server) handleRestartGame(ctx context.Context, client *connection, payload json.RawMessage) error {
	log := that.logger.With("method", "handleRestartGame", "connID", client.id)

	var req roomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.RestartGame(ctx, req.RoomCode)
	if err != nil {
		// absent room is a no-op
		log.Debug("restart ignored", "roomCode", req.RoomCode, "reason", err)
		return nil
	}

	that.broadcast(room, eventGameRestarted, gameRestartedPayload{
		Board:         room.Board,
		CurrentPlayer: room.CurrentPlayer,
	})

	return nil
}

func (that *Server) handleResetScores(ctx context.Context, client *connection, payload json.RawMessage) error {
	log := that.logger.With("method", "handleResetScores", "connID", client.id)

	var req roomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.ResetScores(ctx, req.RoomCode)
	if err != nil {
		log.Debug("score reset ignored", "roomCode", req.RoomCode, "reason", err)
		return nil
	}

	that.broadcast(room, eventScoresReset, scoresResetPayload{Scores: room.Scores})

	return nil
}

func (that *Server) handleLeaveRoom(ctx context.Context, client *connection, _ json.RawMessage) error {
	log := that.logger.With("method", "handleLeaveRoom", "connID", client.id)

	room, removed, err := that.rooms.RemovePlayer(ctx, client.id)
	if err != nil {
		return fmt.Errorf("failed to remove player: %w", err)
	}

	if !removed {
		return nil
	}

	log.Info("player left room", "roomCode", room.Code)

	// only whoever stayed behind is notified, never the leaver
	if len(room.Players) > 0 {
		that.broadcast(room, eventPlayerDisconnected, nil)
	}

	return nil
}

func seats(room *entity.Room) []playerSeat {
	players := make([]playerSeat, 0, len(room.Players))
	for _, player := range room.Players {
		players = append(players, playerSeat{Symbol: player.Symbol})
	}

	return players
}
