package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playrooms/tictactoe-rooms/internal/apperror"
	"github.com/playrooms/tictactoe-rooms/internal/entity"
)

const roomKeyPrefix = "room:"

// RoomSummary is the read-only introspection view of a live room.
type RoomSummary struct {
	Code    string `json:"roomCode"`
	Players int    `json:"players"`
}

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	Update(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	DeleteByCode(ctx context.Context, code string) error
	ListSummaries(ctx context.Context) ([]RoomSummary, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

// Create inserts a room only if its code is not taken by a live room, so two
// concurrent creations can never end up sharing a code.
func (that *dbRoom) Create(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	inserted, err := that.client.SetNX(ctx, roomKeyPrefix+room.Code, roomJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}

	if !inserted {
		return apperror.ErrRoomAlreadyExists
	}

	return nil
}

func (that *dbRoom) Update(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKeyPrefix+room.Code, roomJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByCode(ctx context.Context, code string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+code).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal([]byte(response), &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

func (that *dbRoom) DeleteByCode(ctx context.Context, code string) error {
	if err := that.client.Del(ctx, roomKeyPrefix+code).Err(); err != nil {
		return fmt.Errorf("failed to delete room by code: %w", err)
	}

	return nil
}

// ListSummaries walks all live room keys. Linear scan is fine at the room
// counts this server is built for.
func (that *dbRoom) ListSummaries(ctx context.Context) ([]RoomSummary, error) {
	summaries := make([]RoomSummary, 0)

	iter := that.client.Scan(ctx, 0, roomKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		code := iter.Val()[len(roomKeyPrefix):]

		room, err := that.GetByCode(ctx, code)
		if errors.Is(err, apperror.ErrRoomNotFound) {
			continue // deleted between scan and get
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load room %s: %w", code, err)
		}

		summaries = append(summaries, RoomSummary{
			Code:    room.Code,
			Players: len(room.Players),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan rooms: %w", err)
	}

	return summaries, nil
}
