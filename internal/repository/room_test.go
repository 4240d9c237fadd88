package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playrooms/tictactoe-rooms/internal/apperror"
	"github.com/playrooms/tictactoe-rooms/internal/entity"
	"github.com/playrooms/tictactoe-rooms/testing/suite"
)

func TestRoomRepository_Create(t *testing.T) {
	t.Run("Create_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a fresh room
		room := entity.NewRoom("AB12CD")

		// When: Create is called
		err := roomRepo.Create(ctx, room)

		// Then: the room is stored and retrievable
		require.NoError(t, err)

		stored, err := roomRepo.GetByCode(ctx, room.Code)
		require.NoError(t, err)
		assert.Equal(t, room.Code, stored.Code)
		assert.Equal(t, entity.StatusWaiting, stored.Status)
	})

	t.Run("Create_CodeTaken", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a live room
		require.NoError(t, roomRepo.Create(ctx, entity.NewRoom("AB12CD")))

		// When: Create is called again with the same code
		err := roomRepo.Create(ctx, entity.NewRoom("AB12CD"))

		// Then: ErrRoomAlreadyExists is returned
		require.ErrorIs(t, err, apperror.ErrRoomAlreadyExists)
	})

	t.Run("Create_CodeReusableAfterDelete", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		require.NoError(t, roomRepo.Create(ctx, entity.NewRoom("AB12CD")))
		require.NoError(t, roomRepo.DeleteByCode(ctx, "AB12CD"))

		// code reuse after deletion is permitted
		require.NoError(t, roomRepo.Create(ctx, entity.NewRoom("AB12CD")))
	})
}

func TestRoomRepository_GetByCode(t *testing.T) {
	t.Run("GetByCode_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a stored room with players and scores
		room := entity.NewRoom("AB12CD")
		room.Players = []*entity.Player{{ID: "conn-1", Symbol: entity.SymbolX, RoomCode: room.Code}}
		room.Scores[entity.SymbolX] = 2
		require.NoError(t, roomRepo.Create(ctx, room))

		// When: GetByCode is called
		stored, err := roomRepo.GetByCode(ctx, room.Code)

		// Then: the full state round-trips
		require.NoError(t, err)
		require.Len(t, stored.Players, 1)
		assert.Equal(t, "conn-1", stored.Players[0].ID)
		assert.Equal(t, 2, stored.Scores[entity.SymbolX])
	})

	t.Run("GetByCode_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// When: GetByCode is called with a code no room holds
		room, err := roomRepo.GetByCode(ctx, "ZZZZZZ")

		// Then: ErrRoomNotFound is returned
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.Nil(t, room)
	})
}

func TestRoomRepository_Update(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: a stored room
	room := entity.NewRoom("AB12CD")
	require.NoError(t, roomRepo.Create(ctx, room))

	// When: the board is mutated and updated
	room.Board[4] = entity.SymbolX
	room.CurrentPlayer = 1
	room.Status = entity.StatusOngoing
	require.NoError(t, roomRepo.Update(ctx, room))

	// Then: the stored state reflects the mutation
	stored, err := roomRepo.GetByCode(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, entity.SymbolX, stored.Board[4])
	assert.Equal(t, 1, stored.CurrentPlayer)
	assert.Equal(t, entity.StatusOngoing, stored.Status)
}

func TestRoomRepository_DeleteByCode(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: a stored room
	room := entity.NewRoom("AB12CD")
	require.NoError(t, roomRepo.Create(ctx, room))

	// When: DeleteByCode is called
	require.NoError(t, roomRepo.DeleteByCode(ctx, room.Code))

	// Then: the room is gone
	_, err := roomRepo.GetByCode(ctx, room.Code)
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

func TestRoomRepository_ListSummaries(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: two live rooms with different occupancy
	first := entity.NewRoom("AB12CD")
	first.Players = []*entity.Player{{ID: "conn-1", Symbol: entity.SymbolX}}
	require.NoError(t, roomRepo.Create(ctx, first))

	second := entity.NewRoom("EF34GH")
	second.Players = []*entity.Player{
		{ID: "conn-2", Symbol: entity.SymbolX},
		{ID: "conn-3", Symbol: entity.SymbolO},
	}
	require.NoError(t, roomRepo.Create(ctx, second))

	// When: listing summaries
	summaries, err := roomRepo.ListSummaries(ctx)

	// Then: both rooms are reported with their player counts
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	counts := make(map[string]int, len(summaries))
	for _, summary := range summaries {
		counts[summary.Code] = summary.Players
	}

	assert.Equal(t, 1, counts["AB12CD"])
	assert.Equal(t, 2, counts["EF34GH"])
}

func TestPlayerRepository(t *testing.T) {
	t.Run("CreateOrUpdate_And_GetByID", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a player bound to a room
		player := &entity.Player{ID: "conn-1", Symbol: entity.SymbolX, RoomCode: "AB12CD"}

		// When: storing and reloading it
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

		stored, err := playerRepo.GetByID(ctx, player.ID)

		// Then: the index round-trips
		require.NoError(t, err)
		assert.Equal(t, player, stored)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		_, err := playerRepo.GetByID(ctx, "stranger")
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
	})

	t.Run("DeleteByID", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		player := &entity.Player{ID: "conn-1", Symbol: entity.SymbolX, RoomCode: "AB12CD"}
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

		require.NoError(t, playerRepo.DeleteByID(ctx, player.ID))

		_, err := playerRepo.GetByID(ctx, player.ID)
		require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
	})
}
