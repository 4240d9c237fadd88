package apperror

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrInvalidRoomCode   = errors.New("invalid room code")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrPlayerNotFound    = errors.New("player not found")

	ErrGameNotActive = errors.New("game is not active")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidCell   = errors.New("invalid cell index")
)
